// Package wire implements the length-prefixed protobuf wire encoding used
// to report Dashboard events to an out-of-process consumer, replacing the
// original Ekam's Cap'n Proto ProtoDashboard (capnp is not part of the
// example pack's dependency surface; google.golang.org/protobuf is).
//
// Messages are hand-encoded with protowire rather than protoc-generated
// structs, since no .proto/.pb.go ever appears anywhere in the retrieval
// pack to generate from — protowire is the same module's low-level
// varint/tag/length-delimited primitives, used directly.
package wire

import (
	"encoding/binary"
	"fmt"
	"io"

	"google.golang.org/protobuf/encoding/protowire"
)

// kind identifies which Dashboard event a frame carries.
type kind uint32

const (
	kindBeginTask kind = 0
	kindSetState  kind = 1
	kindAddOutput kind = 2
	kindCloseTask kind = 3
)

const (
	fieldKind   = 1
	fieldID     = 2
	fieldVerb   = 3
	fieldNoun   = 4
	fieldSilent = 5
	fieldState  = 6
	fieldText   = 7
)

// Event is the decoded form of one Dashboard call.
type Event struct {
	Kind   kind
	ID     uint64
	Verb   string
	Noun   string
	Silent bool
	State  uint32
	Text   string
}

func encodeBeginTask(id uint64, verb, noun string, silent bool) []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldKind, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(kindBeginTask))
	b = protowire.AppendTag(b, fieldID, protowire.VarintType)
	b = protowire.AppendVarint(b, id)
	b = protowire.AppendTag(b, fieldVerb, protowire.BytesType)
	b = protowire.AppendString(b, verb)
	b = protowire.AppendTag(b, fieldNoun, protowire.BytesType)
	b = protowire.AppendString(b, noun)
	b = protowire.AppendTag(b, fieldSilent, protowire.VarintType)
	b = protowire.AppendVarint(b, boolToVarint(silent))
	return b
}

func encodeSetState(id uint64, state uint32) []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldKind, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(kindSetState))
	b = protowire.AppendTag(b, fieldID, protowire.VarintType)
	b = protowire.AppendVarint(b, id)
	b = protowire.AppendTag(b, fieldState, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(state))
	return b
}

func encodeAddOutput(id uint64, text string) []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldKind, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(kindAddOutput))
	b = protowire.AppendTag(b, fieldID, protowire.VarintType)
	b = protowire.AppendVarint(b, id)
	b = protowire.AppendTag(b, fieldText, protowire.BytesType)
	b = protowire.AppendString(b, text)
	return b
}

func encodeCloseTask(id uint64) []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldKind, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(kindCloseTask))
	b = protowire.AppendTag(b, fieldID, protowire.VarintType)
	b = protowire.AppendVarint(b, id)
	return b
}

func boolToVarint(v bool) uint64 {
	if v {
		return 1
	}
	return 0
}

// writeFrame writes a 4-byte big-endian length prefix followed by body.
func writeFrame(w io.Writer, body []byte) error {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(body)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := w.Write(body)
	return err
}

// ReadEvent reads one length-prefixed frame from r and decodes it.
func ReadEvent(r io.Reader) (Event, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return Event{}, err
	}
	body := make([]byte, binary.BigEndian.Uint32(lenBuf[:]))
	if _, err := io.ReadFull(r, body); err != nil {
		return Event{}, err
	}
	return decodeEvent(body)
}

func decodeEvent(b []byte) (Event, error) {
	var ev Event
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return Event{}, fmt.Errorf("wire: malformed tag")
		}
		b = b[n:]
		switch num {
		case fieldKind:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return Event{}, fmt.Errorf("wire: malformed kind")
			}
			ev.Kind = kind(v)
			b = b[n:]
		case fieldID:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return Event{}, fmt.Errorf("wire: malformed id")
			}
			ev.ID = v
			b = b[n:]
		case fieldVerb:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return Event{}, fmt.Errorf("wire: malformed verb")
			}
			ev.Verb = v
			b = b[n:]
		case fieldNoun:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return Event{}, fmt.Errorf("wire: malformed noun")
			}
			ev.Noun = v
			b = b[n:]
		case fieldSilent:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return Event{}, fmt.Errorf("wire: malformed silent")
			}
			ev.Silent = v != 0
			b = b[n:]
		case fieldState:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return Event{}, fmt.Errorf("wire: malformed state")
			}
			ev.State = uint32(v)
			b = b[n:]
		case fieldText:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return Event{}, fmt.Errorf("wire: malformed text")
			}
			ev.Text = v
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return Event{}, fmt.Errorf("wire: malformed field %d", num)
			}
			b = b[n:]
		}
	}
	return ev, nil
}
