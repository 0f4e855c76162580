package wire

import (
	"io"
	"sync/atomic"

	"ekam.build/ekam/internal/core/domain"
	"ekam.build/ekam/internal/core/ports"
)

// Dashboard reports every task event as a length-prefixed protobuf frame
// written to stream, queued through a single writer goroutine so that
// callers (which may run on the Event Manager's goroutine) never block on
// I/O — grounded on the original ProtoDashboard's WriteBuffer queue.
type Dashboard struct {
	queue  chan []byte
	done   chan struct{}
	nextID atomic.Uint64
}

// New starts a Dashboard writing frames to stream until Close is called.
func New(stream io.Writer) *Dashboard {
	d := &Dashboard{
		queue: make(chan []byte, 256),
		done:  make(chan struct{}),
	}
	go d.run(stream)
	return d
}

func (d *Dashboard) run(stream io.Writer) {
	defer close(d.done)
	for body := range d.queue {
		if err := writeFrame(stream, body); err != nil {
			return
		}
	}
}

// Close stops accepting new frames and waits for the writer goroutine to
// drain the remaining queue.
func (d *Dashboard) Close() {
	close(d.queue)
	<-d.done
}

func (d *Dashboard) BeginTask(verb, noun string, silent bool) ports.Task {
	id := d.nextID.Add(1)
	d.send(encodeBeginTask(id, verb, noun, silent))
	return &task{id: id, dashboard: d}
}

func (d *Dashboard) send(body []byte) {
	select {
	case d.queue <- body:
	default:
		// Queue full: drop rather than block the caller. A disconnected or
		// slow remote dashboard should not stall the build.
	}
}

type task struct {
	id        uint64
	dashboard *Dashboard
}

func (t *task) SetState(state domain.TaskState) {
	t.dashboard.send(encodeSetState(t.id, uint32(state)))
}

func (t *task) AddOutput(text string) {
	t.dashboard.send(encodeAddOutput(t.id, text))
}

func (t *task) Close() {
	t.dashboard.send(encodeCloseTask(t.id))
}

var _ ports.Dashboard = (*Dashboard)(nil)
var _ ports.Task = (*task)(nil)
