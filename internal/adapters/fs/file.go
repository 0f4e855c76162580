// Package fs adapts the local filesystem to ports.File and walks a
// directory tree for the Driver Root's discovery phase.
package fs

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/zerr"

	"ekam.build/ekam/internal/core/ports"
)

var _ ports.File = (*DiskFile)(nil)

// DiskFile is a ports.File handle backed by a real path on disk. Its
// canonical name is the absolute, cleaned path, so two handles obtained by
// different routes to the same location compare equal.
type DiskFile struct {
	path string
}

// New returns a DiskFile for path, resolved to an absolute, cleaned form.
func New(path string) (*DiskFile, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to resolve path"), "path", path)
	}
	return &DiskFile{path: filepath.Clean(abs)}, nil
}

func (f *DiskFile) Equals(other ports.File) bool {
	o, ok := other.(*DiskFile)
	return ok && o.path == f.path
}

func (f *DiskFile) IdentityHash() uint64 {
	return xxhash.Sum64String(f.path)
}

func (f *DiskFile) CanonicalName() string {
	return f.path
}

func (f *DiskFile) Parent() (ports.File, error) {
	return New(filepath.Dir(f.path))
}

func (f *DiskFile) Relative(path string) (ports.File, error) {
	if filepath.IsAbs(path) {
		return New(path)
	}
	return New(filepath.Join(f.path, path))
}

func (f *DiskFile) List() ([]ports.File, error) {
	entries, err := os.ReadDir(f.path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to list directory"), "path", f.path)
	}
	out := make([]ports.File, 0, len(entries))
	for _, e := range entries {
		child, err := New(filepath.Join(f.path, e.Name()))
		if err != nil {
			return nil, err
		}
		out = append(out, child)
	}
	return out, nil
}

func (f *DiskFile) ReadAll() ([]byte, error) {
	data, err := os.ReadFile(f.path) //nolint:gosec // path is the handle's own canonical location
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read file"), "path", f.path)
	}
	return data, nil
}

func (f *DiskFile) ContentHash() (uint64, error) {
	file, err := os.Open(f.path) //nolint:gosec // path is the handle's own canonical location
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to open file"), "path", f.path)
	}
	defer file.Close() //nolint:errcheck // best-effort close

	h := xxhash.New()
	if _, err := io.Copy(h, file); err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to hash file"), "path", f.path)
	}
	return h.Sum64(), nil
}

func (f *DiskFile) CreateDirectory() error {
	if err := os.MkdirAll(f.path, 0o755); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create directory"), "path", f.path)
	}
	return nil
}

func (f *DiskFile) Link(target ports.File) error {
	other, ok := target.(*DiskFile)
	if !ok {
		return zerr.New("cannot link a non-disk file")
	}
	if err := os.MkdirAll(filepath.Dir(other.path), 0o755); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create parent directory"), "path", other.path)
	}
	_ = os.Remove(other.path)
	if err := os.Link(f.path, other.path); err == nil {
		return nil
	}
	// Cross-device or unsupported hard link: fall back to a copy.
	data, err := f.ReadAll()
	if err != nil {
		return err
	}
	return other.WriteAll(data)
}

func (f *DiskFile) Unlink() error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return zerr.With(zerr.Wrap(err, "failed to remove file"), "path", f.path)
	}
	return nil
}

// WriteAll replaces the file's content atomically: it writes to a sibling
// temp file, then renames it over the target, so a reader never observes a
// partially written output.
func (f *DiskFile) WriteAll(data []byte) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create parent directory"), "path", f.path)
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".ekam-tmp-*")
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create temp file"), "path", f.path)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return zerr.With(zerr.Wrap(err, "failed to write temp file"), "path", f.path)
	}
	if err := tmp.Close(); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to close temp file"), "path", f.path)
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to rename into place"), "path", f.path)
	}
	return nil
}

// Stat reports whether the file exists and, if so, whether it is a
// directory — used by the Walker and by plugin findProvider responses that
// must distinguish a missing path from an empty one.
func (f *DiskFile) Stat() (info fs.FileInfo, err error) {
	return os.Stat(f.path)
}
