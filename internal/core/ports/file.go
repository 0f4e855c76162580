package ports

// File is a canonical handle to a location in the input or derived tree.
// The core consumes it only through identity, navigation, content, and
// lifecycle operations; it never assumes disk residency, so a lazily
// materialized output can satisfy the same interface as a real path.
//
//go:generate mockgen -source=file.go -destination=mocks/mock_file.go -package=mocks
type File interface {
	// Equals reports whether other names the same canonical location.
	Equals(other File) bool
	// IdentityHash is stable across calls for handles that Equals reports
	// equal, so File can key a map without re-hashing its canonical name.
	IdentityHash() uint64
	// CanonicalName returns the location's canonical, comparable name.
	CanonicalName() string

	// Parent returns the containing directory's handle.
	Parent() (File, error)
	// Relative resolves path against this file, treated as a directory.
	Relative(path string) (File, error)
	// List returns the immediate children of this file, treated as a
	// directory.
	List() ([]File, error)

	// ReadAll reads the file's entire content.
	ReadAll() ([]byte, error)
	// ContentHash returns a hash of the file's current content, suitable
	// for change detection but not for cryptographic purposes.
	ContentHash() (uint64, error)

	// CreateDirectory ensures this location exists as a directory.
	CreateDirectory() error
	// Link creates target as a reference to this file's content, using a
	// hard link where the backing filesystem allows it.
	Link(target File) error
	// Unlink removes this location from the backing tree.
	Unlink() error
	// WriteAll atomically replaces this location's content with data.
	WriteAll(data []byte) error
}
