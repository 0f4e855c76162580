package domain

// Tag names a capability an action requires or provides, e.g. a header
// search path entry or a named output of another action. Tags are
// interned so the Tag Index can compare and hash them without touching
// the underlying bytes.
type Tag struct {
	name InternedString
}

// NewTag interns s and returns the Tag wrapping it.
func NewTag(s string) Tag {
	return Tag{name: NewInternedString(s)}
}

// String returns the tag's underlying name.
func (t Tag) String() string {
	return t.name.String()
}

// Name returns the tag's interned name, for use as a map key.
func (t Tag) Name() InternedString {
	return t.name
}
