package domain

// Provision records a single commitment: the action identified by Owner
// provides Tag, backed by File. The Tag Index keeps one Provision per live
// tag and rejects a second action trying to provide the same tag while the
// first is still live.
//
// Provision deliberately holds only the file's canonical name, not a File
// handle: domain is pure data with no dependency on the ports package, so
// the Tag Index keeps the live handle alongside this record instead.
type Provision struct {
	Tag   Tag
	File  InternedString
	Owner InternedString
}
