package fs

import (
	"io/fs"
	"iter"
	"path/filepath"
)

// Walker enumerates files under a root for the Driver Root's initial
// discovery pass, skipping version-control and dependency directories that
// are never build inputs.
type Walker struct{}

// NewWalker creates a Walker.
func NewWalker() *Walker {
	return &Walker{}
}

var skippedDirs = map[string]struct{}{
	".git":         {},
	".jj":          {},
	"node_modules": {},
}

// WalkFiles yields the absolute path of every regular file under root.
func (w *Walker) WalkFiles(root string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if _, skip := skippedDirs[d.Name()]; skip && path != root {
					return filepath.SkipDir
				}
				return nil
			}
			abs, err := filepath.Abs(path)
			if err != nil {
				return nil
			}
			if !yield(abs) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}
