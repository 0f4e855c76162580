package fs_test

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ekam.build/ekam/internal/adapters/fs"
)

func TestWalker_WalkFilesSkipsIgnoredDirs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".git", "HEAD"), []byte("x"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "node_modules", "pkg"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "node_modules", "pkg", "index.js"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("x"), 0o644))

	w := fs.NewWalker()
	var got []string
	for path := range w.WalkFiles(dir) {
		got = append(got, filepath.Base(path))
	}

	assert.True(t, slices.Contains(got, "main.go"))
	assert.False(t, slices.Contains(got, "HEAD"))
	assert.False(t, slices.Contains(got, "index.js"))
}

func TestWalker_WalkFilesStopsWhenYieldReturnsFalse(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("x"), 0o644))

	w := fs.NewWalker()
	count := 0
	for range w.WalkFiles(dir) {
		count++
		break
	}

	assert.Equal(t, 1, count)
}
