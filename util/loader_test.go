package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListImageFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"000000000139.jpg", "000000000009.JPG", "frame-42.png", "notes.txt", "cover.jpg",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "7.jpg"), 0o755))

	files, err := ListImageFiles(dir)
	require.NoError(t, err)
	require.Len(t, files, 3)

	assert.Equal(t, int64(9), files[0].ID)
	assert.Equal(t, int64(42), files[1].ID)
	assert.Equal(t, int64(139), files[2].ID)
	assert.Equal(t, filepath.Join(dir, "000000000139.jpg"), files[2].Path)

	byID := ImageFilesByID(files)
	assert.Equal(t, filepath.Join(dir, "frame-42.png"), byID[42])
}

func TestListImageFilesMissingDir(t *testing.T) {
	_, err := ListImageFiles(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
