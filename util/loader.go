// Package util - Directory helpers.
package util

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// ImageFile represents an image file whose name is a number.
type ImageFile struct {
	// Path is the path to the image file.
	Path string
	// ID is the numeric file stem, e.g. 139 for 000000000139.jpg.
	ID int64
}

// imageExts are the extensions ListImageFiles picks up.
var imageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".bmp": true, ".gif": true,
	".tif": true, ".tiff": true, ".webp": true,
}

// ListImageFiles lists the image files of a directory keyed by their numeric
// file stem. Files with a non-numeric stem and subdirectories are skipped.
//
// Arguments:
// - dir: Directory path containing image files.
//
// Returns:
// - []ImageFile: The image files sorted by ID.
// - error: Error if the directory cannot be read.
func ListImageFiles(dir string) ([]ImageFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []ImageFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		ext := filepath.Ext(name)
		if !imageExts[strings.ToLower(ext)] {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSuffix(name, ext), "frame-"), 10, 64)
		if err != nil {
			continue
		}
		files = append(files, ImageFile{
			Path: filepath.Join(dir, name),
			ID:   id,
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].ID < files[j].ID
	})

	return files, nil
}

// ImageFilesByID indexes files by ID. Later duplicates replace earlier ones.
func ImageFilesByID(files []ImageFile) map[int64]string {
	out := make(map[int64]string, len(files))
	for _, f := range files {
		out[f.ID] = f.Path
	}
	return out
}
