// Package dataset - COCO annotation index, person subset selection, and the
// download of the val2017 images and annotations.
package dataset

import (
	"path/filepath"

	"github.com/pkg/errors"
)

const (
	// ImagesURL is the COCO 2017 validation image archive.
	ImagesURL = "http://images.cocodataset.org/zips/val2017.zip"
	// AnnotationsURL is the COCO 2017 train/val annotation archive.
	AnnotationsURL = "http://images.cocodataset.org/annotations/annotations_trainval2017.zip"
)

// Config locates the dataset and the subset to select.
type Config struct {
	// Dir is where archives are extracted.
	Dir string `json:"dir" yaml:"dir"`
	// ImagesURL and AnnotationsURL are the archive sources.
	ImagesURL      string `json:"images_url" yaml:"images_url"`
	AnnotationsURL string `json:"annotations_url" yaml:"annotations_url"`
	// ImageDir is the extracted image directory, relative to Dir.
	ImageDir string `json:"image_dir" yaml:"image_dir"`
	// Annotations is the instances file, relative to Dir.
	Annotations string `json:"annotations" yaml:"annotations"`
	// Category is the class every selected image must contain.
	Category string `json:"category" yaml:"category"`
	// Limit caps the subset size. 0 selects every matching image.
	Limit int `json:"limit" yaml:"limit"`
	// IndexDB is an sqlite file caching the annotation index. Empty disables it.
	IndexDB string `json:"index_db" yaml:"index_db"`
}

// DefaultConfig selects the first 100 val2017 images containing a person.
func DefaultConfig() Config {
	return Config{
		Dir:            ".",
		ImagesURL:      ImagesURL,
		AnnotationsURL: AnnotationsURL,
		ImageDir:       "val2017",
		Annotations:    filepath.Join("annotations", "instances_val2017.json"),
		Category:       "person",
		Limit:          100,
	}
}

// Validate checks the subset parameters.
func (c Config) Validate() error {
	if c.Category == "" {
		return errors.New("dataset category is required")
	}
	if c.Limit < 0 {
		return errors.Errorf("dataset limit must be non-negative, got %d", c.Limit)
	}
	return nil
}

// ImagePath returns the extracted image directory.
func (c Config) ImagePath() string {
	return filepath.Join(c.Dir, c.ImageDir)
}

// AnnotationsPath returns the instances annotation file.
func (c Config) AnnotationsPath() string {
	return filepath.Join(c.Dir, c.Annotations)
}
