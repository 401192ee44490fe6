package dataset

import (
	"encoding/json"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Image is one entry of the COCO "images" table.
type Image struct {
	ID       int64  `json:"id"`
	FileName string `json:"file_name"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// Category is one entry of the COCO "categories" table.
type Category struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Supercategory string `json:"supercategory"`
}

// Annotation is one object instance. BBox is (x, y, width, height) in pixels.
type Annotation struct {
	ID         int64      `json:"id"`
	ImageID    int64      `json:"image_id"`
	CategoryID int64      `json:"category_id"`
	BBox       [4]float32 `json:"bbox"`
	Area       float32    `json:"area"`
	IsCrowd    int        `json:"iscrowd"`
}

// File is the on-disk layout of a COCO instances file. Segmentations are not
// decoded.
type File struct {
	Images      []Image      `json:"images"`
	Annotations []Annotation `json:"annotations"`
	Categories  []Category   `json:"categories"`
}

// Index answers category and image queries over a COCO annotation file.
type Index struct {
	images      map[int64]Image
	imageIDs    []int64
	categories  []Category
	annotations map[int64][]Annotation
	byCategory  map[int64]map[int64]struct{}
}

// LoadIndex reads and indexes a COCO instances file.
//
// Arguments:
//   - path: The annotation file, e.g. annotations/instances_val2017.json.
//
// Returns:
//   - *Index: The index.
//   - error: If the file cannot be read or parsed.
func LoadIndex(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open annotations")
	}
	defer f.Close()

	idx, err := ReadIndex(f)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return idx, nil
}

// ReadIndex parses a COCO instances document from r.
func ReadIndex(r io.Reader) (*Index, error) {
	var file File
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, errors.Wrap(err, "decode annotations")
	}
	return NewIndex(file), nil
}

// NewIndex builds an index over file.
func NewIndex(file File) *Index {
	idx := &Index{
		images:      make(map[int64]Image, len(file.Images)),
		categories:  append([]Category(nil), file.Categories...),
		annotations: make(map[int64][]Annotation),
		byCategory:  make(map[int64]map[int64]struct{}),
	}
	for _, img := range file.Images {
		if _, ok := idx.images[img.ID]; !ok {
			idx.imageIDs = append(idx.imageIDs, img.ID)
		}
		idx.images[img.ID] = img
	}
	sort.Slice(idx.imageIDs, func(i, j int) bool { return idx.imageIDs[i] < idx.imageIDs[j] })
	sort.SliceStable(idx.categories, func(i, j int) bool { return idx.categories[i].ID < idx.categories[j].ID })

	for _, a := range file.Annotations {
		idx.annotations[a.ImageID] = append(idx.annotations[a.ImageID], a)
		set, ok := idx.byCategory[a.CategoryID]
		if !ok {
			set = make(map[int64]struct{})
			idx.byCategory[a.CategoryID] = set
		}
		set[a.ImageID] = struct{}{}
	}
	return idx
}

// Categories returns every category ordered by id.
func (x *Index) Categories() []Category {
	return append([]Category(nil), x.categories...)
}

// CategoryIDs returns the ids of the named categories, ordered by id.
// Names are matched case-insensitively; no names returns every id.
func (x *Index) CategoryIDs(names ...string) []int64 {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[strings.ToLower(strings.TrimSpace(n))] = true
	}

	ids := make([]int64, 0, len(x.categories))
	for _, c := range x.categories {
		if len(names) == 0 || want[strings.ToLower(c.Name)] {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// ImageIDs returns, in ascending order, the ids of the images that contain
// at least one instance of every given category. No categories returns
// every image id.
func (x *Index) ImageIDs(catIDs ...int64) []int64 {
	if len(catIDs) == 0 {
		return append([]int64(nil), x.imageIDs...)
	}

	out := make([]int64, 0)
	for _, id := range x.imageIDs {
		all := true
		for _, c := range catIDs {
			if _, ok := x.byCategory[c][id]; !ok {
				all = false
				break
			}
		}
		if all {
			out = append(out, id)
		}
	}
	return out
}

// Image returns the image with the given id.
func (x *Index) Image(id int64) (Image, bool) {
	img, ok := x.images[id]
	return img, ok
}

// Annotations returns the instances annotated on an image, in file order.
func (x *Index) Annotations(imageID int64) []Annotation {
	return append([]Annotation(nil), x.annotations[imageID]...)
}

// Len returns the number of images.
func (x *Index) Len() int {
	return len(x.imageIDs)
}
