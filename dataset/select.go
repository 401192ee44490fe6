package dataset

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/nvr-ai/go-detect/util"
)

// Sample is one selected image.
type Sample struct {
	// Image is the COCO image record.
	Image Image
	// Path is the image file on disk.
	Path string
	// Annotations are every instance annotated on the image.
	Annotations []Annotation
}

// Select returns up to limit images containing category, in ascending id order.
//
// Images are resolved to files by id, not by position. Images whose file is
// missing from imageDir are skipped and logged.
//
// Arguments:
//   - idx: The annotation index.
//   - imageDir: The directory holding the image files.
//   - category: The category name, e.g. "person".
//   - limit: The maximum number of samples. 0 means no limit.
//   - logger: Receives skipped files. May be nil.
//
// Returns:
//   - []Sample: The selected samples.
//   - error: If the category is unknown or limit is negative.
func Select(idx *Index, imageDir, category string, limit int, logger *zap.SugaredLogger) ([]Sample, error) {
	if limit < 0 {
		return nil, errors.Errorf("limit must be non-negative, got %d", limit)
	}

	catIDs := idx.CategoryIDs(category)
	if len(catIDs) == 0 {
		return nil, errors.Errorf("category %q not found in annotations", category)
	}

	ids := idx.ImageIDs(catIDs...)
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return Resolve(idx, imageDir, ids, logger), nil
}

// Resolve maps image ids to the files in imageDir named by those ids,
// skipping ids that are not in the index or have no file.
func Resolve(idx *Index, imageDir string, ids []int64, logger *zap.SugaredLogger) []Sample {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	files, err := util.ListImageFiles(imageDir)
	if err != nil {
		logger.Warnw("cannot list images", "dir", imageDir, "error", err)
	}
	byID := util.ImageFilesByID(files)

	samples := make([]Sample, 0, len(ids))
	for _, id := range ids {
		img, ok := idx.Image(id)
		if !ok {
			logger.Warnw("skipping unknown image", "id", id)
			continue
		}
		path, ok := byID[id]
		if !ok {
			logger.Warnw("skipping image", "id", id, "file", img.FileName, "dir", imageDir)
			continue
		}
		samples = append(samples, Sample{
			Image:       img,
			Path:        path,
			Annotations: idx.Annotations(id),
		})
	}
	return samples
}
