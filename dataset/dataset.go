package dataset

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Prepare fetches the archives if needed, indexes the annotations, and
// selects the configured subset.
//
// When cfg.IndexDB is set the index is imported into SQLite and the subset
// is queried from there.
//
// Arguments:
//   - ctx: Cancels downloads and database work.
//   - cfg: The dataset location and subset.
//   - logger: Receives progress. May be nil.
//
// Returns:
//   - []Sample: The selected images, in ascending id order.
//   - error: If fetching, parsing, or selection fails.
func Prepare(ctx context.Context, cfg Config, logger *zap.SugaredLogger) ([]Sample, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	fetcher := NewFetcher(cfg.Dir, logger)
	if _, err := fetcher.Fetch(ctx, cfg.ImageDir, cfg.ImagesURL); err != nil {
		return nil, errors.Wrap(err, "fetch images")
	}
	if _, err := fetcher.Fetch(ctx, topLevel(cfg.Annotations), cfg.AnnotationsURL); err != nil {
		return nil, errors.Wrap(err, "fetch annotations")
	}

	idx, err := LoadIndex(cfg.AnnotationsPath())
	if err != nil {
		return nil, err
	}
	logger.Infow("indexed annotations", "images", idx.Len(), "categories", len(idx.Categories()))

	if cfg.IndexDB == "" {
		return Select(idx, cfg.ImagePath(), cfg.Category, cfg.Limit, logger)
	}

	store, err := OpenStore(cfg.IndexDB)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	if err := store.Import(ctx, idx); err != nil {
		return nil, err
	}
	ids, err := store.ImageIDs(ctx, cfg.Category, cfg.Limit)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 && len(idx.CategoryIDs(cfg.Category)) == 0 {
		return nil, errors.Errorf("category %q not found in annotations", cfg.Category)
	}
	return Resolve(idx, cfg.ImagePath(), ids, logger), nil
}

// topLevel returns the first element of a relative path.
func topLevel(path string) string {
	path = filepath.ToSlash(filepath.Clean(path))
	if i := strings.IndexByte(path, '/'); i >= 0 {
		return path[:i]
	}
	return path
}
