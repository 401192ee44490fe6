package detectors

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/nvr-ai/go-detect/common"
	"github.com/nvr-ai/go-detect/inference"
)

// Open builds the detector cfg describes.
//
// Arguments:
//   - cfg: The detector configuration.
//   - logger: The logger for load events, or nil.
//
// Returns:
//   - inference.Detector: The detector; it also implements io.Closer.
//   - error: A *common.Error of kind common.KindModelLoad.
func Open(cfg Config, logger *zap.SugaredLogger) (inference.Detector, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if err := cfg.Validate(); err != nil {
		return nil, common.NewError(common.KindModelLoad, cfg.ModelPath, err)
	}

	var (
		d   inference.Detector
		err error
	)
	switch cfg.Backend {
	case BackendONNX:
		d, err = NewONNXDetector(cfg, logger)
	case BackendOpenCV:
		d, err = NewOpenCVDetector(cfg, logger)
	}
	if err != nil {
		return nil, common.NewError(common.KindModelLoad, cfg.ModelPath, err)
	}
	return d, nil
}

// Loader returns a LoadFunc that opens cfg, for use with inference.NewProvider.
//
// @example
// provider := inference.NewProvider(detectors.Loader(detectors.DefaultConfig(), logger))
func Loader(cfg Config, logger *zap.SugaredLogger) inference.LoadFunc {
	return func(ctx context.Context) (inference.Detector, error) {
		if err := ctx.Err(); err != nil {
			return nil, common.NewError(common.KindModelLoad, cfg.ModelPath, err)
		}
		return Open(cfg, logger)
	}
}

// checkWeights fails unless path is a non-empty regular file.
func checkWeights(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return errors.Wrap(err, "model file not found")
	}
	if info.IsDir() {
		return errors.Errorf("model path is a directory: %s", path)
	}
	if info.Size() == 0 {
		return errors.Errorf("model file is empty: %s", path)
	}
	return nil
}
