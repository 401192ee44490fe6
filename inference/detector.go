// Package inference - Detector contract, the inference runner, and the
// process-wide detector provider.
package inference

import (
	"context"

	"gorgonia.org/tensor"

	"github.com/nvr-ai/go-detect/models/postprocess"
)

// Detector is a pretrained detection function.
//
// Detect runs one forward pass over a [1, 3, H, W] float32 tensor with
// values in [0, 1] and returns one entry per proposed instance, with boxes in
// the tensor's pixel coordinates. Implementations must not retain t.
type Detector interface {
	Detect(ctx context.Context, t *tensor.Dense) (postprocess.RawPredictions, error)
}

// DetectorFunc adapts a function to the Detector interface.
type DetectorFunc func(ctx context.Context, t *tensor.Dense) (postprocess.RawPredictions, error)

// Detect calls f(ctx, t).
func (f DetectorFunc) Detect(ctx context.Context, t *tensor.Dense) (postprocess.RawPredictions, error) {
	return f(ctx, t)
}
