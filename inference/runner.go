package inference

import (
	"context"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"

	"github.com/nvr-ai/go-detect/common"
	"github.com/nvr-ai/go-detect/images"
	"github.com/nvr-ai/go-detect/models/postprocess"
)

// Infer runs d once over t and returns its unfiltered predictions.
//
// The detector receives a private copy of t, so t is never mutated. Shape or
// dtype mismatches, detector errors, detector panics, and predictions with
// mismatched sequence lengths are all reported as common.KindInference.
//
// Arguments:
//   - ctx: Checked before the forward pass; the pass itself is not interrupted.
//   - d: The detector.
//   - t: A [1, 3, H, W] float32 tensor.
//
// Returns:
//   - postprocess.RawPredictions: Boxes, scores, and labels of equal length.
//   - error: A *common.Error of kind common.KindInference.
//
// @example
// raw, err := inference.Infer(ctx, detector, t)
//
//	if err != nil {
//		return err
//	}
//
// fmt.Printf("%d proposals\n", raw.Len())
func Infer(ctx context.Context, d Detector, t *tensor.Dense) (raw postprocess.RawPredictions, err error) {
	if d == nil {
		return raw, common.Errorf(common.KindInference, "no detector")
	}
	if _, _, err := images.TensorShape(t); err != nil {
		return raw, common.NewError(common.KindInference, "", err)
	}
	if err := ctx.Err(); err != nil {
		return raw, common.NewError(common.KindInference, "", err)
	}

	in := t.Clone().(*tensor.Dense)

	defer func() {
		if r := recover(); r != nil {
			raw = postprocess.RawPredictions{}
			err = common.Errorf(common.KindInference, "detector panicked: %v", r)
		}
	}()

	raw, err = d.Detect(ctx, in)
	if err != nil {
		if common.KindOf(err) == common.KindInference {
			return postprocess.RawPredictions{}, err
		}
		return postprocess.RawPredictions{}, common.NewError(common.KindInference, "", errors.Wrap(err, "forward pass"))
	}
	if err := raw.Validate(); err != nil {
		return postprocess.RawPredictions{}, common.NewError(common.KindInference, "", err)
	}
	return raw, nil
}
