package detectors

import (
	"context"

	"gorgonia.org/tensor"

	"github.com/nvr-ai/go-detect/images"
	"github.com/nvr-ai/go-detect/models/postprocess"
)

// StaticDetector returns the same predictions for every input. It stands in
// for a network in tests and demos.
type StaticDetector struct {
	raw postprocess.RawPredictions
}

// NewStaticDetector returns a detector answering with raw.
func NewStaticDetector(raw postprocess.RawPredictions) *StaticDetector {
	return &StaticDetector{raw: raw}
}

// Detect implements inference.Detector. The tensor is checked but unused.
func (s *StaticDetector) Detect(ctx context.Context, t *tensor.Dense) (postprocess.RawPredictions, error) {
	if _, _, err := images.TensorShape(t); err != nil {
		return postprocess.RawPredictions{}, err
	}
	out := postprocess.RawPredictions{
		Boxes:  append([][4]float32(nil), s.raw.Boxes...),
		Scores: append([]float32(nil), s.raw.Scores...),
		Labels: append([]int(nil), s.raw.Labels...),
	}
	return out, nil
}
