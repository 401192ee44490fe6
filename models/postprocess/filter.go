package postprocess

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/nvr-ai/go-detect/models"
)

// DefaultConfidence is the default confidence cutoff.
const DefaultConfidence float32 = 0.5

// Threshold selects the class to keep and the confidence cutoff.
type Threshold struct {
	// Class is the target class label id.
	Class int `json:"class" yaml:"class"`
	// Confidence is the exclusive lower bound on the score.
	Confidence float32 `json:"confidence" yaml:"confidence"`
}

// DefaultThreshold keeps persons scoring above 0.5.
func DefaultThreshold() Threshold {
	return Threshold{Class: models.PersonID, Confidence: DefaultConfidence}
}

// Validate rejects NaN cutoffs and negative class ids.
func (t Threshold) Validate() error {
	if math32.IsNaN(t.Confidence) {
		return fmt.Errorf("confidence threshold is NaN")
	}
	if t.Class < 0 {
		return fmt.Errorf("class id must be non-negative, got %d", t.Class)
	}
	return nil
}

// Keep reports whether a single instance passes the threshold.
//
// The comparison is strict: a score equal to the cutoff is rejected.
func (t Threshold) Keep(label int, score float32) bool {
	return label == t.Class && score > t.Confidence
}

// Filter selects the instances of raw matching the threshold, preserving order.
//
// Arguments:
//   - raw: The unfiltered predictions. Extra entries beyond the shortest of the
//     three sequences are ignored.
//   - t: The class and confidence cutoff.
//
// Returns:
//   - Set: The matching detections; empty (never nil) when nothing matches.
//
// @example
// set := postprocess.Filter(raw, postprocess.DefaultThreshold())
// fmt.Printf("found %d humans\n", len(set))
func Filter(raw RawPredictions, t Threshold) Set {
	n := min(len(raw.Boxes), len(raw.Scores), len(raw.Labels))
	out := make(Set, 0, n)
	for i := 0; i < n; i++ {
		if t.Keep(raw.Labels[i], raw.Scores[i]) {
			out = append(out, raw.At(i))
		}
	}
	return out
}

// Postprocessor transforms a detection set.
type Postprocessor func(Set) Set

// NewAreaFilter drops detections whose box area is below area pixels.
func NewAreaFilter(area float32) Postprocessor {
	return func(in Set) Set {
		out := make(Set, 0, len(in))
		for _, d := range in {
			if d.Box.Area() >= area {
				out = append(out, d)
			}
		}
		return out
	}
}
