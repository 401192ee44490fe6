// Package postprocess - Raw detector output and the detections derived from it.
package postprocess

import (
	"fmt"

	"github.com/nvr-ai/go-detect/common"
)

// RawPredictions is the unfiltered output of one forward pass: three parallel
// sequences with one entry per proposed instance.
type RawPredictions struct {
	// Boxes are (left, top, right, bottom) in original-image pixels.
	Boxes [][4]float32
	// Scores are confidences in [0,1].
	Scores []float32
	// Labels are class label ids.
	Labels []int
}

// Len returns the number of proposed instances.
func (r RawPredictions) Len() int {
	return len(r.Scores)
}

// Validate checks that boxes, scores, and labels have equal length.
func (r RawPredictions) Validate() error {
	if len(r.Boxes) != len(r.Scores) || len(r.Scores) != len(r.Labels) {
		return fmt.Errorf("mismatched prediction lengths: %d boxes, %d scores, %d labels",
			len(r.Boxes), len(r.Scores), len(r.Labels))
	}
	return nil
}

// At returns instance i as a Result.
func (r RawPredictions) At(i int) Result {
	return Result{
		Box:   common.NewBoundingBox(r.Boxes[i]),
		Score: r.Scores[i],
		Class: r.Labels[i],
	}
}

// Append adds one instance to all three sequences.
func (r *RawPredictions) Append(box [4]float32, score float32, label int) {
	r.Boxes = append(r.Boxes, box)
	r.Scores = append(r.Scores, score)
	r.Labels = append(r.Labels, label)
}

// Result represents a single detection result.
type Result struct {
	// The bounding box of the result.
	Box common.BoundingBox
	// The confidence score of the result.
	Score float32
	// The predicted class index of the result.
	Class int
}

func (r Result) String() string {
	return fmt.Sprintf("class %d (score %.2f): %s", r.Class, r.Score, r.Box)
}

// Set is an ordered sequence of detections restricted to one class and a
// minimum score. Order follows the detector's native output order.
type Set []Result
