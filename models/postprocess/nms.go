// Package postprocess - provides Non-Maximum Suppression for detection sets.
package postprocess

import "sort"

// NewGreedyNMS returns a Postprocessor performing greedy Non-Maximum Suppression.
//
// Detections are visited in descending score order (ties keep their original
// relative order); any detection overlapping an already kept one by more than
// iouThreshold is suppressed. The survivors are returned in their original
// detector order.
//
// Arguments:
//   - iouThreshold: IoU above which overlapping boxes are suppressed.
//
// Returns:
//   - Postprocessor: The suppression step.
func NewGreedyNMS(iouThreshold float32) Postprocessor {
	return func(in Set) Set {
		n := len(in)
		if n == 0 {
			return Set{}
		}

		order := make([]int, n)
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool {
			return in[order[a]].Score > in[order[b]].Score
		})

		suppressed := make([]bool, n)
		for a, i := range order {
			if suppressed[i] {
				continue
			}
			for _, j := range order[a+1:] {
				if suppressed[j] || (in[i].Class != in[j].Class) {
					continue
				}
				if in[i].Box.IoU(in[j].Box) > iouThreshold {
					suppressed[j] = true
				}
			}
		}

		out := make(Set, 0, n)
		for i, d := range in {
			if !suppressed[i] {
				out = append(out, d)
			}
		}
		return out
	}
}
