package postprocess

import (
	"sort"

	"github.com/chewxy/math32"
)

// ConfidenceStats provides statistical analysis of detection confidence scores.
type ConfidenceStats struct {
	Mean   float32 `json:"mean"`
	Median float32 `json:"median"`
	Min    float32 `json:"min"`
	Max    float32 `json:"max"`
	StdDev float32 `json:"std_dev"`
}

// Summary describes a detection set for logging and reporting.
type Summary struct {
	// Count is the number of detections.
	Count int `json:"count"`
	// Confidence summarises the scores. Zero when Count is 0.
	Confidence ConfidenceStats `json:"confidence"`
	// MeanArea is the mean box area in pixels.
	MeanArea float32 `json:"mean_area"`
}

// Summarize computes count, confidence statistics, and mean box area.
//
// Arguments:
//   - set: The detections to summarise. It is not modified.
//
// Returns:
//   - Summary: The zero Summary for an empty set.
func Summarize(set Set) Summary {
	n := len(set)
	if n == 0 {
		return Summary{}
	}

	scores := make([]float32, n)
	var sum, area float32
	for i, d := range set {
		scores[i] = d.Score
		sum += d.Score
		area += d.Box.Area()
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i] < scores[j] })

	mean := sum / float32(n)
	var variance float32
	for _, s := range scores {
		variance += (s - mean) * (s - mean)
	}
	variance /= float32(n)

	median := scores[n/2]
	if n%2 == 0 {
		median = (scores[n/2-1] + scores[n/2]) / 2
	}

	return Summary{
		Count: n,
		Confidence: ConfidenceStats{
			Mean:   mean,
			Median: median,
			Min:    scores[0],
			Max:    scores[n-1],
			StdDev: math32.Sqrt(variance),
		},
		MeanArea: area / float32(n),
	}
}
