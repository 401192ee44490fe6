package inference

import (
	"context"
	"io"
	"sync"
	"time"

	"gorgonia.org/tensor"

	"github.com/nvr-ai/go-detect/models/postprocess"
)

// SerializedDetector runs at most one forward pass at a time and tracks
// inference timings.
type SerializedDetector struct {
	detector Detector

	mu    sync.Mutex
	count int64
	total time.Duration
}

// Stats summarises the passes run through a SerializedDetector.
type Stats struct {
	// Count is the number of completed passes, failed ones included.
	Count int64 `json:"count"`
	// Total is the summed wall time of all passes.
	Total time.Duration `json:"total"`
	// Average is Total / Count, or 0 before the first pass.
	Average time.Duration `json:"average"`
}

// Serialized wraps d with a mutex for use from multiple goroutines.
func Serialized(d Detector) *SerializedDetector {
	return &SerializedDetector{detector: d}
}

// Detect implements Detector.
func (s *SerializedDetector) Detect(ctx context.Context, t *tensor.Dense) (postprocess.RawPredictions, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	defer func() {
		s.count++
		s.total += time.Since(start)
	}()

	return s.detector.Detect(ctx, t)
}

// Stats returns a snapshot of the timing counters.
func (s *SerializedDetector) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{Count: s.count, Total: s.total}
	if s.count > 0 {
		st.Average = s.total / time.Duration(s.count)
	}
	return st
}

// Close closes the wrapped detector if it implements io.Closer.
func (s *SerializedDetector) Close() error {
	if c, ok := s.detector.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
