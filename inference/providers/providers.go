// Package providers - ONNX Runtime environment and execution provider setup.
package providers

import (
	"github.com/pkg/errors"
)

// Backend represents an ONNX Runtime execution provider.
type Backend string

const (
	// CPUBackend uses the default CPU execution provider.
	CPUBackend Backend = "cpu"
	// CUDABackend uses NVIDIA CUDA for GPU acceleration.
	CUDABackend Backend = "cuda"
	// CoreMLBackend uses Apple CoreML for macOS/iOS acceleration.
	CoreMLBackend Backend = "coreml"
	// OpenVINOBackend uses Intel OpenVINO for inference optimization.
	OpenVINOBackend Backend = "openvino"
)

// Backends lists every supported execution provider.
var Backends = []Backend{CPUBackend, CUDABackend, CoreMLBackend, OpenVINOBackend}

// Config selects the runtime library and execution provider for a session.
type Config struct {
	// Backend is the execution provider to append. Empty means CPU.
	Backend Backend `json:"backend" yaml:"backend"`
	// LibraryPath is the onnxruntime shared library. Empty means DefaultLibraryPath.
	LibraryPath string `json:"library_path" yaml:"library_path"`
	// IntraOpThreads parallelises execution within graph nodes. 0 uses the runtime default.
	IntraOpThreads int `json:"intra_op_threads" yaml:"intra_op_threads"`
	// InterOpThreads parallelises execution across graph nodes. 0 uses the runtime default.
	InterOpThreads int `json:"inter_op_threads" yaml:"inter_op_threads"`

	CUDA     CUDAOptions     `json:"cuda" yaml:"cuda"`
	CoreML   CoreMLOptions   `json:"coreml" yaml:"coreml"`
	OpenVINO OpenVINOOptions `json:"openvino" yaml:"openvino"`
}

// DefaultConfig returns a CPU configuration using the platform library path.
func DefaultConfig() Config {
	return Config{
		Backend:  CPUBackend,
		OpenVINO: DefaultOpenVINOOptions(),
	}
}

// Validate checks the backend name and thread counts.
func (c Config) Validate() error {
	if c.IntraOpThreads < 0 || c.InterOpThreads < 0 {
		return errors.Errorf("thread counts must be non-negative, got intra=%d inter=%d",
			c.IntraOpThreads, c.InterOpThreads)
	}
	if c.Backend == "" {
		return nil
	}
	for _, b := range Backends {
		if b == c.Backend {
			return nil
		}
	}
	return errors.Errorf("unsupported execution provider: %s", c.Backend)
}
