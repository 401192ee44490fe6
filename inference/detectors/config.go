// Package detectors - Concrete detectors behind the inference.Detector contract.
package detectors

import (
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-detect/inference/providers"
	"github.com/nvr-ai/go-detect/models"
)

// Backend names a detector implementation.
type Backend string

const (
	// BackendONNX runs an ONNX export through ONNX Runtime.
	BackendONNX Backend = "onnx"
	// BackendOpenCV runs a Caffe, TensorFlow, or ONNX SSD through OpenCV DNN.
	BackendOpenCV Backend = "opencv"
)

// Config describes the detector to load.
type Config struct {
	// Backend is the detector implementation.
	Backend Backend `json:"backend" yaml:"backend"`
	// ModelPath is the weights file.
	ModelPath string `json:"model_path" yaml:"model_path"`
	// ConfigPath is the network description for OpenCV (.prototxt, .pbtxt). Optional.
	ConfigPath string `json:"config_path" yaml:"config_path"`
	// Family is the label convention of the model's class ids.
	Family models.Family `json:"family" yaml:"family"`

	// LibraryPath is the onnxruntime shared library. Empty uses the platform default.
	LibraryPath string `json:"library_path" yaml:"library_path"`
	// Provider is the ONNX Runtime execution provider.
	Provider providers.Backend `json:"provider" yaml:"provider"`
	// Threads bounds intra-op parallelism. 0 uses the runtime default.
	Threads int `json:"threads" yaml:"threads"`

	// InputWidth and InputHeight resample the image before the forward pass.
	// Zero keeps the image size (models that resize internally).
	InputWidth  int `json:"input_width" yaml:"input_width"`
	InputHeight int `json:"input_height" yaml:"input_height"`
	// Mean and Std normalise each RGB channel of the [0, 1] input: (v - mean) / std.
	// The opencv backend takes a single scale, so its Std must be uniform.
	Mean [3]float32 `json:"mean" yaml:"mean"`
	Std  [3]float32 `json:"std" yaml:"std"`
	// SwapRB feeds OpenCV networks RGB instead of BGR.
	SwapRB bool `json:"swap_rb" yaml:"swap_rb"`
	// NormalizedBoxes marks models whose boxes are relative to [0, 1].
	NormalizedBoxes bool `json:"normalized_boxes" yaml:"normalized_boxes"`

	// Input and Outputs name the ONNX graph nodes. Empty reads them from the model.
	Input   string   `json:"input" yaml:"input"`
	Outputs []string `json:"outputs" yaml:"outputs"`
}

// DefaultConfig returns a torchvision ssd300_vgg16 ONNX export on the CPU.
//
// The export resizes and normalises internally and returns boxes in input
// pixels, so no resampling or normalisation is configured.
func DefaultConfig() Config {
	return Config{
		Backend:   BackendONNX,
		ModelPath: "models/ssd300_vgg16.onnx",
		Family:    models.FamilyTorchvision,
		Provider:  providers.CPUBackend,
		Std:       [3]float32{1, 1, 1},
	}
}

// MobileNetSSDConfig returns the Caffe MobileNet-SSD (Pascal VOC) network
// for OpenCV DNN.
func MobileNetSSDConfig() Config {
	return Config{
		Backend:         BackendOpenCV,
		ModelPath:       "models/MobileNetSSD_deploy.caffemodel",
		ConfigPath:      "models/MobileNetSSD_deploy.prototxt",
		Family:          models.FamilyVOC,
		InputWidth:      300,
		InputHeight:     300,
		Mean:            [3]float32{0.5, 0.5, 0.5},
		Std:             [3]float32{0.5, 0.5, 0.5},
		NormalizedBoxes: true,
	}
}

// Validate checks the backend and preprocessing parameters.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendONNX, BackendOpenCV:
	default:
		return errors.Errorf("unsupported detector backend: %q", c.Backend)
	}
	if c.ModelPath == "" {
		return errors.New("model_path is required")
	}
	if c.InputWidth < 0 || c.InputHeight < 0 || (c.InputWidth == 0) != (c.InputHeight == 0) {
		return errors.Errorf("input size must be both zero or both positive, got %dx%d",
			c.InputWidth, c.InputHeight)
	}
	if c.Backend == BackendOpenCV && c.InputWidth == 0 {
		return errors.New("opencv backend requires input_width and input_height")
	}
	for i, s := range c.Std {
		if s < 0 {
			return errors.Errorf("std[%d] must be non-negative, got %v", i, s)
		}
	}
	if std := c.std(); c.Backend == BackendOpenCV && (std[0] != std[1] || std[1] != std[2]) {
		return errors.Errorf("opencv backend scales all channels alike, got std %v", c.Std)
	}
	if _, err := models.Lookup(c.Family); err != nil {
		return err
	}
	return c.Runtime().Validate()
}

// Runtime returns the ONNX Runtime provider configuration.
func (c Config) Runtime() providers.Config {
	rt := providers.DefaultConfig()
	rt.Backend = c.Provider
	rt.LibraryPath = c.LibraryPath
	rt.IntraOpThreads = c.Threads
	return rt
}

// std returns the per-channel divisor with unset channels treated as 1.
func (c Config) std() [3]float32 {
	s := c.Std
	for i := range s {
		if s[i] == 0 {
			s[i] = 1
		}
	}
	return s
}
