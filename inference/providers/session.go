package providers

import (
	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
)

// SessionOptions builds session options for cfg: thread counts, extended
// graph optimisation, and the configured execution provider.
//
// The caller must Destroy the returned options.
//
// Arguments:
//   - cfg: The provider configuration.
//
// Returns:
//   - *ort.SessionOptions: The configured options.
//   - error: If the options cannot be created or the provider is unavailable.
func SessionOptions(cfg Config) (*ort.SessionOptions, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, errors.Wrap(err, "error creating ORT session options")
	}

	if err := configure(options, cfg); err != nil {
		options.Destroy()
		return nil, err
	}
	return options, nil
}

func configure(options *ort.SessionOptions, cfg Config) error {
	if err := options.SetIntraOpNumThreads(cfg.IntraOpThreads); err != nil {
		return errors.Wrap(err, "error setting intra-op threads")
	}
	if err := options.SetInterOpNumThreads(cfg.InterOpThreads); err != nil {
		return errors.Wrap(err, "error setting inter-op threads")
	}
	if err := options.SetGraphOptimizationLevel(ort.GraphOptimizationLevelEnableExtended); err != nil {
		return errors.Wrap(err, "error setting graph optimization level")
	}

	switch cfg.Backend {
	case CUDABackend:
		cuda, err := cfg.CUDA.ToNativeProviderOptions()
		if err != nil {
			return errors.Wrap(err, "error converting CUDA options")
		}
		defer cuda.Destroy()
		if err := options.AppendExecutionProviderCUDA(cuda); err != nil {
			return errors.Wrap(err, "error enabling CUDA")
		}
	case CoreMLBackend:
		if err := options.AppendExecutionProviderCoreML(cfg.CoreML.Flags()); err != nil {
			return errors.Wrap(err, "error enabling CoreML")
		}
	case OpenVINOBackend:
		if err := options.AppendExecutionProviderOpenVINO(cfg.OpenVINO.Map()); err != nil {
			return errors.Wrap(err, "error enabling OpenVINO")
		}
	}
	return nil
}

// NewSession initializes the environment and opens a dynamic session over
// the model at modelPath.
//
// Arguments:
//   - cfg: The provider configuration.
//   - modelPath: The ONNX model file.
//   - inputs: Input node names.
//   - outputs: Output node names.
//
// Returns:
//   - *ort.DynamicAdvancedSession: The session. The caller must Destroy it.
//   - error: If the environment, options, or session cannot be created.
func NewSession(cfg Config, modelPath string, inputs, outputs []string) (*ort.DynamicAdvancedSession, error) {
	if err := InitEnvironment(cfg.LibraryPath); err != nil {
		return nil, err
	}

	options, err := SessionOptions(cfg)
	if err != nil {
		return nil, err
	}
	defer options.Destroy()

	session, err := ort.NewDynamicAdvancedSession(modelPath, inputs, outputs, options)
	if err != nil {
		return nil, errors.Wrapf(err, "error creating ORT session for %s", modelPath)
	}
	return session, nil
}

// ModelIO returns the input and output node names declared by the model.
func ModelIO(modelPath string) ([]string, []string, error) {
	ins, outs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "error reading model io info for %s", modelPath)
	}
	names := func(infos []ort.InputOutputInfo) []string {
		out := make([]string, len(infos))
		for i, info := range infos {
			out[i] = info.Name
		}
		return out
	}
	return names(ins), names(outs), nil
}
