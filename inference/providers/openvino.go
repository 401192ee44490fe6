package providers

import "strconv"

// OpenVINOOptions contains arguments for the OpenVINO provider.
// See:
// https://onnxruntime.ai/docs/execution-providers/OpenVINO-ExecutionProvider.html#summary-of-options
type OpenVINOOptions struct {
	// Overrides the accelerator hardware type (CPU, GPU, NPU).
	DeviceType string `json:"device_type" yaml:"device_type"`
	// Inference precision: FP32, FP16 or ACCURACY.
	Precision string `json:"precision" yaml:"precision"`
	// Overrides the accelerator default number of threads. 0 keeps the default.
	NumOfThreads int `json:"num_of_threads" yaml:"num_of_threads"`
	// Rewrites dynamic shaped models to static shape at runtime.
	DisableDynamicShapes bool `json:"disable_dynamic_shapes" yaml:"disable_dynamic_shapes"`
}

// DefaultOpenVINOOptions targets the CPU at full precision.
func DefaultOpenVINOOptions() OpenVINOOptions {
	return OpenVINOOptions{DeviceType: "CPU", Precision: "FP32"}
}

// Map returns the options in the key/value form the runtime expects.
func (o OpenVINOOptions) Map() map[string]string {
	m := map[string]string{}
	if o.DeviceType != "" {
		m["device_type"] = o.DeviceType
	}
	if o.Precision != "" {
		m["precision"] = o.Precision
	}
	if o.NumOfThreads > 0 {
		m["num_of_threads"] = strconv.Itoa(o.NumOfThreads)
	}
	if o.DisableDynamicShapes {
		m["disable_dynamic_shapes"] = "true"
	}
	return m
}
