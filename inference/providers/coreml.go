package providers

// CoreML provider flags, mirroring COREML_FLAG_* in the runtime headers.
const (
	coreMLFlagUseCPUOnly        uint32 = 0x001
	coreMLFlagEnableOnSubgraph  uint32 = 0x002
	coreMLFlagOnlyDeviceWithANE uint32 = 0x004
)

// CoreMLOptions contains arguments for the CoreML provider.
// See: https://onnxruntime.ai/docs/execution-providers/CoreML-ExecutionProvider.html
type CoreMLOptions struct {
	// Limit CoreML to running on CPU only.
	CPUOnly bool `json:"cpu_only" yaml:"cpu_only"`
	// Enable CoreML on subgraphs in the body of control flow operators.
	EnableOnSubgraph bool `json:"enable_on_subgraph" yaml:"enable_on_subgraph"`
	// Only enable CoreML on devices with an Apple Neural Engine.
	OnlyWithANE bool `json:"only_with_ane" yaml:"only_with_ane"`
}

// Flags packs the options into the CoreML flag bitmask.
func (o CoreMLOptions) Flags() uint32 {
	var flags uint32
	if o.CPUOnly {
		flags |= coreMLFlagUseCPUOnly
	}
	if o.EnableOnSubgraph {
		flags |= coreMLFlagEnableOnSubgraph
	}
	if o.OnlyWithANE {
		flags |= coreMLFlagOnlyDeviceWithANE
	}
	return flags
}
