package providers

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.NoError(t, Config{}.Validate())

	for _, b := range Backends {
		assert.NoError(t, Config{Backend: b}.Validate(), b)
	}

	assert.Error(t, Config{Backend: "tpu"}.Validate())
	assert.Error(t, Config{IntraOpThreads: -1}.Validate())
}

func TestDefaultLibraryPath(t *testing.T) {
	path, err := DefaultLibraryPath()
	if runtime.GOOS == "linux" || runtime.GOOS == "darwin" {
		require.NoError(t, err)
		assert.NotEmpty(t, path)
	}
}

func TestCUDAOptionsMap(t *testing.T) {
	m := CUDAOptions{DeviceID: 1, GPUMemLimit: 2 << 30, CudnnConvAlgoSearch: "HEURISTIC"}.Map()
	assert.Equal(t, map[string]string{
		"device_id":              "1",
		"gpu_mem_limit":          "2147483648",
		"cudnn_conv_algo_search": "HEURISTIC",
	}, m)
}

func TestCoreMLFlags(t *testing.T) {
	assert.Equal(t, uint32(0), CoreMLOptions{}.Flags())
	assert.Equal(t, uint32(0x005), CoreMLOptions{CPUOnly: true, OnlyWithANE: true}.Flags())
}

func TestOpenVINOOptionsMap(t *testing.T) {
	assert.Equal(t, map[string]string{"device_type": "CPU", "precision": "FP32"}, DefaultOpenVINOOptions().Map())
	assert.Equal(t, "4", OpenVINOOptions{NumOfThreads: 4}.Map()["num_of_threads"])
}

func TestSessionOptionsRejectsUnknownBackend(t *testing.T) {
	_, err := SessionOptions(Config{Backend: "tpu"})
	assert.Error(t, err)
}

func TestInitEnvironmentMissingLibrary(t *testing.T) {
	err := InitEnvironment("/nonexistent/libonnxruntime.so")
	require.Error(t, err)
	// The first result sticks.
	assert.Equal(t, err, InitEnvironment(""))
	assert.Empty(t, LibraryPath())
}
