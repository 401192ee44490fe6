package providers

import (
	"os"
	"runtime"
	"sync"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
)

var (
	envOnce sync.Once
	envErr  error
	envPath string
)

// DefaultLibraryPath returns the path to the shared library for the current platform.
//
// Returns:
//   - string: The path to the shared library.
//   - error: If no build of the library is known for this platform.
func DefaultLibraryPath() (string, error) {
	switch runtime.GOOS {
	case "windows":
		if runtime.GOARCH == "amd64" {
			return "./third_party/onnxruntime.dll", nil
		}
	case "darwin":
		return "./third_party/libonnxruntime.dylib", nil
	case "linux":
		if runtime.GOARCH == "arm64" {
			return "./third_party/onnxruntime_arm64.so", nil
		}
		return "./third_party/onnxruntime.so", nil
	}
	return "", errors.Errorf("no onnxruntime library known for %s/%s", runtime.GOOS, runtime.GOARCH)
}

// InitEnvironment loads the onnxruntime shared library and initializes the
// process-wide environment. Only the first call has any effect; later calls
// return the first call's result.
//
// Arguments:
//   - libPath: The shared library to load, or "" for DefaultLibraryPath.
//
// Returns:
//   - error: If the library is missing or fails to initialize.
func InitEnvironment(libPath string) error {
	envOnce.Do(func() {
		if libPath == "" {
			libPath, envErr = DefaultLibraryPath()
			if envErr != nil {
				return
			}
		}
		if _, err := os.Stat(libPath); err != nil {
			envErr = errors.Wrapf(err, "onnxruntime library not found at %s", libPath)
			return
		}

		ort.SetSharedLibraryPath(libPath)
		if err := ort.InitializeEnvironment(); err != nil {
			envErr = errors.Wrap(err, "error initializing ORT environment")
			return
		}
		envPath = libPath
	})
	return envErr
}

// LibraryPath returns the library loaded by InitEnvironment, or "" before a
// successful initialization.
func LibraryPath() string {
	return envPath
}
