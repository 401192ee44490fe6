// Package common - Error taxonomy shared by every stage of the detection pipeline.
package common

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind identifies the pipeline stage an error originated from.
type Kind int

const (
	// KindUnknown is any failure that does not carry a stage.
	KindUnknown Kind = iota
	// KindInvalidInput is a rejected caller-supplied argument (e.g. an empty path).
	KindInvalidInput
	// KindFileNotFound is a path that does not reference a readable file.
	KindFileNotFound
	// KindDecode is a file that exists but is not a supported image.
	KindDecode
	// KindModelLoad is a detector that could not be initialized.
	KindModelLoad
	// KindInference is a failure during the forward pass.
	KindInference
	// KindDisplay is a failure of the display backend.
	KindDisplay
)

// Sentinel errors, one per Kind. Use errors.Is(err, ErrDecode) etc. to branch.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrFileNotFound = errors.New("file not found")
	ErrDecode       = errors.New("image decode failed")
	ErrModelLoad    = errors.New("model load failed")
	ErrInference    = errors.New("inference failed")
	ErrDisplay      = errors.New("display failed")
)

var kindNames = map[Kind]string{
	KindUnknown:      "unknown",
	KindInvalidInput: "input",
	KindFileNotFound: "file",
	KindDecode:       "decode",
	KindModelLoad:    "model",
	KindInference:    "inference",
	KindDisplay:      "display",
}

var kindSentinels = map[Kind]error{
	KindInvalidInput: ErrInvalidInput,
	KindFileNotFound: ErrFileNotFound,
	KindDecode:       ErrDecode,
	KindModelLoad:    ErrModelLoad,
	KindInference:    ErrInference,
	KindDisplay:      ErrDisplay,
}

// String returns the stage name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is a pipeline error tagged with the stage that produced it.
type Error struct {
	// Kind is the failing stage.
	Kind Kind
	// Path is the user-supplied path involved, if any.
	Path string
	// Err is the underlying cause.
	Err error
}

// Error implements error.
func (e *Error) Error() string {
	switch {
	case e.Path != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Path != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Path)
	default:
		return e.Kind.String()
	}
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// Cause returns the underlying cause for github.com/pkg/errors.Cause.
func (e *Error) Cause() error { return e.Err }

// Is matches the sentinel error of the same kind.
func (e *Error) Is(target error) bool {
	sentinel, ok := kindSentinels[e.Kind]
	return ok && sentinel == target
}

// NewError wraps err with a kind and an optional path.
//
// Arguments:
//   - kind: The stage the error belongs to.
//   - path: The user-supplied path involved, or "".
//   - err: The underlying cause. A nil cause is replaced by the kind's sentinel.
//
// Returns:
//   - *Error: The tagged error.
func NewError(kind Kind, path string, err error) *Error {
	if err == nil {
		err = kindSentinels[kind]
	}
	return &Error{Kind: kind, Path: path, Err: err}
}

// Errorf builds a tagged error from a format string.
func Errorf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Err: errors.Errorf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// PathOf returns the path carried by the first *Error in err's chain.
func PathOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Path
	}
	return ""
}
