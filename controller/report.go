package controller

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-detect/common"
)

// Report renders err as the message shown to the user.
func Report(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Sprintf("Error: The run was cancelled: %v", err)
	}

	cause := errors.Cause(err)
	switch common.KindOf(err) {
	case common.KindFileNotFound:
		return fmt.Sprintf("Error: The file '%s' was not found.", common.PathOf(err))
	case common.KindDecode:
		return fmt.Sprintf("Error: The file '%s' is not a readable image: %v", common.PathOf(err), cause)
	case common.KindModelLoad:
		return fmt.Sprintf("Error: The detection model could not be loaded: %v", cause)
	case common.KindInference:
		return fmt.Sprintf("Error: Detection failed: %v", cause)
	case common.KindDisplay:
		return fmt.Sprintf("Error: The results could not be displayed: %v", cause)
	case common.KindInvalidInput:
		return fmt.Sprintf("Error: %v", cause)
	default:
		return fmt.Sprintf("An error occurred: %v", err)
	}
}
