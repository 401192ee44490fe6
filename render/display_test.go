package render

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-detect/images"
)

func TestFileDisplay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.png")
	out := &Output{Image: whiteImage(32, 24)}

	require.NoError(t, FileDisplay{Path: path}.Show(context.Background(), out))

	img, err := images.Open(path)
	require.NoError(t, err)
	assert.Equal(t, 32, img.Width())
	assert.Equal(t, 24, img.Height())
}

func TestFileDisplayRejects(t *testing.T) {
	assert.Error(t, FileDisplay{Path: "x.png"}.Show(context.Background(), nil))
	assert.Error(t, FileDisplay{}.Show(context.Background(), &Output{Image: whiteImage(1, 1)}))
}

func TestDisplayFunc(t *testing.T) {
	var got *Output
	d := DisplayFunc(func(ctx context.Context, out *Output) error {
		got = out
		return nil
	})
	out := &Output{Detections: 3}
	require.NoError(t, d.Show(context.Background(), out))
	assert.Same(t, out, got)
}
