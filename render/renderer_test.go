package render

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-detect/common"
	"github.com/nvr-ai/go-detect/models"
	"github.com/nvr-ai/go-detect/models/postprocess"
)

func whiteImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	return img
}

func isRed(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return r > 0xc000 && g < 0x4000 && b < 0x4000
}

func TestLabel(t *testing.T) {
	r := NewRenderer(DefaultOptions())
	assert.Equal(t, "Human: 0.90", r.Label(postprocess.Result{Class: models.PersonID, Score: 0.9}))
	assert.Equal(t, "car: 0.51", r.Label(postprocess.Result{Class: 3, Score: 0.51}))
	assert.Equal(t, "unknown_500: 0.50", r.Label(postprocess.Result{Class: 500, Score: 0.5}))

	r = NewRenderer(Options{Classes: models.VOCClasses})
	assert.Equal(t, "person: 0.75", r.Label(postprocess.Result{Class: 15, Score: 0.75}))
}

func TestRenderDrawsBoxes(t *testing.T) {
	src := whiteImage(120, 140)
	set := postprocess.Set{
		{Box: common.BoundingBox{X1: 10, Y1: 30, X2: 50, Y2: 120}, Score: 0.9, Class: models.PersonID},
	}

	opts := DefaultOptions()
	opts.Title = ""
	out, err := NewRenderer(opts).Render(src, set)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Detections)
	assert.Equal(t, src.Bounds(), out.Image.Bounds())

	// Outline on all four edges, interior untouched.
	assert.True(t, isRed(out.Image.At(10, 80)))
	assert.True(t, isRed(out.Image.At(50, 80)))
	assert.True(t, isRed(out.Image.At(30, 120)))
	assert.Equal(t, color.RGBA{0xff, 0xff, 0xff, 0xff}, out.Image.RGBAAt(30, 80))

	// The source is not modified.
	for _, p := range src.Pix {
		require.Equal(t, uint8(0xff), p)
	}
}

func TestRenderEmptySet(t *testing.T) {
	src := whiteImage(64, 48)
	opts := DefaultOptions()
	opts.Title = ""

	out, err := NewRenderer(opts).Render(src, postprocess.Set{})
	require.NoError(t, err)
	assert.Equal(t, 0, out.Detections)
	assert.Equal(t, src.Pix, out.Image.Pix)

	out, err = NewRenderer(DefaultOptions()).Render(src, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultTitle, out.Title)
	assert.NotEqual(t, src.Pix, out.Image.Pix)
}

func TestRenderRejectsEmptyImage(t *testing.T) {
	_, err := NewRenderer(DefaultOptions()).Render(nil, nil)
	assert.Error(t, err)

	_, err = NewRenderer(DefaultOptions()).Render(image.NewRGBA(image.Rect(0, 0, 0, 0)), nil)
	assert.Error(t, err)
}
