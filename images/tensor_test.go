package images

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorgonia.org/tensor"
)

func TestToTensor(t *testing.T) {
	img := NewImage(getTestImage(), FormatPNG)
	tt := ToTensor(img)

	h, w, err := TensorShape(tt)
	require.NoError(t, err)
	assert.Equal(t, 60, h)
	assert.Equal(t, 100, w)

	data := tt.Data().([]float32)
	cs := h * w
	for _, v := range data {
		assert.True(t, v >= 0 && v <= 1)
	}

	// Left half is red, right half blue.
	left := 10*w + 5
	right := 10*w + 95
	assert.Equal(t, float32(1), data[left])
	assert.Equal(t, float32(0), data[cs+left])
	assert.Equal(t, float32(0), data[2*cs+left])
	assert.Equal(t, float32(0), data[right])
	assert.Equal(t, float32(1), data[2*cs+right])
}

func TestToTensorIsFresh(t *testing.T) {
	img := NewImage(getTestImage(), FormatPNG)
	a := ToTensor(img)
	b := ToTensor(img)
	a.Data().([]float32)[0] = 42
	assert.Equal(t, float32(1), b.Data().([]float32)[0])
}

func TestTensorShapeRejects(t *testing.T) {
	_, _, err := TensorShape(nil)
	assert.Error(t, err)

	_, _, err = TensorShape(tensor.New(tensor.WithShape(3, 4, 4), tensor.Of(tensor.Float32)))
	assert.Error(t, err)

	_, _, err = TensorShape(tensor.New(tensor.WithShape(1, 3, 4, 4), tensor.Of(tensor.Float64)))
	assert.Error(t, err)

	_, _, err = TensorShape(tensor.New(tensor.WithShape(2, 3, 4, 4), tensor.Of(tensor.Float32)))
	assert.Error(t, err)
}

func TestTensorImageRoundTrip(t *testing.T) {
	img := NewImage(getTestImage(), FormatPNG)
	view, err := NewTensorImage(ToTensor(img))
	require.NoError(t, err)

	assert.Equal(t, img.Bounds(), view.Bounds())
	r, g, b, a := view.At(5, 5).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, uint32(0), g)
	assert.Equal(t, uint32(0), b)
	assert.Equal(t, uint32(0xffff), a)

	r, _, _, _ = view.At(-1, 0).RGBA()
	assert.Equal(t, uint32(0), r)
}
