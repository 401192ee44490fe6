package images

import (
	"image"
	"image/color"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// ToTensor converts an image into a [1, 3, H, W] float32 tensor.
//
// Channels are ordered R, G, B (CHW layout) and every sample is scaled to
// [0, 1] by dividing by 255.
//
// Arguments:
//   - img: The image to convert.
//
// Returns:
//   - *tensor.Dense: A freshly allocated tensor owned by the caller.
func ToTensor(img image.Image) *tensor.Dense {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	channelSize := w * h
	data := make([]float32, 3*channelSize)
	red := data[0:channelSize]
	green := data[channelSize : channelSize*2]
	blue := data[channelSize*2 : channelSize*3]

	if rgba, ok := img.(*Image); ok {
		img = rgba.rgba
	}

	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			red[i] = float32(r>>8) / 255.0
			green[i] = float32(g>>8) / 255.0
			blue[i] = float32(bl>>8) / 255.0
			i++
		}
	}

	return tensor.New(
		tensor.WithShape(1, 3, h, w),
		tensor.WithBacking(data),
	)
}

// TensorShape returns the height and width of a [1, 3, H, W] float32 tensor.
//
// Returns:
//   - int: The height.
//   - int: The width.
//   - error: If the tensor has any other shape or dtype.
func TensorShape(t *tensor.Dense) (int, int, error) {
	if t == nil {
		return 0, 0, errors.New("tensor is nil")
	}
	if t.Dtype() != tensor.Float32 {
		return 0, 0, errors.Errorf("tensor dtype must be float32, got %v", t.Dtype())
	}
	shape := t.Shape()
	if len(shape) != 4 || shape[0] != 1 || shape[1] != 3 {
		return 0, 0, errors.Errorf("tensor shape must be [1 3 H W], got %v", shape)
	}
	if shape[2] <= 0 || shape[3] <= 0 {
		return 0, 0, errors.Errorf("tensor has empty spatial dimensions %v", shape)
	}
	if _, ok := t.Data().([]float32); !ok {
		return 0, 0, errors.New("tensor backing is not []float32")
	}
	return shape[2], shape[3], nil
}

// TensorImage is a read-only image.Image view over a [1, 3, H, W] tensor
// with samples in [0, 1]. Out of range samples are clamped.
type TensorImage struct {
	data []float32
	w, h int
}

// NewTensorImage builds an image view over t without copying it.
func NewTensorImage(t *tensor.Dense) (*TensorImage, error) {
	h, w, err := TensorShape(t)
	if err != nil {
		return nil, err
	}
	return &TensorImage{data: t.Data().([]float32), w: w, h: h}, nil
}

// ColorModel implements image.Image.
func (ti *TensorImage) ColorModel() color.Model {
	return color.RGBA64Model
}

// Bounds implements image.Image.
func (ti *TensorImage) Bounds() image.Rectangle {
	return image.Rect(0, 0, ti.w, ti.h)
}

// At implements image.Image.
func (ti *TensorImage) At(x, y int) color.Color {
	if x < 0 || y < 0 || x >= ti.w || y >= ti.h {
		return color.RGBA64{}
	}
	cs := ti.w * ti.h
	i := y*ti.w + x
	return color.RGBA64{
		R: sample(ti.data[i]),
		G: sample(ti.data[cs+i]),
		B: sample(ti.data[2*cs+i]),
		A: 0xffff,
	}
}

func sample(v float32) uint16 {
	return uint16(math32.Round(math32.Max(0, math32.Min(1, v)) * 0xffff))
}
