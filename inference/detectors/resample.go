package detectors

import (
	"github.com/nfnt/resize"
	"gorgonia.org/tensor"

	"github.com/nvr-ai/go-detect/images"
)

// input is a CHW RGB buffer ready for a forward pass.
type input struct {
	data []float32
	w, h int
	// srcW and srcH are the dimensions of the original tensor.
	srcW, srcH int
}

// scaleX maps an input x coordinate to source pixels.
func (in input) scaleX() float32 { return float32(in.srcW) / float32(in.w) }

// scaleY maps an input y coordinate to source pixels.
func (in input) scaleY() float32 { return float32(in.srcH) / float32(in.h) }

// prepare resamples t to w×h (zero keeps its size) with bilinear
// interpolation and applies (v - mean) / std per channel.
//
// Arguments:
//   - t: A [1, 3, H, W] tensor with values in [0, 1]. It is not modified.
//   - w, h: The target size, or 0, 0.
//   - mean, std: Per-channel normalisation; std must be non-zero.
//
// Returns:
//   - input: A freshly allocated buffer.
//   - error: If t is not a valid image tensor.
func prepare(t *tensor.Dense, w, h int, mean, std [3]float32) (input, error) {
	srcH, srcW, err := images.TensorShape(t)
	if err != nil {
		return input{}, err
	}
	if w == 0 || h == 0 {
		w, h = srcW, srcH
	}
	in := input{data: make([]float32, 3*w*h), w: w, h: h, srcW: srcW, srcH: srcH}
	cs := w * h

	if w == srcW && h == srcH {
		src := t.Data().([]float32)
		for c := 0; c < 3; c++ {
			for i := 0; i < cs; i++ {
				in.data[c*cs+i] = (src[c*cs+i] - mean[c]) / std[c]
			}
		}
		return in, nil
	}

	view, err := images.NewTensorImage(t)
	if err != nil {
		return input{}, err
	}
	resized := resize.Resize(uint(w), uint(h), view, resize.Bilinear)
	b := resized.Bounds()

	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := resized.At(x, y).RGBA()
			in.data[i] = (float32(r)/0xffff - mean[0]) / std[0]
			in.data[cs+i] = (float32(g)/0xffff - mean[1]) / std[1]
			in.data[2*cs+i] = (float32(bl)/0xffff - mean[2]) / std[2]
			i++
		}
	}
	return in, nil
}
