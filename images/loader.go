package images

import (
	"bytes"
	"image"
	"image/draw"
	"os"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"gorgonia.org/tensor"

	"github.com/nvr-ai/go-detect/common"
)

// Load reads the image at path and converts it to the detector input tensor.
//
// Arguments:
//   - path: The image file to read.
//
// Returns:
//   - *Image: The decoded image, forced to 3-channel colour.
//   - *tensor.Dense: The [1, 3, H, W] float32 tensor with values in [0, 1].
//   - error: A common.KindFileNotFound error when path does not name a regular
//     file, or a common.KindDecode error when its bytes are not a supported image.
//
// @example
// img, t, err := images.Load("street.jpg")
//
//	if common.KindOf(err) == common.KindFileNotFound {
//		fmt.Println("no such image:", common.PathOf(err))
//	}
func Load(path string) (*Image, *tensor.Dense, error) {
	img, err := Open(path)
	if err != nil {
		return nil, nil, err
	}
	return img, ToTensor(img), nil
}

// Open reads and decodes the image at path without building a tensor.
func Open(path string) (*Image, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, common.NewError(common.KindFileNotFound, path, err)
	}
	if info.IsDir() {
		return nil, common.NewError(common.KindFileNotFound, path, errors.New("path is a directory"))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, common.NewError(common.KindFileNotFound, path, err)
	}

	img, err := Decode(data)
	if err != nil {
		return nil, common.NewError(common.KindDecode, path, err)
	}
	img.Path = path
	return img, nil
}

// Decode decodes an in-memory encoded image.
//
// EXIF orientation is applied, and palette, grayscale, and alpha sources are
// up-converted to opaque RGB.
func Decode(data []byte) (*Image, error) {
	if len(data) == 0 {
		return nil, errors.New("empty image data")
	}

	_, name, err := image.DecodeConfig(bytes.NewReader(data))
	switch {
	case errors.Is(err, image.ErrFormat):
		return nil, errors.Wrap(err, "unrecognised image format")
	case err != nil:
		return nil, errors.Wrap(err, "read image header")
	}

	src, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", name)
	}
	if src.Bounds().Empty() {
		return nil, errors.Errorf("decoded %s image has no pixels", name)
	}

	return NewImage(src, Format(name)), nil
}

// opaque copies src into an RGBA raster anchored at the origin with every
// alpha sample set to 255.
func opaque(src image.Image) *image.RGBA {
	n := imaging.Clone(src)
	for i := 3; i < len(n.Pix); i += 4 {
		n.Pix[i] = 0xff
	}
	dst := image.NewRGBA(n.Rect)
	draw.Draw(dst, dst.Rect, n, n.Rect.Min, draw.Src)
	return dst
}
