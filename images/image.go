// Package images - Decoded input images and their tensor representation.
package images

import (
	"image"
	"image/color"
)

// Format is the name of the decoder that produced an image.
type Format string

// Supported image formats.
const (
	// FormatJPEG is the JPEG image format.
	FormatJPEG Format = "jpeg"
	// FormatPNG is the PNG image format.
	FormatPNG Format = "png"
	// FormatGIF is the GIF image format (first frame only).
	FormatGIF Format = "gif"
	// FormatBMP is the BMP image format.
	FormatBMP Format = "bmp"
	// FormatTIFF is the TIFF image format.
	FormatTIFF Format = "tiff"
	// FormatWebP is the WebP image format.
	FormatWebP Format = "webp"
)

// Image is a decoded, opaque 3-channel raster.
//
// It implements image.Image and is never mutated after Load.
type Image struct {
	// The decoder that produced the image.
	Format Format `json:"format" yaml:"format"`
	// The file the image was read from, if any.
	Path string `json:"path" yaml:"path"`

	rgba *image.RGBA
}

// NewImage wraps src as an Image, copying its pixels and dropping alpha.
//
// Arguments:
//   - src: The source raster. It is not retained.
//   - format: The format to record for the image.
//
// Returns:
//   - *Image: The opaque copy.
func NewImage(src image.Image, format Format) *Image {
	return &Image{Format: format, rgba: opaque(src)}
}

// ColorModel implements image.Image.
func (i *Image) ColorModel() color.Model {
	return color.RGBAModel
}

// Bounds implements image.Image.
func (i *Image) Bounds() image.Rectangle {
	return i.rgba.Bounds()
}

// At implements image.Image.
func (i *Image) At(x, y int) color.Color {
	return i.rgba.RGBAAt(x, y)
}

// Width returns the width in pixels.
func (i *Image) Width() int {
	return i.rgba.Rect.Dx()
}

// Height returns the height in pixels.
func (i *Image) Height() int {
	return i.rgba.Rect.Dy()
}

// Clone returns a mutable copy of the pixels.
func (i *Image) Clone() *image.RGBA {
	dst := &image.RGBA{
		Pix:    make([]uint8, len(i.rgba.Pix)),
		Stride: i.rgba.Stride,
		Rect:   i.rgba.Rect,
	}
	copy(dst.Pix, i.rgba.Pix)
	return dst
}
