package common

import (
	"fmt"
	"image"

	"github.com/chewxy/math32"
)

// BoundingBox is an axis-aligned box in pixel coordinates of the original image.
type BoundingBox struct {
	// X1, Y1 is the top-left corner (left, top).
	X1, Y1 float32
	// X2, Y2 is the bottom-right corner (right, bottom).
	X2, Y2 float32
}

// NewBoundingBox builds a box from a (left, top, right, bottom) array.
func NewBoundingBox(b [4]float32) BoundingBox {
	return BoundingBox{X1: b[0], Y1: b[1], X2: b[2], Y2: b[3]}
}

// Width returns the horizontal extent, never negative.
func (b BoundingBox) Width() float32 {
	return math32.Max(0, b.X2-b.X1)
}

// Height returns the vertical extent, never negative.
func (b BoundingBox) Height() float32 {
	return math32.Max(0, b.Y2-b.Y1)
}

// Area returns Width*Height.
func (b BoundingBox) Area() float32 {
	return b.Width() * b.Height()
}

// Clamp restricts the box to [0,w]x[0,h].
func (b BoundingBox) Clamp(w, h int) BoundingBox {
	fw, fh := float32(w), float32(h)
	return BoundingBox{
		X1: math32.Min(math32.Max(b.X1, 0), fw),
		Y1: math32.Min(math32.Max(b.Y1, 0), fh),
		X2: math32.Min(math32.Max(b.X2, 0), fw),
		Y2: math32.Min(math32.Max(b.Y2, 0), fh),
	}
}

// Scale multiplies x coordinates by sx and y coordinates by sy.
func (b BoundingBox) Scale(sx, sy float32) BoundingBox {
	return BoundingBox{X1: b.X1 * sx, Y1: b.Y1 * sy, X2: b.X2 * sx, Y2: b.Y2 * sy}
}

// ToRect converts the box to an image.Rectangle.
//
// This loses fractional pixels around the edges, which is fine for drawing.
//
// Returns:
//   - image.Rectangle: The canonicalized integer rectangle.
func (b BoundingBox) ToRect() image.Rectangle {
	return image.Rect(
		int(math32.Floor(b.X1)), int(math32.Floor(b.Y1)),
		int(math32.Ceil(b.X2)), int(math32.Ceil(b.Y2)),
	).Canon()
}

// IoU returns the intersection over union of two boxes, 0 when disjoint.
func (b BoundingBox) IoU(o BoundingBox) float32 {
	ix1 := math32.Max(b.X1, o.X1)
	iy1 := math32.Max(b.Y1, o.Y1)
	ix2 := math32.Min(b.X2, o.X2)
	iy2 := math32.Min(b.Y2, o.Y2)

	iw, ih := ix2-ix1, iy2-iy1
	if iw <= 0 || ih <= 0 {
		return 0
	}
	inter := iw * ih
	union := b.Area() + o.Area() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("(%.1f, %.1f)-(%.1f, %.1f)", b.X1, b.Y1, b.X2, b.Y2)
}
