// Package render - Draws detections over their source image and hands the
// result to a display backend.
package render

import (
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-detect/models"
	"github.com/nvr-ai/go-detect/models/postprocess"
)

// DefaultTitle is drawn above every rendering unless overridden.
const DefaultTitle = "Human Detection Results (SSD)"

// Options controls how detections are drawn.
type Options struct {
	// Title is drawn centred at the top of the image. Empty draws nothing.
	Title string `json:"title" yaml:"title"`
	// FontSize is the label size in points.
	FontSize float64 `json:"font_size" yaml:"font_size"`
	// LineWidth is the box outline width in pixels.
	LineWidth float64 `json:"line_width" yaml:"line_width"`
	// BoxColor is the outline colour.
	BoxColor color.Color `json:"-" yaml:"-"`
	// Classes names the label ids. Nil uses the torchvision set.
	Classes *models.ClassSet `json:"-" yaml:"-"`
	// PersonLabel replaces the "person" class name. Empty keeps it.
	PersonLabel string `json:"person_label" yaml:"person_label"`
}

// DefaultOptions draws red 2px boxes with 12pt labels naming persons "Human".
func DefaultOptions() Options {
	return Options{
		Title:       DefaultTitle,
		FontSize:    12,
		LineWidth:   2,
		BoxColor:    color.RGBA{R: 255, A: 255},
		Classes:     models.TorchvisionClasses,
		PersonLabel: "Human",
	}
}

// Output is an annotated copy of a source image.
type Output struct {
	// Image holds the drawn pixels.
	Image *image.RGBA
	// Title is the caption drawn on the image, if any.
	Title string
	// Detections is the number of boxes drawn.
	Detections int
}

// Renderer draws detection sets.
type Renderer struct {
	opts Options
}

// NewRenderer creates a renderer. Zero fields of opts take their defaults,
// except Title which is drawn as given.
func NewRenderer(opts Options) *Renderer {
	def := DefaultOptions()
	if opts.FontSize <= 0 {
		opts.FontSize = def.FontSize
	}
	if opts.LineWidth <= 0 {
		opts.LineWidth = def.LineWidth
	}
	if opts.BoxColor == nil {
		opts.BoxColor = def.BoxColor
	}
	if opts.Classes == nil {
		opts.Classes = def.Classes
	}
	return &Renderer{opts: opts}
}

// Label returns the caption for one detection: "<class-name>: <score>".
func (r *Renderer) Label(d postprocess.Result) string {
	name := r.opts.Classes.Name(d.Class)
	if name == models.PersonName && r.opts.PersonLabel != "" {
		name = r.opts.PersonLabel
	}
	return fmt.Sprintf("%s: %.2f", name, d.Score)
}

// Render draws every detection of set, in order, over a copy of img.
//
// Each detection gets a rectangle outline from (left, top) to
// (right, bottom) and its label on a translucent white background anchored
// at (left, top). An empty set yields a plain copy (plus the title).
//
// Arguments:
//   - img: The source image. It is not modified.
//   - set: The detections to draw.
//
// Returns:
//   - *Output: The annotated copy.
//   - error: If img is nil or empty.
//
// @example
// out, err := render.NewRenderer(render.DefaultOptions()).Render(img, set)
func (r *Renderer) Render(img image.Image, set postprocess.Set) (*Output, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, errors.New("nothing to render: empty image")
	}

	dc := gg.NewContextForImage(img)
	dc.SetFontFace(face(r.opts.FontSize))

	for _, d := range set {
		r.drawBox(dc, d)
	}
	if r.opts.Title != "" {
		r.drawTitle(dc)
	}

	rgba, ok := dc.Image().(*image.RGBA)
	if !ok {
		return nil, errors.Errorf("unexpected canvas type %T", dc.Image())
	}
	return &Output{Image: rgba, Title: r.opts.Title, Detections: len(set)}, nil
}

func (r *Renderer) drawBox(dc *gg.Context, d postprocess.Result) {
	b := d.Box
	dc.SetColor(r.opts.BoxColor)
	dc.SetLineWidth(r.opts.LineWidth)
	dc.DrawRectangle(float64(b.X1), float64(b.Y1), float64(b.Width()), float64(b.Height()))
	dc.Stroke()

	label := r.Label(d)
	w, h := dc.MeasureString(label)
	pad := 2.0
	x := float64(b.X1)
	// Above the box when there is room, otherwise just inside it.
	y := float64(b.Y1) - h - 2*pad
	if y < 0 {
		y = float64(b.Y1)
	}

	dc.SetRGBA(1, 1, 1, 0.8)
	dc.DrawRectangle(x, y, w+2*pad, h+2*pad)
	dc.Fill()

	dc.SetColor(color.Black)
	dc.DrawStringAnchored(label, x+pad, y+pad, 0, 1)
}

func (r *Renderer) drawTitle(dc *gg.Context) {
	w, h := dc.MeasureString(r.opts.Title)
	pad := 3.0
	cx := float64(dc.Width()) / 2

	dc.SetRGBA(1, 1, 1, 0.8)
	dc.DrawRectangle(cx-w/2-pad, 0, w+2*pad, h+2*pad)
	dc.Fill()

	dc.SetColor(color.Black)
	dc.DrawStringAnchored(r.opts.Title, cx, pad, 0.5, 1)
}
