package render

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/up-zero/gotool/imageutil"
	"gocv.io/x/gocv"
)

// Display presents a rendering.
type Display interface {
	Show(ctx context.Context, out *Output) error
}

// DisplayFunc adapts a function to the Display interface.
type DisplayFunc func(ctx context.Context, out *Output) error

// Show calls f(ctx, out).
func (f DisplayFunc) Show(ctx context.Context, out *Output) error {
	return f(ctx, out)
}

// FileDisplay writes renderings to an image file. The encoder follows the
// file extension.
type FileDisplay struct {
	// Path is the output file.
	Path string
	// Quality is the JPEG quality, 1-100.
	Quality int
}

// Show implements Display.
func (f FileDisplay) Show(ctx context.Context, out *Output) error {
	if out == nil || out.Image == nil {
		return errors.New("nothing to display")
	}
	if f.Path == "" {
		return errors.New("no output path configured")
	}
	quality := f.Quality
	if quality <= 0 || quality > 100 {
		quality = 95
	}
	if err := imageutil.Save(f.Path, out.Image, quality); err != nil {
		return errors.Wrapf(err, "save %s", f.Path)
	}
	return nil
}

// WindowDisplay shows renderings in an OpenCV window.
type WindowDisplay struct {
	// Name is the window title. Empty uses the rendering's title.
	Name string
	// Wait is how long the window stays open. Zero waits for a key press.
	Wait time.Duration
}

// Show implements Display. It blocks until a key is pressed or Wait elapses.
func (w WindowDisplay) Show(ctx context.Context, out *Output) error {
	if out == nil || out.Image == nil {
		return errors.New("nothing to display")
	}

	mat, err := gocv.ImageToMatRGB(out.Image)
	if err != nil {
		return errors.Wrap(err, "convert rendering to mat")
	}
	defer mat.Close()

	name := w.Name
	if name == "" {
		name = out.Title
	}
	if name == "" {
		name = DefaultTitle
	}

	window := gocv.NewWindow(name)
	defer window.Close()

	window.IMShow(mat)
	window.WaitKey(int(w.Wait / time.Millisecond))
	return nil
}
