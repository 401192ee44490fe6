package config

import (
	"github.com/nvr-ai/go-detect/models"
	"github.com/nvr-ai/go-detect/render"
)

// RenderOptions returns the renderer options, naming classes by the
// detector's label family.
func (c *Config) RenderOptions() (render.Options, error) {
	classes, err := models.Lookup(c.Detector.Family)
	if err != nil {
		return render.Options{}, err
	}
	opts := render.DefaultOptions()
	opts.Title = c.Render.Title
	opts.FontSize = c.Render.FontSize
	opts.LineWidth = c.Render.LineWidth
	opts.PersonLabel = c.Render.PersonLabel
	opts.Classes = classes
	return opts, nil
}

// NewDisplay returns the configured display backend, or nil in none mode.
func (c *Config) NewDisplay() render.Display {
	switch c.Display.Mode {
	case DisplayFile:
		return render.FileDisplay{Path: c.Display.OutputPath, Quality: c.Display.Quality}
	case DisplayNone:
		return nil
	default:
		return render.WindowDisplay{Name: c.Render.Title}
	}
}
