// Package config - Application configuration: built-in defaults, overridden by
// a YAML file, then a .env file, then DETECT_* environment variables.
package config

import (
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/nvr-ai/go-detect/dataset"
	"github.com/nvr-ai/go-detect/inference/detectors"
	"github.com/nvr-ai/go-detect/models"
	"github.com/nvr-ai/go-detect/models/postprocess"
	"github.com/nvr-ai/go-detect/render"
)

// DisplayMode selects how results are presented.
type DisplayMode string

const (
	// DisplayWindow opens an OpenCV window and waits for a key.
	DisplayWindow DisplayMode = "window"
	// DisplayFile writes the rendering to OutputPath.
	DisplayFile DisplayMode = "file"
	// DisplayNone only logs the detections.
	DisplayNone DisplayMode = "none"
)

// FilterConfig selects which detections are kept.
type FilterConfig struct {
	// Class pins the target label id. Unset resolves ClassName in the
	// detector's label family.
	Class *int `json:"class,omitempty" yaml:"class,omitempty"`
	// ClassName is the target category, e.g. "person".
	ClassName string `json:"class_name" yaml:"class_name"`
	// Confidence is the exclusive lower bound on the score.
	Confidence float32 `json:"confidence" yaml:"confidence"`
	// NMSIoU suppresses overlapping boxes above this IoU. 0 disables it.
	NMSIoU float32 `json:"nms_iou" yaml:"nms_iou"`
	// MinArea drops boxes smaller than this many pixels. 0 disables it.
	MinArea float32 `json:"min_area" yaml:"min_area"`
}

// Threshold returns the detection threshold for a detector trained with
// family. An explicit Class wins over ClassName.
func (f FilterConfig) Threshold(family models.Family) (postprocess.Threshold, error) {
	th := postprocess.Threshold{Confidence: f.Confidence}
	if f.Class != nil {
		th.Class = *f.Class
		return th, nil
	}

	classes, err := models.Lookup(family)
	if err != nil {
		return th, err
	}
	th.Class, err = classes.Index(f.ClassName)
	return th, err
}

// Postprocessors returns the enabled postprocessing steps in order.
func (f FilterConfig) Postprocessors() []postprocess.Postprocessor {
	var out []postprocess.Postprocessor
	if f.MinArea > 0 {
		out = append(out, postprocess.NewAreaFilter(f.MinArea))
	}
	if f.NMSIoU > 0 {
		out = append(out, postprocess.NewGreedyNMS(f.NMSIoU))
	}
	return out
}

// RenderConfig controls the annotation style.
type RenderConfig struct {
	Title       string  `json:"title" yaml:"title"`
	FontSize    float64 `json:"font_size" yaml:"font_size"`
	LineWidth   float64 `json:"line_width" yaml:"line_width"`
	PersonLabel string  `json:"person_label" yaml:"person_label"`
}

// DisplayConfig selects the display backend.
type DisplayConfig struct {
	Mode DisplayMode `json:"mode" yaml:"mode"`
	// OutputPath is the file written in file mode.
	OutputPath string `json:"output_path" yaml:"output_path"`
	// Quality is the JPEG quality in file mode.
	Quality int `json:"quality" yaml:"quality"`
}

// LogConfig controls the logger.
type LogConfig struct {
	// Level is a zap level name: debug, info, warn, error.
	Level string `json:"level" yaml:"level"`
	// Development switches to the human-readable console encoder.
	Development bool `json:"development" yaml:"development"`
}

// Config is the full application configuration.
type Config struct {
	Detector  detectors.Config `json:"detector" yaml:"detector"`
	Threshold FilterConfig     `json:"threshold" yaml:"threshold"`
	Render    RenderConfig     `json:"render" yaml:"render"`
	Display   DisplayConfig    `json:"display" yaml:"display"`
	Dataset   dataset.Config   `json:"dataset" yaml:"dataset"`
	Log       LogConfig        `json:"log" yaml:"log"`
}

// Default returns the built-in configuration: torchvision SSD300 on the CPU,
// persons above 0.5, shown in a window.
func Default() *Config {
	th := postprocess.DefaultThreshold()
	ro := render.DefaultOptions()
	return &Config{
		Detector: detectors.DefaultConfig(),
		Threshold: FilterConfig{
			ClassName:  models.PersonName,
			Confidence: th.Confidence,
		},
		Render: RenderConfig{
			Title:       ro.Title,
			FontSize:    ro.FontSize,
			LineWidth:   ro.LineWidth,
			PersonLabel: ro.PersonLabel,
		},
		Display: DisplayConfig{
			Mode:       DisplayWindow,
			OutputPath: "detections.jpg",
			Quality:    95,
		},
		Dataset: dataset.DefaultConfig(),
		Log:     LogConfig{Level: "info"},
	}
}

// Load builds the configuration.
//
// Arguments:
//   - path: A YAML file. Empty skips it; a missing non-empty path is an error.
//   - envFile: A dotenv file. Empty or missing skips it.
//
// Returns:
//   - *Config: The validated configuration.
//   - error: If a source cannot be read or the result is invalid.
//
// @example
// cfg, err := config.Load("detect.yaml", ".env")
func Load(path, envFile string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "read config file")
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "parse %s", path)
		}
	}

	env, err := readEnv(envFile)
	if err != nil {
		return nil, err
	}
	if err := applyEnv(cfg, env); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Detector.Validate(); err != nil {
		return errors.Wrap(err, "detector")
	}
	th, err := c.DetectionThreshold()
	if err != nil {
		return err
	}
	if err := th.Validate(); err != nil {
		return errors.Wrap(err, "threshold")
	}
	if c.Threshold.Confidence < 0 || c.Threshold.Confidence > 1 {
		return errors.Errorf("threshold: confidence must be within [0, 1], got %v", c.Threshold.Confidence)
	}
	if c.Threshold.NMSIoU < 0 || c.Threshold.NMSIoU > 1 {
		return errors.Errorf("threshold: nms_iou must be within [0, 1], got %v", c.Threshold.NMSIoU)
	}
	switch c.Display.Mode {
	case DisplayWindow, DisplayNone:
	case DisplayFile:
		if c.Display.OutputPath == "" {
			return errors.New("display: file mode requires output_path")
		}
	default:
		return errors.Errorf("display: unsupported mode %q", c.Display.Mode)
	}
	if err := c.Dataset.Validate(); err != nil {
		return errors.Wrap(err, "dataset")
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrap(err, "log")
	}
	return nil
}

// DetectionThreshold resolves the target class against the detector's
// label family.
func (c *Config) DetectionThreshold() (postprocess.Threshold, error) {
	th, err := c.Threshold.Threshold(c.Detector.Family)
	if err != nil {
		return th, errors.Wrap(err, "threshold")
	}
	return th, nil
}

// Logger builds the application logger.
func (c *Config) Logger() (*zap.SugaredLogger, error) {
	level, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, errors.Wrap(err, "log level")
	}

	zc := zap.NewProductionConfig()
	if c.Log.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	logger, err := zc.Build()
	if err != nil {
		return nil, errors.Wrap(err, "build logger")
	}
	return logger.Sugar(), nil
}
