// Package main - Command line entry point: detect humans in one image, or
// prepare the COCO person subset.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/nvr-ai/go-detect/config"
	"github.com/nvr-ai/go-detect/controller"
	"github.com/nvr-ai/go-detect/dataset"
	"github.com/nvr-ai/go-detect/inference"
	"github.com/nvr-ai/go-detect/inference/detectors"
	"github.com/nvr-ai/go-detect/render"
)

const (
	flagConfig     = "config"
	flagEnvFile    = "env-file"
	flagModel      = "model"
	flagBackend    = "backend"
	flagConfidence = "confidence"
	flagDisplay    = "display"
	flagOutput     = "output"
	flagLimit      = "limit"
	flagCategory   = "category"
	flagDir        = "dir"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "detect",
		Usage: "detect humans in an image with an SSD detector",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  flagConfig,
				Usage: "YAML configuration file",
			},
			&cli.StringFlag{
				Name:  flagEnvFile,
				Value: ".env",
				Usage: "dotenv file with DETECT_* overrides",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "run",
				Usage:     "detect humans in one image",
				ArgsUsage: "[IMAGE]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: flagModel, Usage: "detector weights file"},
					&cli.StringFlag{Name: flagBackend, Usage: "detector backend (onnx, opencv)"},
					&cli.Float64Flag{Name: flagConfidence, Usage: "exclusive confidence threshold"},
					&cli.StringFlag{Name: flagDisplay, Usage: "display mode (window, file, none)"},
					&cli.StringFlag{Name: flagOutput, Usage: "output image in file mode"},
				},
				Action: runAction,
			},
			{
				Name:  "dataset",
				Usage: "download COCO val2017 and select images containing a category",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: flagDir, Usage: "dataset directory"},
					&cli.StringFlag{Name: flagCategory, Usage: "category every image must contain"},
					&cli.IntFlag{Name: flagLimit, Usage: "maximum number of images (0 = all)"},
				},
				Action: datasetAction,
			},
		},
	}
}

// loadConfig reads the configuration and applies command flags on top.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String(flagConfig), c.String(flagEnvFile))
	if err != nil {
		return nil, err
	}

	if c.IsSet(flagModel) {
		cfg.Detector.ModelPath = c.String(flagModel)
	}
	if c.IsSet(flagBackend) {
		cfg.Detector.Backend = detectors.Backend(c.String(flagBackend))
	}
	if c.IsSet(flagConfidence) {
		cfg.Threshold.Confidence = float32(c.Float64(flagConfidence))
	}
	if c.IsSet(flagDisplay) {
		cfg.Display.Mode = config.DisplayMode(c.String(flagDisplay))
	}
	if c.IsSet(flagOutput) {
		cfg.Display.OutputPath = c.String(flagOutput)
	}
	if c.IsSet(flagDir) {
		cfg.Dataset.Dir = c.String(flagDir)
	}
	if c.IsSet(flagCategory) {
		cfg.Dataset.Category = c.String(flagCategory)
	}
	if c.IsSet(flagLimit) {
		cfg.Dataset.Limit = c.Int(flagLimit)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// readImagePath prompts on w and reads one line from r.
func readImagePath(r io.Reader, w io.Writer) (string, error) {
	fmt.Fprint(w, "Enter the path to the image: ")
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", errors.Wrap(err, "read image path")
	}
	return strings.TrimSpace(line), nil
}

func runAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	logger, err := cfg.Logger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	path := c.Args().First()
	if path == "" {
		if path, err = readImagePath(c.App.Reader, c.App.Writer); err != nil {
			return err
		}
	}

	var timed *inference.SerializedDetector
	load := detectors.Loader(cfg.Detector, logger)
	provider := inference.SetDefault(func(ctx context.Context) (inference.Detector, error) {
		d, err := load(ctx)
		if err != nil {
			return nil, err
		}
		timed = inference.Serialized(d)
		return timed, nil
	})
	defer provider.Close()

	opts, err := cfg.RenderOptions()
	if err != nil {
		return err
	}
	renderer := render.NewRenderer(opts)

	threshold, err := cfg.DetectionThreshold()
	if err != nil {
		return err
	}

	ctrl, err := controller.New(controller.Args{
		Provider:       provider,
		Threshold:      threshold,
		Postprocessors: cfg.Threshold.Postprocessors(),
		Renderer:       renderer,
		Display:        cfg.NewDisplay(),
		Logger:         logger,
	})
	if err != nil {
		return err
	}

	res, err := ctrl.Run(c.Context, path)
	if err != nil {
		return cli.Exit(controller.Report(err), 1)
	}

	printDetections(c.App.Writer, renderer, res)
	if timed != nil {
		st := timed.Stats()
		logger.Infow("inference stats", "passes", st.Count, "average", st.Average)
	}
	return nil
}

func printDetections(w io.Writer, r *render.Renderer, res *controller.Result) {
	fmt.Fprintf(w, "%d detection(s) in %s\n", len(res.Detections), res.Path)
	for _, d := range res.Detections {
		fmt.Fprintf(w, "  %s at %s\n", r.Label(d), d.Box)
	}
}

func datasetAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	logger, err := cfg.Logger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	samples, err := dataset.Prepare(c.Context, cfg.Dataset, logger)
	if err != nil {
		return err
	}
	logger.Infow("dataset ready", "dir", cfg.Dataset.Dir, "category", cfg.Dataset.Category, "limit", cfg.Dataset.Limit)
	fmt.Fprintf(c.App.Writer, "Dataset size: %d\n", len(samples))
	return nil
}
