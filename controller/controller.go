// Package controller - Runs one image through the detection pipeline: load the
// detector, decode the image, infer, filter, render, and display.
package controller

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/nvr-ai/go-detect/common"
	"github.com/nvr-ai/go-detect/images"
	"github.com/nvr-ai/go-detect/inference"
	"github.com/nvr-ai/go-detect/models/postprocess"
	"github.com/nvr-ai/go-detect/render"
)

// Args configures a Controller.
type Args struct {
	// Provider hands out the shared detector. Required.
	Provider *inference.Provider
	// Threshold selects the class and confidence cutoff.
	Threshold postprocess.Threshold
	// Postprocessors run in order over the filtered set (e.g. NMS). Optional.
	Postprocessors []postprocess.Postprocessor
	// Renderer draws the detections. Required.
	Renderer *render.Renderer
	// Display presents the rendering. Nil skips the display stage.
	Display render.Display
	// Logger receives stage timings. Nil logs nothing.
	Logger *zap.SugaredLogger
}

// Timings records how long each stage took.
type Timings struct {
	Load      time.Duration
	Decode    time.Duration
	Inference time.Duration
	Filter    time.Duration
	Render    time.Duration
	Display   time.Duration
}

// Total returns the sum of all stages.
func (t Timings) Total() time.Duration {
	return t.Load + t.Decode + t.Inference + t.Filter + t.Render + t.Display
}

// Result is the outcome of one successful run.
type Result struct {
	// Path is the image path as processed (trimmed).
	Path string
	// Image is the decoded source image.
	Image *images.Image
	// Raw is the unfiltered detector output.
	Raw postprocess.RawPredictions
	// Detections are the instances that passed the threshold.
	Detections postprocess.Set
	// Summary describes the detections.
	Summary postprocess.Summary
	// Output is the annotated image.
	Output *render.Output
	// Timings holds per-stage durations.
	Timings Timings
}

// Controller is the pipeline orchestrator.
type Controller struct {
	provider       *inference.Provider
	threshold      postprocess.Threshold
	postprocessors []postprocess.Postprocessor
	renderer       *render.Renderer
	display        render.Display
	logger         *zap.SugaredLogger
}

// New creates a controller.
//
// Arguments:
//   - args: The pipeline components.
//
// Returns:
//   - *Controller: The controller.
//   - error: If a required component is missing or the threshold is invalid.
func New(args Args) (*Controller, error) {
	if args.Provider == nil {
		return nil, errors.New("controller: provider is required")
	}
	if args.Renderer == nil {
		return nil, errors.New("controller: renderer is required")
	}
	if err := args.Threshold.Validate(); err != nil {
		return nil, errors.Wrap(err, "controller: threshold")
	}
	logger := args.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Controller{
		provider:       args.Provider,
		threshold:      args.Threshold,
		postprocessors: args.Postprocessors,
		renderer:       args.Renderer,
		display:        args.Display,
		logger:         logger,
	}, nil
}

// Run processes the image at path.
//
// Any stage failure aborts the run and is returned as a *common.Error with
// the stage's kind. Cancellation outside inference is returned untagged.
// Nothing is retried.
//
// Arguments:
//   - ctx: Cancels the run between stages and inside inference.
//   - path: The image path. Surrounding whitespace is ignored.
//
// Returns:
//   - *Result: The detections and their rendering.
//   - error: A *common.Error, or the context error.
//
// @example
// res, err := ctrl.Run(ctx, "people.jpg")
//
//	if err != nil {
//		fmt.Println(controller.Report(err))
//	}
func (c *Controller) Run(ctx context.Context, path string) (*Result, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, common.Errorf(common.KindInvalidInput, "no image path given")
	}

	res := &Result{Path: path}

	start := time.Now()
	detector, err := c.provider.Load(ctx)
	res.Timings.Load = time.Since(start)
	if err != nil {
		return nil, err
	}

	start = time.Now()
	img, t, err := images.Load(path)
	res.Timings.Decode = time.Since(start)
	if err != nil {
		return nil, err
	}
	res.Image = img

	start = time.Now()
	raw, err := inference.Infer(ctx, detector, t)
	res.Timings.Inference = time.Since(start)
	if err != nil {
		return nil, err
	}
	res.Raw = raw

	start = time.Now()
	set := postprocess.Filter(raw, c.threshold)
	for _, p := range c.postprocessors {
		set = p(set)
	}
	res.Timings.Filter = time.Since(start)
	res.Detections = set
	res.Summary = postprocess.Summarize(set)

	start = time.Now()
	out, err := c.renderer.Render(img, set)
	res.Timings.Render = time.Since(start)
	if err != nil {
		return nil, common.NewError(common.KindDisplay, path, err)
	}
	res.Output = out

	if c.display != nil {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "run cancelled before display")
		}
		start = time.Now()
		err = c.display.Show(ctx, out)
		res.Timings.Display = time.Since(start)
		if err != nil {
			if ctx.Err() != nil {
				return nil, errors.Wrap(err, "run cancelled during display")
			}
			return nil, common.NewError(common.KindDisplay, path, err)
		}
	}

	c.logger.Infow("processed image",
		"path", path,
		"format", img.Format,
		"width", img.Width(),
		"height", img.Height(),
		"proposals", raw.Len(),
		"detections", len(set),
		"mean_confidence", res.Summary.Confidence.Mean,
		"load", res.Timings.Load,
		"decode", res.Timings.Decode,
		"inference", res.Timings.Inference,
		"filter", res.Timings.Filter,
		"render", res.Timings.Render,
		"display", res.Timings.Display,
	)

	return res, nil
}
