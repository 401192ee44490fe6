package detectors

import (
	"context"
	"image"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
	"gorgonia.org/tensor"

	"github.com/nvr-ai/go-detect/images"
	"github.com/nvr-ai/go-detect/models/postprocess"
)

// OpenCVDetector runs an SSD network through OpenCV DNN.
//
// The network's DetectionOutput layer yields rows of
// [image_id, label, confidence, x1, y1, x2, y2] with coordinates relative to
// the input, which are scaled to source pixels.
type OpenCVDetector struct {
	cfg    Config
	logger *zap.SugaredLogger

	mu  sync.Mutex
	net *gocv.Net
}

// NewOpenCVDetector reads the network from cfg.ModelPath and cfg.ConfigPath.
func NewOpenCVDetector(cfg Config, logger *zap.SugaredLogger) (d *OpenCVDetector, err error) {
	if err := checkWeights(cfg.ModelPath); err != nil {
		return nil, err
	}
	if cfg.ConfigPath != "" {
		if err := checkWeights(cfg.ConfigPath); err != nil {
			return nil, err
		}
	}

	defer func() {
		if r := recover(); r != nil {
			d, err = nil, errors.Errorf("panic during model loading: %v", r)
		}
	}()

	net := gocv.ReadNet(cfg.ModelPath, cfg.ConfigPath)
	if net.Empty() {
		net.Close()
		return nil, errors.Errorf("failed to load model %s (model may be incompatible with OpenCV DNN)", cfg.ModelPath)
	}
	net.SetPreferableBackend(gocv.NetBackendOpenCV)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	logger.Infow("opencv detector loaded",
		"model", cfg.ModelPath,
		"config", cfg.ConfigPath,
		"input", image.Pt(cfg.InputWidth, cfg.InputHeight),
	)

	return &OpenCVDetector{cfg: cfg, logger: logger, net: &net}, nil
}

// Detect implements inference.Detector.
func (d *OpenCVDetector) Detect(ctx context.Context, t *tensor.Dense) (postprocess.RawPredictions, error) {
	mat, err := tensorToMat(t)
	if err != nil {
		return postprocess.RawPredictions{}, err
	}
	defer mat.Close()

	std := d.cfg.std()
	// The mean is given in the blob's channel order.
	m := d.cfg.Mean
	mean := gocv.NewScalar(float64(m[2])*255, float64(m[1])*255, float64(m[0])*255, 0)
	if d.cfg.SwapRB {
		mean = gocv.NewScalar(float64(m[0])*255, float64(m[1])*255, float64(m[2])*255, 0)
	}
	blob := gocv.BlobFromImage(
		mat,
		1.0/(255.0*float64(std[0])),
		image.Pt(d.cfg.InputWidth, d.cfg.InputHeight),
		mean,
		d.cfg.SwapRB,
		false,
	)
	defer blob.Close()

	d.mu.Lock()
	if d.net == nil {
		d.mu.Unlock()
		return postprocess.RawPredictions{}, errors.New("detector is closed")
	}
	d.net.SetInput(blob, "")
	out := d.net.Forward("")
	d.mu.Unlock()
	defer out.Close()

	if out.Empty() || out.Total()%7 != 0 {
		return postprocess.RawPredictions{}, errors.Errorf("unexpected DetectionOutput with %d values", out.Total())
	}

	rows := out.Reshape(1, out.Total()/7)
	defer rows.Close()

	in := input{w: d.cfg.InputWidth, h: d.cfg.InputHeight, srcW: mat.Cols(), srcH: mat.Rows()}
	n := rows.Rows()
	boxes := make([]float32, 0, 4*n)
	scores := make([]float32, 0, n)
	labels := make([]int, 0, n)
	for i := 0; i < n; i++ {
		labels = append(labels, int(rows.GetFloatAt(i, 1)))
		scores = append(scores, rows.GetFloatAt(i, 2))
		boxes = append(boxes,
			rows.GetFloatAt(i, 3), rows.GetFloatAt(i, 4),
			rows.GetFloatAt(i, 5), rows.GetFloatAt(i, 6),
		)
	}
	return decode(boxes, scores, labels, in, d.cfg.NormalizedBoxes)
}

// tensorToMat copies a [1, 3, H, W] tensor into an HWC BGR Mat with samples
// scaled to [0, 255].
func tensorToMat(t *tensor.Dense) (gocv.Mat, error) {
	h, w, err := images.TensorShape(t)
	if err != nil {
		return gocv.NewMat(), err
	}
	src := t.Data().([]float32)
	cs := h * w

	mat := gocv.NewMatWithSize(h, w, gocv.MatTypeCV32FC3)
	dst, err := mat.DataPtrFloat32()
	if err != nil {
		mat.Close()
		return gocv.NewMat(), errors.Wrap(err, "mat data")
	}
	for i := 0; i < cs; i++ {
		dst[3*i] = src[2*cs+i] * 255
		dst[3*i+1] = src[cs+i] * 255
		dst[3*i+2] = src[i] * 255
	}
	return mat, nil
}

// Close releases the network.
func (d *OpenCVDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.net == nil {
		return nil
	}
	err := d.net.Close()
	d.net = nil
	d.logger.Infow("opencv detector closed", "model", d.cfg.ModelPath)
	return err
}
