package detectors

import (
	"context"
	"strings"
	"sync"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
	"go.uber.org/zap"
	"gorgonia.org/tensor"

	"github.com/nvr-ai/go-detect/inference/providers"
	"github.com/nvr-ai/go-detect/models/postprocess"
)

// ONNXDetector runs an SSD-style ONNX export through ONNX Runtime.
//
// The model must produce three outputs: boxes [N, 4] as (x1, y1, x2, y2),
// scores [N], and labels [N]. Outputs are matched by name ("box", "score",
// "label" or "class") and otherwise taken in declaration order.
type ONNXDetector struct {
	cfg     Config
	logger  *zap.SugaredLogger
	input   string
	outputs []string
	// boxes, scores and labels index into outputs.
	boxes, scores, labels int

	mu      sync.Mutex
	session *ort.DynamicAdvancedSession
}

// NewONNXDetector opens a session over cfg.ModelPath.
//
// Arguments:
//   - cfg: The detector configuration.
//   - logger: The logger for load events.
//
// Returns:
//   - *ONNXDetector: The ready detector. The caller must Close it.
//   - error: If the weights are missing or the runtime fails to load them.
func NewONNXDetector(cfg Config, logger *zap.SugaredLogger) (*ONNXDetector, error) {
	if err := checkWeights(cfg.ModelPath); err != nil {
		return nil, err
	}

	input, outputs := cfg.Input, cfg.Outputs
	if input == "" || len(outputs) == 0 {
		if err := providers.InitEnvironment(cfg.LibraryPath); err != nil {
			return nil, err
		}
		ins, outs, err := providers.ModelIO(cfg.ModelPath)
		if err != nil {
			return nil, err
		}
		if input == "" {
			if len(ins) == 0 {
				return nil, errors.Errorf("model %s declares no inputs", cfg.ModelPath)
			}
			input = ins[0]
		}
		if len(outputs) == 0 {
			outputs = outs
		}
	}

	boxes, scores, labels, err := matchOutputs(outputs)
	if err != nil {
		return nil, errors.Wrapf(err, "model %s", cfg.ModelPath)
	}

	session, err := providers.NewSession(cfg.Runtime(), cfg.ModelPath, []string{input}, outputs)
	if err != nil {
		return nil, err
	}

	logger.Infow("onnx detector loaded",
		"model", cfg.ModelPath,
		"provider", cfg.Provider,
		"input", input,
		"outputs", outputs,
	)

	return &ONNXDetector{
		cfg:     cfg,
		logger:  logger,
		input:   input,
		outputs: outputs,
		boxes:   boxes,
		scores:  scores,
		labels:  labels,
		session: session,
	}, nil
}

// matchOutputs locates the boxes, scores, and labels outputs by name.
func matchOutputs(names []string) (int, int, int, error) {
	if len(names) < 3 {
		return 0, 0, 0, errors.Errorf("expected 3 outputs (boxes, scores, labels), got %d", len(names))
	}
	boxes, scores, labels := -1, -1, -1
	for i, name := range names {
		n := strings.ToLower(name)
		switch {
		case strings.Contains(n, "box") && boxes < 0:
			boxes = i
		case strings.Contains(n, "score") && scores < 0:
			scores = i
		case (strings.Contains(n, "label") || strings.Contains(n, "class")) && labels < 0:
			labels = i
		}
	}
	if boxes < 0 || scores < 0 || labels < 0 {
		return 0, 1, 2, nil
	}
	return boxes, scores, labels, nil
}

// Detect implements inference.Detector.
func (d *ONNXDetector) Detect(ctx context.Context, t *tensor.Dense) (postprocess.RawPredictions, error) {
	in, err := prepare(t, d.cfg.InputWidth, d.cfg.InputHeight, d.cfg.Mean, d.cfg.std())
	if err != nil {
		return postprocess.RawPredictions{}, err
	}

	inputTensor, err := ort.NewTensor(ort.NewShape(1, 3, int64(in.h), int64(in.w)), in.data)
	if err != nil {
		return postprocess.RawPredictions{}, errors.Wrap(err, "error creating input tensor")
	}
	defer inputTensor.Destroy()

	outputs := make([]ort.Value, len(d.outputs))
	defer func() {
		for _, v := range outputs {
			if v != nil {
				v.Destroy()
			}
		}
	}()

	d.mu.Lock()
	if d.session == nil {
		d.mu.Unlock()
		return postprocess.RawPredictions{}, errors.New("detector is closed")
	}
	err = d.session.Run([]ort.Value{inputTensor}, outputs)
	d.mu.Unlock()
	if err != nil {
		return postprocess.RawPredictions{}, errors.Wrap(err, "failed to run inference")
	}

	boxes, err := floats(outputs[d.boxes])
	if err != nil {
		return postprocess.RawPredictions{}, errors.Wrapf(err, "output %s", d.outputs[d.boxes])
	}
	scores, err := floats(outputs[d.scores])
	if err != nil {
		return postprocess.RawPredictions{}, errors.Wrapf(err, "output %s", d.outputs[d.scores])
	}
	labels, err := ints(outputs[d.labels])
	if err != nil {
		return postprocess.RawPredictions{}, errors.Wrapf(err, "output %s", d.outputs[d.labels])
	}

	return decode(boxes, scores, labels, in, d.cfg.NormalizedBoxes)
}

// decode assembles raw predictions from flat output buffers, mapping boxes
// back to source pixels.
func decode(boxes, scores []float32, labels []int, in input, normalized bool) (postprocess.RawPredictions, error) {
	if len(boxes)%4 != 0 {
		return postprocess.RawPredictions{}, errors.Errorf("boxes output has %d values, not a multiple of 4", len(boxes))
	}
	n := len(boxes) / 4
	if len(scores) != n || len(labels) != n {
		return postprocess.RawPredictions{}, errors.Errorf("mismatched outputs: %d boxes, %d scores, %d labels",
			n, len(scores), len(labels))
	}

	sx, sy := in.scaleX(), in.scaleY()
	if normalized {
		sx, sy = float32(in.srcW), float32(in.srcH)
	}

	raw := postprocess.RawPredictions{
		Boxes:  make([][4]float32, 0, n),
		Scores: make([]float32, 0, n),
		Labels: make([]int, 0, n),
	}
	for i := 0; i < n; i++ {
		b := boxes[i*4 : i*4+4]
		raw.Append([4]float32{b[0] * sx, b[1] * sy, b[2] * sx, b[3] * sy}, scores[i], labels[i])
	}
	return raw, nil
}

func floats(v ort.Value) ([]float32, error) {
	switch t := v.(type) {
	case *ort.Tensor[float32]:
		return t.GetData(), nil
	case *ort.Tensor[float64]:
		data := t.GetData()
		out := make([]float32, len(data))
		for i, x := range data {
			out[i] = float32(x)
		}
		return out, nil
	default:
		return nil, errors.Errorf("unexpected output type %T", v)
	}
}

func ints(v ort.Value) ([]int, error) {
	switch t := v.(type) {
	case *ort.Tensor[int64]:
		data := t.GetData()
		out := make([]int, len(data))
		for i, x := range data {
			out[i] = int(x)
		}
		return out, nil
	case *ort.Tensor[int32]:
		data := t.GetData()
		out := make([]int, len(data))
		for i, x := range data {
			out[i] = int(x)
		}
		return out, nil
	case *ort.Tensor[float32]:
		data := t.GetData()
		out := make([]int, len(data))
		for i, x := range data {
			out[i] = int(x)
		}
		return out, nil
	default:
		return nil, errors.Errorf("unexpected output type %T", v)
	}
}

// Close releases the session.
func (d *ONNXDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.session == nil {
		return nil
	}
	err := d.session.Destroy()
	d.session = nil
	d.logger.Infow("onnx detector closed", "model", d.cfg.ModelPath)
	return errors.Wrap(err, "error destroying ORT session")
}
