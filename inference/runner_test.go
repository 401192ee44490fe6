package inference

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorgonia.org/tensor"

	"github.com/nvr-ai/go-detect/common"
	"github.com/nvr-ai/go-detect/models/postprocess"
)

func testTensor(h, w int) *tensor.Dense {
	data := make([]float32, 3*h*w)
	for i := range data {
		data[i] = 0.5
	}
	return tensor.New(tensor.WithShape(1, 3, h, w), tensor.WithBacking(data))
}

func onePerson(ctx context.Context, t *tensor.Dense) (postprocess.RawPredictions, error) {
	var raw postprocess.RawPredictions
	raw.Append([4]float32{10, 10, 50, 100}, 0.9, 1)
	return raw, nil
}

func TestInfer(t *testing.T) {
	raw, err := Infer(context.Background(), DetectorFunc(onePerson), testTensor(120, 80))
	require.NoError(t, err)
	require.Equal(t, 1, raw.Len())
	assert.Equal(t, [4]float32{10, 10, 50, 100}, raw.Boxes[0])
}

func TestInferDoesNotMutateTensor(t *testing.T) {
	in := testTensor(4, 4)
	mutating := DetectorFunc(func(ctx context.Context, t *tensor.Dense) (postprocess.RawPredictions, error) {
		data := t.Data().([]float32)
		for i := range data {
			data[i] = 0
		}
		return postprocess.RawPredictions{}, nil
	})

	_, err := Infer(context.Background(), mutating, in)
	require.NoError(t, err)
	for _, v := range in.Data().([]float32) {
		assert.Equal(t, float32(0.5), v)
	}
}

func TestInferRejectsMalformedTensor(t *testing.T) {
	bad := tensor.New(tensor.WithShape(3, 4, 4), tensor.Of(tensor.Float32))
	_, err := Infer(context.Background(), DetectorFunc(onePerson), bad)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrInference))

	_, err = Infer(context.Background(), DetectorFunc(onePerson), nil)
	assert.Equal(t, common.KindInference, common.KindOf(err))

	_, err = Infer(context.Background(), nil, testTensor(4, 4))
	assert.Equal(t, common.KindInference, common.KindOf(err))
}

func TestInferWrapsDetectorFailures(t *testing.T) {
	cause := errors.New("cuda out of memory")
	failing := DetectorFunc(func(ctx context.Context, t *tensor.Dense) (postprocess.RawPredictions, error) {
		return postprocess.RawPredictions{}, cause
	})
	_, err := Infer(context.Background(), failing, testTensor(4, 4))
	require.Error(t, err)
	assert.Equal(t, common.KindInference, common.KindOf(err))
	assert.True(t, errors.Is(err, cause))

	panicking := DetectorFunc(func(ctx context.Context, t *tensor.Dense) (postprocess.RawPredictions, error) {
		panic("index out of range")
	})
	_, err = Infer(context.Background(), panicking, testTensor(4, 4))
	assert.Equal(t, common.KindInference, common.KindOf(err))
	assert.Contains(t, err.Error(), "index out of range")
}

func TestInferRejectsMismatchedOutput(t *testing.T) {
	ragged := DetectorFunc(func(ctx context.Context, t *tensor.Dense) (postprocess.RawPredictions, error) {
		return postprocess.RawPredictions{
			Boxes:  [][4]float32{{0, 0, 1, 1}},
			Scores: []float32{0.9, 0.8},
			Labels: []int{1},
		}, nil
	})
	_, err := Infer(context.Background(), ragged, testTensor(4, 4))
	assert.Equal(t, common.KindInference, common.KindOf(err))
}

func TestInferCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Infer(ctx, DetectorFunc(onePerson), testTensor(4, 4))
	assert.True(t, errors.Is(err, context.Canceled))
}
