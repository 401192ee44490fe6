package inference

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorgonia.org/tensor"

	"github.com/nvr-ai/go-detect/common"
	"github.com/nvr-ai/go-detect/models/postprocess"
)

type closingDetector struct {
	DetectorFunc
	closed bool
}

func (c *closingDetector) Close() error {
	c.closed = true
	return nil
}

func TestProviderLoadsOnce(t *testing.T) {
	var calls int32
	p := NewProvider(func(ctx context.Context) (Detector, error) {
		atomic.AddInt32(&calls, 1)
		return DetectorFunc(onePerson), nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := p.Load(context.Background())
			assert.NoError(t, err)
			assert.NotNil(t, d)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestProviderLoadFailureIsSticky(t *testing.T) {
	var calls int
	p := NewProvider(func(ctx context.Context) (Detector, error) {
		calls++
		return nil, errors.New("weights not found")
	})

	_, err := p.Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrModelLoad))

	_, err2 := p.Load(context.Background())
	assert.Equal(t, err, err2)
	assert.Equal(t, 1, calls)
}

func TestProviderRecoversLoadPanic(t *testing.T) {
	p := NewProvider(func(ctx context.Context) (Detector, error) {
		panic("no GPU")
	})
	_, err := p.Load(context.Background())
	assert.Equal(t, common.KindModelLoad, common.KindOf(err))

	p = NewProvider(func(ctx context.Context) (Detector, error) { return nil, nil })
	_, err = p.Load(context.Background())
	assert.Equal(t, common.KindModelLoad, common.KindOf(err))
}

func TestProviderClose(t *testing.T) {
	d := &closingDetector{DetectorFunc: onePerson}
	p := NewProvider(func(ctx context.Context) (Detector, error) { return d, nil })

	require.NoError(t, p.Close())
	assert.False(t, d.closed)

	_, err := p.Load(context.Background())
	require.NoError(t, err)
	require.NoError(t, p.Close())
	assert.True(t, d.closed)
}

func TestProviderCloseDuringLoad(t *testing.T) {
	d := &closingDetector{DetectorFunc: onePerson}
	started := make(chan struct{})
	release := make(chan struct{})
	p := NewProvider(func(ctx context.Context) (Detector, error) {
		close(started)
		<-release
		return d, nil
	})

	type result struct {
		d   Detector
		err error
	}
	done := make(chan result)
	go func() {
		got, err := p.Load(context.Background())
		done <- result{got, err}
	}()

	<-started
	require.NoError(t, p.Close())
	close(release)

	res := <-done
	assert.Nil(t, res.d)
	assert.Equal(t, common.KindModelLoad, common.KindOf(res.err))
	assert.True(t, d.closed)

	// Later calls see the same outcome.
	_, err := p.Load(context.Background())
	assert.Equal(t, common.KindModelLoad, common.KindOf(err))
	require.NoError(t, p.Close())
}

func TestDefaultProvider(t *testing.T) {
	_, err := NewProvider(nil).Load(context.Background())
	assert.Equal(t, common.KindModelLoad, common.KindOf(err))

	p := SetDefault(func(ctx context.Context) (Detector, error) { return DetectorFunc(onePerson), nil })
	assert.Same(t, p, Default())

	d, err := Default().Load(context.Background())
	require.NoError(t, err)
	raw, err := d.Detect(context.Background(), testTensor(4, 4))
	require.NoError(t, err)
	assert.Equal(t, 1, raw.Len())
}

func TestSerialized(t *testing.T) {
	var active, peak int32
	slow := DetectorFunc(func(ctx context.Context, t *tensor.Dense) (postprocess.RawPredictions, error) {
		n := atomic.AddInt32(&active, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		atomic.AddInt32(&active, -1)
		return postprocess.RawPredictions{}, nil
	})

	s := Serialized(slow)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := Infer(context.Background(), s, testTensor(2, 2))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&peak))
	assert.Equal(t, int64(8), s.Stats().Count)
	assert.NoError(t, s.Close())
}
