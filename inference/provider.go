package inference

import (
	"context"
	"io"
	"sync"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-detect/common"
)

// LoadFunc constructs a detector. It is called at most once per Provider.
type LoadFunc func(ctx context.Context) (Detector, error)

// Provider lazily constructs a detector exactly once and hands the same
// instance to every caller.
type Provider struct {
	load LoadFunc

	once sync.Once

	mu       sync.Mutex
	detector Detector
	err      error
	loading  bool
	closed   bool
}

// NewProvider creates a provider around load. Nothing is loaded until the
// first call to Load.
func NewProvider(load LoadFunc) *Provider {
	return &Provider{load: load}
}

// Load returns the detector, constructing it on the first call.
//
// A failed load is not retried: every call returns the same error, of kind
// common.KindModelLoad.
//
// Arguments:
//   - ctx: Passed to the load function on the first call only.
//
// Returns:
//   - Detector: The shared detector.
//   - error: A *common.Error of kind common.KindModelLoad.
func (p *Provider) Load(ctx context.Context) (Detector, error) {
	p.once.Do(func() {
		p.mu.Lock()
		p.loading = true
		p.mu.Unlock()

		d, err := p.construct(ctx)

		p.mu.Lock()
		defer p.mu.Unlock()
		p.loading = false
		if p.closed && d != nil {
			if c, ok := d.(io.Closer); ok {
				_ = c.Close()
			}
			d, err = nil, common.Errorf(common.KindModelLoad, "provider closed during load")
		}
		p.detector, p.err = d, err
	})

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.detector, p.err
}

func (p *Provider) construct(ctx context.Context) (d Detector, err error) {
	if p.load == nil {
		return nil, common.Errorf(common.KindModelLoad, "no detector configured")
	}

	defer func() {
		if r := recover(); r != nil {
			d, err = nil, common.Errorf(common.KindModelLoad, "detector load panicked: %v", r)
		}
	}()

	d, err = p.load(ctx)
	if err != nil {
		if common.KindOf(err) == common.KindModelLoad {
			return nil, err
		}
		return nil, common.NewError(common.KindModelLoad, "", err)
	}
	if d == nil {
		return nil, common.Errorf(common.KindModelLoad, "load returned no detector")
	}
	return d, nil
}

// Close releases the detector if it was loaded and holds native resources.
// A load still in flight is closed as soon as it completes. Close before the
// first Load does nothing.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.loading {
		p.closed = true
		return nil
	}
	if p.closed {
		return nil
	}
	if c, ok := p.detector.(io.Closer); ok {
		p.closed = true
		return errors.Wrap(c.Close(), "close detector")
	}
	return nil
}

var (
	defaultMu       sync.Mutex
	defaultProvider = NewProvider(nil)
)

// SetDefault replaces the process-wide provider with one around load and
// returns it. Detectors already handed out by the previous provider stay valid.
func SetDefault(load LoadFunc) *Provider {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultProvider = NewProvider(load)
	return defaultProvider
}

// Default returns the process-wide provider. Until SetDefault is called its
// Load fails with common.KindModelLoad.
func Default() *Provider {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	return defaultProvider
}
