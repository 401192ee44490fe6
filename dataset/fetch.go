package dataset

import (
	"context"
	"io"
	"os"
	"path/filepath"

	getter "github.com/hashicorp/go-getter"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Fetcher downloads and extracts dataset archives into a directory.
type Fetcher struct {
	dir    string
	logger *zap.SugaredLogger
}

// NewFetcher creates a fetcher extracting into dir.
func NewFetcher(dir string, logger *zap.SugaredLogger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Fetcher{dir: dir, logger: logger}
}

// Fetch makes sure dir/name exists, downloading and extracting src into dir
// when it does not.
//
// Arguments:
//   - ctx: Cancels the download.
//   - name: The file or directory the archive extracts to, e.g. "val2017".
//   - src: The archive location: a URL or local path understood by go-getter.
//
// Returns:
//   - bool: True if something was downloaded, false if name already existed.
//   - error: If the download or extraction fails.
func (f *Fetcher) Fetch(ctx context.Context, name, src string) (bool, error) {
	target := filepath.Join(f.dir, name)
	if _, err := os.Stat(target); err == nil {
		f.logger.Infow("dataset already present", "path", target)
		return false, nil
	}

	dst, err := filepath.Abs(f.dir)
	if err != nil {
		return false, errors.Wrap(err, "resolve dataset directory")
	}
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return false, errors.Wrap(err, "create dataset directory")
	}

	f.logger.Infow("downloading", "src", src, "dst", dst)
	client := &getter.Client{
		Src:  src,
		Dst:  dst,
		Pwd:  dst,
		Mode: getter.ClientModeDir,
		Options: []getter.ClientOption{
			getter.WithContext(ctx),
			getter.WithProgress(&progressLogger{logger: f.logger}),
		},
	}
	if err := client.Get(); err != nil {
		return false, errors.Wrapf(err, "fetch %s", src)
	}

	if _, err := os.Stat(target); err != nil {
		return true, errors.Errorf("archive %s did not contain %s", src, name)
	}
	f.logger.Infow("extracted", "path", target)
	return true, nil
}

// progressLogger logs download progress every tenth of the total size.
type progressLogger struct {
	logger *zap.SugaredLogger
}

// TrackProgress implements getter.ProgressTracker.
func (p *progressLogger) TrackProgress(src string, currentSize, totalSize int64, stream io.ReadCloser) io.ReadCloser {
	r := &progressReader{
		ReadCloser: stream,
		logger:     p.logger,
		src:        src,
		total:      totalSize,
		read:       currentSize,
	}
	return r
}

type progressReader struct {
	io.ReadCloser
	logger *zap.SugaredLogger
	src    string
	total  int64
	read   int64
	step   int64
}

func (r *progressReader) Read(p []byte) (int, error) {
	n, err := r.ReadCloser.Read(p)
	r.read += int64(n)
	if r.total > 0 {
		if step := r.read * 10 / r.total; step > r.step {
			r.step = step
			r.logger.Infow("download progress", "src", r.src, "percent", step*10, "bytes", r.read)
		}
	}
	return n, err
}

func (r *progressReader) Close() error {
	r.logger.Infow("download complete", "src", r.src, "bytes", r.read)
	return r.ReadCloser.Close()
}
