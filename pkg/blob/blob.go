// Package blob stores uploaded files and returns their public URLs.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ProgressFunc receives bytes written so far and the expected total.
type ProgressFunc func(written, total int64)

// Store writes one object and returns a URL the report can reference.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string, progress ProgressFunc) (string, error)
}

// Backend names a Store implementation.
type Backend string

const (
	BackendLocal Backend = "local"
	BackendGCS   Backend = "gcs"
	BackendS3    Backend = "s3"
)

// Config selects and configures the backend.
type Config struct {
	Backend Backend

	LocalDir     string
	LocalBaseURL string

	GCSBucket          string
	GCSCredentialsJSON string
	AccessBaseURL      string

	S3Bucket   string
	S3Region   string
	S3Endpoint string
}

// New builds the Store for cfg.Backend.
func New(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case BackendLocal, "":
		return NewLocalStore(cfg.LocalDir, cfg.LocalBaseURL)
	case BackendGCS:
		if cfg.GCSBucket == "" {
			return nil, errors.New("GCS_BUCKET is required for gcs storage")
		}
		return NewGCSStore(ctx, cfg.GCSBucket, cfg.GCSCredentialsJSON, cfg.AccessBaseURL)
	case BackendS3:
		if cfg.S3Bucket == "" {
			return nil, errors.New("S3_BUCKET is required for s3 storage")
		}
		return NewS3Store(ctx, S3Config{Bucket: cfg.S3Bucket, Region: cfg.S3Region, Endpoint: cfg.S3Endpoint})
	}
	return nil, fmt.Errorf("unsupported blob backend: %s", cfg.Backend)
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}

// progressReader reports reads to fn. Seek is passed through so SDKs that
// rewind the body for signing or retries keep working.
type progressReader struct {
	r       io.Reader
	total   int64
	written int64
	fn      ProgressFunc
}

func newProgressReader(r io.Reader, total int64, fn ProgressFunc) io.Reader {
	if fn == nil {
		return r
	}
	return &progressReader{r: r, total: total, fn: fn}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.written += int64(n)
		p.fn(p.written, p.total)
	}
	return n, err
}

func (p *progressReader) Seek(offset int64, whence int) (int64, error) {
	s, ok := p.r.(io.Seeker)
	if !ok {
		return 0, errors.New("blob: body is not seekable")
	}
	pos, err := s.Seek(offset, whence)
	if err == nil {
		p.written = pos
	}
	return pos, err
}
