// Package sink provides the destinations an export is written to: a local
// directory, an S3 bucket or a GCS bucket.
//
// An Object is written sequentially and only becomes visible when Close
// succeeds. Abort discards whatever was written.
package sink

import (
	"context"
	"io"
	"path"
	"path/filepath"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/ajitpratap0/ocf/pkg/config"
	"github.com/ajitpratap0/ocf/pkg/ocferrors"
)

// Metadata is attached to created objects where the sink supports it.
type Metadata struct {
	ContentType string
	Attributes  map[string]string
}

// Object is an object being written.
type Object interface {
	io.Writer
	// Close commits the object.
	Close() error
	// Abort discards the object. It is safe to call after a failed Close.
	Abort() error
	// URI locates the object, e.g. s3://bucket/key.
	URI() string
	// BytesWritten is the number of bytes written so far.
	BytesWritten() int64
}

// Sink creates objects.
type Sink interface {
	Create(ctx context.Context, name string, meta Metadata) (Object, error)
	// Kind is file, s3 or gcs.
	Kind() string
	Close() error
}

// New creates the sink selected by cfg.Sink.
func New(ctx context.Context, cfg config.ExportConfig, log *zap.Logger) (Sink, error) {
	if log == nil {
		log = zap.NewNop()
	}
	switch cfg.Sink {
	case "", KindFile:
		return NewFile(cfg.Path, cfg.Prefix, log)
	case KindS3:
		return NewS3FromConfig(ctx, cfg, log)
	case KindGCS:
		return NewGCSFromConfig(ctx, cfg, log)
	}
	return nil, ocferrors.New(ocferrors.ErrorTypeConfig, "unknown export sink").
		WithDetail("sink", cfg.Sink)
}

// checkName rejects names that would escape the sink root.
func checkName(name string) error {
	if name == "" || !filepath.IsLocal(name) || strings.Contains(name, "\\") {
		return ocferrors.New(ocferrors.ErrorTypeValidation, "invalid object name").
			WithDetail("name", name)
	}
	return nil
}

func objectKey(prefix, name string) string {
	return strings.TrimPrefix(path.Join(prefix, name), "/")
}

type countingWriter struct {
	w io.Writer
	n atomic.Int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n.Add(int64(n))
	return n, err
}
