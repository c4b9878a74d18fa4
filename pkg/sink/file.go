package sink

import (
	"context"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ajitpratap0/ocf/pkg/ocferrors"
)

// KindFile is the local directory sink.
const KindFile = "file"

// File writes objects below a local directory. Objects are written to a
// temporary file and renamed into place on Close.
type File struct {
	root   string
	logger *zap.Logger
}

// NewFile creates a file sink rooted at filepath.Join(dir, prefix).
func NewFile(dir, prefix string, log *zap.Logger) (*File, error) {
	if dir == "" {
		dir = "."
	}
	root := filepath.Join(dir, filepath.FromSlash(prefix))
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, ocferrors.Wrap(err, ocferrors.ErrorTypeConfig, "cannot create export directory").
			WithDetail("path", root)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &File{root: root, logger: log.With(zap.String("component", "file_sink"))}, nil
}

// Kind implements Sink.
func (s *File) Kind() string { return KindFile }

// Close implements Sink.
func (s *File) Close() error { return nil }

// Create implements Sink. Metadata is not stored.
func (s *File) Create(ctx context.Context, name string, _ Metadata) (Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, ocferrors.Wrap(err, ocferrors.ErrorTypeTimeout, "create cancelled")
	}
	if err := checkName(name); err != nil {
		return nil, err
	}
	dest := filepath.Join(s.root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(dest), 0o750); err != nil {
		return nil, ocferrors.Wrap(err, ocferrors.ErrorTypeConnection, "cannot create directory").
			WithDetail("path", filepath.Dir(dest))
	}
	f, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+"-*.tmp")
	if err != nil {
		return nil, ocferrors.Wrap(err, ocferrors.ErrorTypeConnection, "cannot create file").
			WithDetail("path", dest)
	}
	return &fileObject{f: f, dest: dest, cw: countingWriter{w: f}, logger: s.logger}, nil
}

type fileObject struct {
	f      *os.File
	dest   string
	cw     countingWriter
	done   bool
	logger *zap.Logger
}

func (o *fileObject) Write(p []byte) (int, error) {
	n, err := o.cw.Write(p)
	if err != nil {
		return n, ocferrors.Wrap(err, ocferrors.ErrorTypeConnection, "write failed").WithDetail("path", o.dest)
	}
	return n, nil
}

func (o *fileObject) Close() error {
	if o.done {
		return nil
	}
	o.done = true
	if err := o.f.Close(); err != nil {
		_ = os.Remove(o.f.Name())
		return ocferrors.Wrap(err, ocferrors.ErrorTypeConnection, "close failed").WithDetail("path", o.dest)
	}
	if err := os.Rename(o.f.Name(), o.dest); err != nil {
		_ = os.Remove(o.f.Name())
		return ocferrors.Wrap(err, ocferrors.ErrorTypeConnection, "rename failed").WithDetail("path", o.dest)
	}
	o.logger.Debug("object committed", zap.String("path", o.dest), zap.Int64("bytes", o.cw.n.Load()))
	return nil
}

func (o *fileObject) Abort() error {
	if o.done {
		return nil
	}
	o.done = true
	_ = o.f.Close()
	if err := os.Remove(o.f.Name()); err != nil && !os.IsNotExist(err) {
		return ocferrors.Wrap(err, ocferrors.ErrorTypeConnection, "cleanup failed").WithDetail("path", o.f.Name())
	}
	return nil
}

func (o *fileObject) URI() string { return "file://" + filepath.ToSlash(o.dest) }

func (o *fileObject) BytesWritten() int64 { return o.cw.n.Load() }
