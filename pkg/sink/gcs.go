package sink

import (
	"context"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/ajitpratap0/ocf/pkg/config"
	"github.com/ajitpratap0/ocf/pkg/ocferrors"
)

// KindGCS is the Google Cloud Storage sink.
const KindGCS = "gcs"

// GCS writes objects to a Cloud Storage bucket.
type GCS struct {
	client *storage.Client
	bucket *storage.BucketHandle
	name   string
	prefix string
	owned  bool
	logger *zap.Logger
}

// NewGCS creates a sink on an existing client. The client is not closed by
// the sink.
func NewGCS(client *storage.Client, bucket, prefix string, log *zap.Logger) *GCS {
	if log == nil {
		log = zap.NewNop()
	}
	return &GCS{
		client: client,
		bucket: client.Bucket(bucket),
		name:   bucket,
		prefix: prefix,
		logger: log.With(zap.String("component", "gcs_sink"), zap.String("bucket", bucket)),
	}
}

// NewGCSFromConfig creates a client, using cfg.CredentialsFile when set and
// application default credentials otherwise.
func NewGCSFromConfig(ctx context.Context, cfg config.ExportConfig, log *zap.Logger) (*GCS, error) {
	if cfg.Bucket == "" {
		return nil, ocferrors.New(ocferrors.ErrorTypeConfig, "bucket is required").WithDetail("field", "export.bucket")
	}
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, ocferrors.Wrap(err, ocferrors.ErrorTypeConfig, "failed to create GCS client")
	}
	s := NewGCS(client, cfg.Bucket, cfg.Prefix, log)
	s.owned = true
	return s, nil
}

// Kind implements Sink.
func (s *GCS) Kind() string { return KindGCS }

// Close implements Sink.
func (s *GCS) Close() error {
	if !s.owned {
		return nil
	}
	return s.client.Close()
}

// Create implements Sink.
func (s *GCS) Create(ctx context.Context, name string, meta Metadata) (Object, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	key := objectKey(s.prefix, name)

	// cancelling the writer's context is the only way to abandon an upload
	ctx, cancel := context.WithCancel(ctx)
	w := s.bucket.Object(key).NewWriter(ctx)
	w.ContentType = meta.ContentType
	w.Metadata = meta.Attributes

	o := &gcsObject{w: w, cancel: cancel, uri: "gs://" + s.name + "/" + key, logger: s.logger}
	o.cw.w = w
	return o, nil
}

type gcsObject struct {
	w      *storage.Writer
	cw     countingWriter
	cancel context.CancelFunc
	uri    string
	logger *zap.Logger
}

func (o *gcsObject) Write(p []byte) (int, error) {
	n, err := o.cw.Write(p)
	if err != nil {
		return n, ocferrors.Wrap(err, ocferrors.ErrorTypeConnection, "upload failed").WithDetail("uri", o.uri)
	}
	return n, nil
}

func (o *gcsObject) Close() error {
	defer o.cancel()
	if err := o.w.Close(); err != nil {
		return ocferrors.Wrap(err, ocferrors.ErrorTypeConnection, "upload failed").WithDetail("uri", o.uri)
	}
	o.logger.Debug("object uploaded", zap.String("uri", o.uri), zap.Int64("bytes", o.cw.n.Load()))
	return nil
}

func (o *gcsObject) Abort() error {
	o.cancel()
	_ = o.w.Close()
	return nil
}

func (o *gcsObject) URI() string { return o.uri }

func (o *gcsObject) BytesWritten() int64 { return o.cw.n.Load() }
