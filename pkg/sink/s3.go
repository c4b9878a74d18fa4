package sink

import (
	"context"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/ajitpratap0/ocf/pkg/config"
	"github.com/ajitpratap0/ocf/pkg/ocferrors"
)

// KindS3 is the Amazon S3 sink.
const KindS3 = "s3"

const (
	s3PartSize    = 8 * 1024 * 1024
	s3Concurrency = 4
)

// S3 uploads objects to a bucket with the multipart upload manager. Writes are
// streamed through a pipe, so an object is never held in memory in full.
type S3 struct {
	uploader *manager.Uploader
	bucket   string
	prefix   string
	logger   *zap.Logger
}

// NewS3 creates a sink on an existing client.
func NewS3(client manager.UploadAPIClient, bucket, prefix string, log *zap.Logger) *S3 {
	if log == nil {
		log = zap.NewNop()
	}
	return &S3{
		uploader: manager.NewUploader(client, func(u *manager.Uploader) {
			u.PartSize = s3PartSize
			u.Concurrency = s3Concurrency
		}),
		bucket: bucket,
		prefix: prefix,
		logger: log.With(zap.String("component", "s3_sink"), zap.String("bucket", bucket)),
	}
}

// NewS3FromConfig loads AWS credentials from the environment and creates a sink.
func NewS3FromConfig(ctx context.Context, cfg config.ExportConfig, log *zap.Logger) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, ocferrors.New(ocferrors.ErrorTypeConfig, "bucket is required").WithDetail("field", "export.bucket")
	}
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, ocferrors.Wrap(err, ocferrors.ErrorTypeConfig, "failed to load AWS configuration")
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewS3(client, cfg.Bucket, cfg.Prefix, log), nil
}

// Kind implements Sink.
func (s *S3) Kind() string { return KindS3 }

// Close implements Sink.
func (s *S3) Close() error { return nil }

// Create implements Sink. The upload runs until the object is closed or
// aborted, or ctx is cancelled.
func (s *S3) Create(ctx context.Context, name string, meta Metadata) (Object, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	key := objectKey(s.prefix, name)
	pr, pw := io.Pipe()

	input := &s3.PutObjectInput{
		Bucket:   aws.String(s.bucket),
		Key:      aws.String(key),
		Body:     pr,
		Metadata: meta.Attributes,
	}
	if meta.ContentType != "" {
		input.ContentType = aws.String(meta.ContentType)
	}

	o := &s3Object{
		pw:     pw,
		uri:    "s3://" + s.bucket + "/" + key,
		done:   make(chan struct{}),
		logger: s.logger,
	}
	o.cw.w = pw
	go func() {
		defer close(o.done)
		start := time.Now()
		_, err := s.uploader.Upload(ctx, input)
		// unblock writers if the upload stopped reading
		_ = pr.CloseWithError(err)
		o.err = err
		if err == nil {
			o.logger.Debug("object uploaded", zap.String("key", key), zap.Duration("elapsed", time.Since(start)))
		}
	}()
	return o, nil
}

type s3Object struct {
	pw     *io.PipeWriter
	cw     countingWriter
	uri    string
	done   chan struct{}
	err    error
	logger *zap.Logger
}

func (o *s3Object) Write(p []byte) (int, error) {
	n, err := o.cw.Write(p)
	if err != nil {
		return n, ocferrors.Wrap(err, ocferrors.ErrorTypeConnection, "upload failed").WithDetail("uri", o.uri)
	}
	return n, nil
}

func (o *s3Object) Close() error {
	_ = o.pw.Close()
	<-o.done
	if o.err != nil {
		return ocferrors.Wrap(o.err, ocferrors.ErrorTypeConnection, "upload failed").WithDetail("uri", o.uri)
	}
	return nil
}

func (o *s3Object) Abort() error {
	_ = o.pw.CloseWithError(ocferrors.New(ocferrors.ErrorTypeInternal, "upload aborted"))
	<-o.done
	return nil
}

func (o *s3Object) URI() string { return o.uri }

func (o *s3Object) BytesWritten() int64 { return o.cw.n.Load() }
