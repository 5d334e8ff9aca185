package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/videoserver/provider/internal/config"
)

// ErrObjectNotFound indicates the exported path does not exist in storage.
var ErrObjectNotFound = errors.New("stored object not found")

type downloader interface {
	Download(ctx context.Context, w io.WriterAt, input *s3.GetObjectInput, options ...func(*manager.Downloader)) (int64, error)
}

// S3Exporter implements videos.Exporter backed by an S3-compatible service.
type S3Exporter struct {
	downloader downloader
	bucket     string
}

// NewS3Exporter configures a downloader targeting the provided object store.
func NewS3Exporter(ctx context.Context, cfg config.ObjectStoreConfig) (*S3Exporter, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("s3 exporter: bucket is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
		if strings.TrimSpace(cfg.Endpoint) != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	d := manager.NewDownloader(client, func(d *manager.Downloader) {
		d.PartSize = 5 * 1024 * 1024
		d.Concurrency = 1
	})

	return &S3Exporter{downloader: d, bucket: cfg.Bucket}, nil
}

// Export downloads the object stored under path and writes it to w.
func (e *S3Exporter) Export(ctx context.Context, path string, w io.Writer) error {
	key := strings.TrimLeft(path, "/")
	if key == "" {
		return fmt.Errorf("s3 export: empty key")
	}

	buf := manager.NewWriteAtBuffer(nil)
	_, err := e.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(e.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var missing *s3types.NoSuchKey
		if errors.As(err, &missing) {
			return fmt.Errorf("s3 export %s: %w", key, ErrObjectNotFound)
		}
		return fmt.Errorf("s3 export %s: %w", key, err)
	}

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("s3 export %s: write: %w", key, err)
	}
	return nil
}
