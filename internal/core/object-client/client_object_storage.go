package objectclient

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/markdave123-py/quizsmith/internal/core"
)

const defaultMaxBytes = 32 << 20

type S3Client struct {
	client     *s3.Client
	downloader *manager.Downloader
	maxBytes   int64
	allowed    allowList
}

var _ core.ObjectClient = (*S3Client)(nil)

func NewS3Client(ctx context.Context, opts Options) (*S3Client, error) {
	if opts.Region == "" {
		return nil, fmt.Errorf("AWS_REGION not set")
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(opts.Region)}
	if opts.AccessKey != "" && opts.SecretKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.PathStyle
	})
	slog.Info("object storage client ready", slog.String("region", opts.Region), slog.String("endpoint", opts.Endpoint))

	return newS3Client(client, opts.MaxBytes, opts.AllowedBuckets), nil
}

func newS3Client(client *s3.Client, maxBytes int64, allowed []string) *S3Client {
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	return &S3Client{
		client:     client,
		downloader: manager.NewDownloader(client),
		maxBytes:   maxBytes,
		allowed:    allowList(allowed),
	}
}

// GetFile downloads an object with the concurrent range downloader. Objects
// outside the allow list are rejected before any request is made.
func (c *S3Client) GetFile(ctx context.Context, bucket, key string) (*core.RemoteFile, error) {
	if !c.allowed.allows(bucket, key) {
		return nil, fmt.Errorf("s3 %s/%s: %w", bucket, key, ErrNotAllowed)
	}

	ctxGet, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	head, err := c.client.HeadObject(ctxGet, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 head %s/%s: %w", bucket, key, err)
	}
	if size := aws.ToInt64(head.ContentLength); size > c.maxBytes {
		return nil, fmt.Errorf("s3 object %s/%s is %d bytes, limit is %d", bucket, key, size, c.maxBytes)
	}

	buf := manager.NewWriteAtBuffer(make([]byte, 0, aws.ToInt64(head.ContentLength)))
	if _, err := c.downloader.Download(ctxGet, buf, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}); err != nil {
		return nil, fmt.Errorf("s3 get %s/%s: %w", bucket, key, err)
	}

	return &core.RemoteFile{
		Name:     path.Base(key),
		MimeType: aws.ToString(head.ContentType),
		Data:     buf.Bytes(),
	}, nil
}
