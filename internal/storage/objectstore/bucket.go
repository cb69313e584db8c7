package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"telicommunity-go/internal/config"
)

type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// newS3ClientFromConfig is a seam for tests.
var newS3ClientFromConfig = s3.NewFromConfig

// Bucket stores objects in one S3 bucket and builds their public URLs.
type Bucket struct {
	client        putObjectAPI
	name          string
	publicBaseURL string
}

func New(ctx context.Context, cfg config.StorageConfig, bucket string) (*Bucket, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("storage endpoint is required")
	}
	if cfg.PublicBaseURL == "" {
		return nil, errors.New("storage public url is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	})

	return NewWithClient(client, bucket, cfg.PublicBaseURL), nil
}

func NewWithClient(client putObjectAPI, bucket, publicBaseURL string) *Bucket {
	return &Bucket{
		client:        client,
		name:          bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// Upload writes data at path, replacing any previous object there.
func (b *Bucket) Upload(ctx context.Context, path string, data []byte, contentType string) error {
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(b.name),
		Key:           aws.String(path),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
		CacheControl:  aws.String("max-age=3600"),
	})
	if err != nil {
		return fmt.Errorf("put object %s/%s: %w", b.name, path, err)
	}
	return nil
}

func (b *Bucket) PublicURL(path string) string {
	segments := strings.Split(path, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return b.publicBaseURL + "/" + url.PathEscape(b.name) + "/" + strings.Join(segments, "/")
}
