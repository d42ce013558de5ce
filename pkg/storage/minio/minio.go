package minio

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/chronoboard/backend/pkg/logger"
)

type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// Client reads document objects from a MinIO / S3-compatible endpoint.
type Client struct {
	client *minio.Client
	bucket string
	logger logger.Logger
}

func NewClient(cfg Config, log logger.Logger) (*Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &Client{
		client: client,
		bucket: cfg.Bucket,
		logger: log,
	}, nil
}

// Fetch downloads the whole object into memory; uploaded documents are
// capped well below anything that would make streaming worthwhile.
func (c *Client) Fetch(ctx context.Context, key string) ([]byte, error) {
	obj, err := c.client.GetObject(ctx, c.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		c.logger.Error("failed to get object",
			logger.String("bucket", c.bucket),
			logger.String("key", key),
			logger.Error(err),
		)
		return nil, fmt.Errorf("failed to get object %s: %w", key, err)
	}
	defer obj.Close()

	contents, err := io.ReadAll(obj)
	if err != nil {
		c.logger.Error("failed to read object",
			logger.String("bucket", c.bucket),
			logger.String("key", key),
			logger.Error(err),
		)
		return nil, fmt.Errorf("failed to read object %s: %w", key, err)
	}

	return contents, nil
}
