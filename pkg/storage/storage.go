package storage

import (
	"context"
	"fmt"

	"github.com/chronoboard/backend/pkg/logger"
	"github.com/chronoboard/backend/pkg/storage/minio"
	"github.com/chronoboard/backend/pkg/storage/s3"
)

// Backend selects the object-storage implementation.
type Backend string

const (
	BackendMinio Backend = "minio"
	BackendS3    Backend = "s3"
)

// Config is shared by both backends. The hosted storage API is
// S3-compatible, so either client can front it.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// Storage fetches raw document bytes by key ("{project_id}/{filename}").
type Storage interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
}

// NewStorage builds the configured backend.
func NewStorage(backend Backend, cfg Config, log logger.Logger) (Storage, error) {
	switch backend {
	case BackendMinio:
		return minio.NewClient(minio.Config{
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			UseSSL:    cfg.UseSSL,
		}, log)
	case BackendS3:
		return s3.NewClient(s3.Config{
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
		}, log)
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", backend)
	}
}
