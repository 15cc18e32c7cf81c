// Package storage saves user uploads (avatars) and returns their public URL.
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/zack12Ali/sb1-a2fvdq/config"
)

// Object is an upload ready to be stored.
type Object struct {
	Path        string
	Body        io.Reader
	Size        int64
	ContentType string
}

type Uploader interface {
	// Upload stores obj and returns the URL clients load it from.
	Upload(ctx context.Context, obj Object) (string, error)
}

// New builds the uploader selected by cfg.StorageBackend.
func New(ctx context.Context, cfg config.Config) (Uploader, error) {
	switch cfg.StorageBackend {
	case "", "local":
		return NewLocalStorage(cfg.LocalStoragePath, cfg.BackendURL+"/uploads")
	case "s3":
		return NewS3Client(cfg.S3Region, cfg.S3Bucket)
	case "gcs":
		return NewGCSClient(ctx, cfg.GCSBucketName, cfg.GCSCredentialsFile)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
