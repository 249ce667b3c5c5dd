package storage

import (
	"context"
	"io"
)

// UploadOptions conveys upload destination metadata.
type UploadOptions struct {
	Bucket       string
	Key          string
	ContentType  string
	CacheControl string
}

// Service publishes objects to remote object storage.
type Service interface {
	// Upload stores body under opts.Key and returns its s3:// location.
	Upload(ctx context.Context, body io.Reader, opts UploadOptions) (string, error)
}
