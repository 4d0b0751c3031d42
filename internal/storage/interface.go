package storage

import (
	"context"
	"io"
	"time"
)

// ObjectStorage defines the interface for blob store operations across the
// logical buckets (uploads, results)
type ObjectStorage interface {
	// Upload uploads an object to the given bucket
	Upload(ctx context.Context, bucket, key string, reader io.Reader, size int64, contentType string) error

	// Download downloads an object and reports its content type
	Download(ctx context.Context, bucket, key string) (io.ReadCloser, string, error)

	// SignURL returns a freshly generated time-limited download URL for an object
	SignURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error)

	// List returns up to limit object keys under a prefix
	List(ctx context.Context, bucket, prefix string, limit int) ([]string, error)

	// Delete deletes an object from the given bucket
	Delete(ctx context.Context, bucket, key string) error

	// EnsureBucket creates the bucket if it doesn't exist
	EnsureBucket(ctx context.Context, bucket string) error
}
