package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOStorage implements ObjectStorage using MinIO
type MinIOStorage struct {
	client   *minio.Client
	endpoint string
	useSSL   bool
}

// MinIOConfig holds configuration for MinIO client
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// NewMinIOStorage creates a new MinIO storage client
func NewMinIOStorage(cfg *MinIOConfig) (*MinIOStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &MinIOStorage{
		client:   client,
		endpoint: cfg.Endpoint,
		useSSL:   cfg.UseSSL,
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist
func (s *MinIOStorage) EnsureBucket(ctx context.Context, bucket string) error {
	exists, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		if err := s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
		}
	}

	return nil
}

// Upload uploads an object to the given bucket
func (s *MinIOStorage) Upload(ctx context.Context, bucket, key string, reader io.Reader, size int64, contentType string) error {
	opts := minio.PutObjectOptions{
		ContentType: contentType,
	}

	_, err := s.client.PutObject(ctx, bucket, key, reader, size, opts)
	if err != nil {
		return fmt.Errorf("failed to upload object %s/%s: %w", bucket, key, err)
	}

	return nil
}

// Download downloads an object and reports its content type
func (s *MinIOStorage) Download(ctx context.Context, bucket, key string) (io.ReadCloser, string, error) {
	obj, err := s.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", fmt.Errorf("failed to download object %s/%s: %w", bucket, key, err)
	}

	// GetObject is lazy; Stat forces the first request and surfaces missing keys
	stat, err := obj.Stat()
	if err != nil {
		obj.Close()
		return nil, "", fmt.Errorf("failed to download object %s/%s: %w", bucket, key, err)
	}

	return obj, stat.ContentType, nil
}

// SignURL returns a presigned GET URL valid for ttl
func (s *MinIOStorage) SignURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, bucket, key, ttl, nil)
	if err != nil {
		return "", fmt.Errorf("failed to presign object %s/%s: %w", bucket, key, err)
	}
	return u.String(), nil
}

// List returns up to limit object keys under a prefix
func (s *MinIOStorage) List(ctx context.Context, bucket, prefix string, limit int) ([]string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var keys []string
	for obj := range s.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: prefix}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list objects in %s: %w", bucket, obj.Err)
		}
		keys = append(keys, obj.Key)
		if limit > 0 && len(keys) >= limit {
			break
		}
	}

	return keys, nil
}

// Delete deletes an object from the given bucket
func (s *MinIOStorage) Delete(ctx context.Context, bucket, key string) error {
	if err := s.client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object %s/%s: %w", bucket, key, err)
	}
	return nil
}
