package storage

import (
	"fmt"
	"strings"
)

// Config selects and configures a storage backend.
type Config struct {
	Backend   string // s3, minio, memory; empty auto-detects from endpoint
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Region    string
}

// NewStorage creates an ObjectStorage instance based on the configuration.
// Parameters:
//   - cfg: storage configuration including backend, endpoint, and credentials.
// Returns:
//   - ObjectStorage: initialized storage client implementation.
//   - error: non-nil if the storage client cannot be created.
func NewStorage(cfg *Config) (ObjectStorage, error) {
	backend := strings.ToLower(cfg.Backend)
	if backend == "" {
		backend = detectBackend(cfg.Endpoint)
	}

	switch backend {
	case "memory":
		return NewMemoryStorage(), nil
	case "minio":
		return NewMinIOStorage(&MinIOConfig{
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			UseSSL:    cfg.UseSSL,
		})
	case "s3", "r2", "s3compatible":
		return NewS3Storage(&S3Config{
			Type:      StorageType(backend),
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			UseSSL:    cfg.UseSSL,
			Region:    cfg.Region,
		})
	default:
		return nil, fmt.Errorf("unknown storage backend: %q", cfg.Backend)
	}
}

// detectBackend attempts to detect the storage backend from the endpoint
func detectBackend(endpoint string) string {
	endpoint = strings.ToLower(endpoint)

	switch {
	case endpoint == "":
		return "memory"
	case strings.Contains(endpoint, "r2.cloudflarestorage.com"):
		return "r2"
	case strings.Contains(endpoint, "amazonaws.com"):
		return "s3"
	default:
		return "minio"
	}
}
