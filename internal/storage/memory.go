package storage

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStorage implements ObjectStorage in process memory. It backs local
// development and tests; signed URLs embed a fresh random token and expiry on
// every call, mirroring the re-signing behavior of the real backends.
type MemoryStorage struct {
	mu      sync.RWMutex
	buckets map[string]map[string]memoryObject
}

type memoryObject struct {
	data        []byte
	contentType string
}

// NewMemoryStorage creates an empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		buckets: make(map[string]map[string]memoryObject),
	}
}

// EnsureBucket creates the bucket if it doesn't exist
func (s *MemoryStorage) EnsureBucket(ctx context.Context, bucket string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.buckets[bucket]; !ok {
		s.buckets[bucket] = make(map[string]memoryObject)
	}
	return nil
}

// Upload uploads an object to the given bucket
func (s *MemoryStorage) Upload(ctx context.Context, bucket, key string, reader io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("failed to read object body: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.buckets[bucket]; !ok {
		s.buckets[bucket] = make(map[string]memoryObject)
	}
	s.buckets[bucket][key] = memoryObject{data: data, contentType: contentType}
	return nil
}

// Download downloads an object and reports its content type
func (s *MemoryStorage) Download(ctx context.Context, bucket, key string) (io.ReadCloser, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.buckets[bucket][key]
	if !ok {
		return nil, "", fmt.Errorf("object not found: %s/%s", bucket, key)
	}

	return io.NopCloser(bytes.NewReader(obj.data)), obj.contentType, nil
}

// SignURL returns a time-limited pseudo-URL for an object
func (s *MemoryStorage) SignURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	s.mu.RLock()
	_, ok := s.buckets[bucket][key]
	s.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("object not found: %s/%s", bucket, key)
	}

	token := make([]byte, 16)
	if _, err := rand.Read(token); err != nil {
		return "", fmt.Errorf("failed to generate sign token: %w", err)
	}

	expires := time.Now().Add(ttl).Unix()
	return fmt.Sprintf("memory://%s/%s?token=%s&expires=%d", bucket, key, hex.EncodeToString(token), expires), nil
}

// List returns up to limit object keys under a prefix
func (s *MemoryStorage) List(ctx context.Context, bucket, prefix string, limit int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	objects, ok := s.buckets[bucket]
	if !ok {
		return nil, fmt.Errorf("bucket not found: %s", bucket)
	}

	var keys []string
	for k := range objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}
	return keys, nil
}

// Delete deletes an object from the given bucket
func (s *MemoryStorage) Delete(ctx context.Context, bucket, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.buckets[bucket], key)
	return nil
}

// ObjectCount reports how many objects a bucket holds. Test helper.
func (s *MemoryStorage) ObjectCount(bucket string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.buckets[bucket])
}
