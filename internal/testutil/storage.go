package testutil

import (
	"context"
	"sync"

	"yatube/internal/storage"
)

// MemoryStorage keeps uploads in a map. Set UploadFn to inject failures.
type MemoryStorage struct {
	mu       sync.Mutex
	Objects  map[string][]byte
	UploadFn func(context.Context, *storage.UploadObject) error
}

// NewMemoryStorage returns an empty in-memory storage stub.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{Objects: make(map[string][]byte)}
}

// Upload stores the object under its content-addressed key.
func (s *MemoryStorage) Upload(ctx context.Context, object *storage.UploadObject) (*storage.UploadResponse, error) {
	if s.UploadFn != nil {
		if err := s.UploadFn(ctx, object); err != nil {
			return nil, err
		}
	}
	key := storage.ObjectKey(object)
	s.mu.Lock()
	s.Objects[key] = append([]byte(nil), object.Data...)
	s.mu.Unlock()
	return &storage.UploadResponse{URL: s.URL(key), Key: key}, nil
}

// BulkUpload uploads each object in order.
func (s *MemoryStorage) BulkUpload(ctx context.Context, objects []*storage.UploadObject) ([]*storage.UploadResponse, error) {
	out := make([]*storage.UploadResponse, 0, len(objects))
	for _, o := range objects {
		res, err := s.Upload(ctx, o)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}

// URL maps a key under /media/.
func (s *MemoryStorage) URL(key string) string {
	return "/media/" + key
}

// Keys returns the stored keys.
func (s *MemoryStorage) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.Objects))
	for k := range s.Objects {
		keys = append(keys, k)
	}
	return keys
}
