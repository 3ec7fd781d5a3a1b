package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Page is a rendered response kept by the page cache.
type Page struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// PageStore holds rendered pages for a bounded time.
type PageStore interface {
	Get(ctx context.Context, key string) (*Page, bool, error)
	Set(ctx context.Context, key string, page *Page, ttl time.Duration) error
	Clear(ctx context.Context) error
}

// NewPageStore returns a Redis-backed store, or an in-process one when rdb is nil.
func NewPageStore(rdb *redis.Client) PageStore {
	if rdb == nil {
		return NewMemoryPageStore()
	}
	return NewRedisPageStore(rdb)
}

// RedisPageStore keeps pages under the page: prefix so that every app
// instance shares them.
type RedisPageStore struct {
	rdb *redis.Client
}

// NewRedisPageStore wraps rdb.
func NewRedisPageStore(rdb *redis.Client) *RedisPageStore {
	return &RedisPageStore{rdb: rdb}
}

// Get returns the page stored under key.
func (s *RedisPageStore) Get(ctx context.Context, key string) (*Page, bool, error) {
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var page Page
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, false, fmt.Errorf("decode cached page: %w", err)
	}
	return &page, true, nil
}

// Set stores page under key for ttl.
func (s *RedisPageStore) Set(ctx context.Context, key string, page *Page, ttl time.Duration) error {
	raw, err := json.Marshal(page)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, raw, ttl).Err()
}

// Clear removes every page: key.
func (s *RedisPageStore) Clear(ctx context.Context) error {
	iter := s.rdb.Scan(ctx, 0, PageKeyPrefix+"*", 100).Iterator()
	batch := make([]string, 0, 100)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			if err := s.rdb.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return s.rdb.Del(ctx, batch...).Err()
	}
	return nil
}

type memoryEntry struct {
	page    Page
	expires time.Time
}

// MemoryPageStore is a process-local TTL map used when Redis is unavailable.
type MemoryPageStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryPageStore returns an empty store.
func NewMemoryPageStore() *MemoryPageStore {
	return &MemoryPageStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get returns a copy of the unexpired page under key.
func (s *MemoryPageStore) Get(_ context.Context, key string) (*Page, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !s.now().Before(e.expires) {
		delete(s.entries, key)
		return nil, false, nil
	}
	page := e.page
	page.Body = append([]byte(nil), e.page.Body...)
	return &page, true, nil
}

// Set stores a copy of page under key for ttl. Expired entries are swept on write.
func (s *MemoryPageStore) Set(_ context.Context, key string, page *Page, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, e := range s.entries {
		if !now.Before(e.expires) {
			delete(s.entries, k)
		}
	}

	stored := *page
	stored.Body = append([]byte(nil), page.Body...)
	s.entries[key] = memoryEntry{page: stored, expires: now.Add(ttl)}
	return nil
}

// Clear drops every entry.
func (s *MemoryPageStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.entries {
		if strings.HasPrefix(k, PageKeyPrefix) {
			delete(s.entries, k)
		}
	}
	return nil
}

// Len reports the number of stored entries, expired or not.
func (s *MemoryPageStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
