package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/patrickmn/go-cache"
)

// MemoryStore keeps values in process memory. With a positive quota, a Set
// that would push the total stored bytes past it fails with ErrQuotaExceeded.
type MemoryStore struct {
	mu         sync.Mutex
	items      *cache.Cache
	quotaBytes int
}

func NewMemoryStore(quotaBytes int) *MemoryStore {
	return &MemoryStore{
		items:      cache.New(cache.NoExpiration, 0),
		quotaBytes: quotaBytes,
	}
}

func (s *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	v, ok := s.items.Get(key)
	if !ok {
		return "", false, nil
	}
	return v.(string), true, nil
}

func (s *MemoryStore) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.quotaBytes > 0 {
		used := 0
		for k, item := range s.items.Items() {
			if k == key {
				continue
			}
			used += len(k) + len(item.Object.(string))
		}
		if used+len(key)+len(value) > s.quotaBytes {
			return fmt.Errorf("set %q: %w", key, ErrQuotaExceeded)
		}
	}

	s.items.Set(key, value, cache.NoExpiration)
	return nil
}

func (s *MemoryStore) Remove(ctx context.Context, key string) error {
	return s.MultiRemove(ctx, key)
}

func (s *MemoryStore) MultiRemove(ctx context.Context, keys ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, k := range keys {
		s.items.Delete(k)
	}
	return nil
}
