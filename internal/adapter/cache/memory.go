package cache

import (
	"context"
	"sync"
	"time"

	"github.com/ViduraMC/Bakery-App/internal/usecase"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// In-process fallbacks used when no Redis address is configured. State is lost
// on restart and is not shared between replicas.

const defaultMemoryEntries = 10000

type MemoryIdempotencyStore struct {
	mu     sync.Mutex
	locks  *expirable.LRU[string, struct{}]
	values *expirable.LRU[string, string]
}

func NewMemoryIdempotencyStore(ttl time.Duration) *MemoryIdempotencyStore {
	return &MemoryIdempotencyStore{
		locks:  expirable.NewLRU[string, struct{}](defaultMemoryEntries, nil, ttl),
		values: expirable.NewLRU[string, string](defaultMemoryEntries, nil, ttl),
	}
}

func (s *MemoryIdempotencyStore) TryLock(_ context.Context, scope, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := lockKey(scope, key)
	if s.locks.Contains(k) {
		return false, nil
	}
	s.locks.Add(k, struct{}{})
	return true, nil
}

func (s *MemoryIdempotencyStore) Release(_ context.Context, scope, key string) error {
	s.locks.Remove(lockKey(scope, key))
	return nil
}

func (s *MemoryIdempotencyStore) Remember(_ context.Context, scope, key, value string) error {
	s.values.Add(mapKey(scope, key), value)
	return nil
}

func (s *MemoryIdempotencyStore) Recall(_ context.Context, scope, key string) (string, bool, error) {
	v, ok := s.values.Get(mapKey(scope, key))
	return v, ok, nil
}

type MemoryStatusCache struct {
	lru *expirable.LRU[string, string]
}

func NewMemoryStatusCache(ttl time.Duration) *MemoryStatusCache {
	return &MemoryStatusCache{lru: expirable.NewLRU[string, string](defaultMemoryEntries, nil, ttl)}
}

func (c *MemoryStatusCache) SetStatus(_ context.Context, orderID, status string) error {
	c.lru.Add(statusKey(orderID), status)
	return nil
}

func (c *MemoryStatusCache) GetStatus(_ context.Context, orderID string) (string, bool, error) {
	v, ok := c.lru.Get(statusKey(orderID))
	return v, ok, nil
}

func (c *MemoryStatusCache) Invalidate(_ context.Context, orderID string) error {
	c.lru.Remove(statusKey(orderID))
	return nil
}

var (
	_ usecase.IdempotencyStore = (*MemoryIdempotencyStore)(nil)
	_ usecase.OrderStatusCache = (*MemoryStatusCache)(nil)
)
