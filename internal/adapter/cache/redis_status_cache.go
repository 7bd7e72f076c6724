package cache

import (
	"context"
	"errors"
	"time"

	"github.com/ViduraMC/Bakery-App/internal/usecase"
	"github.com/redis/go-redis/v9"
)

type RedisStatusCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

// NewRedisStatusCache keeps entries for ttl; zero keeps them until overwritten.
func NewRedisStatusCache(rdb redis.Cmdable, ttl time.Duration) *RedisStatusCache {
	return &RedisStatusCache{rdb: rdb, ttl: ttl}
}

func statusKey(orderID string) string { return "order:status:" + orderID }

func (r *RedisStatusCache) SetStatus(ctx context.Context, orderID string, status string) error {
	return r.rdb.Set(ctx, statusKey(orderID), status, r.ttl).Err()
}

func (r *RedisStatusCache) GetStatus(ctx context.Context, orderID string) (string, bool, error) {
	v, err := r.rdb.Get(ctx, statusKey(orderID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (r *RedisStatusCache) Invalidate(ctx context.Context, orderID string) error {
	return r.rdb.Del(ctx, statusKey(orderID)).Err()
}

var _ usecase.OrderStatusCache = (*RedisStatusCache)(nil)
