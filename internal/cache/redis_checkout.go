package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"fastkart/internal/checkout"
)

// RedisCheckoutStore backs both checkout fences with redis: the short
// per-user advisory lock and the longer-lived idempotency memory. Use one
// instance per concern so each carries its own TTL.
type RedisCheckoutStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCheckoutStore(rdb *redis.Client, ttl time.Duration) *RedisCheckoutStore {
	return &RedisCheckoutStore{rdb: rdb, ttl: ttl}
}

func (s *RedisCheckoutStore) TryLock(ctx context.Context, scope, key string) (bool, error) {
	return s.rdb.SetNX(ctx, "checkout:"+scope+":"+key, "1", s.ttl).Result()
}

func (s *RedisCheckoutStore) Unlock(ctx context.Context, scope, key string) error {
	return s.rdb.Del(ctx, "checkout:"+scope+":"+key).Err()
}

func (s *RedisCheckoutStore) Remember(ctx context.Context, scope, key, value string) error {
	return s.rdb.Set(ctx, "checkout:map:"+scope+":"+key, value, s.ttl).Err()
}

func (s *RedisCheckoutStore) Recall(ctx context.Context, scope, key string) (string, bool, error) {
	val, err := s.rdb.Get(ctx, "checkout:map:"+scope+":"+key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

var _ checkout.IdempotencyStore = (*RedisCheckoutStore)(nil)
var _ checkout.Locker = (*RedisCheckoutStore)(nil)
