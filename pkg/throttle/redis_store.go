package throttle

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on Redis. INCR provides lost-update-free
// counters; the window and block lifetimes ride on key TTLs.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// RedisStoreOption configures a RedisStore.
type RedisStoreOption func(*RedisStore)

// WithKeyPrefix overrides the default "throttle" key namespace.
func WithKeyPrefix(prefix string) RedisStoreOption {
	return func(rs *RedisStore) {
		if prefix != "" {
			rs.prefix = prefix
		}
	}
}

// NewRedisStore creates a Redis-backed throttle store.
func NewRedisStore(client *redis.Client, opts ...RedisStoreOption) *RedisStore {
	rs := &RedisStore{
		client: client,
		prefix: "throttle",
	}
	for _, opt := range opts {
		opt(rs)
	}
	return rs
}

func (rs *RedisStore) counterKey(key string) string { return rs.prefix + ":count:" + key }
func (rs *RedisStore) blockKey(key string) string   { return rs.prefix + ":block:" + key }

func (rs *RedisStore) Increment(ctx context.Context, key string, window time.Duration) (int, error) {
	counter := rs.counterKey(key)

	count, err := rs.client.Incr(ctx, counter).Result()
	if err != nil {
		return 0, errors.Join(ErrStoreUnavailable, err)
	}
	if count == 1 {
		// First failure opens the window.
		if err := rs.client.Expire(ctx, counter, window).Err(); err != nil {
			return 0, errors.Join(ErrStoreUnavailable, err)
		}
	}
	return int(count), nil
}

func (rs *RedisStore) Block(ctx context.Context, key string, duration time.Duration) error {
	if err := rs.client.Set(ctx, rs.blockKey(key), "1", duration).Err(); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

func (rs *RedisStore) IsBlocked(ctx context.Context, key string) (bool, error) {
	n, err := rs.client.Exists(ctx, rs.blockKey(key)).Result()
	if err != nil {
		return false, errors.Join(ErrStoreUnavailable, err)
	}
	return n > 0, nil
}

func (rs *RedisStore) Reset(ctx context.Context, key string) error {
	if err := rs.client.Del(ctx, rs.counterKey(key), rs.blockKey(key)).Err(); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}
