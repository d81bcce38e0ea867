package otp

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on Redis. The code and its attempt counter
// share the phone-scoped key pair and expire together.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// RedisStoreOption configures a RedisStore.
type RedisStoreOption func(*RedisStore)

// WithKeyPrefix overrides the default "otp" key namespace.
func WithKeyPrefix(prefix string) RedisStoreOption {
	return func(rs *RedisStore) {
		if prefix != "" {
			rs.prefix = prefix
		}
	}
}

// NewRedisStore creates a Redis-backed OTP store.
func NewRedisStore(client *redis.Client, opts ...RedisStoreOption) *RedisStore {
	rs := &RedisStore{client: client, prefix: "otp"}
	for _, opt := range opts {
		opt(rs)
	}
	return rs
}

func (rs *RedisStore) codeKey(phone string) string     { return rs.prefix + ":code:" + phone }
func (rs *RedisStore) attemptsKey(phone string) string { return rs.prefix + ":attempts:" + phone }
func (rs *RedisStore) budgetKey(phone string) string   { return rs.prefix + ":budget:" + phone }

func (rs *RedisStore) Save(ctx context.Context, phone, code string, ttl time.Duration, maxAttempts int) error {
	pipe := rs.client.TxPipeline()
	pipe.Set(ctx, rs.codeKey(phone), code, ttl)
	pipe.Set(ctx, rs.budgetKey(phone), strconv.Itoa(maxAttempts), ttl)
	pipe.Del(ctx, rs.attemptsKey(phone))
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

// consumeScript compares the stored code with the candidate and settles
// the attempt bookkeeping in one atomic step, so concurrent redemptions
// of the same code cannot both observe it before it is cleared.
// KEYS: code, attempts, budget. ARGV: candidate.
// Returns 1 on a match (keys cleared), 0 otherwise.
var consumeScript = redis.NewScript(`
local code = redis.call('GET', KEYS[1])
if not code then
	return 0
end
if code == ARGV[1] then
	redis.call('DEL', KEYS[1], KEYS[2], KEYS[3])
	return 1
end
local attempts = redis.call('INCR', KEYS[2])
local budget = tonumber(redis.call('GET', KEYS[3]))
if budget and budget > 0 and attempts >= budget then
	redis.call('DEL', KEYS[1], KEYS[2], KEYS[3])
end
return 0
`)

func (rs *RedisStore) Consume(ctx context.Context, phone, candidate string) (bool, error) {
	res, err := consumeScript.Run(ctx, rs.client,
		[]string{rs.codeKey(phone), rs.attemptsKey(phone), rs.budgetKey(phone)},
		candidate,
	).Int()
	if err != nil {
		return false, errors.Join(ErrStoreUnavailable, err)
	}
	return res == 1, nil
}
