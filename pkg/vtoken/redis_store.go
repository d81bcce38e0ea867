package vtoken

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on Redis. Atomicity of FindAndDelete comes
// from GETDEL: concurrent redeemers race on a single atomic command and
// only one of them observes the value.
//
// Tokens with an expiry are stored with a matching TTL, so an expired
// token is simply gone by redemption time - observably identical to the
// delete-then-fail contract.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// RedisStoreOption configures a RedisStore.
type RedisStoreOption func(*RedisStore)

// WithKeyPrefix overrides the default "vtoken" key namespace.
func WithKeyPrefix(prefix string) RedisStoreOption {
	return func(rs *RedisStore) {
		if prefix != "" {
			rs.prefix = prefix
		}
	}
}

// NewRedisStore creates a Redis-backed token store.
func NewRedisStore(client *redis.Client, opts ...RedisStoreOption) *RedisStore {
	rs := &RedisStore{
		client: client,
		prefix: "vtoken",
	}
	for _, opt := range opts {
		opt(rs)
	}
	return rs
}

func (rs *RedisStore) tokenKey(key string, typ Type, secret string) string {
	return fmt.Sprintf("%s:%s:%s:%s", rs.prefix, key, typ, secret)
}

func (rs *RedisStore) indexKey(key string, typ Type) string {
	return fmt.Sprintf("%s:idx:%s:%s", rs.prefix, key, typ)
}

// insertScript writes the token and its index entry in one atomic step,
// stretching the index key's TTL to the longest-lived member so the set
// cannot outlive the tokens it points at. A TTL of -1 with more than one
// member means a non-expiring token already holds the set open.
// KEYS: token, index. ARGV: data, secret, ttl millis (0 = no expiry).
var insertScript = redis.NewScript(`
local ttl = tonumber(ARGV[3])
if ttl > 0 then
	redis.call('SET', KEYS[1], ARGV[1], 'PX', ttl)
else
	redis.call('SET', KEYS[1], ARGV[1])
end
redis.call('SADD', KEYS[2], ARGV[2])
if ttl == 0 then
	redis.call('PERSIST', KEYS[2])
else
	local cur = redis.call('PTTL', KEYS[2])
	if cur >= 0 and ttl > cur then
		redis.call('PEXPIRE', KEYS[2], ttl)
	elseif cur == -1 and redis.call('SCARD', KEYS[2]) == 1 then
		redis.call('PEXPIRE', KEYS[2], ttl)
	end
end
return 1
`)

func (rs *RedisStore) Insert(ctx context.Context, token Token) error {
	var ttl time.Duration
	if token.ExpiresAt != nil {
		ttl = time.Until(*token.ExpiresAt)
		if ttl <= 0 {
			// Already expired at insert time; nothing a redeemer could see.
			return nil
		}
	}

	ms := ttl.Milliseconds()
	if ttl > 0 && ms == 0 {
		ms = 1
	}

	err := insertScript.Run(ctx, rs.client,
		[]string{rs.tokenKey(token.Key, token.Type, token.Secret), rs.indexKey(token.Key, token.Type)},
		token.Data, token.Secret, ms,
	).Err()
	if err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

func (rs *RedisStore) FindAndDelete(ctx context.Context, key string, typ Type, secret string) (*Token, error) {
	data, err := rs.client.GetDel(ctx, rs.tokenKey(key, typ, secret)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrTokenNotFound
		}
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	// Index hygiene only; losing this removal is harmless.
	_ = rs.client.SRem(ctx, rs.indexKey(key, typ), secret).Err()

	return &Token{Key: key, Type: typ, Secret: secret, Data: data}, nil
}

func (rs *RedisStore) DeleteByKeyType(ctx context.Context, key string, typ Type) error {
	idx := rs.indexKey(key, typ)
	secrets, err := rs.client.SMembers(ctx, idx).Result()
	if err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}

	keys := make([]string, 0, len(secrets)+1)
	for _, secret := range secrets {
		keys = append(keys, rs.tokenKey(key, typ, secret))
	}
	keys = append(keys, idx)

	if err := rs.client.Del(ctx, keys...).Err(); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}
