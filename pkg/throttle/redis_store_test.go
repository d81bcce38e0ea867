package throttle_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authkit/pkg/throttle"
)

func newRedisStore(t *testing.T) (*throttle.RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return throttle.NewRedisStore(client), mr
}

func TestRedisStoreIncrement(t *testing.T) {
	ctx := context.Background()
	store, _ := newRedisStore(t)

	for want := 1; want <= 3; want++ {
		count, err := store.Increment(ctx, "k", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, count)
	}
}

func TestRedisStoreWindowExpiry(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t)

	_, err := store.Increment(ctx, "k", time.Minute)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	count, err := store.Increment(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "counter restarts after the window lapses")
}

func TestRedisStoreBlock(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t)

	blocked, err := store.IsBlocked(ctx, "k")
	require.NoError(t, err)
	assert.False(t, blocked)

	require.NoError(t, store.Block(ctx, "k", time.Hour))

	blocked, err = store.IsBlocked(ctx, "k")
	require.NoError(t, err)
	assert.True(t, blocked)

	mr.FastForward(2 * time.Hour)

	blocked, err = store.IsBlocked(ctx, "k")
	require.NoError(t, err)
	assert.False(t, blocked, "block lapses with its TTL")
}

func TestRedisStoreReset(t *testing.T) {
	ctx := context.Background()
	store, _ := newRedisStore(t)

	_, err := store.Increment(ctx, "k", time.Minute)
	require.NoError(t, err)
	require.NoError(t, store.Block(ctx, "k", time.Hour))

	require.NoError(t, store.Reset(ctx, "k"))

	blocked, err := store.IsBlocked(ctx, "k")
	require.NoError(t, err)
	assert.False(t, blocked)

	count, err := store.Increment(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
