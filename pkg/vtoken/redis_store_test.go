package vtoken_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authkit/pkg/vtoken"
)

func newRedisStore(t *testing.T) (*vtoken.RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return vtoken.NewRedisStore(client), mr
}

func TestRedisStoreInsertFindAndDelete(t *testing.T) {
	ctx := context.Background()
	store, _ := newRedisStore(t)

	token := vtoken.Token{
		Key:    "42",
		Type:   vtoken.TypePasswordReset,
		Secret: "s3cret",
		Data:   []byte("payload"),
	}
	require.NoError(t, store.Insert(ctx, token))

	got, err := store.FindAndDelete(ctx, "42", vtoken.TypePasswordReset, "s3cret")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), got.Data)

	_, err = store.FindAndDelete(ctx, "42", vtoken.TypePasswordReset, "s3cret")
	assert.ErrorIs(t, err, vtoken.ErrTokenNotFound)
}

func TestRedisStoreMiss(t *testing.T) {
	ctx := context.Background()
	store, _ := newRedisStore(t)

	_, err := store.FindAndDelete(ctx, "42", vtoken.TypePasswordReset, "unknown")
	assert.ErrorIs(t, err, vtoken.ErrTokenNotFound)
}

func TestRedisStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t)

	expiresAt := time.Now().Add(time.Minute)
	require.NoError(t, store.Insert(ctx, vtoken.Token{
		Key:       "42",
		Type:      vtoken.TypeTwoFactorChallenge,
		Secret:    "abc",
		ExpiresAt: &expiresAt,
	}))

	mr.FastForward(2 * time.Minute)

	_, err := store.FindAndDelete(ctx, "42", vtoken.TypeTwoFactorChallenge, "abc")
	assert.ErrorIs(t, err, vtoken.ErrTokenNotFound, "expired token must be gone")
}

func TestRedisStoreIndexFollowsTokenExpiry(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t)

	short := time.Now().Add(time.Minute)
	long := time.Now().Add(time.Hour)
	require.NoError(t, store.Insert(ctx, vtoken.Token{
		Key: "42", Type: vtoken.TypePasswordReset, Secret: "short", ExpiresAt: &short,
	}))
	require.NoError(t, store.Insert(ctx, vtoken.Token{
		Key: "42", Type: vtoken.TypePasswordReset, Secret: "long", ExpiresAt: &long,
	}))

	// The index survives the shorter token and the longer one stays
	// redeemable.
	mr.FastForward(2 * time.Minute)
	assert.True(t, mr.Exists("vtoken:idx:42:password_reset"))
	_, err := store.FindAndDelete(ctx, "42", vtoken.TypePasswordReset, "long")
	require.NoError(t, err)

	// Once every member has expired the index expires with them, even
	// when nothing was ever redeemed or revoked.
	require.NoError(t, store.Insert(ctx, vtoken.Token{
		Key: "7", Type: vtoken.TypeEmailVerification, Secret: "s", ExpiresAt: &long,
	}))
	mr.FastForward(2 * time.Hour)
	assert.False(t, mr.Exists("vtoken:idx:7:email_verification"))
}

func TestRedisStoreDeleteByKeyType(t *testing.T) {
	ctx := context.Background()
	store, _ := newRedisStore(t)

	for _, secret := range []string{"a", "b", "c"} {
		require.NoError(t, store.Insert(ctx, vtoken.Token{
			Key:    "42",
			Type:   vtoken.TypeTwoFactorChallenge,
			Secret: secret,
		}))
	}
	// Different type for the same key must survive.
	require.NoError(t, store.Insert(ctx, vtoken.Token{
		Key:    "42",
		Type:   vtoken.TypePasswordReset,
		Secret: "keep",
	}))

	require.NoError(t, store.DeleteByKeyType(ctx, "42", vtoken.TypeTwoFactorChallenge))

	for _, secret := range []string{"a", "b", "c"} {
		_, err := store.FindAndDelete(ctx, "42", vtoken.TypeTwoFactorChallenge, secret)
		assert.ErrorIs(t, err, vtoken.ErrTokenNotFound)
	}

	_, err := store.FindAndDelete(ctx, "42", vtoken.TypePasswordReset, "keep")
	assert.NoError(t, err)
}
