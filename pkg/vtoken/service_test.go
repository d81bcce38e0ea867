package vtoken_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authkit/pkg/vtoken"
)

func newTestService(t *testing.T, opts ...vtoken.Option) *vtoken.Service {
	t.Helper()
	store := vtoken.NewMemoryStore(vtoken.WithCleanupInterval(0))
	t.Cleanup(store.Close)
	return vtoken.NewService(store, opts...)
}

func TestIssue(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("SecretShape", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(t)

		secret, err := svc.Issue(ctx, "42", vtoken.TypeEmailVerification)
		require.NoError(t, err)
		assert.Len(t, secret, 64, "32 random bytes hex-encoded")
	})

	t.Run("SecretsAreUnique", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(t)

		s1, err := svc.Issue(ctx, "42", vtoken.TypeEmailVerification)
		require.NoError(t, err)
		s2, err := svc.Issue(ctx, "42", vtoken.TypeEmailVerification)
		require.NoError(t, err)
		assert.NotEqual(t, s1, s2)
	})
}

func TestVerify(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(t)

		secret, err := svc.Issue(ctx, "42", vtoken.TypePasswordReset, vtoken.WithData([]byte(`{"email":"u@x.com"}`)))
		require.NoError(t, err)

		data, err := svc.Verify(ctx, "42", vtoken.TypePasswordReset, secret)
		require.NoError(t, err)
		assert.JSONEq(t, `{"email":"u@x.com"}`, string(data))
	})

	t.Run("AtMostOnce", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(t)

		secret, err := svc.Issue(ctx, "42", vtoken.TypePasswordReset)
		require.NoError(t, err)

		_, err = svc.Verify(ctx, "42", vtoken.TypePasswordReset, secret)
		require.NoError(t, err)

		_, err = svc.Verify(ctx, "42", vtoken.TypePasswordReset, secret)
		assert.ErrorIs(t, err, vtoken.ErrInvalidToken)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(t)

		_, err := svc.Issue(ctx, "42", vtoken.TypePasswordReset)
		require.NoError(t, err)

		_, err = svc.Verify(ctx, "42", vtoken.TypePasswordReset, "deadbeef")
		assert.ErrorIs(t, err, vtoken.ErrInvalidToken)
	})

	t.Run("WrongType", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(t)

		secret, err := svc.Issue(ctx, "42", vtoken.TypePasswordReset)
		require.NoError(t, err)

		_, err = svc.Verify(ctx, "42", vtoken.TypeEmailVerification, secret)
		assert.ErrorIs(t, err, vtoken.ErrInvalidToken)
	})

	t.Run("ExpiredTokenConsumedAndRejected", func(t *testing.T) {
		t.Parallel()
		now := time.Now()
		clock := now
		var mu sync.Mutex
		svc := newTestService(t, vtoken.WithClock(func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			return clock
		}))

		secret, err := svc.Issue(ctx, "42", vtoken.TypePasswordReset, vtoken.WithTTL(time.Minute))
		require.NoError(t, err)

		mu.Lock()
		clock = now.Add(2 * time.Minute)
		mu.Unlock()

		_, err = svc.Verify(ctx, "42", vtoken.TypePasswordReset, secret)
		assert.ErrorIs(t, err, vtoken.ErrInvalidToken)

		// The failed attempt consumed the token: a retry after fixing the
		// clock would still fail.
		_, err = svc.Verify(ctx, "42", vtoken.TypePasswordReset, secret)
		assert.ErrorIs(t, err, vtoken.ErrInvalidToken)
	})

	t.Run("NoExpiryMeansValidIndefinitely", func(t *testing.T) {
		t.Parallel()
		now := time.Now()
		clock := now
		var mu sync.Mutex
		svc := newTestService(t, vtoken.WithClock(func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			return clock
		}))

		secret, err := svc.Issue(ctx, "42", vtoken.TypeEmailVerification)
		require.NoError(t, err)

		mu.Lock()
		clock = now.Add(365 * 24 * time.Hour)
		mu.Unlock()

		_, err = svc.Verify(ctx, "42", vtoken.TypeEmailVerification, secret)
		assert.NoError(t, err)
	})
}

func TestRevoke(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("KillsLiveTokens", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(t)

		secret, err := svc.Issue(ctx, "42", vtoken.TypePasswordReset)
		require.NoError(t, err)

		require.NoError(t, svc.Revoke(ctx, "42", vtoken.TypePasswordReset))
		_, err = svc.Verify(ctx, "42", vtoken.TypePasswordReset, secret)
		assert.ErrorIs(t, err, vtoken.ErrInvalidToken)
	})

	t.Run("OtherTypesUntouched", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(t)

		secret, err := svc.Issue(ctx, "42", vtoken.TypeEmailVerification)
		require.NoError(t, err)

		require.NoError(t, svc.Revoke(ctx, "42", vtoken.TypePasswordReset))
		_, err = svc.Verify(ctx, "42", vtoken.TypeEmailVerification, secret)
		assert.NoError(t, err)
	})

	t.Run("NothingToRevoke", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(t)

		assert.NoError(t, svc.Revoke(ctx, "42", vtoken.TypePasswordReset))
	})
}

func TestIsValid(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("ValidOnce", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(t)

		secret, err := svc.Issue(ctx, "7", vtoken.TypeEmailUnsubscription)
		require.NoError(t, err)

		ok, err := svc.IsValid(ctx, "7", vtoken.TypeEmailUnsubscription, secret)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = svc.IsValid(ctx, "7", vtoken.TypeEmailUnsubscription, secret)
		require.NoError(t, err)
		assert.False(t, ok, "second check must consume nothing and report false")
	})

	t.Run("MissingTokenIsFalseNotError", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(t)

		ok, err := svc.IsValid(ctx, "7", vtoken.TypeEmailResubscription, "nope")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestOneTimeOnlySupersedes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestService(t)

	first, err := svc.Issue(ctx, "42", vtoken.TypeTwoFactorChallenge, vtoken.OneTimeOnly())
	require.NoError(t, err)
	second, err := svc.Issue(ctx, "42", vtoken.TypeTwoFactorChallenge, vtoken.OneTimeOnly())
	require.NoError(t, err)

	_, err = svc.Verify(ctx, "42", vtoken.TypeTwoFactorChallenge, first)
	assert.ErrorIs(t, err, vtoken.ErrInvalidToken, "superseded token must be dead")

	_, err = svc.Verify(ctx, "42", vtoken.TypeTwoFactorChallenge, second)
	assert.NoError(t, err)
}

func TestConcurrentRedemption(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestService(t)

	secret, err := svc.Issue(ctx, "42", vtoken.TypePasswordReset)
	require.NoError(t, err)

	const goroutines = 32
	var wg sync.WaitGroup
	successes := make(chan struct{}, goroutines)

	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Verify(ctx, "42", vtoken.TypePasswordReset, secret); err == nil {
				successes <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(successes)

	count := 0
	for range successes {
		count++
	}
	assert.Equal(t, 1, count, "exactly one concurrent redeemer may succeed")
}
