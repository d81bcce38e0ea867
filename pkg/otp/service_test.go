package otp_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authkit/pkg/otp"
)

func TestIssueAndVerify(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := otp.NewService(otp.NewMemoryStore())

	code, err := svc.Issue(ctx, "+15551234567")
	require.NoError(t, err)
	assert.Regexp(t, `^\d{6}$`, code)

	assert.NoError(t, svc.Verify(ctx, "+15551234567", code))

	// Consumed on success.
	assert.ErrorIs(t, svc.Verify(ctx, "+15551234567", code), otp.ErrInvalidCode)
}

func TestVerifyWrongCode(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := otp.NewService(otp.NewMemoryStore())

	code, err := svc.Issue(ctx, "+15551234567")
	require.NoError(t, err)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	assert.ErrorIs(t, svc.Verify(ctx, "+15551234567", wrong), otp.ErrInvalidCode)

	// The real code still works after a single miss.
	assert.NoError(t, svc.Verify(ctx, "+15551234567", code))
}

func TestAttemptBudget(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := otp.NewService(otp.NewMemoryStore(), otp.WithMaxAttempts(3))

	code, err := svc.Issue(ctx, "+15551234567")
	require.NoError(t, err)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	for range 3 {
		assert.ErrorIs(t, svc.Verify(ctx, "+15551234567", wrong), otp.ErrInvalidCode)
	}

	// Budget spent: even the right code is dead now.
	assert.ErrorIs(t, svc.Verify(ctx, "+15551234567", code), otp.ErrInvalidCode)
}

func TestReissueSupersedes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := otp.NewService(otp.NewMemoryStore())

	first, err := svc.Issue(ctx, "+15551234567")
	require.NoError(t, err)
	second, err := svc.Issue(ctx, "+15551234567")
	require.NoError(t, err)

	if first != second {
		assert.ErrorIs(t, svc.Verify(ctx, "+15551234567", first), otp.ErrInvalidCode)
	}
	assert.NoError(t, svc.Verify(ctx, "+15551234567", second))
}

func TestPhonesAreIndependent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := otp.NewService(otp.NewMemoryStore())

	codeA, err := svc.Issue(ctx, "+15551111111")
	require.NoError(t, err)
	codeB, err := svc.Issue(ctx, "+15552222222")
	require.NoError(t, err)

	assert.NoError(t, svc.Verify(ctx, "+15551111111", codeA))
	assert.NoError(t, svc.Verify(ctx, "+15552222222", codeB))
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	svc := otp.NewService(otp.NewRedisStore(client), otp.WithTTL(5*time.Minute))

	t.Run("RoundTrip", func(t *testing.T) {
		code, err := svc.Issue(ctx, "+15551234567")
		require.NoError(t, err)

		require.NoError(t, svc.Verify(ctx, "+15551234567", code))
		assert.ErrorIs(t, svc.Verify(ctx, "+15551234567", code), otp.ErrInvalidCode)
	})

	t.Run("Expiry", func(t *testing.T) {
		code, err := svc.Issue(ctx, "+15559876543")
		require.NoError(t, err)

		mr.FastForward(10 * time.Minute)

		assert.ErrorIs(t, svc.Verify(ctx, "+15559876543", code), otp.ErrInvalidCode)
	})

	t.Run("ConcurrentConsumeIsSingleUse", func(t *testing.T) {
		store := otp.NewRedisStore(client)

		for range 20 {
			require.NoError(t, store.Save(ctx, "+15550001111", "424242", 5*time.Minute, 3))

			const redeemers = 4
			results := make(chan bool, redeemers)
			var wg sync.WaitGroup
			for range redeemers {
				wg.Add(1)
				go func() {
					defer wg.Done()
					ok, err := store.Consume(ctx, "+15550001111", "424242")
					assert.NoError(t, err)
					results <- ok
				}()
			}
			wg.Wait()
			close(results)

			consumed := 0
			for ok := range results {
				if ok {
					consumed++
				}
			}
			assert.Equal(t, 1, consumed, "one redeemer wins, the rest miss")
		}
	})
}
