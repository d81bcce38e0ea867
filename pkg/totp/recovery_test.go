package totp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authkit/pkg/totp"
)

func TestGenerateRecoveryCodes(t *testing.T) {
	t.Parallel()

	t.Run("DefaultShape", func(t *testing.T) {
		t.Parallel()
		codes, err := totp.GenerateRecoveryCodes(totp.DefaultRecoveryCodeCount)
		require.NoError(t, err)
		require.Len(t, codes, 10)

		seen := make(map[string]struct{}, len(codes))
		for _, code := range codes {
			assert.Regexp(t, "^[0-9A-F]{16}$", code)
			seen[code] = struct{}{}
		}
		assert.Len(t, seen, len(codes), "codes must be unique")
	})

	t.Run("InvalidCount", func(t *testing.T) {
		t.Parallel()
		_, err := totp.GenerateRecoveryCodes(0)
		assert.ErrorIs(t, err, totp.ErrInvalidRecoveryCodeCount)
	})
}

func TestCodesRoundTrip(t *testing.T) {
	t.Parallel()

	codes, err := totp.GenerateRecoveryCodes(5)
	require.NoError(t, err)

	encoded, err := totp.EncodeCodes(codes)
	require.NoError(t, err)

	decoded, err := totp.DecodeCodes(encoded)
	require.NoError(t, err)
	assert.Equal(t, codes, decoded)
}

func TestDecodeCodesCorrupted(t *testing.T) {
	t.Parallel()

	_, err := totp.DecodeCodes("{not json")
	assert.ErrorIs(t, err, totp.ErrRecoveryCodesCorrupted)
}

func TestConsumeCode(t *testing.T) {
	t.Parallel()

	t.Run("RemovesExactlyOne", func(t *testing.T) {
		t.Parallel()
		codes := []string{"AAAA", "BBBB", "CCCC"}

		remaining, ok := totp.ConsumeCode(codes, "BBBB")
		require.True(t, ok)
		assert.Equal(t, []string{"AAAA", "CCCC"}, remaining)

		// The consumed code is gone for good.
		_, ok = totp.ConsumeCode(remaining, "BBBB")
		assert.False(t, ok)
	})

	t.Run("CaseSensitive", func(t *testing.T) {
		t.Parallel()
		codes := []string{"ABCD1234"}
		_, ok := totp.ConsumeCode(codes, "abcd1234")
		assert.False(t, ok)
	})

	t.Run("NoMatchLeavesSetUnchanged", func(t *testing.T) {
		t.Parallel()
		codes := []string{"AAAA", "BBBB"}
		remaining, ok := totp.ConsumeCode(codes, "ZZZZ")
		assert.False(t, ok)
		assert.Equal(t, codes, remaining)
	})

	t.Run("FullDrain", func(t *testing.T) {
		t.Parallel()
		codes, err := totp.GenerateRecoveryCodes(10)
		require.NoError(t, err)

		set := codes
		for i, code := range codes {
			var ok bool
			set, ok = totp.ConsumeCode(set, code)
			require.True(t, ok)
			assert.Len(t, set, len(codes)-i-1)
		}
		assert.Empty(t, set)
	})
}
