package qrcode_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authkit/pkg/qrcode"
)

func TestGenerate(t *testing.T) {
	t.Parallel()

	t.Run("PNG", func(t *testing.T) {
		t.Parallel()
		png, err := qrcode.Generate("otpauth://totp/App:user@example.com?secret=ABC", 256)
		require.NoError(t, err)
		// PNG magic bytes.
		require.True(t, len(png) > 8)
		assert.Equal(t, "\x89PNG", string(png[:4]))
	})

	t.Run("DefaultSize", func(t *testing.T) {
		t.Parallel()
		png, err := qrcode.Generate("hello", 0)
		require.NoError(t, err)
		assert.NotEmpty(t, png)
	})

	t.Run("EmptyContent", func(t *testing.T) {
		t.Parallel()
		_, err := qrcode.Generate("   ", 256)
		assert.ErrorIs(t, err, qrcode.ErrEmptyContent)
	})
}

func TestDataURI(t *testing.T) {
	t.Parallel()
	uri, err := qrcode.DataURI("otpauth://totp/App:user@example.com?secret=ABC", 128)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))
}
