package mail_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authkit/pkg/mail"
)

func TestMessageValidate(t *testing.T) {
	t.Parallel()

	valid := mail.Message{
		To:       "user@example.com",
		Subject:  "Hello",
		BodyHTML: "<p>Hi</p>",
	}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(m *mail.Message)
	}{
		{"MissingRecipient", func(m *mail.Message) { m.To = "" }},
		{"BadRecipient", func(m *mail.Message) { m.To = "not-an-email" }},
		{"MissingSubject", func(m *mail.Message) { m.Subject = "" }},
		{"MissingBody", func(m *mail.Message) { m.BodyHTML = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			msg := valid
			tt.mutate(&msg)
			assert.ErrorIs(t, msg.Validate(), mail.ErrInvalidMessage)
		})
	}
}

func TestNewPostmarkSenderConfigValidation(t *testing.T) {
	t.Parallel()

	valid := mail.Config{
		PostmarkServerToken:  "server-token",
		PostmarkAccountToken: "account-token",
		SenderEmail:          "noreply@example.com",
		SupportEmail:         "support@example.com",
	}

	sender, err := mail.NewPostmarkSender(valid)
	require.NoError(t, err)
	assert.NotNil(t, sender)

	tests := []struct {
		name   string
		mutate func(c *mail.Config)
	}{
		{"MissingServerToken", func(c *mail.Config) { c.PostmarkServerToken = "" }},
		{"MissingAccountToken", func(c *mail.Config) { c.PostmarkAccountToken = "" }},
		{"MissingSender", func(c *mail.Config) { c.SenderEmail = "" }},
		{"BadSender", func(c *mail.Config) { c.SenderEmail = "nope" }},
		{"MissingSupport", func(c *mail.Config) { c.SupportEmail = "" }},
		{"BadSupport", func(c *mail.Config) { c.SupportEmail = "nope" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := valid
			tt.mutate(&cfg)
			_, err := mail.NewPostmarkSender(cfg)
			assert.ErrorIs(t, err, mail.ErrInvalidConfig)
		})
	}
}

func TestDevSenderWritesFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	sender := mail.NewDevSender(dir)

	msg, err := mail.VerificationEmail("user@example.com", "https://app.example.com/verify?secret=abc")
	require.NoError(t, err)

	require.NoError(t, sender.Send(context.Background(), msg))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	var sawHTML bool
	for _, e := range entries {
		if filepath.Ext(e.Name()) != ".html" {
			continue
		}
		sawHTML = true
		content, err := os.ReadFile(filepath.Join(dir, e.Name()))
		require.NoError(t, err)
		assert.Contains(t, string(content), "https://app.example.com/verify?secret=abc")
	}
	assert.True(t, sawHTML)
}

func TestTemplates(t *testing.T) {
	t.Parallel()

	t.Run("Verification", func(t *testing.T) {
		t.Parallel()
		msg, err := mail.VerificationEmail("user@example.com", "https://example.com/v?s=1")
		require.NoError(t, err)
		assert.Equal(t, mail.TagEmailVerification, msg.Tag)
		assert.Contains(t, msg.BodyHTML, "https://example.com/v?s=1")
		assert.NoError(t, msg.Validate())
	})

	t.Run("PasswordReset", func(t *testing.T) {
		t.Parallel()
		msg, err := mail.PasswordResetEmail("user@example.com", "https://example.com/r?s=1")
		require.NoError(t, err)
		assert.Equal(t, mail.TagPasswordReset, msg.Tag)
		assert.Contains(t, msg.BodyHTML, "https://example.com/r?s=1")
	})

	t.Run("PasswordChanged", func(t *testing.T) {
		t.Parallel()
		msg, err := mail.PasswordChangedEmail("user@example.com")
		require.NoError(t, err)
		assert.Equal(t, mail.TagPasswordChanged, msg.Tag)
		assert.False(t, strings.Contains(msg.BodyHTML, "href"))
	})
}
