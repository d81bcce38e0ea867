package auth_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/authkit/pkg/auth"
	"github.com/dmitrymomot/authkit/pkg/mail"
	"github.com/dmitrymomot/authkit/pkg/otp"
	"github.com/dmitrymomot/authkit/pkg/password"
	"github.com/dmitrymomot/authkit/pkg/secrets"
	"github.com/dmitrymomot/authkit/pkg/session"
	"github.com/dmitrymomot/authkit/pkg/sms"
	"github.com/dmitrymomot/authkit/pkg/throttle"
	"github.com/dmitrymomot/authkit/pkg/vtoken"
)

// mailRecorder collects outbound messages instead of delivering them.
type mailRecorder struct {
	mu       sync.Mutex
	messages []mail.Message
}

func (r *mailRecorder) Send(ctx context.Context, msg mail.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
	return nil
}

func (r *mailRecorder) byTag(tag string) []mail.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []mail.Message
	for _, m := range r.messages {
		if m.Tag == tag {
			out = append(out, m)
		}
	}
	return out
}

// testEnv bundles the wired services every auth test needs.
type testEnv struct {
	storage   *auth.MemoryStorage
	tokens    *vtoken.Service
	sessions  *session.Manager
	encryptor secrets.Encryptor
	hasher    password.BcryptHasher
	mailer    *mailRecorder
	sms       *sms.Recorder
	otp       *otp.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	tokenStore := vtoken.NewMemoryStore()
	t.Cleanup(tokenStore.Close)

	sessions, err := session.NewManager(session.Config{
		SigningKey: "test-signing-key",
		TTL:        time.Hour,
	})
	require.NoError(t, err)

	key, err := secrets.GenerateKey()
	require.NoError(t, err)
	encryptor, err := secrets.NewEncryptor(key)
	require.NoError(t, err)

	return &testEnv{
		storage:   auth.NewMemoryStorage(),
		tokens:    vtoken.NewService(tokenStore),
		sessions:  sessions,
		encryptor: encryptor,
		hasher:    password.NewBcryptHasher(bcrypt.MinCost),
		mailer:    &mailRecorder{},
		sms:       sms.NewRecorder(),
		otp:       otp.NewService(otp.NewMemoryStore()),
	}
}

func (e *testEnv) newThrottle(t *testing.T, maxAttempts int) *throttle.Throttle {
	t.Helper()
	store := throttle.NewMemoryStore()
	t.Cleanup(store.Close)
	th, err := throttle.New(store, throttle.Config{
		Enabled:       true,
		MaxAttempts:   maxAttempts,
		Window:        time.Minute,
		BlockDuration: time.Minute,
		KeyTemplate:   "login__{identifier}_{origin}",
	})
	require.NoError(t, err)
	return th
}

func (e *testEnv) newTwoFactor(t *testing.T, opts ...auth.TwoFactorOption) *auth.TwoFactorService {
	t.Helper()
	base := []auth.TwoFactorOption{
		auth.WithOTPService(e.otp),
		auth.WithSMSSender(e.sms),
		auth.WithChallengeTokenService(e.tokens),
	}
	return auth.NewTwoFactorService(e.storage, e.encryptor, e.sessions, append(base, opts...)...)
}

func (e *testEnv) newBasic(t *testing.T, opts ...auth.BasicOption) *auth.BasicAuthService {
	t.Helper()
	base := []auth.BasicOption{
		auth.WithHasher(e.hasher),
		auth.WithMailer(e.mailer, "https://app.example.com"),
	}
	return auth.NewBasicAuthService(e.storage, e.tokens, e.sessions, append(base, opts...)...)
}

// seedAccount creates a verified password account directly in storage.
func (e *testEnv) seedAccount(t *testing.T, email, username, passwd string) *auth.Account {
	t.Helper()
	hash, err := e.hasher.Hash(passwd)
	require.NoError(t, err)
	account := &auth.Account{
		Name:         "Test User",
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Verified:     true,
	}
	require.NoError(t, e.storage.CreateAccount(context.Background(), account))
	return account
}
