package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// UpsertResult is the outcome of a social login: the resolved account
// and whether this call created it.
type UpsertResult struct {
	Account         *Account
	IsRegisteredNow bool
}

// SocialAuthService merges external identities into local accounts.
// It owns conflict resolution between untrusted provider data and the
// local uniqueness invariants, and username generation for fresh
// registrations.
type SocialAuthService struct {
	storage Storage
	logger  *slog.Logger

	usernameMaxLength int
	usernameAttempts  int

	onRegistration RegistrationListener
}

// SocialOption configures a SocialAuthService.
type SocialOption func(*SocialAuthService)

// WithUsernameMaxLength caps generated usernames (default 30).
func WithUsernameMaxLength(n int) SocialOption {
	return func(s *SocialAuthService) {
		if n > 0 {
			s.usernameMaxLength = n
		}
	}
}

// WithUsernameAttempts sets the suffix retry budget for username
// generation (default 10).
func WithUsernameAttempts(n int) SocialOption {
	return func(s *SocialAuthService) {
		if n > 0 {
			s.usernameAttempts = n
		}
	}
}

// WithSocialRegistrationListener sets the fire-and-forget listener
// invoked after a first-time social registration.
func WithSocialRegistrationListener(fn RegistrationListener) SocialOption {
	return func(s *SocialAuthService) {
		s.onRegistration = fn
	}
}

// WithSocialLogger sets a custom logger for the service.
func WithSocialLogger(log *slog.Logger) SocialOption {
	return func(s *SocialAuthService) {
		if log != nil {
			s.logger = log
		}
	}
}

// NewSocialAuthService creates the social identity resolver.
func NewSocialAuthService(storage Storage, opts ...SocialOption) *SocialAuthService {
	s := &SocialAuthService{
		storage:           storage,
		logger:            slog.New(slog.NewTextHandler(io.Discard, nil)),
		usernameMaxLength: defaultUsernameMaxLength,
		usernameAttempts:  defaultUsernameAttempts,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UpsertAccount resolves an external identity to a local account,
// creating one on first login.
//
// Existing accounts get their display fields (name, avatar) refreshed;
// email and username are never altered, and the verified flag is raised
// only when the provider reports the account's own current email as
// verified. A changed, unconfirmed address never silently re-verifies.
//
// Fresh registrations require an email from the provider (or from the
// caller alongside proposedUsername). Email and username uniqueness are
// checked together before any row is created, so a double collision
// surfaces as the single combined ErrDuplicateEmailAndUsername.
func (s *SocialAuthService) UpsertAccount(ctx context.Context, provider string, identity ExternalIdentity, proposedUsername string) (*UpsertResult, error) {
	account, err := s.storage.GetAccountByProvider(ctx, provider, identity.ID)
	switch {
	case err == nil:
		if err := s.refreshAccount(ctx, account, identity); err != nil {
			return nil, err
		}
		return &UpsertResult{Account: account, IsRegisteredNow: false}, nil
	case !errors.Is(err, ErrAccountNotFound):
		return nil, fmt.Errorf("failed to look up account by provider: %w", err)
	}

	return s.registerAccount(ctx, provider, identity, proposedUsername)
}

// refreshAccount updates mutable display fields on a known account.
func (s *SocialAuthService) refreshAccount(ctx context.Context, account *Account, identity ExternalIdentity) error {
	account.Name = identity.Name
	account.AvatarURL = identity.AvatarURL

	if !account.Verified &&
		identity.Email != "" &&
		normalizeEmail(identity.Email) == account.Email &&
		identity.EmailVerified {
		account.Verified = true
	}

	return s.storage.UpdateAccount(ctx, account)
}

// registerAccount creates an account for a first-time social login.
func (s *SocialAuthService) registerAccount(ctx context.Context, provider string, identity ExternalIdentity, proposedUsername string) (*UpsertResult, error) {
	email := normalizeEmail(identity.Email)
	if email == "" {
		return nil, ErrEmailRequired
	}

	emailTaken, err := s.storage.ExistsEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email uniqueness: %w", err)
	}

	var (
		username      string
		usernameTaken bool
	)
	if proposedUsername != "" {
		username = proposedUsername
		usernameTaken, err = s.storage.ExistsUsername(ctx, username)
		if err != nil {
			return nil, fmt.Errorf("failed to check username uniqueness: %w", err)
		}
	}

	// Both conflicts surface together, before anything is created.
	switch {
	case emailTaken && usernameTaken:
		return nil, ErrDuplicateEmailAndUsername
	case emailTaken:
		return nil, ErrDuplicateEmail
	case usernameTaken:
		return nil, ErrDuplicateUsername
	}

	if username == "" {
		username, err = generateUsername(ctx, s.storage, email, s.usernameMaxLength, s.usernameAttempts)
		if err != nil {
			return nil, err
		}
	}

	account := &Account{
		Name:       identity.Name,
		Username:   username,
		Email:      email,
		Verified:   identity.EmailVerified,
		Provider:   provider,
		ProviderID: identity.ID,
		AvatarURL:  identity.AvatarURL,
	}
	if err := s.storage.CreateAccount(ctx, account); err != nil {
		return nil, err
	}

	emitRegistration(s.logger, s.onRegistration, RegistrationEvent{
		Method:  RegistrationSocial,
		Account: account,
	})

	return &UpsertResult{Account: account, IsRegisteredNow: true}, nil
}
