package vtoken

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

const defaultSecretBytes = 32

// Service issues and redeems single-use tokens on top of a Store.
type Service struct {
	store       Store
	secretBytes int
	now         func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithSecretLength overrides the secret length in bytes. Values below the
// default are ignored to keep the entropy floor.
func WithSecretLength(n int) Option {
	return func(s *Service) {
		if n > defaultSecretBytes {
			s.secretBytes = n
		}
	}
}

// WithClock overrides the time source, used by tests to simulate expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates a token service backed by the given store.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:       store,
		secretBytes: defaultSecretBytes,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IssueOption configures a single issuance.
type IssueOption func(*issueParams)

type issueParams struct {
	ttl         time.Duration
	data        []byte
	oneTimeOnly bool
}

// WithTTL sets the token expiry relative to issue time. Zero or negative
// TTL leaves the token without an expiry.
func WithTTL(ttl time.Duration) IssueOption {
	return func(p *issueParams) { p.ttl = ttl }
}

// WithData attaches an opaque payload returned on successful verification.
func WithData(data []byte) IssueOption {
	return func(p *issueParams) { p.data = data }
}

// OneTimeOnly enforces at most one live token per (key, type) pair.
// A prior unexpired token is superseded: it is deleted before the new one
// is inserted, so stale links stop working the moment a fresh one is sent.
func OneTimeOnly() IssueOption {
	return func(p *issueParams) { p.oneTimeOnly = true }
}

// Issue generates a cryptographically random secret, persists the token,
// and returns the secret for embedding in an outbound link or challenge.
func (s *Service) Issue(ctx context.Context, key string, typ Type, opts ...IssueOption) (string, error) {
	var params issueParams
	for _, opt := range opts {
		opt(&params)
	}

	secret, err := s.generateSecret()
	if err != nil {
		return "", err
	}

	token := Token{
		Key:    key,
		Type:   typ,
		Secret: secret,
		Data:   params.data,
	}
	if params.ttl > 0 {
		expiresAt := s.now().Add(params.ttl)
		token.ExpiresAt = &expiresAt
	}

	if params.oneTimeOnly {
		if err := s.store.DeleteByKeyType(ctx, key, typ); err != nil {
			return "", fmt.Errorf("failed to supersede prior token: %w", err)
		}
	}

	if err := s.store.Insert(ctx, token); err != nil {
		return "", fmt.Errorf("failed to store token: %w", err)
	}
	return secret, nil
}

// Verify redeems the token matching (key, type, secret). The token is
// deleted unconditionally before the expiry check, so success and failure
// both consume it. Returns the stored payload on success and
// ErrInvalidToken on any failure.
func (s *Service) Verify(ctx context.Context, key string, typ Type, secret string) ([]byte, error) {
	token, err := s.consume(ctx, key, typ, secret)
	if err != nil {
		return nil, err
	}
	if token.Expired(s.now()) {
		return nil, ErrInvalidToken
	}
	return token.Data, nil
}

// IsValid has the same consume semantics as Verify but reports the outcome
// as a boolean instead of an error.
func (s *Service) IsValid(ctx context.Context, key string, typ Type, secret string) (bool, error) {
	token, err := s.consume(ctx, key, typ, secret)
	if err != nil {
		if errors.Is(err, ErrInvalidToken) {
			return false, nil
		}
		return false, err
	}
	return !token.Expired(s.now()), nil
}

// Revoke deletes every live token for (key, type) without redeeming any
// of them. Revoking a pair that does not exist is not an error.
func (s *Service) Revoke(ctx context.Context, key string, typ Type) error {
	if err := s.store.DeleteByKeyType(ctx, key, typ); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

func (s *Service) consume(ctx context.Context, key string, typ Type, secret string) (*Token, error) {
	token, err := s.store.FindAndDelete(ctx, key, typ, secret)
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	return token, nil
}

func (s *Service) generateSecret() (string, error) {
	raw := make([]byte, s.secretBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", errors.Join(ErrSecretGenerationFailed, err)
	}
	return hex.EncodeToString(raw), nil
}
