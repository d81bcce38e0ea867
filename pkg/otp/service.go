package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"
)

const (
	defaultDigits      = 6
	defaultTTL         = 5 * time.Minute
	defaultMaxAttempts = 5
)

// Store keeps one live code per phone number. Consume compares the
// candidate against the stored code: a match removes the code, a miss
// burns one attempt, and spending the attempt budget removes the code
// early.
type Store interface {
	// Save stores the code for the phone number, replacing any prior one.
	Save(ctx context.Context, phone, code string, ttl time.Duration, maxAttempts int) error

	// Consume checks the candidate against the stored code.
	Consume(ctx context.Context, phone, candidate string) (bool, error)
}

// Service issues and verifies phone-delivered one-time passwords.
type Service struct {
	store       Store
	digits      int
	ttl         time.Duration
	maxAttempts int
}

// Option configures a Service.
type Option func(*Service)

// WithDigits sets the code length (default 6).
func WithDigits(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.digits = n
		}
	}
}

// WithTTL sets the code lifetime (default 5 minutes).
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithMaxAttempts sets the verification attempt budget (default 5).
func WithMaxAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// NewService creates an OTP service backed by the given store.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:       store,
		digits:      defaultDigits,
		ttl:         defaultTTL,
		maxAttempts: defaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue generates a fresh numeric code for the phone number and stores it
// for the configured TTL. The code is returned for dispatch; any prior
// code for the number is superseded.
func (s *Service) Issue(ctx context.Context, phone string) (string, error) {
	code, err := s.generateCode()
	if err != nil {
		return "", err
	}
	if err := s.store.Save(ctx, phone, code, s.ttl, s.maxAttempts); err != nil {
		return "", errors.Join(ErrStoreUnavailable, err)
	}
	return code, nil
}

// Verify checks the candidate against the live code for the phone number,
// consuming it on success. Returns ErrInvalidCode on any failure.
func (s *Service) Verify(ctx context.Context, phone, candidate string) error {
	ok, err := s.store.Consume(ctx, phone, candidate)
	if err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	if !ok {
		return ErrInvalidCode
	}
	return nil
}

func (s *Service) generateCode() (string, error) {
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(s.digits)), nil)
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", errors.Join(ErrGenerationFailed, err)
	}
	return fmt.Sprintf("%0*d", s.digits, n), nil
}
