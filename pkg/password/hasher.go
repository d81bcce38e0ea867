package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrMismatch indicates the password does not match the stored hash.
	ErrMismatch = errors.New("password mismatch")
	// ErrHashingFailed indicates the hash could not be computed.
	ErrHashingFailed = errors.New("failed to hash password")
)

// Hasher hashes passwords for storage and verifies candidates against
// previously stored hashes.
type Hasher interface {
	Hash(password string) ([]byte, error)
	Verify(hash []byte, password string) error
}

// BcryptHasher implements Hasher using bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a bcrypt-backed Hasher. A cost outside the
// valid bcrypt range falls back to bcrypt.DefaultCost.
func NewBcryptHasher(cost int) BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return BcryptHasher{cost: cost}
}

// Hash computes the bcrypt hash of the password.
func (h BcryptHasher) Hash(password string) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHashingFailed, err)
	}
	return hash, nil
}

// Verify compares the stored hash with the candidate password.
// Returns ErrMismatch for any comparison failure.
func (h BcryptHasher) Verify(hash []byte, password string) error {
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return ErrMismatch
	}
	return nil
}
