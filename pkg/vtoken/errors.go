package vtoken

import "errors"

var (
	// ErrInvalidToken covers every redemption failure: token not found,
	// wrong secret, or past expiry. A single kind by design so callers
	// cannot probe which sub-condition occurred.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenNotFound is the store-level miss translated by the service
	// into ErrInvalidToken.
	ErrTokenNotFound = errors.New("token not found")

	ErrSecretGenerationFailed = errors.New("failed to generate token secret")
	ErrStoreUnavailable       = errors.New("token store unavailable")
)
