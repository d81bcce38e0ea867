package session

import "errors"

var (
	// ErrMissingSigningKey is returned when the manager is created without
	// a signing key.
	ErrMissingSigningKey = errors.New("session signing key is required")

	// ErrInvalidSession covers malformed, tampered, and expired credentials.
	ErrInvalidSession = errors.New("invalid session credential")
)
