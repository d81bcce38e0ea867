package otp

import "errors"

var (
	// ErrInvalidCode covers a missing, expired, or mismatched code.
	ErrInvalidCode = errors.New("invalid one-time password")

	ErrGenerationFailed = errors.New("failed to generate one-time password")
	ErrStoreUnavailable = errors.New("otp store unavailable")
)
