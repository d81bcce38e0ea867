package totp

import "errors"

var (
	ErrInvalidSecret            = errors.New("invalid TOTP secret")
	ErrInvalidCodeFormat        = errors.New("invalid OTP format")
	ErrMissingAccountName       = errors.New("missing account name")
	ErrMissingIssuer            = errors.New("missing issuer")
	ErrSecretGenerationFailed   = errors.New("failed to generate TOTP secret")
	ErrCodeGenerationFailed     = errors.New("failed to generate TOTP code")
	ErrInvalidRecoveryCodeCount = errors.New("recovery code count must be greater than 0")
	ErrRecoveryCodesCorrupted   = errors.New("recovery code set is corrupted")
)
