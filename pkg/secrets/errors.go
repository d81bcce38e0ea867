package secrets

import "errors"

var (
	ErrInvalidKeyLength  = errors.New("encryption key must be 32 bytes")
	ErrEncryptionFailed  = errors.New("failed to encrypt value")
	ErrDecryptionFailed  = errors.New("failed to decrypt value")
	ErrInvalidCiphertext = errors.New("invalid ciphertext")
	ErrKeyNotSet         = errors.New("encryption key not set")
)
