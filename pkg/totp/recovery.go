package totp

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

// DefaultRecoveryCodeCount is the number of codes generated when two-factor
// authentication is enabled.
const DefaultRecoveryCodeCount = 10

// GenerateRecoveryCodes creates count single-use backup codes. Each code is
// a 16-character hexadecimal string carrying 64 bits of entropy.
func GenerateRecoveryCodes(count int) ([]string, error) {
	if count < 1 {
		return nil, ErrInvalidRecoveryCodeCount
	}

	codes := make([]string, count)
	for i := range count {
		raw := make([]byte, 8)
		if _, err := rand.Read(raw); err != nil {
			return nil, errors.Join(ErrSecretGenerationFailed, err)
		}
		codes[i] = fmt.Sprintf("%X", raw)
	}
	return codes, nil
}

// EncodeCodes serializes a recovery code set for storage. The result is
// expected to be encrypted at rest by the caller.
func EncodeCodes(codes []string) (string, error) {
	data, err := json.Marshal(codes)
	if err != nil {
		return "", errors.Join(ErrRecoveryCodesCorrupted, err)
	}
	return string(data), nil
}

// DecodeCodes deserializes a recovery code set produced by EncodeCodes.
func DecodeCodes(encoded string) ([]string, error) {
	var codes []string
	if err := json.Unmarshal([]byte(encoded), &codes); err != nil {
		return nil, errors.Join(ErrRecoveryCodesCorrupted, err)
	}
	return codes, nil
}

// ConsumeCode removes exactly one code matching the candidate
// (case-sensitive) and returns the reduced set. The second result reports
// whether a match was found; when false the set is returned unchanged.
func ConsumeCode(codes []string, code string) ([]string, bool) {
	i := slices.Index(codes, code)
	if i < 0 {
		return codes, false
	}
	remaining := make([]string, 0, len(codes)-1)
	remaining = append(remaining, codes[:i]...)
	remaining = append(remaining, codes[i+1:]...)
	return remaining, true
}
