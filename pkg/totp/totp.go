package totp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base32"
	"errors"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const (
	// Digits is the number of digits in a generated code (RFC 6238 standard).
	Digits = 6
	// Period is the code validity window in seconds (RFC 6238 standard).
	Period = 30
	// skew is the number of adjacent windows accepted on validation.
	skew = 1
)

var (
	secretRegex = regexp.MustCompile("^[A-Z2-7]+=*$")
	codeRegex   = regexp.MustCompile(fmt.Sprintf(`^\d{%d}$`, Digits))

	b32 = base32.StdEncoding.WithPadding(base32.NoPadding)
)

// SecretKey generates a new Base32-encoded 160-bit secret suitable for
// authenticator app enrollment.
func SecretKey() (string, error) {
	secret := make([]byte, 20) // RFC 4226 recommended secret length
	if _, err := rand.Read(secret); err != nil {
		return "", errors.Join(ErrSecretGenerationFailed, err)
	}
	return b32.EncodeToString(secret), nil
}

// KeyParams describes a TOTP enrollment for URI generation.
type KeyParams struct {
	Secret      string // Base32-encoded secret (required)
	AccountName string // User identifier like email (required)
	Issuer      string // Service name shown in authenticator apps (required)
}

// KeyURI builds an otpauth:// URI in the Key Uri Format understood by
// authenticator apps:
// https://github.com/google/google-authenticator/wiki/Key-Uri-Format
func KeyURI(params KeyParams) (string, error) {
	if !secretRegex.MatchString(params.Secret) {
		return "", ErrInvalidSecret
	}
	if params.AccountName == "" {
		return "", ErrMissingAccountName
	}
	if params.Issuer == "" {
		return "", ErrMissingIssuer
	}

	label := fmt.Sprintf("%s:%s",
		url.PathEscape(params.Issuer),
		url.PathEscape(params.AccountName),
	)

	query := url.Values{}
	query.Set("secret", params.Secret)
	query.Set("issuer", params.Issuer)
	query.Set("algorithm", "SHA1")
	query.Set("digits", fmt.Sprintf("%d", Digits))
	query.Set("period", fmt.Sprintf("%d", Period))

	return fmt.Sprintf("otpauth://totp/%s?%s", label, query.Encode()), nil
}

// Validate reports whether the code is valid for the secret in the
// previous, current, or next time window.
func Validate(secret, code string) (bool, error) {
	return ValidateAt(secret, code, time.Now())
}

// ValidateAt is Validate evaluated against an explicit time, used by tests.
func ValidateAt(secret, code string, t time.Time) (bool, error) {
	key, err := decodeSecret(secret)
	if err != nil {
		return false, err
	}

	code = strings.TrimSpace(code)
	if !codeRegex.MatchString(code) {
		return false, ErrInvalidCodeFormat
	}

	counter := t.Unix() / Period
	for i := -skew; i <= skew; i++ {
		if fmt.Sprintf("%0*d", Digits, hotp(key, counter+int64(i))) == code {
			return true, nil
		}
	}
	return false, nil
}

// Generate computes the code for the current time window.
func Generate(secret string) (string, error) {
	return GenerateAt(secret, time.Now())
}

// GenerateAt computes the code for the window containing t.
func GenerateAt(secret string, t time.Time) (string, error) {
	key, err := decodeSecret(secret)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", Digits, hotp(key, t.Unix()/Period)), nil
}

func decodeSecret(secret string) ([]byte, error) {
	secret = strings.TrimSpace(strings.ToUpper(secret))
	if !secretRegex.MatchString(secret) {
		return nil, ErrInvalidSecret
	}
	key, err := b32.DecodeString(secret)
	if err != nil {
		return nil, errors.Join(ErrInvalidSecret, err)
	}
	return key, nil
}

// hotp implements the RFC 4226 HMAC-based one-time password for a counter.
func hotp(key []byte, counter int64) int {
	// Counter as big-endian 8-byte array per RFC 4226.
	buf := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		buf[i] = byte(counter & 0xff)
		counter >>= 8
	}

	mac := hmac.New(sha1.New, key)
	mac.Write(buf)
	sum := mac.Sum(nil)

	// Dynamic truncation: low 4 bits of the last byte select the offset.
	offset := sum[len(sum)-1] & 0x0f
	code := (int(sum[offset]&0x7f) << 24) |
		(int(sum[offset+1]&0xff) << 16) |
		(int(sum[offset+2]&0xff) << 8) |
		int(sum[offset+3]&0xff)

	return code % int(math.Pow10(Digits))
}
