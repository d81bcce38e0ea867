package auth

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	defaultUsernameMaxLength = 30
	defaultUsernameAttempts  = 10
)

// asciiFold decomposes accented characters and strips the combining
// marks, so "josé" becomes "jose".
var asciiFold = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// usernameBase derives a candidate username from the local part of an
// email address: the plus-addressing tag is dropped, accents are
// folded, and everything but lowercase letters and digits is removed.
func usernameBase(email string, maxLen int) string {
	local := email
	if i := strings.IndexByte(local, '@'); i >= 0 {
		local = local[:i]
	}
	if i := strings.IndexByte(local, '+'); i >= 0 {
		local = local[:i]
	}

	if folded, _, err := transform.String(asciiFold, local); err == nil {
		local = folded
	}

	var sb strings.Builder
	for _, r := range strings.ToLower(local) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
		}
	}
	base := sb.String()
	if len(base) > maxLen {
		base = base[:maxLen]
	}
	return base
}

// generateUsername finds a free username derived from the email: the
// bare base first, then base1, base2, ... up to the attempt budget. The
// numeric suffix survives truncation to the maximum length. Returns
// ErrUsernameRequired when no base can be derived or the budget is
// exhausted.
func generateUsername(ctx context.Context, storage Storage, email string, maxLen, attempts int) (string, error) {
	base := usernameBase(email, maxLen)
	if base == "" {
		return "", ErrUsernameRequired
	}

	for i := range attempts {
		candidate := base
		if i > 0 {
			suffix := strconv.Itoa(i)
			if len(base)+len(suffix) > maxLen {
				candidate = base[:maxLen-len(suffix)]
			}
			candidate += suffix
		}

		taken, err := storage.ExistsUsername(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check username availability: %w", err)
		}
		if !taken {
			return candidate, nil
		}
	}

	return "", ErrUsernameRequired
}
