package session

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Config holds session credential settings.
type Config struct {
	SigningKey string        `env:"SESSION_SIGNING_KEY,required"`
	TTL        time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	Issuer     string        `env:"SESSION_ISSUER" envDefault:"authkit"`
}

// Manager signs and validates access credentials with HMAC-SHA256.
type Manager struct {
	signingKey []byte
	ttl        time.Duration
	issuer     string
}

type claims struct {
	jwt.RegisteredClaims
}

// NewManager creates a credential manager from the config.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.SigningKey == "" {
		return nil, ErrMissingSigningKey
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{
		signingKey: []byte(cfg.SigningKey),
		ttl:        ttl,
		issuer:     cfg.Issuer,
	}, nil
}

// Issue creates a signed credential for the account. Each credential
// carries a unique token ID so two credentials for the same account are
// never byte-identical.
func (m *Manager) Issue(accountID int64) (string, error) {
	now := time.Now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(accountID, 10),
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return token.SignedString(m.signingKey)
}

// Parse validates a credential and returns the account ID it was issued
// for. Any validation failure maps to ErrInvalidSession with the
// underlying cause joined in.
func (m *Manager) Parse(tokenString string) (int64, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	var c claims
	token, err := parser.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (any, error) {
		return m.signingKey, nil
	})
	if err != nil {
		return 0, errors.Join(ErrInvalidSession, err)
	}
	if !token.Valid {
		return 0, ErrInvalidSession
	}
	accountID, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, errors.Join(ErrInvalidSession, err)
	}
	return accountID, nil
}
