package vtoken

import (
	"context"
	"time"
)

// Type discriminates the purpose a token was issued for. The set below
// covers the built-in flows; callers may define their own types.
type Type string

const (
	TypeEmailVerification              Type = "email_verification"
	TypePasswordReset                  Type = "password_reset"
	TypeTwoFactorChallenge             Type = "two_factor_challenge"
	TypeTwoFactorChallengeVerification Type = "two_factor_challenge_verification"
	TypeEmailUnsubscription            Type = "email_unsubscription"
	TypeEmailResubscription            Type = "email_resubscription"
)

// Token is a persisted single-use secret. ExpiresAt == nil means the token
// never expires on its own and stays valid until redeemed.
type Token struct {
	Key       string
	Type      Type
	Secret    string
	Data      []byte
	ExpiresAt *time.Time
}

// Expired reports whether the token's expiry has passed at time now.
func (t Token) Expired(now time.Time) bool {
	return t.ExpiresAt != nil && now.After(*t.ExpiresAt)
}

// Store persists tokens. FindAndDelete must be atomic: under concurrent
// redemption of the same token exactly one caller receives it, the rest
// get ErrTokenNotFound.
type Store interface {
	// Insert persists a new token.
	Insert(ctx context.Context, token Token) error

	// FindAndDelete removes and returns the token matching all three
	// fields, or ErrTokenNotFound.
	FindAndDelete(ctx context.Context, key string, typ Type, secret string) (*Token, error)

	// DeleteByKeyType removes any live tokens for the (key, type) pair.
	// Used to supersede prior tokens on one-time-only issuance.
	DeleteByKeyType(ctx context.Context, key string, typ Type) error
}
