// Package vtoken issues and redeems single-use verification tokens: the
// short-lived secrets behind email verification links, password resets,
// and two-factor login challenges.
//
// A live token is uniquely identified by the tuple (key, type, secret).
// The key is usually the subject identifier (e.g. an account ID), the type
// discriminates the purpose, and the secret is a 32-byte random value
// returned to the caller exactly once at issue time.
//
// Redemption consumes the token no matter the outcome: both Verify and
// IsValid atomically remove the row before the expiry check runs, so a
// token can be redeemed at most once and a failed attempt never leaves it
// retryable. Callers must treat every verification as destructive.
//
// Stores implement the atomic find-and-delete contract: MemoryStore for
// tests and single-process deployments, RedisStore and PostgresStore for
// shared deployments.
//
// # Usage
//
//	svc := vtoken.NewService(vtoken.NewMemoryStore())
//
//	secret, err := svc.Issue(ctx, accountID, vtoken.TypePasswordReset,
//	    vtoken.WithTTL(time.Hour))
//
//	data, err := svc.Verify(ctx, accountID, vtoken.TypePasswordReset, secret)
//	if errors.Is(err, vtoken.ErrInvalidToken) {
//	    // missing, wrong secret, or expired - intentionally indistinguishable
//	}
package vtoken
