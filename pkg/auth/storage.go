package auth

import "context"

// Storage is the persistence contract for accounts.
//
// Lookups return ErrAccountNotFound when no row matches. CreateAccount
// maps uniqueness violations to ErrDuplicateEmail, ErrDuplicateUsername,
// or ErrDuplicateEmailAndUsername. UpdateRecoveryCodes is a
// compare-and-swap: the write applies only when the stored blob still
// equals expected, otherwise ErrRecoveryCodesConflict is returned. This
// is the serialization point that keeps concurrent recovery-code
// redemptions from both succeeding.
type Storage interface {
	CreateAccount(ctx context.Context, account *Account) error
	GetAccountByID(ctx context.Context, id int64) (*Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*Account, error)
	GetAccountByUsername(ctx context.Context, username string) (*Account, error)
	GetAccountByProvider(ctx context.Context, provider, providerID string) (*Account, error)
	UpdateAccount(ctx context.Context, account *Account) error

	ExistsEmail(ctx context.Context, email string) (bool, error)
	ExistsUsername(ctx context.Context, username string) (bool, error)

	UpdatePasswordHash(ctx context.Context, id int64, hash []byte) error
	SetVerified(ctx context.Context, id int64, verified bool) error
	UpdateTwoFactor(ctx context.Context, id int64, enabled bool, method Method, encryptedSecret string) error
	UpdateRecoveryCodes(ctx context.Context, id int64, expected, updated string) error
}
