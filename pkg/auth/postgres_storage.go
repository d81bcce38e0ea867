package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/authkit/pkg/pg"
)

// PostgresStorage is the pgx-backed Storage implementation over the
// accounts table.
type PostgresStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresStorage creates a Storage backed by the connection pool.
func NewPostgresStorage(pool *pgxpool.Pool) *PostgresStorage {
	return &PostgresStorage{pool: pool}
}

const accountColumns = `id, name, coalesce(username, ''), coalesce(email, ''), coalesce(phone_number, ''),
	coalesce(password_hash, ''), verified, two_factor_enabled, coalesce(two_factor_method, ''),
	coalesce(two_factor_secret, ''), coalesce(recovery_codes, ''), coalesce(provider, ''),
	coalesce(provider_id, ''), coalesce(avatar_url, ''), created_at, updated_at`

func (s *PostgresStorage) CreateAccount(ctx context.Context, account *Account) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO accounts (name, username, email, phone_number, password_hash, verified,
			two_factor_enabled, two_factor_method, two_factor_secret, recovery_codes,
			provider, provider_id, avatar_url, created_at, updated_at)
		VALUES ($1, nullif($2, ''), nullif($3, ''), $4, $5, $6, $7, nullif($8, ''), nullif($9, ''),
			nullif($10, ''), nullif($11, ''), nullif($12, ''), $13, now(), now())
		RETURNING id, created_at, updated_at`,
		account.Name, account.Username, account.Email, account.PhoneNumber,
		account.PasswordHash, account.Verified, account.TwoFactorEnabled,
		string(account.TwoFactorMethod), account.TwoFactorSecret, account.RecoveryCodes,
		account.Provider, account.ProviderID, account.AvatarURL,
	).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			switch {
			case strings.Contains(pg.ConstraintName(err), "email"):
				return ErrDuplicateEmail
			case strings.Contains(pg.ConstraintName(err), "username"):
				return ErrDuplicateUsername
			}
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (s *PostgresStorage) GetAccountByID(ctx context.Context, id int64) (*Account, error) {
	return s.getAccount(ctx, `WHERE id = $1`, id)
}

func (s *PostgresStorage) GetAccountByEmail(ctx context.Context, email string) (*Account, error) {
	if email == "" {
		return nil, ErrAccountNotFound
	}
	return s.getAccount(ctx, `WHERE email = $1`, email)
}

func (s *PostgresStorage) GetAccountByUsername(ctx context.Context, username string) (*Account, error) {
	if username == "" {
		return nil, ErrAccountNotFound
	}
	return s.getAccount(ctx, `WHERE username = $1`, username)
}

func (s *PostgresStorage) GetAccountByProvider(ctx context.Context, provider, providerID string) (*Account, error) {
	if provider == "" || providerID == "" {
		return nil, ErrAccountNotFound
	}
	return s.getAccount(ctx, `WHERE provider = $1 AND provider_id = $2`, provider, providerID)
}

func (s *PostgresStorage) getAccount(ctx context.Context, where string, args ...any) (*Account, error) {
	var (
		a      Account
		method string
	)
	err := s.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts `+where, args...).Scan(
		&a.ID, &a.Name, &a.Username, &a.Email, &a.PhoneNumber,
		&a.PasswordHash, &a.Verified, &a.TwoFactorEnabled, &method,
		&a.TwoFactorSecret, &a.RecoveryCodes, &a.Provider,
		&a.ProviderID, &a.AvatarURL, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to query account: %w", err)
	}
	a.TwoFactorMethod = Method(method)
	return &a, nil
}

func (s *PostgresStorage) UpdateAccount(ctx context.Context, account *Account) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE accounts SET name = $2, username = nullif($3, ''), email = nullif($4, ''),
			phone_number = $5, password_hash = $6, verified = $7, two_factor_enabled = $8,
			two_factor_method = nullif($9, ''), two_factor_secret = nullif($10, ''),
			recovery_codes = nullif($11, ''), provider = nullif($12, ''),
			provider_id = nullif($13, ''), avatar_url = nullif($14, ''), updated_at = now()
		WHERE id = $1`,
		account.ID, account.Name, account.Username, account.Email, account.PhoneNumber,
		account.PasswordHash, account.Verified, account.TwoFactorEnabled,
		string(account.TwoFactorMethod), account.TwoFactorSecret, account.RecoveryCodes,
		account.Provider, account.ProviderID, account.AvatarURL,
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			switch {
			case strings.Contains(pg.ConstraintName(err), "email"):
				return ErrDuplicateEmail
			case strings.Contains(pg.ConstraintName(err), "username"):
				return ErrDuplicateUsername
			}
		}
		return fmt.Errorf("failed to update account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (s *PostgresStorage) ExistsEmail(ctx context.Context, email string) (bool, error) {
	if email == "" {
		return false, nil
	}
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM accounts WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}
	return exists, nil
}

func (s *PostgresStorage) ExistsUsername(ctx context.Context, username string) (bool, error) {
	if username == "" {
		return false, nil
	}
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM accounts WHERE username = $1)`, username).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check username existence: %w", err)
	}
	return exists, nil
}

func (s *PostgresStorage) UpdatePasswordHash(ctx context.Context, id int64, hash []byte) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE accounts SET password_hash = $2, updated_at = now() WHERE id = $1`, id, hash)
	if err != nil {
		return fmt.Errorf("failed to update password hash: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (s *PostgresStorage) SetVerified(ctx context.Context, id int64, verified bool) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE accounts SET verified = $2, updated_at = now() WHERE id = $1`, id, verified)
	if err != nil {
		return fmt.Errorf("failed to update verified flag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (s *PostgresStorage) UpdateTwoFactor(ctx context.Context, id int64, enabled bool, method Method, encryptedSecret string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE accounts SET two_factor_enabled = $2, two_factor_method = nullif($3, ''),
			two_factor_secret = nullif($4, ''), updated_at = now()
		WHERE id = $1`,
		id, enabled, string(method), encryptedSecret)
	if err != nil {
		return fmt.Errorf("failed to update two-factor settings: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// UpdateRecoveryCodes writes the reduced set only if the stored blob
// still equals expected. The conditional update is the per-account
// serialization point for recovery-code consumption.
func (s *PostgresStorage) UpdateRecoveryCodes(ctx context.Context, id int64, expected, updated string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE accounts SET recovery_codes = nullif($3, ''), updated_at = now()
		WHERE id = $1 AND coalesce(recovery_codes, '') = $2`,
		id, expected, updated)
	if err != nil {
		return fmt.Errorf("failed to update recovery codes: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := s.GetAccountByID(ctx, id); err != nil {
			return err
		}
		return ErrRecoveryCodesConflict
	}
	return nil
}

var _ Storage = (*PostgresStorage)(nil)
