package vtoken

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store on a tokens table (see
// internal/db/migrations). DELETE ... RETURNING makes the find-and-delete
// a single atomic statement: the row-level lock guarantees at most one
// redeemer receives the row.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Postgres-backed token store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (ps *PostgresStore) Insert(ctx context.Context, token Token) error {
	_, err := ps.pool.Exec(ctx,
		`INSERT INTO tokens (key, type, secret, data, expires_at) VALUES ($1, $2, $3, $4, $5)`,
		token.Key, string(token.Type), token.Secret, token.Data, token.ExpiresAt,
	)
	if err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

func (ps *PostgresStore) FindAndDelete(ctx context.Context, key string, typ Type, secret string) (*Token, error) {
	var (
		data      []byte
		expiresAt *time.Time
	)
	err := ps.pool.QueryRow(ctx,
		`DELETE FROM tokens WHERE key = $1 AND type = $2 AND secret = $3 RETURNING data, expires_at`,
		key, string(typ), secret,
	).Scan(&data, &expiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTokenNotFound
		}
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	return &Token{Key: key, Type: typ, Secret: secret, Data: data, ExpiresAt: expiresAt}, nil
}

func (ps *PostgresStore) DeleteByKeyType(ctx context.Context, key string, typ Type) error {
	_, err := ps.pool.Exec(ctx,
		`DELETE FROM tokens WHERE key = $1 AND type = $2`,
		key, string(typ),
	)
	if err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}
