package quota

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps balances in an accounts table:
//
//	CREATE TABLE accounts (
//	    id      TEXT PRIMARY KEY,
//	    credits BIGINT NOT NULL DEFAULT 0 CHECK (credits >= 0)
//	);
//
// The debit is a single conditional UPDATE, so concurrent requests contend on
// the row lock and the balance can never go negative.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Balance(ctx context.Context, accountID string) (int64, error) {
	var bal int64
	err := s.pool.QueryRow(ctx,
		`SELECT credits FROM accounts WHERE id = $1`, accountID).Scan(&bal)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrAccountNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("quota: query balance: %w", err)
	}
	return bal, nil
}

func (s *PostgresStore) Debit(ctx context.Context, accountID string) (int64, error) {
	var remaining int64
	err := s.pool.QueryRow(ctx,
		`UPDATE accounts SET credits = credits - 1
		 WHERE id = $1 AND credits > 0
		 RETURNING credits`, accountID).Scan(&remaining)
	if errors.Is(err, pgx.ErrNoRows) {
		// Either no such account or no credits left; distinguish for the
		// caller since the API maps them to different responses.
		if _, berr := s.Balance(ctx, accountID); errors.Is(berr, ErrAccountNotFound) {
			return 0, ErrAccountNotFound
		}
		return 0, ErrInsufficientCredits
	}
	if err != nil {
		return 0, fmt.Errorf("quota: debit: %w", err)
	}
	return remaining, nil
}

func (s *PostgresStore) Credit(ctx context.Context, accountID string, n int64) (int64, error) {
	var bal int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO accounts (id, credits) VALUES ($1, $2)
		 ON CONFLICT (id) DO UPDATE SET credits = accounts.credits + $2
		 RETURNING credits`, accountID, n).Scan(&bal)
	if err != nil {
		return 0, fmt.Errorf("quota: credit: %w", err)
	}
	return bal, nil
}
