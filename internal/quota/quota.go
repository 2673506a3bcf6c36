// Package quota meters AI usage per account. One credit buys one successful
// AI extraction; structural parses are free. The debit must be atomic so
// concurrent uploads cannot push a balance below zero.
package quota

import (
	"context"
	"errors"
)

// ErrInsufficientCredits means the account balance is exhausted.
var ErrInsufficientCredits = errors.New("insufficient credits")

// ErrAccountNotFound means the account has no balance row at all.
var ErrAccountNotFound = errors.New("account not found")

// Store holds per-account credit balances.
type Store interface {
	// Balance returns the current credit balance for accountID.
	Balance(ctx context.Context, accountID string) (int64, error)

	// Debit atomically subtracts one credit and returns the remaining
	// balance. It returns ErrInsufficientCredits without changing anything
	// when the balance is already zero.
	Debit(ctx context.Context, accountID string) (int64, error)

	// Credit adds n credits to the account, creating it if needed.
	Credit(ctx context.Context, accountID string, n int64) (int64, error)
}
