package quota

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store. It is safe for concurrent use.
// Balances are lost on restart; use PostgresStore for persistence.
type MemoryStore struct {
	mu       sync.Mutex
	balances map[string]int64

	// defaultCredits > 0 auto-creates unknown accounts at that balance.
	defaultCredits int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{balances: make(map[string]int64)}
}

// NewMemoryStoreWithDefault auto-creates unknown accounts with the given
// starting balance. Intended for local development.
func NewMemoryStoreWithDefault(defaultCredits int64) *MemoryStore {
	return &MemoryStore{
		balances:       make(map[string]int64),
		defaultCredits: defaultCredits,
	}
}

// Seed sets an account's balance directly. Intended for tests and local runs.
func (s *MemoryStore) Seed(accountID string, balance int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[accountID] = balance
}

func (s *MemoryStore) Balance(ctx context.Context, accountID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bal, ok := s.balances[accountID]
	if !ok {
		if s.defaultCredits > 0 {
			s.balances[accountID] = s.defaultCredits
			return s.defaultCredits, nil
		}
		return 0, ErrAccountNotFound
	}
	return bal, nil
}

func (s *MemoryStore) Debit(ctx context.Context, accountID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bal, ok := s.balances[accountID]
	if !ok {
		if s.defaultCredits > 0 {
			bal = s.defaultCredits
			ok = true
		}
	}
	if !ok {
		return 0, ErrAccountNotFound
	}
	if bal <= 0 {
		return 0, ErrInsufficientCredits
	}
	bal--
	s.balances[accountID] = bal
	return bal, nil
}

func (s *MemoryStore) Credit(ctx context.Context, accountID string, n int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bal := s.balances[accountID] + n
	s.balances[accountID] = bal
	return bal, nil
}
