// Package ai orchestrates the external extraction/classification providers.
// Providers sit behind one capability interface and are tried in a fixed
// order; the orchestrator owns retry, backoff and failover policy.
package ai

import (
	"context"
	"errors"

	"github.com/taxmint/statements/internal/domain"
)

// Request carries one document's content to a provider. Text is always set;
// PDF additionally carries the raw binary for providers that accept native
// document input.
type Request struct {
	Text    string
	PDF     []byte
	Account domain.AccountContext
}

// Provider is a single extraction/classification backend. Extract returns
// the raw model output; decoding and repair happen in the orchestrator so
// every provider is held to the same output contract.
type Provider interface {
	Name() string
	Extract(ctx context.Context, req Request) (string, error)
}

// ErrRateLimited is the transient failure signal. The orchestrator retries
// the same provider with backoff; any other error advances the chain.
var ErrRateLimited = errors.New("provider rate limited")

// ErrAllProvidersFailed means the whole fallback chain was exhausted.
var ErrAllProvidersFailed = errors.New("all providers failed")

// ErrMalformedOutput means provider output failed JSON parsing even after
// repair; it is treated as a hard provider failure.
var ErrMalformedOutput = errors.New("malformed provider output")

// ErrNoTransactions means a provider ran fine but yielded zero candidates.
var ErrNoTransactions = errors.New("no transactions found")

// AttemptOutcome classifies one provider attempt.
type AttemptOutcome string

const (
	OutcomeSuccess     AttemptOutcome = "success"
	OutcomeRateLimited AttemptOutcome = "rate-limited"
	OutcomeFailed      AttemptOutcome = "failed"
)

// ProviderAttempt records one attempt in the fallback chain. Attempts exist
// only for the duration of one extraction call, for logging and tests.
type ProviderAttempt struct {
	Provider string
	Outcome  AttemptOutcome
	Position int
}
