package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/taxmint/statements/internal/domain"
)

// RetryConfig defines the per-provider retry behavior. Only rate limits are
// retried; every other failure advances the chain immediately.
type RetryConfig struct {
	MaxAttempts     int
	InitialDelay    time.Duration
	MaxDelay        time.Duration
	BackoffMultiple float64
}

var DefaultRetryConfig = RetryConfig{
	MaxAttempts:     3,
	InitialDelay:    1 * time.Second,
	MaxDelay:        8 * time.Second,
	BackoffMultiple: 2.0,
}

// Orchestrator runs the provider fallback chain. Providers are tried in the
// order given; the first one that returns a parseable, non-empty batch wins.
type Orchestrator struct {
	providers []Provider
	retry     RetryConfig
	log       zerolog.Logger

	// sleep is swapped out in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewOrchestrator(log zerolog.Logger, providers ...Provider) *Orchestrator {
	return &Orchestrator{
		providers: providers,
		retry:     DefaultRetryConfig,
		log:       log,
		sleep:     sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Extract runs the chain and returns the winning provider's candidates along
// with the full attempt trail. A provider that answers but yields zero valid
// candidates counts as a hard failure, the same as malformed output.
func (o *Orchestrator) Extract(ctx context.Context, req Request, docCtx domain.DocumentContext) ([]domain.TransactionCandidate, []ProviderAttempt, error) {
	if len(o.providers) == 0 {
		return nil, nil, fmt.Errorf("orchestrator: %w: no providers configured", ErrAllProvidersFailed)
	}

	var attempts []ProviderAttempt
	var lastErr error

	for pos, p := range o.providers {
		cands, provAttempts, err := o.runProvider(ctx, p, pos, req, docCtx)
		attempts = append(attempts, provAttempts...)
		if err == nil {
			return cands, attempts, nil
		}
		if ctx.Err() != nil {
			return nil, attempts, ctx.Err()
		}
		lastErr = err
		o.log.Warn().
			Str("provider", p.Name()).
			Int("position", pos).
			Err(err).
			Msg("provider failed, advancing chain")
	}

	return nil, attempts, fmt.Errorf("orchestrator: %w: last error: %v", ErrAllProvidersFailed, lastErr)
}

// runProvider retries one provider on rate limits with exponential backoff,
// then decodes its output.
func (o *Orchestrator) runProvider(ctx context.Context, p Provider, pos int, req Request, docCtx domain.DocumentContext) ([]domain.TransactionCandidate, []ProviderAttempt, error) {
	var attempts []ProviderAttempt
	delay := o.retry.InitialDelay

	for attempt := 1; attempt <= o.retry.MaxAttempts; attempt++ {
		raw, err := p.Extract(ctx, req)
		if err != nil {
			if errors.Is(err, ErrRateLimited) {
				attempts = append(attempts, ProviderAttempt{Provider: p.Name(), Outcome: OutcomeRateLimited, Position: pos})
				if attempt == o.retry.MaxAttempts {
					return nil, attempts, fmt.Errorf("%s: retries exhausted: %w", p.Name(), err)
				}
				o.log.Warn().
					Str("provider", p.Name()).
					Int("attempt", attempt).
					Dur("delay", delay).
					Msg("rate limited, backing off")
				if serr := o.sleep(ctx, delay); serr != nil {
					return nil, attempts, serr
				}
				delay = nextDelay(delay, o.retry)
				continue
			}
			attempts = append(attempts, ProviderAttempt{Provider: p.Name(), Outcome: OutcomeFailed, Position: pos})
			return nil, attempts, err
		}

		cands, derr := decodeCandidates(raw, docCtx)
		if derr != nil {
			attempts = append(attempts, ProviderAttempt{Provider: p.Name(), Outcome: OutcomeFailed, Position: pos})
			return nil, attempts, fmt.Errorf("%s: %w", p.Name(), derr)
		}
		if len(cands) == 0 {
			attempts = append(attempts, ProviderAttempt{Provider: p.Name(), Outcome: OutcomeFailed, Position: pos})
			return nil, attempts, fmt.Errorf("%s: %w", p.Name(), ErrNoTransactions)
		}

		attempts = append(attempts, ProviderAttempt{Provider: p.Name(), Outcome: OutcomeSuccess, Position: pos})
		o.log.Info().
			Str("provider", p.Name()).
			Int("candidates", len(cands)).
			Msg("provider extraction succeeded")
		return cands, attempts, nil
	}

	return nil, attempts, fmt.Errorf("%s: retries exhausted", p.Name())
}

func nextDelay(current time.Duration, cfg RetryConfig) time.Duration {
	next := time.Duration(float64(current) * cfg.BackoffMultiple)
	if next > cfg.MaxDelay {
		next = cfg.MaxDelay
	}
	return next
}
