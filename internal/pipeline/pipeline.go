// Package pipeline turns one uploaded document into transaction candidates.
// The flow is fixed: decode and structural parse, AI fallback when the
// structural pass comes up empty, then enrichment. Each stage is a Step so
// tests can run and observe them in isolation.
package pipeline

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/taxmint/statements/internal/ai"
	"github.com/taxmint/statements/internal/domain"
	"github.com/taxmint/statements/internal/parser"
	"github.com/taxmint/statements/internal/quota"
)

// Step is a single stage of the extraction pipeline.
type Step interface {
	Execute(ctx context.Context, state *State) error
}

// State is the shared state threaded through the steps of one extraction.
type State struct {
	Raw []byte
	Doc domain.DocumentContext

	// Text is the flattened plain-text view of the document, kept for the
	// text-only AI providers.
	Text string

	Candidates []domain.TransactionCandidate
	Attempts   []ai.ProviderAttempt
	UsedAI     bool

	// CreditsRemaining is the balance after the AI debit; -1 when no
	// credit was spent.
	CreditsRemaining int64
}

// Result is what one extraction returns to the caller.
type Result struct {
	Candidates       []domain.TransactionCandidate `json:"candidates"`
	UsedAI           bool                          `json:"used_ai"`
	CreditsRemaining int64                         `json:"credits_remaining"`
	Attempts         []ai.ProviderAttempt          `json:"-"`
}

// AIClient is the provider chain as seen by the pipeline. *ai.Orchestrator
// satisfies it; tests substitute their own.
type AIClient interface {
	Extract(ctx context.Context, req ai.Request, docCtx domain.DocumentContext) ([]domain.TransactionCandidate, []ai.ProviderAttempt, error)
}

// Extractor wires the parsers, the AI chain and the credit store into the
// standard pipeline.
type Extractor struct {
	positional *parser.Positional
	tabular    *parser.Tabular
	generic    *parser.Generic
	aiClient   AIClient
	credits    quota.Store
	log        zerolog.Logger
}

func NewExtractor(log zerolog.Logger, aiClient AIClient, credits quota.Store) *Extractor {
	return &Extractor{
		positional: parser.NewPositional(log),
		tabular:    parser.NewTabular(log),
		generic:    parser.NewGeneric(log),
		aiClient:   aiClient,
		credits:    credits,
		log:        log,
	}
}

// Extract runs the standard pipeline over one document.
func (e *Extractor) Extract(ctx context.Context, raw []byte, doc domain.DocumentContext) (*Result, error) {
	state := &State{Raw: raw, Doc: doc, CreditsRemaining: -1}

	p := NewPipeline(
		&StructuralParseStep{ex: e},
		&AIFallbackStep{ex: e},
		&EnrichStep{},
	)
	if err := p.Execute(ctx, state); err != nil {
		return nil, err
	}

	return &Result{
		Candidates:       state.Candidates,
		UsedAI:           state.UsedAI,
		CreditsRemaining: state.CreditsRemaining,
		Attempts:         state.Attempts,
	}, nil
}

// Pipeline executes a sequence of steps in order.
type Pipeline struct {
	steps []Step
}

func NewPipeline(steps ...Step) *Pipeline {
	return &Pipeline{steps: steps}
}

func (p *Pipeline) Execute(ctx context.Context, state *State) error {
	for i, step := range p.steps {
		if err := step.Execute(ctx, state); err != nil {
			return fmt.Errorf("pipeline step %d: %w", i+1, err)
		}
	}
	return nil
}
