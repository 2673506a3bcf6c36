package pipeline

import (
	"context"
	"fmt"

	"github.com/taxmint/statements/internal/ai"
	"github.com/taxmint/statements/internal/categorize"
	"github.com/taxmint/statements/internal/domain"
	"github.com/taxmint/statements/internal/parser"
	"github.com/taxmint/statements/internal/quota"
)

// StructuralParseStep routes the document to the parser matching its
// declared format and flattens it to plain text for the AI fallback.
// A PDF that the positional parser cannot read is not fatal here, because
// the primary AI provider can work from the raw bytes.
type StructuralParseStep struct {
	ex *Extractor
}

func (s *StructuralParseStep) Execute(ctx context.Context, state *State) error {
	if len(state.Raw) == 0 {
		return fmt.Errorf("%w: empty document", ErrUnparseableDocument)
	}

	e := s.ex
	switch state.Doc.Format {
	case domain.FormatPDF:
		src := parser.NewPDFTokenSource(state.Raw)
		cands, err := e.positional.Parse(src, &state.Doc)
		if err != nil {
			e.log.Warn().Err(err).Msg("positional pdf parse failed")
			return nil
		}
		state.Candidates = cands
		if text, terr := src.Text(); terr == nil {
			state.Text = text
		}
		if len(state.Candidates) == 0 && state.Text != "" {
			state.Candidates = e.generic.Parse(state.Text, &state.Doc)
		}

	case domain.FormatXLSX, domain.FormatXLS:
		cands, err := e.tabular.ParseWorkbook(state.Raw, &state.Doc)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUnparseableDocument, err)
		}
		state.Candidates = cands
		if text, terr := parser.WorkbookText(state.Raw); terr == nil {
			state.Text = text
		}

	case domain.FormatCSV:
		cands, err := e.tabular.ParseCSV(state.Raw, &state.Doc)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUnparseableDocument, err)
		}
		state.Candidates = cands
		state.Text = string(state.Raw)

	default:
		state.Text = string(state.Raw)
		state.Candidates = e.generic.Parse(state.Text, &state.Doc)
	}

	return nil
}

// AIFallbackStep runs the provider chain when the structural pass found
// nothing. One credit is debited only after a provider returns at least one
// candidate; failed chains cost nothing.
type AIFallbackStep struct {
	ex *Extractor
}

func (s *AIFallbackStep) Execute(ctx context.Context, state *State) error {
	if len(state.Candidates) > 0 {
		return nil
	}

	e := s.ex

	var pdfBytes []byte
	if state.Doc.Format == domain.FormatPDF {
		pdfBytes = state.Raw
	}
	if state.Text == "" && len(pdfBytes) == 0 {
		return fmt.Errorf("%w: no extractable content", ErrUnparseableDocument)
	}

	bal, err := e.credits.Balance(ctx, state.Doc.Account.AccountID)
	if err != nil || bal <= 0 {
		return quota.ErrInsufficientCredits
	}

	req := ai.Request{
		Text:    state.Text,
		PDF:     pdfBytes,
		Account: state.Doc.Account,
	}
	cands, attempts, err := e.aiClient.Extract(ctx, req, state.Doc)
	state.Attempts = append(state.Attempts, attempts...)
	if err != nil {
		return err
	}

	remaining, err := e.credits.Debit(ctx, state.Doc.Account.AccountID)
	if err != nil {
		return err
	}

	state.Candidates = cands
	state.UsedAI = true
	state.CreditsRemaining = remaining

	e.log.Info().
		Str("account_id", state.Doc.Account.AccountID).
		Int("candidates", len(cands)).
		Int64("credits_remaining", remaining).
		Msg("ai fallback extraction charged")
	return nil
}

// EnrichStep fills categories the parsers left empty and drops anything that
// no longer satisfies the schema invariants.
type EnrichStep struct{}

func (s *EnrichStep) Execute(ctx context.Context, state *State) error {
	enriched := state.Candidates[:0]
	for _, cand := range state.Candidates {
		if cand.Category == "" || !domain.ValidCategory(cand.Category) {
			cand.Category = categorize.CategorizeWithRules(
				cand.Description,
				cand.Direction == domain.DirectionIncome,
				state.Doc.Account.ImportRules,
			)
		}
		if cand.Confidence == 0 {
			cand.Confidence = domain.ConfidenceStructural
		}
		if !cand.Valid() {
			continue
		}
		enriched = append(enriched, cand)
	}
	state.Candidates = enriched

	if len(state.Candidates) == 0 {
		return ErrNoTransactionsFound
	}
	return nil
}
