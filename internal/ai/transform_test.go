package ai

import (
	"errors"
	"testing"

	"github.com/taxmint/statements/internal/domain"
)

func TestDecodeCandidates_EnvelopeObject(t *testing.T) {
	raw := `{"transactions":[{"date":"2025-03-01","description":"CLIENT INVOICE 42","amount":"250,000.00","direction":"income","category":"business-income"}]}`

	cands, err := decodeCandidates(raw, testDocCtx())
	if err != nil {
		t.Fatalf("decodeCandidates() error = %v", err)
	}
	if len(cands) != 1 {
		t.Fatalf("got %d candidates, want 1", len(cands))
	}
	c := cands[0]
	if got := c.Amount.InexactFloat64(); got != 250000 {
		t.Errorf("amount = %v, want 250000", got)
	}
	if c.Category != domain.CategoryBusinessIncome {
		t.Errorf("category = %q, want business-income", c.Category)
	}
	if c.Confidence != domain.ConfidenceAI {
		t.Errorf("confidence = %v, want %v", c.Confidence, domain.ConfidenceAI)
	}
	if c.Source != domain.SourceAI {
		t.Errorf("source = %q, want ai", c.Source)
	}
}

func TestDecodeCandidates_SkipsBadElements(t *testing.T) {
	raw := `[
	  {"date":"2025-03-01","description":"SALARY PAYMENT","amount":500000,"direction":"income","category":"salary"},
	  {"description":"NO DATE HERE","amount":100},
	  {"date":"2025-03-02","description":"","amount":50},
	  {"date":"2025-03-03","description":"ZERO AMOUNT ROW","amount":0},
	  "not an object"
	]`

	cands, err := decodeCandidates(raw, testDocCtx())
	if err != nil {
		t.Fatalf("decodeCandidates() error = %v", err)
	}
	if len(cands) != 1 {
		t.Fatalf("got %d candidates, want 1: %+v", len(cands), cands)
	}
	if cands[0].Description != "SALARY PAYMENT" {
		t.Errorf("description = %q", cands[0].Description)
	}
}

func TestDecodeCandidates_NegativeAmountFlipsToExpense(t *testing.T) {
	raw := `[{"date":"2025-03-05","description":"ATM WITHDRAWAL","amount":-20000,"direction":"income","category":"bank-fees"}]`

	cands, err := decodeCandidates(raw, testDocCtx())
	if err != nil {
		t.Fatalf("decodeCandidates() error = %v", err)
	}
	if len(cands) != 1 {
		t.Fatalf("got %d candidates, want 1", len(cands))
	}
	if cands[0].Direction != domain.DirectionExpense {
		t.Errorf("direction = %q, want expense", cands[0].Direction)
	}
	if !cands[0].Amount.IsPositive() {
		t.Errorf("amount = %v, want positive", cands[0].Amount)
	}
}

func TestDecodeCandidates_OffTaxonomyCategoryDropped(t *testing.T) {
	raw := `[{"date":"2025-03-06","description":"STREAMING SERVICE","amount":4400,"direction":"expense","category":"entertainment-deluxe"}]`

	cands, err := decodeCandidates(raw, testDocCtx())
	if err != nil {
		t.Fatalf("decodeCandidates() error = %v", err)
	}
	if cands[0].Category != "" {
		t.Errorf("category = %q, want empty for off-taxonomy value", cands[0].Category)
	}
}

func TestDecodeCandidates_MalformedOutput(t *testing.T) {
	_, err := decodeCandidates("I could not find any transactions in this document.", testDocCtx())
	if !errors.Is(err, ErrMalformedOutput) {
		t.Fatalf("decodeCandidates() error = %v, want ErrMalformedOutput", err)
	}
}
