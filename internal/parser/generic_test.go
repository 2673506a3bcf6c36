package parser

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/taxmint/statements/internal/domain"
	"github.com/taxmint/statements/internal/logger"
)

func TestGeneric_Parse(t *testing.T) {
	g := NewGeneric(logger.New())
	text := "ACME BANK PLC\n" +
		"Statement of Account 2025\n" +
		"01/03/2025 SALARY PAYMENT ACME LTD 500,000.00\n" +
		"02/03/2025 ATM WITHDRAWAL IKEJA 20,000.00\n" +
		"random noise line without structure\n"

	docCtx := &domain.DocumentContext{Format: domain.FormatText}
	got := g.Parse(text, docCtx)
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(got))
	}

	if got[0].Direction != domain.DirectionIncome {
		t.Errorf("salary line direction = %s, want income", got[0].Direction)
	}
	if !got[0].Amount.Equal(decimal.RequireFromString("500000")) {
		t.Errorf("amount = %s, want 500000", got[0].Amount)
	}
	if got[0].Description != "SALARY PAYMENT ACME LTD" {
		t.Errorf("description = %q", got[0].Description)
	}
	if got[1].Direction != domain.DirectionExpense {
		t.Errorf("withdrawal line direction = %s, want expense", got[1].Direction)
	}
	if got[0].Source != domain.SourceGenericText {
		t.Errorf("source = %s", got[0].Source)
	}
}

// The LAST numeric run wins; statements render the running balance last and
// this parser's documented behavior is to take the final match.
func TestGeneric_TakesLastAmount(t *testing.T) {
	g := NewGeneric(logger.New())
	text := "01/03/2025 TRANSFER TO VENDOR 15,000.00 485,000.00\n"

	got := g.Parse(text, &domain.DocumentContext{Format: domain.FormatText, Year: 2025})
	if len(got) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(got))
	}
	if !got[0].Amount.Equal(decimal.RequireFromString("485000")) {
		t.Errorf("amount = %s, want the last numeric run 485000", got[0].Amount)
	}
}

func TestGeneric_YearlessDatesUseContextYear(t *testing.T) {
	g := NewGeneric(logger.New())
	text := "Statement Period: 2024\n" +
		"15-Mar POS PURCHASE SHOPRITE 12,500.00\n"

	docCtx := &domain.DocumentContext{Format: domain.FormatText}
	got := g.Parse(text, docCtx)
	if docCtx.Year != 2024 {
		t.Fatalf("inferred year = %d, want 2024", docCtx.Year)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(got))
	}
	if got[0].Date.Format("2006-01-02") != "2024-03-15" {
		t.Errorf("date = %s, want 2024-03-15", got[0].Date.Format("2006-01-02"))
	}
}

func TestGeneric_ShortDescriptionsAreNoise(t *testing.T) {
	g := NewGeneric(logger.New())
	text := "01/03/2025 AB 1,000.00\n"

	got := g.Parse(text, &domain.DocumentContext{Format: domain.FormatText, Year: 2025})
	if len(got) != 0 {
		t.Fatalf("expected noise line dropped, got %d candidates", len(got))
	}
}

func TestGeneric_CRMarker(t *testing.T) {
	g := NewGeneric(logger.New())
	text := "01/03/2025 TRF FROM CLIENT 80,000.00 CR\n"

	got := g.Parse(text, &domain.DocumentContext{Format: domain.FormatText, Year: 2025})
	if len(got) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(got))
	}
	if got[0].Direction != domain.DirectionIncome {
		t.Errorf("CR marker should give income, got %s", got[0].Direction)
	}
}
