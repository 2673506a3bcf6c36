package parser

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/taxmint/statements/internal/domain"
	"github.com/taxmint/statements/internal/logger"
)

// staticTokens is a TokenSource over a fixed token list.
type staticTokens []TextToken

func (s staticTokens) Tokens() ([]TextToken, error) { return s, nil }

// End-to-end scenario: `15-Mar  POS Purchase Shoprite  12,500.00` with the
// contextual year inferred from the statement header.
func TestPositional_HeaderYearAndRow(t *testing.T) {
	p := NewPositional(logger.New())
	src := staticTokens{
		// header, top of page
		{Text: "Statement", X: 40, Y: 800, Page: 1},
		{Text: "Period:", X: 110, Y: 800, Page: 1},
		{Text: "Jan", X: 170, Y: 800, Page: 1},
		{Text: "-", X: 200, Y: 800, Page: 1},
		{Text: "Mar", X: 210, Y: 800, Page: 1},
		{Text: "2025", X: 245, Y: 800, Page: 1},
		// transaction row
		{Text: "15-Mar", X: 40, Y: 700, Page: 1},
		{Text: "POS", X: 120, Y: 700, Page: 1},
		{Text: "Purchase", X: 160, Y: 700, Page: 1},
		{Text: "Shoprite", X: 230, Y: 700, Page: 1},
		{Text: "12,500.00", X: 400, Y: 700, Page: 1},
	}

	docCtx := &domain.DocumentContext{Format: domain.FormatPDF}
	got, err := p.Parse(src, docCtx)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if docCtx.Year != 2025 {
		t.Fatalf("inferred year = %d, want 2025", docCtx.Year)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(got))
	}

	c := got[0]
	if c.Date.Format("2006-01-02") != "2025-03-15" {
		t.Errorf("date = %s, want 2025-03-15", c.Date.Format("2006-01-02"))
	}
	if c.Description != "POS Purchase Shoprite" {
		t.Errorf("description = %q", c.Description)
	}
	if !c.Amount.Equal(decimal.RequireFromString("12500")) {
		t.Errorf("amount = %s, want 12500", c.Amount)
	}
	if c.Direction != domain.DirectionExpense {
		t.Errorf("direction = %s, want expense", c.Direction)
	}
	if c.Source != domain.SourcePositionalPDF {
		t.Errorf("source = %s", c.Source)
	}
}

// A following row with no date and no numeric token merges into the
// description; the scan then advances past it.
func TestPositional_ContinuationRow(t *testing.T) {
	p := NewPositional(logger.New())
	src := staticTokens{
		{Text: "15/03/2025", X: 40, Y: 700, Page: 1},
		{Text: "TRANSFER", X: 120, Y: 700, Page: 1},
		{Text: "TO", X: 200, Y: 700, Page: 1},
		{Text: "5,000.00", X: 400, Y: 700, Page: 1},
		// continuation line below
		{Text: "ADAEZE", X: 120, Y: 688, Page: 1},
		{Text: "OKONKWO", X: 180, Y: 688, Page: 1},
	}

	got, err := p.Parse(src, &domain.DocumentContext{Format: domain.FormatPDF})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(got))
	}
	if got[0].Description != "TRANSFER TO ADAEZE OKONKWO" {
		t.Errorf("description = %q, want continuation merged", got[0].Description)
	}
}

// A row with a date but no numeric token yields nothing.
func TestPositional_DateWithoutAmount(t *testing.T) {
	p := NewPositional(logger.New())
	src := staticTokens{
		{Text: "15/03/2025", X: 40, Y: 700, Page: 1},
		{Text: "Opening", X: 120, Y: 700, Page: 1},
		{Text: "Balance", X: 180, Y: 700, Page: 1},
	}

	got, err := p.Parse(src, &domain.DocumentContext{Format: domain.FormatPDF, Year: 2025})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no candidates, got %d", len(got))
	}
}

func TestPositional_CRDRMarkers(t *testing.T) {
	p := NewPositional(logger.New())
	src := staticTokens{
		{Text: "15/03/2025", X: 40, Y: 700, Page: 1},
		{Text: "TRF", X: 120, Y: 700, Page: 1},
		{Text: "FROM", X: 160, Y: 700, Page: 1},
		{Text: "CLIENT", X: 200, Y: 700, Page: 1},
		{Text: "80,000.00", X: 400, Y: 700, Page: 1},
		{Text: "CR", X: 470, Y: 700, Page: 1},
	}

	got, err := p.Parse(src, &domain.DocumentContext{Format: domain.FormatPDF, Year: 2025})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(got))
	}
	if got[0].Direction != domain.DirectionIncome {
		t.Errorf("CR marker should give income, got %s", got[0].Direction)
	}
}

// Sub-pixel y jitter within a tenth of a unit still lands in one row.
func TestClusterRows_JitterAndOrder(t *testing.T) {
	rows := clusterRows([]TextToken{
		{Text: "b", X: 100, Y: 700.04, Page: 1},
		{Text: "a", X: 40, Y: 699.96, Page: 1},
		{Text: "top", X: 40, Y: 750, Page: 1},
		{Text: "page2", X: 40, Y: 790, Page: 2},
	})

	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].text() != "top" {
		t.Errorf("rows not in reading order: first = %q", rows[0].text())
	}
	if rows[1].text() != "a b" {
		t.Errorf("jittered tokens not merged and x-sorted: %q", rows[1].text())
	}
	if rows[2].page != 2 {
		t.Errorf("page ordering broken: %+v", rows[2])
	}
}
