package parser

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/taxmint/statements/internal/domain"
	"github.com/taxmint/statements/internal/logger"
)

func testDocCtx(format domain.Format) *domain.DocumentContext {
	return &domain.DocumentContext{Format: format}
}

func TestDetectHeader(t *testing.T) {
	tests := []struct {
		name string
		rows [][]string
		want int
	}{
		{
			name: "header on first row",
			rows: [][]string{
				{"Date", "Narration", "Money In", "Money Out"},
				{"01/03/2025", "Salary Payment", "500000", ""},
			},
			want: 0,
		},
		{
			name: "header after preamble",
			rows: [][]string{
				{"ACME BANK PLC"},
				{"Account Statement 2025"},
				{"Date", "Description", "Debit", "Credit", "Balance"},
				{"01/03/2025", "x", "", "100", "100"},
			},
			want: 2,
		},
		{
			name: "later keyword rows do not displace the first hit",
			rows: [][]string{
				{"Date", "Description", "Amount", "Balance"},
				{"note", "contains the word date and credit and debit"},
			},
			want: 0,
		},
		{
			name: "no qualifying row defaults to zero",
			rows: [][]string{
				{"just", "cells"},
				{"more", "cells"},
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectHeader(tt.rows); got != tt.want {
				t.Errorf("detectHeader = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestInferRoles_CreditDebitBeatsAmount(t *testing.T) {
	roles := inferRoles([]string{"Date", "Narration", "Amount", "Credit", "Debit"})
	if roles.credit != 3 || roles.debit != 4 {
		t.Fatalf("credit/debit columns not found: %+v", roles)
	}
	if roles.amount != 2 {
		t.Fatalf("amount column should still be indexed: %+v", roles)
	}
}

// End-to-end scenario: Money In / Money Out sheet with one salary row.
func TestParseRows_MoneyInOut(t *testing.T) {
	tab := NewTabular(logger.New())
	rows := [][]string{
		{"Date", "Narration", "Money In", "Money Out"},
		{"01/03/2025", "Salary Payment", "500000", ""},
	}

	got := tab.ParseRows(rows, testDocCtx(domain.FormatXLSX))
	if len(got) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(got))
	}
	c := got[0]
	if c.Date.Format("2006-01-02") != "2025-03-01" {
		t.Errorf("date = %s, want 2025-03-01", c.Date.Format("2006-01-02"))
	}
	if c.Description != "Salary Payment" {
		t.Errorf("description = %q", c.Description)
	}
	if !c.Amount.Equal(decimal.NewFromInt(500000)) {
		t.Errorf("amount = %s, want 500000", c.Amount)
	}
	if c.Direction != domain.DirectionIncome {
		t.Errorf("direction = %s, want income", c.Direction)
	}
	if c.Source != domain.SourceTabular {
		t.Errorf("source = %s", c.Source)
	}
}

func TestParseRows_DebitColumn(t *testing.T) {
	tab := NewTabular(logger.New())
	rows := [][]string{
		{"Date", "Description", "Debit", "Credit", "Balance"},
		{"02/03/2025", "POS Purchase Shoprite", "12,500.00", "", "487,500.00"},
	}

	got := tab.ParseRows(rows, testDocCtx(domain.FormatXLSX))
	if len(got) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(got))
	}
	if got[0].Direction != domain.DirectionExpense {
		t.Errorf("direction = %s, want expense", got[0].Direction)
	}
	if !got[0].Amount.Equal(decimal.RequireFromString("12500")) {
		t.Errorf("amount = %s, want 12500", got[0].Amount)
	}
}

func TestParseRows_SingleAmountColumn(t *testing.T) {
	tab := NewTabular(logger.New())
	rows := [][]string{
		{"Date", "Description", "Amount", "Type"},
		{"03/03/2025", "Invoice 42 settled", "250000", "CR"},
		{"04/03/2025", "Fuel purchase", "-20000", ""},
		{"05/03/2025", "Some unlabeled payment", "5000", ""},
	}

	got := tab.ParseRows(rows, testDocCtx(domain.FormatCSV))
	if len(got) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(got))
	}
	if got[0].Direction != domain.DirectionIncome {
		t.Errorf("CR indicator should give income, got %s", got[0].Direction)
	}
	if got[1].Direction != domain.DirectionExpense {
		t.Errorf("negative amount should give expense, got %s", got[1].Direction)
	}
	if got[2].Direction != domain.DirectionExpense {
		t.Errorf("ambiguous row should default to expense, got %s", got[2].Direction)
	}
}

func TestParseRows_SkipsBadRows(t *testing.T) {
	tab := NewTabular(logger.New())
	rows := [][]string{
		{"Date", "Narration", "Money In", "Money Out"},
		{"", "no date", "100", ""},
		{"01/03/2025", "", "100", ""},
		{"not a date", "bad date", "100", ""},
		{"01/03/2025", "no amount", "", ""},
		{"01/03/2025", "good row", "100", ""},
	}

	got := tab.ParseRows(rows, testDocCtx(domain.FormatXLSX))
	if len(got) != 1 {
		t.Fatalf("expected only the good row, got %d candidates", len(got))
	}
	if got[0].Description != "good row" {
		t.Errorf("wrong surviving row: %q", got[0].Description)
	}
}

func TestParseRows_SerialDates(t *testing.T) {
	tab := NewTabular(logger.New())
	rows := [][]string{
		{"Date", "Description", "Amount"},
		{"45748", "serial date row", "100"},
	}

	got := tab.ParseRows(rows, testDocCtx(domain.FormatXLSX))
	if len(got) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(got))
	}
	if got[0].Date.Format("2006-01-02") != "2025-04-01" {
		t.Errorf("serial date = %s, want 2025-04-01", got[0].Date.Format("2006-01-02"))
	}
}

func TestParseRows_ContextYearFromPreamble(t *testing.T) {
	tab := NewTabular(logger.New())
	rows := [][]string{
		{"Statement Period: January - March 2025"},
		{"Date", "Narration", "Money In", "Money Out"},
		{"15/03", "Yearless salary", "100000", ""},
	}

	docCtx := testDocCtx(domain.FormatCSV)
	got := tab.ParseRows(rows, docCtx)
	if docCtx.Year != 2025 {
		t.Fatalf("inferred year = %d, want 2025", docCtx.Year)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(got))
	}
	if got[0].Date.Year() != 2025 {
		t.Errorf("yearless date year = %d, want 2025", got[0].Date.Year())
	}
}

func TestParseCSV(t *testing.T) {
	tab := NewTabular(logger.New())
	data := []byte("Date,Narration,Money In,Money Out\n01/03/2025,Salary Payment,500000,\n")

	got, err := tab.ParseCSV(data, testDocCtx(domain.FormatCSV))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	if len(got) != 1 || got[0].Description != "Salary Payment" {
		t.Fatalf("unexpected candidates: %+v", got)
	}
}
