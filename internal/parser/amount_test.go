package parser

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/taxmint/statements/internal/domain"
)

func TestCleanAmount(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		want     string
		negative bool
		ok       bool
	}{
		{"plain", "500000", "500000", false, true},
		{"thousands", "12,500.00", "12500", false, true},
		{"naira symbol", "₦1,000.50", "1000.5", false, true},
		{"currency code", "NGN 2,000", "2000", false, true},
		{"parentheses", "(1,234.00)", "1234", true, true},
		{"leading minus", "-300", "300", true, true},
		{"dr suffix", "450.00 DR", "450", true, true},
		{"cr suffix", "450.00CR", "450", false, true},
		{"not a number", "Shoprite", "", false, false},
		{"empty", "  ", "", false, false},
		{"mixed", "12abc", "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, negative, ok := CleanAmount(tt.in)
			if ok != tt.ok {
				t.Fatalf("CleanAmount(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}
			if !ok {
				return
			}
			want, _ := decimal.NewFromString(tt.want)
			if !got.Equal(want) {
				t.Errorf("CleanAmount(%q) = %s, want %s", tt.in, got, want)
			}
			if negative != tt.negative {
				t.Errorf("CleanAmount(%q) negative = %v, want %v", tt.in, negative, tt.negative)
			}
		})
	}
}

func TestInferYear(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  int
	}{
		{"statement header", []string{"ACME BANK", "Statement Period: 01 Jan 2025 - 31 Mar 2025"}, 2025},
		{"no year", []string{"ACME BANK", "Current Account"}, 0},
		{"implausible year skipped", []string{"est. 1887", "period 2024"}, 2024},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InferYear(tt.lines); got != tt.want {
				t.Errorf("InferYear = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestInferYear_ScanWindow(t *testing.T) {
	lines := make([]string, 60)
	for i := range lines {
		lines[i] = "no year here"
	}
	lines[55] = "only at line 55: 2024"
	if got := InferYear(lines); got != 0 {
		t.Errorf("InferYear read past the 50-line window: got %d", got)
	}
}

func TestDetectDirection(t *testing.T) {
	tests := []struct {
		text string
		want domain.Direction
	}{
		{"SALARY PAYMENT", domain.DirectionIncome},
		{"INWARD TRANSFER", domain.DirectionIncome},
		{"ATM WITHDRAWAL IKEJA", domain.DirectionExpense},
		{"POS Purchase Shoprite", domain.DirectionExpense},
		{"completely ambiguous", domain.DirectionExpense},
	}
	for _, tt := range tests {
		if got := DetectDirection(tt.text); got != tt.want {
			t.Errorf("DetectDirection(%q) = %s, want %s", tt.text, got, tt.want)
		}
	}
}
