package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Direction says whether a transaction moved money into or out of the account.
type Direction string

const (
	DirectionIncome  Direction = "income"
	DirectionExpense Direction = "expense"
)

// Source records which stage of the pipeline produced a candidate.
// It exists for debugging and test assertions, not for business logic.
type Source string

const (
	SourcePositionalPDF Source = "positional-pdf"
	SourceTabular       Source = "tabular"
	SourceGenericText   Source = "generic-text"
	SourceAI            Source = "ai"
	SourceRuleFallback  Source = "rule-fallback"
)

// Confidence levels assigned per producer. Rule-based stages deliberately
// score below AI-derived output so downstream consumers can rank candidates.
const (
	ConfidenceStructural = 0.6
	ConfidenceAI         = 0.9
)

// TransactionCandidate is one extracted financial movement. Every parser in
// the pipeline produces this same shape; the enrichment stages fill the date
// and category when the parser could not.
type TransactionCandidate struct {
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"` // strictly positive magnitude
	Direction   Direction       `json:"direction"`
	Category    Category        `json:"category"`
	Confidence  float64         `json:"confidence"`
	Source      Source          `json:"source"`
}

// Valid reports whether the candidate satisfies the schema invariants:
// positive amount, non-empty description and a year inside (1990, 2100).
func (c TransactionCandidate) Valid() bool {
	if !c.Amount.IsPositive() {
		return false
	}
	if strings.TrimSpace(c.Description) == "" {
		return false
	}
	year := c.Date.Year()
	return year > 1990 && year < 2100
}
