package ai

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/taxmint/statements/internal/dates"
	"github.com/taxmint/statements/internal/domain"
	"github.com/taxmint/statements/internal/jsonrepair"
)

// decodeCandidates converts raw model output into normalized candidates.
// The output contract is a JSON array of objects; repair runs first so a
// truncated tail drops only the broken element, not the whole batch.
// Individual bad elements are skipped, not fatal.
func decodeCandidates(raw string, docCtx domain.DocumentContext) ([]domain.TransactionCandidate, error) {
	var elems []interface{}
	if err := jsonrepair.SmartUnmarshal(raw, &elems); err != nil {
		// Some models wrap the array in an envelope object.
		var envelope map[string]interface{}
		if err2 := jsonrepair.SmartUnmarshal(raw, &envelope); err2 != nil {
			return nil, fmt.Errorf("decodeCandidates: %w: %v", ErrMalformedOutput, err)
		}
		txAny, ok := envelope["transactions"]
		if !ok {
			return nil, fmt.Errorf("decodeCandidates: %w: no transactions array", ErrMalformedOutput)
		}
		elems, ok = txAny.([]interface{})
		if !ok {
			return nil, fmt.Errorf("decodeCandidates: %w: 'transactions' is %T, want array", ErrMalformedOutput, txAny)
		}
	}

	result := make([]domain.TransactionCandidate, 0, len(elems))
	for _, item := range elems {
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		cand, ok := candidateFromObject(obj, docCtx)
		if !ok {
			continue
		}
		result = append(result, cand)
	}
	return result, nil
}

// candidateFromObject maps one model output object to a candidate. A miss on
// any required field rejects the object.
func candidateFromObject(obj map[string]interface{}, docCtx domain.DocumentContext) (domain.TransactionCandidate, bool) {
	var zero domain.TransactionCandidate

	dateStr, err := getStringField(obj, "date", true)
	if err != nil {
		return zero, false
	}
	desc, err := getStringField(obj, "description", true)
	if err != nil {
		return zero, false
	}
	amount, err := getAmountField(obj, "amount")
	if err != nil {
		return zero, false
	}

	date, ok := dates.Normalize(dateStr, docCtx.Year)
	if !ok {
		return zero, false
	}

	dir := domain.DirectionExpense
	if dirStr, err := getStringField(obj, "direction", false); err == nil {
		switch strings.ToLower(strings.TrimSpace(dirStr)) {
		case "income", "credit", "in":
			dir = domain.DirectionIncome
		}
	}
	if amount.IsNegative() {
		amount = amount.Neg()
		dir = domain.DirectionExpense
	}

	// An off-taxonomy category is dropped, not trusted; the rule engine
	// fills the gap downstream.
	var category domain.Category
	if catStr, err := getStringField(obj, "category", false); err == nil {
		c := domain.Category(strings.ToLower(strings.TrimSpace(catStr)))
		if domain.ValidCategory(c) {
			category = c
		}
	}

	cand := domain.TransactionCandidate{
		Date:        date,
		Description: strings.TrimSpace(desc),
		Amount:      amount,
		Direction:   dir,
		Category:    category,
		Confidence:  domain.ConfidenceAI,
		Source:      domain.SourceAI,
	}
	if !cand.Valid() {
		return zero, false
	}
	return cand, true
}

func getStringField(m map[string]interface{}, key string, required bool) (string, error) {
	v, ok := m[key]
	if !ok {
		if required {
			return "", fmt.Errorf("missing required field %q", key)
		}
		return "", nil
	}
	switch val := v.(type) {
	case string:
		if required && strings.TrimSpace(val) == "" {
			return "", fmt.Errorf("required field %q is empty", key)
		}
		return val, nil
	default:
		return "", fmt.Errorf("field %q has type %T, want string", key, v)
	}
}

// getAmountField accepts a JSON number or a numeric string; models are not
// consistent about which they emit.
func getAmountField(m map[string]interface{}, key string) (decimal.Decimal, error) {
	v, ok := m[key]
	if !ok {
		return decimal.Zero, fmt.Errorf("missing required field %q", key)
	}
	switch val := v.(type) {
	case float64:
		return decimal.NewFromFloat(val), nil
	case string:
		d, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(val), ",", ""))
		if err != nil {
			return decimal.Zero, fmt.Errorf("field %q: %w", key, err)
		}
		return d, nil
	default:
		return decimal.Zero, fmt.Errorf("field %q has type %T, want number", key, v)
	}
}
