package parser

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/taxmint/statements/internal/domain"
)

// currencyCleaner strips the decorations Nigerian statements wrap around
// figures: currency symbols, thousands separators and padding.
var currencyCleaner = strings.NewReplacer(
	"₦", "", "NGN", "", "$", "", "£", "", "€", "",
	",", "", " ", "", " ", "",
)

var pureNumber = regexp.MustCompile(`^-?\d+(\.\d+)?$`)

// CleanAmount parses a statement figure into a positive decimal magnitude.
// Parentheses and a leading minus both mean money out; the sign is reported
// separately so direction handling stays with the caller.
func CleanAmount(raw string) (amount decimal.Decimal, negative bool, ok bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, false, false
	}

	upper := strings.ToUpper(s)
	if strings.HasSuffix(upper, "CR") || strings.HasSuffix(upper, "DR") {
		negative = strings.HasSuffix(upper, "DR")
		s = strings.TrimSpace(s[:len(s)-2])
	}
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	s = currencyCleaner.Replace(s)
	if !pureNumber.MatchString(s) {
		return decimal.Zero, false, false
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false, false
	}
	if d.IsNegative() {
		negative = true
		d = d.Neg()
	}
	return d, negative, true
}

// IsNumericToken reports whether a token, once cleaned, is a plain number.
func IsNumericToken(token string) bool {
	_, _, ok := CleanAmount(token)
	return ok
}

var yearToken = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// InferYear scans statement header lines for the first plausible 4-digit
// year. It looks at no more than the first 50 entries; zero means none found.
func InferYear(lines []string) int {
	limit := len(lines)
	if limit > 50 {
		limit = 50
	}
	for _, line := range lines[:limit] {
		for _, m := range yearToken.FindAllString(line, -1) {
			y := int(m[0]-'0')*1000 + int(m[1]-'0')*100 + int(m[2]-'0')*10 + int(m[3]-'0')
			if y > 1990 && y < 2100 {
				return y
			}
		}
	}
	return 0
}

var incomeHints = []string{"credit", "deposit", "salary", "inward", "reversal", "received"}
var expenseHints = []string{"debit", "withdrawal", "pos", "atm", "charge", "outward"}

// DetectDirection guesses money-in/money-out from narration keywords,
// defaulting to expense when nothing matches.
func DetectDirection(text string) domain.Direction {
	lower := strings.ToLower(text)
	for _, kw := range incomeHints {
		if strings.Contains(lower, kw) {
			return domain.DirectionIncome
		}
	}
	for _, kw := range expenseHints {
		if strings.Contains(lower, kw) {
			return domain.DirectionExpense
		}
	}
	return domain.DirectionExpense
}
