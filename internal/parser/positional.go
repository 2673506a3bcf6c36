package parser

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/taxmint/statements/internal/dates"
	"github.com/taxmint/statements/internal/domain"
)

// TextToken is one positioned text fragment from a rendered PDF page.
// Glyph decoding belongs to the extraction library; this parser only sees
// the resulting stream of (text, x, y, page).
type TextToken struct {
	Text string
	X    float64
	Y    float64
	Page int
}

// TokenSource yields the positioned tokens of a document.
type TokenSource interface {
	Tokens() ([]TextToken, error)
}

// dateToken matches a whole token that looks like a statement date, with or
// without a year: 15/03/2025, 15-03, 15-Mar, 2025-03-15.
var dateToken = regexp.MustCompile(`(?i)^(\d{4}-\d{2}-\d{2}|\d{1,2}[-/.]\d{1,2}([-/.]\d{2,4})?|\d{1,2}[- ](jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*([- ]\d{2,4})?)[,.]?$`)

// Positional reconstructs transactions from the rendering geometry of a PDF
// text stream. Of the amount candidates on a row it takes the first after the
// date; the generic text parser takes the last. Each parser keeps its own
// selection rule.
type Positional struct {
	log zerolog.Logger
}

func NewPositional(log zerolog.Logger) *Positional {
	return &Positional{log: log}
}

type tokenRow struct {
	page   int
	y      float64
	tokens []TextToken
}

func (r tokenRow) text() string {
	parts := make([]string, 0, len(r.tokens))
	for _, t := range r.tokens {
		parts = append(parts, t.Text)
	}
	return strings.Join(parts, " ")
}

// Parse clusters tokens into rows, seeds the contextual year from the first
// rows, and extracts one candidate per date-bearing row. Continuation rows
// (no date, no number, non-empty text) extend the previous description.
func (p *Positional) Parse(src TokenSource, docCtx *domain.DocumentContext) ([]domain.TransactionCandidate, error) {
	tokens, err := src.Tokens()
	if err != nil {
		return nil, err
	}

	rows := clusterRows(tokens)

	if docCtx.Year == 0 {
		lines := make([]string, 0, len(rows))
		for _, r := range rows {
			lines = append(lines, r.text())
		}
		docCtx.Year = InferYear(lines)
	}

	var out []domain.TransactionCandidate
	for i := 0; i < len(rows); i++ {
		cand, ok := p.parseRow(rows[i], docCtx)
		if !ok {
			p.log.Debug().Str("row", rows[i].text()).Msg("discarding row without date or amount")
			continue
		}

		// Multi-line narration: absorb following rows that carry neither a
		// date nor a numeric token.
		for i+1 < len(rows) && isContinuation(rows[i+1]) {
			cand.Description = strings.TrimSpace(cand.Description + " " + rows[i+1].text())
			i++
		}

		if cand.Valid() {
			out = append(out, cand)
		}
	}
	return out, nil
}

// clusterRows groups tokens by page and y rounded to one decimal place
// (absorbing sub-pixel jitter), orders rows top-to-bottom per page, and
// sorts each row left-to-right.
func clusterRows(tokens []TextToken) []tokenRow {
	type rowKey struct {
		page int
		y    float64
	}
	groups := make(map[rowKey][]TextToken)
	for _, t := range tokens {
		if strings.TrimSpace(t.Text) == "" {
			continue
		}
		key := rowKey{page: t.Page, y: math.Round(t.Y*10) / 10}
		groups[key] = append(groups[key], t)
	}

	rows := make([]tokenRow, 0, len(groups))
	for key, toks := range groups {
		sort.Slice(toks, func(a, b int) bool { return toks[a].X < toks[b].X })
		rows = append(rows, tokenRow{page: key.page, y: key.y, tokens: toks})
	}
	// PDF y runs bottom-to-top, so descending y is reading order.
	sort.Slice(rows, func(a, b int) bool {
		if rows[a].page != rows[b].page {
			return rows[a].page < rows[b].page
		}
		return rows[a].y > rows[b].y
	})
	return rows
}

func (p *Positional) parseRow(row tokenRow, docCtx *domain.DocumentContext) (domain.TransactionCandidate, bool) {
	var cand domain.TransactionCandidate

	dateIdx := -1
	for i, t := range row.tokens {
		if dateToken.MatchString(strings.TrimSpace(t.Text)) {
			dateIdx = i
			break
		}
	}
	if dateIdx == -1 {
		return cand, false
	}

	// First numeric token after the date is the transaction amount.
	amountIdx := -1
	for i := dateIdx + 1; i < len(row.tokens); i++ {
		if IsNumericToken(row.tokens[i].Text) {
			amountIdx = i
			break
		}
	}
	if amountIdx == -1 {
		return cand, false
	}
	amount, _, ok := CleanAmount(row.tokens[amountIdx].Text)
	if !ok || !amount.IsPositive() {
		return cand, false
	}

	date, ok := dates.Normalize(row.tokens[dateIdx].Text, docCtx.Year)
	if !ok {
		return cand, false
	}

	// Description is everything strictly between the date and the amount.
	parts := make([]string, 0, amountIdx-dateIdx-1)
	for i := dateIdx + 1; i < amountIdx; i++ {
		parts = append(parts, row.tokens[i].Text)
	}

	cand.Date = date
	cand.Description = strings.TrimSpace(strings.Join(parts, " "))
	cand.Amount = amount
	cand.Direction = rowDirection(row)
	cand.Confidence = domain.ConfidenceStructural
	cand.Source = domain.SourcePositionalPDF
	return cand, true
}

// rowDirection checks explicit CR/DR suffix markers before falling back to
// narration keywords.
func rowDirection(row tokenRow) domain.Direction {
	for _, t := range row.tokens {
		switch strings.ToUpper(strings.TrimSpace(t.Text)) {
		case "CR":
			return domain.DirectionIncome
		case "DR":
			return domain.DirectionExpense
		}
	}
	return DetectDirection(row.text())
}

// isContinuation reports whether a row belongs to the previous row's
// narration: non-empty text with neither a date token nor a numeric token.
func isContinuation(row tokenRow) bool {
	if strings.TrimSpace(row.text()) == "" {
		return false
	}
	for _, t := range row.tokens {
		trimmed := strings.TrimSpace(t.Text)
		if dateToken.MatchString(trimmed) || IsNumericToken(trimmed) {
			return false
		}
	}
	return true
}
