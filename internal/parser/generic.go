package parser

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/taxmint/statements/internal/dates"
	"github.com/taxmint/statements/internal/domain"
)

// Lines whose leftover description is shorter than this are noise.
const minDescriptionLen = 4

// dateInLine finds a date anywhere in a free-text line. Longer alternatives
// come first so "15/03/2025" is not clipped to "15/03".
var dateInLine = regexp.MustCompile(`(?i)\b(\d{4}-\d{2}-\d{2}|\d{1,2}[-/.]\d{1,2}[-/.]\d{2,4}|\d{1,2}[- ](jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*([- ]\d{2,4})?|\d{1,2}[-/.]\d{1,2})\b`)

// amountInLine finds currency-decorated numeric runs.
var amountInLine = regexp.MustCompile(`[₦$£€]?\s?\d[\d,]*(\.\d{1,2})?`)

// Generic is the last-resort structural parser for plain text without a
// reliable layout. Of the numeric runs on a line it takes the LAST as the
// amount; the positional parser takes the first numeric after the date.
// Each parser keeps its own selection rule.
type Generic struct {
	log zerolog.Logger
}

func NewGeneric(log zerolog.Logger) *Generic {
	return &Generic{log: log}
}

// Parse extracts one candidate per date-bearing line.
func (g *Generic) Parse(text string, docCtx *domain.DocumentContext) []domain.TransactionCandidate {
	lines := strings.Split(text, "\n")

	if docCtx.Year == 0 {
		docCtx.Year = InferYear(lines)
	}

	var out []domain.TransactionCandidate
	for i, line := range lines {
		cand, ok := g.parseLine(line, docCtx)
		if !ok {
			continue
		}
		if !cand.Valid() {
			g.log.Debug().Int("line", i).Msg("discarding invalid candidate")
			continue
		}
		out = append(out, cand)
	}
	return out
}

func (g *Generic) parseLine(line string, docCtx *domain.DocumentContext) (domain.TransactionCandidate, bool) {
	var cand domain.TransactionCandidate

	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return cand, false
	}

	dateMatch := dateInLine.FindString(trimmed)
	if dateMatch == "" {
		return cand, false
	}
	date, ok := dates.Normalize(dateMatch, docCtx.Year)
	if !ok {
		return cand, false
	}

	rest := strings.Replace(trimmed, dateMatch, "", 1)

	matches := amountInLine.FindAllString(rest, -1)
	var amountStr string
	for i := len(matches) - 1; i >= 0; i-- {
		amount, _, ok := CleanAmount(matches[i])
		if ok && amount.IsPositive() {
			amountStr = matches[i]
			cand.Amount = amount
			break
		}
	}
	if amountStr == "" {
		return cand, false
	}

	// Strip the amount from the end of the line; what remains is narration.
	if idx := strings.LastIndex(rest, amountStr); idx != -1 {
		rest = rest[:idx] + rest[idx+len(amountStr):]
	}
	desc := strings.Join(strings.Fields(rest), " ")
	if len(desc) < minDescriptionLen {
		return cand, false
	}

	cand.Date = date
	cand.Description = desc
	cand.Direction = lineDirection(trimmed)
	cand.Confidence = domain.ConfidenceStructural
	cand.Source = domain.SourceGenericText
	return cand, true
}

// lineDirection honors explicit CR/DR markers before keyword heuristics.
func lineDirection(line string) domain.Direction {
	for _, word := range strings.Fields(strings.ToUpper(line)) {
		switch strings.Trim(word, ".,") {
		case "CR":
			return domain.DirectionIncome
		case "DR":
			return domain.DirectionExpense
		}
	}
	return DetectDirection(line)
}
