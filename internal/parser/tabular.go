package parser

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/taxmint/statements/internal/dates"
	"github.com/taxmint/statements/internal/domain"
)

// Header detection scans at most this many rows for a keyword-scoring hit.
const headerScanRows = 50

// A row needs at least this many header keyword hits to be the header.
const headerMinScore = 3

var headerKeywords = []string{
	"date", "description", "narration", "amount",
	"debit", "credit", "balance", "value", "remarks",
	"money in", "money out",
}

// Tabular extracts transaction candidates from spreadsheet exports.
type Tabular struct {
	log zerolog.Logger
}

func NewTabular(log zerolog.Logger) *Tabular {
	return &Tabular{log: log}
}

// ParseWorkbook decodes an xlsx/xls workbook and parses its first sheet.
func (t *Tabular) ParseWorkbook(data []byte, docCtx *domain.DocumentContext) ([]domain.TransactionCandidate, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return t.ParseRows(rows, docCtx), nil
}

// WorkbookText flattens the first sheet into tab-separated lines, for
// consumers that want plain text instead of parsed rows.
func WorkbookText(data []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return "", fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, strings.Join(row, "\t"))
	}
	return strings.Join(lines, "\n"), nil
}

// ParseCSV decodes comma-separated data into the same row pipeline.
func (t *Tabular) ParseCSV(data []byte, docCtx *domain.DocumentContext) ([]domain.TransactionCandidate, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1 // bank exports pad rows unevenly
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return t.ParseRows(rows, docCtx), nil
}

// columnRoles holds the inferred index per role; -1 means absent.
type columnRoles struct {
	date   int
	desc   int
	credit int
	debit  int
	amount int
	txType int
}

// ParseRows runs header detection, column role inference and row extraction.
// Rows lacking a parseable date or amount are skipped, never fatal.
func (t *Tabular) ParseRows(rows [][]string, docCtx *domain.DocumentContext) []domain.TransactionCandidate {
	if len(rows) == 0 {
		return nil
	}

	if docCtx.Year == 0 {
		var flat []string
		for _, row := range rows {
			flat = append(flat, strings.Join(row, " "))
		}
		docCtx.Year = InferYear(flat)
	}

	headerIdx := detectHeader(rows)
	roles := inferRoles(rows[headerIdx])

	var out []domain.TransactionCandidate
	for i := headerIdx + 1; i < len(rows); i++ {
		cand, ok := t.parseRow(rows[i], roles, docCtx)
		if !ok {
			t.log.Debug().Int("row", i).Msg("skipping row without date or amount")
			continue
		}
		out = append(out, cand)
	}
	return out
}

// detectHeader returns the index of the first row within the scan window
// scoring at least headerMinScore keyword hits, defaulting to row 0.
func detectHeader(rows [][]string) int {
	limit := len(rows)
	if limit > headerScanRows {
		limit = headerScanRows
	}
	for i := 0; i < limit; i++ {
		joined := strings.ToLower(strings.Join(rows[i], " "))
		score := 0
		for _, kw := range headerKeywords {
			if strings.Contains(joined, kw) {
				score++
			}
		}
		if score >= headerMinScore {
			return i
		}
	}
	return 0
}

// inferRoles maps header cells to column roles by substring matching.
// Separate credit/debit columns take precedence over a single amount column.
func inferRoles(header []string) columnRoles {
	roles := columnRoles{date: -1, desc: -1, credit: -1, debit: -1, amount: -1, txType: -1}
	for i, cell := range header {
		h := strings.ToLower(strings.TrimSpace(cell))
		switch {
		case roles.date == -1 && strings.Contains(h, "date"):
			roles.date = i
		case roles.desc == -1 && (strings.Contains(h, "description") || strings.Contains(h, "narration") ||
			strings.Contains(h, "details") || strings.Contains(h, "remarks") || strings.Contains(h, "particulars")):
			roles.desc = i
		case roles.credit == -1 && (strings.Contains(h, "credit") || strings.Contains(h, "money in") ||
			strings.Contains(h, "paid in") || strings.Contains(h, "inflow") || strings.Contains(h, "deposit")):
			roles.credit = i
		case roles.debit == -1 && (strings.Contains(h, "debit") || strings.Contains(h, "money out") ||
			strings.Contains(h, "paid out") || strings.Contains(h, "outflow") || strings.Contains(h, "withdrawal")):
			roles.debit = i
		case roles.txType == -1 && (strings.Contains(h, "type") || strings.Contains(h, "dr/cr") ||
			strings.Contains(h, "indicator")):
			roles.txType = i
		case roles.amount == -1 && (strings.Contains(h, "amount") || strings.Contains(h, "value")):
			roles.amount = i
		}
	}
	return roles
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func (t *Tabular) parseRow(row []string, roles columnRoles, docCtx *domain.DocumentContext) (domain.TransactionCandidate, bool) {
	var cand domain.TransactionCandidate

	dateCell := cell(row, roles.date)
	if dateCell == "" {
		return cand, false
	}
	date, ok := parseCellDate(dateCell, docCtx.Year)
	if !ok {
		return cand, false
	}

	desc := cell(row, roles.desc)
	if desc == "" {
		return cand, false
	}

	// Credit/debit column pair wins over a single amount column.
	creditCell := cell(row, roles.credit)
	debitCell := cell(row, roles.debit)
	switch {
	case roles.credit >= 0 && creditCell != "":
		amount, _, ok := CleanAmount(creditCell)
		if !ok || !amount.IsPositive() {
			return cand, false
		}
		cand.Amount = amount
		cand.Direction = domain.DirectionIncome
	case roles.debit >= 0 && debitCell != "":
		amount, _, ok := CleanAmount(debitCell)
		if !ok || !amount.IsPositive() {
			return cand, false
		}
		cand.Amount = amount
		cand.Direction = domain.DirectionExpense
	case roles.amount >= 0:
		amount, negative, ok := CleanAmount(cell(row, roles.amount))
		if !ok || !amount.IsPositive() {
			return cand, false
		}
		cand.Amount = amount
		cand.Direction = directionFromIndicator(cell(row, roles.txType), negative, desc)
	default:
		return cand, false
	}

	cand.Date = date
	cand.Description = desc
	cand.Confidence = domain.ConfidenceStructural
	cand.Source = domain.SourceTabular
	return cand, cand.Valid()
}

// directionFromIndicator resolves direction for single-amount-column sheets:
// an explicit type/indicator cell first, then the amount's own sign, then
// description keywords (expense when ambiguous).
func directionFromIndicator(indicator string, negative bool, desc string) domain.Direction {
	switch strings.ToLower(strings.TrimSpace(indicator)) {
	case "cr", "credit", "c", "in":
		return domain.DirectionIncome
	case "dr", "debit", "d", "out":
		return domain.DirectionExpense
	}
	if negative {
		return domain.DirectionExpense
	}
	return DetectDirection(desc)
}

// Serial day numbers between these bounds cover 1990 through 2099; anything
// else that looks numeric is not a date cell.
const (
	minSerialDate = 32874 // 1990-01-01
	maxSerialDate = 73050 // 2099-12-31
)

// parseCellDate handles both textual dates and raw spreadsheet serials.
func parseCellDate(cellText string, contextYear int) (time.Time, bool) {
	if serial, err := strconv.ParseFloat(cellText, 64); err == nil {
		if serial >= minSerialDate && serial <= maxSerialDate {
			return dates.FromExcelSerial(serial), true
		}
		return time.Time{}, false
	}
	return dates.Normalize(cellText, contextYear)
}
