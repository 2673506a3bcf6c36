// Package dates converts the date tokens found in bank statements into
// calendar dates. Source statements are Nigerian-locale and day-first, so
// every ambiguous layout is tried DD/MM before anything else.
package dates

import (
	"strings"
	"time"
)

// ISO layout used for all normalized output.
const ISO = "2006-01-02"

// Full layouts carrying an explicit year, day-first.
var fullLayouts = []string{
	ISO,
	"02/01/2006", "2/1/2006",
	"02-01-2006", "2-1-2006",
	"02.01.2006",
	"02/01/06", "02-01-06",
	"02 Jan 2006", "2 Jan 2006",
	"02-Jan-2006", "2-Jan-2006",
	"02 January 2006", "2 January 2006",
}

// Layouts with the year omitted; the contextual year is substituted.
var yearlessLayouts = []string{
	"02/01", "2/1",
	"02-01", "2-1",
	"02 Jan", "2 Jan",
	"02-Jan", "2-Jan",
	"02 January", "2 January",
	"Jan 2", "Jan 02",
}

// Last-resort lenient layouts, standing in for a permissive native parse.
var permissiveLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"Jan 2, 2006",
	"January 2, 2006",
	"2006/01/02",
}

// Normalize parses a heterogeneous date token. contextYear fills in dates
// that carry no year; zero means the current year. The second return value
// is false when every parse attempt failed and the current date was used as
// the conservative default; a bad date must never abort a whole document,
// so Normalize itself never fails.
func Normalize(token string, contextYear int) (time.Time, bool) {
	s := strings.TrimSpace(strings.Trim(strings.TrimSpace(token), ",;:"))
	if s == "" {
		return today(), false
	}

	for _, layout := range fullLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	year := contextYear
	if year == 0 {
		year = time.Now().Year()
	}
	for _, layout := range yearlessLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(year, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}

	for _, layout := range permissiveLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}

	return today(), false
}

// NormalizeString is Normalize, formatted as YYYY-MM-DD.
func NormalizeString(token string, contextYear int) (string, bool) {
	t, ok := Normalize(token, contextYear)
	return t.Format(ISO), ok
}

func today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// excelEpoch is day zero of the spreadsheet serial date system. Serial 1 is
// 1899-12-31, and the off-by-one from Lotus 1-2-3's fictitious 1900-02-29 is
// absorbed by starting at Dec 30.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// FromExcelSerial converts a spreadsheet serial day number to a calendar date.
func FromExcelSerial(serial float64) time.Time {
	return excelEpoch.Add(time.Duration(serial * 24 * float64(time.Hour)))
}
