package parser

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFTokenSource adapts an already-extracted PDF text stream to the
// TokenSource interface. It relies on the pdf library for glyph decoding and
// exposes only positioned text fragments; everything layout-related happens
// in the positional parser.
type PDFTokenSource struct {
	data []byte
}

func NewPDFTokenSource(data []byte) *PDFTokenSource {
	return &PDFTokenSource{data: data}
}

// Tokens reads every page's text objects. Fragments that sit on the same
// baseline within a small horizontal gap are merged into one token so words
// split by the renderer come back together; larger gaps are column breaks
// and stay separate.
func (s *PDFTokenSource) Tokens() ([]TextToken, error) {
	reader, err := pdf.NewReader(bytes.NewReader(s.data), int64(len(s.data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	var tokens []TextToken
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		content := page.Content()

		var current *TextToken
		var lastX, lastW float64
		for _, t := range content.Text {
			if strings.TrimSpace(t.S) == "" {
				current = nil
				continue
			}
			sameRun := current != nil &&
				current.Page == pageNum &&
				current.Y == t.Y &&
				t.X-(lastX+lastW) < mergeGap
			if sameRun {
				current.Text += t.S
			} else {
				tokens = append(tokens, TextToken{Text: t.S, X: t.X, Y: t.Y, Page: pageNum})
				current = &tokens[len(tokens)-1]
			}
			lastX, lastW = t.X, t.W
		}
	}
	return tokens, nil
}

// mergeGap is the horizontal distance, in text-space units, below which two
// fragments on one baseline are one word.
const mergeGap = 2.0

// Text flattens the PDF into plain text, one clustered row per line, for
// consumers that cannot use positions.
func (s *PDFTokenSource) Text() (string, error) {
	tokens, err := s.Tokens()
	if err != nil {
		return "", err
	}
	rows := clusterRows(tokens)
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, row.text())
	}
	return strings.Join(lines, "\n"), nil
}
