package testcase

import (
	"strings"
	"unicode/utf8"

	"github.com/SaadHafeez466/qa-app/internal/apperrors"
)

const (
	headerToken    = "Test Case ID"
	separatorToken = "---"
	delimiter      = "|"
	minSegments    = 3
)

// ParseResponse turns the model's pipe-delimited table into rows tagged
// with category. Lines that are blank, the header, table separators, or have
// fewer than three segments are skipped. The first three segments bind to ID,
// description and expected result in order; the rest are ignored. Border
// pipes are not stripped, so "| A | B | C |" yields an empty ID.
func ParseResponse(text string, category Category) ([]Row, error) {
	// the only ParseFailure; the line rules below accept any text
	if !utf8.ValidString(text) {
		return nil, apperrors.Wrapf("testcase.ParseResponse", apperrors.ErrParse,
			"response for %q is not valid UTF-8", category)
	}

	var rows []Row
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.Contains(line, headerToken) || strings.Contains(line, separatorToken) {
			continue
		}

		parts := strings.Split(line, delimiter)
		if len(parts) < minSegments {
			continue
		}

		rows = append(rows, Row{
			ID:             strings.TrimSpace(parts[0]),
			Category:       category,
			Description:    strings.TrimSpace(parts[1]),
			ExpectedResult: strings.TrimSpace(parts[2]),
		})
	}
	return rows, nil
}
