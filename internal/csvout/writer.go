package csvout

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/SaadHafeez466/qa-app/internal/apperrors"
	"github.com/SaadHafeez466/qa-app/internal/testcase"
)

// DefaultPath is the output file used when none is given.
const DefaultPath = "test_cases_output.csv"

// Header is the fixed column order of the output file.
var Header = []string{"Test Case ID", "Category", "Test case", "Expected Result"}

// Write stores rows as CSV at basePath, or at the first free
// <stem>_N<ext> sibling if basePath exists. It returns the path written,
// or "" when rows is empty and nothing was created.
//
// Path selection checks then creates, so concurrent writers to the same
// directory may collide on a name; the create then fails instead of
// overwriting.
func Write(rows []testcase.Row, basePath string) (string, error) {
	const op = "csvout.Write"

	if len(rows) == 0 {
		return "", nil
	}

	data, err := encode(rows)
	if err != nil {
		return "", apperrors.Kind(op, apperrors.ErrWrite, err, "encoding %d rows", len(rows))
	}

	path, err := NextPath(basePath)
	if err != nil {
		return "", apperrors.Kind(op, apperrors.ErrWrite, err, "choosing a file name for %s", basePath)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", apperrors.Kind(op, apperrors.ErrWrite, err, "creating %s", path)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", apperrors.Kind(op, apperrors.ErrWrite, err, "writing %s", path)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", apperrors.Kind(op, apperrors.ErrWrite, err, "closing %s", path)
	}

	return path, nil
}

// NextPath returns basePath if nothing exists there, otherwise the first
// <stem>_1<ext>, <stem>_2<ext>, ... that is free. A bare file name
// resolves against the current directory.
func NextPath(basePath string) (string, error) {
	if strings.TrimSpace(basePath) == "" {
		basePath = DefaultPath
	}

	dir := filepath.Dir(basePath)
	base := filepath.Base(basePath)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	candidate := filepath.Join(dir, base)
	for n := 1; ; n++ {
		_, err := os.Stat(candidate)
		if errors.Is(err, os.ErrNotExist) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
		candidate = filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, n, ext))
	}
}

func encode(rows []testcase.Row) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(Header); err != nil {
		return nil, err
	}
	for _, r := range rows {
		if err := w.Write([]string{r.ID, string(r.Category), r.Description, r.ExpectedResult}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Read loads a file produced by Write. The header row is checked and
// dropped.
func Read(path string) ([]testcase.Row, error) {
	const op = "csvout.Read"

	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.Wrap(op, err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, apperrors.Wrap(op, err)
	}
	if len(records) == 0 || len(records[0]) != len(Header) {
		return nil, apperrors.New(op, apperrors.ErrInvalidInput, "missing or malformed header")
	}
	for i, col := range Header {
		if records[0][i] != col {
			return nil, apperrors.New(op, apperrors.ErrInvalidInput,
				fmt.Sprintf("column %d is %q, want %q", i+1, records[0][i], col))
		}
	}

	rows := make([]testcase.Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		rows = append(rows, testcase.Row{
			ID:             rec[0],
			Category:       testcase.Category(rec[1]),
			Description:    rec[2],
			ExpectedResult: rec[3],
		})
	}
	return rows, nil
}
