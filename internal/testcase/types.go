package testcase

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/SaadHafeez466/qa-app/internal/apperrors"
)

// MaxNarrativeLength is the character cap on a user story.
const MaxNarrativeLength = 5000

// Category is one of the fixed test case classifications.
type Category string

const (
	CategoryFunctional    Category = "Functional test cases"
	CategoryAcceptance    Category = "Acceptance test cases"
	CategoryNegative      Category = "Negative test cases"
	CategoryEdge          Category = "Edge cases"
	CategoryValidation    Category = "Error and validation test cases"
	CategoryPerformance   Category = "Performance/load test cases"
	CategorySecurity      Category = "Security-related test cases"
	CategoryCrossPlatform Category = "Cross-platform test cases"
)

// allCategories is the display order.
var allCategories = []Category{
	CategoryFunctional,
	CategoryAcceptance,
	CategoryNegative,
	CategoryEdge,
	CategoryValidation,
	CategoryPerformance,
	CategorySecurity,
	CategoryCrossPlatform,
}

// shortNames are the primary aliases, one per category.
var shortNames = map[Category]string{
	CategoryFunctional:    "functional",
	CategoryAcceptance:    "acceptance",
	CategoryNegative:      "negative",
	CategoryEdge:          "edge",
	CategoryValidation:    "error",
	CategoryPerformance:   "performance",
	CategorySecurity:      "security",
	CategoryCrossPlatform: "cross-platform",
}

var extraAliases = map[string]Category{
	"validation": CategoryValidation,
	"load":       CategoryPerformance,
}

// Categories returns every category in display order.
func Categories() []Category {
	out := make([]Category, len(allCategories))
	copy(out, allCategories)
	return out
}

// Alias returns the short name accepted by ParseCategory.
func (c Category) Alias() string {
	return shortNames[c]
}

// IsValid reports whether c belongs to the fixed set.
func (c Category) IsValid() bool {
	for _, known := range allCategories {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string {
	return string(c)
}

// ParseCategory resolves a full label or short alias, case-insensitively.
func ParseCategory(raw string) (Category, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return "", apperrors.New("testcase.ParseCategory", apperrors.ErrInvalidInput, "empty category")
	}
	if c, ok := extraAliases[key]; ok {
		return c, nil
	}
	for _, c := range allCategories {
		if strings.ToLower(string(c)) == key || shortNames[c] == key {
			return c, nil
		}
	}
	return "", apperrors.New("testcase.ParseCategory", apperrors.ErrInvalidInput,
		fmt.Sprintf("unknown category %q", raw))
}

// Request is the input of one generation run.
type Request struct {
	Narrative  string
	Categories []Category
}

// Validate checks the request before any run starts.
func (r Request) Validate() error {
	const op = "testcase.Request.Validate"

	if strings.TrimSpace(r.Narrative) == "" {
		return apperrors.New(op, apperrors.ErrInvalidInput, "please enter a user story")
	}
	if n := utf8.RuneCountInString(r.Narrative); n > MaxNarrativeLength {
		return apperrors.New(op, apperrors.ErrInvalidInput,
			fmt.Sprintf("user story is %d characters, limit is %d", n, MaxNarrativeLength))
	}
	if len(r.Categories) == 0 {
		return apperrors.New(op, apperrors.ErrInvalidInput, "please select at least one test case category")
	}
	for _, c := range r.Categories {
		if !c.IsValid() {
			return apperrors.New(op, apperrors.ErrInvalidInput, fmt.Sprintf("unknown category %q", c))
		}
	}
	return nil
}

// Row is one parsed test case.
type Row struct {
	ID             string
	Category       Category
	Description    string
	ExpectedResult string
}

// Result is the ordered output of one run.
type Result []Row
