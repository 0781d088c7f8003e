package config

import (
	"fmt"
	"strings"

	"github.com/SaadHafeez466/qa-app/internal/apperrors"
	"github.com/SaadHafeez466/qa-app/internal/completion"
)

// ValidationError names the offending config key
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found in one pass.
type ValidationErrors []ValidationError

// Error joins the problems on one line so they fit the outcome message.
func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i := range e {
		msgs[i] = e[i].Error()
	}
	return strings.Join(msgs, "; ")
}

// Validator accumulates field errors
type Validator struct {
	errors ValidationErrors
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{errors: ValidationErrors{}}
}

// AddError adds a validation error
func (v *Validator) AddError(field, message string) {
	v.errors = append(v.errors, ValidationError{Field: field, Message: message})
}

// Check records message against field unless ok holds.
func (v *Validator) Check(ok bool, field, message string) {
	if !ok {
		v.AddError(field, message)
	}
}

// HasErrors returns true if there are any validation errors
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns all validation errors
func (v *Validator) Errors() ValidationErrors {
	return v.errors
}

// Error returns the collected errors, or nil.
func (v *Validator) Error() error {
	if !v.HasErrors() {
		return nil
	}
	return v.errors
}

// Validate checks every section; all problems are reported together.
func (c *Config) Validate() error {
	v := NewValidator()

	name := c.App.Name
	v.Check(name != "", "app.name", "is required")
	v.Check(name == "" || !strings.ContainsAny(name, " \t\n\r"), "app.name", "must not contain whitespace")

	switch strings.ToLower(c.Completion.Provider) {
	case completion.ProviderOpenAI, completion.ProviderGemini, completion.ProviderMock:
	case "":
		v.AddError("completion.provider", "is required")
	default:
		v.AddError("completion.provider", fmt.Sprintf("%q is not one of openai, gemini, mock", c.Completion.Provider))
	}
	v.Check(c.Completion.Temperature >= 0 && c.Completion.Temperature <= 2, "completion.temperature", "must be between 0 and 2")
	v.Check(c.Completion.MaxTokens > 0, "completion.max_tokens", "must be positive")
	v.Check(c.Completion.Timeout > 0, "completion.timeout", "must be positive")

	v.Check(strings.TrimSpace(c.Output.Path) != "", "output.path", "is required")

	if err := v.Error(); err != nil {
		return apperrors.Wrap("config.Validate", fmt.Errorf("%w: %w", apperrors.ErrInvalidInput, err))
	}
	return nil
}
