package apperrors

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by a generation run
var (
	// ErrInvalidInput is raised before a run starts: blank story, no
	// categories, missing credential, or a run already in flight
	ErrInvalidInput = errors.New("invalid input")

	// ErrCompletion means the completion service failed for some category
	ErrCompletion = errors.New("completion failed")

	// ErrParse means one response could not be turned into rows
	ErrParse = errors.New("unparsable response")

	// ErrWrite means the CSV destination could not be created or written
	ErrWrite = errors.New("write failed")
)

// AppError carries the failing operation and an optional user-facing message
type AppError struct {
	Op      string // Operation that failed
	Err     error  // Underlying error
	Message string // User-friendly message
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError
func New(op string, err error, message string) *AppError {
	return &AppError{
		Op:      op,
		Err:     err,
		Message: message,
	}
}

// Wrap wraps an error with an operation name
func Wrap(op string, err error) *AppError {
	return &AppError{
		Op:  op,
		Err: err,
	}
}

// Wrapf wraps an error with formatted context
func Wrapf(op string, err error, format string, args ...any) *AppError {
	return &AppError{
		Op:      op,
		Err:     err,
		Message: fmt.Sprintf(format, args...),
	}
}

// Kind wraps cause under a sentinel kind so both stay reachable via errors.Is.
func Kind(op string, kind, cause error, format string, args ...any) *AppError {
	return &AppError{
		Op:      op,
		Err:     fmt.Errorf("%w: %w", kind, cause),
		Message: fmt.Sprintf(format, args...),
	}
}

// UserMessage drops the operation prefix, leaving what a user can act on.
func UserMessage(err error) string {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return err.Error()
	}
	if appErr.Message == "" {
		return appErr.Err.Error()
	}
	switch appErr.Err {
	case ErrInvalidInput, ErrCompletion, ErrParse, ErrWrite:
		return appErr.Message
	}
	return appErr.Message + ": " + appErr.Err.Error()
}

// IsInvalidInput checks if an error is ErrInvalidInput
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsCompletion checks if an error is ErrCompletion
func IsCompletion(err error) bool {
	return errors.Is(err, ErrCompletion)
}

// IsParse checks if an error is ErrParse
func IsParse(err error) bool {
	return errors.Is(err, ErrParse)
}

// IsWrite checks if an error is ErrWrite
func IsWrite(err error) bool {
	return errors.Is(err, ErrWrite)
}

// Title returns a short heading for the error kind, suitable for the one
// outcome line the CLI prints after a run.
func Title(err error) string {
	switch {
	case err == nil:
		return ""
	case IsInvalidInput(err):
		return "Validation error"
	case IsCompletion(err), IsParse(err):
		return "Generation error"
	case IsWrite(err):
		return "Error writing to CSV"
	default:
		return "Error"
	}
}
