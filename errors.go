package abacus

import (
	"errors"
	"fmt"
	"strings"
)

// Calculation errors.
var (
	// ErrDivisionByZero is returned when the divisor is exactly zero.
	ErrDivisionByZero = errors.New("division by zero")

	// ErrInvalidCalculation is returned when a result is not a finite number.
	ErrInvalidCalculation = errors.New("invalid calculation")

	// ErrInvalidInput is returned for the square root of a negative number.
	ErrInvalidInput = errors.New("invalid input")
)

// displayMessages maps calculation errors to the text shown after "Error: ".
var displayMessages = map[error]string{
	ErrDivisionByZero:     "Division by zero",
	ErrInvalidCalculation: "Invalid calculation",
	ErrInvalidInput:       "Invalid input",
}

// Input and history errors.
var (
	// ErrUnknownToken is returned when a button value or action has no token.
	ErrUnknownToken = errors.New("unknown token")

	// ErrEntryNotFound is returned when a history index is out of range.
	ErrEntryNotFound = errors.New("history entry not found")

	// ErrMalformedEntry is returned when a history entry carries no result.
	ErrMalformedEntry = errors.New("history entry has no result")
)

// Store errors.
var (
	// ErrNotFound is returned when a key has no record in the store.
	ErrNotFound = errors.New("key not found")

	// ErrInvalidKey is returned when a key is empty.
	ErrInvalidKey = errors.New("invalid key")

	// ErrCorruptRecord is returned when a record fails its checksum.
	ErrCorruptRecord = errors.New("corrupt record")
)

// CalcError is a failed computation.
// It unwraps to one of ErrDivisionByZero, ErrInvalidCalculation or ErrInvalidInput.
type CalcError struct {
	Op  Operator
	Err error
}

// Error implements the error interface.
func (e *CalcError) Error() string {
	if e.Op == OpNone {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying sentinel error.
func (e *CalcError) Unwrap() error {
	return e.Err
}

// Message returns the user-facing message, e.g. "Division by zero".
func (e *CalcError) Message() string {
	if msg, ok := displayMessages[e.Err]; ok {
		return msg
	}
	return e.Err.Error()
}

// Display returns the text for the main display.
func (e *CalcError) Display() string {
	return "Error: " + e.Message()
}

func calcError(op Operator, err error) error {
	return &CalcError{Op: op, Err: err}
}

// ValidationError represents one or more validation errors that occurred
// while checking a configuration.
type ValidationError struct {
	Errors []error
}

// Error implements the error interface.
func (ve *ValidationError) Error() string {
	if len(ve.Errors) == 0 {
		return "validation failed"
	}
	if len(ve.Errors) == 1 {
		return fmt.Sprintf("validation failed: %v", ve.Errors[0])
	}

	var buf strings.Builder
	buf.WriteString(fmt.Sprintf("validation failed with %d errors:\n", len(ve.Errors)))
	for i, err := range ve.Errors {
		fmt.Fprintf(&buf, "  %d. %v\n", i+1, err)
	}
	return buf.String()
}

// Unwrap returns the underlying errors for use with errors.Is and errors.As.
func (ve *ValidationError) Unwrap() []error {
	return ve.Errors
}

// NewValidationError creates a ValidationError from a slice of errors.
// Returns nil if the slice is empty.
func NewValidationError(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{Errors: errs}
}
