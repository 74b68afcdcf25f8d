package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the store.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing required field, end date before start date).
// Handlers should map this to HTTP 400.
var ErrValidation = errors.New("validation error")

// ErrPrecondition is returned when a booking is attempted against a car that
// does not exist or is not available. Handlers should map this to HTTP 400.
var ErrPrecondition = errors.New("precondition failed")

// ErrConflict is returned when a uniqueness rule is violated.
var ErrConflict = errors.New("conflict")

// ErrUsernameTaken refines ErrConflict for a duplicate username.
var ErrUsernameTaken = fmt.Errorf("%w: username already exists", ErrConflict)

// ErrUnauthenticated is returned for bad credentials and missing or invalid
// sessions. The message is deliberately generic.
var ErrUnauthenticated = errors.New("unauthenticated")

// ErrForbidden is returned when a valid session lacks the required role.
var ErrForbidden = errors.New("forbidden")

// Refinements of ErrPrecondition. errors.Is matches both the refinement and
// ErrPrecondition itself.
var (
	ErrCarMissing     = fmt.Errorf("%w: car does not exist", ErrPrecondition)
	ErrCarUnavailable = fmt.Errorf("%w: car is not available", ErrPrecondition)
)

// FieldError describes one rejected input field. Param carries the rule
// argument, e.g. "2" for min=2.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message"`
}

// ValidationError carries field-level details for a rejected input.
// errors.Is(err, ErrValidation) reports true for any *ValidationError.
type ValidationError struct {
	Fields []FieldError
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, rule, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Rule: rule, Message: message}}}
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation error: " + strings.Join(parts, "; ")
}

// Is lets errors.Is(err, ErrValidation) match a *ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
