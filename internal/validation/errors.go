package validation

import (
	"errors"
	"fmt"
	"strings"
)

// FieldError is a single problem with one submitted form field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects field errors for one submission.
type ValidationError struct {
	Errors []FieldError `json:"errors"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records a field error.
func (e *ValidationError) Add(field, message string) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: message})
}

// Fields returns the names of the failing fields, in the order first reported.
func (e *ValidationError) Fields() []string {
	seen := make(map[string]bool, len(e.Errors))
	var out []string
	for _, fe := range e.Errors {
		if !seen[fe.Field] {
			seen[fe.Field] = true
			out = append(out, fe.Field)
		}
	}
	return out
}

// For returns the messages recorded against field.
func (e *ValidationError) For(field string) []string {
	if e == nil {
		return nil
	}
	var out []string
	for _, fe := range e.Errors {
		if fe.Field == field {
			out = append(out, fe.Message)
		}
	}
	return out
}

// ByField groups the messages by field name. A nil receiver yields nil.
func (e *ValidationError) ByField() map[string][]string {
	if e == nil {
		return nil
	}
	out := make(map[string][]string, len(e.Errors))
	for _, fe := range e.Errors {
		out[fe.Field] = append(out[fe.Field], fe.Message)
	}
	return out
}

// Err returns e as an error, or nil when nothing was recorded.
func (e *ValidationError) Err() error {
	if e == nil || len(e.Errors) == 0 {
		return nil
	}
	return e
}

// SalaryError reports a salary value that is not an integer.
type SalaryError struct {
	Raw string
	Err error
}

func (e *SalaryError) Error() string {
	return fmt.Sprintf("salary must be a number, got %q", e.Raw)
}

func (e *SalaryError) Unwrap() error { return e.Err }

// NotFoundError reports a referenced id that does not resolve.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q does not exist", e.Kind, e.ID)
}

// Authorization failures. Both short-circuit a request before any form parsing.
var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("staff privilege required")
)
