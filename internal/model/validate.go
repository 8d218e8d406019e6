package model

import (
	"fmt"
	"strings"
)

// ValidationError holds a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation failure on a named field.
type FieldError struct {
	Field   string
	Message string
}

// Error formats the validation error as a semicolon-separated list of field messages.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HasErrors reports whether the validation error contains any field errors.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

// Add appends a field error.
func (e *ValidationError) Add(field, message string) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: message})
}

// ValidateOptionSet checks that every non-empty field of o is a known enum
// value. Whether a value is offered for a given statistic is decided by the
// option schema, not here.
// It returns a *ValidationError if any rules fail, or nil if the set is well formed.
func ValidateOptionSet(o OptionSet) error {
	var ve ValidationError

	if o.Type != "" && !o.Type.IsValid() {
		ve.Add("type", fmt.Sprintf("invalid value %q", o.Type))
	}
	if o.Range != "" && !o.Range.IsValid() {
		ve.Add("range", fmt.Sprintf("invalid value %q", o.Range))
	}
	if o.Compare != "" && !o.Compare.IsValid() {
		ve.Add("compare", fmt.Sprintf("invalid value %q", o.Compare))
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}
