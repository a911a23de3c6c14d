package domain

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError reports rejected input as a mapping from field name to a
// user-facing message. The prior in-memory and persisted state is left
// unchanged when a mutation fails validation.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError constructs an empty validation error ready to collect
// field messages.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: map[string]string{}}
}

// Add records a message for a field. The first message per field wins so the
// most specific check reported earlier is not overwritten.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = message
	}
}

// Any reports whether at least one field was rejected.
func (e *ValidationError) Any() bool {
	return e != nil && len(e.Fields) > 0
}

// Err returns the error itself when any field was rejected, nil otherwise.
// Callers build up messages and finish with `return input, e.Err()`.
func (e *ValidationError) Err() error {
	if e.Any() {
		return e
	}
	return nil
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, e.Fields[field]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
