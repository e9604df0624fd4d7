package catalog

import (
	"fmt"
	"strings"
)

// FieldError describes a validation error on a specific field.
type FieldError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// ValidationError aggregates the problems found in one template document.
type ValidationError struct {
	Source  string       `json:"source,omitempty"`
	Message string       `json:"message"`
	Details []FieldError `json:"details,omitempty"`
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	if e.Source != "" {
		fmt.Fprintf(&b, "%s: ", e.Source)
	}
	b.WriteString(e.Message)
	for _, d := range e.Details {
		if d.Field != "" {
			fmt.Fprintf(&b, "\n  %s: %s", d.Field, d.Message)
		} else {
			fmt.Fprintf(&b, "\n  %s", d.Message)
		}
	}
	return b.String()
}

func newValidationError(source, msg string, details ...FieldError) *ValidationError {
	return &ValidationError{Source: source, Message: msg, Details: details}
}
