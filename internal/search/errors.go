package search

import (
	"errors"
	"fmt"
)

// ErrValidation marks a query rejected before dispatch.
var ErrValidation = errors.New("invalid query")

// ValidationError names the form field that blocked a search.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// Unwrap returns ErrValidation for use with errors.Is.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
