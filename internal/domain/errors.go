package domain

import (
	"errors"
	"fmt"
)

// ErrValidation matches every ValidationError via errors.Is.
var ErrValidation = errors.New("validation failed")

// ValidationError reports a missing or malformed field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
