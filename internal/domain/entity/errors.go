package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks values rejected at the edges: bad URLs, empty
	// feed lists, malformed records.
	ErrInvalidInput = errors.New("invalid input")

	// ErrValidationFailed wraps the joined problems of a whole configuration.
	ErrValidationFailed = errors.New("validation failed")
)

// ValidationError names the offending field. It matches ErrInvalidInput
// under errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}
