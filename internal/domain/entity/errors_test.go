package entity

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError(t *testing.T) {
	err := fmt.Errorf("feeds[2]: %w", &ValidationError{Field: "url", Message: "URL must use http or https scheme"})

	assert.Equal(t, "feeds[2]: url: URL must use http or https scheme", err.Error())
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.NotErrorIs(t, err, ErrValidationFailed)

	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))
	assert.Equal(t, "url", ve.Field)
}

func TestSentinelsAreDistinct(t *testing.T) {
	assert.NotErrorIs(t, ErrInvalidInput, ErrValidationFailed)
	assert.NotErrorIs(t, ErrValidationFailed, ErrInvalidInput)
}
