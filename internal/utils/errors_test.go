package utils

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Message: "limit must be a positive integer",
	}

	assert.Equal(t, "limit must be a positive integer", err.Error())
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("request body is not valid JSON")

	assert.Error(t, err)
	assert.Equal(t, "request body is not valid JSON", err.Error())

	var validationErr *ValidationError
	assert.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "request body is not valid JSON", validationErr.Message)
}

func TestNewValidationErrorf(t *testing.T) {
	err := NewValidationErrorf("row %d: unparseable date %q", 3, "not-a-date")

	assert.Error(t, err)
	assert.Equal(t, `row 3: unparseable date "not-a-date"`, err.Error())

	var validationErr *ValidationError
	assert.True(t, errors.As(err, &validationErr))
}

func TestValidationError_SurvivesWrapping(t *testing.T) {
	inner := NewValidationError("CSV contains no usable rows")
	wrapped := fmt.Errorf("ingest failed: %w", inner)

	var validationErr *ValidationError
	assert.True(t, errors.As(wrapped, &validationErr))
	assert.Equal(t, "CSV contains no usable rows", validationErr.Message)
}
