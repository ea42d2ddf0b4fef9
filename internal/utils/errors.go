package utils

import "fmt"

// ValidationError reports a malformed request before any domain work runs.
// Handlers raise it for bad query parameters, unparseable payload rows and
// similar request-shape problems; the HTTP layer maps it to a 400 response.
// Engine-level input validation uses forecast.ValidationError instead.
type ValidationError struct {
	Message string
}

// Error returns the error message string.
func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a ValidationError with a fixed message.
func NewValidationError(message string) error {
	return &ValidationError{
		Message: message,
	}
}

// NewValidationErrorf creates a ValidationError with a formatted message.
func NewValidationErrorf(format string, args ...interface{}) error {
	return &ValidationError{
		Message: fmt.Sprintf(format, args...),
	}
}
