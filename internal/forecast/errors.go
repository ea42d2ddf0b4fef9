package forecast

import (
	"errors"
	"fmt"
)

// Sentinel errors for the validation failures Prepare can report. Callers
// match them with errors.Is; the wrapping ValidationError carries detail.
var (
	// ErrEmptyInput reports a table with zero rows.
	ErrEmptyInput = errors.New("input table has no rows")

	// ErrMissingColumn reports that the target or date column is absent.
	ErrMissingColumn = errors.New("required column not found")

	// ErrInsufficientData reports fewer usable rows than the configured
	// minimum, or a non-positive forecast period request.
	ErrInsufficientData = errors.New("not enough data points")

	// ErrNonNumericTarget reports a target column holding non-numeric
	// values.
	ErrNonNumericTarget = errors.New("target column is not numeric")
)

// ValidationError wraps one of the sentinel validation kinds with the
// context of the failing input. All validation happens before any numeric
// work begins, so a ValidationError guarantees no partial results exist.
type ValidationError struct {
	Kind   error  // one of the sentinel errors above
	Column string // offending column, when one is involved
	Detail string
}

// Error returns the formatted validation message.
func (e *ValidationError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("%s: column %q: %s", e.Kind, e.Column, e.Detail)
	}
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	}
	return e.Kind.Error()
}

// Unwrap exposes the sentinel kind for errors.Is matching.
func (e *ValidationError) Unwrap() error {
	return e.Kind
}

func newValidationError(kind error, column, format string, args ...interface{}) error {
	return &ValidationError{
		Kind:   kind,
		Column: column,
		Detail: fmt.Sprintf(format, args...),
	}
}

// ForecastError reports a numeric failure inside a forecasting method, such
// as non-finite values surviving validation. It is the only non-validation
// error the engine produces.
type ForecastError struct {
	Method Method
	Err    error
}

// Error returns the formatted forecast failure message.
func (e *ForecastError) Error() string {
	return fmt.Sprintf("forecast failed (%s): %v", e.Method, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ForecastError) Unwrap() error {
	return e.Err
}

// IsValidationError reports whether err is any of the pre-computation
// validation failures.
func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
