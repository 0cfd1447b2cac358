package validation

import (
	"errors"
	"fmt"
	"math"

	"github.com/iwvelando/build-estimator/pkg/constants"
)

// Kind classifies a validation failure.
type Kind string

const (
	// KindInvalidInput marks a required value that is missing, non-numeric or
	// out of range.
	KindInvalidInput Kind = "invalid input"

	// KindConstraint marks inputs that are individually valid but violate a
	// domain rule when combined, e.g. a wall thicker than half the profile.
	KindConstraint Kind = "domain constraint"
)

// Error is a user-facing validation failure. A calculation that returns one
// produced no partial result; the user corrects the input and retries.
type Error struct {
	Kind    Kind
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Field, e.Message)
}

// Invalid returns an invalid-input error for field.
func Invalid(field, format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidInput, Field: field, Message: fmt.Sprintf(format, args...)}
}

// Constraint returns a domain-constraint error for field.
func Constraint(field, format string, args ...interface{}) *Error {
	return &Error{Kind: KindConstraint, Field: field, Message: fmt.Sprintf(format, args...)}
}

// Positive rejects values that are zero or negative, which is how the
// normalizer reports missing input, and values above constants.MaxInputValue.
func Positive(field string, val float64) error {
	if math.IsNaN(val) || val <= 0 {
		return Invalid(field, "must be greater than zero")
	}
	return AtMost(field, val, constants.MaxInputValue)
}

// NonNegative rejects negative values; zero is accepted for optional inputs.
func NonNegative(field string, val float64) error {
	if math.IsNaN(val) || val < 0 {
		return Invalid(field, "must not be negative")
	}
	return AtMost(field, val, constants.MaxInputValue)
}

// AtMost rejects values above limit, infinities included.
func AtMost(field string, val, limit float64) error {
	if val > limit {
		return Invalid(field, "must be at most %g", limit)
	}
	return nil
}

// WholeNumber rejects values with a fractional part.
func WholeNumber(field string, val float64) error {
	if val != math.Trunc(val) {
		return Invalid(field, "must be a whole number")
	}
	return nil
}

// Bounded rejects computed results that are not finite or that reach
// constants.MaxQuantity, so an extreme input combination fails instead of
// reporting a saturated count.
func Bounded(field string, values ...float64) error {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) >= constants.MaxQuantity {
			return Constraint(field, "result exceeds the supported range")
		}
	}
	return nil
}

// First returns the first non-nil error, letting formulas list their checks
// in field order.
func First(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// IsValidation reports whether err is, or wraps, a validation Error.
func IsValidation(err error) bool {
	var vErr *Error
	return errors.As(err, &vErr)
}
