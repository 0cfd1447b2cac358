// Package numeric parses user-typed, locale-formatted numbers.
package numeric

import (
	"math"
	"strconv"
	"strings"
)

// Normalize converts user-typed text into a number. A comma is accepted as the
// decimal separator ("12,5" is 12.5) and surrounding whitespace is ignored.
//
// Normalize never fails: empty, non-numeric, NaN and infinite input all yield
// 0. Callers treat a zero or negative value as missing input and reject it
// with a validation message before running a formula.
func Normalize(text string) float64 {
	cleaned := strings.TrimSpace(strings.ReplaceAll(text, ",", "."))
	if cleaned == "" {
		return 0
	}
	val, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(val) || math.IsInf(val, 0) {
		return 0
	}
	return val
}

// NormalizeOr behaves like Normalize but returns fallback when text is blank.
// Optional fields with a documented default use it, so that an explicit "0"
// is still distinguishable from an untouched field.
func NormalizeOr(text string, fallback float64) float64 {
	if strings.TrimSpace(text) == "" {
		return fallback
	}
	return Normalize(text)
}
