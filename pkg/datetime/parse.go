// Package datetime provides date and time utility functions.
package datetime

import (
	"fmt"
	"strings"
	"time"

	"github.com/iwvelando/build-estimator/pkg/constants"
)

const (
	// DateLayout is the format expected in worksheets and API payloads and is
	// also the output date format.
	DateLayout = constants.DateLayout
)

// MustParseTime parses a date string using the given layout and panics on error.
// This is intended for use in tests where the date string is known to be valid.
func MustParseTime(layout, dateStr string) time.Time {
	t, err := time.Parse(layout, dateStr)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseDate parses a DateLayout date. Blank input is reported as an error so
// callers can surface it as missing input.
func ParseDate(date string) (time.Time, error) {
	trimmed := strings.TrimSpace(date)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("date is empty")
	}
	t, err := time.Parse(DateLayout, trimmed)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected %s: %w", date, DateLayout, err)
	}
	return t, nil
}

// AddWeeks returns the date offset by the given number of whole weeks.
func AddWeeks(date time.Time, weeks int) time.Time {
	return date.AddDate(0, 0, weeks*constants.DaysPerWeek)
}

// FormatDate formats a date with DateLayout; the zero time formats as "".
func FormatDate(date time.Time) string {
	if date.IsZero() {
		return ""
	}
	return date.Format(DateLayout)
}
