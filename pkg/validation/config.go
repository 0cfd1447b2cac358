package validation

import (
	"fmt"
	"sort"
)

// ValidatePrices checks a configured price table against the known price keys
// and returns warnings for unknown keys and negative prices.
func ValidatePrices(prices map[string]float64, known map[string]float64) []string {
	var warnings []string

	keys := make([]string, 0, len(prices))
	for key := range prices {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if _, ok := known[key]; !ok {
			warnings = append(warnings, fmt.Sprintf("Price '%s' is not used by any calculator", key))
		}
		if prices[key] < 0 {
			warnings = append(warnings, fmt.Sprintf("Price '%s' is negative (%.2f) - budget totals will be understated",
				key, prices[key]))
		}
	}

	return warnings
}

// ValidateMonthlyRate warns when the financing rate cannot produce meaningful
// installments.
func ValidateMonthlyRate(rate float64) string {
	if rate < 0 {
		return fmt.Sprintf("Financing monthly rate is negative (%.4f) - financing calculations will be rejected", rate)
	}
	if rate == 0 {
		return "Financing monthly rate is zero - installments will carry no interest"
	}
	if rate > 0.2 {
		return fmt.Sprintf("Financing monthly rate %.4f looks like a percentage; expected a fraction such as 0.015", rate)
	}
	return ""
}
