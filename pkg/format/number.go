// Package format renders quantities and currency for Brazilian Portuguese
// readers, e.g. "1.234,56" and "R$ 1.234,56".
package format

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Locale is the language used for separators.
var Locale = language.BrazilianPortuguese

// CurrencySymbol prefixes every currency amount.
const CurrencySymbol = "R$"

// Number returns value with the given decimals and locale separators.
func Number(value float64, decimals int) string {
	if decimals < 0 {
		decimals = 0
	}
	p := message.NewPrinter(Locale)
	return p.Sprintf(fmt.Sprintf("%%.%df", decimals), value)
}

// Integer returns a whole number with thousands separators.
func Integer(value int) string {
	p := message.NewPrinter(Locale)
	return p.Sprintf("%d", value)
}

// Currency returns a currency string with the symbol and separators (e.g., "-R$ 1.234,56").
func Currency(amount float64) string {
	formatted := NumericCurrency(math.Abs(amount))
	if amount < 0 && formatted != NumericCurrency(0) {
		return "-" + CurrencySymbol + " " + formatted
	}
	return CurrencySymbol + " " + formatted
}

// NumericCurrency returns a currency string without a symbol but with separators (e.g., "-1.234,56").
func NumericCurrency(amount float64) string {
	return Number(amount, 2)
}

// Quantity returns value followed by its unit, e.g. "12,5 m²". Whole values
// are printed without decimals.
func Quantity(value float64, decimals int, unit string) string {
	if value == math.Trunc(value) {
		decimals = 0
	}
	text := Number(value, decimals)
	if unit == "" {
		return text
	}
	return text + " " + unit
}
