package format

import (
	"strings"
	"testing"
)

func TestCurrency(t *testing.T) {
	tests := []struct {
		name           string
		amount         float64
		expectedPrefix string
		expectedSuffix string
	}{
		{"Positive", 1234.5, "R$ ", ",50"},
		{"Whole", 350, "R$ ", ",00"},
		{"Negative", -42.25, "-R$ ", ",25"},
		{"Zero", 0, "R$ ", ",00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Currency(tt.amount)
			if !strings.HasPrefix(got, tt.expectedPrefix) || !strings.HasSuffix(got, tt.expectedSuffix) {
				t.Errorf("Currency(%v) = %q, expected prefix %q and suffix %q",
					tt.amount, got, tt.expectedPrefix, tt.expectedSuffix)
			}
		})
	}
}

func TestNumberUsesCommaDecimalSeparator(t *testing.T) {
	got := Number(12.5, 2)
	if !strings.HasSuffix(got, ",50") || !strings.HasPrefix(got, "12") {
		t.Errorf("Number(12.5, 2) = %q, expected 12,50", got)
	}
	if got := Number(3, 0); got != "3" {
		t.Errorf("Number(3, 0) = %q, expected 3", got)
	}
}

func TestQuantity(t *testing.T) {
	if got := Quantity(4, 2, "gallon"); got != "4 gallon" {
		t.Errorf("Quantity(4) = %q, expected \"4 gallon\"", got)
	}
	if got := Quantity(2.75, 2, "m³"); !strings.HasSuffix(got, ",75 m³") {
		t.Errorf("Quantity(2.75) = %q, expected suffix \",75 m³\"", got)
	}
	if got := Quantity(7, 0, ""); got != "7" {
		t.Errorf("Quantity(7) = %q, expected 7", got)
	}
}
