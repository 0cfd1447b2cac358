// Package tier selects the smallest commercial size that satisfies a
// continuous requirement.
package tier

import (
	"fmt"

	"github.com/iwvelando/build-estimator/pkg/mathutil"
)

// Tier is one commercial size: the largest requirement it satisfies and the
// label shown to the user.
type Tier struct {
	Threshold float64
	Label     string
}

// Selection is the outcome of Resolve.
type Selection struct {
	// Index is the position of the selected tier, or -1 on overflow.
	Index int
	// Value is the selected threshold, or the custom value on overflow.
	Value    float64
	Label    string
	Overflow bool
	// Custom is set when the value was computed beyond the known tiers.
	Custom bool
	// Warning is an informational message; it never blocks a calculation.
	Warning string
}

// Overflow computes a selection when the requirement exceeds every tier.
type Overflow func(required float64, tiers []Tier) Selection

// Validate checks that tiers is non-empty and strictly increasing.
func Validate(tiers []Tier) error {
	if len(tiers) == 0 {
		return fmt.Errorf("tier list is empty")
	}
	for i := 1; i < len(tiers); i++ {
		if tiers[i].Threshold <= tiers[i-1].Threshold {
			return fmt.Errorf("tier %d threshold %v is not greater than tier %d threshold %v",
				i, tiers[i].Threshold, i-1, tiers[i-1].Threshold)
		}
	}
	return nil
}

// Resolve returns the first tier whose threshold is greater than or equal to
// required. A requirement equal to a threshold selects that tier. When every
// threshold is smaller, overflow decides; a nil overflow rounds up to the next
// whole unit.
func Resolve(required float64, tiers []Tier, overflow Overflow) Selection {
	for i, t := range tiers {
		if t.Threshold >= required {
			return Selection{Index: i, Value: t.Threshold, Label: t.Label}
		}
	}
	if overflow == nil {
		overflow = StepUp(1, "%.0f")
	}
	sel := overflow(required, tiers)
	sel.Index = -1
	sel.Overflow = true
	return sel
}

// Position orders selections for comparison; overflow ranks above every tier.
func (s Selection) Position(tierCount int) int {
	if s.Overflow {
		return tierCount
	}
	return s.Index
}

// StepUp rounds the requirement up to the next multiple of step and reports
// it as a custom size, labelled with format.
func StepUp(step float64, format string) Overflow {
	return func(required float64, tiers []Tier) Selection {
		value := customValue(required, step, tiers)
		return Selection{
			Value:  value,
			Label:  fmt.Sprintf(format, value),
			Custom: true,
		}
	}
}

// Warn rounds up like StepUp and attaches message as a warning, for sizes
// where the user should consider a larger or additional unit.
func Warn(step float64, format, message string) Overflow {
	stepUp := StepUp(step, format)
	return func(required float64, tiers []Tier) Selection {
		sel := stepUp(required, tiers)
		sel.Warning = message
		return sel
	}
}

func customValue(required, step float64, tiers []Tier) float64 {
	value := mathutil.RoundUpToStep(required, step)
	if len(tiers) > 0 {
		largest := tiers[len(tiers)-1].Threshold
		if value <= largest {
			// Step misaligned with the tiers; stay strictly beyond them.
			value = largest + step
		}
	}
	return value
}

// Thresholds builds tiers from ascending thresholds, labelling each with format.
func Thresholds(format string, thresholds ...float64) []Tier {
	tiers := make([]Tier, len(thresholds))
	for i, threshold := range thresholds {
		tiers[i] = Tier{Threshold: threshold, Label: fmt.Sprintf(format, threshold)}
	}
	return tiers
}
