package mathutil

import (
	"math"

	"github.com/iwvelando/build-estimator/pkg/constants"
)

// ApplyMargin adds a waste or margin percentage to a net quantity.
func ApplyMargin(net, percent float64) float64 {
	return net * (1 + percent/constants.PercentageMultiplier)
}

// CeilUnits rounds a quantity up to the next whole purchasable unit. The value
// is first rounded to UnitPrecisionDecimals so that 110.00000000000001 counts
// as 110 units rather than 111. Non-positive and NaN quantities yield 0 and
// anything from constants.MaxQuantity up, infinity included, saturates there.
func CeilUnits(qty float64) int {
	if math.IsNaN(qty) || qty <= 0 {
		return 0
	}
	return saturate(math.Ceil(RoundTo(qty, constants.UnitPrecisionDecimals)))
}

// FloorUnits returns the whole units fully contained in qty, with the same
// bounds as CeilUnits.
func FloorUnits(qty float64) int {
	if math.IsNaN(qty) || qty <= 0 {
		return 0
	}
	return saturate(math.Floor(RoundTo(qty, constants.UnitPrecisionDecimals)))
}

func saturate(units float64) int {
	if math.IsNaN(units) || units >= constants.MaxQuantity {
		return int(constants.MaxQuantity)
	}
	return int(units)
}

// PurchaseUnits returns how many units of the given size must be bought to
// cover net plus a waste percentage.
func PurchaseUnits(net, wastePercent, unitSize float64) int {
	if unitSize <= 0 {
		return 0
	}
	return CeilUnits(ApplyMargin(net, wastePercent) / unitSize)
}

// ClampNonNegative returns val, or 0 when val is negative or NaN.
func ClampNonNegative(val float64) float64 {
	if math.IsNaN(val) || val < 0 {
		return 0
	}
	return val
}

// RoundUpToStep rounds val up to the next multiple of step.
func RoundUpToStep(val, step float64) float64 {
	if step <= 0 {
		return val
	}
	return math.Ceil(RoundTo(val/step, constants.UnitPrecisionDecimals)) * step
}
