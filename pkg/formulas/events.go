package formulas

import (
	"github.com/iwvelando/build-estimator/pkg/mathutil"
	"github.com/iwvelando/build-estimator/pkg/validation"
)

// Barbecue consumption per person
const (
	MeatGramsMan          = 400.0
	MeatGramsWoman        = 300.0
	MeatGramsChild        = 200.0
	BeerLitersPerAdult    = 1.5
	SodaLitersPerPerson   = 0.5
	CharcoalKgPerMeatKg   = 1.0
	CharcoalBagKg         = 5.0
	BeerCanLiters         = 0.35
	SodaBottleLiters      = 2.0
	BarbecueBaseHours     = 4.0
	BarbecueExtraPerHour  = 0.125
	BarbecueMaxMultiplier = 1.5
	BarbecueDefaultHours  = 4.0
)

// BarbecueInput holds the guest list and event length.
type BarbecueInput struct {
	Men           float64
	Women         float64
	Children      float64
	DurationHours float64
}

// BarbecueResult is the shopping list for a barbecue.
type BarbecueResult struct {
	People             int
	DurationMultiplier float64
	MeatKg             float64
	CharcoalBags       int // 5 kg
	BeerLiters         float64
	BeerCans           int // 350 ml
	SodaLiters         float64
	SodaBottles        int // 2 L
}

// DurationMultiplier scales consumption for events longer than
// BarbecueBaseHours, capped at BarbecueMaxMultiplier.
func DurationMultiplier(hours float64) float64 {
	if hours <= BarbecueBaseHours {
		return 1
	}
	return mathutil.Min(1+(hours-BarbecueBaseHours)*BarbecueExtraPerHour, BarbecueMaxMultiplier)
}

// Barbecue computes meat, charcoal and drinks for the guests. The duration
// multiplier scales every consumable before conversion to purchase units.
func Barbecue(in BarbecueInput) (BarbecueResult, error) {
	if err := validation.First(
		validation.NonNegative("men", in.Men),
		validation.NonNegative("women", in.Women),
		validation.NonNegative("children", in.Children),
		validation.Positive("durationHours", in.DurationHours),
	); err != nil {
		return BarbecueResult{}, err
	}
	people := in.Men + in.Women + in.Children
	if people <= 0 {
		return BarbecueResult{}, validation.Invalid("people", "at least one guest is required")
	}

	multiplier := DurationMultiplier(in.DurationHours)
	meatKg := (in.Men*MeatGramsMan + in.Women*MeatGramsWoman + in.Children*MeatGramsChild) / 1000 * multiplier
	beer := (in.Men + in.Women) * BeerLitersPerAdult * multiplier
	soda := people * SodaLitersPerPerson * multiplier
	if err := validation.Bounded("people", people, beer/BeerCanLiters, soda); err != nil {
		return BarbecueResult{}, err
	}

	return BarbecueResult{
		People:             mathutil.CeilUnits(people),
		DurationMultiplier: multiplier,
		MeatKg:             mathutil.RoundTo(meatKg, 2),
		CharcoalBags:       mathutil.CeilUnits(meatKg * CharcoalKgPerMeatKg / CharcoalBagKg),
		BeerLiters:         mathutil.RoundTo(beer, 2),
		BeerCans:           mathutil.CeilUnits(beer / BeerCanLiters),
		SodaLiters:         mathutil.RoundTo(soda, 2),
		SodaBottles:        mathutil.CeilUnits(soda / SodaBottleLiters),
	}, nil
}
