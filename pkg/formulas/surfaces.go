// Package formulas holds one pure function per calculator category. Each maps
// normalized inputs to an immutable result record or a validation error; none
// of them perform I/O or keep state between calls.
package formulas

import (
	"github.com/iwvelando/build-estimator/pkg/mathutil"
	"github.com/iwvelando/build-estimator/pkg/validation"
)

// Paint constants
const (
	PaintCoveragePerLiter = 10.0 // m2 per liter per coat
	PaintWastePercent     = 10.0
	PaintDefaultCoats     = 2
	PaintCanLiters        = 18.0
	PaintGallonLiters     = 3.6
	// gallonsPerCanSwitch gallons cost more than one can, so buy the can.
	gallonsPerCanSwitch = 5
)

// PaintInput holds the wall measurements for the paint calculator.
type PaintInput struct {
	WallLength   float64 // m, sum of all walls
	WallHeight   float64 // m
	OpeningsArea float64 // m2 of doors and windows, deducted
	Coats        float64 // whole number; 0 means PaintDefaultCoats
}

// PaintResult is the paint quantity for a set of walls.
type PaintResult struct {
	GrossArea float64
	NetArea   float64
	Coats     int
	Liters    float64
	Cans      int // 18 L
	Gallons   int // 3.6 L
}

// Paint computes liters of paint and the can/gallon mix to buy.
func Paint(in PaintInput) (PaintResult, error) {
	if err := validation.First(
		validation.Positive("wallLength", in.WallLength),
		validation.Positive("wallHeight", in.WallHeight),
		validation.NonNegative("openingsArea", in.OpeningsArea),
		validation.NonNegative("coats", in.Coats),
		validation.WholeNumber("coats", in.Coats),
	); err != nil {
		return PaintResult{}, err
	}

	coats := int(in.Coats)
	if coats == 0 {
		coats = PaintDefaultCoats
	}

	gross := in.WallLength * in.WallHeight
	net := mathutil.RoundTo(mathutil.ClampNonNegative(gross-in.OpeningsArea), 2)
	liters := mathutil.RoundTo(mathutil.ApplyMargin(net*float64(coats)/PaintCoveragePerLiter, PaintWastePercent), 2)

	if err := validation.Bounded("wallLength", gross, liters); err != nil {
		return PaintResult{}, err
	}

	cans := mathutil.FloorUnits(liters / PaintCanLiters)
	gallons := mathutil.CeilUnits((liters - float64(cans)*PaintCanLiters) / PaintGallonLiters)
	if gallons >= gallonsPerCanSwitch {
		cans++
		gallons = 0
	}

	return PaintResult{
		GrossArea: mathutil.RoundTo(gross, 2),
		NetArea:   net,
		Coats:     coats,
		Liters:    liters,
		Cans:      cans,
		Gallons:   gallons,
	}, nil
}

// Flooring constants
const (
	FlooringDefaultWastePercent = 10.0
	FlooringDefaultBoxArea      = 2.5  // m2 per box
	TileMortarKgPerM2           = 4.0  // adhesive mortar
	TileMortarBagKg             = 20.0 // bag size
)

// FlooringInput holds the room and tile measurements for the flooring
// calculator.
type FlooringInput struct {
	RoomLength    float64 // m
	RoomWidth     float64 // m
	FurnitureArea float64 // m2 covered by fixed furniture, deducted
	TileLength    float64 // cm
	TileWidth     float64 // cm
	WastePercent  float64
	BoxArea       float64 // m2 per box
}

// FlooringResult is the tile purchase for a room.
type FlooringResult struct {
	GrossArea     float64
	NetArea       float64
	AreaWithWaste float64
	Tiles         int
	Boxes         int
	MortarBags    int // 20 kg
	WastePercent  float64
}

// Flooring computes the tiles, boxes and adhesive mortar bags for a floor.
func Flooring(in FlooringInput) (FlooringResult, error) {
	if err := validation.First(
		validation.Positive("roomLength", in.RoomLength),
		validation.Positive("roomWidth", in.RoomWidth),
		validation.Positive("tileLength", in.TileLength),
		validation.Positive("tileWidth", in.TileWidth),
		validation.Positive("boxArea", in.BoxArea),
		validation.NonNegative("furnitureArea", in.FurnitureArea),
		validation.NonNegative("wastePercent", in.WastePercent),
	); err != nil {
		return FlooringResult{}, err
	}

	gross := in.RoomLength * in.RoomWidth
	net := mathutil.RoundTo(mathutil.ClampNonNegative(gross-in.FurnitureArea), 2)
	withWaste := mathutil.RoundTo(mathutil.ApplyMargin(net, in.WastePercent), 2)
	tileArea := (in.TileLength / 100) * (in.TileWidth / 100)

	result := FlooringResult{
		GrossArea:     mathutil.RoundTo(gross, 2),
		NetArea:       net,
		AreaWithWaste: withWaste,
		Tiles:         mathutil.PurchaseUnits(net, in.WastePercent, tileArea),
		Boxes:         mathutil.PurchaseUnits(net, in.WastePercent, in.BoxArea),
		MortarBags:    mathutil.CeilUnits(withWaste * TileMortarKgPerM2 / TileMortarBagKg),
		WastePercent:  in.WastePercent,
	}
	if err := validation.Bounded("roomLength", gross, withWaste,
		float64(result.Tiles), float64(result.Boxes), float64(result.MortarBags)); err != nil {
		return FlooringResult{}, err
	}
	return result, nil
}
