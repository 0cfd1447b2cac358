package formulas

import (
	"github.com/iwvelando/build-estimator/pkg/mathutil"
	"github.com/iwvelando/build-estimator/pkg/validation"
)

// Concrete mix per cubic meter (structural concrete, roughly 1:2:3).
const (
	ConcreteCementKgPerM3    = 350.0
	ConcreteSandM3PerM3      = 0.70
	ConcreteGravelM3PerM3    = 0.85
	ConcreteWaterLitersPerM3 = 180.0
	ConcreteDefaultWastePct  = 5.0
	CementBagKg              = 50.0
)

// ConcreteInput holds the slab dimensions for the concrete calculator.
type ConcreteInput struct {
	Length       float64 // m
	Width        float64 // m
	ThicknessCm  float64
	WastePercent float64
}

// ConcreteResult is the volume and material breakdown of a slab.
type ConcreteResult struct {
	Volume          float64 // m3, net
	VolumeWithWaste float64 // m3
	CementBags      int     // 50 kg
	SandM3          float64
	GravelM3        float64
	WaterLiters     float64
}

// Concrete computes the concrete volume of a slab and its mix materials.
func Concrete(in ConcreteInput) (ConcreteResult, error) {
	if err := validation.First(
		validation.Positive("length", in.Length),
		validation.Positive("width", in.Width),
		validation.Positive("thicknessCm", in.ThicknessCm),
		validation.NonNegative("wastePercent", in.WastePercent),
	); err != nil {
		return ConcreteResult{}, err
	}

	volume := in.Length * in.Width * in.ThicknessCm / 100
	withWaste := mathutil.ApplyMargin(volume, in.WastePercent)
	if err := validation.Bounded("length", withWaste*ConcreteWaterLitersPerM3); err != nil {
		return ConcreteResult{}, err
	}

	return ConcreteResult{
		Volume:          mathutil.RoundTo(volume, 3),
		VolumeWithWaste: mathutil.RoundTo(withWaste, 3),
		CementBags:      mathutil.CeilUnits(withWaste * ConcreteCementKgPerM3 / CementBagKg),
		SandM3:          mathutil.RoundTo(withWaste*ConcreteSandM3PerM3, 2),
		GravelM3:        mathutil.RoundTo(withWaste*ConcreteGravelM3PerM3, 2),
		WaterLiters:     mathutil.RoundTo(withWaste*ConcreteWaterLitersPerM3, 1),
	}, nil
}

// Masonry constants
const (
	MasonryDefaultBlockLength = 39.0 // cm
	MasonryDefaultBlockHeight = 19.0 // cm
	MasonryDefaultJoint       = 1.0  // cm
	MasonryDefaultWastePct    = 5.0
	MortarM3PerM2             = 0.02
	MortarCementKgPerM3       = 300.0
)

// MasonryInput holds the wall and block measurements for the masonry
// calculator.
type MasonryInput struct {
	WallLength   float64 // m
	WallHeight   float64 // m
	OpeningsArea float64 // m2, deducted
	BlockLength  float64 // cm
	BlockHeight  float64 // cm
	JointCm      float64
	WastePercent float64
}

// MasonryResult is the block and mortar purchase for a wall.
type MasonryResult struct {
	NetArea          float64
	BlocksPerM2      float64
	Blocks           int
	MortarM3         float64
	MortarCementBags int // 50 kg
}

// Masonry computes the blocks and laying mortar for a wall.
func Masonry(in MasonryInput) (MasonryResult, error) {
	if err := validation.First(
		validation.Positive("wallLength", in.WallLength),
		validation.Positive("wallHeight", in.WallHeight),
		validation.Positive("blockLength", in.BlockLength),
		validation.Positive("blockHeight", in.BlockHeight),
		validation.NonNegative("openingsArea", in.OpeningsArea),
		validation.NonNegative("jointCm", in.JointCm),
		validation.NonNegative("wastePercent", in.WastePercent),
	); err != nil {
		return MasonryResult{}, err
	}

	net := mathutil.RoundTo(mathutil.ClampNonNegative(in.WallLength*in.WallHeight-in.OpeningsArea), 2)
	perM2 := 1 / (((in.BlockLength + in.JointCm) / 100) * ((in.BlockHeight + in.JointCm) / 100))
	mortar := net * MortarM3PerM2
	blocks := mathutil.ApplyMargin(net*perM2, in.WastePercent)
	if err := validation.Bounded("wallLength", net, perM2, blocks); err != nil {
		return MasonryResult{}, err
	}

	return MasonryResult{
		NetArea:          net,
		BlocksPerM2:      mathutil.RoundTo(perM2, 2),
		Blocks:           mathutil.CeilUnits(blocks),
		MortarM3:         mathutil.RoundTo(mortar, 3),
		MortarCementBags: mathutil.CeilUnits(mortar * MortarCementKgPerM3 / CementBagKg),
	}, nil
}

// Steel constants
const (
	SteelKgPerMM2Meter = 0.00785 // 7850 kg/m3 density
	SteelBarLengthM    = 6.0
)

// SteelTubeInput holds the rectangular tube profile and the cut list.
type SteelTubeInput struct {
	WidthMM  float64
	HeightMM float64
	WallMM   float64
	LengthM  float64 // per piece
	Pieces   float64
}

// SteelTubeResult is the weight and bar count of a tube order.
type SteelTubeResult struct {
	SectionMM2  float64
	KgPerMeter  float64
	TotalLength float64
	TotalKg     float64
	Bars        int // 6 m commercial bars
}

// SteelTube computes the weight of rectangular steel tubing. The wall must be
// thinner than half the smaller side, otherwise the profile is solid or
// impossible and the calculation is refused.
func SteelTube(in SteelTubeInput) (SteelTubeResult, error) {
	if err := validation.First(
		validation.Positive("widthMM", in.WidthMM),
		validation.Positive("heightMM", in.HeightMM),
		validation.Positive("wallMM", in.WallMM),
		validation.Positive("lengthM", in.LengthM),
		validation.Positive("pieces", in.Pieces),
	); err != nil {
		return SteelTubeResult{}, err
	}
	if 2*in.WallMM >= mathutil.Min(in.WidthMM, in.HeightMM) {
		return SteelTubeResult{}, validation.Constraint("wallMM",
			"wall thickness %.2f mm must be less than half of the smaller side (%.2f mm)",
			in.WallMM, mathutil.Min(in.WidthMM, in.HeightMM))
	}

	section := in.WidthMM*in.HeightMM - (in.WidthMM-2*in.WallMM)*(in.HeightMM-2*in.WallMM)
	kgPerMeter := section * SteelKgPerMM2Meter
	totalLength := in.LengthM * in.Pieces
	if err := validation.Bounded("lengthM", section, totalLength, kgPerMeter*totalLength); err != nil {
		return SteelTubeResult{}, err
	}

	return SteelTubeResult{
		SectionMM2:  mathutil.RoundTo(section, 2),
		KgPerMeter:  mathutil.RoundTo(kgPerMeter, 3),
		TotalLength: mathutil.RoundTo(totalLength, 2),
		TotalKg:     mathutil.RoundTo(kgPerMeter*totalLength, 2),
		Bars:        mathutil.CeilUnits(totalLength / SteelBarLengthM),
	}, nil
}
