package formulas

import (
	"fmt"
	"math"
	"strings"

	"github.com/iwvelando/build-estimator/pkg/mathutil"
	"github.com/iwvelando/build-estimator/pkg/tier"
	"github.com/iwvelando/build-estimator/pkg/validation"
)

// Cooling constants (BTU/h)
const (
	CoolingBTUPerM2        = 600.0
	CoolingBTUPerM2Sun     = 800.0
	CoolingBTUPerPerson    = 600.0
	CoolingBTUPerAppliance = 600.0
)

// CoolingTiers are the commercial split air-conditioner sizes.
var CoolingTiers = tier.Thresholds("%.0f BTU/h", 9000, 12000, 18000, 24000, 30000, 36000)

var coolingOverflow = tier.Warn(1000, "%.0f BTU/h", "needs a larger unit or a second unit")

// CoolingInput describes the room to be air-conditioned.
type CoolingInput struct {
	Area         float64 // m2
	People       float64
	Electronics  float64
	AfternoonSun bool
}

// CoolingResult is the required cooling capacity and the unit to buy.
type CoolingResult struct {
	RequiredBTU float64
	Unit        tier.Selection
}

// Cooling estimates the BTU/h a room needs and picks the commercial unit.
// The first occupant is covered by the area allowance.
func Cooling(in CoolingInput) (CoolingResult, error) {
	if err := validation.First(
		validation.Positive("area", in.Area),
		validation.NonNegative("people", in.People),
		validation.NonNegative("electronics", in.Electronics),
	); err != nil {
		return CoolingResult{}, err
	}

	perM2 := CoolingBTUPerM2
	if in.AfternoonSun {
		perM2 = CoolingBTUPerM2Sun
	}
	extraPeople := mathutil.ClampNonNegative(math.Round(in.People) - 1)
	required := in.Area*perM2 + extraPeople*CoolingBTUPerPerson + math.Round(in.Electronics)*CoolingBTUPerAppliance
	required = math.Round(required)
	if err := validation.Bounded("area", required); err != nil {
		return CoolingResult{}, err
	}

	return CoolingResult{
		RequiredBTU: required,
		Unit:        tier.Resolve(required, CoolingTiers, coolingOverflow),
	}, nil
}

// Water tank constants
const (
	WaterDefaultLitersPerPerson = 150.0
	WaterDefaultReserveDays     = 2.0
)

// WaterTankTiers are the commercial water tank sizes in liters.
var WaterTankTiers = tier.Thresholds("%.0f L", 310, 500, 750, 1000, 1500, 2000, 3000, 5000, 10000, 15000, 20000)

var waterTankOverflow = tier.StepUp(1000, "custom %.0f L reservoir")

// WaterTankInput describes household consumption.
type WaterTankInput struct {
	Residents       float64
	LitersPerPerson float64 // per day
	ReserveDays     float64
}

// WaterTankResult is the required storage and the tank to buy.
type WaterTankResult struct {
	RequiredLiters float64
	Tank           tier.Selection
}

// WaterTank sizes a household water tank for the given reserve.
func WaterTank(in WaterTankInput) (WaterTankResult, error) {
	if err := validation.First(
		validation.Positive("residents", in.Residents),
		validation.Positive("litersPerPerson", in.LitersPerPerson),
		validation.Positive("reserveDays", in.ReserveDays),
	); err != nil {
		return WaterTankResult{}, err
	}

	required := math.Ceil(in.Residents * in.LitersPerPerson * in.ReserveDays)
	if err := validation.Bounded("residents", required); err != nil {
		return WaterTankResult{}, err
	}
	return WaterTankResult{
		RequiredLiters: required,
		Tank:           tier.Resolve(required, WaterTankTiers, waterTankOverflow),
	}, nil
}

// Electrical constants
const (
	CopperResistivity     = 0.0172 // ohm mm2/m
	MaxVoltageDropPercent = 4.0
	CircuitDefaultPF      = 1.0
)

// BreakerTiers are the standard breaker ratings in amperes.
var BreakerTiers = tier.Thresholds("%.0f A", 10, 16, 20, 25, 32, 40, 50, 63, 70, 80, 100, 125)

var breakerOverflow = tier.Warn(5, "%.0f A", "split the load across more than one circuit")

// WireTiers map copper conductor ampacity (PVC insulation, installation
// method B1) to the conductor section.
var WireTiers = []tier.Tier{
	{Threshold: 15.5, Label: "1.5 mm²"},
	{Threshold: 21, Label: "2.5 mm²"},
	{Threshold: 28, Label: "4 mm²"},
	{Threshold: 36, Label: "6 mm²"},
	{Threshold: 50, Label: "10 mm²"},
	{Threshold: 68, Label: "16 mm²"},
	{Threshold: 89, Label: "25 mm²"},
	{Threshold: 111, Label: "35 mm²"},
	{Threshold: 134, Label: "50 mm²"},
	{Threshold: 171, Label: "70 mm²"},
	{Threshold: 207, Label: "95 mm²"},
	{Threshold: 239, Label: "120 mm²"},
}

// WireSections are the conductor sections in mm² matching WireTiers.
var WireSections = []float64{1.5, 2.5, 4, 6, 10, 16, 25, 35, 50, 70, 95, 120}

var wireOverflow = tier.Warn(1, "%.0f A conductor", "no standard single conductor carries this current")

// CircuitInput describes one electrical circuit.
type CircuitInput struct {
	PowerWatts   float64
	Voltage      float64
	LengthMeters float64 // one-way run; 0 skips the voltage drop check
	PowerFactor  float64
}

// CircuitResult is the breaker and wire gauge for a circuit.
type CircuitResult struct {
	Current            float64
	Breaker            tier.Selection
	Wire               tier.Selection
	WireSectionMM2     float64 // 0 when the wire overflowed
	VoltageDropPercent float64
	Warnings           []string
}

// Circuit picks the breaker for the load current and the smallest wire that
// carries the breaker rating, stepping the gauge up while the voltage drop
// over the run exceeds MaxVoltageDropPercent.
func Circuit(in CircuitInput) (CircuitResult, error) {
	if err := validation.First(
		validation.Positive("powerWatts", in.PowerWatts),
		validation.Positive("voltage", in.Voltage),
		validation.Positive("powerFactor", in.PowerFactor),
		validation.NonNegative("lengthMeters", in.LengthMeters),
	); err != nil {
		return CircuitResult{}, err
	}
	if in.PowerFactor > 1 {
		return CircuitResult{}, validation.Invalid("powerFactor", "must be at most 1")
	}

	current := in.PowerWatts / (in.Voltage * in.PowerFactor)
	if err := validation.Bounded("powerWatts", current, voltageDrop(in.LengthMeters, current, WireSections[0], in.Voltage)); err != nil {
		return CircuitResult{}, err
	}
	result := CircuitResult{Current: mathutil.RoundTo(current, 2)}

	result.Breaker = tier.Resolve(current, BreakerTiers, breakerOverflow)
	if result.Breaker.Warning != "" {
		result.Warnings = append(result.Warnings, result.Breaker.Warning)
	}

	result.Wire = tier.Resolve(result.Breaker.Value, WireTiers, wireOverflow)
	if result.Wire.Overflow {
		result.Warnings = append(result.Warnings, result.Wire.Warning)
		return result, nil
	}

	idx := result.Wire.Index
	drop := voltageDrop(in.LengthMeters, current, WireSections[idx], in.Voltage)
	for drop > MaxVoltageDropPercent && idx < len(WireTiers)-1 {
		idx++
		drop = voltageDrop(in.LengthMeters, current, WireSections[idx], in.Voltage)
	}
	if idx != result.Wire.Index {
		result.Wire = tier.Selection{Index: idx, Value: WireTiers[idx].Threshold, Label: WireTiers[idx].Label}
	}
	if drop > MaxVoltageDropPercent {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("voltage drop %.2f%% exceeds %.0f%% even with the largest conductor; shorten the run or raise the voltage",
				drop, MaxVoltageDropPercent))
	}
	result.WireSectionMM2 = WireSections[idx]
	result.VoltageDropPercent = mathutil.RoundTo(drop, 2)
	return result, nil
}

func voltageDrop(length, current, section, voltage float64) float64 {
	if length <= 0 {
		return 0
	}
	return 2 * length * current * CopperResistivity / (section * voltage) * 100
}

// CCTV constants
const (
	CCTVDefaultResolutionMP = 2.0
	CCTVDefaultRetention    = 30.0 // days
	CCTVDefaultHours        = 24.0
)

// BitrateTiers map camera resolution (MP) to a per-camera bitrate label; see
// bitrateMbps for the values.
var BitrateTiers = tier.Thresholds("%.0f MP", 1, 2, 4, 5, 8)

var bitrateMbps = []float64{2, 4, 6, 8, 12}

var bitrateOverflow = tier.Warn(1, "%.0f MP", "resolution above 8 MP; bitrate estimated from the 8 MP profile")

// DVRTiers are the commercial recorder channel counts.
var DVRTiers = tier.Thresholds("%.0f channels", 4, 8, 16, 32)

var dvrOverflow = tier.StepUp(16, "%.0f channels (multiple recorders)")

// DiskTiers are the commercial surveillance disk sizes in TB.
var DiskTiers = tier.Thresholds("%.0f TB", 1, 2, 3, 4, 6, 8, 10, 12, 14, 16, 18)

var diskOverflow = tier.Warn(1, "%.0f TB", "needs more than one disk")

// CCTVInput describes a surveillance installation.
type CCTVInput struct {
	Cameras       float64
	ResolutionMP  float64
	RetentionDays float64
	HoursPerDay   float64
}

// CCTVResult is the recorder and storage for a camera installation.
type CCTVResult struct {
	Cameras     int
	BitrateMbps float64
	StorageTB   float64
	Recorder    tier.Selection
	Disk        tier.Selection
	Warnings    []string
}

// CCTV sizes the recorder channels and disk for continuous recording.
func CCTV(in CCTVInput) (CCTVResult, error) {
	if err := validation.First(
		validation.Positive("cameras", in.Cameras),
		validation.Positive("resolutionMP", in.ResolutionMP),
		validation.Positive("retentionDays", in.RetentionDays),
		validation.Positive("hoursPerDay", in.HoursPerDay),
	); err != nil {
		return CCTVResult{}, err
	}
	if in.HoursPerDay > 24 {
		return CCTVResult{}, validation.Invalid("hoursPerDay", "must be at most 24")
	}

	cameras := mathutil.CeilUnits(in.Cameras)
	result := CCTVResult{Cameras: cameras}
	// Worst-case bitrate bounds the storage before the profile is known.
	if err := validation.Bounded("cameras", storageTB(float64(cameras), bitrateMbps[len(bitrateMbps)-1], in.HoursPerDay, in.RetentionDays)); err != nil {
		return CCTVResult{}, err
	}

	profile := tier.Resolve(in.ResolutionMP, BitrateTiers, bitrateOverflow)
	if profile.Overflow {
		result.BitrateMbps = bitrateMbps[len(bitrateMbps)-1]
		result.Warnings = append(result.Warnings, profile.Warning)
	} else {
		result.BitrateMbps = bitrateMbps[profile.Index]
	}

	terabytes := storageTB(float64(cameras), result.BitrateMbps, in.HoursPerDay, in.RetentionDays)
	result.StorageTB = mathutil.RoundTo(terabytes, 2)
	result.Recorder = tier.Resolve(float64(cameras), DVRTiers, dvrOverflow)
	result.Disk = tier.Resolve(result.StorageTB, DiskTiers, diskOverflow)
	if result.Disk.Warning != "" {
		result.Warnings = append(result.Warnings, result.Disk.Warning)
	}
	return result, nil
}

func storageTB(cameras, mbps, hoursPerDay, days float64) float64 {
	return cameras * mbps * 3600 * hoursPerDay * days / 8 / 1e6
}

// Solar constants
const (
	SolarSystemEfficiency  = 0.80
	SolarDaysPerMonth      = 30.0
	SolarPanelAreaM2       = 2.6
	SolarDefaultPanelWatts = 550.0
)

// SolarIrradiation holds the peak sun hours per day for each region.
var SolarIrradiation = map[string]float64{
	"north":       4.8,
	"northeast":   5.5,
	"center-west": 5.2,
	"southeast":   4.9,
	"south":       4.4,
}

// InverterTiers are the commercial inverter sizes in kW.
var InverterTiers = tier.Thresholds("%.0f kW", 3, 5, 6, 8, 10, 15, 20, 25, 30, 50, 75)

var inverterOverflow = tier.StepUp(5, "%.0f kW (multiple inverters)")

// SolarInput describes the consumption to offset with photovoltaic panels.
type SolarInput struct {
	MonthlyKWh float64
	Region     string
	PanelWatts float64
}

// SolarResult is the photovoltaic system size for a consumption.
type SolarResult struct {
	PeakSunHours      float64
	PeakKW            float64
	Panels            int
	AreaM2            float64
	MonthlyGeneration float64 // kWh
	Inverter          tier.Selection
}

// Solar sizes a grid-tied photovoltaic system.
func Solar(in SolarInput) (SolarResult, error) {
	if err := validation.First(
		validation.Positive("monthlyKWh", in.MonthlyKWh),
		validation.Positive("panelWatts", in.PanelWatts),
	); err != nil {
		return SolarResult{}, err
	}
	hsp, ok := SolarIrradiation[strings.ToLower(strings.TrimSpace(in.Region))]
	if !ok {
		return SolarResult{}, validation.Invalid("region", "unknown region %q", in.Region)
	}

	peakKW := in.MonthlyKWh / (SolarDaysPerMonth * hsp * SolarSystemEfficiency)
	if err := validation.Bounded("monthlyKWh", peakKW*1000/in.PanelWatts*SolarPanelAreaM2); err != nil {
		return SolarResult{}, err
	}
	panels := mathutil.CeilUnits(peakKW * 1000 / in.PanelWatts)
	installedKW := float64(panels) * in.PanelWatts / 1000

	return SolarResult{
		PeakSunHours:      hsp,
		PeakKW:            mathutil.RoundTo(peakKW, 2),
		Panels:            panels,
		AreaM2:            mathutil.RoundTo(float64(panels)*SolarPanelAreaM2, 2),
		MonthlyGeneration: mathutil.RoundTo(installedKW*hsp*SolarDaysPerMonth*SolarSystemEfficiency, 1),
		Inverter:          tier.Resolve(peakKW, InverterTiers, inverterOverflow),
	}, nil
}
