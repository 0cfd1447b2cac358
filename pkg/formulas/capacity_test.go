package formulas

import (
	"testing"

	"github.com/iwvelando/build-estimator/pkg/mathutil"
	"github.com/iwvelando/build-estimator/pkg/tier"
	"github.com/iwvelando/build-estimator/pkg/validation"
)

func TestCapacityTierTablesAreStrictlyIncreasing(t *testing.T) {
	tables := map[string][]tier.Tier{
		"cooling":  CoolingTiers,
		"water":    WaterTankTiers,
		"breaker":  BreakerTiers,
		"wire":     WireTiers,
		"bitrate":  BitrateTiers,
		"dvr":      DVRTiers,
		"disk":     DiskTiers,
		"inverter": InverterTiers,
	}
	for name, tiers := range tables {
		if err := tier.Validate(tiers); err != nil {
			t.Errorf("%s tiers invalid: %v", name, err)
		}
	}
	if len(WireSections) != len(WireTiers) {
		t.Errorf("WireSections has %d entries, WireTiers %d", len(WireSections), len(WireTiers))
	}
	if len(bitrateMbps) != len(BitrateTiers) {
		t.Errorf("bitrateMbps has %d entries, BitrateTiers %d", len(bitrateMbps), len(BitrateTiers))
	}
}

func TestCooling(t *testing.T) {
	tests := []struct {
		name           string
		input          CoolingInput
		expectedBTU    float64
		expectedUnit   float64
		expectOverflow bool
	}{
		{"Bedroom", CoolingInput{Area: 20, People: 2, Electronics: 1}, 13200, 18000, false},
		{"Bedroom with afternoon sun", CoolingInput{Area: 20, People: 2, Electronics: 1, AfternoonSun: true}, 17200, 18000, false},
		{"Exact tier", CoolingInput{Area: 15, People: 1}, 9000, 9000, false},
		{"Large hall", CoolingInput{Area: 60, People: 4, Electronics: 3, AfternoonSun: true}, 51600, 52000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Cooling(tt.input)
			if err != nil {
				t.Fatalf("Cooling() error = %v", err)
			}
			if result.RequiredBTU != tt.expectedBTU {
				t.Errorf("RequiredBTU = %v, expected %v", result.RequiredBTU, tt.expectedBTU)
			}
			if result.Unit.Value != tt.expectedUnit {
				t.Errorf("Unit = %v, expected %v", result.Unit.Value, tt.expectedUnit)
			}
			if result.Unit.Overflow != tt.expectOverflow {
				t.Errorf("Overflow = %v, expected %v", result.Unit.Overflow, tt.expectOverflow)
			}
			if tt.expectOverflow && result.Unit.Warning == "" {
				t.Errorf("expected an oversized warning")
			}
		})
	}
}

func TestWaterTank(t *testing.T) {
	result, err := WaterTank(WaterTankInput{Residents: 4, LitersPerPerson: 150, ReserveDays: 2})
	if err != nil {
		t.Fatalf("WaterTank() error = %v", err)
	}
	if result.RequiredLiters != 1200 || result.Tank.Value != 1500 {
		t.Errorf("expected 1200 L in a 1500 L tank, got %+v", result)
	}

	large, err := WaterTank(WaterTankInput{Residents: 100, LitersPerPerson: 150, ReserveDays: 2})
	if err != nil {
		t.Fatalf("WaterTank() error = %v", err)
	}
	if !large.Tank.Overflow || !large.Tank.Custom || large.Tank.Value != 30000 || large.Tank.Warning != "" {
		t.Errorf("expected a custom 30000 L reservoir without warning, got %+v", large.Tank)
	}

	if _, err := WaterTank(WaterTankInput{LitersPerPerson: 150, ReserveDays: 2}); !validation.IsValidation(err) {
		t.Errorf("expected validation error for zero residents, got %v", err)
	}
}

func TestCircuit(t *testing.T) {
	tests := []struct {
		name            string
		input           CircuitInput
		expectedBreaker float64
		expectedSection float64
		expectWarning   bool
	}{
		{"Breaker equals current", CircuitInput{PowerWatts: 4400, Voltage: 220, PowerFactor: 1}, 20, 2.5, false},
		{"Drop within limit", CircuitInput{PowerWatts: 4400, Voltage: 220, PowerFactor: 1, LengthMeters: 30}, 20, 2.5, false},
		{"Drop steps the gauge up", CircuitInput{PowerWatts: 4400, Voltage: 220, PowerFactor: 1, LengthMeters: 40}, 20, 4, false},
		{"Electric shower", CircuitInput{PowerWatts: 5500, Voltage: 127, PowerFactor: 1}, 50, 10, false},
		{"Beyond largest breaker", CircuitInput{PowerWatts: 30000, Voltage: 220, PowerFactor: 1}, 140, 70, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Circuit(tt.input)
			if err != nil {
				t.Fatalf("Circuit() error = %v", err)
			}
			if result.Breaker.Value != tt.expectedBreaker {
				t.Errorf("Breaker = %v, expected %v", result.Breaker.Value, tt.expectedBreaker)
			}
			if result.WireSectionMM2 != tt.expectedSection {
				t.Errorf("WireSectionMM2 = %v, expected %v", result.WireSectionMM2, tt.expectedSection)
			}
			if result.VoltageDropPercent > MaxVoltageDropPercent {
				t.Errorf("VoltageDropPercent = %v exceeds the limit", result.VoltageDropPercent)
			}
			if (len(result.Warnings) > 0) != tt.expectWarning {
				t.Errorf("Warnings = %v, expectWarning %v", result.Warnings, tt.expectWarning)
			}
		})
	}
}

func TestCircuitValidation(t *testing.T) {
	if _, err := Circuit(CircuitInput{PowerWatts: 1000, Voltage: 220, PowerFactor: 1.2}); !validation.IsValidation(err) {
		t.Errorf("expected validation error for power factor above 1, got %v", err)
	}
	if _, err := Circuit(CircuitInput{PowerWatts: 1000, PowerFactor: 1}); !validation.IsValidation(err) {
		t.Errorf("expected validation error for missing voltage, got %v", err)
	}
}

func TestCCTV(t *testing.T) {
	result, err := CCTV(CCTVInput{Cameras: 8, ResolutionMP: 2, RetentionDays: 30, HoursPerDay: 24})
	if err != nil {
		t.Fatalf("CCTV() error = %v", err)
	}
	if result.BitrateMbps != 4 {
		t.Errorf("BitrateMbps = %v, expected 4", result.BitrateMbps)
	}
	if !mathutil.WithinTolerance(result.StorageTB, 10.37, 0.001) {
		t.Errorf("StorageTB = %v, expected 10.37", result.StorageTB)
	}
	if result.Recorder.Value != 8 || result.Disk.Value != 12 {
		t.Errorf("expected 8 channels and 12 TB, got %v and %v", result.Recorder.Value, result.Disk.Value)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", result.Warnings)
	}

	large, err := CCTV(CCTVInput{Cameras: 40, ResolutionMP: 2, RetentionDays: 30, HoursPerDay: 24})
	if err != nil {
		t.Fatalf("CCTV() error = %v", err)
	}
	if !large.Recorder.Overflow || large.Recorder.Value != 48 {
		t.Errorf("expected a custom 48 channel recorder, got %+v", large.Recorder)
	}
	if !large.Disk.Overflow || large.Disk.Value != 52 || len(large.Warnings) == 0 {
		t.Errorf("expected a 52 TB overflow with warning, got %+v", large.Disk)
	}

	if _, err := CCTV(CCTVInput{Cameras: 4, ResolutionMP: 2, RetentionDays: 7, HoursPerDay: 25}); !validation.IsValidation(err) {
		t.Errorf("expected validation error for more than 24 hours, got %v", err)
	}
}

func TestSolar(t *testing.T) {
	result, err := Solar(SolarInput{MonthlyKWh: 450, Region: "Southeast", PanelWatts: 550})
	if err != nil {
		t.Fatalf("Solar() error = %v", err)
	}
	if !mathutil.WithinTolerance(result.PeakKW, 3.83, 0.001) {
		t.Errorf("PeakKW = %v, expected 3.83", result.PeakKW)
	}
	if result.Panels != 7 {
		t.Errorf("Panels = %d, expected 7", result.Panels)
	}
	if !mathutil.WithinTolerance(result.AreaM2, 18.2, 0.001) {
		t.Errorf("AreaM2 = %v, expected 18.2", result.AreaM2)
	}
	if result.Inverter.Value != 5 {
		t.Errorf("Inverter = %v, expected 5", result.Inverter.Value)
	}
	if result.MonthlyGeneration < 450 {
		t.Errorf("MonthlyGeneration = %v should cover the consumption", result.MonthlyGeneration)
	}

	if _, err := Solar(SolarInput{MonthlyKWh: 450, Region: "atlantis", PanelWatts: 550}); !validation.IsValidation(err) {
		t.Errorf("expected validation error for unknown region, got %v", err)
	}
}
