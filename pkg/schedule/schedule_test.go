package schedule

import (
	"math"
	"testing"
	"time"

	"github.com/iwvelando/build-estimator/pkg/datetime"
	"github.com/iwvelando/build-estimator/pkg/validation"
	"go.uber.org/zap"
)

func TestTemplateProportionsSumToOne(t *testing.T) {
	for _, template := range Templates {
		sum := 0.0
		for _, p := range template.Phases {
			sum += p.Proportion
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Errorf("%s proportions sum to %v", template.Type, sum)
		}
	}
}

func TestSynthesizeNewConstruction(t *testing.T) {
	start := datetime.MustParseTime(datetime.DateLayout, "2025-01-06")
	result, err := NewSynthesizer(zap.NewNop()).Synthesize(NewConstruction, 80, start)
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}

	if result.EstimatedWeeks != 20 {
		t.Errorf("EstimatedWeeks = %d, expected 20", result.EstimatedWeeks)
	}
	expectedWeeks := []int{2, 3, 4, 3, 2, 2, 3, 1}
	if len(result.Phases) != len(expectedWeeks) {
		t.Fatalf("got %d phases, expected %d", len(result.Phases), len(expectedWeeks))
	}
	for i, phase := range result.Phases {
		if phase.DurationWeeks != expectedWeeks[i] {
			t.Errorf("phase %d (%s) = %d weeks, expected %d", i, phase.Name, phase.DurationWeeks, expectedWeeks[i])
		}
	}
	if result.TotalDurationWeeks != 20 {
		t.Errorf("TotalDurationWeeks = %d, expected 20", result.TotalDurationWeeks)
	}
	if got := datetime.FormatDate(result.StartDate()); got != "2025-01-06" {
		t.Errorf("StartDate = %s, expected 2025-01-06", got)
	}
	if got := datetime.FormatDate(result.EndDate()); got != "2025-05-26" {
		t.Errorf("EndDate = %s, expected 2025-05-26", got)
	}
}

func TestSynthesizeMinimumWeeks(t *testing.T) {
	tests := []struct {
		name     string
		project  ProjectType
		area     float64
		expected int
	}{
		{"Small house clamps to floor", NewConstruction, 10, 12},
		{"Small apartment clamps to floor", FullRenovation, 20, 6},
		{"Bathroom clamps to floor", RoomRenovation, 4, 2},
		{"Large renovation uses rate", FullRenovation, 100, 15},
		{"Fractional estimate rounds up", RoomRenovation, 12.5, 4},
	}

	start := datetime.MustParseTime(datetime.DateLayout, "2025-03-03")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Synthesize(tt.project, tt.area, start)
			if err != nil {
				t.Fatalf("Synthesize() error = %v", err)
			}
			if result.EstimatedWeeks != tt.expected {
				t.Errorf("EstimatedWeeks = %d, expected %d", result.EstimatedWeeks, tt.expected)
			}
		})
	}
}

func TestSynthesizeInvariants(t *testing.T) {
	start := datetime.MustParseTime(datetime.DateLayout, "2024-02-26")
	areas := []float64{0.5, 3, 7.3, 20, 45, 80, 133.3, 250, 1000}

	for _, template := range Templates {
		for _, area := range areas {
			result, err := Synthesize(template.Type, area, start)
			if err != nil {
				t.Fatalf("Synthesize(%s, %v) error = %v", template.Type, area, err)
			}

			sum := 0
			for i, phase := range result.Phases {
				if phase.DurationWeeks < 1 {
					t.Errorf("%s/%v: phase %s has %d weeks", template.Type, area, phase.Name, phase.DurationWeeks)
				}
				if !phase.EndDate.Equal(datetime.AddWeeks(phase.StartDate, phase.DurationWeeks)) {
					t.Errorf("%s/%v: phase %s end date does not match its duration", template.Type, area, phase.Name)
				}
				if i > 0 && !result.Phases[i-1].EndDate.Equal(phase.StartDate) {
					t.Errorf("%s/%v: phase %s does not start where the previous one ends", template.Type, area, phase.Name)
				}
				sum += phase.DurationWeeks
			}
			if sum != result.TotalDurationWeeks {
				t.Errorf("%s/%v: phases sum to %d, total is %d", template.Type, area, sum, result.TotalDurationWeeks)
			}

			expectedEnd := start.AddDate(0, 0, result.TotalDurationWeeks*7)
			if !result.EndDate().Equal(expectedEnd) {
				t.Errorf("%s/%v: end date %s, expected %s", template.Type, area,
					datetime.FormatDate(result.EndDate()), datetime.FormatDate(expectedEnd))
			}
		}
	}
}

func TestSynthesizeValidation(t *testing.T) {
	start := datetime.MustParseTime(datetime.DateLayout, "2025-01-06")
	tests := []struct {
		name    string
		project ProjectType
		area    float64
		start   time.Time
	}{
		{"Missing area", NewConstruction, 0, start},
		{"Negative area", RoomRenovation, -5, start},
		{"Missing start date", FullRenovation, 50, time.Time{}},
		{"Unknown project type", ProjectType("garden"), 50, start},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Synthesize(tt.project, tt.area, tt.start)
			if !validation.IsValidation(err) {
				t.Errorf("expected validation error, got %v", err)
			}
			if len(result.Phases) != 0 {
				t.Errorf("expected no phases, got %d", len(result.Phases))
			}
		})
	}
}

func TestParseProjectType(t *testing.T) {
	tests := []struct {
		input     string
		expected  ProjectType
		expectErr bool
	}{
		{"new_construction", NewConstruction, false},
		{" Full_Renovation ", FullRenovation, false},
		{"room_renovation", RoomRenovation, false},
		{"pool", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseProjectType(tt.input)
		if (err != nil) != tt.expectErr {
			t.Errorf("ParseProjectType(%q) error = %v, expectErr %v", tt.input, err, tt.expectErr)
		}
		if got != tt.expected {
			t.Errorf("ParseProjectType(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}
