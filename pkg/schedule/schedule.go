// Package schedule synthesizes a phased, dated project timeline from a project
// type, the built area and a start date.
package schedule

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/iwvelando/build-estimator/pkg/datetime"
	"github.com/iwvelando/build-estimator/pkg/mathutil"
	"github.com/iwvelando/build-estimator/pkg/validation"
	"go.uber.org/zap"
)

// ProjectType identifies a schedule template.
type ProjectType string

const (
	NewConstruction ProjectType = "new_construction"
	FullRenovation  ProjectType = "full_renovation"
	RoomRenovation  ProjectType = "room_renovation"
)

// PhaseTemplate is one step of a template with its share of the estimate.
type PhaseTemplate struct {
	Name        string
	Description string
	Proportion  float64
}

// Template describes how a project type is estimated and divided.
type Template struct {
	Type         ProjectType
	Title        string
	WeeksPerM2   float64
	MinimumWeeks int
	Phases       []PhaseTemplate
}

// Templates holds the built-in templates in display order.
var Templates = []Template{
	{
		Type:         NewConstruction,
		Title:        "New construction",
		WeeksPerM2:   0.25,
		MinimumWeeks: 12,
		Phases: []PhaseTemplate{
			{"Preliminaries and site", "Permits, site clearing, layout and temporary facilities", 0.08},
			{"Foundation", "Excavation, footings and ground beams", 0.15},
			{"Structure", "Columns, beams and slabs", 0.20},
			{"Masonry", "Block walls and lintels", 0.15},
			{"Roofing", "Roof structure, tiles and waterproofing", 0.10},
			{"Installations", "Electrical, plumbing and drainage", 0.12},
			{"Finishes", "Plaster, flooring, coatings, fixtures and painting", 0.15},
			{"Cleaning and handover", "Final cleaning, inspection and delivery", 0.05},
		},
	},
	{
		Type:         FullRenovation,
		Title:        "Full renovation",
		WeeksPerM2:   0.15,
		MinimumWeeks: 6,
		Phases: []PhaseTemplate{
			{"Demolition", "Removal of finishes, fixtures and debris", 0.10},
			{"Structural repairs", "Reinforcement and repair of the existing structure", 0.15},
			{"Installations", "New electrical and plumbing runs", 0.25},
			{"Plastering", "Wall and ceiling plaster", 0.15},
			{"Flooring", "Subfloor and floor covering", 0.15},
			{"Painting and finishes", "Painting, fixtures and trims", 0.15},
			{"Cleaning", "Final cleaning", 0.05},
		},
	},
	{
		Type:         RoomRenovation,
		Title:        "Room renovation",
		WeeksPerM2:   0.30,
		MinimumWeeks: 2,
		Phases: []PhaseTemplate{
			{"Protection and demolition", "Protect adjacent areas and remove old finishes", 0.15},
			{"Installations", "Electrical and plumbing points", 0.25},
			{"Surfaces", "Plaster, tiling and flooring", 0.30},
			{"Painting", "Walls and ceiling", 0.20},
			{"Cleaning", "Final cleaning", 0.10},
		},
	},
}

// Phase is one dated segment of a schedule.
type Phase struct {
	Name          string
	Description   string
	DurationWeeks int
	StartDate     time.Time
	EndDate       time.Time
}

// Schedule is a synthesized project timeline.
type Schedule struct {
	ProjectType ProjectType
	Phases      []Phase
	// EstimatedWeeks is the area-based estimate; TotalDurationWeeks may drift
	// from it because each phase is rounded separately.
	EstimatedWeeks     int
	TotalDurationWeeks int
}

// StartDate returns the start of the first phase.
func (s Schedule) StartDate() time.Time {
	if len(s.Phases) == 0 {
		return time.Time{}
	}
	return s.Phases[0].StartDate
}

// EndDate returns the end of the last phase.
func (s Schedule) EndDate() time.Time {
	if len(s.Phases) == 0 {
		return time.Time{}
	}
	return s.Phases[len(s.Phases)-1].EndDate
}

// ParseProjectType maps an identifier to a ProjectType.
func ParseProjectType(value string) (ProjectType, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, t := range Templates {
		if string(t.Type) == normalized {
			return t.Type, nil
		}
	}
	return "", validation.Invalid("projectType", "unknown project type %q", value)
}

// TemplateFor returns the template of a project type.
func TemplateFor(projectType ProjectType) (Template, bool) {
	for _, t := range Templates {
		if t.Type == projectType {
			return t, true
		}
	}
	return Template{}, false
}

// Synthesizer builds schedules from the templates.
type Synthesizer struct {
	logger *zap.Logger
}

// NewSynthesizer creates a new synthesizer instance.
func NewSynthesizer(logger *zap.Logger) *Synthesizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synthesizer{logger: logger}
}

// Synthesize builds a schedule with a nop logger.
func Synthesize(projectType ProjectType, area float64, start time.Time) (Schedule, error) {
	return NewSynthesizer(nil).Synthesize(projectType, area, start)
}

// Synthesize estimates the project length from the area, splits it into the
// template phases and chains their dates from start. Every phase lasts at
// least one week.
func (s *Synthesizer) Synthesize(projectType ProjectType, area float64, start time.Time) (Schedule, error) {
	template, ok := TemplateFor(projectType)
	if !ok {
		return Schedule{}, validation.Invalid("projectType", "unknown project type %q", projectType)
	}
	if err := validation.Positive("area", area); err != nil {
		return Schedule{}, err
	}
	if start.IsZero() {
		return Schedule{}, validation.Invalid("startDate", "start date is required")
	}

	estimate := mathutil.CeilUnits(template.WeeksPerM2 * area)
	if estimate < template.MinimumWeeks {
		estimate = template.MinimumWeeks
	}

	result := Schedule{
		ProjectType:    projectType,
		Phases:         make([]Phase, 0, len(template.Phases)),
		EstimatedWeeks: estimate,
	}
	cursor := start
	for _, p := range template.Phases {
		weeks := int(math.Round(float64(estimate) * p.Proportion))
		if weeks < 1 {
			weeks = 1
		}
		end := datetime.AddWeeks(cursor, weeks)
		result.Phases = append(result.Phases, Phase{
			Name:          p.Name,
			Description:   p.Description,
			DurationWeeks: weeks,
			StartDate:     cursor,
			EndDate:       end,
		})
		result.TotalDurationWeeks += weeks
		cursor = end
	}

	if result.TotalDurationWeeks != estimate {
		s.logger.Debug(fmt.Sprintf("%s schedule for %.2f m2 realized %d weeks against an estimate of %d",
			projectType, area, result.TotalDurationWeeks, estimate),
			zap.String("op", "schedule.Synthesize"),
		)
	}
	return result, nil
}
