// Package worksheet runs a batch of calculations described in a YAML file
// and collects their outcomes and budget items.
package worksheet

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/iwvelando/build-estimator/internal/budget"
	"github.com/iwvelando/build-estimator/internal/catalog"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Calculation is one calculator run.
type Calculation struct {
	Calculator  string        `yaml:"calculator"`
	Inputs      catalog.Input `yaml:"inputs,omitempty"`
	AddToBudget bool          `yaml:"addToBudget,omitempty"`
}

// Worksheet is the content of a worksheet file.
//
//	calculations:
//	  - calculator: paint
//	    inputs: {wallLength: 20, wallHeight: "2,7"}
//	    addToBudget: true
//	items:
//	  - {name: Labour, quantity: 1, unit: job, category: labour, estimatedPrice: 4500}
//	schedule: {area: 80, startDate: 2025-01-06}
//	financing: {downPayment: 10000, installments: 48}
type Worksheet struct {
	Calculations []Calculation `yaml:"calculations,omitempty"`
	// Items are added to the budget as entered.
	Items    []budget.Item `yaml:"items,omitempty"`
	Schedule catalog.Input `yaml:"schedule,omitempty"`
	// Financing finances the budget total unless totalValue is given.
	Financing catalog.Input `yaml:"financing,omitempty"`
}

// Report holds everything a worksheet produced.
type Report struct {
	Outcomes []catalog.Outcome
	Budget   budget.Snapshot
}

// Load reads a worksheet file.
func Load(path string) (*Worksheet, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading worksheet file, %s", err)
	}
	return Parse(bytes.NewReader(content))
}

// Parse decodes a worksheet, rejecting unknown keys.
func Parse(r io.Reader) (*Worksheet, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var ws Worksheet
	if err := decoder.Decode(&ws); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("worksheet is empty")
		}
		return nil, fmt.Errorf("unable to decode worksheet, %s", err)
	}
	if err := ws.Validate(); err != nil {
		return nil, err
	}
	return &ws, nil
}

// Validate checks the worksheet structure. Field values are checked by the
// calculators when the worksheet runs.
func (ws *Worksheet) Validate() error {
	if len(ws.Calculations) == 0 && len(ws.Items) == 0 && ws.Schedule == nil && ws.Financing == nil {
		return fmt.Errorf("worksheet has nothing to calculate")
	}
	for i, calc := range ws.Calculations {
		if strings.TrimSpace(calc.Calculator) == "" {
			return fmt.Errorf("calculation %d has no calculator", i+1)
		}
	}
	for i, item := range ws.Items {
		if strings.TrimSpace(item.Name) == "" {
			return fmt.Errorf("budget item %d has no name", i+1)
		}
	}
	return nil
}

// Runner runs worksheets against a catalogue.
type Runner struct {
	catalog *catalog.Catalog
	logger  *zap.Logger
}

// NewRunner creates a worksheet runner.
func NewRunner(c *catalog.Catalog, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{catalog: c, logger: logger}
}

// Run executes the calculations in order, then adds the manual items, then
// the schedule and the financing. It stops at the first failing step; items
// already added to store stay there.
func (r *Runner) Run(ws *Worksheet, store *budget.Store) (Report, error) {
	var report Report

	for i, calc := range ws.Calculations {
		outcome, err := r.catalog.Run(calc.Calculator, calc.Inputs)
		if err != nil {
			return report, fmt.Errorf("calculation %d (%s): %w", i+1, calc.Calculator, err)
		}
		if calc.AddToBudget {
			for _, item := range outcome.Items {
				store.Add(item)
			}
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}

	for i, item := range ws.Items {
		if err := budget.ValidateItem(item); err != nil {
			return report, fmt.Errorf("item %d (%s): %w", i+1, item.Name, err)
		}
		store.Add(item)
	}

	if ws.Schedule != nil {
		outcome, err := r.catalog.Run("schedule", ws.Schedule)
		if err != nil {
			return report, fmt.Errorf("schedule: %w", err)
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}

	if ws.Financing != nil {
		in := make(catalog.Input, len(ws.Financing)+1)
		for key, value := range ws.Financing {
			in[key] = value
		}
		if strings.TrimSpace(in["totalValue"]) == "" {
			in["totalValue"] = strconv.FormatFloat(store.TotalEstimatedValue(), 'f', 2, 64)
		}
		outcome, err := r.catalog.Run("financing", in)
		if err != nil {
			return report, fmt.Errorf("financing: %w", err)
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}

	report.Budget = store.Snapshot()
	r.logger.Info(fmt.Sprintf("worksheet produced %d results and %d budget items",
		len(report.Outcomes), report.Budget.TotalItems),
		zap.String("op", "worksheet.Run"),
	)
	return report, nil
}
