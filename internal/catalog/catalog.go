// Package catalog exposes every calculator behind one string-keyed entry
// point: raw text inputs go in, a typed result, display lines and budget
// drafts come out.
package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/iwvelando/build-estimator/internal/budget"
	"github.com/iwvelando/build-estimator/pkg/constants"
	"github.com/iwvelando/build-estimator/pkg/mathutil"
	"github.com/iwvelando/build-estimator/pkg/numeric"
	"go.uber.org/zap"
)

// ErrUnknownCalculator is returned by Run for a name that is not registered.
var ErrUnknownCalculator = errors.New("unknown calculator")

// Input holds the raw text of each field, keyed by Field.Key.
type Input map[string]string

// Field describes one input of a calculator.
type Field struct {
	Key      string `json:"key" yaml:"key"`
	Label    string `json:"label" yaml:"label"`
	Unit     string `json:"unit,omitempty" yaml:"unit,omitempty"`
	Required bool   `json:"required" yaml:"required"`
	// Default is used when the field is blank.
	Default string `json:"default,omitempty" yaml:"default,omitempty"`
}

// Calculator describes a registered calculator.
type Calculator struct {
	Name     string  `json:"name" yaml:"name"`
	Title    string  `json:"title" yaml:"title"`
	Category string  `json:"category" yaml:"category"`
	Fields   []Field `json:"fields" yaml:"fields"`
}

// Line is one labelled value of a rendered result.
type Line struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

// Outcome is the result of running a calculator.
type Outcome struct {
	Calculator string        `json:"calculator" yaml:"calculator"`
	Result     interface{}   `json:"result" yaml:"result"`
	Lines      []Line        `json:"lines" yaml:"lines"`
	Notices    []string      `json:"notices,omitempty" yaml:"notices,omitempty"`
	Items      []budget.Item `json:"items,omitempty" yaml:"items,omitempty"`
}

// Settings carries the configurable data used by the calculators.
type Settings struct {
	// Prices overrides DefaultPrices per key.
	Prices      map[string]float64
	MonthlyRate float64
}

type runFunc func(c *Catalog, in fieldReader) (Outcome, error)

type entry struct {
	Calculator
	run runFunc
}

// Catalog is the set of calculators with their price table.
type Catalog struct {
	logger      *zap.Logger
	prices      map[string]float64
	monthlyRate float64
	entries     map[string]entry
	order       []string
}

// New creates a catalogue. Prices missing from settings fall back to
// DefaultPrices and a non-positive rate to constants.DefaultMonthlyRate.
func New(logger *zap.Logger, settings Settings) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	prices := make(map[string]float64, len(DefaultPrices))
	for key, price := range DefaultPrices {
		prices[key] = price
	}
	for key, price := range settings.Prices {
		prices[key] = price
	}
	rate := settings.MonthlyRate
	if rate <= 0 {
		rate = constants.DefaultMonthlyRate
	}

	c := &Catalog{
		logger:      logger,
		prices:      prices,
		monthlyRate: rate,
		entries:     make(map[string]entry),
	}
	for _, e := range registry() {
		c.entries[e.Name] = e
		c.order = append(c.order, e.Name)
	}
	return c
}

// Names returns the calculator names in display order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.order))
	copy(names, c.order)
	return names
}

// Calculators returns the calculator descriptions in display order.
func (c *Catalog) Calculators() []Calculator {
	calculators := make([]Calculator, 0, len(c.order))
	for _, name := range c.order {
		calculators = append(calculators, c.entries[name].Calculator)
	}
	return calculators
}

// Lookup returns the description of a calculator.
func (c *Catalog) Lookup(name string) (Calculator, bool) {
	e, ok := c.entries[normalizeName(name)]
	return e.Calculator, ok
}

// Price returns the unit price for key.
func (c *Catalog) Price(key string) float64 {
	return c.prices[key]
}

// Prices returns a copy of the effective price table.
func (c *Catalog) Prices() map[string]float64 {
	prices := make(map[string]float64, len(c.prices))
	for key, price := range c.prices {
		prices[key] = price
	}
	return prices
}

// Run normalizes in and runs the named calculator. Validation failures are
// returned as *validation.Error; an unknown name wraps ErrUnknownCalculator.
func (c *Catalog) Run(name string, in Input) (Outcome, error) {
	e, ok := c.entries[normalizeName(name)]
	if !ok {
		return Outcome{}, fmt.Errorf("%w: %s", ErrUnknownCalculator, name)
	}

	outcome, err := e.run(c, fieldReader{input: in, fields: e.Fields})
	if err != nil {
		c.logger.Debug(fmt.Sprintf("calculator %s rejected input: %v", e.Name, err),
			zap.String("op", "catalog.Run"),
		)
		return Outcome{}, err
	}
	outcome.Calculator = e.Name

	c.logger.Debug(fmt.Sprintf("calculator %s produced %d budget items", e.Name, len(outcome.Items)),
		zap.String("op", "catalog.Run"),
	)
	return outcome, nil
}

// PriceKeys returns the sorted keys of DefaultPrices.
func PriceKeys() []string {
	keys := make([]string, 0, len(DefaultPrices))
	for key := range DefaultPrices {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// fieldReader reads normalized values, applying field defaults to blanks.
type fieldReader struct {
	input  Input
	fields []Field
}

func (r fieldReader) text(key string) string {
	if value := strings.TrimSpace(r.input[key]); value != "" {
		return value
	}
	for _, f := range r.fields {
		if f.Key == key {
			return f.Default
		}
	}
	return ""
}

func (r fieldReader) number(key string) float64 {
	return numeric.Normalize(r.text(key))
}

func (r fieldReader) flag(key string) bool {
	switch strings.ToLower(r.text(key)) {
	case "1", "true", "yes", "y", "on", "sim", "s":
		return true
	}
	return false
}

// drafts collects the budget items of one outcome.
type drafts struct {
	c        *Catalog
	category string
	items    []budget.Item
}

func (c *Catalog) newDrafts(category string) *drafts {
	return &drafts{c: c, category: category}
}

// add prices qty units with the unit price stored under priceKey.
func (d *drafts) add(name, description string, qty float64, unit, priceKey string) {
	d.addPriced(name, description, qty, unit, qty*d.c.Price(priceKey))
}

// addPriced adds a line with an explicit line total. Empty lines are skipped.
func (d *drafts) addPriced(name, description string, qty float64, unit string, total float64) {
	if qty <= 0 {
		return
	}
	d.items = append(d.items, budget.Item{
		Name:           name,
		Description:    description,
		Quantity:       qty,
		Unit:           unit,
		Category:       d.category,
		EstimatedPrice: mathutil.Round(total),
	})
}
