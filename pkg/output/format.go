// Package output provides utilities for formatting and displaying calculator
// results and budgets.
package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/iwvelando/build-estimator/internal/budget"
	"github.com/iwvelando/build-estimator/internal/catalog"
	"github.com/iwvelando/build-estimator/pkg/constants"
	"github.com/iwvelando/build-estimator/pkg/format"
	"gopkg.in/yaml.v3"
)

// BudgetColumns is the header of the CSV budget export.
var BudgetColumns = []string{"id", "category", "name", "description", "quantity", "unit", "estimatedPrice"}

// PrettyFormat writes a human-readable rather than machine-readable table of
// one calculator outcome.
func PrettyFormat(w io.Writer, outcome catalog.Outcome) error {
	width := 0
	for _, line := range outcome.Lines {
		if len([]rune(line.Label)) > width {
			width = len([]rune(line.Label))
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "--- Results for calculator %s ---\n", outcome.Calculator)
	for _, line := range outcome.Lines {
		fmt.Fprintf(&b, "%s | %s\n", pad(line.Label, width), line.Value)
	}
	for _, notice := range outcome.Notices {
		fmt.Fprintf(&b, "Note: %s\n", notice)
	}
	if len(outcome.Items) > 0 {
		fmt.Fprintf(&b, "\nBudget items\n")
		for _, item := range outcome.Items {
			fmt.Fprintf(&b, "  %s: %s = %s\n", item.Name,
				format.Quantity(item.Quantity, 2, item.Unit), format.Currency(item.EstimatedPrice))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// CsvFormat writes one calculator outcome in comma-separated value format,
// one row per labelled value and one per notice.
func CsvFormat(w io.Writer, outcome catalog.Outcome) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"calculator", "label", "value"}); err != nil {
		return err
	}
	for _, line := range outcome.Lines {
		if err := cw.Write([]string{outcome.Calculator, line.Label, line.Value}); err != nil {
			return err
		}
	}
	for _, notice := range outcome.Notices {
		if err := cw.Write([]string{outcome.Calculator, "note", notice}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteOutcome renders outcome in the requested output format.
func WriteOutcome(w io.Writer, outputFormat string, outcome catalog.Outcome) error {
	switch outputFormat {
	case constants.OutputFormatCSV:
		return CsvFormat(w, outcome)
	case constants.OutputFormatPretty, "":
		return PrettyFormat(w, outcome)
	}
	return fmt.Errorf("unsupported output format %q", outputFormat)
}

// PrettyBudget writes the budget grouped by category with subtotals and the
// grand total.
func PrettyBudget(w io.Writer, snapshot budget.Snapshot) error {
	var b strings.Builder
	fmt.Fprintf(&b, "--- Budget: %s items ---\n", format.Integer(snapshot.TotalItems))
	for _, group := range snapshot.Groups {
		fmt.Fprintf(&b, "[%s]\n", group.Category)
		for _, item := range group.Items {
			fmt.Fprintf(&b, "  %s | %s | %s\n", item.Name,
				format.Quantity(item.Quantity, 2, item.Unit), format.Currency(item.EstimatedPrice))
		}
		fmt.Fprintf(&b, "  Subtotal: %s\n", format.Currency(group.Subtotal))
	}
	fmt.Fprintf(&b, "Total: %s\n", format.Currency(snapshot.TotalEstimatedValue))

	_, err := io.WriteString(w, b.String())
	return err
}

// CsvBudget writes the budget items in insertion order. Numbers use a dot
// decimal separator so the file can be re-imported.
func CsvBudget(w io.Writer, snapshot budget.Snapshot) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(BudgetColumns); err != nil {
		return err
	}
	for _, item := range snapshot.Items {
		record := []string{
			item.ID,
			item.Category,
			item.Name,
			item.Description,
			strconv.FormatFloat(item.Quantity, 'f', -1, 64),
			item.Unit,
			strconv.FormatFloat(item.EstimatedPrice, 'f', 2, 64),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// YamlBudget writes the whole snapshot, items and groups included, as YAML.
func YamlBudget(w io.Writer, snapshot budget.Snapshot) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(snapshot); err != nil {
		return fmt.Errorf("failed to encode budget: %w", err)
	}
	return encoder.Close()
}

// ExportBudget writes the budget in the requested export format.
func ExportBudget(w io.Writer, exportFormat string, snapshot budget.Snapshot) error {
	switch exportFormat {
	case constants.OutputFormatCSV:
		return CsvBudget(w, snapshot)
	case constants.OutputFormatYAML:
		return YamlBudget(w, snapshot)
	}
	return fmt.Errorf("unsupported export format %q", exportFormat)
}

func pad(text string, width int) string {
	if n := width - len([]rune(text)); n > 0 {
		return text + strings.Repeat(" ", n)
	}
	return text
}
