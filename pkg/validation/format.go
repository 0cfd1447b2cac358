// Package validation provides common validation utilities.
package validation

import (
	"fmt"

	"github.com/iwvelando/build-estimator/pkg/constants"
)

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	if format != constants.OutputFormatPretty && format != constants.OutputFormatCSV {
		return fmt.Errorf("expected output format of %s or %s, got %s",
			constants.OutputFormatPretty, constants.OutputFormatCSV, format)
	}
	return nil
}

// ValidateExportFormat checks if a budget export format is supported.
func ValidateExportFormat(format string) error {
	if format != constants.OutputFormatCSV && format != constants.OutputFormatYAML {
		return fmt.Errorf("expected export format of %s or %s, got %s",
			constants.OutputFormatCSV, constants.OutputFormatYAML, format)
	}
	return nil
}
