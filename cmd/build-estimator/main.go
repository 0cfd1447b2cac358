package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/iwvelando/build-estimator/internal/budget"
	"github.com/iwvelando/build-estimator/internal/catalog"
	"github.com/iwvelando/build-estimator/internal/config"
	"github.com/iwvelando/build-estimator/internal/logging"
	"github.com/iwvelando/build-estimator/internal/storage"
	"github.com/iwvelando/build-estimator/internal/worksheet"
	"github.com/iwvelando/build-estimator/pkg/constants"
	"github.com/iwvelando/build-estimator/pkg/output"
	"github.com/iwvelando/build-estimator/pkg/validation"
	"go.uber.org/zap"
)

// inputFlags collects repeated -input key=value flags.
type inputFlags catalog.Input

func (f inputFlags) String() string {
	pairs := make([]string, 0, len(f))
	for key, value := range f {
		pairs = append(pairs, key+"="+value)
	}
	return strings.Join(pairs, ",")
}

func (f inputFlags) Set(value string) error {
	key, text, ok := strings.Cut(value, "=")
	if !ok || strings.TrimSpace(key) == "" {
		return fmt.Errorf("expected key=value, got %q", value)
	}
	f[strings.TrimSpace(key)] = text
	return nil
}

func loadConfiguration(path string, explicit bool) (*config.Configuration, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) && !explicit {
		return config.DefaultConfiguration(), nil
	}
	return config.LoadConfiguration(path)
}

func main() {
	inputs := inputFlags{}

	// Process command line flags first to get config location
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	worksheetLocation := flag.String("worksheet", constants.DefaultWorksheetFile, "path to worksheet file")
	calculatorName := flag.String("calculator", "", "run a single calculator instead of a worksheet")
	flag.Var(inputs, "input", "calculator input as key=value, repeatable")
	listCalculators := flag.Bool("list", false, "list the calculators and their inputs")
	sessionName := flag.String("session", constants.DefaultSessionID, "budget session the worksheet adds to")
	exportFormat := flag.String("export", "", "print the budget as csv or yaml instead of the results")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	explicitConfig := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			explicitConfig = true
		}
	})

	// Load the config file to get logging configuration
	conf, err := loadConfiguration(*configLocation, explicitConfig)
	if err != nil {
		logging.Fatal(fmt.Sprintf("failed to load configuration at %s", *configLocation), err)
	}

	// Initialize logging based on config and CLI override
	logger, err := logging.New(conf.Logging, *logLevel)
	if err != nil {
		logging.Fatal("failed to initialize logger", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Determine output format (CLI override takes precedence over config)
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = strings.ToLower(*outputFormatFlag)
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}
	if *exportFormat != "" {
		if err := validation.ValidateExportFormat(strings.ToLower(*exportFormat)); err != nil {
			logger.Fatal(err.Error(),
				zap.String("op", "main"),
			)
		}
	}

	// Validate configuration and display any warnings
	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	calculators := catalog.New(logger, conf.CatalogSettings())

	switch {
	case *listCalculators:
		printCalculators(calculators)
		return

	case *calculatorName != "":
		outcome, err := calculators.Run(*calculatorName, catalog.Input(inputs))
		if err != nil {
			logger.Fatal("calculation failed",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		if err := output.WriteOutcome(os.Stdout, outputFormat, outcome); err != nil {
			logger.Fatal("failed to write output",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		return
	}

	ws, err := worksheet.Load(*worksheetLocation)
	if err != nil {
		logger.Fatal(fmt.Sprintf("failed to load worksheet at %s", *worksheetLocation),
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	ctx := context.Background()
	repo, err := storage.Open(ctx, conf.Storage, logger)
	if err != nil {
		logger.Fatal("failed to open budget storage",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	sessions := budget.NewSessions(repo, logger)
	defer func() {
		_ = sessions.Close()
	}()

	// Run the worksheet against the session budget; it is saved only if every step succeeds.
	var report worksheet.Report
	err = sessions.Update(ctx, *sessionName, func(store *budget.Store) error {
		var runErr error
		report, runErr = worksheet.NewRunner(calculators, logger).Run(ws, store)
		return runErr
	})
	if err != nil {
		logger.Fatal("failed to run worksheet",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	if err := writeReport(report, outputFormat, strings.ToLower(*exportFormat)); err != nil {
		logger.Fatal("failed to write output",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}

func writeReport(report worksheet.Report, outputFormat, exportFormat string) error {
	if exportFormat != "" {
		return output.ExportBudget(os.Stdout, exportFormat, report.Budget)
	}

	for _, outcome := range report.Outcomes {
		if err := output.WriteOutcome(os.Stdout, outputFormat, outcome); err != nil {
			return err
		}
		fmt.Println()
	}

	if outputFormat == constants.OutputFormatCSV {
		return output.CsvBudget(os.Stdout, report.Budget)
	}
	return output.PrettyBudget(os.Stdout, report.Budget)
}

func printCalculators(c *catalog.Catalog) {
	for _, calc := range c.Calculators() {
		fmt.Printf("%s (%s, %s)\n", calc.Name, calc.Title, calc.Category)
		for _, field := range calc.Fields {
			detail := field.Label
			if field.Unit != "" {
				detail += " [" + field.Unit + "]"
			}
			switch {
			case field.Required:
				detail += ", required"
			case field.Default != "":
				detail += ", default " + field.Default
			}
			fmt.Printf("  %s: %s\n", field.Key, detail)
		}
	}
}
