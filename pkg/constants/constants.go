// Package constants provides shared constants for the build-estimator application.
package constants

import "time"

// DateLayout is the format expected for dates in worksheets and API payloads
// and is also the output date format.
const DateLayout = "2006-01-02"

// Numeric constants
const (
	// DaysPerWeek is the number of days in a schedule week
	DaysPerWeek = 7

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// UnitPrecisionDecimals is the number of decimals a quantity is rounded to
	// before taking its ceiling, so float noise never buys an extra unit
	UnitPrecisionDecimals = 6

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01
)

// Calculator bounds
const (
	// MaxInputValue is the largest measurement, count or amount a calculator
	// accepts
	MaxInputValue = 1e9

	// MaxQuantity is the largest quantity a calculator reports; unit counts
	// saturate here and results that reach it are refused
	MaxQuantity = 1e12

	// MaxInstallments is the longest financing term accepted, in months
	MaxInstallments = 600
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatYAML is the YAML export format for budgets
	OutputFormatYAML = "yaml"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultWorksheetFile is the default worksheet file name
	DefaultWorksheetFile = "worksheet.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix is the prefix for environment overrides of the configuration
	EnvPrefix = "BUILD_ESTIMATOR"
)

// Financing defaults
const (
	// DefaultMonthlyRate is the illustrative monthly interest rate used by the
	// financing calculator when none is configured
	DefaultMonthlyRate = 0.015
)

// Storage backends
const (
	// StorageMemory keeps budgets in process memory only
	StorageMemory = "memory"

	// StorageSQLite persists budget snapshots in a SQLite file
	StorageSQLite = "sqlite"

	// StorageRedis persists budget snapshots in Redis
	StorageRedis = "redis"

	// DefaultRedisKeyPrefix namespaces budget snapshot keys in Redis
	DefaultRedisKeyPrefix = "build-estimator:budget:"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes is the default maximum request body size (256 KB)
	DefaultMaxBodySizeBytes int64 = 256 * 1024

	// SessionHeader carries the budget session id on API requests
	SessionHeader = "X-Session-ID"

	// DefaultSessionID is used when a request carries no session id
	DefaultSessionID = "default"

	// DefaultSessionIdleTimeout is how long an unused session budget stays
	// cached in the API server
	DefaultSessionIdleTimeout = 30 * time.Minute
)
