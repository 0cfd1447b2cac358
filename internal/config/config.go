// Package config defines the data structures related to configuration and
// includes functions for loading and validating the config.
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/build-estimator/internal/catalog"
	"github.com/iwvelando/build-estimator/pkg/constants"
	"github.com/iwvelando/build-estimator/pkg/validation"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for build-estimator.
type Configuration struct {
	Logging   LoggingConfig      `yaml:"logging,omitempty"`
	Output    OutputConfig       `yaml:"output,omitempty"`
	Financing FinancingConfig    `yaml:"financing,omitempty"`
	Pricing   map[string]float64 `yaml:"pricing,omitempty"`
	Storage   StorageConfig      `yaml:"storage,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv
}

// FinancingConfig holds the defaults of the financing calculator.
type FinancingConfig struct {
	MonthlyRate float64 `yaml:"monthlyRate,omitempty"` // fraction, 0.015 is 1.5% a month
}

// StorageConfig selects where session budgets are kept.
type StorageConfig struct {
	Backend      string `yaml:"backend,omitempty"` // memory, sqlite, redis
	Path         string `yaml:"path,omitempty"`    // sqlite database file
	RedisAddress string `yaml:"redisAddress,omitempty"`
	RedisDB      int    `yaml:"redisDB,omitempty"`
	KeyPrefix    string `yaml:"keyPrefix,omitempty"`
	TTL          string `yaml:"ttl,omitempty"` // redis expiry, e.g. "72h"; empty keeps budgets
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.outputFile", "")
	v.SetDefault("output.format", constants.OutputFormatPretty)
	v.SetDefault("financing.monthlyRate", constants.DefaultMonthlyRate)
	v.SetDefault("storage.backend", constants.StorageMemory)
	v.SetDefault("storage.path", "build-estimator.db")
	v.SetDefault("storage.redisAddress", "localhost:6379")
	v.SetDefault("storage.redisDB", 0)
	v.SetDefault("storage.keyPrefix", constants.DefaultRedisKeyPrefix)
	v.SetDefault("storage.ttl", "")
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	configuration.normalize()
	return &configuration, nil
}

// DefaultConfiguration returns the configuration used when no file is given,
// still honouring BUILD_ESTIMATOR_* environment overrides.
func DefaultConfiguration() *Configuration {
	configuration, err := decode(newViper())
	if err != nil {
		// Defaults are all scalar and always decode.
		panic(err)
	}
	return configuration
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	return decode(v)
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config, %s", err)
	}
	return decode(v)
}

func (c *Configuration) normalize() {
	c.Output.Format = strings.ToLower(strings.TrimSpace(c.Output.Format))
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	if len(c.Pricing) > 0 {
		// Keys are matched case-insensitively, as viper lowercases them.
		pricing := make(map[string]float64, len(c.Pricing))
		for key, price := range c.Pricing {
			pricing[strings.ToLower(key)] = price
		}
		c.Pricing = pricing
	}
}

// CatalogSettings returns the calculator settings derived from the configuration.
func (c *Configuration) CatalogSettings() catalog.Settings {
	return catalog.Settings{
		Prices:      c.Pricing,
		MonthlyRate: c.Financing.MonthlyRate,
	}
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
		warnings = append(warnings, fmt.Sprintf("Output format: %v - pretty output will be used", err))
	}

	if warning := validation.ValidateMonthlyRate(c.Financing.MonthlyRate); warning != "" {
		warnings = append(warnings, warning)
	}

	warnings = append(warnings, validation.ValidatePrices(c.Pricing, catalog.DefaultPrices)...)

	switch c.Storage.Backend {
	case constants.StorageMemory:
	case constants.StorageSQLite:
		if strings.TrimSpace(c.Storage.Path) == "" {
			warnings = append(warnings, "Storage backend sqlite has no path configured")
		}
	case constants.StorageRedis:
		if strings.TrimSpace(c.Storage.RedisAddress) == "" {
			warnings = append(warnings, "Storage backend redis has no address configured")
		}
	default:
		warnings = append(warnings, fmt.Sprintf("Unknown storage backend '%s' - budgets will be kept in memory",
			c.Storage.Backend))
	}

	return warnings
}
