// Package config provides Viper-based hierarchical configuration management
package config

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Jeremy009/BMC/internal/logging"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// LogConfig selects the log level and output format.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// RegisterConfig holds the settings of a register session.
type RegisterConfig struct {
	Supervisors     []string `mapstructure:"supervisors" yaml:"supervisors"`
	ReportsDir      string   `mapstructure:"reports_dir" yaml:"reports_dir"`
	ReductionFactor float64  `mapstructure:"reduction_factor" yaml:"reduction_factor"`
	CurrencySymbol  string   `mapstructure:"currency_symbol" yaml:"currency_symbol"`
}

// CatalogConfig locates the pricing catalog sources.
type CatalogConfig struct {
	File       string `mapstructure:"file" yaml:"file"`
	ProductsDB string `mapstructure:"products_db" yaml:"products_db"`
}

// ReportConfig controls the daily report format.
type ReportConfig struct {
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
}

// Config represents the complete application configuration
type Config struct {
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
	Register RegisterConfig `mapstructure:"register" yaml:"register"`
	Catalog  CatalogConfig  `mapstructure:"catalog" yaml:"catalog"`
	Report   ReportConfig   `mapstructure:"report" yaml:"report"`
}

// ReductionFactor returns the supervisor reduction factor as a decimal.
func (c *Config) ReductionFactor() decimal.Decimal {
	return decimal.NewFromFloat(c.Register.ReductionFactor)
}

// DelimiterRune returns the report delimiter as a rune.
func (c *Config) DelimiterRune() rune {
	return []rune(c.Report.Delimiter)[0]
}

// InitializeConfig initializes Viper configuration with hierarchical loading.
// An explicit configFile replaces the search path and must be readable.
func InitializeConfig(configFile string) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.bmc-register")
		v.AddConfigPath(".bmc-register")
		v.AddConfigPath(".")
	}

	// 3. Environment variables
	v.SetEnvPrefix("BMC")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 4. Read config file (optional unless given explicitly)
	if err := v.ReadInConfig(); err != nil {
		if configFile != "" {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Printf("Warning: error reading config file %s: %v\n", v.ConfigFileUsed(), err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.Register.Supervisors = normalizeSupervisors(config.Register.Supervisors)

	// 5. Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("register.supervisors", []string{})
	v.SetDefault("register.reports_dir", "reports")
	v.SetDefault("register.reduction_factor", 0.8)
	v.SetDefault("register.currency_symbol", "€")

	v.SetDefault("catalog.file", "catalog.yaml")
	v.SetDefault("catalog.products_db", "")

	v.SetDefault("report.delimiter", ";")
}

// normalizeSupervisors trims names and splits comma separated values coming from
// a single environment variable.
func normalizeSupervisors(names []string) []string {
	var out []string
	for _, n := range names {
		for _, part := range strings.Split(n, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if len([]rune(config.Report.Delimiter)) != 1 {
		return fmt.Errorf("report delimiter must be a single character, got: %s", config.Report.Delimiter)
	}
	if !validDelimiter(config.DelimiterRune()) {
		return fmt.Errorf("report delimiter %q cannot separate CSV fields", config.Report.Delimiter)
	}

	if config.Register.ReductionFactor <= 0 || config.Register.ReductionFactor > 1 {
		return fmt.Errorf("register.reduction_factor must be in (0, 1], got: %v", config.Register.ReductionFactor)
	}

	if strings.TrimSpace(config.Register.ReportsDir) == "" {
		return fmt.Errorf("register.reports_dir must not be empty")
	}

	return nil
}

// validDelimiter mirrors the delimiters encoding/csv accepts.
func validDelimiter(r rune) bool {
	return r != 0 && r != '"' && r != '\r' && r != '\n' && utf8.ValidRune(r) && r != utf8.RuneError
}

// ValidateSession checks the settings only a register session needs.
func (c *Config) ValidateSession() error {
	if len(c.Register.Supervisors) == 0 {
		return fmt.Errorf("register.supervisors must list at least one supervisor")
	}
	return nil
}

// ConfigureLoggingFromConfig builds the application logger from the Config struct
func ConfigureLoggingFromConfig(config *Config) logging.Logger {
	return logging.NewLogrusAdapter(config.Log.Level, config.Log.Format)
}
