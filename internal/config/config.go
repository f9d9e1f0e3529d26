// Package config handles configuration loading for finchart.
// It supports YAML config files with environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Sources SourcesConfig `mapstructure:"sources" yaml:"sources" json:"sources"`
	API     APIConfig     `mapstructure:"api" yaml:"api" json:"api"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging" json:"logging"`
}

// SourcesConfig describes the income report and price collaborators.
// URL templates may contain {symbol} and {apikey}.
type SourcesConfig struct {
	IncomeURL     string `mapstructure:"income_url" yaml:"income_url" json:"income_url" validate:"required,contains={symbol}"`
	IncomePath    string `mapstructure:"income_path" yaml:"income_path" json:"income_path" validate:"required,startswith=$"`
	PriceURL      string `mapstructure:"price_url" yaml:"price_url" json:"price_url" validate:"required,contains={symbol}"`
	PricePath     string `mapstructure:"price_path" yaml:"price_path" json:"price_path" validate:"required,startswith=$"`
	APIKey        string `mapstructure:"api_key" yaml:"api_key" json:"-"`
	TimeoutSec    int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec" validate:"gt=0"`
	RateLimit     int    `mapstructure:"rate_limit" yaml:"rate_limit" json:"rate_limit" validate:"gt=0"` // requests per window
	RateWindowSec int    `mapstructure:"rate_window_sec" yaml:"rate_window_sec" json:"rate_window_sec" validate:"gt=0"`
	MaxBodyBytes  int64  `mapstructure:"max_body_bytes" yaml:"max_body_bytes" json:"max_body_bytes" validate:"gt=0"`
	LenientJSON   bool   `mapstructure:"lenient_json" yaml:"lenient_json" json:"lenient_json"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host" yaml:"host" json:"host"`
	Port        int      `mapstructure:"port" yaml:"port" json:"port" validate:"min=1,max=65535"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins" json:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" json:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" json:"format" validate:"oneof=text json"`
}

// Load reads the configuration from file and environment variables.
// A .env file in the working directory is loaded first, if present.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.finchart/config.yaml (home directory)
//  3. /etc/finchart/config.yaml (system)
//
// Environment variables override config file values.
// Format: FINCHART_<SECTION>_<KEY>, e.g., FINCHART_SOURCES_API_KEY
func Load() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".finchart"))
	v.AddConfigPath("/etc/finchart")

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	return decode(v)
}

// Validate checks the configuration against its struct constraints.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("FINCHART")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Sources default to the web app's own API routes.
	v.SetDefault("sources.income_url", "http://localhost:3000/api/income?ticker={symbol}")
	v.SetDefault("sources.income_path", "$.data")
	v.SetDefault("sources.price_url", "http://localhost:3000/api/price?ticker={symbol}")
	v.SetDefault("sources.price_path", "$.prices")
	v.SetDefault("sources.api_key", "")
	v.SetDefault("sources.timeout_sec", 30)
	v.SetDefault("sources.rate_limit", 5) // Alpha Vantage free tier: 5 req/min
	v.SetDefault("sources.rate_window_sec", 60)
	v.SetDefault("sources.max_body_bytes", 10<<20)
	v.SetDefault("sources.lenient_json", false)

	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"http://localhost:3000"})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// overrideFromEnv explicitly reads sensitive keys from environment variables.
func overrideFromEnv(cfg *Config) {
	if key := os.Getenv(EnvAlphaVantageKey); key != "" && cfg.Sources.APIKey == "" {
		cfg.Sources.APIKey = key
	}
	if key := os.Getenv(EnvSourcesAPIKey); key != "" {
		cfg.Sources.APIKey = key
	}
}

// loadDotEnv loads ./.env into the process environment without overriding
// variables that are already set.
func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error loading .env: %w", err)
	}
	return nil
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
