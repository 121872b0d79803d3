package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"phstats/internal/errors"
	"phstats/internal/validation"
)

// Config represents the defaults the command line tools run with
type Config struct {
	Stats   StatsConfig
	Input   InputConfig
	Logging LoggingConfig
}

// StatsConfig holds the defaults of the calculators
type StatsConfig struct {
	Confidence  []float64
	Multiplier  float64
	YearsOfData float64
	Metadata    bool
}

// InputConfig holds file reading settings
type InputConfig struct {
	Sheet string
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string
}

// Load reads configuration from the environment, after loading any .env
// files given (or ./.env when none are), and validates it.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		// a missing .env file is fine; the environment alone is enough
		_ = godotenv.Load()
	} else if err := godotenv.Load(envFiles...); err != nil {
		return nil, errors.Wrap(errors.WithCode(errors.CodeConfigInvalid, err), "failed to load env files")
	}

	statsConfig, err := loadStatsConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load statistics configuration")
	}

	config := &Config{
		Stats:   *statsConfig,
		Input:   InputConfig{Sheet: getEnvOrDefault("PHSTATS_SHEET", "Sheet1")},
		Logging: LoggingConfig{Level: getEnvOrDefault("PHSTATS_LOG_LEVEL", getEnvOrDefault("LOG_LEVEL", "INFO"))},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func loadStatsConfig() (*StatsConfig, error) {
	levels, err := parseLevels(getEnvOrDefault("PHSTATS_CONFIDENCE", "0.95,0.998"))
	if err != nil {
		return nil, err
	}
	return &StatsConfig{
		Confidence:  levels,
		Multiplier:  getEnvFloatOrDefault("PHSTATS_MULTIPLIER", 100000),
		YearsOfData: getEnvFloatOrDefault("PHSTATS_YEARS_OF_DATA", 1),
		Metadata:    getEnvBoolOrDefault("PHSTATS_METADATA", true),
	}, nil
}

// parseLevels reads a comma separated list such as "0.95,0.998"
func parseLevels(value string) ([]float64, error) {
	var levels []float64
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		level, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, errors.Newf(errors.CodeConfigInvalid, "PHSTATS_CONFIDENCE: %q is not a number", part)
		}
		levels = append(levels, level)
	}
	return levels, nil
}

func validateConfig(config *Config) error {
	levels, err := validation.Confidence(config.Stats.Confidence)
	if err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, err)
	}
	config.Stats.Confidence = levels

	if !(config.Stats.Multiplier > 0) {
		return errors.ConfigInvalid("PHSTATS_MULTIPLIER must be positive")
	}
	if !(config.Stats.YearsOfData > 0) {
		return errors.ConfigInvalid("PHSTATS_YEARS_OF_DATA must be positive")
	}
	if config.Input.Sheet == "" {
		return errors.ConfigInvalid("PHSTATS_SHEET must not be empty")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
