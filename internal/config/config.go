// Package config provides application configuration management.
// It loads settings from environment variables (and an optional .env file)
// and provides defaults for the convert and serve commands.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ValidationMode selects which settings are required.
type ValidationMode int

const (
	// ConvertMode validates what a one-shot CLI conversion needs.
	ConvertMode ValidationMode = iota
	// ServeMode additionally validates HTTP settings.
	ServeMode
)

// Config holds all application configuration
type Config struct {
	// Logging
	LogLevel  string
	LogFormat string // "json" or "text"

	// Conversion
	InputPath    string // timetable text, default kebiao.txt
	ICSPath      string // default schedule.ics
	JSONPath     string // default course_data.json
	CalendarName string
	ReminderLead time.Duration

	// Server Configuration
	Port            string
	ShutdownTimeout time.Duration
	MaxBodyBytes    int64

	// Rate Limiting of POST /api/convert, per client IP
	RateLimitPerMinute float64 // 0 disables
	RateLimitBurst     int

	// Metrics Authentication
	MetricsAuthEnabled bool
	MetricsUsername    string
	MetricsPassword    string

	// History Configuration
	DataDir          string
	HistoryEnabled   bool
	HistoryRetention time.Duration // 0 keeps everything

	// R2 Configuration
	R2Enabled         bool
	R2AccountID       string
	R2Endpoint        string // overrides the account-derived endpoint
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2Prefix          string

	// Sentry Configuration
	SentryEnabled     bool
	SentryDSN         string
	SentryEnvironment string
	SentrySampleRate  float64

	// Better Stack Configuration
	BetterStackEnabled  bool
	BetterStackToken    string
	BetterStackEndpoint string
}

// Load reads configuration from environment variables and validates it for
// ConvertMode. It attempts to load a .env file first.
func Load() (*Config, error) {
	return LoadForMode(ConvertMode)
}

// LoadForMode reads configuration and validates it for mode.
func LoadForMode(mode ValidationMode) (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		LogLevel:  getEnv(EnvLogLevel, "info"),
		LogFormat: getEnv(EnvLogFormat, "json"),

		InputPath:    getEnv(EnvInputPath, "kebiao.txt"),
		ICSPath:      getEnv(EnvICSPath, "schedule.ics"),
		JSONPath:     getEnv(EnvJSONPath, "course_data.json"),
		CalendarName: getEnv(EnvCalendarName, "课程表"),
		ReminderLead: getDurationEnv(EnvReminderLead, 20*time.Minute),

		Port:            getEnv(EnvPort, "10000"),
		ShutdownTimeout: getDurationEnv(EnvShutdownTimeout, GracefulShutdown),
		MaxBodyBytes:    int64(getIntEnv(EnvMaxBodyBytes, DefaultMaxBodyBytes)),

		RateLimitPerMinute: getFloatEnv(EnvRateLimitPerMinute, DefaultRateLimitPerMinute),
		RateLimitBurst:     getIntEnv(EnvRateLimitBurst, DefaultRateLimitBurst),

		MetricsAuthEnabled: getBoolEnv(EnvMetricsAuthEnabled, false),
		MetricsUsername:    getEnv(EnvMetricsUsername, "prometheus"),
		MetricsPassword:    getEnv(EnvMetricsPassword, ""),

		DataDir:          getEnv(EnvDataDir, "./data"),
		HistoryEnabled:   getBoolEnv(EnvHistoryEnabled, false),
		HistoryRetention: getDurationEnv(EnvHistoryRetention, 0),

		R2Enabled:         getBoolEnv(EnvR2Enabled, false),
		R2AccountID:       getEnv(EnvR2AccountID, ""),
		R2Endpoint:        getEnv(EnvR2Endpoint, ""),
		R2AccessKeyID:     getEnv(EnvR2AccessKeyID, ""),
		R2SecretAccessKey: getEnv(EnvR2SecretAccessKey, ""),
		R2BucketName:      getEnv(EnvR2BucketName, ""),
		R2Prefix:          strings.Trim(getEnv(EnvR2Prefix, "calendars"), "/"),

		SentryEnabled:     getBoolEnv(EnvSentryEnabled, false),
		SentryDSN:         getEnv(EnvSentryDSN, ""),
		SentryEnvironment: getEnv(EnvSentryEnvironment, "production"),
		SentrySampleRate:  getFloatEnv(EnvSentrySampleRate, 1.0),

		BetterStackEnabled:  getBoolEnv(EnvBetterStackEnabled, false),
		BetterStackToken:    getEnv(EnvBetterStackToken, ""),
		BetterStackEndpoint: getEnv(EnvBetterStackEndpoint, "https://in.logs.betterstack.com"),
	}

	if err := cfg.ValidateForMode(mode); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks the settings shared by every mode.
func (c *Config) Validate() error {
	return c.ValidateForMode(ConvertMode)
}

// ValidateForMode checks the settings required by mode and joins every problem found.
func (c *Config) ValidateForMode(mode ValidationMode) error {
	var errs []error

	if c.InputPath == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvInputPath))
	}
	if c.ICSPath == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvICSPath))
	}
	if c.JSONPath == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvJSONPath))
	}
	if c.ReminderLead <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvReminderLead, c.ReminderLead))
	}
	if c.HistoryEnabled && c.DataDir == "" {
		errs = append(errs, fmt.Errorf("%s is required when history is enabled", EnvDataDir))
	}
	if c.HistoryRetention < 0 {
		errs = append(errs, fmt.Errorf("%s cannot be negative, got %v", EnvHistoryRetention, c.HistoryRetention))
	}

	if c.R2Enabled {
		if c.R2AccountID == "" && c.R2Endpoint == "" {
			errs = append(errs, fmt.Errorf("%s or %s is required when R2 is enabled", EnvR2AccountID, EnvR2Endpoint))
		}
		if c.R2AccessKeyID == "" || c.R2SecretAccessKey == "" {
			errs = append(errs, errors.New("R2 credentials are required when R2 is enabled"))
		}
		if c.R2BucketName == "" {
			errs = append(errs, fmt.Errorf("%s is required when R2 is enabled", EnvR2BucketName))
		}
	}

	if c.SentryEnabled && c.SentryDSN == "" {
		errs = append(errs, fmt.Errorf("%s is required when Sentry is enabled", EnvSentryDSN))
	}
	if c.SentrySampleRate < 0 || c.SentrySampleRate > 1 {
		errs = append(errs, fmt.Errorf("%s must be within [0, 1], got %v", EnvSentrySampleRate, c.SentrySampleRate))
	}
	if c.BetterStackEnabled && c.BetterStackToken == "" {
		errs = append(errs, fmt.Errorf("%s is required when Better Stack is enabled", EnvBetterStackToken))
	}

	if mode == ServeMode {
		if c.Port == "" {
			errs = append(errs, fmt.Errorf("%s is required", EnvPort))
		}
		if c.ShutdownTimeout <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvShutdownTimeout, c.ShutdownTimeout))
		}
		if c.MaxBodyBytes <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %d", EnvMaxBodyBytes, c.MaxBodyBytes))
		}
		if c.RateLimitPerMinute < 0 {
			errs = append(errs, fmt.Errorf("%s cannot be negative, got %v", EnvRateLimitPerMinute, c.RateLimitPerMinute))
		}
		if c.RateLimitPerMinute > 0 && c.RateLimitBurst < 1 {
			errs = append(errs, fmt.Errorf("%s must be at least 1, got %d", EnvRateLimitBurst, c.RateLimitBurst))
		}
		if c.MetricsAuthEnabled && c.MetricsPassword == "" {
			errs = append(errs, fmt.Errorf("%s is required when metrics auth is enabled", EnvMetricsPassword))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// SQLitePath returns the full path to the conversion history database.
func (c *Config) SQLitePath() string {
	return filepath.Join(c.DataDir, "history.db")
}

// R2EndpointURL returns the S3 endpoint for R2.
func (c *Config) R2EndpointURL() string {
	if c.R2Endpoint != "" {
		return c.R2Endpoint
	}
	return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", c.R2AccountID)
}

// BetterStackActive reports whether logs should be shipped to Better Stack.
func (c *Config) BetterStackActive() bool {
	return c.BetterStackEnabled && c.BetterStackToken != ""
}

// getEnv retrieves environment variable with fallback to default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv retrieves integer environment variable with fallback to default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getBoolEnv accepts the forms strconv.ParseBool does.
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getDurationEnv retrieves duration environment variable with fallback to default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getFloatEnv retrieves float64 environment variable with fallback to default value
func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
