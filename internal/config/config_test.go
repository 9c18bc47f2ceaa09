package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		LogLevel:         "info",
		InputPath:        "kebiao.txt",
		ICSPath:          "schedule.ics",
		JSONPath:         "course_data.json",
		ReminderLead:     20 * time.Minute,
		Port:             "10000",
		ShutdownTimeout:  GracefulShutdown,
		MaxBodyBytes:     DefaultMaxBodyBytes,
		DataDir:          "./data",
		SentrySampleRate: 1.0,
	}
}

func TestLoad_Defaults(t *testing.T) {
	// t.Setenv forbids t.Parallel
	t.Setenv(EnvInputPath, "")
	t.Setenv(EnvPort, "")
	t.Setenv(EnvR2Prefix, "/ics/")
	t.Setenv(EnvRateLimitPerMinute, "")
	t.Setenv(EnvRateLimitBurst, "")
	t.Chdir(t.TempDir()) // no stray .env

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "kebiao.txt", cfg.InputPath)
	assert.Equal(t, "schedule.ics", cfg.ICSPath)
	assert.Equal(t, "course_data.json", cfg.JSONPath)
	assert.Equal(t, "10000", cfg.Port)
	assert.Equal(t, 20*time.Minute, cfg.ReminderLead)
	assert.Equal(t, int64(DefaultMaxBodyBytes), cfg.MaxBodyBytes)
	assert.Equal(t, "ics", cfg.R2Prefix)
	assert.False(t, cfg.HistoryEnabled)
	assert.InDelta(t, float64(DefaultRateLimitPerMinute), cfg.RateLimitPerMinute, 1e-9)
	assert.Equal(t, DefaultRateLimitBurst, cfg.RateLimitBurst)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv(EnvInputPath, "spring.txt")
	t.Setenv(EnvReminderLead, "15m")
	t.Setenv(EnvHistoryEnabled, "true")
	t.Setenv(EnvDataDir, "/var/lib/kebiao")
	t.Setenv(EnvMaxBodyBytes, "not-a-number")
	t.Chdir(t.TempDir())

	cfg, err := LoadForMode(ServeMode)
	require.NoError(t, err)

	assert.Equal(t, "spring.txt", cfg.InputPath)
	assert.Equal(t, 15*time.Minute, cfg.ReminderLead)
	assert.True(t, cfg.HistoryEnabled)
	assert.Equal(t, "/var/lib/kebiao/history.db", cfg.SQLitePath())
	assert.Equal(t, int64(DefaultMaxBodyBytes), cfg.MaxBodyBytes, "invalid ints fall back to default")
}

func TestValidateForMode(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		mode        ValidationMode
		mutate      func(*Config)
		errContains []string
	}{
		{
			name:   "valid convert config",
			mode:   ConvertMode,
			mutate: func(*Config) {},
		},
		{
			name:   "valid serve config",
			mode:   ServeMode,
			mutate: func(*Config) {},
		},
		{
			name: "port only checked in serve mode",
			mode: ConvertMode,
			mutate: func(c *Config) {
				c.Port = ""
			},
		},
		{
			name: "serve mode requires port and body limit",
			mode: ServeMode,
			mutate: func(c *Config) {
				c.Port = ""
				c.MaxBodyBytes = 0
			},
			errContains: []string{EnvPort, EnvMaxBodyBytes},
		},
		{
			name: "R2 requires bucket and credentials",
			mode: ConvertMode,
			mutate: func(c *Config) {
				c.R2Enabled = true
				c.R2AccountID = "acct"
			},
			errContains: []string{"R2 credentials", EnvR2BucketName},
		},
		{
			name: "sentry without DSN",
			mode: ConvertMode,
			mutate: func(c *Config) {
				c.SentryEnabled = true
			},
			errContains: []string{EnvSentryDSN},
		},
		{
			name: "non-positive reminder lead",
			mode: ConvertMode,
			mutate: func(c *Config) {
				c.ReminderLead = 0
			},
			errContains: []string{EnvReminderLead},
		},
		{
			name: "rate limit needs a burst",
			mode: ServeMode,
			mutate: func(c *Config) {
				c.RateLimitPerMinute = 30
				c.RateLimitBurst = 0
			},
			errContains: []string{EnvRateLimitBurst},
		},
		{
			name: "disabled rate limit ignores burst",
			mode: ServeMode,
			mutate: func(c *Config) {
				c.RateLimitPerMinute = 0
				c.RateLimitBurst = 0
			},
		},
		{
			name: "metrics auth without password",
			mode: ServeMode,
			mutate: func(c *Config) {
				c.MetricsAuthEnabled = true
			},
			errContains: []string{EnvMetricsPassword},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.ValidateForMode(tt.mode)
			if len(tt.errContains) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			for _, want := range tt.errContains {
				assert.True(t, strings.Contains(err.Error(), want), "error %q should mention %q", err, want)
			}
		})
	}
}

func TestR2EndpointURL(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.R2AccountID = "abc123"
	assert.Equal(t, "https://abc123.r2.cloudflarestorage.com", cfg.R2EndpointURL())

	cfg.R2Endpoint = "http://localhost:9000"
	assert.Equal(t, "http://localhost:9000", cfg.R2EndpointURL())
}
