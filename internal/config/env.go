// Package config defines environment variable keys for configuration.
package config

//nolint:gosec,revive // Environment variable keys are not credentials and do not need per-const comments.
const (
	// Core
	EnvLogLevel  = "KEBIAO_LOG_LEVEL"
	EnvLogFormat = "KEBIAO_LOG_FORMAT"

	// Conversion
	EnvInputPath    = "KEBIAO_INPUT"
	EnvICSPath      = "KEBIAO_ICS_OUTPUT"
	EnvJSONPath     = "KEBIAO_JSON_OUTPUT"
	EnvCalendarName = "KEBIAO_CALENDAR_NAME"
	EnvReminderLead = "KEBIAO_REMINDER_LEAD"

	// Server
	EnvPort            = "KEBIAO_PORT"
	EnvShutdownTimeout = "KEBIAO_SHUTDOWN_TIMEOUT"
	EnvMaxBodyBytes    = "KEBIAO_MAX_BODY_BYTES"

	// Rate limiting
	EnvRateLimitPerMinute = "KEBIAO_RATE_LIMIT_PER_MINUTE"
	EnvRateLimitBurst     = "KEBIAO_RATE_LIMIT_BURST"

	// History
	EnvDataDir          = "KEBIAO_DATA_DIR"
	EnvHistoryEnabled   = "KEBIAO_HISTORY_ENABLED"
	EnvHistoryRetention = "KEBIAO_HISTORY_RETENTION"

	// R2 Publishing Feature
	EnvR2Enabled         = "KEBIAO_R2_ENABLED"
	EnvR2AccountID       = "KEBIAO_R2_ACCOUNT_ID"
	EnvR2Endpoint        = "KEBIAO_R2_ENDPOINT"
	EnvR2AccessKeyID     = "KEBIAO_R2_ACCESS_KEY_ID"
	EnvR2SecretAccessKey = "KEBIAO_R2_SECRET_ACCESS_KEY"
	EnvR2BucketName      = "KEBIAO_R2_BUCKET_NAME"
	EnvR2Prefix          = "KEBIAO_R2_PREFIX"

	// Sentry Feature
	EnvSentryEnabled     = "KEBIAO_SENTRY_ENABLED"
	EnvSentryDSN         = "KEBIAO_SENTRY_DSN"
	EnvSentryEnvironment = "KEBIAO_SENTRY_ENVIRONMENT"
	EnvSentrySampleRate  = "KEBIAO_SENTRY_SAMPLE_RATE"

	// Better Stack Feature
	EnvBetterStackEnabled  = "KEBIAO_BETTERSTACK_ENABLED"
	EnvBetterStackToken    = "KEBIAO_BETTERSTACK_TOKEN"
	EnvBetterStackEndpoint = "KEBIAO_BETTERSTACK_ENDPOINT"

	// Metrics Auth Feature
	EnvMetricsAuthEnabled = "KEBIAO_METRICS_AUTH_ENABLED"
	EnvMetricsUsername    = "KEBIAO_METRICS_USERNAME"
	EnvMetricsPassword    = "KEBIAO_METRICS_PASSWORD"
)
