// Timeout and limit defaults for serve mode, history and publishing.
package config

import "time"

// HTTP server
const (
	// HTTPRead bounds reading a request, including an uploaded timetable.
	HTTPRead = 15 * time.Second

	// HTTPWrite bounds writing the response.
	HTTPWrite = 30 * time.Second

	// HTTPIdle is the keep-alive idle timeout.
	HTTPIdle = 120 * time.Second

	// ConvertRequest bounds one conversion request end to end.
	ConvertRequest = 20 * time.Second

	// GracefulShutdown is the default shutdown budget.
	GracefulShutdown = 30 * time.Second

	// HealthCheck bounds one container health probe.
	HealthCheck = 5 * time.Second
)

// Database
const (
	// DatabaseBusyTimeout is the SQLite busy_timeout pragma value.
	DatabaseBusyTimeout = 10 * time.Second

	// DatabaseConnMaxLifetime is the maximum lifetime of database connections.
	DatabaseConnMaxLifetime = time.Hour
)

// Publishing
const (
	// PublishUpload bounds uploading all artifacts of one conversion.
	PublishUpload = 60 * time.Second
)

// Limits
const (
	// DefaultMaxBodyBytes caps POST /api/convert bodies. Timetable exports are
	// a few tens of kilobytes.
	DefaultMaxBodyBytes = 2 << 20

	// DefaultHistoryLimit is how many conversions list endpoints return.
	DefaultHistoryLimit = 20

	// MaxHistoryLimit caps user-supplied limits.
	MaxHistoryLimit = 200

	// DefaultRateLimitPerMinute is the sustained conversion rate per client IP.
	DefaultRateLimitPerMinute = 30

	// DefaultRateLimitBurst is how many conversions a client may send at once.
	DefaultRateLimitBurst = 10

	// RateLimitCleanup is how often idle rate-limit buckets are dropped.
	RateLimitCleanup = 5 * time.Minute

	// MaxTeachingWeek is the highest week number a timetable may reference.
	MaxTeachingWeek = 30
)
