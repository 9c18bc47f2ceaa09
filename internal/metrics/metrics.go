// Package metrics defines the Prometheus metrics of the converter, the HTTP
// server and the publisher. All metrics are registered on a caller-supplied
// registry so that tests and the CLI can use an isolated one.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Conversion metrics
	ConversionsTotal          *prometheus.CounterVec
	ConversionDurationSeconds *prometheus.HistogramVec

	// Parser metrics
	BlocksTotal               prometheus.Counter
	CoursesTotal              *prometheus.CounterVec
	TimeLocationsDroppedTotal *prometheus.CounterVec

	// Expansion metrics
	EventsTotal             prometheus.Counter
	DuplicateInstancesTotal prometheus.Counter
	RemindersTotal          *prometheus.CounterVec

	// Publishing metrics
	PublishUploadsTotal          *prometheus.CounterVec
	PublishUploadDurationSeconds prometheus.Histogram

	// HTTP metrics
	HTTPErrorsTotal  *prometheus.CounterVec
	RateLimitedTotal prometheus.Counter
	RateLimitClients prometheus.Gauge
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		ConversionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kebiao_conversions_total",
				Help: "Total number of conversions by source and status",
			},
			[]string{"source", "status"}, // source: cli, http; status: success, invalid_input, error
		),

		ConversionDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "kebiao_conversion_duration_seconds",
				Help:    "Conversion duration in seconds by source",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"source"},
		),

		BlocksTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "kebiao_blocks_total",
				Help: "Total number of course blocks segmented from input",
			},
		),

		CoursesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kebiao_courses_total",
				Help: "Total number of course blocks by outcome",
			},
			[]string{"outcome"}, // outcome: kept, dropped
		),

		TimeLocationsDroppedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kebiao_time_locations_dropped_total",
				Help: "Total number of time-location candidates dropped by reason",
			},
			[]string{"reason"}, // reason: no_period, period_out_of_range, invalid_clock, no_weeks, week_out_of_range
		),

		EventsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "kebiao_events_total",
				Help: "Total number of calendar events emitted",
			},
		),

		DuplicateInstancesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "kebiao_duplicate_instances_total",
				Help: "Total number of expanded instances skipped as duplicates",
			},
		),

		RemindersTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kebiao_reminders_total",
				Help: "Total number of reminder decisions",
			},
			[]string{"decision"}, // decision: attached, suppressed
		),

		PublishUploadsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kebiao_publish_uploads_total",
				Help: "Total number of artifact uploads by kind and status",
			},
			[]string{"kind", "status"}, // kind: ics, summary; status: success, error
		),

		PublishUploadDurationSeconds: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "kebiao_publish_upload_duration_seconds",
				Help:    "Duration of publishing all artifacts of one conversion",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
			},
		),

		HTTPErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kebiao_http_errors_total",
				Help: "Total HTTP errors by type and route",
			},
			[]string{"error_type", "route"}, // error_type: invalid_input, too_large, not_found, rate_limited, internal
		),

		RateLimitedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "kebiao_rate_limited_total",
				Help: "Total conversion requests rejected by the per-client rate limiter",
			},
		),

		RateLimitClients: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "kebiao_rate_limit_clients",
				Help: "Number of clients tracked by the rate limiter",
			},
		),
	}
}

// ParseOutcome carries the parser and expander counts of one conversion.
type ParseOutcome struct {
	Blocks              int
	CoursesKept         int
	CoursesDropped      int
	Dropped             map[string]int
	Events              int
	Duplicates          int
	RemindersAttached   int
	RemindersSuppressed int
}

// RecordConversion records a finished conversion with its status and duration.
func (m *Metrics) RecordConversion(source, status string, duration float64) {
	m.ConversionsTotal.WithLabelValues(source, status).Inc()
	m.ConversionDurationSeconds.WithLabelValues(source).Observe(duration)
}

// RecordParseOutcome adds the counts of one successful conversion.
func (m *Metrics) RecordParseOutcome(o ParseOutcome) {
	m.BlocksTotal.Add(float64(o.Blocks))
	m.CoursesTotal.WithLabelValues("kept").Add(float64(o.CoursesKept))
	m.CoursesTotal.WithLabelValues("dropped").Add(float64(o.CoursesDropped))
	for reason, n := range o.Dropped {
		m.TimeLocationsDroppedTotal.WithLabelValues(reason).Add(float64(n))
	}
	m.EventsTotal.Add(float64(o.Events))
	m.DuplicateInstancesTotal.Add(float64(o.Duplicates))
	m.RemindersTotal.WithLabelValues("attached").Add(float64(o.RemindersAttached))
	m.RemindersTotal.WithLabelValues("suppressed").Add(float64(o.RemindersSuppressed))
}

// RecordPublishUpload records one artifact upload.
func (m *Metrics) RecordPublishUpload(kind, status string) {
	m.PublishUploadsTotal.WithLabelValues(kind, status).Inc()
}

// RecordPublishDuration records the total duration of a publish.
func (m *Metrics) RecordPublishDuration(duration float64) {
	m.PublishUploadDurationSeconds.Observe(duration)
}

// RecordHTTPError records HTTP error metrics
func (m *Metrics) RecordHTTPError(errorType, route string) {
	m.HTTPErrorsTotal.WithLabelValues(errorType, route).Inc()
}
