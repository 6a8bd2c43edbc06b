// CloudCart Analytics - Order Event Analytics and Product Recommendations
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cloudcart/analytics

// Package metrics provides Prometheus instrumentation for event
// ingestion, database queries, the HTTP API and recommendation training.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Event ingestion metrics
	EventsConsumed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "order_events_consumed_total",
			Help: "Total number of order event messages received from NATS",
		},
	)

	EventsProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "order_events_processed_total",
			Help: "Total number of order events persisted to the store",
		},
	)

	EventsParseFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "order_events_parse_failures_total",
			Help: "Total number of order event messages that failed JSON parsing",
		},
	)

	EventsInvalid = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "order_events_invalid_total",
			Help: "Total number of order events that failed validation",
		},
	)

	EventsDeduplicated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "order_events_deduplicated_total",
			Help: "Total number of order events skipped as duplicates",
		},
	)

	EventsStoreFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "order_events_store_failures_total",
			Help: "Total number of order events that failed to persist",
		},
	)

	EventProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "order_event_processing_duration_seconds",
			Help:    "Duration of order event processing in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Database metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation"},
	)

	// API endpoint metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	// Recommendation engine metrics
	RecommendTrainings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_trainings_total",
			Help: "Total number of recommendation training runs",
		},
		[]string{"result"}, // "trained" or "skipped"
	)

	RecommendTrainingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_training_duration_seconds",
			Help:    "Duration of recommendation model training in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		},
	)
)

// RecordEventConsumed increments the consumed message counter.
func RecordEventConsumed() {
	EventsConsumed.Inc()
}

// RecordEventProcessed increments the processed event counter.
func RecordEventProcessed() {
	EventsProcessed.Inc()
}

// RecordEventParseFailed increments the parse failure counter.
func RecordEventParseFailed() {
	EventsParseFailed.Inc()
}

// RecordEventInvalid increments the validation failure counter.
func RecordEventInvalid() {
	EventsInvalid.Inc()
}

// RecordEventDeduplicated increments the duplicate counter.
func RecordEventDeduplicated() {
	EventsDeduplicated.Inc()
}

// RecordEventStoreFailed increments the store failure counter.
func RecordEventStoreFailed() {
	EventsStoreFailed.Inc()
}

// RecordEventProcessingDuration observes end-to-end event processing time.
func RecordEventProcessingDuration(duration time.Duration) {
	EventProcessingDuration.Observe(duration.Seconds())
}

// RecordDBQuery records query duration and any error for an operation.
func RecordDBQuery(operation string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation).Inc()
	}
}

// RecordAPIRequest records an API request with its status and duration.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordTraining records the outcome and duration of a training run.
func RecordTraining(trained bool, duration time.Duration) {
	result := "skipped"
	if trained {
		result = "trained"
	}
	RecommendTrainings.WithLabelValues(result).Inc()
	RecommendTrainingDuration.Observe(duration.Seconds())
}
