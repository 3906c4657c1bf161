// ClassPulse - Studio Booking Analytics Engine
// Copyright 2026 ClassPulse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/classpulse/classpulse

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Engine Job Metrics
	JobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_jobs_total",
			Help: "Total number of analytics jobs dispatched, by job type and outcome",
		},
		[]string{"job_type", "outcome"}, // outcome: "ok" or "error"
	)

	JobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "engine_job_duration_seconds",
			Help:    "Duration of analytics job handlers in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"job_type"},
	)

	JobPanics = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "engine_job_panics_total",
			Help: "Total number of handler panics recovered at the dispatcher boundary",
		},
	)

	JobsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "engine_jobs_in_flight",
			Help: "Number of jobs currently executing",
		},
	)

	RecordsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_records_skipped_total",
			Help: "Total number of malformed input records skipped by calculators",
		},
		[]string{"job_type"},
	)

	// API Endpoint Metrics
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

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)
)

// RecordJob records one finished job dispatch. Pass a nil error for a
// successful job.
func RecordJob(jobType string, duration time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	JobsTotal.WithLabelValues(jobType, outcome).Inc()
	JobDuration.WithLabelValues(jobType).Observe(duration.Seconds())
}

// RecordPanic counts a recovered handler panic. The panic is also counted
// as an error outcome by RecordJob.
func RecordPanic() {
	JobPanics.Inc()
}

// RecordSkippedRecords adds to the malformed-record counter for a job type.
func RecordSkippedRecords(jobType string, n int) {
	if n > 0 {
		RecordsSkipped.WithLabelValues(jobType).Add(float64(n))
	}
}

// RecordAPIRequest records a completed HTTP request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
