// ClassPulse - Studio Booking Analytics Engine
// Copyright 2026 ClassPulse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/classpulse/classpulse

/*
Package metrics provides Prometheus metrics collection and export for observability.

This package instruments the analytics engine and the HTTP API using the
Prometheus client library.

# Overview

The package provides metrics for:
  - Analytics job dispatch counts, latency, and outcomes
  - Recovered handler panics
  - Malformed input records skipped by calculators
  - HTTP request latency, throughput, and rate-limit rejections

# Metrics Endpoint

Metrics are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:8640/metrics

# Available Metrics

Engine Metrics:
  - engine_jobs_total: Dispatched jobs (counter)
    Labels: job_type, outcome (ok|error)
  - engine_job_duration_seconds: Handler latency (histogram)
    Labels: job_type
  - engine_job_panics_total: Recovered handler panics (counter)
  - engine_jobs_in_flight: Currently executing jobs (gauge)
  - engine_records_skipped_total: Malformed records skipped (counter)
    Labels: job_type

HTTP Metrics:
  - api_requests_total: Total API requests (counter)
    Labels: method, endpoint, status_code
  - api_request_duration_seconds: Request latency (histogram)
    Labels: method, endpoint
  - api_active_requests: Active requests (gauge)
  - api_rate_limit_hits_total: Rate limit rejections (counter)
    Labels: endpoint

# Usage Example

	start := time.Now()
	result, err := analytics.CalculateRevenue(req)
	metrics.RecordJob("CALCULATE_REVENUE_ANALYTICS", time.Since(start), err)

Example PromQL queries:

	# Job rate by type
	rate(engine_jobs_total[5m])

	# Job p95 latency
	histogram_quantile(0.95, rate(engine_job_duration_seconds_bucket[5m]))

	# Error ratio
	sum(rate(engine_jobs_total{outcome="error"}[5m]))
	/
	sum(rate(engine_jobs_total[5m]))

# Thread Safety

All metric recording functions are safe for concurrent use; the Prometheus
client library handles synchronization internally.

# Cardinality Management

Job type is a closed enum of six values and endpoint labels are chi route
patterns, so every metric stays at a bounded, low cardinality.
*/
package metrics
