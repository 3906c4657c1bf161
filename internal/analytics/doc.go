// ClassPulse - Studio Booking Analytics Engine
// Copyright 2026 ClassPulse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/classpulse/classpulse

// Package analytics implements the batch calculators of the ClassPulse
// engine: revenue analytics, booking trend prediction, instructor
// performance analysis, cohort retention, schedule optimization, and the
// composite report.
//
// # Design
//
// Every calculator is a pure function over in-memory record sets: it
// receives already-fetched records, allocates a fresh result object, and
// retains nothing afterwards. Calculators never query a database or the
// network, and they never mutate their inputs.
//
// Calculators do not call each other except where explicitly composed:
// the revenue calculator invokes the trend predictor over its period
// series, and the report generator fans a single dataset through the
// individual calculators.
//
// # Error policy
//
// Malformed records (zero CreatedAt) are skipped, never fatal. Errors are
// reserved for unusable requests, such as an unknown granularity.
package analytics
