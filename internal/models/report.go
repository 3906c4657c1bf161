// ClassPulse - Studio Booking Analytics Engine
// Copyright 2026 ClassPulse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/classpulse/classpulse

package models

import "time"

// AnalyticsReport is the composite result of a GENERATE_REPORT job: one
// dataset run through the revenue, forecast, instructor, and retention
// calculators.
type AnalyticsReport struct {
	GeneratedAt time.Time `json:"generated_at"`
	TimeRange   TimeRange `json:"time_range"`
	Granularity string    `json:"granularity"`

	Revenue     *RevenueAnalytics   `json:"revenue,omitempty"`
	Forecast    *BookingForecast    `json:"forecast,omitempty"`
	Instructors *InstructorAnalysis `json:"instructors,omitempty"`
	Retention   *RetentionAnalysis  `json:"retention,omitempty"`

	// Insights is the merged advisory list across all sections.
	Insights []Insight `json:"insights"`
}
