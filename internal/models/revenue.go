// ClassPulse - Studio Booking Analytics Engine
// Copyright 2026 ClassPulse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/classpulse/classpulse

package models

// Aggregation granularities for revenue analytics and cohort bucketing.
const (
	GranularityDaily   = "daily"
	GranularityWeekly  = "weekly"
	GranularityMonthly = "monthly"
)

// Trend directions reported for revenue and booking series.
const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
)

// PeakHourCount is the length of the hour-of-day histogram.
const PeakHourCount = 24

// TimePeriodMetrics is one aggregation bucket of the revenue analytics
// result. Derived, recomputed on every call, never persisted.
type TimePeriodMetrics struct {
	// Period is the calendar key: ISO date for daily buckets, YYYY-Www
	// (ISO week numbering) for weekly, YYYY-MM for monthly.
	Period string `json:"period"`

	Revenue         float64 `json:"revenue"`
	BookingCount    int     `json:"booking_count"`
	CreditsUsed     int     `json:"credits_used"`
	CashAmount      float64 `json:"cash_amount"`
	AvgBookingValue float64 `json:"avg_booking_value"`
	UniqueUserCount int     `json:"unique_user_count"`

	// PopularClasses maps class name to booking count within the period.
	PopularClasses map[string]int `json:"popular_classes"`

	// PeakHours is a 24-slot histogram of booking creation hours.
	PeakHours []int `json:"peak_hours"`
}

// RevenueTotals aggregates bucket metrics across all periods.
type RevenueTotals struct {
	Revenue         float64 `json:"revenue"`
	Bookings        int     `json:"bookings"`
	AvgBookingValue float64 `json:"avg_booking_value"`
	CreditsUsed     int     `json:"credits_used"`
	CashPayments    float64 `json:"cash_payments"`
}

// RevenueTrends describes direction and variability of the period series.
// Present only when the result contains at least two periods.
type RevenueTrends struct {
	// RevenueDirection and BookingsDirection are one of the Trend*
	// constants, derived from regression slope with a 0.01 dead-zone.
	RevenueDirection  string `json:"revenue_direction"`
	BookingsDirection string `json:"bookings_direction"`

	// AvgGrowthRate is the mean of period-over-period percentage changes.
	// Periods following a zero-revenue period are excluded.
	AvgGrowthRate float64 `json:"avg_growth_rate"`

	// Volatility is the coefficient of variation: stddev/mean of revenue.
	Volatility float64 `json:"volatility"`
}

// Insight levels and priorities.
const (
	InsightPositive = "positive"
	InsightWarning  = "warning"
	InsightInfo     = "info"

	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Insight is a human-readable, advisory annotation attached to results.
// Insights are never consumed programmatically.
type Insight struct {
	Type     string `json:"type"` // positive, warning, info
	Message  string `json:"message"`
	Priority string `json:"priority"` // high, medium, low
}

// RevenueAnalytics is the complete revenue analysis result.
type RevenueAnalytics struct {
	Periods  []TimePeriodMetrics `json:"periods"`
	Totals   RevenueTotals       `json:"totals"`
	Trends   *RevenueTrends      `json:"trends,omitempty"`
	Forecast *BookingForecast    `json:"forecast,omitempty"`
	Insights []Insight           `json:"insights"`

	// SkippedRecords counts malformed bookings dropped during aggregation.
	SkippedRecords int `json:"skipped_records,omitempty"`
}
