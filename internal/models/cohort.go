// ClassPulse - Studio Booking Analytics Engine
// Copyright 2026 ClassPulse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/classpulse/classpulse

package models

// MaxRetentionPeriods is how many periods a cohort is tracked after its
// formation period.
const MaxRetentionPeriods = 12

// CohortPeriod is the survival measurement for one period offset.
//
// Invariants: RetentionRate is in [0,1] and ChurnRate == 1 - RetentionRate.
type CohortPeriod struct {
	// Period is the offset from cohort formation; 0 is the joining period.
	Period int `json:"period"`

	// ActiveCount is the number of cohort members with at least one
	// booking inside this period.
	ActiveCount int `json:"active_count"`

	RetentionRate float64 `json:"retention_rate"`
	ChurnRate     float64 `json:"churn_rate"`
}

// CohortRetention tracks one cohort over up to MaxRetentionPeriods.
type CohortRetention struct {
	// CohortKey is the join-period key, formatted like the revenue period
	// keys (YYYY-MM-DD, YYYY-Www, or YYYY-MM depending on cohort size).
	CohortKey string `json:"cohort_key"`

	CohortSize int            `json:"cohort_size"`
	Periods    []CohortPeriod `json:"periods"`

	// LTV is the cumulative revenue attributed to cohort members across
	// all their bookings.
	LTV float64 `json:"ltv"`
}

// AggregateRetentionPoint is one point on the cohort-size-weighted average
// retention curve.
type AggregateRetentionPoint struct {
	Period        int     `json:"period"`
	RetentionRate float64 `json:"retention_rate"`

	// CohortCount is how many cohorts contributed to this point.
	CohortCount int `json:"cohort_count"`
}

// RetentionAnalysis is the complete cohort retention result.
type RetentionAnalysis struct {
	Cohorts   []CohortRetention         `json:"cohorts"`
	Aggregate []AggregateRetentionPoint `json:"aggregate"`
	Insights  []Insight                 `json:"insights"`
}
