// ClassPulse - Studio Booking Analytics Engine
// Copyright 2026 ClassPulse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/classpulse/classpulse

package analytics

import "github.com/classpulse/classpulse/internal/models"

// RevenueRequest is the input to CalculateRevenue.
type RevenueRequest struct {
	Bookings  []models.BookingRecord `json:"bookings"`
	TimeRange models.TimeRange       `json:"time_range"`

	// Granularity is daily, weekly, or monthly. Empty defaults to daily.
	Granularity string `json:"granularity" validate:"omitempty,oneof=daily weekly monthly"`
}

// TrendRequest is the input to PredictBookingTrends.
type TrendRequest struct {
	HistoricalData []models.DailyBookings `json:"historical_data"`

	// HorizonDays is how many future days to predict. Zero yields an
	// empty prediction list.
	HorizonDays int `json:"horizon_days" validate:"min=0,max=365"`
}

// InstructorRequest is the input to AnalyzeInstructors. All record sets
// cover the same analysis window.
type InstructorRequest struct {
	Instructors []models.InstructorRecord `json:"instructors"`
	Bookings    []models.BookingRecord    `json:"bookings"`
	Reviews     []models.ReviewRecord     `json:"reviews"`

	// Classes supplies session capacities for utilization. Instructors
	// with no listed classes report zero capacity utilization.
	Classes []models.ScheduledClass `json:"classes,omitempty"`
}

// CohortRequest is the input to CalculateCohortRetention.
type CohortRequest struct {
	Users    []models.UserRecord    `json:"users"`
	Bookings []models.BookingRecord `json:"bookings"`

	// CohortSize is the join-period granularity: daily, weekly, or
	// monthly. Empty defaults to monthly.
	CohortSize string `json:"cohort_size" validate:"omitempty,oneof=daily weekly monthly"`
}

// ScheduleRequest is the input to OptimizeSchedule.
type ScheduleRequest struct {
	CurrentSchedule    []models.ScheduledClass    `json:"current_schedule"`
	HistoricalBookings []models.BookingRecord     `json:"historical_bookings"`
	Constraints        models.ScheduleConstraints `json:"constraints"`
}

// ReportRequest is the composite input to GenerateReport: one dataset run
// through the revenue, forecast, instructor, and retention calculators.
type ReportRequest struct {
	Bookings    []models.BookingRecord    `json:"bookings"`
	Users       []models.UserRecord       `json:"users,omitempty"`
	Instructors []models.InstructorRecord `json:"instructors,omitempty"`
	Reviews     []models.ReviewRecord     `json:"reviews,omitempty"`
	Classes     []models.ScheduledClass   `json:"classes,omitempty"`

	TimeRange   models.TimeRange `json:"time_range"`
	Granularity string           `json:"granularity" validate:"omitempty,oneof=daily weekly monthly"`

	// HorizonDays controls the standalone forecast section.
	HorizonDays int `json:"horizon_days" validate:"min=0,max=365"`
}
