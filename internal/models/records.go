// ClassPulse - Studio Booking Analytics Engine
// Copyright 2026 ClassPulse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/classpulse/classpulse

package models

import "time"

// Payment methods accepted on a booking.
const (
	PaymentMethodCredit = "credit"
	PaymentMethodCash   = "cash"
)

// BookingRecord is a single class booking as supplied by the data-fetch
// layer. Records are immutable inputs; the engine never writes to them.
//
// A record with a zero CreatedAt is considered malformed. Calculators skip
// such records and continue rather than aborting the whole job.
type BookingRecord struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	ClassID       string    `json:"class_id"`
	ClassName     string    `json:"class_name"`
	InstructorID  string    `json:"instructor_id"`
	CreatedAt     time.Time `json:"created_at"`
	AmountPaid    float64   `json:"amount_paid"`
	PaymentMethod string    `json:"payment_method"` // credit or cash
	CreditsUsed   int       `json:"credits_used"`
	Attended      bool      `json:"attended"`
}

// Valid reports whether the record carries the fields every calculator
// depends on. Invalid records are skipped, not fatal.
func (b *BookingRecord) Valid() bool {
	return !b.CreatedAt.IsZero()
}

// UserRecord is a studio member. JoinedAt determines cohort membership.
type UserRecord struct {
	ID       string    `json:"id"`
	Name     string    `json:"name,omitempty"`
	JoinedAt time.Time `json:"joined_at"`
}

// InstructorRecord identifies an instructor under analysis.
type InstructorRecord struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// ReviewRecord is a student review of an instructor.
type ReviewRecord struct {
	ID           string    `json:"id"`
	InstructorID string    `json:"instructor_id"`
	UserID       string    `json:"user_id,omitempty"`
	Rating       float64   `json:"rating"` // 0..5
	CreatedAt    time.Time `json:"created_at"`
}

// ScheduledClass is one class session on the studio schedule.
type ScheduledClass struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	InstructorID string    `json:"instructor_id,omitempty"`
	StartTime    time.Time `json:"start_time"`
	Capacity     int       `json:"capacity"`
}

// ScheduleConstraints bound the optimizer's rebalancing pass.
// Zero values disable the corresponding constraint.
type ScheduleConstraints struct {
	// MaxClassesPerDay caps the number of classes scheduled on any weekday
	// after optimization.
	MaxClassesPerDay int `json:"max_classes_per_day,omitempty"`

	// OpenHour and CloseHour restrict added classes to [OpenHour, CloseHour).
	// Both zero means no restriction.
	OpenHour  int `json:"open_hour,omitempty"`
	CloseHour int `json:"close_hour,omitempty"`
}

// TimeRange bounds an analytics query window.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the range. A zero Start or End
// leaves that side unbounded.
func (r TimeRange) Contains(t time.Time) bool {
	if !r.Start.IsZero() && t.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && !t.Before(r.End) {
		return false
	}
	return true
}

// IsZero reports whether the range is unbounded on both sides.
func (r TimeRange) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}
