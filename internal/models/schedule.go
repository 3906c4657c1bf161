// ClassPulse - Studio Booking Analytics Engine
// Copyright 2026 ClassPulse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/classpulse/classpulse

package models

import (
	"fmt"
	"time"
)

// Schedule opportunity types emitted by the optimizer.
const (
	OpportunityAddClass    = "ADD_CLASS"
	OpportunityRemoveClass = "REMOVE_CLASS"
)

// TimeSlot is a canonical weekly slot: day-of-week crossed with hour.
type TimeSlot struct {
	Weekday time.Weekday `json:"weekday"`
	Hour    int          `json:"hour"`
}

// Key returns a stable string form, e.g. "Monday-09".
func (s TimeSlot) Key() string {
	return fmt.Sprintf("%s-%02d", s.Weekday, s.Hour)
}

// SlotFor maps a timestamp onto its weekly slot.
func SlotFor(t time.Time) TimeSlot {
	return TimeSlot{Weekday: t.Weekday(), Hour: t.Hour()}
}

// ScheduleOpportunity is a single rebalancing suggestion.
type ScheduleOpportunity struct {
	Type     string   `json:"type"` // ADD_CLASS or REMOVE_CLASS
	TimeSlot TimeSlot `json:"time_slot"`
	Reason   string   `json:"reason"`

	// ExpectedImpact is the estimated booking gain for additions or the
	// estimated cost saving for removals, in the same units as demand.
	ExpectedImpact float64 `json:"expected_impact"`

	Priority string `json:"priority"` // high, medium, low

	// Class is set for REMOVE_CLASS opportunities: the occupant chosen
	// for removal.
	Class *ScheduledClass `json:"class,omitempty"`
}

// ScheduleOptimization is the complete optimizer result.
//
// The optimizer is a greedy, single-pass heuristic: it does not search for
// a global optimum and does not guarantee conflict-free scheduling beyond
// the constraints it explicitly checks.
type ScheduleOptimization struct {
	// CurrentUtilization and OptimizedUtilization are
	// totalBookings/totalCapacity before and after applying opportunities.
	CurrentUtilization   float64 `json:"current_utilization"`
	OptimizedUtilization float64 `json:"optimized_utilization"`

	Opportunities     []ScheduleOpportunity `json:"opportunities"`
	OptimizedSchedule []ScheduledClass      `json:"optimized_schedule"`
	Recommendations   []string              `json:"recommendations"`
}
