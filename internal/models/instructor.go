// ClassPulse - Studio Booking Analytics Engine
// Copyright 2026 ClassPulse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/classpulse/classpulse

package models

// InstructorMetrics holds the per-instructor measurements feeding the
// composite performance score.
//
// Rates are fractions in [0,1]; AvgRating is on the review scale [0,5].
type InstructorMetrics struct {
	TotalClasses        int     `json:"total_classes"`
	TotalStudents       int     `json:"total_students"`
	TotalRevenue        float64 `json:"total_revenue"`
	AvgRating           float64 `json:"avg_rating"`
	RatingTrend         string  `json:"rating_trend"` // increasing, decreasing, stable
	AttendanceRate      float64 `json:"attendance_rate"`
	RepeatStudentRate   float64 `json:"repeat_student_rate"`
	CapacityUtilization float64 `json:"capacity_utilization"`

	// PerformanceScore is the weighted composite in [0,1]:
	// rating/5 x 0.30 + attendance x 0.20 + repeat x 0.20 +
	// capacity x 0.15 + min(revenue/10000, 1) x 0.15.
	PerformanceScore float64 `json:"performance_score"`
}

// InstructorPercentiles rank an instructor against the cohort supplied in
// the same analysis call. Values are in [0,100].
type InstructorPercentiles struct {
	Performance float64 `json:"performance"`
	Rating      float64 `json:"rating"`
	Revenue     float64 `json:"revenue"`
}

// InstructorPerformance is the full analysis for one instructor.
type InstructorPerformance struct {
	InstructorID string                `json:"instructor_id"`
	Name         string                `json:"name,omitempty"`
	Metrics      InstructorMetrics     `json:"metrics"`
	Percentiles  InstructorPercentiles `json:"percentiles"`

	// Recommendations are advisory strings keyed off the weakest
	// sub-metric. No action is enforced.
	Recommendations []string `json:"recommendations"`
}

// AvgInstructorMetrics are cohort-average values across all analyzed
// instructors.
type AvgInstructorMetrics struct {
	AvgRating           float64 `json:"avg_rating"`
	AttendanceRate      float64 `json:"attendance_rate"`
	RepeatStudentRate   float64 `json:"repeat_student_rate"`
	CapacityUtilization float64 `json:"capacity_utilization"`
	PerformanceScore    float64 `json:"performance_score"`
}

// InstructorSummary highlights the extremes of the cohort.
type InstructorSummary struct {
	// TopPerformers are the up-to-five highest scoring instructors.
	TopPerformers []InstructorPerformance `json:"top_performers"`

	// NeedsImprovement lists instructors scoring below 0.5.
	NeedsImprovement []InstructorPerformance `json:"needs_improvement"`

	AvgMetrics AvgInstructorMetrics `json:"avg_metrics"`
}

// InstructorAnalysis is the complete instructor performance result,
// sorted descending by performance score.
type InstructorAnalysis struct {
	Instructors []InstructorPerformance `json:"instructors"`
	Summary     InstructorSummary       `json:"summary"`
}
