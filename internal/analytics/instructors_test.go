// ClassPulse - Studio Booking Analytics Engine
// Copyright 2026 ClassPulse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/classpulse/classpulse

package analytics

import (
	"testing"
	"time"

	"github.com/classpulse/classpulse/internal/models"
)

func instructorBooking(instructorID, userID, classID string, attended bool, amount float64) models.BookingRecord {
	return models.BookingRecord{
		ID:            "b-" + instructorID + userID + classID,
		UserID:        userID,
		ClassID:       classID,
		InstructorID:  instructorID,
		CreatedAt:     time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
		AmountPaid:    amount,
		PaymentMethod: models.PaymentMethodCash,
		Attended:      attended,
	}
}

func TestAnalyzeInstructorsMetrics(t *testing.T) {
	req := InstructorRequest{
		Instructors: []models.InstructorRecord{{ID: "i1", Name: "Dana"}},
		Bookings: []models.BookingRecord{
			instructorBooking("i1", "u1", "c1", true, 40),
			instructorBooking("i1", "u1", "c2", true, 40), // repeat student
			instructorBooking("i1", "u2", "c1", false, 40),
			instructorBooking("i1", "u3", "c1", true, 40),
		},
		Reviews: []models.ReviewRecord{
			{InstructorID: "i1", Rating: 4, CreatedAt: time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)},
			{InstructorID: "i1", Rating: 5, CreatedAt: time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC)},
		},
		Classes: []models.ScheduledClass{
			{ID: "c1", InstructorID: "i1", Capacity: 5},
			{ID: "c2", InstructorID: "i1", Capacity: 5},
		},
	}

	result, err := AnalyzeInstructors(req)
	if err != nil {
		t.Fatalf("AnalyzeInstructors: %v", err)
	}
	if len(result.Instructors) != 1 {
		t.Fatalf("got %d instructors, want 1", len(result.Instructors))
	}

	m := result.Instructors[0].Metrics
	if m.TotalClasses != 4 {
		t.Errorf("total classes = %d, want 4", m.TotalClasses)
	}
	if m.TotalStudents != 3 {
		t.Errorf("total students = %d, want 3", m.TotalStudents)
	}
	if m.TotalRevenue != 160 {
		t.Errorf("total revenue = %v, want 160", m.TotalRevenue)
	}
	if m.AttendanceRate != 0.75 {
		t.Errorf("attendance rate = %v, want 0.75", m.AttendanceRate)
	}
	// One of three students rebooked.
	if delta := m.RepeatStudentRate - 1.0/3.0; delta > 1e-9 || delta < -1e-9 {
		t.Errorf("repeat student rate = %v, want 1/3", m.RepeatStudentRate)
	}
	// 4 booked seats over 10 offered.
	if m.CapacityUtilization != 0.4 {
		t.Errorf("capacity utilization = %v, want 0.4", m.CapacityUtilization)
	}
	if m.AvgRating != 4.5 {
		t.Errorf("avg rating = %v, want 4.5", m.AvgRating)
	}
	if m.PerformanceScore <= 0 || m.PerformanceScore > 1 {
		t.Errorf("performance score %v outside (0,1]", m.PerformanceScore)
	}
}

func TestAnalyzeInstructorsDominanceOrdering(t *testing.T) {
	// "strong" dominates "weak" on every sub-metric, so its composite
	// score must not be lower.
	req := InstructorRequest{
		Instructors: []models.InstructorRecord{{ID: "strong"}, {ID: "weak"}},
		Bookings: []models.BookingRecord{
			instructorBooking("strong", "u1", "cs", true, 5000),
			instructorBooking("strong", "u1", "cs", true, 5000),
			instructorBooking("weak", "u2", "cw", false, 100),
		},
		Reviews: []models.ReviewRecord{
			{InstructorID: "strong", Rating: 5, CreatedAt: time.Now()},
			{InstructorID: "weak", Rating: 2, CreatedAt: time.Now()},
		},
		Classes: []models.ScheduledClass{
			{ID: "cs", InstructorID: "strong", Capacity: 2},
			{ID: "cw", InstructorID: "weak", Capacity: 10},
		},
	}

	result, err := AnalyzeInstructors(req)
	if err != nil {
		t.Fatalf("AnalyzeInstructors: %v", err)
	}

	var strong, weak models.InstructorPerformance
	for _, p := range result.Instructors {
		switch p.InstructorID {
		case "strong":
			strong = p
		case "weak":
			weak = p
		}
	}
	if strong.Metrics.PerformanceScore < weak.Metrics.PerformanceScore {
		t.Errorf("dominating instructor scored %v below %v",
			strong.Metrics.PerformanceScore, weak.Metrics.PerformanceScore)
	}
	if result.Instructors[0].InstructorID != "strong" {
		t.Errorf("result not sorted by score: first is %s", result.Instructors[0].InstructorID)
	}
	if strong.Percentiles.Performance != 100 {
		t.Errorf("top performer percentile = %v, want 100", strong.Percentiles.Performance)
	}
}

func TestAnalyzeInstructorsSummary(t *testing.T) {
	instructors := make([]models.InstructorRecord, 7)
	var bookings []models.BookingRecord
	var reviews []models.ReviewRecord
	for i := range instructors {
		id := string(rune('a' + i))
		instructors[i] = models.InstructorRecord{ID: id}
		// Instructor ratings step from 0.5 up to 3.5 so the low end
		// lands under the improvement threshold.
		reviews = append(reviews, models.ReviewRecord{
			InstructorID: id,
			Rating:       0.5 * float64(i+1),
			CreatedAt:    time.Now(),
		})
		bookings = append(bookings, instructorBooking(id, "u"+id, "c"+id, true, 100))
	}

	result, err := AnalyzeInstructors(InstructorRequest{
		Instructors: instructors,
		Bookings:    bookings,
		Reviews:     reviews,
	})
	if err != nil {
		t.Fatalf("AnalyzeInstructors: %v", err)
	}

	if len(result.Summary.TopPerformers) != 5 {
		t.Errorf("top performers = %d, want 5", len(result.Summary.TopPerformers))
	}
	for _, p := range result.Summary.NeedsImprovement {
		if p.Metrics.PerformanceScore >= 0.5 {
			t.Errorf("instructor %s in needs-improvement with score %v", p.InstructorID, p.Metrics.PerformanceScore)
		}
	}
	if result.Summary.AvgMetrics.PerformanceScore <= 0 {
		t.Error("average performance score should be positive")
	}
}

func TestAnalyzeInstructorsEmptyCohort(t *testing.T) {
	result, err := AnalyzeInstructors(InstructorRequest{})
	if err != nil {
		t.Fatalf("AnalyzeInstructors: %v", err)
	}
	if len(result.Instructors) != 0 {
		t.Errorf("got %d instructors, want 0", len(result.Instructors))
	}
	if len(result.Summary.TopPerformers) != 0 {
		t.Error("top performers should be empty")
	}
}

func TestAnalyzeInstructorsNoReviewsNoBookings(t *testing.T) {
	result, err := AnalyzeInstructors(InstructorRequest{
		Instructors: []models.InstructorRecord{{ID: "idle"}},
	})
	if err != nil {
		t.Fatalf("AnalyzeInstructors: %v", err)
	}

	m := result.Instructors[0].Metrics
	if m.AvgRating != 0 || m.AttendanceRate != 0 || m.PerformanceScore != 0 {
		t.Errorf("idle instructor should report zero metrics, got %+v", m)
	}
	if m.RatingTrend != models.TrendStable {
		t.Errorf("rating trend = %q, want stable", m.RatingTrend)
	}
	if len(result.Instructors[0].Recommendations) == 0 {
		t.Error("recommendations should not be empty")
	}
}

func TestRatingTrendOrdering(t *testing.T) {
	// Reviews arrive out of order; the trend must follow review time.
	reviews := []models.ReviewRecord{
		{InstructorID: "i1", Rating: 5, CreatedAt: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)},
		{InstructorID: "i1", Rating: 1, CreatedAt: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)},
		{InstructorID: "i1", Rating: 3, CreatedAt: time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)},
	}

	avg, trend := ratingMetrics(reviews)
	if avg != 3 {
		t.Errorf("avg = %v, want 3", avg)
	}
	if trend != models.TrendIncreasing {
		t.Errorf("trend = %q, want increasing (1 -> 3 -> 5 over time)", trend)
	}
}
