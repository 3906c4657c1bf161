// ClassPulse - Studio Booking Analytics Engine
// Copyright 2026 ClassPulse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/classpulse/classpulse

package analytics

import (
	"math"
	"sort"

	"github.com/classpulse/classpulse/internal/models"
	"github.com/classpulse/classpulse/internal/stats"
)

// Composite score weights. They sum to 1 so the score stays in [0,1].
const (
	weightRating      = 0.30
	weightAttendance  = 0.20
	weightRepeat      = 0.20
	weightCapacity    = 0.15
	weightRevenue     = 0.15
	ratingScale       = 5.0
	revenueScoreCap   = 10000.0
	topPerformerCount = 5

	// needsImprovementScore is the composite score below which an
	// instructor is flagged in the summary.
	needsImprovementScore = 0.5
)

// AnalyzeInstructors computes per-instructor metrics, a weighted composite
// performance score, percentile ranks against the supplied cohort, and
// rule-based recommendations.
//
// The result is sorted descending by performance score. Percentiles are
// relative to the instructors in this call only.
func AnalyzeInstructors(req InstructorRequest) (*models.InstructorAnalysis, error) {
	performances := make([]models.InstructorPerformance, 0, len(req.Instructors))
	for i := range req.Instructors {
		inst := &req.Instructors[i]
		performances = append(performances, analyzeOne(inst, req))
	}

	// Percentiles are computed after the full cohort is scored.
	scores := make([]float64, len(performances))
	ratings := make([]float64, len(performances))
	revenues := make([]float64, len(performances))
	for i := range performances {
		scores[i] = performances[i].Metrics.PerformanceScore
		ratings[i] = performances[i].Metrics.AvgRating
		revenues[i] = performances[i].Metrics.TotalRevenue
	}
	for i := range performances {
		performances[i].Percentiles = models.InstructorPercentiles{
			Performance: stats.PercentileRank(scores[i], scores),
			Rating:      stats.PercentileRank(ratings[i], ratings),
			Revenue:     stats.PercentileRank(revenues[i], revenues),
		}
		performances[i].Recommendations = instructorRecommendations(&performances[i].Metrics)
	}

	sort.SliceStable(performances, func(i, j int) bool {
		if performances[i].Metrics.PerformanceScore != performances[j].Metrics.PerformanceScore {
			return performances[i].Metrics.PerformanceScore > performances[j].Metrics.PerformanceScore
		}
		return performances[i].InstructorID < performances[j].InstructorID
	})

	return &models.InstructorAnalysis{
		Instructors: performances,
		Summary:     summarize(performances),
	}, nil
}

func analyzeOne(inst *models.InstructorRecord, req InstructorRequest) models.InstructorPerformance {
	var bookings []models.BookingRecord
	for i := range req.Bookings {
		if req.Bookings[i].InstructorID == inst.ID {
			bookings = append(bookings, req.Bookings[i])
		}
	}

	var reviews []models.ReviewRecord
	for i := range req.Reviews {
		if req.Reviews[i].InstructorID == inst.ID {
			reviews = append(reviews, req.Reviews[i])
		}
	}

	metrics := models.InstructorMetrics{
		TotalClasses: len(bookings),
	}

	students := make(map[string]int)
	attended := 0
	for i := range bookings {
		metrics.TotalRevenue += bookings[i].AmountPaid
		students[bookings[i].UserID]++
		if bookings[i].Attended {
			attended++
		}
	}
	metrics.TotalStudents = len(students)

	if len(bookings) > 0 {
		metrics.AttendanceRate = float64(attended) / float64(len(bookings))
	}
	metrics.RepeatStudentRate = repeatStudentRate(students)
	metrics.CapacityUtilization = capacityUtilization(inst.ID, bookings, req.Classes)

	metrics.AvgRating, metrics.RatingTrend = ratingMetrics(reviews)

	metrics.PerformanceScore = compositeScore(&metrics)

	return models.InstructorPerformance{
		InstructorID: inst.ID,
		Name:         inst.Name,
		Metrics:      metrics,
	}
}

// repeatStudentRate is the fraction of students with more than one booking.
func repeatStudentRate(students map[string]int) float64 {
	if len(students) == 0 {
		return 0
	}
	repeat := 0
	for _, count := range students {
		if count > 1 {
			repeat++
		}
	}
	return float64(repeat) / float64(len(students))
}

// capacityUtilization is booked seats over offered seats across the
// instructor's listed classes, clamped to [0,1]. Instructors with no
// listed classes report 0.
func capacityUtilization(instructorID string, bookings []models.BookingRecord, classes []models.ScheduledClass) float64 {
	offered := 0
	classIDs := make(map[string]struct{})
	for i := range classes {
		if classes[i].InstructorID == instructorID {
			offered += classes[i].Capacity
			classIDs[classes[i].ID] = struct{}{}
		}
	}
	if offered <= 0 {
		return 0
	}

	booked := 0
	for i := range bookings {
		if _, ok := classIDs[bookings[i].ClassID]; ok {
			booked++
		}
	}
	return math.Min(float64(booked)/float64(offered), 1)
}

// ratingMetrics returns the mean rating and the trend direction over the
// time-ordered rating sequence.
func ratingMetrics(reviews []models.ReviewRecord) (avg float64, trend string) {
	if len(reviews) == 0 {
		return 0, models.TrendStable
	}

	sorted := make([]models.ReviewRecord, len(reviews))
	copy(sorted, reviews)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	ratings := make([]float64, len(sorted))
	for i := range sorted {
		ratings[i] = sorted[i].Rating
	}
	return stats.Mean(ratings), trendDirection(ratings)
}

func compositeScore(m *models.InstructorMetrics) float64 {
	revenueScore := math.Min(m.TotalRevenue/revenueScoreCap, 1)
	return m.AvgRating/ratingScale*weightRating +
		m.AttendanceRate*weightAttendance +
		m.RepeatStudentRate*weightRepeat +
		m.CapacityUtilization*weightCapacity +
		revenueScore*weightRevenue
}

func summarize(performances []models.InstructorPerformance) models.InstructorSummary {
	summary := models.InstructorSummary{
		TopPerformers:    []models.InstructorPerformance{},
		NeedsImprovement: []models.InstructorPerformance{},
	}

	top := topPerformerCount
	if top > len(performances) {
		top = len(performances)
	}
	summary.TopPerformers = append(summary.TopPerformers, performances[:top]...)

	for i := range performances {
		if performances[i].Metrics.PerformanceScore < needsImprovementScore {
			summary.NeedsImprovement = append(summary.NeedsImprovement, performances[i])
		}
	}

	if len(performances) > 0 {
		n := float64(len(performances))
		for i := range performances {
			m := &performances[i].Metrics
			summary.AvgMetrics.AvgRating += m.AvgRating / n
			summary.AvgMetrics.AttendanceRate += m.AttendanceRate / n
			summary.AvgMetrics.RepeatStudentRate += m.RepeatStudentRate / n
			summary.AvgMetrics.CapacityUtilization += m.CapacityUtilization / n
			summary.AvgMetrics.PerformanceScore += m.PerformanceScore / n
		}
	}
	return summary
}

// instructorRecommendations keys advisory strings off weak sub-metrics.
func instructorRecommendations(m *models.InstructorMetrics) []string {
	var recs []string
	if m.AttendanceRate < 0.6 {
		recs = append(recs, "Attendance is low; enable automated class reminders for booked students")
	}
	if m.AvgRating > 0 && m.AvgRating < 4.0 {
		recs = append(recs, "Ratings trail the studio target; schedule a peer observation and feedback session")
	}
	if m.RepeatStudentRate < 0.3 {
		recs = append(recs, "Few students rebook; consider loyalty pricing or multi-class packs")
	}
	if m.CapacityUtilization > 0 && m.CapacityUtilization < 0.5 {
		recs = append(recs, "Classes run well below capacity; try smaller rooms or busier time slots")
	}
	if len(recs) == 0 {
		recs = append(recs, "Performance is strong across all metrics; keep the current schedule")
	}
	return recs
}
