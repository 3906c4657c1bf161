// ClassPulse - Studio Booking Analytics Engine
// Copyright 2026 ClassPulse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/classpulse/classpulse

package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/classpulse/classpulse/internal/models"
)

// GenerateReport runs one dataset through the revenue, forecast,
// instructor, and retention calculators and assembles the composite
// report. Sections whose inputs are absent are omitted rather than failing
// the whole report.
func GenerateReport(req ReportRequest) (*models.AnalyticsReport, error) {
	granularity, err := normalizeGranularity(req.Granularity, models.GranularityDaily)
	if err != nil {
		return nil, fmt.Errorf("report: %w", err)
	}

	report := &models.AnalyticsReport{
		GeneratedAt: time.Now().UTC(),
		TimeRange:   req.TimeRange,
		Granularity: granularity,
		Insights:    []models.Insight{},
	}

	revenue, err := CalculateRevenue(RevenueRequest{
		Bookings:    req.Bookings,
		TimeRange:   req.TimeRange,
		Granularity: granularity,
	})
	if err != nil {
		return nil, fmt.Errorf("report: %w", err)
	}
	report.Revenue = revenue

	if req.HorizonDays > 0 {
		forecast, err := PredictBookingTrends(TrendRequest{
			HistoricalData: dailySeries(req.Bookings),
			HorizonDays:    req.HorizonDays,
		})
		if err != nil {
			return nil, fmt.Errorf("report: %w", err)
		}
		report.Forecast = forecast
	}

	if len(req.Instructors) > 0 {
		instructors, err := AnalyzeInstructors(InstructorRequest{
			Instructors: req.Instructors,
			Bookings:    req.Bookings,
			Reviews:     req.Reviews,
			Classes:     req.Classes,
		})
		if err != nil {
			return nil, fmt.Errorf("report: %w", err)
		}
		report.Instructors = instructors
	}

	if len(req.Users) > 0 {
		retention, err := CalculateCohortRetention(CohortRequest{
			Users:    req.Users,
			Bookings: req.Bookings,
		})
		if err != nil {
			return nil, fmt.Errorf("report: %w", err)
		}
		report.Retention = retention
	}

	report.Insights = mergeInsights(report)
	return report, nil
}

// dailySeries converts raw bookings into the contiguous per-day counts the
// trend predictor expects. Gaps between the first and last booking day
// appear as zero-count days.
func dailySeries(bookings []models.BookingRecord) []models.DailyBookings {
	counts := make(map[string]int)
	var first, last time.Time
	for i := range bookings {
		b := &bookings[i]
		if !b.Valid() {
			continue
		}
		day := time.Date(b.CreatedAt.Year(), b.CreatedAt.Month(), b.CreatedAt.Day(), 0, 0, 0, 0, time.UTC)
		counts[day.Format("2006-01-02")]++
		if first.IsZero() || day.Before(first) {
			first = day
		}
		if day.After(last) {
			last = day
		}
	}
	if first.IsZero() {
		return nil
	}

	var series []models.DailyBookings
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		series = append(series, models.DailyBookings{
			Date:     day,
			Bookings: counts[day.Format("2006-01-02")],
		})
	}
	return series
}

// mergeInsights flattens every section's advisory list, high priority
// first.
func mergeInsights(report *models.AnalyticsReport) []models.Insight {
	merged := []models.Insight{}
	if report.Revenue != nil {
		merged = append(merged, report.Revenue.Insights...)
	}
	if report.Forecast != nil {
		merged = append(merged, report.Forecast.Insights...)
	}
	if report.Retention != nil {
		merged = append(merged, report.Retention.Insights...)
	}

	rank := map[string]int{
		models.PriorityHigh:   0,
		models.PriorityMedium: 1,
		models.PriorityLow:    2,
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return rank[merged[i].Priority] < rank[merged[j].Priority]
	})
	return merged
}
