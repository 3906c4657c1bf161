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

func TestGenerateReportAllSections(t *testing.T) {
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	var bookings []models.BookingRecord
	for day := 0; day < 14; day++ {
		b := booking("b", "u1", base.AddDate(0, 0, day), 25)
		b.InstructorID = "i1"
		bookings = append(bookings, b)
	}

	report, err := GenerateReport(ReportRequest{
		Bookings:    bookings,
		Users:       []models.UserRecord{{ID: "u1", JoinedAt: base}},
		Instructors: []models.InstructorRecord{{ID: "i1", Name: "Dana"}},
		Reviews: []models.ReviewRecord{
			{InstructorID: "i1", Rating: 5, CreatedAt: base},
		},
		HorizonDays: 7,
	})
	if err != nil {
		t.Fatalf("GenerateReport: %v", err)
	}

	if report.Revenue == nil {
		t.Error("revenue section missing")
	}
	if report.Forecast == nil {
		t.Error("forecast section missing")
	} else if len(report.Forecast.Predictions) != 7 {
		t.Errorf("got %d predictions, want 7", len(report.Forecast.Predictions))
	}
	if report.Instructors == nil {
		t.Error("instructors section missing")
	}
	if report.Retention == nil {
		t.Error("retention section missing")
	}
	if report.GeneratedAt.IsZero() {
		t.Error("GeneratedAt not set")
	}
	if report.Granularity != models.GranularityDaily {
		t.Errorf("granularity = %q, want daily default", report.Granularity)
	}
}

func TestGenerateReportOmitsSectionsWithoutInputs(t *testing.T) {
	report, err := GenerateReport(ReportRequest{
		Bookings: []models.BookingRecord{
			booking("b", "u1", time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC), 25),
		},
	})
	if err != nil {
		t.Fatalf("GenerateReport: %v", err)
	}
	if report.Revenue == nil {
		t.Error("revenue section should always be present")
	}
	if report.Forecast != nil {
		t.Error("forecast should be omitted with horizon 0")
	}
	if report.Instructors != nil {
		t.Error("instructors section should be omitted without instructors")
	}
	if report.Retention != nil {
		t.Error("retention section should be omitted without users")
	}
}

func TestGenerateReportInsightsSortedByPriority(t *testing.T) {
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	var bookings []models.BookingRecord
	// Declining revenue to force a high-priority warning.
	for day := 0; day < 7; day++ {
		for n := 0; n < 8-day; n++ {
			bookings = append(bookings, booking("b", "u1", base.AddDate(0, 0, day), 100))
		}
	}

	report, err := GenerateReport(ReportRequest{Bookings: bookings, HorizonDays: 3})
	if err != nil {
		t.Fatalf("GenerateReport: %v", err)
	}
	if len(report.Insights) == 0 {
		t.Fatal("expected merged insights")
	}

	rank := map[string]int{
		models.PriorityHigh:   0,
		models.PriorityMedium: 1,
		models.PriorityLow:    2,
	}
	for i := 1; i < len(report.Insights); i++ {
		if rank[report.Insights[i-1].Priority] > rank[report.Insights[i].Priority] {
			t.Errorf("insights not sorted by priority at %d: %+v", i, report.Insights)
		}
	}
}

func TestDailySeriesFillsGaps(t *testing.T) {
	day1 := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	day4 := time.Date(2026, 8, 4, 15, 0, 0, 0, time.UTC)
	series := dailySeries([]models.BookingRecord{
		booking("b1", "u1", day1, 10),
		booking("b2", "u1", day1, 10),
		booking("b3", "u2", day4, 10),
	})

	if len(series) != 4 {
		t.Fatalf("got %d days, want 4 (gaps filled)", len(series))
	}
	want := []int{2, 0, 0, 1}
	for i, w := range want {
		if series[i].Bookings != w {
			t.Errorf("day %d bookings = %d, want %d", i, series[i].Bookings, w)
		}
	}
}
