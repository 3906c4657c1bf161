// ClassPulse - Studio Booking Analytics Engine
// Copyright 2026 ClassPulse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/classpulse/classpulse

package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/classpulse/classpulse/internal/analytics"
	"github.com/classpulse/classpulse/internal/models"
)

func TestClientConcurrentCallers(t *testing.T) {
	_, client := startEngine(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var wg sync.WaitGroup
	errs := make(chan error, 8)

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := client.CalculateRevenue(ctx, analytics.RevenueRequest{
				Bookings: testBookings(3, 10),
			})
			if err != nil {
				errs <- err
				return
			}
			if result.Totals.Revenue != 30 {
				errs <- errors.New("wrong revenue total")
			}
		}()

		wg.Add(1)
		go func() {
			defer wg.Done()
			opt, err := client.OptimizeSchedule(ctx, analytics.ScheduleRequest{
				HistoricalBookings: testBookings(3, 10),
			})
			if err != nil {
				errs <- err
				return
			}
			if opt == nil {
				errs <- errors.New("nil schedule optimization")
			}
		}()
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent caller: %v", err)
	}
}

func TestClientContextTimeout(t *testing.T) {
	// Engine constructed but never served: submissions vanish into the
	// unsubscribed jobs topic and the call must time out.
	eng, err := New(zerolog.Nop(), DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	clientCtx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	client, err := NewClient(clientCtx, eng, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(client.Close)

	ctx, timeout := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer timeout()

	_, err = client.Do(ctx, JobGenerateReport, analytics.ReportRequest{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want context.DeadlineExceeded", err)
	}
}

func TestClientGenerateReport(t *testing.T) {
	_, client := startEngine(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	base := time.Date(2026, 8, 3, 10, 0, 0, 0, time.UTC)
	report, err := client.GenerateReport(ctx, analytics.ReportRequest{
		Bookings:    testBookings(10, 20),
		Users:       []models.UserRecord{{ID: "u1", JoinedAt: base}},
		HorizonDays: 7,
	})
	if err != nil {
		t.Fatalf("GenerateReport: %v", err)
	}
	if report.Revenue == nil {
		t.Error("report missing revenue section")
	}
	if report.Forecast == nil {
		t.Error("report missing forecast section")
	}
	if report.Retention == nil {
		t.Error("report missing retention section")
	}
}

func TestClientCohortRetention(t *testing.T) {
	_, client := startEngine(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	base := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	result, err := client.CalculateCohortRetention(ctx, analytics.CohortRequest{
		Users: []models.UserRecord{
			{ID: "u1", JoinedAt: base},
			{ID: "u2", JoinedAt: base},
		},
		Bookings: []models.BookingRecord{
			{ID: "b1", UserID: "u1", CreatedAt: base, AmountPaid: 15},
			{ID: "b2", UserID: "u2", CreatedAt: base.AddDate(0, 1, 0), AmountPaid: 15},
		},
	})
	if err != nil {
		t.Fatalf("CalculateCohortRetention: %v", err)
	}
	if len(result.Cohorts) == 0 {
		t.Fatal("expected at least one cohort")
	}
}

func TestClientAnalyzeInstructors(t *testing.T) {
	_, client := startEngine(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	bookings := testBookings(5, 30)
	for i := range bookings {
		bookings[i].InstructorID = "i1"
		bookings[i].Attended = true
	}

	result, err := client.AnalyzeInstructors(ctx, analytics.InstructorRequest{
		Instructors: []models.InstructorRecord{{ID: "i1", Name: "Dana"}},
		Bookings:    bookings,
		Reviews: []models.ReviewRecord{
			{ID: "r1", InstructorID: "i1", Rating: 4.5, CreatedAt: bookings[0].CreatedAt},
		},
	})
	if err != nil {
		t.Fatalf("AnalyzeInstructors: %v", err)
	}
	if len(result.Instructors) != 1 {
		t.Fatalf("got %d instructors, want 1", len(result.Instructors))
	}
	if result.Instructors[0].Metrics.TotalRevenue != 150 {
		t.Errorf("instructor revenue = %v, want 150", result.Instructors[0].Metrics.TotalRevenue)
	}
}
