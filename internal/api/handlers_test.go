// ClassPulse - Studio Booking Analytics Engine
// Copyright 2026 ClassPulse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/classpulse/classpulse

package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/classpulse/classpulse/internal/analytics"
	"github.com/classpulse/classpulse/internal/config"
	"github.com/classpulse/classpulse/internal/engine"
	"github.com/classpulse/classpulse/internal/models"
)

// newTestServer wires a real engine behind the router and returns the test
// server. Cleanup stops everything.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	eng, err := engine.New(zerolog.Nop(), engine.DefaultConfig())
	if err != nil {
		t.Fatalf("engine.New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if serveErr := eng.Serve(ctx); serveErr != nil && ctx.Err() == nil {
			t.Errorf("engine.Serve() error = %v", serveErr)
		}
	}()

	select {
	case <-eng.Running():
	case <-time.After(5 * time.Second):
		t.Fatal("engine did not start")
	}

	client, err := engine.NewClient(ctx, eng, zerolog.Nop())
	if err != nil {
		t.Fatalf("engine.NewClient() error = %v", err)
	}

	cfg := config.Default()
	cfg.API.RateLimitDisabled = true

	srv := httptest.NewServer(NewRouter(client, eng, *cfg).Setup())

	t.Cleanup(func() {
		srv.Close()
		client.Close()
		cancel()
	})
	return srv
}

func postJSON(t *testing.T, url string, body interface{}) (*http.Response, APIResponse) {
	t.Helper()

	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	var envelope APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response envelope: %v", err)
	}
	return resp, envelope
}

func testBookings(n int, amount float64) []models.BookingRecord {
	base := time.Date(2026, 8, 3, 9, 0, 0, 0, time.UTC)
	bookings := make([]models.BookingRecord, n)
	for i := range bookings {
		bookings[i] = models.BookingRecord{
			ID:            fmt.Sprintf("b%d", i),
			UserID:        fmt.Sprintf("u%d", i%3),
			ClassID:       "yoga-101",
			ClassName:     "Morning Yoga",
			CreatedAt:     base.AddDate(0, 0, i),
			AmountPaid:    amount,
			PaymentMethod: models.PaymentMethodCash,
			Attended:      true,
		}
	}
	return bookings
}

func TestRevenueEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, envelope := postJSON(t, srv.URL+"/api/v1/analytics/revenue", analytics.RevenueRequest{
		Bookings: testBookings(4, 25),
	})

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if !envelope.Success {
		t.Fatalf("success = false, error = %+v", envelope.Error)
	}
	if envelope.Meta == nil || envelope.Meta.RequestID == "" {
		t.Error("meta.request_id missing")
	}

	raw, _ := json.Marshal(envelope.Data)
	var result models.RevenueAnalytics
	if err := json.Unmarshal(raw, &result); err != nil {
		t.Fatalf("decode revenue result: %v", err)
	}
	if result.Totals.Revenue != 100 {
		t.Errorf("totals.revenue = %v, want 100", result.Totals.Revenue)
	}
	if result.Totals.AvgBookingValue != 25 {
		t.Errorf("totals.avg_booking_value = %v, want 25", result.Totals.AvgBookingValue)
	}
}

func TestPredictionsEndpointValidatesPayload(t *testing.T) {
	srv := newTestServer(t)

	resp, envelope := postJSON(t, srv.URL+"/api/v1/analytics/predictions", map[string]interface{}{
		"historical_data": []interface{}{},
		"horizon_days":    -1,
	})

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if envelope.Success {
		t.Fatal("success = true, want false")
	}
	if envelope.Error == nil || envelope.Error.Code != "VALIDATION_ERROR" {
		t.Fatalf("error = %+v, want VALIDATION_ERROR", envelope.Error)
	}
	if !strings.Contains(envelope.Error.Message, "HorizonDays") {
		t.Errorf("error message = %q, want mention of HorizonDays", envelope.Error.Message)
	}
}

func TestPredictionsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	historical := make([]models.DailyBookings, 14)
	base := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	for i := range historical {
		historical[i] = models.DailyBookings{
			Date:     base.AddDate(0, 0, i),
			Bookings: 10,
		}
	}

	resp, envelope := postJSON(t, srv.URL+"/api/v1/analytics/predictions", analytics.TrendRequest{
		HistoricalData: historical,
		HorizonDays:    7,
	})

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200, error = %+v", resp.StatusCode, envelope.Error)
	}

	raw, _ := json.Marshal(envelope.Data)
	var result models.BookingForecast
	if err := json.Unmarshal(raw, &result); err != nil {
		t.Fatalf("decode forecast: %v", err)
	}
	if len(result.Predictions) != 7 {
		t.Errorf("len(predictions) = %d, want 7", len(result.Predictions))
	}
}

func TestInstructorsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, envelope := postJSON(t, srv.URL+"/api/v1/analytics/instructors", analytics.InstructorRequest{
		Instructors: []models.InstructorRecord{{ID: "i1", Name: "Sam"}},
		Bookings:    withInstructor(testBookings(5, 30), "i1"),
		Reviews: []models.ReviewRecord{
			{ID: "r1", InstructorID: "i1", Rating: 5, CreatedAt: time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)},
		},
	})

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200, error = %+v", resp.StatusCode, envelope.Error)
	}

	raw, _ := json.Marshal(envelope.Data)
	var result models.InstructorAnalysis
	if err := json.Unmarshal(raw, &result); err != nil {
		t.Fatalf("decode instructor analysis: %v", err)
	}
	if len(result.Instructors) != 1 {
		t.Fatalf("len(instructors) = %d, want 1", len(result.Instructors))
	}
	if result.Instructors[0].Metrics.TotalRevenue != 150 {
		t.Errorf("total_revenue = %v, want 150", result.Instructors[0].Metrics.TotalRevenue)
	}
}

func TestCohortsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	joined := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	resp, envelope := postJSON(t, srv.URL+"/api/v1/analytics/cohorts", analytics.CohortRequest{
		Users: []models.UserRecord{
			{ID: "u0", JoinedAt: joined},
			{ID: "u1", JoinedAt: joined},
		},
		Bookings: testBookings(6, 20),
	})

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200, error = %+v", resp.StatusCode, envelope.Error)
	}
	if !envelope.Success {
		t.Fatalf("success = false, error = %+v", envelope.Error)
	}
}

func TestScheduleEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, envelope := postJSON(t, srv.URL+"/api/v1/analytics/schedule", analytics.ScheduleRequest{
		CurrentSchedule: []models.ScheduledClass{
			{ID: "c1", Name: "Morning Yoga", StartTime: time.Date(2026, 8, 3, 9, 0, 0, 0, time.UTC), Capacity: 20},
		},
		HistoricalBookings: testBookings(10, 25),
	})

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200, error = %+v", resp.StatusCode, envelope.Error)
	}
	if !envelope.Success {
		t.Fatalf("success = false, error = %+v", envelope.Error)
	}
}

func TestReportEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, envelope := postJSON(t, srv.URL+"/api/v1/analytics/report", analytics.ReportRequest{
		Bookings:    testBookings(14, 25),
		HorizonDays: 7,
	})

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200, error = %+v", resp.StatusCode, envelope.Error)
	}

	raw, _ := json.Marshal(envelope.Data)
	var result models.AnalyticsReport
	if err := json.Unmarshal(raw, &result); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if result.Revenue == nil {
		t.Error("report.revenue missing")
	}
	if result.Forecast == nil {
		t.Error("report.forecast missing")
	}
}

func TestInvalidJSONBody(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/v1/analytics/revenue", "application/json",
		strings.NewReader("{not json"))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}

	var envelope APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if envelope.Error == nil || envelope.Error.Code != ErrCodeBadRequest {
		t.Errorf("error = %+v, want %s", envelope.Error, ErrCodeBadRequest)
	}
}

func TestUnknownEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/analytics/nonsense")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestAnalyticsUnavailableBeforeEngineStarts(t *testing.T) {
	eng, err := engine.New(zerolog.Nop(), engine.DefaultConfig())
	if err != nil {
		t.Fatalf("engine.New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	client, err := engine.NewClient(ctx, eng, zerolog.Nop())
	if err != nil {
		t.Fatalf("engine.NewClient() error = %v", err)
	}

	cfg := config.Default()
	cfg.API.RateLimitDisabled = true
	srv := httptest.NewServer(NewRouter(client, eng, *cfg).Setup())
	t.Cleanup(func() {
		srv.Close()
		client.Close()
		cancel()
	})

	// The dispatcher never starts: the submit path must fail fast instead
	// of waiting out the job timeout.
	start := time.Now()
	resp, envelope := postJSON(t, srv.URL+"/api/v1/analytics/revenue", analytics.RevenueRequest{
		Bookings: testBookings(2, 25),
	})
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusServiceUnavailable)
	}
	if envelope.Error == nil || envelope.Error.Code != ErrCodeServiceUnavailable {
		t.Errorf("error = %+v, want code %s", envelope.Error, ErrCodeServiceUnavailable)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("request took %v, want a fast rejection", elapsed)
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/api/v1/health/live", "/api/v1/health/ready"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", path, resp.StatusCode)
		}
	}
}

func TestRequestIDHeaderEchoed(t *testing.T) {
	srv := newTestServer(t)

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/health/live", nil)
	req.Header.Set("X-Request-ID", "req-test-42")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("X-Request-ID"); got != "req-test-42" {
		t.Errorf("X-Request-ID = %q, want req-test-42", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func withInstructor(bookings []models.BookingRecord, instructorID string) []models.BookingRecord {
	for i := range bookings {
		bookings[i].InstructorID = instructorID
	}
	return bookings
}
