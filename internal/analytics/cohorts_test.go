// ClassPulse - Studio Booking Analytics Engine
// Copyright 2026 ClassPulse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/classpulse/classpulse

package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/classpulse/classpulse/internal/models"
)

func cohortUser(id string, joined time.Time) models.UserRecord {
	return models.UserRecord{ID: id, JoinedAt: joined}
}

func userBooking(userID string, createdAt time.Time, amount float64) models.BookingRecord {
	return models.BookingRecord{
		ID:         "b-" + userID + createdAt.Format("20060102"),
		UserID:     userID,
		CreatedAt:  createdAt,
		AmountPaid: amount,
	}
}

func TestCalculateCohortRetentionMonthly(t *testing.T) {
	jan := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	req := CohortRequest{
		Users: []models.UserRecord{
			cohortUser("u1", jan),
			cohortUser("u2", jan.AddDate(0, 0, 5)),
		},
		Bookings: []models.BookingRecord{
			userBooking("u1", jan, 20),                  // period 0
			userBooking("u1", jan.AddDate(0, 1, 0), 20), // period 1
			userBooking("u2", jan, 30),                  // period 0 only
		},
	}

	result, err := CalculateCohortRetention(req)
	if err != nil {
		t.Fatalf("CalculateCohortRetention: %v", err)
	}
	if len(result.Cohorts) != 1 {
		t.Fatalf("got %d cohorts, want 1", len(result.Cohorts))
	}

	cohort := result.Cohorts[0]
	if cohort.CohortKey != "2026-01" {
		t.Errorf("cohort key = %q, want 2026-01", cohort.CohortKey)
	}
	if cohort.CohortSize != 2 {
		t.Errorf("cohort size = %d, want 2", cohort.CohortSize)
	}
	if len(cohort.Periods) != models.MaxRetentionPeriods {
		t.Fatalf("got %d periods, want %d", len(cohort.Periods), models.MaxRetentionPeriods)
	}

	if cohort.Periods[0].RetentionRate != 1.0 {
		t.Errorf("period 0 retention = %v, want 1.0", cohort.Periods[0].RetentionRate)
	}
	if cohort.Periods[1].RetentionRate != 0.5 {
		t.Errorf("period 1 retention = %v, want 0.5", cohort.Periods[1].RetentionRate)
	}
	if cohort.Periods[2].ActiveCount != 0 {
		t.Errorf("period 2 active = %d, want 0", cohort.Periods[2].ActiveCount)
	}
	if cohort.LTV != 70 {
		t.Errorf("ltv = %v, want 70", cohort.LTV)
	}
}

func TestCohortRetentionInvariants(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var users []models.UserRecord
	var bookings []models.BookingRecord
	for m := 0; m < 4; m++ {
		for u := 0; u < 3; u++ {
			id := string(rune('a'+m)) + string(rune('0'+u))
			joined := base.AddDate(0, m, u)
			users = append(users, cohortUser(id, joined))
			// Each user books in their join month and some later months.
			bookings = append(bookings, userBooking(id, joined, 10))
			if u%2 == 0 {
				bookings = append(bookings, userBooking(id, joined.AddDate(0, 2, 0), 10))
			}
		}
	}

	result, err := CalculateCohortRetention(CohortRequest{Users: users, Bookings: bookings})
	if err != nil {
		t.Fatalf("CalculateCohortRetention: %v", err)
	}

	for _, cohort := range result.Cohorts {
		for _, p := range cohort.Periods {
			if p.RetentionRate < 0 || p.RetentionRate > 1 {
				t.Errorf("cohort %s period %d retention %v outside [0,1]", cohort.CohortKey, p.Period, p.RetentionRate)
			}
			if math.Abs(p.RetentionRate+p.ChurnRate-1) > 1e-9 {
				t.Errorf("cohort %s period %d: retention %v + churn %v != 1", cohort.CohortKey, p.Period, p.RetentionRate, p.ChurnRate)
			}
		}
	}
}

func TestCohortRetentionAggregateWeighting(t *testing.T) {
	jan := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC)

	// January cohort: 3 users, all active in period 1.
	// February cohort: 1 user, inactive in period 1.
	users := []models.UserRecord{
		cohortUser("j1", jan), cohortUser("j2", jan), cohortUser("j3", jan),
		cohortUser("f1", feb),
	}
	var bookings []models.BookingRecord
	for _, id := range []string{"j1", "j2", "j3"} {
		bookings = append(bookings, userBooking(id, jan.AddDate(0, 1, 0), 10))
	}

	result, err := CalculateCohortRetention(CohortRequest{Users: users, Bookings: bookings})
	if err != nil {
		t.Fatalf("CalculateCohortRetention: %v", err)
	}

	// Size-weighted period-1 retention: (1.0*3 + 0*1) / 4.
	got := result.Aggregate[1].RetentionRate
	if math.Abs(got-0.75) > 1e-9 {
		t.Errorf("aggregate period 1 retention = %v, want 0.75", got)
	}
	if result.Aggregate[1].CohortCount != 2 {
		t.Errorf("cohort count = %d, want 2", result.Aggregate[1].CohortCount)
	}
}

func TestCohortRetentionSkipsMalformedInputs(t *testing.T) {
	jan := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	users := []models.UserRecord{
		cohortUser("ok", jan),
		{ID: "no-join-date"},
	}
	bookings := []models.BookingRecord{
		userBooking("ok", jan, 10),
		{ID: "no-created-at", UserID: "ok", AmountPaid: 999},
	}

	result, err := CalculateCohortRetention(CohortRequest{Users: users, Bookings: bookings})
	if err != nil {
		t.Fatalf("CalculateCohortRetention: %v", err)
	}
	if len(result.Cohorts) != 1 || result.Cohorts[0].CohortSize != 1 {
		t.Fatalf("malformed user should be skipped: %+v", result.Cohorts)
	}
	if result.Cohorts[0].LTV != 10 {
		t.Errorf("ltv = %v, want 10 (malformed booking excluded)", result.Cohorts[0].LTV)
	}
}

func TestCohortRetentionEmpty(t *testing.T) {
	result, err := CalculateCohortRetention(CohortRequest{})
	if err != nil {
		t.Fatalf("CalculateCohortRetention: %v", err)
	}
	if len(result.Cohorts) != 0 {
		t.Errorf("got %d cohorts, want 0", len(result.Cohorts))
	}
	if len(result.Aggregate) != 0 {
		t.Errorf("aggregate should be empty, got %d points", len(result.Aggregate))
	}
}

func TestCohortRetentionUnknownCohortSize(t *testing.T) {
	if _, err := CalculateCohortRetention(CohortRequest{CohortSize: "quarterly"}); err == nil {
		t.Fatal("expected error for unknown cohort size")
	}
}
