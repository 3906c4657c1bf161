// ClassPulse - Studio Booking Analytics Engine
// Copyright 2026 ClassPulse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/classpulse/classpulse

package analytics

import (
	"fmt"
	"sort"

	"github.com/classpulse/classpulse/internal/models"
)

// CalculateCohortRetention buckets users by join period and measures
// period-over-period survival for up to models.MaxRetentionPeriods
// periods, plus lifetime value per cohort and a size-weighted aggregate
// retention curve.
//
// Users with a zero JoinedAt and bookings with a zero CreatedAt are
// skipped, never fatal.
func CalculateCohortRetention(req CohortRequest) (*models.RetentionAnalysis, error) {
	size, err := normalizeGranularity(req.CohortSize, models.GranularityMonthly)
	if err != nil {
		return nil, fmt.Errorf("cohort retention: %w", err)
	}

	cohorts := make(map[string][]models.UserRecord)
	for i := range req.Users {
		u := &req.Users[i]
		if u.JoinedAt.IsZero() {
			continue
		}
		key, err := periodKey(u.JoinedAt, size)
		if err != nil {
			return nil, fmt.Errorf("cohort retention: %w", err)
		}
		cohorts[key] = append(cohorts[key], *u)
	}

	// Index bookings by user once; every cohort reuses it.
	bookingsByUser := make(map[string][]models.BookingRecord)
	for i := range req.Bookings {
		b := &req.Bookings[i]
		if !b.Valid() {
			continue
		}
		bookingsByUser[b.UserID] = append(bookingsByUser[b.UserID], *b)
	}

	keys := make([]string, 0, len(cohorts))
	for key := range cohorts {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	result := &models.RetentionAnalysis{
		Cohorts:  make([]models.CohortRetention, 0, len(keys)),
		Insights: []models.Insight{},
	}

	for _, key := range keys {
		members := cohorts[key]
		result.Cohorts = append(result.Cohorts, trackCohort(key, members, bookingsByUser, size))
	}

	result.Aggregate = aggregateRetention(result.Cohorts)
	result.Insights = retentionInsights(result)
	return result, nil
}

// trackCohort measures one cohort's survival across periods.
func trackCohort(key string, members []models.UserRecord, bookingsByUser map[string][]models.BookingRecord, size string) models.CohortRetention {
	cohort := models.CohortRetention{
		CohortKey:  key,
		CohortSize: len(members),
		Periods:    make([]models.CohortPeriod, 0, models.MaxRetentionPeriods),
	}

	start := periodStart(members[0].JoinedAt, size)
	for period := 0; period < models.MaxRetentionPeriods; period++ {
		pStart := addPeriods(start, period, size)
		pEnd := addPeriods(start, period+1, size)

		active := 0
		for i := range members {
			for _, b := range bookingsByUser[members[i].ID] {
				if !b.CreatedAt.Before(pStart) && b.CreatedAt.Before(pEnd) {
					active++
					break
				}
			}
		}

		retention := float64(active) / float64(cohort.CohortSize)
		cohort.Periods = append(cohort.Periods, models.CohortPeriod{
			Period:        period,
			ActiveCount:   active,
			RetentionRate: retention,
			ChurnRate:     1 - retention,
		})
	}

	for i := range members {
		for _, b := range bookingsByUser[members[i].ID] {
			cohort.LTV += b.AmountPaid
		}
	}
	return cohort
}

// aggregateRetention averages the retention curves across cohorts,
// weighted by cohort size.
func aggregateRetention(cohorts []models.CohortRetention) []models.AggregateRetentionPoint {
	if len(cohorts) == 0 {
		return []models.AggregateRetentionPoint{}
	}

	points := make([]models.AggregateRetentionPoint, models.MaxRetentionPeriods)
	for period := 0; period < models.MaxRetentionPeriods; period++ {
		var weighted, totalSize float64
		count := 0
		for i := range cohorts {
			if period >= len(cohorts[i].Periods) {
				continue
			}
			weighted += cohorts[i].Periods[period].RetentionRate * float64(cohorts[i].CohortSize)
			totalSize += float64(cohorts[i].CohortSize)
			count++
		}

		point := models.AggregateRetentionPoint{Period: period, CohortCount: count}
		if totalSize > 0 {
			point.RetentionRate = weighted / totalSize
		}
		points[period] = point
	}
	return points
}

// retentionInsights derives advisory annotations from the aggregate curve.
func retentionInsights(result *models.RetentionAnalysis) []models.Insight {
	insights := []models.Insight{}
	if len(result.Aggregate) < 2 || len(result.Cohorts) == 0 {
		return insights
	}

	firstPeriod := result.Aggregate[1].RetentionRate
	switch {
	case firstPeriod < 0.3:
		insights = append(insights, models.Insight{
			Type:     models.InsightWarning,
			Message:  fmt.Sprintf("Only %.0f%% of new members book again in their second period; consider an onboarding offer", firstPeriod*100),
			Priority: models.PriorityHigh,
		})
	case firstPeriod >= 0.5:
		insights = append(insights, models.Insight{
			Type:     models.InsightPositive,
			Message:  fmt.Sprintf("%.0f%% of new members return in their second period", firstPeriod*100),
			Priority: models.PriorityMedium,
		})
	}

	best := result.Cohorts[0]
	for _, c := range result.Cohorts[1:] {
		if c.LTV > best.LTV {
			best = c
		}
	}
	if best.LTV > 0 {
		insights = append(insights, models.Insight{
			Type:     models.InsightInfo,
			Message:  fmt.Sprintf("Cohort %s has generated the highest lifetime value at %.0f", best.CohortKey, best.LTV),
			Priority: models.PriorityLow,
		})
	}
	return insights
}
