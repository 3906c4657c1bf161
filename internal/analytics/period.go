// ClassPulse - Studio Booking Analytics Engine
// Copyright 2026 ClassPulse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/classpulse/classpulse

package analytics

import (
	"fmt"
	"time"

	"github.com/classpulse/classpulse/internal/models"
)

// periodKey returns the calendar bucket key for t at the given
// granularity: ISO date for daily, YYYY-Www (ISO week numbering) for
// weekly, YYYY-MM for monthly.
func periodKey(t time.Time, granularity string) (string, error) {
	switch granularity {
	case models.GranularityDaily:
		return t.Format("2006-01-02"), nil
	case models.GranularityWeekly:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week), nil
	case models.GranularityMonthly:
		return t.Format("2006-01"), nil
	default:
		return "", fmt.Errorf("unknown granularity %q", granularity)
	}
}

// periodStart truncates t to the start of its period.
func periodStart(t time.Time, granularity string) time.Time {
	switch granularity {
	case models.GranularityWeekly:
		// Walk back to Monday, the ISO week start.
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case models.GranularityMonthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	default:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	}
}

// addPeriods advances start by n periods at the given granularity.
func addPeriods(start time.Time, n int, granularity string) time.Time {
	switch granularity {
	case models.GranularityWeekly:
		return start.AddDate(0, 0, 7*n)
	case models.GranularityMonthly:
		return start.AddDate(0, n, 0)
	default:
		return start.AddDate(0, 0, n)
	}
}

// normalizeGranularity applies the default and rejects unknown values.
func normalizeGranularity(granularity, fallback string) (string, error) {
	if granularity == "" {
		return fallback, nil
	}
	switch granularity {
	case models.GranularityDaily, models.GranularityWeekly, models.GranularityMonthly:
		return granularity, nil
	}
	return "", fmt.Errorf("unknown granularity %q", granularity)
}
