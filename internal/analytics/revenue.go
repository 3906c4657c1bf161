// ClassPulse - Studio Booking Analytics Engine
// Copyright 2026 ClassPulse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/classpulse/classpulse

package analytics

import (
	"fmt"
	"sort"

	"github.com/classpulse/classpulse/internal/models"
	"github.com/classpulse/classpulse/internal/stats"
)

// slopeDeadZone is the regression slope magnitude below which a series is
// reported as stable.
const slopeDeadZone = 0.01

// peakHourFactor marks an hour as "peak" when its booking volume exceeds
// this multiple of the mean hourly volume.
const peakHourFactor = 1.5

// maxPeakHoursReported caps the peak-hour insight list.
const maxPeakHoursReported = 3

// revenueForecastHorizon is how many future periods the embedded forecast
// covers when revenue analytics reuses the trend predictor.
const revenueForecastHorizon = 7

// CalculateRevenue aggregates bookings into calendar-period metrics and
// derives totals, trends, an embedded forecast, and advisory insights.
//
// Bookings outside req.TimeRange are ignored. Malformed bookings (zero
// CreatedAt) are skipped and counted, never fatal.
func CalculateRevenue(req RevenueRequest) (*models.RevenueAnalytics, error) {
	granularity, err := normalizeGranularity(req.Granularity, models.GranularityDaily)
	if err != nil {
		return nil, fmt.Errorf("revenue analytics: %w", err)
	}

	grouped := make(map[string][]models.BookingRecord)
	skipped := 0
	for i := range req.Bookings {
		b := &req.Bookings[i]
		if !b.Valid() {
			skipped++
			continue
		}
		if !req.TimeRange.IsZero() && !req.TimeRange.Contains(b.CreatedAt) {
			continue
		}
		key, err := periodKey(b.CreatedAt, granularity)
		if err != nil {
			return nil, fmt.Errorf("revenue analytics: %w", err)
		}
		grouped[key] = append(grouped[key], *b)
	}

	keys := make([]string, 0, len(grouped))
	for key := range grouped {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	result := &models.RevenueAnalytics{
		Periods:        make([]models.TimePeriodMetrics, 0, len(keys)),
		Insights:       []models.Insight{},
		SkippedRecords: skipped,
	}

	for _, key := range keys {
		period := aggregatePeriod(key, grouped[key])
		result.Periods = append(result.Periods, period)

		result.Totals.Revenue += period.Revenue
		result.Totals.Bookings += period.BookingCount
		result.Totals.CreditsUsed += period.CreditsUsed
		result.Totals.CashPayments += period.CashAmount
	}

	if result.Totals.Bookings > 0 {
		result.Totals.AvgBookingValue = result.Totals.Revenue / float64(result.Totals.Bookings)
	}

	if len(result.Periods) >= 2 {
		result.Trends = calculateTrends(result.Periods)
		result.Forecast = forecastFromPeriods(result.Periods)
	}

	result.Insights = revenueInsights(result)
	return result, nil
}

// aggregatePeriod computes the metrics bucket for one calendar period.
func aggregatePeriod(key string, bookings []models.BookingRecord) models.TimePeriodMetrics {
	period := models.TimePeriodMetrics{
		Period:         key,
		BookingCount:   len(bookings),
		PopularClasses: make(map[string]int),
		PeakHours:      make([]int, models.PeakHourCount),
	}

	users := make(map[string]struct{})
	for i := range bookings {
		b := &bookings[i]
		period.Revenue += b.AmountPaid

		switch b.PaymentMethod {
		case models.PaymentMethodCredit:
			period.CreditsUsed += b.CreditsUsed
		case models.PaymentMethodCash:
			period.CashAmount += b.AmountPaid
		}

		users[b.UserID] = struct{}{}

		name := b.ClassName
		if name == "" {
			name = "Unknown"
		}
		period.PopularClasses[name]++
		period.PeakHours[b.CreatedAt.Hour()]++
	}

	period.UniqueUserCount = len(users)
	if period.BookingCount > 0 {
		period.AvgBookingValue = period.Revenue / float64(period.BookingCount)
	}
	return period
}

// calculateTrends derives direction, growth, and volatility from the
// period series. Requires at least two periods.
func calculateTrends(periods []models.TimePeriodMetrics) *models.RevenueTrends {
	revenues := make([]float64, len(periods))
	counts := make([]float64, len(periods))
	for i := range periods {
		revenues[i] = periods[i].Revenue
		counts[i] = float64(periods[i].BookingCount)
	}

	trends := &models.RevenueTrends{
		RevenueDirection:  trendDirection(revenues),
		BookingsDirection: trendDirection(counts),
		AvgGrowthRate:     avgGrowthRate(revenues),
	}

	if mean := stats.Mean(revenues); mean != 0 {
		trends.Volatility = stats.StdDev(revenues) / mean
	}
	return trends
}

// trendDirection classifies a series by regression slope with a dead-zone.
func trendDirection(values []float64) string {
	if len(values) < 2 {
		return models.TrendStable
	}

	points := make([]stats.Point, len(values))
	for i, v := range values {
		points[i] = stats.Point{X: float64(i), Y: v}
	}

	reg := stats.LinearRegression(points)
	switch {
	case reg.Slope > slopeDeadZone:
		return models.TrendIncreasing
	case reg.Slope < -slopeDeadZone:
		return models.TrendDecreasing
	default:
		return models.TrendStable
	}
}

// avgGrowthRate is the mean of period-over-period percentage changes.
// Periods following a zero value are skipped to avoid division by zero.
func avgGrowthRate(values []float64) float64 {
	var rates []float64
	for i := 1; i < len(values); i++ {
		if values[i-1] != 0 {
			rates = append(rates, (values[i]-values[i-1])/values[i-1])
		}
	}
	return stats.Mean(rates)
}

// forecastFromPeriods reuses the trend model over the period revenue
// series. Revenue is monetary, so predictions are not rounded to whole
// values the way booking counts are.
func forecastFromPeriods(periods []models.TimePeriodMetrics) *models.BookingForecast {
	revenues := make([]float64, len(periods))
	for i := range periods {
		revenues[i] = periods[i].Revenue
	}
	return forecastSeries(revenues, revenueForecastHorizon, false)
}

// revenueInsights generates the fixed-rule advisory annotations.
func revenueInsights(result *models.RevenueAnalytics) []models.Insight {
	insights := []models.Insight{}

	if result.Trends != nil {
		switch result.Trends.RevenueDirection {
		case models.TrendIncreasing:
			insights = append(insights, models.Insight{
				Type:     models.InsightPositive,
				Message:  fmt.Sprintf("Revenue is trending up with %.1f%% average growth", result.Trends.AvgGrowthRate*100),
				Priority: models.PriorityHigh,
			})
		case models.TrendDecreasing:
			insights = append(insights, models.Insight{
				Type:     models.InsightWarning,
				Message:  "Revenue is declining. Consider promotional campaigns or schedule optimization",
				Priority: models.PriorityHigh,
			})
		}
	}

	if peaks := peakHours(result.Periods); len(peaks) > 0 {
		insights = append(insights, models.Insight{
			Type:     models.InsightInfo,
			Message:  fmt.Sprintf("Peak booking hours are %s. Consider adding more classes during these times", joinHours(peaks)),
			Priority: models.PriorityMedium,
		})
	}

	return insights
}

// peakHours returns up to maxPeakHoursReported hours whose total booking
// volume across all periods exceeds peakHourFactor times the mean hourly
// volume, busiest first.
func peakHours(periods []models.TimePeriodMetrics) []int {
	totals := make([]float64, models.PeakHourCount)
	for i := range periods {
		for hour, count := range periods[i].PeakHours {
			totals[hour] += float64(count)
		}
	}

	threshold := stats.Mean(totals) * peakHourFactor
	if threshold == 0 {
		return nil
	}

	var hours []int
	for hour, total := range totals {
		if total > threshold {
			hours = append(hours, hour)
		}
	}

	sort.Slice(hours, func(i, j int) bool {
		if totals[hours[i]] != totals[hours[j]] {
			return totals[hours[i]] > totals[hours[j]]
		}
		return hours[i] < hours[j]
	})

	if len(hours) > maxPeakHoursReported {
		hours = hours[:maxPeakHoursReported]
	}
	return hours
}

func joinHours(hours []int) string {
	out := ""
	for i, h := range hours {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%d:00", h)
	}
	return out
}
