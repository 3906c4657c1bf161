// ClassPulse - Studio Booking Analytics Engine
// Copyright 2026 ClassPulse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/classpulse/classpulse

package analytics

import (
	"fmt"
	"math"

	"github.com/classpulse/classpulse/internal/models"
	"github.com/classpulse/classpulse/internal/stats"
)

// seasonalPeriod is the weekly cycle length for seasonality detection.
const seasonalPeriod = 7

// confidenceBand is the fixed fraction around the predicted value used for
// the confidence interval. A deliberate simplification, not a statistical
// interval.
const confidenceBand = 0.2

// forecastModelType identifies the fitted model in result metadata.
const forecastModelType = "linear_regression_with_seasonality"

// PredictBookingTrends fits a linear trend with weekly seasonal
// multipliers to the historical series and projects it forward.
//
// A horizon of zero yields an empty prediction list. Fewer than two
// historical points degenerate to an intercept-only flat forecast.
func PredictBookingTrends(req TrendRequest) (*models.BookingForecast, error) {
	if req.HorizonDays < 0 {
		return nil, fmt.Errorf("trend prediction: negative horizon %d", req.HorizonDays)
	}

	values := make([]float64, len(req.HistoricalData))
	for i := range req.HistoricalData {
		values[i] = float64(req.HistoricalData[i].Bookings)
	}

	forecast := forecastSeries(values, req.HorizonDays, true)
	forecast.Insights = trendInsights(forecast, values)
	return forecast, nil
}

// forecastSeries fits the linear-plus-seasonality model to a series and
// projects it forward. Integral series (booking counts) round predictions
// to whole values; monetary series keep cents.
func forecastSeries(values []float64, horizon int, integral bool) *models.BookingForecast {
	points := make([]stats.Point, len(values))
	for i, v := range values {
		points[i] = stats.Point{X: float64(i), Y: v}
	}

	reg := stats.LinearRegression(points)
	seasonal := seasonalMultipliers(values, seasonalPeriod)
	lastIndex := len(points) - 1

	predictions := make([]models.Prediction, 0, horizon)
	for d := 1; d <= horizon; d++ {
		trend := reg.At(float64(lastIndex + d))
		mult := seasonal[d%seasonalPeriod]
		predicted := math.Max(0, trend*mult)
		lower := predicted * (1 - confidenceBand)
		upper := predicted * (1 + confidenceBand)
		if integral {
			predicted = math.Round(predicted)
			lower = math.Round(lower)
			upper = math.Round(upper)
		}

		predictions = append(predictions, models.Prediction{
			Day:               d,
			Predicted:         predicted,
			TrendComponent:    trend,
			SeasonalComponent: mult,
			Confidence: models.Confidence{
				Lower: lower,
				Upper: upper,
			},
		})
	}

	r2 := stats.RSquared(points, reg)
	return &models.BookingForecast{
		Predictions: predictions,
		Insights:    []models.Insight{},
		Accuracy: models.ForecastAccuracy{
			RSquared:          r2,
			MeanAbsoluteError: meanAbsoluteError(points, reg),
		},
		Model: models.ForecastModel{
			Type:            forecastModelType,
			Slope:           reg.Slope,
			Intercept:       reg.Intercept,
			RSquared:        r2,
			SeasonalPattern: seasonal,
		},
	}
}

// seasonalMultipliers averages values at each index position modulo
// period and normalizes by the overall mean. A multiplier of 1 means
// "typical"; positions with no observations default to 1.
func seasonalMultipliers(values []float64, period int) []float64 {
	sums := make([]float64, period)
	counts := make([]int, period)
	for i, v := range values {
		sums[i%period] += v
		counts[i%period]++
	}

	overall := stats.Mean(values)
	multipliers := make([]float64, period)
	for i := range multipliers {
		if counts[i] == 0 || overall == 0 {
			multipliers[i] = 1
			continue
		}
		multipliers[i] = (sums[i] / float64(counts[i])) / overall
	}
	return multipliers
}

func meanAbsoluteError(points []stats.Point, reg stats.Regression) float64 {
	if len(points) == 0 {
		return 0
	}
	var sum float64
	for _, p := range points {
		sum += math.Abs(p.Y - reg.At(p.X))
	}
	return sum / float64(len(points))
}

// trendInsights produces advisory annotations comparing the forecast
// volume against recent history.
func trendInsights(forecast *models.BookingForecast, historical []float64) []models.Insight {
	insights := []models.Insight{}
	if len(forecast.Predictions) == 0 || len(historical) == 0 {
		return insights
	}

	histMean := stats.Mean(historical)
	var predicted float64
	for i := range forecast.Predictions {
		predicted += forecast.Predictions[i].Predicted
	}
	predMean := predicted / float64(len(forecast.Predictions))

	switch {
	case histMean > 0 && predMean > histMean*1.1:
		insights = append(insights, models.Insight{
			Type:     models.InsightPositive,
			Message:  fmt.Sprintf("Bookings are forecast to average %.0f per day, up from %.0f", predMean, histMean),
			Priority: models.PriorityMedium,
		})
	case histMean > 0 && predMean < histMean*0.9:
		insights = append(insights, models.Insight{
			Type:     models.InsightWarning,
			Message:  fmt.Sprintf("Bookings are forecast to average %.0f per day, down from %.0f", predMean, histMean),
			Priority: models.PriorityHigh,
		})
	}

	if len(historical) >= seasonalPeriod && forecast.Accuracy.RSquared < 0.5 {
		insights = append(insights, models.Insight{
			Type:     models.InsightInfo,
			Message:  "Historical bookings fit the trend model poorly; treat this forecast as indicative only",
			Priority: models.PriorityLow,
		})
	}
	return insights
}
