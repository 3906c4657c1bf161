// ClassPulse - Studio Booking Analytics Engine
// Copyright 2026 ClassPulse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/classpulse/classpulse

package models

import "time"

// DailyBookings is one historical data point for trend prediction:
// the number of bookings observed on a given day.
type DailyBookings struct {
	Date     time.Time `json:"date,omitempty"`
	Bookings int       `json:"bookings"`
}

// Confidence is the prediction band around a forecast value.
// Not a statistical interval: a fixed ±20% of the predicted value.
type Confidence struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Prediction is a single forecast day.
//
// Invariants: Predicted >= 0 and Confidence.Lower <= Predicted <=
// Confidence.Upper.
type Prediction struct {
	// Day is the offset from the last historical observation, starting at 1.
	Day int `json:"day"`

	Predicted float64 `json:"predicted"`

	// TrendComponent is the raw regression value before seasonal scaling.
	TrendComponent float64 `json:"trend_component"`

	// SeasonalComponent is the weekly multiplier applied for this weekday
	// position. 1 means "typical".
	SeasonalComponent float64 `json:"seasonal_component"`

	Confidence Confidence `json:"confidence"`
}

// ForecastModel describes the fitted model for transparency in dashboards.
type ForecastModel struct {
	Type            string    `json:"type"` // linear_regression_with_seasonality
	Slope           float64   `json:"slope"`
	Intercept       float64   `json:"intercept"`
	RSquared        float64   `json:"r_squared"`
	SeasonalPattern []float64 `json:"seasonal_pattern"` // 7 weekly multipliers
}

// ForecastAccuracy reports goodness of fit against the historical series.
type ForecastAccuracy struct {
	RSquared          float64 `json:"r_squared"`
	MeanAbsoluteError float64 `json:"mean_absolute_error"`
}

// BookingForecast is the full trend prediction result.
type BookingForecast struct {
	Predictions []Prediction     `json:"predictions"`
	Accuracy    ForecastAccuracy `json:"accuracy"`
	Model       ForecastModel    `json:"model"`
	Insights    []Insight        `json:"insights"`
}
