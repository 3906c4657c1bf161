// ClassPulse - Studio Booking Analytics Engine
// Copyright 2026 ClassPulse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/classpulse/classpulse

// Package stats provides the statistics primitives shared by the analytics
// calculators: mean, standard deviation, simple linear regression, and
// percentile ranking.
//
// All functions are pure and side-effect free. Empty and singleton inputs
// never panic: they degrade to neutral results (zero mean, flat
// regression, rank 100 against an empty population).
package stats

import (
	"math"
	"sort"
)

// Point is a single (x, y) observation for regression fitting.
type Point struct {
	X float64
	Y float64
}

// Regression is a fitted line y = Slope*x + Intercept.
type Regression struct {
	Slope     float64
	Intercept float64
}

// At evaluates the fitted line at x.
func (r Regression) At(x float64) float64 {
	return r.Slope*x + r.Intercept
}

// Mean returns the arithmetic mean of values, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev returns the population standard deviation of values, or 0 for
// fewer than two values.
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := Mean(values)
	var ss float64
	for _, v := range values {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)))
}

// LinearRegression fits a least-squares line through points.
//
// Fewer than two points degenerate to a flat line: slope 0 with the
// intercept at the only observation (or 0 with no observations). The same
// applies when all x values coincide.
func LinearRegression(points []Point) Regression {
	n := float64(len(points))
	switch len(points) {
	case 0:
		return Regression{}
	case 1:
		return Regression{Intercept: points[0].Y}
	}

	var sumX, sumY, sumXY, sumXX float64
	for _, p := range points {
		sumX += p.X
		sumY += p.Y
		sumXY += p.X * p.Y
		sumXX += p.X * p.X
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return Regression{Intercept: sumY / n}
	}

	slope := (n*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / n
	return Regression{Slope: slope, Intercept: intercept}
}

// RSquared returns the coefficient of determination of the fitted line
// against points, clamped to [0,1].
//
// A constant series fitted exactly yields 1; a constant series with
// residuals yields 0.
func RSquared(points []Point, reg Regression) float64 {
	if len(points) == 0 {
		return 0
	}

	var sumY float64
	for _, p := range points {
		sumY += p.Y
	}
	meanY := sumY / float64(len(points))

	var ssRes, ssTot float64
	for _, p := range points {
		res := p.Y - reg.At(p.X)
		ssRes += res * res
		dev := p.Y - meanY
		ssTot += dev * dev
	}

	if ssTot == 0 {
		if ssRes == 0 {
			return 1
		}
		return 0
	}

	r2 := 1 - ssRes/ssTot
	if r2 < 0 {
		return 0
	}
	if r2 > 1 {
		return 1
	}
	return r2
}

// PercentileRank returns the percentage of population values less than or
// equal to value, in [0,100].
//
// The maximum of a non-empty population ranks 100; the minimum (ties
// excluded) receives the smallest non-zero rank. An empty population
// returns 100: "best among none". That edge case matches the behavior the
// product currently depends on and is pending confirmation.
func PercentileRank(value float64, population []float64) float64 {
	if len(population) == 0 {
		return 100
	}

	sorted := make([]float64, len(population))
	copy(sorted, population)
	sort.Float64s(sorted)

	// First index strictly greater than value == count of values <= value.
	at := sort.SearchFloat64s(sorted, value)
	for at < len(sorted) && sorted[at] == value {
		at++
	}
	return float64(at) / float64(len(sorted)) * 100
}
