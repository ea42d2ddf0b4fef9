// Package forecast implements the forecasting engine used by the foresight
// service: data preparation, series characterization, method selection, and
// four forecasting algorithms (linear regression, simple exponential
// smoothing, double exponential smoothing, seasonal decomposition) with
// confidence intervals and accuracy metrics.
//
// The package is pure computation. It performs no I/O, keeps no state between
// calls, and never mutates its inputs, so concurrent calls on independent
// inputs are safe without locking.
package forecast

import (
	"time"
)

// Point is a single observation: a timestamp and a numeric value.
type Point struct {
	Timestamp time.Time
	Value     float64
}

// Series is a prepared, time-ordered sequence of points. Timestamps are
// strictly increasing and every point carries a valid value. A Series is
// produced by Prepare and is immutable afterwards; accessors return copies.
type Series struct {
	points         []Point
	missingDropped int
}

// NewSeries builds a Series directly from points. Points are copied, sorted
// ascending by timestamp, and exact duplicate timestamps are collapsed by
// averaging their values. Intended for callers that already hold clean
// observations; tabular input should go through Prepare instead.
func NewSeries(points []Point) Series {
	cp := make([]Point, len(points))
	copy(cp, points)
	sortPoints(cp)
	return Series{points: collapseDuplicates(cp)}
}

// Len returns the number of points in the series.
func (s Series) Len() int {
	return len(s.points)
}

// At returns the point at index i.
func (s Series) At(i int) Point {
	return s.points[i]
}

// Last returns the final (most recent) point. It panics on an empty series;
// Prepare never returns one.
func (s Series) Last() Point {
	return s.points[len(s.points)-1]
}

// Values returns a copy of the values in time order.
func (s Series) Values() []float64 {
	out := make([]float64, len(s.points))
	for i, p := range s.points {
		out[i] = p.Value
	}
	return out
}

// Timestamps returns a copy of the timestamps in time order.
func (s Series) Timestamps() []time.Time {
	out := make([]time.Time, len(s.points))
	for i, p := range s.points {
		out[i] = p.Timestamp
	}
	return out
}

// MissingDropped reports how many rows were discarded during preparation
// because the target value was missing. Zero for series built with NewSeries.
func (s Series) MissingDropped() int {
	return s.missingDropped
}

// Method identifies one of the four forecasting algorithms.
type Method string

const (
	MethodLinearRegression           Method = "linear_regression"
	MethodSimpleExponentialSmoothing Method = "simple_exponential_smoothing"
	MethodDoubleExponentialSmoothing Method = "double_exponential_smoothing"
	MethodSeasonalDecomposition      Method = "seasonal_decomposition"
)

// DisplayName returns the human-readable name of the method.
func (m Method) DisplayName() string {
	switch m {
	case MethodLinearRegression:
		return "Linear Regression"
	case MethodSimpleExponentialSmoothing:
		return "Simple Exponential Smoothing"
	case MethodDoubleExponentialSmoothing:
		return "Double Exponential Smoothing"
	case MethodSeasonalDecomposition:
		return "Seasonal Decomposition"
	default:
		return string(m)
	}
}

// Valid reports whether m is one of the four known methods.
func (m Method) Valid() bool {
	switch m {
	case MethodLinearRegression,
		MethodSimpleExponentialSmoothing,
		MethodDoubleExponentialSmoothing,
		MethodSeasonalDecomposition:
		return true
	}
	return false
}

// TrendDirection is the qualitative trend label attached to a forecast.
type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
	TrendSeasonal   TrendDirection = "seasonal"
)

// MethodConfidence is the qualitative confidence grade a method assigns to
// its own fit.
type MethodConfidence string

const (
	ConfidenceHigh   MethodConfidence = "high"
	ConfidenceMedium MethodConfidence = "medium"
	ConfidenceLow    MethodConfidence = "low"
)

// Characteristics summarizes the statistical shape of a prepared series.
// All fields are derived once per call and never updated.
type Characteristics struct {
	Length         int     `json:"length"`
	HasTrend       bool    `json:"has_trend"`
	HasSeasonality bool    `json:"has_seasonality"`
	Volatility     float64 `json:"volatility"`
	MissingValues  int     `json:"missing_values"`
	Outliers       int     `json:"outliers"`
}

// Result is the complete outcome of one forecast call. The four sequences
// always share the same length (the clamped horizon), and for every index i
// ConfidenceLower[i] <= ForecastValues[i] <= ConfidenceUpper[i]. Once
// returned, a Result belongs to the caller; the engine keeps no reference.
type Result struct {
	Method           Method             `json:"method"`
	ForecastValues   []float64          `json:"forecast_values"`
	ForecastDates    []string           `json:"forecast_dates"`
	ConfidenceUpper  []float64          `json:"confidence_upper"`
	ConfidenceLower  []float64          `json:"confidence_lower"`
	AccuracyMetrics  map[string]float64 `json:"accuracy_metrics"`
	MethodConfidence MethodConfidence   `json:"method_confidence"`
	SeasonalDetected bool               `json:"seasonal_detected"`
	TrendDirection   TrendDirection     `json:"trend_direction"`
	LastActualValue  float64            `json:"last_actual_value"`
	ForecastHorizon  int                `json:"forecast_horizon"`
}
