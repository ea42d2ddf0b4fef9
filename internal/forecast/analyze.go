package forecast

import (
	"errors"
	"fmt"
	"time"
)

const (
	// forecastStepDays is the assumed spacing between forecast steps. The
	// engine does not infer the sampling cadence of the input series.
	forecastStepDays = 30

	dateOnlyLayout = "2006-01-02"
)

// engineOutput is the common product of the four forecasting methods before
// packaging.
type engineOutput struct {
	values     []float64
	upper      []float64
	lower      []float64
	metrics    map[string]float64
	confidence MethodConfidence
	direction  TrendDirection
	seasonal   bool
}

// Engine runs the forecasting pipeline with a fixed configuration. The zero
// value is not usable; construct with NewEngine. An Engine is stateless
// between calls and safe for concurrent use.
type Engine struct {
	cfg Config
}

// NewEngine returns an engine using cfg, with zero-valued fields replaced by
// defaults.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg.withDefaults()}
}

// Config returns the effective configuration the engine runs with.
func (e *Engine) Config() Config {
	return e.cfg
}

// Analyze is the primary entry point: it validates and prepares the raw
// table, characterizes the resulting series, selects a method, and runs it.
// A confidenceLevel of 0 means the default of 0.95. The horizon is the
// requested periods clamped to the configured maximum.
//
// Analyze fails with a ValidationError before any numeric work when the
// input is unusable, or with a ForecastError if a method produces
// non-finite output. Calling it twice with identical arguments produces an
// identical Result.
func (e *Engine) Analyze(table Table, targetColumn, dateColumn string, periods int, confidenceLevel float64) (*Result, error) {
	if periods <= 0 {
		return nil, newValidationError(ErrInsufficientData, "",
			"forecast periods must be positive, got %d", periods)
	}
	series, err := Prepare(table, targetColumn, dateColumn, e.cfg)
	if err != nil {
		return nil, err
	}
	return e.Forecast(series, periods, confidenceLevel)
}

// Forecast characterizes an already prepared series, selects a method, and
// runs it. Useful when the caller holds clean observations and does not go
// through tabular preparation.
func (e *Engine) Forecast(series Series, periods int, confidenceLevel float64) (*Result, error) {
	chars := Characterize(series)
	return e.ForecastWith(SelectMethod(chars), series, periods, confidenceLevel)
}

// ForecastWith runs one specific method over a prepared series, bypassing
// selection. The method set is closed; an unknown method is a ForecastError.
func (e *Engine) ForecastWith(method Method, series Series, periods int, confidenceLevel float64) (*Result, error) {
	if periods <= 0 {
		return nil, newValidationError(ErrInsufficientData, "",
			"forecast periods must be positive, got %d", periods)
	}
	if series.Len() == 0 {
		return nil, newValidationError(ErrInsufficientData, "", "series is empty")
	}
	if confidenceLevel == 0 {
		confidenceLevel = DefaultConfidenceLevel
	}

	horizon := periods
	if horizon > e.cfg.MaxForecastHorizon {
		horizon = e.cfg.MaxForecastHorizon
	}
	z := zScore(confidenceLevel)
	values := series.Values()

	var out engineOutput
	switch method {
	case MethodLinearRegression:
		out = runLinearRegression(values, horizon, z)
	case MethodSimpleExponentialSmoothing:
		out = runSimpleSmoothing(values, horizon, z, e.cfg.Alpha)
	case MethodDoubleExponentialSmoothing:
		out = runDoubleSmoothing(values, horizon, z, e.cfg.Alpha, e.cfg.Beta)
	case MethodSeasonalDecomposition:
		out = runSeasonalDecomposition(values, horizon, z, e.cfg.MaxSeasonLength)
	default:
		return nil, &ForecastError{Method: method, Err: fmt.Errorf("unknown method %q", string(method))}
	}

	if !allFinite(out.values, out.upper, out.lower) {
		return nil, &ForecastError{Method: method, Err: errors.New("non-finite values in forecast output")}
	}

	return packageResult(method, series, out, horizon), nil
}

// packageResult assembles the caller-owned Result from a method's raw
// output plus series metadata.
func packageResult(method Method, series Series, out engineOutput, horizon int) *Result {
	return &Result{
		Method:           method,
		ForecastValues:   out.values,
		ForecastDates:    forecastDates(series.Last().Timestamp, horizon),
		ConfidenceUpper:  out.upper,
		ConfidenceLower:  out.lower,
		AccuracyMetrics:  out.metrics,
		MethodConfidence: out.confidence,
		SeasonalDetected: out.seasonal,
		TrendDirection:   out.direction,
		LastActualValue:  series.Last().Value,
		ForecastHorizon:  horizon,
	}
}

// forecastDates labels each step with a date 30 days per step past the last
// observation.
func forecastDates(last time.Time, horizon int) []string {
	out := make([]string, horizon)
	for h := 1; h <= horizon; h++ {
		out[h-1] = last.AddDate(0, 0, forecastStepDays*h).Format(dateOnlyLayout)
	}
	return out
}
