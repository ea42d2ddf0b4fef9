package forecast

import "math"

// holtTrendThreshold is the absolute final trend above which the method
// grades its own fit as high confidence.
const holtTrendThreshold = 0.1

// runDoubleSmoothing applies Holt's linear trend method: a fold over the
// series maintaining a smoothed level and trend, then a straight-line
// projection level + h*trend for each forecast step.
func runDoubleSmoothing(values []float64, horizon int, z, alpha, beta float64) engineOutput {
	n := len(values)
	level := values[0]
	trend := 0.0
	if n > 1 {
		trend = values[1] - values[0]
	}

	smoothed := make([]float64, n)
	smoothed[0] = values[0]
	for i := 1; i < n; i++ {
		prevLevel := level
		level = alpha*values[i] + (1-alpha)*(level+trend)
		trend = beta*(level-prevLevel) + (1-beta)*trend
		smoothed[i] = level
	}

	forecasts := make([]float64, horizon)
	for h := 1; h <= horizon; h++ {
		forecasts[h-1] = level + float64(h)*trend
	}

	res := residuals(values, smoothed)
	upper, lower := confidenceBounds(forecasts, popStdDev(res), z)

	confidence := ConfidenceMedium
	if math.Abs(trend) > holtTrendThreshold {
		confidence = ConfidenceHigh
	}

	direction := TrendStable
	if trend > 0 {
		direction = TrendIncreasing
	} else if trend < 0 {
		direction = TrendDecreasing
	}

	return engineOutput{
		values: forecasts,
		upper:  upper,
		lower:  lower,
		metrics: map[string]float64{
			"mae":         meanAbsoluteError(values, smoothed),
			"rmse":        rootMeanSquaredError(values, smoothed),
			"alpha":       alpha,
			"beta":        beta,
			"final_trend": trend,
		},
		confidence: confidence,
		direction:  direction,
	}
}
