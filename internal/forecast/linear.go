package forecast

// Thresholds grading the quality of a least-squares fit.
const (
	rSquaredHigh   = 0.7
	rSquaredMedium = 0.4
)

// runLinearRegression fits value = slope*x + intercept over x = 0..n-1 and
// extends the line for each forecast step. Confidence bounds come from the
// spread of the in-sample residuals.
func runLinearRegression(values []float64, horizon int, z float64) engineOutput {
	n := len(values)
	slope, intercept := olsFit(values)

	fitted := make([]float64, n)
	for i := range fitted {
		fitted[i] = slope*float64(i) + intercept
	}

	forecasts := make([]float64, horizon)
	for h := 1; h <= horizon; h++ {
		forecasts[h-1] = slope*float64(n-1+h) + intercept
	}

	res := residuals(values, fitted)
	upper, lower := confidenceBounds(forecasts, popStdDev(res), z)

	r2 := rSquared(values, fitted)
	confidence := ConfidenceLow
	switch {
	case r2 > rSquaredHigh:
		confidence = ConfidenceHigh
	case r2 > rSquaredMedium:
		confidence = ConfidenceMedium
	}

	direction := TrendStable
	if slope > 0 {
		direction = TrendIncreasing
	} else if slope < 0 {
		direction = TrendDecreasing
	}

	return engineOutput{
		values: forecasts,
		upper:  upper,
		lower:  lower,
		metrics: map[string]float64{
			"r_squared": r2,
			"mae":       meanAbsoluteError(values, fitted),
			"rmse":      rootMeanSquaredError(values, fitted),
		},
		confidence: confidence,
		direction:  direction,
	}
}
