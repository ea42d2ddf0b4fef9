package forecast

// runSimpleSmoothing applies simple exponential smoothing and projects the
// last smoothed value flat across the horizon. The method never reports a
// directional trend.
func runSimpleSmoothing(values []float64, horizon int, z, alpha float64) engineOutput {
	smoothed := smoothSeries(values, alpha)
	last := smoothed[len(smoothed)-1]

	forecasts := make([]float64, horizon)
	for i := range forecasts {
		forecasts[i] = last
	}

	res := residuals(values, smoothed)
	upper, lower := confidenceBounds(forecasts, popStdDev(res), z)

	return engineOutput{
		values: forecasts,
		upper:  upper,
		lower:  lower,
		metrics: map[string]float64{
			"mae":   meanAbsoluteError(values, smoothed),
			"rmse":  rootMeanSquaredError(values, smoothed),
			"alpha": alpha,
		},
		confidence: ConfidenceMedium,
		direction:  TrendStable,
	}
}

// smoothSeries folds the exponential smoothing recurrence over the values:
// smoothed[0] = values[0], smoothed[i] = alpha*values[i] +
// (1-alpha)*smoothed[i-1].
func smoothSeries(values []float64, alpha float64) []float64 {
	smoothed := make([]float64, len(values))
	smoothed[0] = values[0]
	for i := 1; i < len(values); i++ {
		smoothed[i] = alpha*values[i] + (1-alpha)*smoothed[i-1]
	}
	return smoothed
}
