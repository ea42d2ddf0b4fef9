package forecast

// runSeasonalDecomposition splits the series into a repeating seasonal
// pattern and a linear trend. The pattern holds, for each position in the
// cycle, the mean deviation from the overall mean; the trend is a least
// squares line fitted to the deseasonalized values. Forecasts recombine the
// extended trend with the tiled pattern.
func runSeasonalDecomposition(values []float64, horizon int, z float64, maxSeasonLength int) engineOutput {
	n := len(values)
	seasonLength := n / 2
	if seasonLength > maxSeasonLength {
		seasonLength = maxSeasonLength
	}
	if seasonLength < 1 {
		seasonLength = 1
	}

	overall := mean(values)
	pattern := make([]float64, seasonLength)
	counts := make([]int, seasonLength)
	for i, v := range values {
		pattern[i%seasonLength] += v
		counts[i%seasonLength]++
	}
	for j := range pattern {
		pattern[j] = pattern[j]/float64(counts[j]) - overall
	}

	deseasonalized := make([]float64, n)
	for i, v := range values {
		deseasonalized[i] = v - pattern[i%seasonLength]
	}
	slope, intercept := olsFit(deseasonalized)

	forecasts := make([]float64, horizon)
	for h := 1; h <= horizon; h++ {
		trendForecast := slope*float64(n-1+h) + intercept
		forecasts[h-1] = trendForecast + pattern[(n-1+h)%seasonLength]
	}

	// Reconstruction = fitted trend + tiled pattern; residuals measure how
	// much of the series the two components fail to explain.
	reconstructed := make([]float64, n)
	for i := range reconstructed {
		reconstructed[i] = slope*float64(i) + intercept + pattern[i%seasonLength]
	}
	res := residuals(values, reconstructed)
	upper, lower := confidenceBounds(forecasts, popStdDev(res), z)

	return engineOutput{
		values: forecasts,
		upper:  upper,
		lower:  lower,
		metrics: map[string]float64{
			"mae":               meanAbsoluteError(values, reconstructed),
			"rmse":              rootMeanSquaredError(values, reconstructed),
			"seasonal_strength": popStdDev(pattern),
		},
		confidence: ConfidenceHigh,
		direction:  TrendSeasonal,
		seasonal:   true,
	}
}
