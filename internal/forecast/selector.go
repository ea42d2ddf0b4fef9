package forecast

const (
	// shortSeriesLimit routes series shorter than this straight to linear
	// regression, which degrades most gracefully on tiny inputs.
	shortSeriesLimit = 6

	// selectorVolatilityLimit is the volatility ceiling for preferring
	// double exponential smoothing on trending data. It is an absolute
	// threshold, not normalized by series scale.
	selectorVolatilityLimit = 50
)

// SelectMethod maps series characteristics to a forecasting method. Rules
// are evaluated in priority order and the first match wins:
//
//  1. very short series use linear regression
//  2. trending, low-volatility series use double exponential smoothing
//  3. seasonal series use seasonal decomposition
//  4. everything else uses simple exponential smoothing
func SelectMethod(chars Characteristics) Method {
	switch {
	case chars.Length < shortSeriesLimit:
		return MethodLinearRegression
	case chars.HasTrend && chars.Volatility < selectorVolatilityLimit:
		return MethodDoubleExponentialSmoothing
	case chars.HasSeasonality:
		return MethodSeasonalDecomposition
	default:
		return MethodSimpleExponentialSmoothing
	}
}
