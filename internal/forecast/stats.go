package forecast

import (
	"math"
	"sort"
)

// zScore maps a confidence level to its interval z-score. The table is
// deliberately two-valued: 0.95 maps to 1.96 and every other level maps to
// 2.576, matching the documented engine behavior.
func zScore(confidenceLevel float64) float64 {
	if confidenceLevel == 0.95 {
		return 1.96
	}
	return 2.576
}

// mean returns the arithmetic mean, or 0 for an empty slice.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStdDev returns the sample standard deviation (n-1 denominator), or 0
// when fewer than two values are present.
func sampleStdDev(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	m := mean(values)
	sum := 0.0
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(n-1))
}

// popStdDev returns the population standard deviation (n denominator), used
// for residual spread when sizing confidence intervals.
func popStdDev(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	m := mean(values)
	sum := 0.0
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(n))
}

// indexCorrelation returns the Pearson correlation between the position
// index 0..n-1 and the values, or 0 when either side has zero variance.
func indexCorrelation(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	meanX := float64(n-1) / 2
	meanY := mean(values)
	var cov, varX, varY float64
	for i, v := range values {
		dx := float64(i) - meanX
		dy := v - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0
	}
	return cov / math.Sqrt(varX*varY)
}

// quantile returns the q-quantile (0 <= q <= 1) of values using linear
// interpolation between order statistics.
func quantile(values []float64, q float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)
	if n == 1 {
		return sorted[0]
	}
	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// olsFit fits value = slope*x + intercept over x = 0..n-1 by ordinary least
// squares. A single-point series yields a flat line at that point.
func olsFit(values []float64) (slope, intercept float64) {
	n := len(values)
	if n == 0 {
		return 0, 0
	}
	if n == 1 {
		return 0, values[0]
	}
	var sumX, sumY, sumXY, sumXX float64
	for i, v := range values {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
	}
	fn := float64(n)
	denom := fn*sumXX - sumX*sumX
	if denom == 0 {
		return 0, mean(values)
	}
	slope = (fn*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / fn
	return slope, intercept
}

// residuals returns actual[i] - fitted[i] for the overlapping range.
func residuals(actual, fitted []float64) []float64 {
	n := len(actual)
	if len(fitted) < n {
		n = len(fitted)
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = actual[i] - fitted[i]
	}
	return out
}

// meanAbsoluteError returns the MAE between actuals and fitted values.
func meanAbsoluteError(actual, fitted []float64) float64 {
	n := len(actual)
	if len(fitted) < n {
		n = len(fitted)
	}
	if n == 0 {
		return 0
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += math.Abs(actual[i] - fitted[i])
	}
	return sum / float64(n)
}

// rootMeanSquaredError returns the RMSE between actuals and fitted values.
func rootMeanSquaredError(actual, fitted []float64) float64 {
	n := len(actual)
	if len(fitted) < n {
		n = len(fitted)
	}
	if n == 0 {
		return 0
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		d := actual[i] - fitted[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(n))
}

// rSquared returns the coefficient of determination for fitted against
// actual, with 0 substituted when total variance is zero.
func rSquared(actual, fitted []float64) float64 {
	n := len(actual)
	if len(fitted) < n {
		n = len(fitted)
	}
	if n == 0 {
		return 0
	}
	m := mean(actual[:n])
	var ssRes, ssTot float64
	for i := 0; i < n; i++ {
		r := actual[i] - fitted[i]
		ssRes += r * r
		t := actual[i] - m
		ssTot += t * t
	}
	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}

// confidenceBounds builds the upper and lower bands around point forecasts
// using margin = z * residual standard deviation.
func confidenceBounds(forecasts []float64, residualStd, z float64) (upper, lower []float64) {
	margin := z * residualStd
	upper = make([]float64, len(forecasts))
	lower = make([]float64, len(forecasts))
	for i, v := range forecasts {
		upper[i] = v + margin
		lower[i] = v - margin
	}
	return upper, lower
}

// allFinite reports whether every value in each slice is finite.
func allFinite(slices ...[]float64) bool {
	for _, s := range slices {
		for _, v := range s {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}
