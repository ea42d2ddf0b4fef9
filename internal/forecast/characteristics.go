package forecast

import "math"

const (
	// trendCorrelationThreshold is the absolute index/value correlation
	// above which a series is flagged as trending.
	trendCorrelationThreshold = 0.3

	// seasonalityMinLength is the series length at which seasonality is
	// assumed. This is a length-only heuristic; it does not test for
	// actual periodic structure.
	seasonalityMinLength = 12

	// iqrOutlierFactor scales the interquartile range when classifying
	// outliers.
	iqrOutlierFactor = 1.5
)

// Characterize derives the statistical shape of a prepared series: length,
// trend and seasonality flags, volatility, the count of values dropped
// during preparation, and the IQR outlier count.
func Characterize(series Series) Characteristics {
	values := series.Values()

	q1 := quantile(values, 0.25)
	q3 := quantile(values, 0.75)
	iqr := q3 - q1
	lowerBound := q1 - iqrOutlierFactor*iqr
	upperBound := q3 + iqrOutlierFactor*iqr
	outliers := 0
	for _, v := range values {
		if v < lowerBound || v > upperBound {
			outliers++
		}
	}

	return Characteristics{
		Length:         series.Len(),
		HasTrend:       math.Abs(indexCorrelation(values)) > trendCorrelationThreshold,
		HasSeasonality: series.Len() >= seasonalityMinLength,
		Volatility:     sampleStdDev(values),
		MissingValues:  series.MissingDropped(),
		Outliers:       outliers,
	}
}
