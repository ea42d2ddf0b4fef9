package forecast

import (
	"time"
)

// monthDate returns the UTC start of the i-th month after January 2024,
// giving tests a stable monthly cadence.
func monthDate(i int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, i, 0)
}

// testTable builds a raw table with a "date" column on a monthly cadence and
// the given values under a "revenue" column.
func testTable(values ...float64) Table {
	rows := make([]Row, len(values))
	for i, v := range values {
		rows[i] = Row{
			"date":    monthDate(i).Format("2006-01-02"),
			"revenue": v,
		}
	}
	return NewTable([]string{"date", "revenue"}, rows)
}

// testSeries builds a prepared series directly from values on the same
// monthly cadence.
func testSeries(values ...float64) Series {
	points := make([]Point, len(values))
	for i, v := range values {
		points[i] = Point{Timestamp: monthDate(i), Value: v}
	}
	return NewSeries(points)
}

// linearValues returns n values following value[i] = slope*i + intercept.
func linearValues(n int, slope, intercept float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = slope*float64(i) + intercept
	}
	return out
}

// constantValues returns n copies of v.
func constantValues(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}
