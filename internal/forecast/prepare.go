package forecast

import (
	"sort"
)

// Prepare validates raw tabular input and produces a clean, time-ordered
// series. Validation fails fast, before any numeric work, in a fixed order:
// empty input, missing columns, too few rows, non-numeric target. On success
// the date column is parsed, rows are sorted ascending by timestamp, rows
// with a missing target or an unparseable date are dropped, and rows sharing
// an exact timestamp are collapsed by averaging. The input table is never
// mutated.
func Prepare(table Table, targetColumn, dateColumn string, cfg Config) (Series, error) {
	cfg = cfg.withDefaults()

	if table.Len() == 0 {
		return Series{}, newValidationError(ErrEmptyInput, "", "cannot forecast an empty table")
	}
	if !table.HasColumn(targetColumn) {
		return Series{}, newValidationError(ErrMissingColumn, targetColumn, "target column absent from input")
	}
	if !table.HasColumn(dateColumn) {
		return Series{}, newValidationError(ErrMissingColumn, dateColumn, "date column absent from input")
	}
	if table.Len() < cfg.MinDataPoints {
		return Series{}, newValidationError(ErrInsufficientData, "",
			"need at least %d rows, got %d", cfg.MinDataPoints, table.Len())
	}
	for i := 0; i < table.Len(); i++ {
		v, ok := table.row(i)[targetColumn]
		if !ok || cellMissing(v) {
			continue
		}
		if _, numeric := cellNumeric(v); !numeric {
			return Series{}, newValidationError(ErrNonNumericTarget, targetColumn,
				"row %d holds %T", i, v)
		}
	}

	points := make([]Point, 0, table.Len())
	dropped := 0
	for i := 0; i < table.Len(); i++ {
		row := table.row(i)
		tv, ok := row[targetColumn]
		if !ok || cellMissing(tv) {
			dropped++
			continue
		}
		value, _ := cellNumeric(tv)
		dv, ok := row[dateColumn]
		if !ok || cellMissing(dv) {
			dropped++
			continue
		}
		ts, ok := cellTimestamp(dv)
		if !ok {
			dropped++
			continue
		}
		points = append(points, Point{Timestamp: ts, Value: value})
	}

	sortPoints(points)
	points = collapseDuplicates(points)

	if len(points) < cfg.MinDataPoints {
		return Series{}, newValidationError(ErrInsufficientData, "",
			"need at least %d usable rows, got %d after dropping missing values",
			cfg.MinDataPoints, len(points))
	}

	return Series{points: points, missingDropped: dropped}, nil
}

// sortPoints orders points ascending by timestamp, preserving input order
// for ties.
func sortPoints(points []Point) {
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Timestamp.Before(points[j].Timestamp)
	})
}

// collapseDuplicates merges runs of identical timestamps into a single point
// holding their mean value, keeping timestamps strictly increasing. Input
// must already be sorted.
func collapseDuplicates(points []Point) []Point {
	if len(points) < 2 {
		return points
	}
	out := points[:0]
	i := 0
	for i < len(points) {
		j := i + 1
		sum := points[i].Value
		for j < len(points) && points[j].Timestamp.Equal(points[i].Timestamp) {
			sum += points[j].Value
			j++
		}
		out = append(out, Point{
			Timestamp: points[i].Timestamp,
			Value:     sum / float64(j-i),
		})
		i = j
	}
	return out
}
