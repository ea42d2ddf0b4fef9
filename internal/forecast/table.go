package forecast

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"time"
)

// Row is one record of tabular input, keyed by column name. Cell values may
// be any Go numeric type, json.Number, time.Time, string (dates), or nil.
type Row map[string]interface{}

// Table is the raw tabular input to Prepare: a column list plus rows. The
// engine never mutates a Table it is given.
type Table struct {
	columns []string
	rows    []Row
}

// NewTable builds a table with an explicit column list, as produced by CSV
// ingestion where the header defines the schema.
func NewTable(columns []string, rows []Row) Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return Table{columns: cols, rows: rows}
}

// NewTableFromRows derives the column list from the union of row keys,
// sorted for determinism. Convenient for JSON payloads of row objects.
func NewTableFromRows(rows []Row) Table {
	seen := make(map[string]struct{})
	for _, r := range rows {
		for k := range r {
			seen[k] = struct{}{}
		}
	}
	cols := make([]string, 0, len(seen))
	for k := range seen {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return Table{columns: cols, rows: rows}
}

// Len returns the number of rows.
func (t Table) Len() int {
	return len(t.rows)
}

// Columns returns a copy of the column names.
func (t Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// HasColumn reports whether the table schema contains the named column.
func (t Table) HasColumn(name string) bool {
	for _, c := range t.columns {
		if c == name {
			return true
		}
	}
	return false
}

// row returns the i-th row without copying; callers must not mutate it.
func (t Table) row(i int) Row {
	return t.rows[i]
}

// cellMissing reports whether a cell carries no usable value: absent key,
// nil, or NaN.
func cellMissing(v interface{}) bool {
	if v == nil {
		return true
	}
	if f, ok := v.(float64); ok && math.IsNaN(f) {
		return true
	}
	if f, ok := v.(float32); ok && math.IsNaN(float64(f)) {
		return true
	}
	return false
}

// cellNumeric converts a cell to float64. Strings are deliberately not
// coerced: a column of numeric-looking strings is still a text column.
func cellNumeric(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// dateLayouts are the string layouts tried in order when a date cell is not
// already a time.Time.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"02-Jan-2006",
	"2006-01",
	"2006",
}

// ParseDate parses a date string against the layouts accepted in table
// cells, so ingest paths and inline tables agree on what counts as a
// valid date.
func ParseDate(s string) (time.Time, bool) {
	return cellTimestamp(s)
}

// cellTimestamp converts a cell to a UTC timestamp. Strings are tried
// against dateLayouts in order; numeric cells are read as Unix seconds.
func cellTimestamp(v interface{}) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x.UTC(), true
	case string:
		for _, layout := range dateLayouts {
			if ts, err := time.Parse(layout, x); err == nil {
				return ts.UTC(), true
			}
		}
		return time.Time{}, false
	case json.Number:
		if sec, err := strconv.ParseInt(x.String(), 10, 64); err == nil {
			return time.Unix(sec, 0).UTC(), true
		}
		return time.Time{}, false
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return time.Time{}, false
		}
		return time.Unix(int64(x), 0).UTC(), true
	case int64:
		return time.Unix(x, 0).UTC(), true
	case int:
		return time.Unix(int64(x), 0).UTC(), true
	default:
		return time.Time{}, false
	}
}
