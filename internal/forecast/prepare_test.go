package forecast

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepareValidation(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name    string
		table   Table
		target  string
		date    string
		wantErr error
	}{
		{
			name:    "empty table",
			table:   NewTable([]string{"date", "revenue"}, nil),
			target:  "revenue",
			date:    "date",
			wantErr: ErrEmptyInput,
		},
		{
			name: "missing target column",
			table: NewTable([]string{"date"}, []Row{
				{"date": "2024-01-01"},
				{"date": "2024-02-01"},
				{"date": "2024-03-01"},
			}),
			target:  "revenue",
			date:    "date",
			wantErr: ErrMissingColumn,
		},
		{
			name: "missing date column",
			table: NewTable([]string{"revenue"}, []Row{
				{"revenue": 1.0},
				{"revenue": 2.0},
				{"revenue": 3.0},
			}),
			target:  "revenue",
			date:    "ts",
			wantErr: ErrMissingColumn,
		},
		{
			name:    "too few rows",
			table:   testTable(1, 2),
			target:  "revenue",
			date:    "date",
			wantErr: ErrInsufficientData,
		},
		{
			name: "text target column",
			table: NewTable([]string{"date", "revenue"}, []Row{
				{"date": "2024-01-01", "revenue": "high"},
				{"date": "2024-02-01", "revenue": "low"},
				{"date": "2024-03-01", "revenue": "high"},
			}),
			target:  "revenue",
			date:    "date",
			wantErr: ErrNonNumericTarget,
		},
		{
			name: "numeric strings are still text",
			table: NewTable([]string{"date", "revenue"}, []Row{
				{"date": "2024-01-01", "revenue": "100"},
				{"date": "2024-02-01", "revenue": "110"},
				{"date": "2024-03-01", "revenue": "120"},
			}),
			target:  "revenue",
			date:    "date",
			wantErr: ErrNonNumericTarget,
		},
		{
			name: "row count checked before target type",
			table: NewTable([]string{"date", "revenue"}, []Row{
				{"date": "2024-01-01", "revenue": "not a number"},
				{"date": "2024-02-01", "revenue": "still not"},
			}),
			target:  "revenue",
			date:    "date",
			wantErr: ErrInsufficientData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Prepare(tt.table, tt.target, tt.date, cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, IsValidationError(err))
		})
	}
}

func TestPrepareSortsByTimestamp(t *testing.T) {
	table := NewTable([]string{"date", "revenue"}, []Row{
		{"date": "2024-03-01", "revenue": 30.0},
		{"date": "2024-01-01", "revenue": 10.0},
		{"date": "2024-02-01", "revenue": 20.0},
	})

	series, err := Prepare(table, "revenue", "date", DefaultConfig())
	require.NoError(t, err)
	require.Equal(t, 3, series.Len())

	assert.Equal(t, []float64{10, 20, 30}, series.Values())
	ts := series.Timestamps()
	for i := 1; i < len(ts); i++ {
		assert.True(t, ts[i].After(ts[i-1]), "timestamps must be strictly increasing")
	}
}

func TestPrepareDropsMissingTargets(t *testing.T) {
	table := NewTable([]string{"date", "revenue"}, []Row{
		{"date": "2024-01-01", "revenue": 10.0},
		{"date": "2024-02-01", "revenue": nil},
		{"date": "2024-03-01", "revenue": 30.0},
		{"date": "2024-04-01", "revenue": math.NaN()},
		{"date": "2024-05-01", "revenue": 50.0},
	})

	series, err := Prepare(table, "revenue", "date", DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 3, series.Len())
	assert.Equal(t, 2, series.MissingDropped())
	assert.Equal(t, []float64{10, 30, 50}, series.Values())
}

func TestPrepareInsufficientAfterDrops(t *testing.T) {
	table := NewTable([]string{"date", "revenue"}, []Row{
		{"date": "2024-01-01", "revenue": 10.0},
		{"date": "2024-02-01", "revenue": nil},
		{"date": "2024-03-01", "revenue": 30.0},
	})

	_, err := Prepare(table, "revenue", "date", DefaultConfig())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestPrepareCollapsesDuplicateTimestamps(t *testing.T) {
	table := NewTable([]string{"date", "revenue"}, []Row{
		{"date": "2024-01-01", "revenue": 10.0},
		{"date": "2024-02-01", "revenue": 10.0},
		{"date": "2024-02-01", "revenue": 20.0},
		{"date": "2024-03-01", "revenue": 30.0},
	})

	series, err := Prepare(table, "revenue", "date", DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 3, series.Len())
	assert.Equal(t, []float64{10, 15, 30}, series.Values())
}

func TestPrepareDateLayouts(t *testing.T) {
	table := NewTable([]string{"date", "revenue"}, []Row{
		{"date": "2024-01-02", "revenue": 1.0},
		{"date": "2024/02/02", "revenue": 2.0},
		{"date": "2024-03-02T10:30:00", "revenue": 3.0},
		{"date": "2024-04-02 08:00:00", "revenue": 4.0},
		{"date": "02-May-2024", "revenue": 5.0},
	})

	series, err := Prepare(table, "revenue", "date", DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 5, series.Len())
	assert.Equal(t, []float64{1, 2, 3, 4, 5}, series.Values())
}

func TestPrepareDropsUnparseableDates(t *testing.T) {
	table := NewTable([]string{"date", "revenue"}, []Row{
		{"date": "2024-01-01", "revenue": 1.0},
		{"date": "not a date", "revenue": 2.0},
		{"date": "2024-03-01", "revenue": 3.0},
		{"date": "2024-04-01", "revenue": 4.0},
	})

	series, err := Prepare(table, "revenue", "date", DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 3, series.Len())
	assert.Equal(t, []float64{1, 3, 4}, series.Values())
}

func TestPrepareAcceptsMixedNumericTypes(t *testing.T) {
	table := NewTable([]string{"date", "revenue"}, []Row{
		{"date": "2024-01-01", "revenue": 10},
		{"date": "2024-02-01", "revenue": int64(20)},
		{"date": "2024-03-01", "revenue": json.Number("30.5")},
		{"date": "2024-04-01", "revenue": float32(40)},
	})

	series, err := Prepare(table, "revenue", "date", DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 20, 30.5, 40}, series.Values())
}

func TestPrepareDoesNotMutateInput(t *testing.T) {
	rows := []Row{
		{"date": "2024-03-01", "revenue": 30.0},
		{"date": "2024-01-01", "revenue": 10.0},
		{"date": "2024-02-01", "revenue": 20.0},
	}
	table := NewTable([]string{"date", "revenue"}, rows)

	_, err := Prepare(table, "revenue", "date", DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, 30.0, rows[0]["revenue"], "input row order must be untouched")
	assert.Equal(t, "2024-03-01", rows[0]["date"])
	assert.Equal(t, 10.0, rows[1]["revenue"])
}

func TestPrepareTimeTimeDates(t *testing.T) {
	table := NewTable([]string{"date", "revenue"}, []Row{
		{"date": monthDate(2), "revenue": 3.0},
		{"date": monthDate(0), "revenue": 1.0},
		{"date": monthDate(1), "revenue": 2.0},
	})

	series, err := Prepare(table, "revenue", "date", DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, series.Values())
	assert.Equal(t, monthDate(0), series.At(0).Timestamp)
}

func TestPrepareCustomMinDataPoints(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinDataPoints = 5

	_, err := Prepare(testTable(1, 2, 3, 4), "revenue", "date", cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientData)

	series, err := Prepare(testTable(1, 2, 3, 4, 5), "revenue", "date", cfg)
	require.NoError(t, err)
	assert.Equal(t, 5, series.Len())
}
