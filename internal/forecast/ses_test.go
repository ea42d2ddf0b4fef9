package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSmoothSeriesRecurrence(t *testing.T) {
	// s0=10, s1=0.3*20+0.7*10=13, s2=0.3*30+0.7*13=18.1
	smoothed := smoothSeries([]float64{10, 20, 30}, 0.3)
	require.Len(t, smoothed, 3)
	assert.InDelta(t, 10, smoothed[0], 1e-9)
	assert.InDelta(t, 13, smoothed[1], 1e-9)
	assert.InDelta(t, 18.1, smoothed[2], 1e-9)
}

func TestSimpleSmoothingFlatForecast(t *testing.T) {
	out := runSimpleSmoothing([]float64{10, 20, 30}, 4, 1.96, 0.3)

	require.Len(t, out.values, 4)
	for _, v := range out.values {
		assert.InDelta(t, 18.1, v, 1e-9)
	}

	assert.InDelta(t, 6.3, out.metrics["mae"], 1e-9)
	assert.InDelta(t, 7.97099, out.metrics["rmse"], 1e-4)
	assert.Equal(t, 0.3, out.metrics["alpha"])
	assert.Equal(t, ConfidenceMedium, out.confidence)
	assert.Equal(t, TrendStable, out.direction)
	assert.False(t, out.seasonal)

	// Residuals {0, 7, 11.9} have population std sqrt(71.54/3).
	margin := 1.96 * 4.88330
	for i := range out.values {
		assert.InDelta(t, out.values[i]+margin, out.upper[i], 1e-3)
		assert.InDelta(t, out.values[i]-margin, out.lower[i], 1e-3)
	}
}

func TestSimpleSmoothingConstantSeries(t *testing.T) {
	out := runSimpleSmoothing(constantValues(10, 42), 3, 1.96, 0.3)

	for i := range out.values {
		assert.InDelta(t, 42, out.values[i], 1e-9)
		assert.InDelta(t, 42, out.upper[i], 1e-9)
		assert.InDelta(t, 42, out.lower[i], 1e-9)
	}
	assert.Zero(t, out.metrics["mae"])
	assert.Zero(t, out.metrics["rmse"])
}

func TestSimpleSmoothingAlphaWeighting(t *testing.T) {
	// A higher alpha tracks the latest observation more closely.
	values := []float64{10, 10, 10, 10, 100}
	slow := runSimpleSmoothing(values, 1, 1.96, 0.1)
	fast := runSimpleSmoothing(values, 1, 1.96, 0.9)

	assert.Greater(t, fast.values[0], slow.values[0])
	assert.Equal(t, 0.1, slow.metrics["alpha"])
	assert.Equal(t, 0.9, fast.metrics["alpha"])
}
