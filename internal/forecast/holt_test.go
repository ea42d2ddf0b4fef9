package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoubleSmoothingTracksPerfectLine(t *testing.T) {
	// On value[i] = 5i+10 the level/trend fold reproduces the series
	// exactly: level follows the line and trend stays at 5.
	out := runDoubleSmoothing(linearValues(6, 5, 10), 3, 1.96, 0.3, 0.1)

	require.Len(t, out.values, 3)
	assert.InDelta(t, 40, out.values[0], 1e-9)
	assert.InDelta(t, 45, out.values[1], 1e-9)
	assert.InDelta(t, 50, out.values[2], 1e-9)

	assert.InDelta(t, 0, out.metrics["mae"], 1e-9)
	assert.InDelta(t, 0, out.metrics["rmse"], 1e-9)
	assert.InDelta(t, 5, out.metrics["final_trend"], 1e-9)
	assert.Equal(t, 0.3, out.metrics["alpha"])
	assert.Equal(t, 0.1, out.metrics["beta"])
	assert.Equal(t, ConfidenceHigh, out.confidence)
	assert.Equal(t, TrendIncreasing, out.direction)

	for i := range out.values {
		assert.InDelta(t, out.values[i], out.upper[i], 1e-9)
		assert.InDelta(t, out.values[i], out.lower[i], 1e-9)
	}
}

func TestDoubleSmoothingDecreasing(t *testing.T) {
	out := runDoubleSmoothing([]float64{35, 30, 25, 20, 15, 10}, 3, 1.96, 0.3, 0.1)

	assert.InDelta(t, 5, out.values[0], 1e-9)
	assert.InDelta(t, 0, out.values[1], 1e-9)
	assert.InDelta(t, -5, out.values[2], 1e-9)
	assert.InDelta(t, -5, out.metrics["final_trend"], 1e-9)
	assert.Equal(t, TrendDecreasing, out.direction)
	assert.Equal(t, ConfidenceHigh, out.confidence)
}

func TestDoubleSmoothingConstantSeries(t *testing.T) {
	out := runDoubleSmoothing(constantValues(5, 42), 4, 1.96, 0.3, 0.1)

	for i := range out.values {
		assert.InDelta(t, 42, out.values[i], 1e-9)
	}
	assert.Zero(t, out.metrics["final_trend"])
	// A flat trend is graded medium, not high.
	assert.Equal(t, ConfidenceMedium, out.confidence)
	assert.Equal(t, TrendStable, out.direction)
}

func TestDoubleSmoothingSinglePoint(t *testing.T) {
	out := runDoubleSmoothing([]float64{42}, 2, 1.96, 0.3, 0.1)

	assert.InDelta(t, 42, out.values[0], 1e-9)
	assert.InDelta(t, 42, out.values[1], 1e-9)
	assert.Zero(t, out.metrics["final_trend"])
}

func TestDoubleSmoothingInitialTrendFromFirstStep(t *testing.T) {
	// trend starts at value[1]-value[0]; with a large first step and a
	// flat tail the forecast still leans on the damped positive trend.
	out := runDoubleSmoothing([]float64{0, 10, 10, 10}, 1, 1.96, 0.3, 0.1)
	assert.Greater(t, out.metrics["final_trend"], 0.0)
	assert.Equal(t, TrendIncreasing, out.direction)
}
