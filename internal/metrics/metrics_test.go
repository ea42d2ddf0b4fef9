package metrics

import (
	"testing"
	"time"

	"github.com/datalyr/foresight-go/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCollector(t *testing.T) *MetricsCollector {
	t.Helper()
	logger := logging.NewStandardLogger("debug", "development")
	collector := NewMetricsCollector(logger, "test-service")
	require.NotNil(t, collector)
	return collector
}

func TestNewMetricsCollector(t *testing.T) {
	logger := logging.NewStandardLogger("info", "development")
	assert.NotNil(t, NewMetricsCollector(logger, "foresight"))
}

// The recorders are logging sinks; these tests pin down that every shape of
// input, including nil tag maps and zero values, is accepted without panic.

func TestRecordCounterAndGauge(t *testing.T) {
	collector := newTestCollector(t)

	collector.RecordCounter("forecasts_requested", 1.0, map[string]string{"method": "holt"})
	collector.RecordCounter("forecasts_requested", 2.0, nil)

	collector.RecordGauge("cache_entries", 10.5, "entries", map[string]string{"tier": "lru"})
	collector.RecordGauge("cache_entries", 0.0, "entries", nil)
	collector.RecordGauge("queue_delta", -25.5, "entries", map[string]string{"type": "delta"})
}

func TestRecordTimingAndHistogram(t *testing.T) {
	collector := newTestCollector(t)

	collector.RecordTiming("prepare_duration", 100*time.Millisecond, map[string]string{"operation": "prepare"})
	collector.RecordTiming("prepare_duration", 0, nil)

	collector.RecordHistogram("request_size", 1024, "bytes", map[string]string{"bucket": "api"})
	collector.RecordHistogram("response_time", 0.0, "ms", nil)
}

func TestRecordBusinessMetric(t *testing.T) {
	collector := newTestCollector(t)

	collector.RecordBusinessMetric("forecast_accuracy", 98.1, "percent",
		map[string]string{"method": "linear_regression"},
		map[string]interface{}{"mae": 2.15, "rmse": 2.87, "data_points": 36})

	collector.RecordBusinessMetric("simple_metric", 42.0, "units", nil, nil)
}

func TestRecordAPIRequestMetrics(t *testing.T) {
	collector := newTestCollector(t)

	collector.RecordAPIRequestMetrics("GET", "/api/v1/datasets", 200, 150*time.Millisecond, "user123")
	collector.RecordAPIRequestMetrics("POST", "/api/v1/forecasts/analyze", 201, 150*time.Millisecond, "")
}

func TestRecordDatabaseMetrics(t *testing.T) {
	collector := newTestCollector(t)

	collector.RecordDatabaseMetrics("SELECT", "datasets", 50*time.Millisecond, 10, true)
	collector.RecordDatabaseMetrics("INSERT", "forecasts", 50*time.Millisecond, -1, false)
}

func TestRecordCacheMetrics(t *testing.T) {
	collector := newTestCollector(t)

	collector.RecordCacheMetrics("GET", "foresight:forecast:abc123", true, 5*time.Millisecond)
	collector.RecordCacheMetrics("GET", "foresight:forecast:def456", false, 5*time.Millisecond)
}

func TestRecordForecastMetrics(t *testing.T) {
	collector := newTestCollector(t)

	collector.RecordForecastMetrics("holt", "dataset-1", 12, 200*time.Millisecond, true)
	collector.RecordForecastMetrics("seasonal_decomposition", "", 0, 200*time.Millisecond, false)
}

func TestRecordEvaluationMetrics(t *testing.T) {
	collector := newTestCollector(t)

	collector.RecordEvaluationMetrics("linear_regression", 6, 1.5, true)
	collector.RecordEvaluationMetrics("simple_exponential_smoothing", 6, 3.2, false)
}

func TestTagValuesNeedNoEscaping(t *testing.T) {
	collector := newTestCollector(t)

	collector.RecordCounter("special_chars", 1.0, map[string]string{
		"column":  "revenue ($)",
		"dataset": "sales-2024/q1",
		"type":    "monthly_series",
	})
	collector.RecordCounter("large_counter", 1000000.0, map[string]string{"scale": "large"})
}
