package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewBusinessTracer(t *testing.T) {
	bt := NewBusinessTracer()
	require.NotNil(t, bt)
	require.NotNil(t, bt.tracer)
}

func TestBusinessTracer_TraceForecastAnalysis(t *testing.T) {
	bt := NewBusinessTracer()
	require.NotNil(t, bt)

	ctx := context.Background()

	_, span := bt.TraceForecastAnalysis(ctx, "ds-42", "revenue")
	require.NotNil(t, span)

	// End the span to avoid resource leaks
	span.End()
}

func TestBusinessTracer_RecordForecastOutcome(t *testing.T) {
	bt := NewBusinessTracer()
	require.NotNil(t, bt)

	ctx := context.Background()
	_, span := bt.TraceForecastAnalysis(ctx, "ds-42", "revenue")
	require.NotNil(t, span)

	outcome := ForecastOutcome{
		Method:           "double_exponential_smoothing",
		Horizon:          6,
		TrendDirection:   "increasing",
		MethodConfidence: "high",
		SeasonalDetected: false,
		CacheHit:         true,
	}

	// This should not panic
	bt.RecordForecastOutcome(span, outcome)
	span.End()
}

func TestBusinessTracer_TraceMethodSelection(t *testing.T) {
	bt := NewBusinessTracer()
	require.NotNil(t, bt)

	ctx := context.Background()

	_, span := bt.TraceMethodSelection(ctx, 24)
	require.NotNil(t, span)

	span.End()
}

func TestBusinessTracer_RecordSeriesProfile(t *testing.T) {
	bt := NewBusinessTracer()
	require.NotNil(t, bt)

	ctx := context.Background()
	_, span := bt.TraceMethodSelection(ctx, 24)
	require.NotNil(t, span)

	profile := SeriesProfile{
		Length:         24,
		HasTrend:       true,
		HasSeasonality: true,
		Volatility:     18.5,
		MissingValues:  2,
		Outliers:       1,
	}

	// This should not panic
	bt.RecordSeriesProfile(span, profile)
	span.End()
}

func TestBusinessTracer_TraceEvaluation(t *testing.T) {
	bt := NewBusinessTracer()
	require.NotNil(t, bt)

	ctx := context.Background()

	_, span := bt.TraceEvaluation(ctx, 6, 3)
	require.NotNil(t, span)

	span.End()
}

func TestBusinessTracer_RecordEvaluationResult(t *testing.T) {
	bt := NewBusinessTracer()
	require.NotNil(t, bt)

	ctx := context.Background()
	_, span := bt.TraceEvaluation(ctx, 6, 3)
	require.NotNil(t, span)

	result := EvaluationOutcome{
		BestMethod:    "seasonal_decomposition",
		MethodsScored: 4,
		MethodsFailed: 0,
		Duration:      150 * time.Millisecond,
	}

	// This should not panic
	bt.RecordEvaluationResult(span, result)
	span.End()
}

func TestBusinessTracer_TraceDatasetIngest(t *testing.T) {
	bt := NewBusinessTracer()
	require.NotNil(t, bt)

	ctx := context.Background()

	_, span := bt.TraceDatasetIngest(ctx, "csv", "monthly-revenue")
	require.NotNil(t, span)

	span.End()
}

func TestBusinessTracer_RecordIngestMetrics(t *testing.T) {
	bt := NewBusinessTracer()
	require.NotNil(t, bt)

	ctx := context.Background()
	_, span := bt.TraceDatasetIngest(ctx, "csv", "monthly-revenue")
	require.NotNil(t, span)

	metrics := IngestMetrics{
		RowCount:    120,
		DroppedRows: 3,
		ParseTime:   40 * time.Millisecond,
	}

	// This should not panic
	bt.RecordIngestMetrics(span, metrics)
	span.End()
}

func TestBusinessTracer_TraceNotification(t *testing.T) {
	bt := NewBusinessTracer()
	require.NotNil(t, bt)

	ctx := context.Background()

	_, span := bt.TraceNotification(ctx, "trend_alert", "telegram")
	require.NotNil(t, span)

	span.End()
}

func TestBusinessTracer_RecordNotificationResult(t *testing.T) {
	bt := NewBusinessTracer()
	require.NotNil(t, bt)

	ctx := context.Background()

	_, span := bt.TraceNotification(ctx, "trend_alert", "telegram")
	require.NotNil(t, span)
	bt.RecordNotificationResult(span, true, 1, nil)
	span.End()

	_, span = bt.TraceNotification(ctx, "trend_alert", "telegram")
	require.NotNil(t, span)
	bt.RecordNotificationResult(span, false, 0, errors.New("chat not found"))
	span.End()
}
