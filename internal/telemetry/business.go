package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// BusinessTracer provides utilities for tracing business logic operations.
// It allows detailed tracking of domain-specific activities like forecast
// analysis, method evaluation, and dataset ingestion.
type BusinessTracer struct {
	tracer trace.Tracer
}

// NewBusinessTracer creates a new instance of BusinessTracer.
//
// Returns:
//   - A pointer to an initialized BusinessTracer.
func NewBusinessTracer() *BusinessTracer {
	return &BusinessTracer{tracer: GetBusinessTracer()}
}

// TraceForecastAnalysis starts a span for tracing a full forecast run.
//
// Parameters:
//   - ctx: The context to attach the span to.
//   - datasetID: The dataset being analyzed (empty for inline tables).
//   - targetColumn: The column being forecast.
//
// Returns:
//   - A context containing the new span.
//   - The created span.
func (bt *BusinessTracer) TraceForecastAnalysis(ctx context.Context, datasetID string, targetColumn string) (context.Context, trace.Span) {
	return bt.tracer.Start(ctx, "forecast_analysis", trace.WithAttributes(
		attribute.String("dataset_id", datasetID),
		attribute.String("target_column", targetColumn),
	))
}

// RecordForecastOutcome adds the results of a forecast run to an existing span.
//
// Parameters:
//   - span: The span to update.
//   - outcome: The forecast outcome to record.
func (bt *BusinessTracer) RecordForecastOutcome(span trace.Span, outcome ForecastOutcome) {
	span.SetAttributes(
		attribute.String("method", outcome.Method),
		attribute.Int("horizon", outcome.Horizon),
		attribute.String("trend_direction", outcome.TrendDirection),
		attribute.String("method_confidence", outcome.MethodConfidence),
		attribute.Bool("seasonal_detected", outcome.SeasonalDetected),
		attribute.Bool("cache_hit", outcome.CacheHit),
	)
}

// TraceMethodSelection starts a span for tracing characterization and
// method routing.
//
// Parameters:
//   - ctx: The context to attach the span to.
//   - seriesLength: The number of observations after preparation.
//
// Returns:
//   - A context containing the new span.
//   - The created span.
func (bt *BusinessTracer) TraceMethodSelection(ctx context.Context, seriesLength int) (context.Context, trace.Span) {
	return bt.tracer.Start(ctx, "method_selection", trace.WithAttributes(
		attribute.Int("series_length", seriesLength),
	))
}

// RecordSeriesProfile records the measured characteristics of a series
// onto a span.
//
// Parameters:
//   - span: The span to update.
//   - profile: The series characteristics to record.
func (bt *BusinessTracer) RecordSeriesProfile(span trace.Span, profile SeriesProfile) {
	span.SetAttributes(
		attribute.Int("length", profile.Length),
		attribute.Bool("has_trend", profile.HasTrend),
		attribute.Bool("has_seasonality", profile.HasSeasonality),
		attribute.Float64("volatility", profile.Volatility),
		attribute.Int("missing_values", profile.MissingValues),
		attribute.Int("outliers", profile.Outliers),
	)
}

// TraceEvaluation starts a span for tracing a holdout evaluation run.
//
// Parameters:
//   - ctx: The context to attach the span to.
//   - holdoutPeriods: The number of observations held back for scoring.
//   - baselinePeriod: The window used for the moving-average baselines.
//
// Returns:
//   - A context containing the new span.
//   - The created span.
func (bt *BusinessTracer) TraceEvaluation(ctx context.Context, holdoutPeriods int, baselinePeriod int) (context.Context, trace.Span) {
	return bt.tracer.Start(ctx, "method_evaluation", trace.WithAttributes(
		attribute.Int("holdout_periods", holdoutPeriods),
		attribute.Int("baseline_period", baselinePeriod),
	))
}

// RecordEvaluationResult adds the outcome of a holdout evaluation to a span.
//
// Parameters:
//   - span: The span to update.
//   - result: The evaluation outcome to record.
func (bt *BusinessTracer) RecordEvaluationResult(span trace.Span, result EvaluationOutcome) {
	span.SetAttributes(
		attribute.String("best_method", result.BestMethod),
		attribute.Int("methods_scored", result.MethodsScored),
		attribute.Int("methods_failed", result.MethodsFailed),
		attribute.Int64("duration_ms", result.Duration.Milliseconds()),
	)
}

// TraceDatasetIngest starts a span for tracing dataset ingestion.
//
// Parameters:
//   - ctx: The context to attach the span to.
//   - source: The ingestion source ("json" or "csv").
//   - name: The dataset name.
//
// Returns:
//   - A context containing the new span.
//   - The created span.
func (bt *BusinessTracer) TraceDatasetIngest(ctx context.Context, source string, name string) (context.Context, trace.Span) {
	return bt.tracer.Start(ctx, "dataset_ingest", trace.WithAttributes(
		attribute.String("source", source),
		attribute.String("dataset_name", name),
	))
}

// RecordIngestMetrics records metrics related to dataset ingestion onto a span.
//
// Parameters:
//   - span: The span to update.
//   - metrics: The ingestion metrics to record.
func (bt *BusinessTracer) RecordIngestMetrics(span trace.Span, metrics IngestMetrics) {
	span.SetAttributes(
		attribute.Int("row_count", metrics.RowCount),
		attribute.Int("dropped_rows", metrics.DroppedRows),
		attribute.Int64("parse_time_ms", metrics.ParseTime.Milliseconds()),
	)
}

// TraceNotification starts a span for tracing notification delivery.
//
// Parameters:
//   - ctx: The context to attach the span to.
//   - notificationType: The type of notification being sent.
//   - channel: The delivery channel (e.g., "telegram").
//
// Returns:
//   - A context containing the new span.
//   - The created span.
func (bt *BusinessTracer) TraceNotification(ctx context.Context, notificationType string, channel string) (context.Context, trace.Span) {
	return bt.tracer.Start(ctx, "notification", trace.WithAttributes(
		attribute.String("notification_type", notificationType),
		attribute.String("channel", channel),
	))
}

// RecordNotificationResult records the outcome of a notification attempt onto a span.
//
// Parameters:
//   - span: The span to update.
//   - success: Whether the notification was sent successfully.
//   - recipientCount: The number of recipients.
//   - err: Any error that occurred during sending.
func (bt *BusinessTracer) RecordNotificationResult(span trace.Span, success bool, recipientCount int, err error) {
	span.SetAttributes(
		attribute.Bool("success", success),
		attribute.Int("recipient_count", recipientCount),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
}

// ForecastOutcome defines the structure for tracking forecast results in telemetry.
type ForecastOutcome struct {
	Method           string
	Horizon          int
	TrendDirection   string
	MethodConfidence string
	SeasonalDetected bool
	CacheHit         bool
}

// SeriesProfile defines the structure for tracking series characteristics in telemetry.
type SeriesProfile struct {
	Length         int
	HasTrend       bool
	HasSeasonality bool
	Volatility     float64
	MissingValues  int
	Outliers       int
}

// EvaluationOutcome defines the structure for tracking evaluation results in telemetry.
type EvaluationOutcome struct {
	BestMethod    string
	MethodsScored int
	MethodsFailed int
	Duration      time.Duration
}

// IngestMetrics defines the structure for tracking dataset ingestion statistics in telemetry.
type IngestMetrics struct {
	RowCount    int
	DroppedRows int
	ParseTime   time.Duration
}
