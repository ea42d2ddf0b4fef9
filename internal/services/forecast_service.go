package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/datalyr/foresight-go/internal/cache"
	"github.com/datalyr/foresight-go/internal/config"
	"github.com/datalyr/foresight-go/internal/database"
	"github.com/datalyr/foresight-go/internal/forecast"
	"github.com/datalyr/foresight-go/internal/metrics"
	"github.com/datalyr/foresight-go/internal/models"
	"github.com/datalyr/foresight-go/internal/telemetry"
)

// Input validation errors surfaced by Analyze before any data is fetched.
var (
	// ErrNoSource reports a request naming neither a stored dataset nor
	// inline rows.
	ErrNoSource = errors.New("either dataset_id or rows must be provided")

	// ErrAmbiguousSource reports a request naming both.
	ErrAmbiguousSource = errors.New("dataset_id and rows are mutually exclusive")
)

// Column names assumed for inline rows and stored datasets that never
// declared their own.
const (
	defaultTargetColumn = "value"
	defaultDateColumn   = "date"
)

// ForecastService orchestrates forecast generation: it resolves the input
// series, consults the fingerprint cache, runs the engine, and persists and
// announces results.
type ForecastService struct {
	datasets  *database.DatasetRepository
	forecasts *database.ForecastRepository
	cache     *cache.ForecastCache
	engine    *forecast.Engine
	notifier  *NotificationService
	collector *metrics.MetricsCollector
	tracer    *telemetry.BusinessTracer
	logger    *logrus.Logger

	defaultConfidence float64
}

// NewForecastService creates a forecast service. The cache, notifier, and
// collector may be nil; the corresponding steps are skipped.
func NewForecastService(
	cfg *config.Config,
	datasets *database.DatasetRepository,
	forecasts *database.ForecastRepository,
	forecastCache *cache.ForecastCache,
	notifier *NotificationService,
	collector *metrics.MetricsCollector,
) *ForecastService {
	engine := forecast.NewEngine(forecast.Config{
		Alpha:              cfg.Forecast.Alpha,
		Beta:               cfg.Forecast.Beta,
		MinDataPoints:      cfg.Forecast.MinDataPoints,
		MaxForecastHorizon: cfg.Forecast.MaxForecastHorizon,
		MaxSeasonLength:    cfg.Forecast.MaxSeasonLength,
	})

	defaultConfidence := cfg.Forecast.DefaultConfidence
	if defaultConfidence <= 0 || defaultConfidence >= 1 {
		defaultConfidence = forecast.DefaultConfidenceLevel
	}

	return &ForecastService{
		datasets:          datasets,
		forecasts:         forecasts,
		cache:             forecastCache,
		engine:            engine,
		notifier:          notifier,
		collector:         collector,
		tracer:            telemetry.NewBusinessTracer(),
		logger:            logrus.New(),
		defaultConfidence: defaultConfidence,
	}
}

// Engine exposes the configured forecasting engine for collaborators that
// run it directly.
func (s *ForecastService) Engine() *forecast.Engine {
	return s.engine
}

// Analyze runs a forecast over an inline table or a stored dataset and
// returns the result with its fingerprint. Repeat requests over identical
// input are served from the cache.
func (s *ForecastService) Analyze(ctx context.Context, req *models.AnalyzeRequest) (*models.AnalyzeResponse, error) {
	start := time.Now()

	ctx, span := s.tracer.TraceForecastAnalysis(ctx, req.DatasetID, req.TargetColumn)
	defer span.End()

	if req.Periods <= 0 {
		return nil, &forecast.ValidationError{
			Kind:   forecast.ErrInsufficientData,
			Detail: fmt.Sprintf("forecast periods must be positive, got %d", req.Periods),
		}
	}

	input, err := s.resolveInput(ctx, req)
	if err != nil {
		telemetry.RecordError(span, err)
		s.recordForecastMetrics(req, nil, start, false)
		return nil, err
	}

	confidenceLevel := req.ConfidenceLevel
	if confidenceLevel == 0 {
		confidenceLevel = s.defaultConfidence
	}

	fingerprint := forecast.Fingerprint(input.series, input.targetColumn, input.dateColumn, req.Periods, confidenceLevel)

	// Method overrides bypass the cache: the fingerprint identifies the
	// input, not the method choice.
	if req.Method == "" && s.cache != nil {
		cacheStart := time.Now()
		if cached, ok := s.cache.Get(ctx, fingerprint); ok {
			s.recordCacheMetrics(fingerprint, true, cacheStart)
			s.logger.WithFields(logrus.Fields{
				"fingerprint": fingerprint,
				"dataset_id":  req.DatasetID,
			}).Debug("Forecast served from cache")

			s.tracer.RecordForecastOutcome(span, telemetry.ForecastOutcome{
				Method:           string(cached.Method),
				Horizon:          cached.ForecastHorizon,
				TrendDirection:   string(cached.TrendDirection),
				MethodConfidence: string(cached.MethodConfidence),
				SeasonalDetected: cached.SeasonalDetected,
				CacheHit:         true,
			})

			return &models.AnalyzeResponse{
				DatasetID:   req.DatasetID,
				Fingerprint: fingerprint,
				CacheHit:    true,
				Result:      cached,
				GeneratedAt: time.Now(),
			}, nil
		}
		s.recordCacheMetrics(fingerprint, false, cacheStart)
	}

	result, err := s.runEngine(req.Method, input.series, req.Periods, confidenceLevel)
	if err != nil {
		telemetry.RecordError(span, err)
		s.recordForecastMetrics(req, nil, start, false)
		return nil, err
	}

	if req.Method == "" && s.cache != nil {
		s.cache.Set(ctx, fingerprint, result)
	}

	response := &models.AnalyzeResponse{
		DatasetID:   req.DatasetID,
		Fingerprint: fingerprint,
		Result:      result,
		GeneratedAt: time.Now(),
	}

	if req.Save && req.DatasetID != "" {
		saved, err := s.persistForecast(ctx, req, fingerprint, confidenceLevel, result)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		response.ForecastID = saved.ID
	}

	s.maybeAlert(req.DatasetID, input.datasetName, result)

	s.recordForecastMetrics(req, result, start, true)
	s.tracer.RecordForecastOutcome(span, telemetry.ForecastOutcome{
		Method:           string(result.Method),
		Horizon:          result.ForecastHorizon,
		TrendDirection:   string(result.TrendDirection),
		MethodConfidence: string(result.MethodConfidence),
		SeasonalDetected: result.SeasonalDetected,
		CacheHit:         false,
	})

	s.logger.WithFields(logrus.Fields{
		"method":      string(result.Method),
		"horizon":     result.ForecastHorizon,
		"trend":       string(result.TrendDirection),
		"dataset_id":  req.DatasetID,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("Forecast generated")

	return response, nil
}

// GetForecast fetches a previously saved forecast by ID.
func (s *ForecastService) GetForecast(ctx context.Context, id string) (*models.SavedForecast, error) {
	return s.forecasts.GetForecast(ctx, id)
}

// ListForecasts fetches the most recent saved forecasts for a dataset.
func (s *ForecastService) ListForecasts(ctx context.Context, datasetID string, limit int) ([]models.SavedForecast, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.forecasts.ListForecastsByDataset(ctx, datasetID, limit)
}

// resolvedInput is a request after source resolution: the prepared series
// plus the column names that identify it in the fingerprint.
type resolvedInput struct {
	series       forecast.Series
	targetColumn string
	dateColumn   string
	datasetName  string
}

func (s *ForecastService) resolveInput(ctx context.Context, req *models.AnalyzeRequest) (*resolvedInput, error) {
	if req.DatasetID == "" && len(req.Rows) == 0 {
		return nil, ErrNoSource
	}
	if req.DatasetID != "" && len(req.Rows) > 0 {
		return nil, ErrAmbiguousSource
	}

	input := &resolvedInput{
		targetColumn: req.TargetColumn,
		dateColumn:   req.DateColumn,
	}

	var table forecast.Table
	if req.DatasetID != "" {
		dataset, err := s.datasets.GetDataset(ctx, req.DatasetID)
		if err != nil {
			return nil, err
		}
		rows, err := s.datasets.GetDatasetRows(ctx, req.DatasetID)
		if err != nil {
			return nil, err
		}

		input.datasetName = dataset.Name
		if input.targetColumn == "" {
			input.targetColumn = dataset.TargetColumn
		}
		if input.dateColumn == "" {
			input.dateColumn = dataset.DateColumn
		}
		table = storedRowsToTable(rows, input.targetColumn, input.dateColumn)
	} else {
		if input.targetColumn == "" {
			input.targetColumn = defaultTargetColumn
		}
		if input.dateColumn == "" {
			input.dateColumn = defaultDateColumn
		}
		table = inlineRowsToTable(req.Rows, input.targetColumn, input.dateColumn)
	}

	series, err := forecast.Prepare(table, input.targetColumn, input.dateColumn, s.engine.Config())
	if err != nil {
		return nil, err
	}
	input.series = series
	return input, nil
}

// runEngine dispatches to automatic selection or an explicitly requested
// method.
func (s *ForecastService) runEngine(method string, series forecast.Series, periods int, confidenceLevel float64) (*forecast.Result, error) {
	if method == "" {
		return s.engine.Forecast(series, periods, confidenceLevel)
	}
	return s.engine.ForecastWith(forecast.Method(method), series, periods, confidenceLevel)
}

// persistForecast stores a successful run for later retrieval.
func (s *ForecastService) persistForecast(ctx context.Context, req *models.AnalyzeRequest, fingerprint string, confidenceLevel float64, result *forecast.Result) (*models.SavedForecast, error) {
	payload, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize forecast result: %w", err)
	}

	saved := &models.SavedForecast{
		DatasetID:       req.DatasetID,
		Method:          string(result.Method),
		Periods:         req.Periods,
		ConfidenceLevel: confidenceLevel,
		Fingerprint:     fingerprint,
		Result:          payload,
	}
	if err := s.forecasts.SaveForecast(ctx, saved); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"forecast_id": saved.ID,
		"dataset_id":  req.DatasetID,
		"method":      saved.Method,
	}).Info("Forecast saved")

	return saved, nil
}

// maybeAlert fires a trend notification for directional, high-confidence
// forecasts against stored datasets. Delivery runs in the background and
// never fails the request.
func (s *ForecastService) maybeAlert(datasetID, datasetName string, result *forecast.Result) {
	if s.notifier == nil || !s.notifier.Enabled() || datasetID == "" {
		return
	}
	if result.TrendDirection == forecast.TrendStable || result.MethodConfidence != forecast.ConfidenceHigh {
		return
	}

	nextForecast := 0.0
	if len(result.ForecastValues) > 0 {
		nextForecast = result.ForecastValues[0]
	}

	alert := models.TrendAlert{
		DatasetID:      datasetID,
		DatasetName:    datasetName,
		Method:         string(result.Method),
		TrendDirection: string(result.TrendDirection),
		Confidence:     string(result.MethodConfidence),
		LastActual:     result.LastActualValue,
		NextForecast:   nextForecast,
		GeneratedAt:    time.Now(),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.notifier.NotifyTrendAlert(ctx, alert); err != nil {
			s.logger.WithError(err).Warn("Failed to send trend alert")
		}
	}()
}

func (s *ForecastService) recordForecastMetrics(req *models.AnalyzeRequest, result *forecast.Result, start time.Time, success bool) {
	if s.collector == nil {
		return
	}
	method := req.Method
	horizon := 0
	if result != nil {
		method = string(result.Method)
		horizon = result.ForecastHorizon
	}
	s.collector.RecordForecastMetrics(method, req.DatasetID, horizon, time.Since(start), success)
}

func (s *ForecastService) recordCacheMetrics(fingerprint string, hit bool, start time.Time) {
	if s.collector == nil {
		return
	}
	s.collector.RecordCacheMetrics("GET", fingerprint, hit, time.Since(start))
}

// storedRowsToTable shapes persisted observations for preparation under the
// dataset's declared column names.
func storedRowsToTable(rows []models.DatasetRow, targetColumn, dateColumn string) forecast.Table {
	out := make([]forecast.Row, len(rows))
	for i, r := range rows {
		out[i] = forecast.Row{
			dateColumn:   r.ObservedAt,
			targetColumn: r.Value.InexactFloat64(),
		}
	}
	return forecast.NewTable([]string{dateColumn, targetColumn}, out)
}

// inlineRowsToTable shapes request-body observations the same way. Dates stay
// strings; preparation parses them.
func inlineRowsToTable(rows []models.DatasetRowInput, targetColumn, dateColumn string) forecast.Table {
	out := make([]forecast.Row, len(rows))
	for i, r := range rows {
		out[i] = forecast.Row{
			dateColumn:   r.Date,
			targetColumn: r.Value.InexactFloat64(),
		}
	}
	return forecast.NewTable([]string{dateColumn, targetColumn}, out)
}
