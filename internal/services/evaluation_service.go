package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/trend"
	"github.com/sirupsen/logrus"

	"github.com/datalyr/foresight-go/internal/config"
	"github.com/datalyr/foresight-go/internal/database"
	"github.com/datalyr/foresight-go/internal/forecast"
	"github.com/datalyr/foresight-go/internal/metrics"
	"github.com/datalyr/foresight-go/internal/models"
	"github.com/datalyr/foresight-go/internal/telemetry"
)

// defaultBaselinePeriod is the moving-average window used when a request
// does not choose one.
const defaultBaselinePeriod = 3

// EvaluationService scores every forecasting method against a holdout tail
// of the series and compares them with naive moving-average baselines.
type EvaluationService struct {
	datasets  *database.DatasetRepository
	engine    *forecast.Engine
	collector *metrics.MetricsCollector
	tracer    *telemetry.BusinessTracer
	logger    *logrus.Logger
}

// NewEvaluationService creates an evaluation service. The collector may be
// nil; metric recording is skipped.
func NewEvaluationService(cfg *config.Config, datasets *database.DatasetRepository, collector *metrics.MetricsCollector) *EvaluationService {
	engine := forecast.NewEngine(forecast.Config{
		Alpha:              cfg.Forecast.Alpha,
		Beta:               cfg.Forecast.Beta,
		MinDataPoints:      cfg.Forecast.MinDataPoints,
		MaxForecastHorizon: cfg.Forecast.MaxForecastHorizon,
		MaxSeasonLength:    cfg.Forecast.MaxSeasonLength,
	})

	return &EvaluationService{
		datasets:  datasets,
		engine:    engine,
		collector: collector,
		tracer:    telemetry.NewBusinessTracer(),
		logger:    logrus.New(),
	}
}

// Evaluate withholds the tail of the series, forecasts it with each method
// trained on the remainder, and reports per-method MAE and RMSE alongside
// SMA and EMA baselines. Methods that cannot run on the training window are
// reported as failed rather than aborting the comparison.
func (s *EvaluationService) Evaluate(ctx context.Context, req *models.EvaluationRequest) (*models.EvaluationResponse, error) {
	start := time.Now()

	ctx, span := s.tracer.TraceEvaluation(ctx, req.HoldoutPeriods, req.BaselinePeriod)
	defer span.End()

	series, err := s.resolveSeries(ctx, req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	holdout := req.HoldoutPeriods
	if holdout <= 0 {
		holdout = series.Len() / 4
		if holdout < 1 {
			holdout = 1
		}
	}
	cfg := s.engine.Config()
	if holdout > cfg.MaxForecastHorizon {
		holdout = cfg.MaxForecastHorizon
	}

	trainLen := series.Len() - holdout
	if trainLen < cfg.MinDataPoints {
		err := &forecast.ValidationError{
			Kind: forecast.ErrInsufficientData,
			Detail: fmt.Sprintf("%d points leave only %d for training after a %d-period holdout, need at least %d",
				series.Len(), trainLen, holdout, cfg.MinDataPoints),
		}
		telemetry.RecordError(span, err)
		return nil, err
	}

	trainPoints := make([]forecast.Point, trainLen)
	for i := range trainPoints {
		trainPoints[i] = series.At(i)
	}
	train := forecast.NewSeries(trainPoints)
	actuals := series.Values()[trainLen:]

	confidenceLevel := req.ConfidenceLevel
	if confidenceLevel == 0 {
		confidenceLevel = forecast.DefaultConfidenceLevel
	}

	evaluations := s.scoreMethods(train, actuals, holdout, confidenceLevel)

	baselinePeriod := req.BaselinePeriod
	if baselinePeriod <= 0 {
		baselinePeriod = defaultBaselinePeriod
	}
	baselines := s.scoreBaselines(train.Values(), actuals, baselinePeriod)

	best := ""
	bestMAE := math.Inf(1)
	scored := 0
	failed := 0
	for _, ev := range evaluations {
		if ev.Failed {
			failed++
			continue
		}
		scored++
		if ev.MAE < bestMAE {
			bestMAE = ev.MAE
			best = ev.Method
		}
		if s.collector != nil {
			s.collector.RecordEvaluationMetrics(ev.Method, holdout, ev.MAE, false)
		}
	}
	if s.collector != nil && best != "" {
		s.collector.RecordEvaluationMetrics(best, holdout, bestMAE, true)
	}

	s.tracer.RecordEvaluationResult(span, telemetry.EvaluationOutcome{
		BestMethod:    best,
		MethodsScored: scored,
		MethodsFailed: failed,
		Duration:      time.Since(start),
	})

	s.logger.WithFields(logrus.Fields{
		"dataset_id":  req.DatasetID,
		"holdout":     holdout,
		"best_method": best,
		"scored":      scored,
		"failed":      failed,
	}).Info("Evaluation completed")

	return &models.EvaluationResponse{
		DatasetID:      req.DatasetID,
		HoldoutPeriods: holdout,
		Methods:        evaluations,
		Baselines:      baselines,
		BestMethod:     best,
		GeneratedAt:    time.Now(),
	}, nil
}

// resolveSeries loads the stored dataset or shapes the inline rows, then
// prepares the result.
func (s *EvaluationService) resolveSeries(ctx context.Context, req *models.EvaluationRequest) (forecast.Series, error) {
	if req.DatasetID == "" && len(req.Rows) == 0 {
		return forecast.Series{}, ErrNoSource
	}
	if req.DatasetID != "" && len(req.Rows) > 0 {
		return forecast.Series{}, ErrAmbiguousSource
	}

	targetColumn := defaultTargetColumn
	dateColumn := defaultDateColumn

	var table forecast.Table
	if req.DatasetID != "" {
		dataset, err := s.datasets.GetDataset(ctx, req.DatasetID)
		if err != nil {
			return forecast.Series{}, err
		}
		rows, err := s.datasets.GetDatasetRows(ctx, req.DatasetID)
		if err != nil {
			return forecast.Series{}, err
		}
		if dataset.TargetColumn != "" {
			targetColumn = dataset.TargetColumn
		}
		if dataset.DateColumn != "" {
			dateColumn = dataset.DateColumn
		}
		table = storedRowsToTable(rows, targetColumn, dateColumn)
	} else {
		table = inlineRowsToTable(req.Rows, targetColumn, dateColumn)
	}

	return forecast.Prepare(table, targetColumn, dateColumn, s.engine.Config())
}

// scoreMethods forecasts the holdout window with each method trained on the
// shortened series.
func (s *EvaluationService) scoreMethods(train forecast.Series, actuals []float64, holdout int, confidenceLevel float64) []models.MethodEvaluation {
	methods := []forecast.Method{
		forecast.MethodLinearRegression,
		forecast.MethodSimpleExponentialSmoothing,
		forecast.MethodDoubleExponentialSmoothing,
		forecast.MethodSeasonalDecomposition,
	}

	evaluations := make([]models.MethodEvaluation, 0, len(methods))
	for _, method := range methods {
		result, err := s.engine.ForecastWith(method, train, holdout, confidenceLevel)
		if err != nil {
			evaluations = append(evaluations, models.MethodEvaluation{
				Method: string(method),
				Failed: true,
				Error:  err.Error(),
			})
			continue
		}
		evaluations = append(evaluations, models.MethodEvaluation{
			Method: string(method),
			MAE:    meanAbsoluteError(result.ForecastValues, actuals),
			RMSE:   rootMeanSquaredError(result.ForecastValues, actuals),
		})
	}
	return evaluations
}

// scoreBaselines projects the last moving-average value flat across the
// holdout window. A baseline that cannot warm up on the training data is
// reported as failed.
func (s *EvaluationService) scoreBaselines(trainValues, actuals []float64, period int) []models.MethodEvaluation {
	baselines := make([]models.MethodEvaluation, 0, 2)

	smaName := fmt.Sprintf("sma_%d", period)
	if sma := movingAverageTail(trainValues, period, false); math.IsNaN(sma) {
		baselines = append(baselines, models.MethodEvaluation{
			Method: smaName,
			Failed: true,
			Error:  fmt.Sprintf("needs at least %d training points", period),
		})
	} else {
		predicted := flatProjection(sma, len(actuals))
		baselines = append(baselines, models.MethodEvaluation{
			Method: smaName,
			MAE:    meanAbsoluteError(predicted, actuals),
			RMSE:   rootMeanSquaredError(predicted, actuals),
		})
	}

	emaName := fmt.Sprintf("ema_%d", period)
	if ema := movingAverageTail(trainValues, period, true); math.IsNaN(ema) {
		baselines = append(baselines, models.MethodEvaluation{
			Method: emaName,
			Failed: true,
			Error:  fmt.Sprintf("needs at least %d training points", period),
		})
	} else {
		predicted := flatProjection(ema, len(actuals))
		baselines = append(baselines, models.MethodEvaluation{
			Method: emaName,
			MAE:    meanAbsoluteError(predicted, actuals),
			RMSE:   rootMeanSquaredError(predicted, actuals),
		})
	}

	return baselines
}

// movingAverageTail computes the final SMA or EMA value over the training
// values. Returns NaN when the window never fills.
func movingAverageTail(values []float64, period int, exponential bool) float64 {
	if len(values) < period {
		return math.NaN()
	}

	var computed []float64
	if exponential {
		ema := trend.NewEmaWithPeriod[float64](period)
		computed = helper.ChanToSlice(ema.Compute(helper.SliceToChan(values)))
	} else {
		sma := trend.NewSmaWithPeriod[float64](period)
		computed = helper.ChanToSlice(sma.Compute(helper.SliceToChan(values)))
	}
	if len(computed) == 0 {
		return math.NaN()
	}
	return computed[len(computed)-1]
}

func flatProjection(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}

func meanAbsoluteError(predicted, actual []float64) float64 {
	n := len(predicted)
	if len(actual) < n {
		n = len(actual)
	}
	if n == 0 {
		return 0
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += math.Abs(predicted[i] - actual[i])
	}
	return sum / float64(n)
}

func rootMeanSquaredError(predicted, actual []float64) float64 {
	n := len(predicted)
	if len(actual) < n {
		n = len(actual)
	}
	if n == 0 {
		return 0
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		diff := predicted[i] - actual[i]
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(n))
}
