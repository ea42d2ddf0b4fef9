package models

import (
	"encoding/json"
	"time"

	"github.com/datalyr/foresight-go/internal/forecast"
)

// SavedForecast represents a persisted forecast run against a stored dataset
type SavedForecast struct {
	ID              string          `json:"id" db:"id"`
	DatasetID       string          `json:"dataset_id" db:"dataset_id"`
	UserID          *string         `json:"user_id,omitempty" db:"user_id"`
	Method          string          `json:"method" db:"method"`
	Periods         int             `json:"periods" db:"periods"`
	ConfidenceLevel float64         `json:"confidence_level" db:"confidence_level"`
	Fingerprint     string          `json:"fingerprint" db:"fingerprint"`
	Result          json.RawMessage `json:"result" db:"result"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	Dataset         *Dataset        `json:"dataset,omitempty"`
}

// AnalyzeRequest represents a forecast request over an inline table or a
// stored dataset. Exactly one of DatasetID or Rows must be provided.
type AnalyzeRequest struct {
	DatasetID       string            `json:"dataset_id"`
	Rows            []DatasetRowInput `json:"rows"`
	TargetColumn    string            `json:"target_column"`
	DateColumn      string            `json:"date_column"`
	Periods         int               `json:"periods" binding:"required,min=1"`
	ConfidenceLevel float64           `json:"confidence_level"`
	Method          string            `json:"method"`
	Save            bool              `json:"save"`
}

// AnalyzeResponse represents a forecast result for API responses
type AnalyzeResponse struct {
	ForecastID  string           `json:"forecast_id,omitempty"`
	DatasetID   string           `json:"dataset_id,omitempty"`
	Fingerprint string           `json:"fingerprint"`
	CacheHit    bool             `json:"cache_hit"`
	Result      *forecast.Result `json:"result"`
	GeneratedAt time.Time        `json:"generated_at"`
}

// EvaluationRequest represents a holdout evaluation request
type EvaluationRequest struct {
	DatasetID       string            `json:"dataset_id"`
	Rows            []DatasetRowInput `json:"rows"`
	HoldoutPeriods  int               `json:"holdout_periods"`
	BaselinePeriod  int               `json:"baseline_period"`
	ConfidenceLevel float64           `json:"confidence_level"`
}

// MethodEvaluation represents one method's holdout accuracy
type MethodEvaluation struct {
	Method string  `json:"method"`
	MAE    float64 `json:"mae"`
	RMSE   float64 `json:"rmse"`
	Failed bool    `json:"failed,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// EvaluationResponse represents the full comparison across methods and
// the moving-average baselines
type EvaluationResponse struct {
	DatasetID      string             `json:"dataset_id,omitempty"`
	HoldoutPeriods int                `json:"holdout_periods"`
	Methods        []MethodEvaluation `json:"methods"`
	Baselines      []MethodEvaluation `json:"baselines"`
	BestMethod     string             `json:"best_method"`
	GeneratedAt    time.Time          `json:"generated_at"`
}

// TrendAlert represents a notification-worthy forecast outcome
type TrendAlert struct {
	DatasetID      string    `json:"dataset_id"`
	DatasetName    string    `json:"dataset_name"`
	Method         string    `json:"method"`
	TrendDirection string    `json:"trend_direction"`
	Confidence     string    `json:"confidence"`
	LastActual     float64   `json:"last_actual"`
	NextForecast   float64   `json:"next_forecast"`
	GeneratedAt    time.Time `json:"generated_at"`
}
