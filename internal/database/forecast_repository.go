package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/datalyr/foresight-go/internal/models"
)

// ErrForecastNotFound is returned when a stored forecast does not exist.
var ErrForecastNotFound = errors.New("forecast not found")

// ForecastRepository handles database operations for stored forecast results.
type ForecastRepository struct {
	pool DatabasePool
}

// NewForecastRepository creates a new forecast repository.
//
// Parameters:
//
//	pool: The database connection pool.
//
// Returns:
//
//	*ForecastRepository: The initialized repository.
func NewForecastRepository(pool DatabasePool) *ForecastRepository {
	return &ForecastRepository{
		pool: pool,
	}
}

// SaveForecast persists a forecast result. The forecast's ID and CreatedAt
// are populated from the insert.
//
// Parameters:
//
//	ctx: Context.
//	forecast: Forecast to persist.
//
// Returns:
//
//	error: Error if operation fails.
func (r *ForecastRepository) SaveForecast(ctx context.Context, forecast *models.SavedForecast) error {
	query := `
		INSERT INTO forecasts (dataset_id, user_id, method, periods, confidence_level, fingerprint, result)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(ctx, query,
		forecast.DatasetID,
		forecast.UserID,
		forecast.Method,
		forecast.Periods,
		forecast.ConfidenceLevel,
		forecast.Fingerprint,
		forecast.Result,
	).Scan(
		&forecast.ID,
		&forecast.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save forecast: %w", err)
	}

	return nil
}

// GetForecast retrieves a stored forecast by its ID.
//
// Parameters:
//
//	ctx: Context.
//	id: Forecast ID.
//
// Returns:
//
//	*models.SavedForecast: The forecast, or ErrForecastNotFound when it does not exist.
//	error: Error if retrieval fails.
func (r *ForecastRepository) GetForecast(ctx context.Context, id string) (*models.SavedForecast, error) {
	query := `
		SELECT id, dataset_id, user_id, method, periods, confidence_level, fingerprint, result, created_at
		FROM forecasts
		WHERE id = $1
	`

	var forecast models.SavedForecast
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&forecast.ID,
		&forecast.DatasetID,
		&forecast.UserID,
		&forecast.Method,
		&forecast.Periods,
		&forecast.ConfidenceLevel,
		&forecast.Fingerprint,
		&forecast.Result,
		&forecast.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrForecastNotFound
		}
		return nil, fmt.Errorf("failed to get forecast: %w", err)
	}

	return &forecast, nil
}

// GetLatestByFingerprint retrieves the most recent forecast stored for an
// input fingerprint. Used to serve repeat requests without recomputation
// when the cache tier has been evicted.
//
// Parameters:
//
//	ctx: Context.
//	fingerprint: Input fingerprint of the forecast request.
//
// Returns:
//
//	*models.SavedForecast: The forecast, or ErrForecastNotFound when none exists.
//	error: Error if retrieval fails.
func (r *ForecastRepository) GetLatestByFingerprint(ctx context.Context, fingerprint string) (*models.SavedForecast, error) {
	query := `
		SELECT id, dataset_id, user_id, method, periods, confidence_level, fingerprint, result, created_at
		FROM forecasts
		WHERE fingerprint = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	var forecast models.SavedForecast
	err := r.pool.QueryRow(ctx, query, fingerprint).Scan(
		&forecast.ID,
		&forecast.DatasetID,
		&forecast.UserID,
		&forecast.Method,
		&forecast.Periods,
		&forecast.ConfidenceLevel,
		&forecast.Fingerprint,
		&forecast.Result,
		&forecast.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrForecastNotFound
		}
		return nil, fmt.Errorf("failed to get forecast by fingerprint: %w", err)
	}

	return &forecast, nil
}

// ListForecastsByDataset returns the stored forecasts of a dataset,
// newest first.
//
// Parameters:
//
//	ctx: Context.
//	datasetID: Dataset ID.
//	limit: Maximum number of forecasts.
//
// Returns:
//
//	[]models.SavedForecast: List of forecasts.
//	error: Error if retrieval fails.
func (r *ForecastRepository) ListForecastsByDataset(ctx context.Context, datasetID string, limit int) ([]models.SavedForecast, error) {
	query := `
		SELECT id, dataset_id, user_id, method, periods, confidence_level, fingerprint, result, created_at
		FROM forecasts
		WHERE dataset_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, datasetID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list forecasts: %w", err)
	}
	defer rows.Close()

	var forecasts []models.SavedForecast
	for rows.Next() {
		var forecast models.SavedForecast
		err := rows.Scan(
			&forecast.ID,
			&forecast.DatasetID,
			&forecast.UserID,
			&forecast.Method,
			&forecast.Periods,
			&forecast.ConfidenceLevel,
			&forecast.Fingerprint,
			&forecast.Result,
			&forecast.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan forecast: %w", err)
		}
		forecasts = append(forecasts, forecast)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating forecasts: %w", err)
	}

	return forecasts, nil
}

// DeleteExpiredForecasts removes forecasts older than the retention window.
//
// Parameters:
//
//	ctx: Context.
//	retentionDays: Age in days beyond which forecasts are removed.
//
// Returns:
//
//	int64: Number of forecasts removed.
//	error: Error if cleanup fails.
func (r *ForecastRepository) DeleteExpiredForecasts(ctx context.Context, retentionDays int) (int64, error) {
	query := `
		DELETE FROM forecasts
		WHERE created_at < CURRENT_TIMESTAMP - make_interval(days => $1)
	`

	result, err := r.pool.Exec(ctx, query, retentionDays)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired forecasts: %w", err)
	}

	return result.RowsAffected(), nil
}
