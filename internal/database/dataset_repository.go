package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/datalyr/foresight-go/internal/models"
)

// ErrDatasetNotFound is returned when a dataset does not exist.
var ErrDatasetNotFound = errors.New("dataset not found")

// DatabasePool defines the interface for database pool operations.
// This interface allows for both real pool and mock pool implementations.
type DatabasePool interface {
	// QueryRow executes a query that is expected to return at most one row.
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	// Exec executes a query without returning any rows.
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	// Query executes a query that returns rows.
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

// DatasetRepository handles database operations for datasets and their rows.
type DatasetRepository struct {
	pool DatabasePool
}

// NewDatasetRepository creates a new dataset repository.
//
// Parameters:
//
//	pool: The database connection pool.
//
// Returns:
//
//	*DatasetRepository: The initialized repository.
func NewDatasetRepository(pool DatabasePool) *DatasetRepository {
	return &DatasetRepository{
		pool: pool,
	}
}

// CreateDataset inserts a dataset together with its observation rows.
// The dataset's ID, CreatedAt and UpdatedAt are populated from the insert.
//
// Parameters:
//
//	ctx: Context.
//	dataset: Dataset to create.
//	rows: Observation rows belonging to the dataset.
//
// Returns:
//
//	error: Error if operation fails.
func (r *DatasetRepository) CreateDataset(ctx context.Context, dataset *models.Dataset, rows []models.DatasetRow) error {
	query := `
		INSERT INTO datasets (user_id, name, description, target_column, date_column, row_count)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		dataset.UserID,
		dataset.Name,
		dataset.Description,
		dataset.TargetColumn,
		dataset.DateColumn,
		len(rows),
	).Scan(
		&dataset.ID,
		&dataset.CreatedAt,
		&dataset.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create dataset: %w", err)
	}
	dataset.RowCount = len(rows)

	rowQuery := `
		INSERT INTO dataset_rows (dataset_id, observed_at, value)
		VALUES ($1, $2, $3)
	`

	for i := range rows {
		rows[i].DatasetID = dataset.ID
		if _, err := r.pool.Exec(ctx, rowQuery, dataset.ID, rows[i].ObservedAt, rows[i].Value); err != nil {
			return fmt.Errorf("failed to insert dataset row: %w", err)
		}
	}

	return nil
}

// GetDataset retrieves a dataset by its ID.
//
// Parameters:
//
//	ctx: Context.
//	id: Dataset ID.
//
// Returns:
//
//	*models.Dataset: The dataset, or ErrDatasetNotFound when it does not exist.
//	error: Error if retrieval fails.
func (r *DatasetRepository) GetDataset(ctx context.Context, id string) (*models.Dataset, error) {
	query := `
		SELECT id, user_id, name, description, target_column, date_column, row_count, created_at, updated_at
		FROM datasets
		WHERE id = $1
	`

	var dataset models.Dataset
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&dataset.ID,
		&dataset.UserID,
		&dataset.Name,
		&dataset.Description,
		&dataset.TargetColumn,
		&dataset.DateColumn,
		&dataset.RowCount,
		&dataset.CreatedAt,
		&dataset.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDatasetNotFound
		}
		return nil, fmt.Errorf("failed to get dataset: %w", err)
	}

	return &dataset, nil
}

// GetDatasetRows retrieves all observation rows of a dataset in chronological order.
//
// Parameters:
//
//	ctx: Context.
//	datasetID: Dataset ID.
//
// Returns:
//
//	[]models.DatasetRow: Rows ordered by observation time.
//	error: Error if retrieval fails.
func (r *DatasetRepository) GetDatasetRows(ctx context.Context, datasetID string) ([]models.DatasetRow, error) {
	query := `
		SELECT id, dataset_id, observed_at, value, created_at
		FROM dataset_rows
		WHERE dataset_id = $1
		ORDER BY observed_at ASC
	`

	rows, err := r.pool.Query(ctx, query, datasetID)
	if err != nil {
		return nil, fmt.Errorf("failed to get dataset rows: %w", err)
	}
	defer rows.Close()

	var entries []models.DatasetRow
	for rows.Next() {
		var entry models.DatasetRow
		err := rows.Scan(
			&entry.ID,
			&entry.DatasetID,
			&entry.ObservedAt,
			&entry.Value,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dataset row: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dataset rows: %w", err)
	}

	return entries, nil
}

// ListDatasets returns datasets ordered by creation time, newest first.
//
// Parameters:
//
//	ctx: Context.
//	limit: Maximum number of datasets.
//	offset: Number of datasets to skip.
//
// Returns:
//
//	[]models.Dataset: List of datasets.
//	error: Error if retrieval fails.
func (r *DatasetRepository) ListDatasets(ctx context.Context, limit, offset int) ([]models.Dataset, error) {
	query := `
		SELECT id, user_id, name, description, target_column, date_column, row_count, created_at, updated_at
		FROM datasets
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}
	defer rows.Close()

	var datasets []models.Dataset
	for rows.Next() {
		var dataset models.Dataset
		err := rows.Scan(
			&dataset.ID,
			&dataset.UserID,
			&dataset.Name,
			&dataset.Description,
			&dataset.TargetColumn,
			&dataset.DateColumn,
			&dataset.RowCount,
			&dataset.CreatedAt,
			&dataset.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dataset: %w", err)
		}
		datasets = append(datasets, dataset)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating datasets: %w", err)
	}

	return datasets, nil
}

// DeleteDataset removes a dataset. Its rows and forecasts are removed by
// the ON DELETE CASCADE constraints.
//
// Parameters:
//
//	ctx: Context.
//	id: Dataset ID.
//
// Returns:
//
//	error: ErrDatasetNotFound when no dataset matched, otherwise the database error.
func (r *DatasetRepository) DeleteDataset(ctx context.Context, id string) error {
	query := `
		DELETE FROM datasets
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete dataset: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrDatasetNotFound
	}

	return nil
}

// TouchDataset bumps a dataset's updated_at timestamp.
//
// Parameters:
//
//	ctx: Context.
//	id: Dataset ID.
//
// Returns:
//
//	error: Error if operation fails.
func (r *DatasetRepository) TouchDataset(ctx context.Context, id string) error {
	query := `
		UPDATE datasets
		SET updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`

	if _, err := r.pool.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("failed to touch dataset: %w", err)
	}

	return nil
}
