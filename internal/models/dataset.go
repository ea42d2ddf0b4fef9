package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Dataset represents an uploaded time series registered for forecasting
type Dataset struct {
	ID           string    `json:"id" db:"id"`
	UserID       *string   `json:"user_id,omitempty" db:"user_id"`
	Name         string    `json:"name" db:"name"`
	Description  string    `json:"description" db:"description"`
	TargetColumn string    `json:"target_column" db:"target_column"`
	DateColumn   string    `json:"date_column" db:"date_column"`
	RowCount     int       `json:"row_count" db:"row_count"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// DatasetRow represents one observation of a stored dataset
type DatasetRow struct {
	ID         string          `json:"id" db:"id"`
	DatasetID  string          `json:"dataset_id" db:"dataset_id"`
	ObservedAt time.Time       `json:"observed_at" db:"observed_at"`
	Value      decimal.Decimal `json:"value" db:"value"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
	Dataset    *Dataset        `json:"dataset,omitempty"`
}

// DatasetRequest represents a dataset registration request with inline rows
type DatasetRequest struct {
	Name         string            `json:"name" binding:"required"`
	Description  string            `json:"description"`
	TargetColumn string            `json:"target_column"`
	DateColumn   string            `json:"date_column"`
	Rows         []DatasetRowInput `json:"rows" binding:"required,min=1"`
}

// DatasetRowInput represents one inline observation in a dataset request.
// Date accepts the same layouts the CSV importer does.
type DatasetRowInput struct {
	Date  string          `json:"date" binding:"required"`
	Value decimal.Decimal `json:"value"`
}

// DatasetResponse represents dataset information for API responses
type DatasetResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	TargetColumn string    `json:"target_column"`
	DateColumn   string    `json:"date_column"`
	RowCount     int       `json:"row_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// DatasetListRequest represents query parameters for dataset listing
type DatasetListRequest struct {
	Limit  int `json:"limit" form:"limit"`
	Offset int `json:"offset" form:"offset"`
}

// ToResponse converts a Dataset to its API representation
func (d *Dataset) ToResponse() DatasetResponse {
	return DatasetResponse{
		ID:           d.ID,
		Name:         d.Name,
		Description:  d.Description,
		TargetColumn: d.TargetColumn,
		DateColumn:   d.DateColumn,
		RowCount:     d.RowCount,
		CreatedAt:    d.CreatedAt,
	}
}
