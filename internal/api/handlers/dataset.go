package handlers

import (
	"encoding/csv"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/datalyr/foresight-go/internal/database"
	"github.com/datalyr/foresight-go/internal/forecast"
	"github.com/datalyr/foresight-go/internal/middleware"
	"github.com/datalyr/foresight-go/internal/models"
	"github.com/datalyr/foresight-go/internal/telemetry"
	"github.com/datalyr/foresight-go/internal/utils"
)

// Column names assumed when a dataset registration does not name its own.
const (
	defaultTargetColumn = "value"
	defaultDateColumn   = "date"
)

// DatasetHandler serves dataset registration, upload and management.
type DatasetHandler struct {
	datasets *database.DatasetRepository
	tracer   *telemetry.BusinessTracer
}

// DatasetListResponse wraps a page of datasets.
type DatasetListResponse struct {
	Datasets []models.DatasetResponse `json:"datasets"`
	Count    int                      `json:"count"`
	Limit    int                      `json:"limit"`
	Offset   int                      `json:"offset"`
}

func NewDatasetHandler(datasets *database.DatasetRepository) *DatasetHandler {
	return &DatasetHandler{
		datasets: datasets,
		tracer:   telemetry.NewBusinessTracer(),
	}
}

// CreateDataset registers a dataset from inline JSON rows.
func (h *DatasetHandler) CreateDataset(c *gin.Context) {
	var req models.DatasetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, span := h.tracer.TraceDatasetIngest(c.Request.Context(), "json", req.Name)
	defer span.End()

	start := time.Now()
	rows, err := inlineRows(req.Rows)
	if err != nil {
		telemetry.RecordError(span, err)
		respondError(c, err)
		return
	}

	dataset := &models.Dataset{
		UserID:       userIDFromContext(c),
		Name:         req.Name,
		Description:  req.Description,
		TargetColumn: columnOrDefault(req.TargetColumn, defaultTargetColumn),
		DateColumn:   columnOrDefault(req.DateColumn, defaultDateColumn),
	}

	if err := h.datasets.CreateDataset(ctx, dataset, rows); err != nil {
		telemetry.RecordError(span, err)
		respondError(c, err)
		return
	}

	h.tracer.RecordIngestMetrics(span, telemetry.IngestMetrics{
		RowCount:  len(rows),
		ParseTime: time.Since(start),
	})

	c.JSON(http.StatusCreated, dataset.ToResponse())
}

// UploadDataset registers a dataset from an uploaded CSV file. The file
// must carry a header row naming the date and target columns; rows whose
// date or value cannot be parsed are dropped.
func (h *DatasetHandler) UploadDataset(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		respondError(c, utils.NewValidationError("CSV file required in form field 'file'"))
		return
	}
	defer func() {
		_ = file.Close()
	}()

	name := c.PostForm("name")
	if name == "" {
		name = strings.TrimSuffix(header.Filename, filepath.Ext(header.Filename))
	}
	targetColumn := c.DefaultPostForm("target_column", defaultTargetColumn)
	dateColumn := c.DefaultPostForm("date_column", defaultDateColumn)

	ctx, span := h.tracer.TraceDatasetIngest(c.Request.Context(), "csv", name)
	defer span.End()

	start := time.Now()
	rows, dropped, err := parseCSV(file, dateColumn, targetColumn)
	if err != nil {
		telemetry.RecordError(span, err)
		respondError(c, err)
		return
	}

	dataset := &models.Dataset{
		UserID:       userIDFromContext(c),
		Name:         name,
		Description:  c.PostForm("description"),
		TargetColumn: targetColumn,
		DateColumn:   dateColumn,
	}

	if err := h.datasets.CreateDataset(ctx, dataset, rows); err != nil {
		telemetry.RecordError(span, err)
		respondError(c, err)
		return
	}

	h.tracer.RecordIngestMetrics(span, telemetry.IngestMetrics{
		RowCount:    len(rows),
		DroppedRows: dropped,
		ParseTime:   time.Since(start),
	})

	c.JSON(http.StatusCreated, dataset.ToResponse())
}

// GetDataset returns a dataset's metadata.
func (h *DatasetHandler) GetDataset(c *gin.Context) {
	dataset, err := h.datasets.GetDataset(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dataset.ToResponse())
}

// ListDatasets returns datasets newest first.
func (h *DatasetHandler) ListDatasets(c *gin.Context) {
	var query models.DatasetListRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		respondError(c, utils.NewValidationError("Invalid query parameters"))
		return
	}
	if query.Limit <= 0 || query.Limit > 100 {
		query.Limit = 20
	}
	if query.Offset < 0 {
		query.Offset = 0
	}

	datasets, err := h.datasets.ListDatasets(c.Request.Context(), query.Limit, query.Offset)
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]models.DatasetResponse, 0, len(datasets))
	for i := range datasets {
		responses = append(responses, datasets[i].ToResponse())
	}

	c.JSON(http.StatusOK, DatasetListResponse{
		Datasets: responses,
		Count:    len(responses),
		Limit:    query.Limit,
		Offset:   query.Offset,
	})
}

// DeleteDataset removes a dataset along with its rows and saved forecasts.
func (h *DatasetHandler) DeleteDataset(c *gin.Context) {
	id := c.Param("id")
	if err := h.datasets.DeleteDataset(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Dataset deleted", "dataset_id": id})
}

// inlineRows converts request rows into stored observations. A bad date
// fails the whole request so the caller can fix it.
func inlineRows(inputs []models.DatasetRowInput) ([]models.DatasetRow, error) {
	rows := make([]models.DatasetRow, 0, len(inputs))
	for i, input := range inputs {
		ts, ok := forecast.ParseDate(input.Date)
		if !ok {
			return nil, utils.NewValidationErrorf("row %d: unparseable date %q", i, input.Date)
		}
		rows = append(rows, models.DatasetRow{ObservedAt: ts, Value: input.Value})
	}
	return rows, nil
}

// parseCSV reads a header-led CSV stream into observation rows. Rows whose
// date or value cannot be parsed are dropped and counted rather than
// failing the upload.
func parseCSV(r io.Reader, dateColumn, targetColumn string) ([]models.DatasetRow, int, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, 0, utils.NewValidationErrorf("failed to read CSV header: %v", err)
	}

	dateIdx, targetIdx := -1, -1
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case strings.ToLower(dateColumn):
			dateIdx = i
		case strings.ToLower(targetColumn):
			targetIdx = i
		}
	}
	if dateIdx < 0 {
		return nil, 0, utils.NewValidationErrorf("CSV header missing date column %q", dateColumn)
	}
	if targetIdx < 0 {
		return nil, 0, utils.NewValidationErrorf("CSV header missing target column %q", targetColumn)
	}

	var rows []models.DatasetRow
	dropped := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, utils.NewValidationErrorf("failed to read CSV row: %v", err)
		}
		if dateIdx >= len(record) || targetIdx >= len(record) {
			dropped++
			continue
		}

		ts, ok := forecast.ParseDate(strings.TrimSpace(record[dateIdx]))
		if !ok {
			dropped++
			continue
		}
		value, err := decimal.NewFromString(strings.TrimSpace(record[targetIdx]))
		if err != nil {
			dropped++
			continue
		}

		rows = append(rows, models.DatasetRow{ObservedAt: ts, Value: value})
	}

	if len(rows) == 0 {
		return nil, dropped, utils.NewValidationError("CSV contains no usable rows")
	}

	return rows, dropped, nil
}

// userIDFromContext returns the authenticated user's ID when one is set.
func userIDFromContext(c *gin.Context) *string {
	if id := c.GetString(middleware.ContextUserID); id != "" {
		return &id
	}
	return nil
}

func columnOrDefault(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}
