package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/datalyr/foresight-go/internal/forecast"
	"github.com/datalyr/foresight-go/internal/models"
	"github.com/datalyr/foresight-go/internal/services"
	"github.com/datalyr/foresight-go/internal/utils"
)

// ForecastHandler serves forecast generation and retrieval endpoints.
type ForecastHandler struct {
	forecastService *services.ForecastService
}

// DisplayResponse is the analyze/display envelope: the plain-text report
// plus title-cased labels for UI surfaces.
type DisplayResponse struct {
	DatasetID   string `json:"dataset_id,omitempty"`
	Fingerprint string `json:"fingerprint"`
	CacheHit    bool   `json:"cache_hit"`
	Method      string `json:"method"`
	Trend       string `json:"trend"`
	Confidence  string `json:"confidence"`
	Report      string `json:"report"`
}

// ForecastListResponse wraps the saved forecasts of a dataset.
type ForecastListResponse struct {
	DatasetID string                 `json:"dataset_id"`
	Forecasts []models.SavedForecast `json:"forecasts"`
	Count     int                    `json:"count"`
}

func NewForecastHandler(forecastService *services.ForecastService) *ForecastHandler {
	return &ForecastHandler{
		forecastService: forecastService,
	}
}

// Analyze runs a forecast over an inline table or a stored dataset.
func (h *ForecastHandler) Analyze(c *gin.Context) {
	var req models.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.forecastService.Analyze(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// AnalyzeDisplay runs a forecast and renders the multi-line text report
// alongside display-ready labels.
func (h *ForecastHandler) AnalyzeDisplay(c *gin.Context) {
	var req models.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.forecastService.Analyze(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	result := resp.Result
	c.JSON(http.StatusOK, DisplayResponse{
		DatasetID:   resp.DatasetID,
		Fingerprint: resp.Fingerprint,
		CacheHit:    resp.CacheHit,
		Method:      result.Method.DisplayName(),
		Trend:       titleLabel(string(result.TrendDirection)),
		Confidence:  titleLabel(string(result.MethodConfidence)),
		Report:      forecast.FormatForDisplay(result),
	})
}

// GetForecast returns a previously saved forecast by ID.
func (h *ForecastHandler) GetForecast(c *gin.Context) {
	saved, err := h.forecastService.GetForecast(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, saved)
}

// ListDatasetForecasts returns the most recent saved forecasts of a dataset.
func (h *ForecastHandler) ListDatasetForecasts(c *gin.Context) {
	datasetID := c.Param("id")

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil {
		respondError(c, utils.NewValidationError("Invalid limit parameter"))
		return
	}

	forecasts, err := h.forecastService.ListForecasts(c.Request.Context(), datasetID, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ForecastListResponse{
		DatasetID: datasetID,
		Forecasts: forecasts,
		Count:     len(forecasts),
	})
}

// titleLabel renders an engine enum value like "increasing" as a display
// label. Casers are stateful, so one is built per call.
func titleLabel(s string) string {
	return cases.Title(language.English).String(s)
}
