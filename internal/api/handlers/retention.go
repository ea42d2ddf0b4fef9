package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/datalyr/foresight-go/internal/services"
	"github.com/datalyr/foresight-go/internal/utils"
)

// RetentionRunner triggers a retention sweep on demand.
type RetentionRunner interface {
	RunCleanup(config services.RetentionConfig) error
}

// RetentionHandler serves the admin retention endpoint.
type RetentionHandler struct {
	retention RetentionRunner
	defaults  services.RetentionConfig
}

// NewRetentionHandler creates a retention handler using the configured
// retention window as the default for manual sweeps.
func NewRetentionHandler(retention RetentionRunner, defaults services.RetentionConfig) *RetentionHandler {
	return &RetentionHandler{
		retention: retention,
		defaults:  defaults,
	}
}

// TriggerRetention runs one retention sweep synchronously. The configured
// window applies unless the request overrides it with a days query parameter.
func (h *RetentionHandler) TriggerRetention(c *gin.Context) {
	config := h.defaults

	if days := c.Query("days"); days != "" {
		parsed, err := strconv.Atoi(days)
		if err != nil || parsed <= 0 {
			respondError(c, utils.NewValidationError("days must be a positive integer"))
			return
		}
		config.ForecastRetentionDays = parsed
	}

	if err := h.retention.RunCleanup(config); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        "Retention sweep completed",
		"retention_days": config.ForecastRetentionDays,
	})
}
