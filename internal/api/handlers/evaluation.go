package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/datalyr/foresight-go/internal/models"
	"github.com/datalyr/foresight-go/internal/services"
)

// EvaluationHandler serves forecasting method evaluation requests.
type EvaluationHandler struct {
	evaluationService *services.EvaluationService
}

func NewEvaluationHandler(evaluationService *services.EvaluationService) *EvaluationHandler {
	return &EvaluationHandler{
		evaluationService: evaluationService,
	}
}

// Evaluate backtests every forecasting method against a holdout window and
// reports per-method accuracy next to moving-average baselines.
func (h *EvaluationHandler) Evaluate(c *gin.Context) {
	var req models.EvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.evaluationService.Evaluate(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
