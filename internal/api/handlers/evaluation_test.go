package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datalyr/foresight-go/internal/models"
	"github.com/datalyr/foresight-go/internal/services"
)

func newEvaluationHandler() *EvaluationHandler {
	svc := services.NewEvaluationService(testForecastConfig(), nil, nil)
	return NewEvaluationHandler(svc)
}

func TestEvaluationHandler_Evaluate(t *testing.T) {
	handler := newEvaluationHandler()

	w := postJSON(t, handler.Evaluate, "/api/v1/evaluations", models.EvaluationRequest{
		Rows:           monthlyRows(24, 100, 5),
		HoldoutPeriods: 6,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.EvaluationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, 6, resp.HoldoutPeriods)
	assert.Len(t, resp.Methods, 4)
	assert.Len(t, resp.Baselines, 2)
	assert.NotEmpty(t, resp.BestMethod)
}

func TestEvaluationHandler_Evaluate_InvalidJSON(t *testing.T) {
	handler := newEvaluationHandler()

	w := postJSON(t, handler.Evaluate, "/api/v1/evaluations", "not json")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeBody(t, w), "error")
}

func TestEvaluationHandler_Evaluate_NoSource(t *testing.T) {
	handler := newEvaluationHandler()

	w := postJSON(t, handler.Evaluate, "/api/v1/evaluations", map[string]interface{}{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeBody(t, w)["error"], "either dataset_id or rows")
}

func TestEvaluationHandler_Evaluate_InsufficientTraining(t *testing.T) {
	handler := newEvaluationHandler()

	w := postJSON(t, handler.Evaluate, "/api/v1/evaluations", models.EvaluationRequest{
		Rows:           monthlyRows(5, 100, 5),
		HoldoutPeriods: 3,
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeBody(t, w)["error"], "not enough data points")
}
