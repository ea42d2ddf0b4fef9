package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/datalyr/foresight-go/internal/config"
	"github.com/datalyr/foresight-go/internal/database"
	"github.com/datalyr/foresight-go/internal/middleware"
	"github.com/datalyr/foresight-go/internal/models"
	"github.com/datalyr/foresight-go/internal/services"
	"github.com/datalyr/foresight-go/internal/telemetry"
	"github.com/datalyr/foresight-go/internal/testutil"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	telemetryConfig := telemetry.DefaultConfig()
	telemetryConfig.Enabled = false
	if err := telemetry.InitTelemetry(*telemetryConfig); err != nil {
		panic(err)
	}

	os.Exit(m.Run())
}

type routerFixture struct {
	router *gin.Engine
	auth   *middleware.AuthMiddleware
	pool   pgxmock.PgxPoolIface
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()

	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err, "Failed to create mock pool")
	t.Cleanup(mockPool.Close)

	cfg := &config.Config{
		Forecast: config.ForecastConfig{
			Alpha:              0.3,
			Beta:               0.1,
			MinDataPoints:      3,
			MaxForecastHorizon: 12,
			MaxSeasonLength:    12,
			DefaultConfidence:  0.95,
		},
	}

	pool := testutil.NewMockPoolAdapter(mockPool)
	datasets := database.NewDatasetRepository(pool)
	forecasts := database.NewForecastRepository(pool)
	users := database.NewUserRepository(pool)
	auth := middleware.NewAuthMiddleware("test-secret", time.Hour)
	adminAuth := middleware.NewAdminMiddleware("test-admin-key")

	router := gin.New()
	SetupRoutes(router, &Dependencies{
		Users:             users,
		Datasets:          datasets,
		ForecastService:   services.NewForecastService(cfg, datasets, nil, nil, nil, nil),
		EvaluationService: services.NewEvaluationService(cfg, datasets, nil),
		RetentionService:  services.NewRetentionService(forecasts),
		RetentionDefaults: services.RetentionConfig{ForecastRetentionDays: 90, CleanupIntervalMinutes: 360},
		Auth:              auth,
		AdminAuth:         adminAuth,
		BcryptCost:        bcrypt.MinCost,
	})

	return &routerFixture{router: router, auth: auth, pool: mockPool}
}

func (f *routerFixture) serve(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func jsonRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func inlineRows(n int, start, step float64) []models.DatasetRowInput {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := make([]models.DatasetRowInput, n)
	for i := range rows {
		rows[i] = models.DatasetRowInput{
			Date:  base.AddDate(0, i, 0).Format("2006-01-02"),
			Value: decimal.NewFromFloat(start + step*float64(i)),
		}
	}
	return rows
}

func TestRoutes_RequireAuthRejectsAnonymous(t *testing.T) {
	fixture := newRouterFixture(t)

	tests := []struct {
		method string
		target string
	}{
		{http.MethodPost, "/api/v1/datasets"},
		{http.MethodPost, "/api/v1/datasets/upload"},
		{http.MethodDelete, "/api/v1/datasets/ds-1"},
		{http.MethodGet, "/api/v1/users/profile"},
		{http.MethodPut, "/api/v1/users/profile"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			w := fixture.serve(httptest.NewRequest(tt.method, tt.target, nil))

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "Authorization header required", decodeResponse(t, w)["error"])
		})
	}
}

func TestRoutes_RequireAuthRejectsBadToken(t *testing.T) {
	fixture := newRouterFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/profile", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w := fixture.serve(req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid token", decodeResponse(t, w)["error"])
}

func TestRoutes_AnalyzeAllowsAnonymous(t *testing.T) {
	fixture := newRouterFixture(t)

	w := fixture.serve(jsonRequest(t, http.MethodPost, "/api/v1/forecasts/analyze", models.AnalyzeRequest{
		Rows:    inlineRows(24, 100, 5),
		Periods: 6,
	}))

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.Len(t, resp["fingerprint"], 64)
	require.Contains(t, resp, "result")
}

func TestRoutes_EvaluateAllowsAnonymous(t *testing.T) {
	fixture := newRouterFixture(t)

	w := fixture.serve(jsonRequest(t, http.MethodPost, "/api/v1/evaluations", models.EvaluationRequest{
		Rows:           inlineRows(24, 100, 5),
		HoldoutPeriods: 6,
	}))

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.NotEmpty(t, resp["best_method"])
}

func TestRoutes_AuthorizedDatasetCreate(t *testing.T) {
	fixture := newRouterFixture(t)

	token, err := fixture.auth.GenerateToken("user-1", "analyst@example.com")
	require.NoError(t, err)

	userID := "user-1"
	now := time.Now()
	fixture.pool.ExpectQuery(`INSERT INTO datasets`).
		WithArgs(&userID, "Weekly sales", "", "value", "date", 3).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow("ds-1", now, now))
	for i := 0; i < 3; i++ {
		fixture.pool.ExpectExec(`INSERT INTO dataset_rows`).
			WithArgs("ds-1", pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}

	req := jsonRequest(t, http.MethodPost, "/api/v1/datasets", models.DatasetRequest{
		Name: "Weekly sales",
		Rows: inlineRows(3, 100, 5),
	})
	req.Header.Set("Authorization", "Bearer "+token)
	w := fixture.serve(req)

	require.Equal(t, http.StatusCreated, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, "ds-1", resp["id"])
	assert.Equal(t, float64(3), resp["row_count"])
	assert.NoError(t, fixture.pool.ExpectationsWereMet())
}

func TestRoutes_RegisterValidatesBody(t *testing.T) {
	fixture := newRouterFixture(t)

	w := fixture.serve(jsonRequest(t, http.MethodPost, "/api/v1/users/register", map[string]interface{}{}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeResponse(t, w), "error")
}

func TestRoutes_HealthLive(t *testing.T) {
	fixture := newRouterFixture(t)

	w := fixture.serve(httptest.NewRequest(http.MethodGet, "/health/live", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alive", decodeResponse(t, w)["status"])
}

func TestRoutes_HealthDegradedWithoutStores(t *testing.T) {
	fixture := newRouterFixture(t)

	w := fixture.serve(httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "unhealthy", decodeResponse(t, w)["status"])
}

func TestRoutes_SystemStats(t *testing.T) {
	fixture := newRouterFixture(t)

	w := fixture.serve(httptest.NewRequest(http.MethodGet, "/api/v1/system/stats", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decodeResponse(t, w), "resources")
}

func TestRoutes_AdminRequiresAPIKey(t *testing.T) {
	fixture := newRouterFixture(t)

	tests := []struct {
		method string
		target string
	}{
		{http.MethodGet, "/api/v1/admin/cache/stats"},
		{http.MethodPost, "/api/v1/admin/cache/clear"},
		{http.MethodPost, "/api/v1/admin/retention/run"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			w := fixture.serve(httptest.NewRequest(tt.method, tt.target, nil))

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestRoutes_AdminCacheStatsWithoutCache(t *testing.T) {
	fixture := newRouterFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/cache/stats", nil)
	req.Header.Set("X-API-Key", "test-admin-key")
	w := fixture.serve(req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRoutes_AdminRetentionRun(t *testing.T) {
	fixture := newRouterFixture(t)

	fixture.pool.ExpectExec(`DELETE FROM forecasts`).
		WithArgs(45).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/retention/run?days=45", nil)
	req.Header.Set("X-API-Key", "test-admin-key")
	w := fixture.serve(req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(45), decodeResponse(t, w)["retention_days"])
	assert.NoError(t, fixture.pool.ExpectationsWereMet())
}
