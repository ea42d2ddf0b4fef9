package handlers

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/datalyr/foresight-go/internal/cache"
	"github.com/datalyr/foresight-go/internal/database"
	"github.com/datalyr/foresight-go/internal/services"
)

var startTime = time.Now()

// HealthHandler serves liveness, readiness and operational stats endpoints.
type HealthHandler struct {
	db      *database.PostgresDB
	redis   *database.RedisClient
	monitor *services.ResourceMonitor
	cache   *cache.ForecastCache
}

// HealthResponse reports overall service health and per-dependency status.
type HealthResponse struct {
	Status    string                     `json:"status"`
	Timestamp time.Time                  `json:"timestamp"`
	Services  map[string]string          `json:"services"`
	Version   string                     `json:"version"`
	Uptime    string                     `json:"uptime"`
	Resources *services.ResourceSnapshot `json:"resources,omitempty"`
}

// SystemStatsResponse reports runtime resource usage and cache counters.
type SystemStatsResponse struct {
	Resources services.ResourceSnapshot `json:"resources"`
	Cache     *cache.ForecastCacheStats `json:"cache,omitempty"`
	Timestamp time.Time                 `json:"timestamp"`
}

func NewHealthHandler(db *database.PostgresDB, redis *database.RedisClient, monitor *services.ResourceMonitor, forecastCache *cache.ForecastCache) *HealthHandler {
	return &HealthHandler{
		db:      db,
		redis:   redis,
		monitor: monitor,
		cache:   forecastCache,
	}
}

// Health reports dependency health. Any unhealthy dependency degrades the
// overall status and the endpoint answers 503.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx := c.Request.Context()
	checks := make(map[string]string)

	if h.db != nil {
		if err := h.db.HealthCheck(ctx); err != nil {
			checks["database"] = "unhealthy: " + err.Error()
		} else {
			checks["database"] = "healthy"
		}
	} else {
		checks["database"] = "unhealthy: not configured"
	}

	if h.redis != nil {
		if err := h.redis.HealthCheck(ctx); err != nil {
			checks["redis"] = "unhealthy: " + err.Error()
		} else {
			checks["redis"] = "healthy"
		}
	} else {
		checks["redis"] = "unhealthy: not configured"
	}

	overall := "healthy"
	for _, status := range checks {
		if status != "healthy" {
			overall = "unhealthy"
			break
		}
	}

	response := HealthResponse{
		Status:    overall,
		Timestamp: time.Now(),
		Services:  checks,
		Version:   os.Getenv("APP_VERSION"),
		Uptime:    time.Since(startTime).String(),
	}
	if h.monitor != nil {
		snapshot := h.monitor.Snapshot()
		response.Resources = &snapshot
	}

	status := http.StatusOK
	if overall != "healthy" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, response)
}

// Liveness answers as long as the process is serving requests.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "alive",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// Readiness reports whether the service can take traffic. Both stores must
// answer their health checks.
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx := c.Request.Context()
	checks := make(map[string]string)
	ready := true

	if h.db == nil {
		checks["database"] = "not ready"
		ready = false
	} else if err := h.db.HealthCheck(ctx); err != nil {
		checks["database"] = "not ready"
		ready = false
	} else {
		checks["database"] = "ready"
	}

	if h.redis == nil {
		checks["redis"] = "not ready"
		ready = false
	} else if err := h.redis.HealthCheck(ctx); err != nil {
		checks["redis"] = "not ready"
		ready = false
	} else {
		checks["redis"] = "ready"
	}

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{
		"ready":    ready,
		"services": checks,
	})
}

// SystemStats returns resource usage and forecast cache counters.
func (h *HealthHandler) SystemStats(c *gin.Context) {
	response := SystemStatsResponse{
		Timestamp: time.Now(),
	}
	if h.monitor != nil {
		response.Resources = h.monitor.Snapshot()
	}
	if h.cache != nil {
		stats := h.cache.GetStats()
		response.Cache = &stats
	}

	c.JSON(http.StatusOK, response)
}
