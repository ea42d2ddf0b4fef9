package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/datalyr/foresight-go/internal/cache"
)

// CacheHandler serves the admin endpoints for the forecast cache.
type CacheHandler struct {
	cache *cache.ForecastCache
}

// NewCacheHandler creates a cache handler. A nil cache is allowed; the
// endpoints then report the cache as disabled.
func NewCacheHandler(forecastCache *cache.ForecastCache) *CacheHandler {
	return &CacheHandler{
		cache: forecastCache,
	}
}

// GetCacheStats returns hit and miss counters for both cache tiers.
func (h *CacheHandler) GetCacheStats(c *gin.Context) {
	if h.cache == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Forecast cache is disabled"})
		return
	}

	c.JSON(http.StatusOK, h.cache.GetStats())
}

// ClearCache drops every cached forecast from the hot tier and Redis.
func (h *CacheHandler) ClearCache(c *gin.Context) {
	if h.cache == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Forecast cache is disabled"})
		return
	}

	if err := h.cache.Clear(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Forecast cache cleared"})
}
