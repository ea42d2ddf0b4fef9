package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datalyr/foresight-go/internal/cache"
)

// newCacheForTest builds a two-tier forecast cache backed by miniredis.
func newCacheForTest(t *testing.T) (*cache.ForecastCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	fc, err := cache.NewForecastCache(client, time.Hour, 8, "foresight:forecast:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = fc.Close() })
	return fc, mr
}

// invoke runs a handler against a bare request.
func invoke(handler gin.HandlerFunc, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, nil)
	handler(c)
	return w
}

func TestGetCacheStats(t *testing.T) {
	t.Run("disabled cache", func(t *testing.T) {
		handler := NewCacheHandler(nil)

		w := invoke(handler.GetCacheStats, http.MethodGet, "/admin/cache/stats")

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), "disabled")
	})

	t.Run("reports lookup counters", func(t *testing.T) {
		fc, _ := newCacheForTest(t)
		_, found := fc.Get(context.Background(), "absent-fingerprint")
		require.False(t, found)

		handler := NewCacheHandler(fc)
		w := invoke(handler.GetCacheStats, http.MethodGet, "/admin/cache/stats")

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeBody(t, w)
		assert.Equal(t, float64(0), resp["hits"])
		assert.Equal(t, float64(1), resp["misses"])
		assert.Equal(t, float64(0), resp["hot_entries"])
	})
}

func TestClearCache(t *testing.T) {
	t.Run("disabled cache", func(t *testing.T) {
		handler := NewCacheHandler(nil)

		w := invoke(handler.ClearCache, http.MethodPost, "/admin/cache/clear")

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("removes prefixed keys only", func(t *testing.T) {
		fc, mr := newCacheForTest(t)
		require.NoError(t, mr.Set("foresight:forecast:abc123", "payload"))
		require.NoError(t, mr.Set("unrelated:key", "payload"))

		handler := NewCacheHandler(fc)
		w := invoke(handler.ClearCache, http.MethodPost, "/admin/cache/clear")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "cleared")
		assert.False(t, mr.Exists("foresight:forecast:abc123"))
		assert.True(t, mr.Exists("unrelated:key"))
	})
}
