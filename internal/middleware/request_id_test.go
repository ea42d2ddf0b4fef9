package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newRequestIDRouter(captured *string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestIDMiddleware())
	router.GET("/ping", func(c *gin.Context) {
		*captured = RequestIDFromContext(c)
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	return router
}

func TestRequestIDMiddleware_GeneratesID(t *testing.T) {
	var captured string
	router := newRequestIDRouter(&captured)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	echoed := w.Header().Get(RequestIDHeader)
	assert.NotEmpty(t, echoed)
	assert.Equal(t, echoed, captured)

	_, err := uuid.Parse(echoed)
	assert.NoError(t, err)
}

func TestRequestIDMiddleware_PreservesCallerID(t *testing.T) {
	var captured string
	router := newRequestIDRouter(&captured)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "caller-supplied-id")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "caller-supplied-id", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "caller-supplied-id", captured)
}

func TestRequestIDMiddleware_UniquePerRequest(t *testing.T) {
	var captured string
	router := newRequestIDRouter(&captured)

	ids := make(map[string]struct{})
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		ids[w.Header().Get(RequestIDHeader)] = struct{}{}
	}

	assert.Len(t, ids, 5)
}

func TestRequestIDFromContext_NotMounted(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.Empty(t, RequestIDFromContext(c))
}
