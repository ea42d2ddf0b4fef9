package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// RequestIDHeader carries the request correlation id between services.
const RequestIDHeader = "X-Request-ID"

const requestIDContextKey = "request_id"

// RequestIDMiddleware tags every request with a correlation id. An id
// supplied by the caller is kept; otherwise a fresh one is generated.
// The id is echoed on the response and attached to the request span so
// logs and traces can be joined on it.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(requestIDContextKey, requestID)
		c.Header(RequestIDHeader, requestID)

		if span := trace.SpanFromContext(c.Request.Context()); span.IsRecording() {
			span.SetAttributes(attribute.String("http.request_id", requestID))
		}

		c.Next()
	}
}

// RequestIDFromContext returns the correlation id assigned to the request,
// or an empty string when the middleware is not mounted.
func RequestIDFromContext(c *gin.Context) string {
	if id, ok := c.Get(requestIDContextKey); ok {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}
