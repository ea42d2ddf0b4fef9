package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/datalyr/foresight-go/internal/telemetry"
)

var healthPaths = map[string]bool{
	"/health":       true,
	"/health/live":  true,
	"/health/ready": true,
}

// TelemetryMiddleware traces API requests. Health endpoints are skipped
// here; they have their own lightweight middleware below.
func TelemetryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if healthPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		// Continue a trace started by the caller, if any.
		ctx := otel.GetTextMapPropagator().Extract(
			c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))

		attrs := []attribute.KeyValue{
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.url", c.Request.URL.String()),
			attribute.String("http.host", c.Request.Host),
			attribute.String("http.user_agent", c.Request.UserAgent()),
			attribute.String("http.client_ip", c.ClientIP()),
		}
		if route := c.FullPath(); route != "" {
			attrs = append(attrs, attribute.String("http.route", route))
		}

		name := fmt.Sprintf("HTTP %s %s", c.Request.Method, c.Request.URL.Path)
		ctx, span := telemetry.GetHTTPTracer().Start(ctx, name,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attrs...),
		)
		defer span.End()
		c.Request = c.Request.WithContext(ctx)

		start := time.Now()
		c.Next()

		span.SetAttributes(attribute.Int64("http.response.size_bytes", int64(c.Writer.Size())))
		finishRequestSpan(span, c.Writer.Status(), start)
	}
}

// HealthCheckTelemetryMiddleware traces health endpoints with a reduced
// attribute set so probes stay cheap.
func HealthCheckTelemetryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := telemetry.GetHTTPTracer().Start(
			c.Request.Context(),
			"Health "+c.Request.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", c.Request.Method),
				attribute.String("span.type", "health_check"),
			),
		)
		defer span.End()
		c.Request = c.Request.WithContext(ctx)

		start := time.Now()
		c.Next()

		span.SetAttributes(attribute.String("health.status", healthStatus(c.Writer.Status())))
		finishRequestSpan(span, c.Writer.Status(), start)
	}
}

// finishRequestSpan records the response outcome on a server span.
func finishRequestSpan(span trace.Span, statusCode int, start time.Time) {
	span.SetAttributes(
		attribute.Int("http.status_code", statusCode),
		attribute.Int64("http.response.time_ms", time.Since(start).Milliseconds()),
	)
	if statusCode >= 400 {
		err := fmt.Errorf("HTTP %d", statusCode)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetStatus(codes.Ok, fmt.Sprintf("HTTP %d", statusCode))
}

func healthStatus(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "healthy"
	case code >= 400 && code < 500:
		return "client_error"
	case code >= 500:
		return "server_error"
	default:
		return "unknown"
	}
}

// RecordError records an error on the current request span.
func RecordError(c *gin.Context, err error, description string) {
	span := trace.SpanFromContext(c.Request.Context())
	if span.IsRecording() {
		span.RecordError(err)
		span.SetStatus(codes.Error, description)
	}
}

// AddSpanAttribute adds one attribute to the current request span,
// converting common Go types to their attribute counterpart.
func AddSpanAttribute(c *gin.Context, key string, value interface{}) {
	span := trace.SpanFromContext(c.Request.Context())
	if !span.IsRecording() {
		return
	}
	span.SetAttributes(spanAttr(key, value))
}

func spanAttr(key string, value interface{}) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	case bool:
		return attribute.Bool(key, v)
	default:
		return attribute.String(key, fmt.Sprintf("%v", value))
	}
}

// StartSpan starts a child span under the request context and swaps the
// request to carry it.
func StartSpan(c *gin.Context, name string) (context.Context, trace.Span) {
	ctx, span := telemetry.GetHTTPTracer().Start(
		c.Request.Context(), name, trace.WithSpanKind(trace.SpanKindServer))
	c.Request = c.Request.WithContext(ctx)
	return ctx, span
}
