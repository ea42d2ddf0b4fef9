// Package logging provides the structured logger used across the service.
// Logs are slog records; when telemetry is enabled they are exported over
// OTLP alongside traces, otherwise they go to stdout as JSON.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// StandardLogger wraps slog with the field vocabulary the service uses:
// component, request_id, user_id, dataset_id and forecast method. All
// helpers return plain *slog.Logger values so call sites stay ordinary
// slog code.
type StandardLogger struct {
	base     *slog.Logger
	shutdown func(context.Context) error
}

// NewStandardLogger returns a logger writing JSON to stdout. In the
// development environment it writes human-readable text instead.
func NewStandardLogger(level, environment string) *StandardLogger {
	return newWriterLogger(os.Stdout, level, environment)
}

// NewStandardOTLPLogger returns a logger that exports records over OTLP.
// If the exporter cannot be constructed the logger falls back to stdout;
// a service should not fail to boot because a collector is unreachable.
func NewStandardOTLPLogger(cfg OTLPConfig) *StandardLogger {
	handler, shutdown, err := newOTLPHandler(cfg)
	if err != nil || handler == nil {
		return NewStandardLogger(cfg.LogLevel, cfg.Environment)
	}
	return &StandardLogger{
		base:     slog.New(handler),
		shutdown: shutdown,
	}
}

func newWriterLogger(w io.Writer, level, environment string) *StandardLogger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	var handler slog.Handler
	if environment == "development" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return &StandardLogger{base: slog.New(handler)}
}

// Logger returns the underlying slog logger.
func (l *StandardLogger) Logger() *slog.Logger {
	return l.base
}

// Shutdown flushes any buffered export pipeline. A no-op for stdout
// loggers.
func (l *StandardLogger) Shutdown(ctx context.Context) error {
	if l.shutdown == nil {
		return nil
	}
	return l.shutdown(ctx)
}

// WithComponent tags records with the emitting component.
func (l *StandardLogger) WithComponent(component string) *slog.Logger {
	return l.base.With("component", component)
}

// WithRequestID tags records with the request correlation ID.
func (l *StandardLogger) WithRequestID(requestID string) *slog.Logger {
	return l.base.With("request_id", requestID)
}

// WithUserID tags records with the acting user.
func (l *StandardLogger) WithUserID(userID string) *slog.Logger {
	return l.base.With("user_id", userID)
}

// WithDataset tags records with the dataset being analyzed.
func (l *StandardLogger) WithDataset(datasetID string) *slog.Logger {
	return l.base.With("dataset_id", datasetID)
}

// WithMethod tags records with the forecasting method in use.
func (l *StandardLogger) WithMethod(method string) *slog.Logger {
	return l.base.With("method", method)
}

// WithError tags records with an error message.
func (l *StandardLogger) WithError(err error) *slog.Logger {
	if err == nil {
		return l.base
	}
	return l.base.With("error", err.Error())
}

// LogStartup records service boot with its version and listen port.
func (l *StandardLogger) LogStartup(service, version string, port int) {
	l.base.Info("service starting",
		"event", "startup",
		"service", service,
		"version", version,
		"port", port,
	)
}

// LogShutdown records service shutdown and why it happened.
func (l *StandardLogger) LogShutdown(service, reason string) {
	l.base.Info("service stopping",
		"event", "shutdown",
		"service", service,
		"reason", reason,
	)
}

// LogForecastRun records one completed forecast: the method that ran, the
// dataset it ran over, and how long it took.
func (l *StandardLogger) LogForecastRun(method, datasetID string, durationMs int64) {
	l.base.Info("forecast completed",
		"event", "forecast",
		"method", method,
		"dataset_id", datasetID,
		"duration_ms", durationMs,
	)
}

// LogCacheOperation records a cache lookup or store at debug level.
func (l *StandardLogger) LogCacheOperation(operation, key string, hit bool, durationMs int64) {
	l.base.Debug("cache operation",
		"event", "cache",
		"operation", operation,
		"key", key,
		"hit", hit,
		"duration_ms", durationMs,
	)
}

// ParseLevel maps a level name to its slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
