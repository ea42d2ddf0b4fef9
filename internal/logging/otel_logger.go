package logging

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"log/slog"
)

// OTLPConfig describes the OTLP log export pipeline.
type OTLPConfig struct {
	Enabled        bool
	Endpoint       string
	ServiceName    string
	ServiceVersion string
	Environment    string
	LogLevel       string
}

// newOTLPHandler builds a slog handler backed by a batching OTLP exporter.
// It returns a nil handler when export is disabled, leaving the caller on
// the stdout path.
func newOTLPHandler(cfg OTLPConfig) (slog.Handler, func(context.Context) error, error) {
	if !cfg.Enabled {
		return nil, nil, nil
	}

	ctx := context.Background()
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "localhost:4318"
	}
	// Accept both bare host:port and the URL form used by the trace
	// exporter configuration.
	if u, parseErr := url.Parse(endpoint); parseErr == nil && u.Host != "" {
		endpoint = u.Host
	}

	exporter, err := otlploghttp.New(ctx,
		otlploghttp.WithEndpoint(endpoint),
		otlploghttp.WithURLPath("/v1/logs"),
		otlploghttp.WithInsecure(),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("create OTLP log exporter: %w", err)
	}

	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironment(cfg.Environment),
	))
	if err != nil {
		return nil, nil, fmt.Errorf("create resource: %w", err)
	}

	provider := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
		sdklog.WithResource(res),
	)

	handler := &otelHandler{
		logger: provider.Logger(cfg.ServiceName),
		level:  ParseLevel(cfg.LogLevel),
	}
	return handler, provider.Shutdown, nil
}

// otelHandler adapts slog records to OpenTelemetry log records. Attributes
// added through WithAttrs are carried on the handler and prepended to every
// record; groups flatten into dotted key prefixes.
type otelHandler struct {
	logger otellog.Logger
	level  slog.Level
	attrs  []otellog.KeyValue
	prefix string
}

func (h *otelHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *otelHandler) Handle(ctx context.Context, record slog.Record) error {
	var rec otellog.Record
	rec.SetTimestamp(record.Time)
	rec.SetObservedTimestamp(time.Now())
	rec.SetSeverity(severityOf(record.Level))
	rec.SetSeverityText(record.Level.String())
	rec.SetBody(otellog.StringValue(record.Message))
	rec.AddAttributes(h.attrs...)
	record.Attrs(func(a slog.Attr) bool {
		rec.AddAttributes(otellog.String(h.prefix+a.Key, a.Value.String()))
		return true
	})
	h.logger.Emit(ctx, rec)
	return nil
}

func (h *otelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = make([]otellog.KeyValue, len(h.attrs), len(h.attrs)+len(attrs))
	copy(next.attrs, h.attrs)
	for _, a := range attrs {
		next.attrs = append(next.attrs, otellog.String(h.prefix+a.Key, a.Value.String()))
	}
	return &next
}

func (h *otelHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

// severityOf maps slog levels onto the OTLP severity scale. Custom levels
// fall into the band they sit in.
func severityOf(level slog.Level) otellog.Severity {
	switch {
	case level < slog.LevelInfo:
		return otellog.SeverityDebug
	case level < slog.LevelWarn:
		return otellog.SeverityInfo
	case level < slog.LevelError:
		return otellog.SeverityWarn
	default:
		return otellog.SeverityError
	}
}
