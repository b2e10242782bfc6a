package telemetry

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/rajesh-ms/learn-lego-programming/internal/telemetry"

// Span attribute keys
const (
	KindKey    = attribute.Key("telemetry.kind")
	MessageKey = attribute.Key("telemetry.message")
	ValueKey   = attribute.Key("telemetry.value")
)

// Config selects and describes the telemetry backend
type Config struct {
	ConnectionString string
	ServiceName      string
	Version          string
	Environment      string
}

// OTel is a Client that records every call as a short span
type OTel struct {
	tp     *sdktrace.TracerProvider
	tracer trace.Tracer
	log    *zap.SugaredLogger
}

var _ Client = (*OTel)(nil)

// New returns Noop when cfg has no connection string, otherwise an
// OpenTelemetry client exporting to stdout or to the ingestion endpoint.
func New(ctx context.Context, cfg Config, log *zap.SugaredLogger) (Client, error) {
	if strings.TrimSpace(cfg.ConnectionString) == "" {
		return Noop{}, nil
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	cs, err := ParseConnectionString(cfg.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("invalid telemetry connection string: %w", err)
	}

	exporter, err := buildExporter(ctx, cs, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create telemetry exporter: %w", err)
	}

	res, err := buildResource(ctx, cfg)
	if err != nil {
		log.Warnw("telemetry resource init failed (continuing)", "error", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)),
		sdktrace.WithResource(res),
	)
	return newOTel(tp, log), nil
}

// NewWithExporter builds a client that exports synchronously to exporter
func NewWithExporter(cfg Config, exporter sdktrace.SpanExporter, log *zap.SugaredLogger) *OTel {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	res, err := buildResource(context.Background(), cfg)
	if err != nil {
		log.Warnw("telemetry resource init failed (continuing)", "error", err)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithResource(res),
	)
	return newOTel(tp, log)
}

func newOTel(tp *sdktrace.TracerProvider, log *zap.SugaredLogger) *OTel {
	return &OTel{
		tp:     tp,
		tracer: tp.Tracer(instrumentationName),
		log:    log,
	}
}

func buildExporter(ctx context.Context, cs ConnectionString, log *zap.SugaredLogger) (sdktrace.SpanExporter, error) {
	if cs.Stdout {
		log.Debugw("telemetry using stdout exporter")
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	}

	endpoint := cs.IngestionEndpoint
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(endpoint.Host)}
	if endpoint.Scheme == "http" {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if path := strings.TrimSuffix(endpoint.Path, "/"); path != "" {
		opts = append(opts, otlptracehttp.WithURLPath(path))
	}
	if headers := cs.Headers(); headers != nil {
		opts = append(opts, otlptracehttp.WithHeaders(headers))
	}
	log.Debugw("telemetry using OTLP exporter", "endpoint", endpoint.String())
	return otlptracehttp.New(ctx, opts...)
}

func buildResource(ctx context.Context, cfg Config) (*resource.Resource, error) {
	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "lessonlint"
	}
	return resource.New(
		ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
			semconv.ServiceVersionKey.String(strings.TrimSpace(cfg.Version)),
			attribute.String("deployment.environment", strings.TrimSpace(cfg.Environment)),
		),
	)
}

// TrackEvent records a named event with string properties and numeric
// measurements
func (o *OTel) TrackEvent(name string, properties map[string]string, measurements map[string]float64) {
	attrs := append([]attribute.KeyValue{KindKey.String("event")}, propertyAttributes(properties)...)
	for _, k := range sortedKeys(measurements) {
		attrs = append(attrs, attribute.Float64("measurement."+k, measurements[k]))
	}
	o.record(name, attrs, nil)
}

// TrackMetric records a single named value
func (o *OTel) TrackMetric(name string, value float64, properties map[string]string) {
	attrs := append([]attribute.KeyValue{KindKey.String("metric"), ValueKey.Float64(value)}, propertyAttributes(properties)...)
	o.record(name, attrs, nil)
}

// TrackTrace records a free-form message
func (o *OTel) TrackTrace(message string, properties map[string]string) {
	attrs := append([]attribute.KeyValue{KindKey.String("trace"), MessageKey.String(message)}, propertyAttributes(properties)...)
	o.record("trace", attrs, nil)
}

// TrackException records err on an error-status span
func (o *OTel) TrackException(err error, properties map[string]string) {
	if err == nil {
		return
	}
	attrs := append([]attribute.KeyValue{KindKey.String("exception")}, propertyAttributes(properties)...)
	o.record("exception", attrs, err)
}

func (o *OTel) record(name string, attrs []attribute.KeyValue, err error) {
	_, span := o.tracer.Start(context.Background(), name, trace.WithAttributes(attrs...))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Flush exports buffered spans
func (o *OTel) Flush(ctx context.Context) error {
	if err := o.tp.ForceFlush(ctx); err != nil {
		o.log.Warnw("telemetry flush failed", "error", err)
		return err
	}
	return nil
}

// Shutdown flushes and stops the exporter
func (o *OTel) Shutdown(ctx context.Context) error {
	return o.tp.Shutdown(ctx)
}

func propertyAttributes(properties map[string]string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(properties))
	for _, k := range sortedKeys(properties) {
		attrs = append(attrs, attribute.String("property."+k, properties[k]))
	}
	return attrs
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
