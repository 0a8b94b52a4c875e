// Package observability wires tracing and domain metrics for the monitor.
//
// Tracing is opt-in (OTEL_ENABLED). When enabled, spans from gin (otelgin),
// GORM (plugin/opentelemetry) and the service layer are exported over OTLP
// gRPC. Metrics are plain Prometheus collectors registered at init and served
// on /metrics.
package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"google.golang.org/grpc/credentials"

	"github.com/tbourn/go-job-monitor/internal/config"
)

// DefaultServiceName is reported when OTEL_SERVICE_NAME is empty.
const DefaultServiceName = "go-job-monitor"

// Identity is what the monitor reports about itself on every span. Project is
// the same PROJECT_NAME stamped on filed error records, so a trace can be
// matched to the records it produced.
type Identity struct {
	Service string
	Project string
	Version string
}

func (id Identity) attributes() []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		semconv.ServiceName(id.Service),
		semconv.ServiceVersion(id.Version),
	}
	if id.Project != "" {
		attrs = append(attrs, attribute.String("service.namespace", id.Project))
	}
	return attrs
}

// Swapped by tests.
var (
	dialExporter = func(ctx context.Context, opts ...otlptracegrpc.Option) (*otlptrace.Exporter, error) {
		return otlptrace.New(ctx, otlptracegrpc.NewClient(opts...))
	}
	buildResource = func(ctx context.Context, id Identity) (*resource.Resource, error) {
		return resource.New(ctx, resource.WithAttributes(id.attributes()...))
	}
)

func noopShutdown(context.Context) error { return nil }

// exporterOptions translates the endpoint settings. Without OTEL_EXPORTER_OTLP_INSECURE
// the collector is reached over TLS using the system roots.
func exporterOptions(cfg config.OTELConfig) []otlptracegrpc.Option {
	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		return append(opts, otlptracegrpc.WithInsecure())
	}
	return append(opts, otlptracegrpc.WithTLSCredentials(credentials.NewClientTLSFromCert(nil, "")))
}

// sampler honours an upstream sampling decision and otherwise keeps the given
// share of root traces. Out-of-range ratios are clamped.
func sampler(ratio float64) sdktrace.Sampler {
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
}

// SetupOTel installs the global tracer provider and W3C propagators and
// returns the provider's shutdown. Globals are left untouched on error and
// when tracing is disabled.
func SetupOTel(ctx context.Context, cfg config.OTELConfig, project, version string) (func(context.Context) error, error) {
	if !cfg.Enabled {
		return noopShutdown, nil
	}
	id := Identity{Service: cfg.ServiceName, Project: project, Version: version}
	if id.Service == "" {
		id.Service = DefaultServiceName
	}

	exp, err := dialExporter(ctx, exporterOptions(cfg)...)
	if err != nil {
		return nil, err
	}
	res, err := buildResource(ctx, id)
	if err != nil {
		_ = exp.Shutdown(ctx)
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithSampler(sampler(cfg.SampleRatio)),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{},
	))
	return tp.Shutdown, nil
}
