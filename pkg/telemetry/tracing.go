// Package telemetry sets up OpenTelemetry tracing for migration runs.
package telemetry

import (
	"context"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

// ServiceName identifies skillmig in exported traces
const ServiceName = "skillmig"

// Config represents the configuration for the telemetry system
type Config struct {
	Enabled        bool
	ServiceVersion string
	// Sampler is one of always, never or ratio.
	Sampler string
	Ratio   float64
}

// ShutdownFunc flushes and stops the tracer provider
type ShutdownFunc func(context.Context) error

// InitTracer installs a global tracer provider exporting over OTLP/HTTP.
// The exporter reads OTEL_EXPORTER_OTLP_ENDPOINT and OTEL_EXPORTER_OTLP_HEADERS.
// When tracing is disabled the global no-op provider stays in place.
func InitTracer(ctx context.Context, cfg Config) (ShutdownFunc, error) {
	if !cfg.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create resource")
	}

	exporter, err := otlptracehttp.New(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create trace exporter")
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(sdktrace.NewBatchSpanProcessor(
			exporter,
			sdktrace.WithMaxExportBatchSize(512),
			sdktrace.WithBatchTimeout(time.Second),
		)),
		sdktrace.WithSampler(Sampler(cfg)),
	)

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return func(ctx context.Context) error {
		var result *multierror.Error
		if err := provider.Shutdown(ctx); err != nil {
			result = multierror.Append(result, err)
		}
		if err := exporter.Shutdown(ctx); err != nil {
			result = multierror.Append(result, err)
		}
		return result.ErrorOrNil()
	}, nil
}

// Sampler returns the sampler selected by cfg. Unknown names sample
// everything.
func Sampler(cfg Config) sdktrace.Sampler {
	switch cfg.Sampler {
	case "never":
		return sdktrace.NeverSample()
	case "ratio":
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.Ratio))
	default:
		return sdktrace.AlwaysSample()
	}
}
