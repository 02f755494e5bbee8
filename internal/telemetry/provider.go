// Package telemetry wires OpenTelemetry tracing and metrics for discovery
// runs. Everything is a noop unless enabled in configuration.
package telemetry

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

func noopShutdown(context.Context) error { return nil }

// tracing is the installed tracer provider and how to stop it
var tracing struct {
	sync.RWMutex
	provider trace.TracerProvider
	shutdown func(context.Context) error
}

func newResource(ctx context.Context, cfg Config) (*resource.Resource, error) {
	return resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
			semconv.DeploymentEnvironment(cfg.Environment),
		),
		resource.WithTelemetrySDK(),
	)
}

// hasScheme tells a full collector URL apart from host:port
func hasScheme(endpoint string) bool {
	return strings.Contains(endpoint, "://")
}

// InitProvider installs the global tracer provider. Disabled telemetry
// installs a noop provider; enabled telemetry without an endpoint samples
// spans without exporting them.
func InitProvider(ctx context.Context, cfg Config) (func(context.Context) error, error) {
	tracing.Lock()
	defer tracing.Unlock()

	if !cfg.Enabled {
		tracing.provider, tracing.shutdown = noop.NewTracerProvider(), noopShutdown
		otel.SetTracerProvider(tracing.provider)
		return tracing.shutdown, nil
	}

	res, err := newResource(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("telemetry resource: %w", err)
	}

	var sampler sdktrace.Sampler = sdktrace.AlwaysSample()
	if cfg.SampleRate < 1 {
		sampler = sdktrace.TraceIDRatioBased(cfg.SampleRate)
	}
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sampler)),
	}

	if cfg.Endpoint != "" {
		endpoint := otlptracehttp.WithEndpoint(cfg.Endpoint)
		if hasScheme(cfg.Endpoint) {
			endpoint = otlptracehttp.WithEndpointURL(cfg.Endpoint)
		}
		exporter, err := otlptracehttp.New(ctx, endpoint, otlptracehttp.WithCompression(otlptracehttp.GzipCompression))
		if err != nil {
			return nil, fmt.Errorf("otlp trace exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)))
	}

	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	tracing.provider, tracing.shutdown = tp, tp.Shutdown
	return tracing.shutdown, nil
}

// Shutdown flushes and stops the tracer provider
func Shutdown(ctx context.Context) error {
	tracing.RLock()
	shutdown := tracing.shutdown
	tracing.RUnlock()

	if shutdown == nil {
		return nil
	}
	return shutdown(ctx)
}

// GetTracerProvider returns the installed provider, or a noop one before
// InitProvider runs.
func GetTracerProvider() trace.TracerProvider {
	tracing.RLock()
	defer tracing.RUnlock()

	if tracing.provider == nil {
		return noop.NewTracerProvider()
	}
	return tracing.provider
}
