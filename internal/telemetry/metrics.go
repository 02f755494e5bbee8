package telemetry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const meterName = "github.com/felixgeelhaar/devflow"

var (
	globalMeterProvider   metric.MeterProvider
	globalMetricsShutdown func(context.Context) error
	meterMu               sync.RWMutex
	metrics               *Metrics
)

// Metrics holds the registered instruments
type Metrics struct {
	RunCounter    metric.Int64Counter
	StageDuration metric.Float64Histogram

	TrackerCallCounter  metric.Int64Counter
	TrackerLatency      metric.Float64Histogram
	TrackerErrorCounter metric.Int64Counter

	TicketsPublished metric.Int64Counter
}

// InitMetricsProvider initializes the meter provider. Without an endpoint
// the global noop provider is used.
func InitMetricsProvider(ctx context.Context, cfg Config) (func(context.Context) error, error) {
	meterMu.Lock()
	defer meterMu.Unlock()

	globalMeterProvider = otel.GetMeterProvider()
	globalMetricsShutdown = func(context.Context) error { return nil }

	if cfg.Enabled && cfg.Endpoint != "" {
		res, err := newResource(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create resource for metrics: %w", err)
		}

		exporter, err := otlpmetrichttp.New(ctx, metricEndpointOption(cfg.Endpoint),
			otlpmetrichttp.WithCompression(otlpmetrichttp.GzipCompression))
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
		}

		mp := sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))),
		)
		globalMeterProvider = mp
		otel.SetMeterProvider(mp)
		globalMetricsShutdown = mp.Shutdown
	}

	m, err := newMetrics(globalMeterProvider)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}
	metrics = m

	return globalMetricsShutdown, nil
}

func metricEndpointOption(endpoint string) otlpmetrichttp.Option {
	if hasScheme(endpoint) {
		return otlpmetrichttp.WithEndpointURL(endpoint)
	}
	return otlpmetrichttp.WithEndpoint(endpoint)
}

func newMetrics(mp metric.MeterProvider) (*Metrics, error) {
	meter := mp.Meter(meterName)
	m := &Metrics{}
	var err error

	if m.RunCounter, err = meter.Int64Counter("devflow.discovery.runs",
		metric.WithDescription("Discovery runs by final state"),
		metric.WithUnit("{run}")); err != nil {
		return nil, err
	}
	if m.StageDuration, err = meter.Float64Histogram("devflow.discovery.stage.duration",
		metric.WithDescription("Time spent in each orchestrator stage"),
		metric.WithUnit("s")); err != nil {
		return nil, err
	}
	if m.TrackerCallCounter, err = meter.Int64Counter("devflow.tracker.calls",
		metric.WithDescription("Remote tracker calls"),
		metric.WithUnit("{call}")); err != nil {
		return nil, err
	}
	if m.TrackerLatency, err = meter.Float64Histogram("devflow.tracker.latency",
		metric.WithDescription("Remote tracker call latency"),
		metric.WithUnit("s")); err != nil {
		return nil, err
	}
	if m.TrackerErrorCounter, err = meter.Int64Counter("devflow.tracker.errors",
		metric.WithDescription("Failed remote tracker calls"),
		metric.WithUnit("{error}")); err != nil {
		return nil, err
	}
	if m.TicketsPublished, err = meter.Int64Counter("devflow.tickets.published",
		metric.WithDescription("Tickets created in the tracker"),
		metric.WithUnit("{ticket}")); err != nil {
		return nil, err
	}

	return m, nil
}

// GetMetrics returns the registered instruments, or an empty set before
// InitMetricsProvider has run
func GetMetrics() *Metrics {
	meterMu.RLock()
	defer meterMu.RUnlock()

	if metrics != nil {
		return metrics
	}
	return &Metrics{}
}

// RecordRun counts a finished discovery run by its terminal state
func RecordRun(ctx context.Context, state string) {
	if m := GetMetrics(); m.RunCounter != nil {
		m.RunCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("state", state)))
	}
}

// RecordStageDuration records how long an orchestrator stage took
func RecordStageDuration(ctx context.Context, stage string, d time.Duration) {
	if m := GetMetrics(); m.StageDuration != nil {
		m.StageDuration.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String("stage", stage)))
	}
}

// RecordTrackerCall records one remote call and, if it failed, an error
func RecordTrackerCall(ctx context.Context, trackerName, operation string, d time.Duration, err error) {
	m := GetMetrics()
	attrs := metric.WithAttributes(
		attribute.String("tracker", trackerName),
		attribute.String("operation", operation),
	)

	if m.TrackerCallCounter != nil {
		m.TrackerCallCounter.Add(ctx, 1, attrs)
	}
	if m.TrackerLatency != nil {
		m.TrackerLatency.Record(ctx, d.Seconds(), attrs)
	}
	if err != nil && m.TrackerErrorCounter != nil {
		m.TrackerErrorCounter.Add(ctx, 1, attrs)
	}
}

// RecordTicketsPublished counts tickets created remotely
func RecordTicketsPublished(ctx context.Context, trackerName string, n int) {
	if m := GetMetrics(); m.TicketsPublished != nil {
		m.TicketsPublished.Add(ctx, int64(n), metric.WithAttributes(attribute.String("tracker", trackerName)))
	}
}

// ShutdownMetrics flushes and stops the meter provider
func ShutdownMetrics(ctx context.Context) error {
	meterMu.RLock()
	shutdown := globalMetricsShutdown
	meterMu.RUnlock()

	if shutdown != nil {
		return shutdown(ctx)
	}
	return nil
}
