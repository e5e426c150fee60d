package metrics

import (
	"context"
	"fmt"
	"net/http"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// OTelExporter provides OpenTelemetry metrics export following OTel standards
type OTelExporter struct {
	meterProvider *sdkmetric.MeterProvider
	collector     Collector
	registry      *promclient.Registry

	meter         metric.Meter
	receivedGauge metric.Int64ObservableGauge
	statusGauge   metric.Int64ObservableGauge
}

// NewOTelExporter creates a new OpenTelemetry metrics exporter with Prometheus format.
// Each exporter owns its registry so independent instances never collide.
func NewOTelExporter(collector Collector) (*OTelExporter, error) {
	registry := promclient.NewRegistry()
	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("creating prometheus exporter: %w", err)
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
	)
	otel.SetMeterProvider(meterProvider)

	meter := meterProvider.Meter(
		"bonzobuddy-mockhook",
		metric.WithInstrumentationVersion("1.0.0"),
	)

	oe := &OTelExporter{
		meterProvider: meterProvider,
		collector:     collector,
		registry:      registry,
		meter:         meter,
	}

	if err := oe.registerInstruments(); err != nil {
		return nil, fmt.Errorf("registering instruments: %w", err)
	}

	return oe, nil
}

// registerInstruments creates and registers all OpenTelemetry metric instruments
func (oe *OTelExporter) registerInstruments() error {
	var err error

	oe.receivedGauge, err = oe.meter.Int64ObservableGauge(
		"webhook.received.count",
		metric.WithDescription("Number of webhook events received per integration"),
		metric.WithUnit("{events}"),
		metric.WithInt64Callback(oe.observeReceivedCounts),
	)
	if err != nil {
		return fmt.Errorf("creating received count gauge: %w", err)
	}

	oe.statusGauge, err = oe.meter.Int64ObservableGauge(
		"webhook.response.status",
		metric.WithDescription("Number of responses returned per HTTP status"),
		metric.WithUnit("{responses}"),
		metric.WithInt64Callback(oe.observeStatusCounts),
	)
	if err != nil {
		return fmt.Errorf("creating status count gauge: %w", err)
	}

	return nil
}

// observeReceivedCounts is a callback that reports received events per integration
func (oe *OTelExporter) observeReceivedCounts(ctx context.Context, observer metric.Int64Observer) error {
	counts, err := oe.collector.GetReceivedCounts(ctx)
	if err != nil {
		return err
	}

	for integration, count := range counts {
		observer.Observe(count, metric.WithAttributes(
			attribute.String("integration", integration),
		))
	}

	return nil
}

// observeStatusCounts is a callback that reports responses per status
func (oe *OTelExporter) observeStatusCounts(ctx context.Context, observer metric.Int64Observer) error {
	counts, err := oe.collector.GetStatusCounts(ctx)
	if err != nil {
		return err
	}

	for status, count := range counts {
		observer.Observe(count, metric.WithAttributes(
			attribute.String("http.status", status),
		))
	}

	return nil
}

// ServeHTTP serves Prometheus-formatted metrics from the exporter's registry
func (oe *OTelExporter) ServeHTTP() http.Handler {
	return promhttp.HandlerFor(oe.registry, promhttp.HandlerOpts{})
}

// Shutdown gracefully shuts down the meter provider
func (oe *OTelExporter) Shutdown(ctx context.Context) error {
	if oe.meterProvider != nil {
		return oe.meterProvider.Shutdown(ctx)
	}
	return nil
}
