package observe

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.39.0"
)

// ProviderConfig configures the OpenTelemetry metric provider.
type ProviderConfig struct {
	// ServiceName is the service name reported in telemetry. Default: "signbridge".
	ServiceName string

	// ServiceVersion is the service version reported in telemetry.
	ServiceVersion string

	// Reader replaces the Prometheus exporter. Tests pass a ManualReader.
	Reader sdkmetric.Reader
}

// Provider is the installed meter provider and the Metrics built on it.
type Provider struct {
	MeterProvider *sdkmetric.MeterProvider
	Metrics       *Metrics
}

// InitProvider builds a MeterProvider, registers it as the global OTel
// provider and creates the signbridge instruments on it. Without a Reader the
// provider exports through Prometheus; the default Prometheus registry then
// serves the values.
//
// Call Shutdown in a defer from main().
func InitProvider(ctx context.Context, cfg ProviderConfig) (*Provider, error) {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "signbridge"
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, err
	}

	reader := cfg.Reader
	if reader == nil {
		if reader, err = promexporter.New(); err != nil {
			return nil, err
		}
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	otel.SetMeterProvider(mp)

	metrics, err := NewMetrics(mp)
	if err != nil {
		return nil, errors.Join(err, mp.Shutdown(ctx))
	}
	return &Provider{MeterProvider: mp, Metrics: metrics}, nil
}

// Shutdown flushes and closes the provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	return p.MeterProvider.Shutdown(ctx)
}
