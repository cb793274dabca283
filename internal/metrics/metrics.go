// Package metrics owns the OTel meter provider. Instruments created through
// otel.Meter anywhere in the process land on the exporters configured here.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"
)

// Provider is the process-wide meter provider.
type Provider struct {
	meters   *sdkmetric.MeterProvider
	registry *prom.Registry

	shutdownOnce sync.Once
	shutdownErr  error
}

// NewProvider builds the SDK meter provider and installs it globally.
// With no exporter configured it falls back to Prometheus.
func NewProvider(ctx context.Context, opts ...Option) (*Provider, error) {
	var s settings
	for _, o := range opts {
		o(&s)
	}
	if len(s.exporters) == 0 {
		WithPrometheus()(&s)
	}

	p := &Provider{}
	var sdkOpts []sdkmetric.Option

	for _, exp := range s.exporters {
		switch exp.kind {
		case ExporterPrometheus:
			if p.registry != nil {
				continue
			}
			p.registry = prom.NewRegistry()
			p.registry.MustRegister(collectors.NewGoCollector())

			reader, err := prometheus.New(prometheus.WithRegisterer(p.registry))
			if err != nil {
				return nil, fmt.Errorf("prometheus exporter: %w", err)
			}
			sdkOpts = append(sdkOpts, sdkmetric.WithReader(reader))

		case ExporterOTLP:
			grpcOpts := []otlpmetricgrpc.Option{
				otlpmetricgrpc.WithEndpointURL(exp.endpoint),
				otlpmetricgrpc.WithHeaders(exp.headers),
			}
			if exp.insecure {
				grpcOpts = append(grpcOpts, otlpmetricgrpc.WithInsecure())
			}
			exporter, err := otlpmetricgrpc.New(ctx, grpcOpts...)
			if err != nil {
				return nil, fmt.Errorf("otlp metric exporter: %w", err)
			}
			sdkOpts = append(sdkOpts, sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)))
		}
	}

	if s.serviceName != "" {
		attrs := []attribute.KeyValue{semconv.ServiceNameKey.String(s.serviceName)}
		if s.serviceVersion != "" {
			attrs = append(attrs, semconv.ServiceVersionKey.String(s.serviceVersion))
		}
		sdkOpts = append(sdkOpts, sdkmetric.WithResource(resource.NewSchemaless(attrs...)))
	}

	p.meters = sdkmetric.NewMeterProvider(sdkOpts...)
	otel.SetMeterProvider(p.meters)
	return p, nil
}

// Meter returns a named meter from this provider.
func (p *Provider) Meter(name string, opts ...metric.MeterOption) metric.Meter {
	return p.meters.Meter(name, opts...)
}

// Handler serves the Prometheus scrape endpoint, or 404 when Prometheus is not enabled.
func (p *Provider) Handler() http.Handler {
	if p.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Shutdown flushes periodic readers and stops the provider. Later calls
// return the first result.
func (p *Provider) Shutdown(ctx context.Context) error {
	p.shutdownOnce.Do(func() {
		p.shutdownErr = p.meters.Shutdown(ctx)
	})
	return p.shutdownErr
}
