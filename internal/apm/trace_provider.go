package apm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"

	"github.com/fd1az/arbitrage-scanner/internal/logger"
)

type Provider string

const (
	ZipkinProvider   Provider = "zipkin"
	OTLPGRPCProvider Provider = "otlp-grpc"
	OTLPHTTPProvider Provider = "otlp-http"
	ConsoleProvider  Provider = "console"
	EmptyProvider    Provider = "none"
)

type TraceProvider interface {
	Stop() error
}

type traceProvider struct {
	tp *sdktrace.TracerProvider
}

// Settings describes where spans are exported.
type Settings struct {
	ServiceName string
	Endpoint    string
	Headers     map[string]string
	Insecure    bool
}

type TracerOptions struct {
	exporter           sdktrace.SpanExporter
	tracerProviderName string
	useEmpty           bool
}

type TracerOption func(*TracerOptions)

// WithProvider selects an exporter. Unknown providers and exporter
// construction failures fall back to the empty provider.
func WithProvider(provider Provider, settings Settings, log logger.LoggerInterface) TracerOption {
	var (
		exp sdktrace.SpanExporter
		err error
	)

	switch provider {
	case ZipkinProvider:
		exp, err = zipkin.New(settings.Endpoint)
	case OTLPGRPCProvider:
		opts := []otlptracegrpc.Option{
			otlptracegrpc.WithEndpointURL(settings.Endpoint),
			otlptracegrpc.WithHeaders(settings.Headers),
		}
		if settings.Insecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		exp, err = otlptracegrpc.New(context.Background(), opts...)
	case OTLPHTTPProvider:
		opts := []otlptracehttp.Option{
			otlptracehttp.WithEndpointURL(settings.Endpoint),
			otlptracehttp.WithHeaders(settings.Headers),
		}
		if settings.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		exp, err = otlptracehttp.New(context.Background(), opts...)
	case ConsoleProvider:
		exp, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	case EmptyProvider, "":
		return useEmpty()
	default:
		log.Warn(context.Background(), "TracerProvider not found, using EmptyProvider", "provider", provider)
		return useEmpty()
	}

	if err != nil {
		log.Error(context.Background(), "error initializing trace exporter", "provider", provider, "error", err)
		return useEmpty()
	}

	log.Info(context.Background(), "trace exporter initialized", "provider", provider, "endpoint", settings.Endpoint)
	return func(option *TracerOptions) {
		option.exporter = exp
		option.tracerProviderName = string(provider)
	}
}

func useEmpty() TracerOption {
	return func(option *TracerOptions) {
		option.useEmpty = true
		option.tracerProviderName = string(EmptyProvider)
	}
}

// ParseHeaders parses "k=v,k2=v2" into a header map.
func ParseHeaders(raw string) (map[string]string, error) {
	headers := make(map[string]string)
	if strings.TrimSpace(raw) == "" {
		return headers, nil
	}
	for _, pair := range strings.Split(raw, ",") {
		kv := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(kv) != 2 || kv[0] == "" {
			return nil, fmt.Errorf("invalid header %q, expected key=value", pair)
		}
		headers[kv[0]] = kv[1]
	}
	return headers, nil
}

func NewTraceProvider(serviceName string, options ...TracerOption) TraceProvider {
	opts := &TracerOptions{}

	for _, opt := range options {
		opt(opts)
	}

	if opts.useEmpty || opts.exporter == nil {
		return NewEmptyTraceProvider()
	}

	rsrc, _ := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(serviceName),
			attribute.String("otel.provider", opts.tracerProviderName),
		))

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(opts.exporter),
		sdktrace.WithResource(rsrc),
	)

	// Set global trace provider
	otel.SetTracerProvider(tp)

	// Set trace propagator
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))

	return &traceProvider{
		tp,
	}
}

func (o *traceProvider) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5) //nolint:gomnd
	defer cancel()

	if err := o.tp.Shutdown(ctx); err != nil {
		return err
	}

	return nil
}
