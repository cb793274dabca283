package httpclient

import (
	"context"
	"net"
	"net/http"
	"net/http/httptrace"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/httptrace/otelhttptrace"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	instrumentationName = "github.com/fd1az/arbitrage-scanner/internal/httpclient"
	userAgent           = "arbitrage-scanner"

	defaultDialKeepAlive   = 10 * time.Second
	defaultRequestTimeout  = 10 * time.Second
	defaultMaxConnsPerHost = 8
	defaultIdleConnTimeout = 2 * time.Minute

	metricRequestCounter  = "http_client_requests_total"
	metricRequestDuration = "http_client_request_duration_seconds"
)

// Client builds requests against one upstream API.
type Client interface {
	NewRequest() Request
	NewRequestWithOptions(opts ...RequestOption) Request
}

// InstrumentedClient is the Client shared by all requests of one provider.
type InstrumentedClient struct {
	http     *http.Client
	opts     *ClientOptions
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

var _ Client = (*InstrumentedClient)(nil)

// NewInstrumentedClient creates a client whose transport is wrapped with
// otelhttp so every round trip carries a client span and httptrace events.
func NewInstrumentedClient(opts ...ClientOption) (*InstrumentedClient, error) {
	options := newClientOptions(opts...)
	if options.tracer == nil {
		options.tracer = otel.Tracer(instrumentationName)
	}

	transport := &http.Transport{
		Proxy:           http.ProxyFromEnvironment,
		DialContext:     (&net.Dialer{KeepAlive: defaultDialKeepAlive}).DialContext,
		MaxConnsPerHost: defaultMaxConnsPerHost,
		IdleConnTimeout: defaultIdleConnTimeout,
	}

	meter := otel.Meter(instrumentationName,
		metric.WithInstrumentationAttributes(attribute.String("provider", options.providerName)))

	requests, err := meter.Int64Counter(metricRequestCounter,
		metric.WithDescription("Outbound HTTP requests by provider and outcome"))
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram(metricRequestDuration,
		metric.WithDescription("Outbound HTTP request latency"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	return &InstrumentedClient{
		http: &http.Client{
			Timeout: options.requestTimeout,
			Transport: otelhttp.NewTransport(transport,
				otelhttp.WithClientTrace(func(ctx context.Context) *httptrace.ClientTrace {
					return otelhttptrace.NewClientTrace(ctx)
				}),
			),
		},
		opts:     options,
		requests: requests,
		duration: duration,
	}, nil
}

// NewRequest creates a request builder.
func (c *InstrumentedClient) NewRequest() Request {
	return c.NewRequestWithOptions()
}

// NewRequestWithOptions creates a request builder with per-request labels.
func (c *InstrumentedClient) NewRequestWithOptions(opts ...RequestOption) Request {
	var ro RequestOptions
	for _, o := range opts {
		o(&ro)
	}

	headers := make(map[string]string, len(c.opts.headers)+1)
	headers["User-Agent"] = userAgent
	for k, v := range c.opts.headers {
		headers[k] = v
	}

	return &requestBuilder{
		client:  c,
		headers: headers,
		labels:  ro.labels,
	}
}

func (c *InstrumentedClient) record(ctx context.Context, labels []Label, success bool, elapsed time.Duration) {
	attrs := make([]attribute.KeyValue, 0, len(labels)+2)
	attrs = append(attrs,
		attribute.String("provider", c.opts.providerName),
		attribute.Bool("success", success),
	)
	for _, l := range labels {
		attrs = append(attrs, attribute.String(l.Key, l.Value))
	}

	set := metric.WithAttributes(attrs...)
	c.requests.Add(ctx, 1, set)
	c.duration.Record(ctx, elapsed.Seconds(), set)
}
