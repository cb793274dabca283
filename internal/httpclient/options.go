// Package httpclient provides the instrumented HTTP client used by every
// exchange and lookup adapter: OTel spans and metrics, an optional token
// bucket and an optional circuit breaker around each round trip.
package httpclient

import (
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/arbitrage-scanner/internal/circuitbreaker"
	"github.com/fd1az/arbitrage-scanner/internal/ratelimit"
)

// TraceOption specifies what to record on request spans.
type TraceOption string

const (
	TraceRequest  TraceOption = "request"
	TraceResponse TraceOption = "response"
)

// ClientOptions holds configuration for the instrumented HTTP client.
type ClientOptions struct {
	providerName   string
	requestTimeout time.Duration
	headers        map[string]string
	baseURL        string
	tracer         trace.Tracer
	traceRequest   bool
	traceResponse  bool
	limiter        *ratelimit.Limiter
	breaker        *circuitbreaker.CircuitBreaker[*Response]
}

// ClientOption configures ClientOptions.
type ClientOption func(*ClientOptions)

func newClientOptions(opts ...ClientOption) *ClientOptions {
	options := &ClientOptions{providerName: "default", requestTimeout: defaultRequestTimeout}
	for _, o := range opts {
		o(options)
	}
	return options
}

// WithProviderName sets the provider label on metrics and spans.
func WithProviderName(name string) ClientOption {
	return func(o *ClientOptions) {
		if name != "" {
			o.providerName = name
		}
	}
}

// WithRequestTimeout bounds a whole round trip. Zero keeps the default.
func WithRequestTimeout(timeout time.Duration) ClientOption {
	return func(o *ClientOptions) {
		if timeout > 0 {
			o.requestTimeout = timeout
		}
	}
}

// WithHeaders sets default headers for all requests.
func WithHeaders(headers map[string]string) ClientOption {
	return func(o *ClientOptions) {
		o.headers = headers
	}
}

// WithBaseURL sets the prefix for relative request paths.
func WithBaseURL(url string) ClientOption {
	return func(o *ClientOptions) {
		o.baseURL = url
	}
}

// WithRateLimiter makes every request wait on l before it is sent.
func WithRateLimiter(l *ratelimit.Limiter) ClientOption {
	return func(o *ClientOptions) {
		o.limiter = l
	}
}

// WithCircuitBreaker routes every request through cb. Transport errors,
// 5xx and 429 responses count as failures.
func WithCircuitBreaker(cb *circuitbreaker.CircuitBreaker[*Response]) ClientOption {
	return func(o *ClientOptions) {
		o.breaker = cb
	}
}

// WithTraceOptions sets the tracer and what it records.
func WithTraceOptions(tracer trace.Tracer, opts ...TraceOption) ClientOption {
	return func(o *ClientOptions) {
		o.tracer = tracer
		for _, opt := range opts {
			switch opt {
			case TraceRequest:
				o.traceRequest = true
			case TraceResponse:
				o.traceResponse = true
			}
		}
	}
}

// RequestOptions holds per-request configuration.
type RequestOptions struct {
	labels []Label
}

// RequestOption configures a single request.
type RequestOption func(*RequestOptions)

// Label is an extra metric attribute, typically the endpoint.
type Label struct {
	Key   string
	Value string
}

// NewLabel creates a new label.
func NewLabel(key, value string) Label {
	return Label{Key: key, Value: value}
}

// WithLabels adds metric attributes to the request.
func WithLabels(labels ...Label) RequestOption {
	return func(o *RequestOptions) {
		o.labels = append(o.labels, labels...)
	}
}
