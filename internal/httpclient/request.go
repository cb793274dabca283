package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/arbitrage-scanner/internal/apperror"
)

// maxTracedBody caps how much of a response body is copied onto a span.
const maxTracedBody = 4096

// Request builds and executes one read-only API call.
type Request interface {
	Get(ctx context.Context, path string) (*Response, error)

	SetHeader(key, value string) Request
	SetQueryParam(key, value string) Request
	SetQueryParams(params map[string]string) Request
	// SetResult decodes a JSON body into result. Decoding failures leave
	// Response.Result nil instead of failing the call.
	SetResult(result any) Request
}

// Response is a fully buffered http.Response.
type Response struct {
	*http.Response
	body   []byte
	result any
}

// Body returns the buffered response body.
func (r *Response) Body() []byte {
	return r.body
}

func (r *Response) String() string {
	return string(r.body)
}

// IsError reports a status code of 400 or above.
func (r *Response) IsError() bool {
	return r.StatusCode >= http.StatusBadRequest
}

// IsSuccess reports a status code below 400.
func (r *Response) IsSuccess() bool {
	return !r.IsError()
}

// Result returns the decoded body, or nil when decoding was not requested or failed.
func (r *Response) Result() any {
	return r.result
}

type requestBuilder struct {
	client  *InstrumentedClient
	headers map[string]string
	query   url.Values
	result  any
	labels  []Label
}

func (r *requestBuilder) SetHeader(key, value string) Request {
	r.headers[key] = value
	return r
}

func (r *requestBuilder) SetQueryParam(key, value string) Request {
	if r.query == nil {
		r.query = url.Values{}
	}
	r.query.Set(key, value)
	return r
}

func (r *requestBuilder) SetQueryParams(params map[string]string) Request {
	for k, v := range params {
		r.SetQueryParam(k, v)
	}
	return r
}

func (r *requestBuilder) SetResult(result any) Request {
	r.result = result
	return r
}

// Get waits on the rate limiter, runs the round trip through the circuit
// breaker when one is configured and records the outcome.
func (r *requestBuilder) Get(ctx context.Context, path string) (*Response, error) {
	c := r.client
	target := r.url(path)

	ctx, span := c.opts.tracer.Start(ctx, "http.get",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.url", target),
			attribute.String("provider", c.opts.providerName),
		),
	)
	defer span.End()

	if c.opts.traceRequest && len(r.query) > 0 {
		span.AddEvent("request.query", trace.WithAttributes(attribute.String("http.query", r.query.Encode())))
	}

	start := time.Now()
	fail := func(err error) (*Response, error) {
		r.recordError(span, err)
		c.record(ctx, r.labels, false, time.Since(start))
		return nil, err
	}

	if c.opts.limiter != nil {
		if err := c.opts.limiter.Wait(ctx); err != nil {
			return fail(err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fail(fmt.Errorf("failed to create request: %w", err))
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	resp, err := r.roundTrip(req)
	if err != nil {
		return fail(err)
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if c.opts.traceResponse {
		span.AddEvent("response.body", trace.WithAttributes(attribute.String("http.response_body", truncate(resp.body))))
	}
	if resp.IsError() {
		span.SetStatus(codes.Error, resp.Status)
	}

	if r.result != nil && len(resp.body) > 0 {
		if err := json.Unmarshal(resp.body, r.result); err != nil {
			span.RecordError(err)
		} else {
			resp.result = r.result
		}
	}

	c.record(ctx, r.labels, resp.IsSuccess(), time.Since(start))
	return resp, nil
}

func (r *requestBuilder) url(path string) string {
	target := path
	if base := r.client.opts.baseURL; base != "" && !strings.HasPrefix(path, "http") {
		target = strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(path, "/")
	}
	if len(r.query) > 0 {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + r.query.Encode()
	}
	return target
}

func (r *requestBuilder) roundTrip(req *http.Request) (*Response, error) {
	cb := r.client.opts.breaker
	if cb == nil {
		return r.send(req)
	}

	resp, err := cb.Execute(func() (*Response, error) {
		resp, err := r.send(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
			return resp, apperror.New(apperror.CodeSourceAPIError,
				apperror.WithContext(fmt.Sprintf("GET %s: %s", r.client.opts.providerName, resp.Status)))
		}
		return resp, nil
	})
	// A failing status is counted by the breaker but still returned to the caller.
	if resp != nil {
		return resp, nil
	}
	return nil, err
}

func (r *requestBuilder) send(req *http.Request) (*Response, error) {
	resp, err := r.client.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return &Response{Response: resp, body: body}, nil
}

func (r *requestBuilder) recordError(span trace.Span, err error) {
	span.RecordError(err)

	var netErr net.Error
	if errors.Is(err, context.Canceled) {
		span.SetAttributes(attribute.Bool("context.cancelled", true))
	}
	if errors.As(err, &netErr) && netErr.Timeout() {
		span.SetAttributes(attribute.Bool("request.timeout", true))
	}
	span.SetStatus(codes.Error, err.Error())
}

func truncate(body []byte) string {
	if len(body) > maxTracedBody {
		return string(body[:maxTracedBody]) + "..."
	}
	return string(body)
}
