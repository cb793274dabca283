// Package ticker holds the pieces shared by the REST ticker adapters.
package ticker

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"

	"github.com/fd1az/arbitrage-scanner/internal/apperror"
	"github.com/fd1az/arbitrage-scanner/internal/circuitbreaker"
	"github.com/fd1az/arbitrage-scanner/internal/httpclient"
	"github.com/fd1az/arbitrage-scanner/internal/logger"
	"github.com/fd1az/arbitrage-scanner/internal/ratelimit"
)

const defaultTimeout = 10 * time.Second

// ClientConfig configures an exchange REST client.
type ClientConfig struct {
	Name    string
	BaseURL string
	Timeout time.Duration
	// Limiter throttles outbound calls. Nil disables throttling.
	Limiter *ratelimit.Limiter
	// Breaker overrides the default breaker settings.
	Breaker *circuitbreaker.Config
}

// NewClient builds an instrumented client guarded by a circuit breaker.
func NewClient(cfg ClientConfig, log logger.LoggerInterface) (httpclient.Client, error) {
	if cfg.BaseURL == "" {
		return nil, apperror.New(apperror.CodeConfigurationError,
			apperror.WithContext(fmt.Sprintf("%s: base url is required", cfg.Name)))
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	bcfg := circuitbreaker.DefaultConfig(cfg.Name)
	if cfg.Breaker != nil {
		bcfg = *cfg.Breaker
	}
	bcfg.OnStateChange = func(name string, from, to gobreaker.State) {
		log.Warn(context.Background(), "circuit breaker state changed",
			"breaker", name, "from", from.String(), "to", to.String())
	}

	opts := []httpclient.ClientOption{
		httpclient.WithProviderName(cfg.Name),
		httpclient.WithBaseURL(cfg.BaseURL),
		httpclient.WithRequestTimeout(timeout),
		httpclient.WithTraceOptions(otel.Tracer("github.com/fd1az/arbitrage-scanner/business/market/"+cfg.Name),
			httpclient.TraceRequest, httpclient.TraceResponse),
		httpclient.WithHeaders(map[string]string{
			"Accept": "application/json",
		}),
		httpclient.WithCircuitBreaker(circuitbreaker.New[*httpclient.Response](bcfg)),
	}
	if cfg.Limiter != nil {
		opts = append(opts, httpclient.WithRateLimiter(cfg.Limiter))
	}

	client, err := httpclient.NewInstrumentedClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}
	return client, nil
}

// Get issues a GET and decodes the JSON body into result. Transport
// failures and non-2xx statuses are returned as source errors.
func Get(ctx context.Context, client httpclient.Client, source, path string, params map[string]string, result any) error {
	req := client.NewRequestWithOptions(
		httpclient.WithLabels(httpclient.NewLabel("endpoint", path)),
	).SetResult(result)
	if len(params) > 0 {
		req = req.SetQueryParams(params)
	}

	resp, err := req.Get(ctx, path)
	if err != nil {
		if apperror.IsAppError(err) {
			return err
		}
		return apperror.New(apperror.CodeSourceUnavailable,
			apperror.WithCause(err),
			apperror.WithContext(fmt.Sprintf("%s %s", source, path)))
	}
	if resp.IsError() {
		return apperror.New(apperror.CodeSourceAPIError,
			apperror.WithContext(fmt.Sprintf("%s %s: HTTP %d: %s", source, path, resp.StatusCode, truncate(resp.String(), 200))))
	}
	if resp.Result() == nil {
		return apperror.New(apperror.CodeInvalidFormat,
			apperror.WithContext(fmt.Sprintf("%s %s: undecodable body", source, path)))
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
