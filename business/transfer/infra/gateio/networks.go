// Package gateio implements NetworkInfoProvider against the public Gate.io
// currency endpoint.
package gateio

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/arbitrage-scanner/business/transfer/app"
	"github.com/fd1az/arbitrage-scanner/business/transfer/domain"
	"github.com/fd1az/arbitrage-scanner/internal/apperror"
	"github.com/fd1az/arbitrage-scanner/internal/circuitbreaker"
	"github.com/fd1az/arbitrage-scanner/internal/httpclient"
	"github.com/fd1az/arbitrage-scanner/internal/logger"
	"github.com/fd1az/arbitrage-scanner/internal/ratelimit"
)

const (
	tracerName = "github.com/fd1az/arbitrage-scanner/business/transfer/infra/gateio"

	Exchange     = "gateio"
	BaseAPIURL   = "https://api.gateio.ws"
	currencyPath = "/api/v4/spot/currencies/"

	defaultTimeout = 10 * time.Second
)

var _ app.NetworkInfoProvider = (*Provider)(nil)

// Config holds configuration for the Gate.io network provider.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Limiter *ratelimit.Limiter
}

type currencyResponse struct {
	Currency         string `json:"currency"`
	Delisted         bool   `json:"delisted"`
	WithdrawDisabled bool   `json:"withdraw_disabled"`
	DepositDisabled  bool   `json:"deposit_disabled"`
	Chains           []struct {
		Name             string `json:"name"`
		WithdrawDisabled bool   `json:"withdraw_disabled"`
		DepositDisabled  bool   `json:"deposit_disabled"`
	} `json:"chains"`
}

// Provider lists Gate.io deposit/withdraw networks.
type Provider struct {
	client httpclient.Client
	logger logger.LoggerInterface
	tracer trace.Tracer
}

// NewProvider creates a Gate.io network provider.
func NewProvider(cfg Config, log logger.LoggerInterface) (*Provider, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = BaseAPIURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	bcfg := circuitbreaker.DefaultConfig(Exchange + "-networks")
	bcfg.OnStateChange = func(name string, from, to gobreaker.State) {
		log.Warn(context.Background(), "circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
	}

	tracer := otel.Tracer(tracerName)
	opts := []httpclient.ClientOption{
		httpclient.WithProviderName(Exchange),
		httpclient.WithBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")),
		httpclient.WithRequestTimeout(cfg.Timeout),
		httpclient.WithTraceOptions(tracer, httpclient.TraceRequest, httpclient.TraceResponse),
		httpclient.WithHeaders(map[string]string{"Accept": "application/json"}),
		httpclient.WithCircuitBreaker(circuitbreaker.New[*httpclient.Response](bcfg)),
	}
	if cfg.Limiter != nil {
		opts = append(opts, httpclient.WithRateLimiter(cfg.Limiter))
	}

	client, err := httpclient.NewInstrumentedClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}
	return &Provider{client: client, logger: log, tracer: tracer}, nil
}

func (p *Provider) Exchange() string { return Exchange }

// Networks returns the chains Gate.io lists for asset. A delisted or
// unknown currency is unsupported.
func (p *Provider) Networks(ctx context.Context, asset string) ([]domain.Network, error) {
	ctx, span := p.tracer.Start(ctx, "gateio.networks",
		trace.WithAttributes(attribute.String("asset", asset)),
	)
	defer span.End()

	var resp currencyResponse
	path := currencyPath + url.PathEscape(strings.ToUpper(asset))
	r, err := p.client.NewRequestWithOptions(
		httpclient.WithLabels(httpclient.NewLabel("endpoint", currencyPath+"{currency}")),
	).SetResult(&resp).Get(ctx, path)
	if err != nil {
		span.RecordError(err)
		if apperror.IsAppError(err) {
			return nil, err
		}
		return nil, apperror.New(apperror.CodeNetworkInfoFailed,
			apperror.WithCause(err),
			apperror.WithContext("gateio "+path))
	}
	switch {
	case r.StatusCode == http.StatusNotFound:
		return nil, apperror.New(apperror.CodeNetworkInfoUnsupported,
			apperror.WithContext("gateio: unknown currency "+asset))
	case r.IsError():
		return nil, apperror.New(apperror.CodeNetworkInfoFailed,
			apperror.WithContext(fmt.Sprintf("gateio %s: HTTP %d", path, r.StatusCode)))
	case r.Result() == nil:
		return nil, apperror.New(apperror.CodeInvalidFormat,
			apperror.WithContext("gateio "+path+": undecodable body"))
	}
	if resp.Delisted {
		return nil, apperror.New(apperror.CodeNetworkInfoUnsupported,
			apperror.WithContext("gateio: delisted currency "+asset))
	}

	networks := make([]domain.Network, 0, len(resp.Chains))
	for _, c := range resp.Chains {
		networks = append(networks, domain.NewNetwork(c.Name,
			!c.WithdrawDisabled && !resp.WithdrawDisabled,
			!c.DepositDisabled && !resp.DepositDisabled,
		))
	}

	span.SetAttributes(attribute.Int("networks", len(networks)))
	return networks, nil
}
