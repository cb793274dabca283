// Package kucoin implements NetworkInfoProvider against the public KuCoin
// currency endpoint.
package kucoin

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
	"github.com/fd1az/arbitrage-scanner/internal/asset"
	"github.com/fd1az/arbitrage-scanner/internal/circuitbreaker"
	"github.com/fd1az/arbitrage-scanner/internal/httpclient"
	"github.com/fd1az/arbitrage-scanner/internal/logger"
	"github.com/fd1az/arbitrage-scanner/internal/ratelimit"
)

const (
	tracerName = "github.com/fd1az/arbitrage-scanner/business/transfer/infra/kucoin"

	Exchange     = "kucoin"
	BaseAPIURL   = "https://api.kucoin.com"
	currencyPath = "/api/v3/currencies/"
	codeSuccess  = "200000"

	defaultTimeout = 10 * time.Second
)

var _ app.NetworkInfoProvider = (*Provider)(nil)

// Config holds configuration for the KuCoin network provider.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Limiter *ratelimit.Limiter
}

type currencyResponse struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
	Data *struct {
		Currency string `json:"currency"`
		Chains   []struct {
			ChainName         string `json:"chainName"`
			ChainID           string `json:"chainId"`
			IsWithdrawEnabled bool   `json:"isWithdrawEnabled"`
			IsDepositEnabled  bool   `json:"isDepositEnabled"`
		} `json:"chains"`
	} `json:"data"`
}

// Provider lists KuCoin deposit/withdraw networks.
type Provider struct {
	client httpclient.Client
	logger logger.LoggerInterface
	tracer trace.Tracer
}

// NewProvider creates a KuCoin network provider.
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

// Networks returns the chains KuCoin lists for currency. KuCoin answers unknown
// currencies with a non-success code and no data; those are unsupported.
func (p *Provider) Networks(ctx context.Context, currency string) ([]domain.Network, error) {
	ctx, span := p.tracer.Start(ctx, "kucoin.networks",
		trace.WithAttributes(attribute.String("asset", currency)),
	)
	defer span.End()

	var resp currencyResponse
	path := currencyPath + url.PathEscape(strings.ToUpper(currency))
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
			apperror.WithContext("kucoin "+path))
	}
	switch {
	case r.StatusCode == http.StatusNotFound:
		return nil, unknownCurrency(currency)
	case r.StatusCode >= http.StatusInternalServerError || r.StatusCode == http.StatusTooManyRequests:
		return nil, apperror.New(apperror.CodeNetworkInfoFailed,
			apperror.WithContext(fmt.Sprintf("kucoin %s: HTTP %d", path, r.StatusCode)))
	case r.Result() == nil:
		return nil, apperror.New(apperror.CodeInvalidFormat,
			apperror.WithContext("kucoin "+path+": undecodable body"))
	}
	if resp.Code != codeSuccess || resp.Data == nil {
		return nil, unknownCurrency(currency)
	}

	networks := make([]domain.Network, 0, len(resp.Data.Chains))
	for _, c := range resp.Data.Chains {
		nw := domain.NewNetwork(c.ChainName, c.IsWithdrawEnabled, c.IsDepositEnabled)
		if !nw.Chain.IsResolved() {
			nw.Chain = asset.NormalizeChain(c.ChainID)
		}
		networks = append(networks, nw)
	}

	span.SetAttributes(attribute.Int("networks", len(networks)))
	return networks, nil
}

func unknownCurrency(currency string) error {
	return apperror.New(apperror.CodeNetworkInfoUnsupported,
		apperror.WithContext("kucoin: unknown currency "+currency))
}
