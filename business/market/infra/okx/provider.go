// Package okx implements the SourceAdapter for OKX spot tickers.
package okx

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/arbitrage-scanner/business/market/app"
	"github.com/fd1az/arbitrage-scanner/business/market/domain"
	"github.com/fd1az/arbitrage-scanner/business/market/infra/ticker"
	"github.com/fd1az/arbitrage-scanner/internal/apperror"
	"github.com/fd1az/arbitrage-scanner/internal/httpclient"
	"github.com/fd1az/arbitrage-scanner/internal/logger"
	"github.com/fd1az/arbitrage-scanner/internal/ratelimit"
)

const (
	tracerName = "github.com/fd1az/arbitrage-scanner/business/market/infra/okx"

	BaseAPIURL  = "https://www.okx.com"
	tickersPath = "/api/v5/market/tickers"
	timePath    = "/api/v5/public/time"
)

var _ app.SourceAdapter = (*Provider)(nil)

// ProviderConfig holds configuration for the OKX provider.
type ProviderConfig struct {
	BaseURL     string
	Timeout     time.Duration
	QuoteAssets []string
	Limiter     *ratelimit.Limiter
}

type tickerRow struct {
	InstID string `json:"instId"` // BTC-USDT
	BidPx  string `json:"bidPx"`
	AskPx  string `json:"askPx"`
	Vol24h string `json:"vol24h"` // base currency
}

type envelope[T any] struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
	Data []T    `json:"data"`
}

// Provider fetches OKX spot tickers.
type Provider struct {
	config ProviderConfig
	client httpclient.Client
	logger logger.LoggerInterface
	tracer trace.Tracer
}

// NewProvider creates a new OKX provider.
func NewProvider(cfg ProviderConfig, log logger.LoggerInterface) (*Provider, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = BaseAPIURL
	}
	client, err := ticker.NewClient(ticker.ClientConfig{
		Name:    "okx",
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Limiter: cfg.Limiter,
	}, log)
	if err != nil {
		return nil, err
	}
	return &Provider{
		config: cfg,
		client: client,
		logger: log,
		tracer: otel.Tracer(tracerName),
	}, nil
}

// Name returns the exchange identifier.
func (p *Provider) Name() string { return "okx" }

// Connect verifies the API is reachable.
func (p *Provider) Connect(ctx context.Context) error {
	var resp envelope[map[string]string]
	if err := ticker.Get(ctx, p.client, "okx", timePath, nil, &resp); err != nil {
		return err
	}
	return checkCode(timePath, resp.Code, resp.Msg)
}

// FetchQuotes returns every spot ticker quoted in a configured quote asset.
func (p *Provider) FetchQuotes(ctx context.Context) ([]domain.Quote, error) {
	ctx, span := p.tracer.Start(ctx, "okx.fetch_quotes")
	defer span.End()

	var resp envelope[tickerRow]
	err := ticker.Get(ctx, p.client, "okx", tickersPath, map[string]string{"instType": "SPOT"}, &resp)
	if err == nil {
		err = checkCode(tickersPath, resp.Code, resp.Msg)
	}
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	c := ticker.NewCollector("okx", p.config.QuoteAssets, time.Now(), len(resp.Data))
	for _, r := range resp.Data {
		c.Add(r.InstID, r.BidPx, r.AskPx, r.Vol24h)
	}

	span.SetAttributes(
		attribute.Int("rows", len(resp.Data)),
		attribute.Int("quotes", len(c.Quotes())),
		attribute.Int("dropped", c.Dropped()),
	)
	p.logger.Debug(ctx, "fetched tickers", "source", "okx", "quotes", len(c.Quotes()), "dropped", c.Dropped())

	return c.Quotes(), nil
}

func checkCode(path, code, msg string) error {
	if code == "0" {
		return nil
	}
	return apperror.New(apperror.CodeSourceAPIError,
		apperror.WithContext(fmt.Sprintf("okx %s: code %s: %s", path, code, msg)))
}
