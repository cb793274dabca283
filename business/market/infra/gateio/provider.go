// Package gateio implements the SourceAdapter for Gate.io v4 spot tickers.
package gateio

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/arbitrage-scanner/business/market/app"
	"github.com/fd1az/arbitrage-scanner/business/market/domain"
	"github.com/fd1az/arbitrage-scanner/business/market/infra/ticker"
	"github.com/fd1az/arbitrage-scanner/internal/httpclient"
	"github.com/fd1az/arbitrage-scanner/internal/logger"
	"github.com/fd1az/arbitrage-scanner/internal/ratelimit"
)

const (
	tracerName = "github.com/fd1az/arbitrage-scanner/business/market/infra/gateio"

	BaseAPIURL  = "https://api.gateio.ws"
	tickersPath = "/api/v4/spot/tickers"
	timePath    = "/api/v4/spot/time"
)

var _ app.SourceAdapter = (*Provider)(nil)

// ProviderConfig holds configuration for the Gate.io provider.
type ProviderConfig struct {
	BaseURL     string
	Timeout     time.Duration
	QuoteAssets []string
	Limiter     *ratelimit.Limiter
}

type tickerRow struct {
	CurrencyPair string `json:"currency_pair"` // BTC_USDT
	HighestBid   string `json:"highest_bid"`
	LowestAsk    string `json:"lowest_ask"`
	BaseVolume   string `json:"base_volume"`
}

// Provider fetches Gate.io spot tickers.
type Provider struct {
	config ProviderConfig
	client httpclient.Client
	logger logger.LoggerInterface
	tracer trace.Tracer
}

// NewProvider creates a new Gate.io provider.
func NewProvider(cfg ProviderConfig, log logger.LoggerInterface) (*Provider, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = BaseAPIURL
	}
	client, err := ticker.NewClient(ticker.ClientConfig{
		Name:    "gateio",
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
func (p *Provider) Name() string { return "gateio" }

// Connect verifies the API is reachable.
func (p *Provider) Connect(ctx context.Context) error {
	var resp struct {
		ServerTime int64 `json:"server_time"`
	}
	return ticker.Get(ctx, p.client, "gateio", timePath, nil, &resp)
}

// FetchQuotes returns every spot ticker quoted in a configured quote asset.
func (p *Provider) FetchQuotes(ctx context.Context) ([]domain.Quote, error) {
	ctx, span := p.tracer.Start(ctx, "gateio.fetch_quotes")
	defer span.End()

	var rows []tickerRow
	if err := ticker.Get(ctx, p.client, "gateio", tickersPath, nil, &rows); err != nil {
		span.RecordError(err)
		return nil, err
	}

	c := ticker.NewCollector("gateio", p.config.QuoteAssets, time.Now(), len(rows))
	for _, r := range rows {
		c.Add(r.CurrencyPair, r.HighestBid, r.LowestAsk, r.BaseVolume)
	}

	span.SetAttributes(
		attribute.Int("rows", len(rows)),
		attribute.Int("quotes", len(c.Quotes())),
	)
	p.logger.Debug(ctx, "fetched tickers", "source", "gateio", "quotes", len(c.Quotes()), "dropped", c.Dropped())

	return c.Quotes(), nil
}
