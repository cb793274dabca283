// Package kucoin implements the SourceAdapter for KuCoin spot tickers.
package kucoin

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
	tracerName = "github.com/fd1az/arbitrage-scanner/business/market/infra/kucoin"

	BaseAPIURL  = "https://api.kucoin.com"
	tickersPath = "/api/v1/market/allTickers"
	timePath    = "/api/v1/timestamp"

	codeOK = "200000"
)

var _ app.SourceAdapter = (*Provider)(nil)

// ProviderConfig holds configuration for the KuCoin provider.
type ProviderConfig struct {
	BaseURL     string
	Timeout     time.Duration
	QuoteAssets []string
	Limiter     *ratelimit.Limiter
}

type tickersResponse struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
	Data struct {
		Time   int64 `json:"time"`
		Ticker []struct {
			Symbol string `json:"symbol"` // BTC-USDT
			Buy    string `json:"buy"`    // best bid
			Sell   string `json:"sell"`   // best ask
			Vol    string `json:"vol"`    // base currency
		} `json:"ticker"`
	} `json:"data"`
}

// Provider fetches KuCoin spot tickers.
type Provider struct {
	config ProviderConfig
	client httpclient.Client
	logger logger.LoggerInterface
	tracer trace.Tracer
}

// NewProvider creates a new KuCoin provider.
func NewProvider(cfg ProviderConfig, log logger.LoggerInterface) (*Provider, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = BaseAPIURL
	}
	client, err := ticker.NewClient(ticker.ClientConfig{
		Name:    "kucoin",
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
func (p *Provider) Name() string { return "kucoin" }

// Connect verifies the API is reachable.
func (p *Provider) Connect(ctx context.Context) error {
	var resp struct {
		Code string `json:"code"`
		Data int64  `json:"data"`
	}
	if err := ticker.Get(ctx, p.client, "kucoin", timePath, nil, &resp); err != nil {
		return err
	}
	return checkCode(timePath, resp.Code, "")
}

// FetchQuotes returns every spot ticker quoted in a configured quote asset.
func (p *Provider) FetchQuotes(ctx context.Context) ([]domain.Quote, error) {
	ctx, span := p.tracer.Start(ctx, "kucoin.fetch_quotes")
	defer span.End()

	var resp tickersResponse
	err := ticker.Get(ctx, p.client, "kucoin", tickersPath, nil, &resp)
	if err == nil {
		err = checkCode(tickersPath, resp.Code, resp.Msg)
	}
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	rows := resp.Data.Ticker
	c := ticker.NewCollector("kucoin", p.config.QuoteAssets, time.Now(), len(rows))
	for _, r := range rows {
		c.Add(r.Symbol, r.Buy, r.Sell, r.Vol)
	}

	span.SetAttributes(
		attribute.Int("rows", len(rows)),
		attribute.Int("quotes", len(c.Quotes())),
	)
	p.logger.Debug(ctx, "fetched tickers", "source", "kucoin", "quotes", len(c.Quotes()), "dropped", c.Dropped())

	return c.Quotes(), nil
}

func checkCode(path, code, msg string) error {
	if code == codeOK {
		return nil
	}
	return apperror.New(apperror.CodeSourceAPIError,
		apperror.WithContext(fmt.Sprintf("kucoin %s: code %s: %s", path, code, msg)))
}
