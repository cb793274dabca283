// Package bybit implements the SourceAdapter for Bybit v5 spot tickers.
package bybit

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
	tracerName = "github.com/fd1az/arbitrage-scanner/business/market/infra/bybit"

	BaseAPIURL  = "https://api.bybit.com"
	tickersPath = "/v5/market/tickers"
	timePath    = "/v5/market/time"
)

var _ app.SourceAdapter = (*Provider)(nil)

// ProviderConfig holds configuration for the Bybit provider.
type ProviderConfig struct {
	BaseURL     string
	Timeout     time.Duration
	QuoteAssets []string
	Limiter     *ratelimit.Limiter
}

type tickersResponse struct {
	RetCode int    `json:"retCode"`
	RetMsg  string `json:"retMsg"`
	Result  struct {
		Category string `json:"category"`
		List     []struct {
			Symbol    string `json:"symbol"`
			Bid1Price string `json:"bid1Price"`
			Ask1Price string `json:"ask1Price"`
			Volume24h string `json:"volume24h"`
		} `json:"list"`
	} `json:"result"`
}

type timeResponse struct {
	RetCode int    `json:"retCode"`
	RetMsg  string `json:"retMsg"`
}

// Provider fetches Bybit spot tickers.
type Provider struct {
	config ProviderConfig
	client httpclient.Client
	logger logger.LoggerInterface
	tracer trace.Tracer
}

// NewProvider creates a new Bybit provider.
func NewProvider(cfg ProviderConfig, log logger.LoggerInterface) (*Provider, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = BaseAPIURL
	}
	client, err := ticker.NewClient(ticker.ClientConfig{
		Name:    "bybit",
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
func (p *Provider) Name() string { return "bybit" }

// Connect verifies the API is reachable.
func (p *Provider) Connect(ctx context.Context) error {
	var resp timeResponse
	if err := ticker.Get(ctx, p.client, "bybit", timePath, nil, &resp); err != nil {
		return err
	}
	return checkRetCode(timePath, resp.RetCode, resp.RetMsg)
}

// FetchQuotes returns every spot ticker quoted in a configured quote asset.
func (p *Provider) FetchQuotes(ctx context.Context) ([]domain.Quote, error) {
	ctx, span := p.tracer.Start(ctx, "bybit.fetch_quotes")
	defer span.End()

	var resp tickersResponse
	err := ticker.Get(ctx, p.client, "bybit", tickersPath, map[string]string{"category": "spot"}, &resp)
	if err == nil {
		err = checkRetCode(tickersPath, resp.RetCode, resp.RetMsg)
	}
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	rows := resp.Result.List
	c := ticker.NewCollector("bybit", p.config.QuoteAssets, time.Now(), len(rows))
	for _, r := range rows {
		c.Add(r.Symbol, r.Bid1Price, r.Ask1Price, r.Volume24h)
	}

	span.SetAttributes(
		attribute.Int("rows", len(rows)),
		attribute.Int("quotes", len(c.Quotes())),
	)
	p.logger.Debug(ctx, "fetched tickers", "source", "bybit", "quotes", len(c.Quotes()), "dropped", c.Dropped())

	return c.Quotes(), nil
}

func checkRetCode(path string, code int, msg string) error {
	if code == 0 {
		return nil
	}
	return apperror.New(apperror.CodeSourceAPIError,
		apperror.WithContext(fmt.Sprintf("bybit %s: retCode %d: %s", path, code, msg)))
}
