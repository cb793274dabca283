package binance

import (
	"context"
	"encoding/json"
	"sync"
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
	"github.com/fd1az/arbitrage-scanner/internal/wsconn"
)

const (
	tracerName = "github.com/fd1az/arbitrage-scanner/business/market/infra/binance"

	BaseAPIURL   = "https://api.binance.com"
	StreamURL    = "wss://stream.binance.com:9443/ws/!ticker@arr"
	tickerPath   = "/api/v3/ticker/24hr"
	pingPath     = "/api/v3/ping"
	defaultStale = 30 * time.Second
)

var _ app.SourceAdapter = (*Provider)(nil)

// ProviderConfig holds configuration for the Binance provider.
type ProviderConfig struct {
	Name         string // exchange identifier, "binance" unless Binance-compatible
	BaseURL      string
	StreamURL    string // empty disables the websocket stream
	StaleTimeout time.Duration
	Timeout      time.Duration
	QuoteAssets  []string
	Limiter      *ratelimit.Limiter
}

// DefaultProviderConfig returns sensible defaults.
func DefaultProviderConfig() ProviderConfig {
	return ProviderConfig{
		Name:         "binance",
		BaseURL:      BaseAPIURL,
		StaleTimeout: defaultStale,
		Timeout:      10 * time.Second,
		QuoteAssets:  domain.DefaultQuoteAssets,
	}
}

type streamEntry struct {
	ticker     StreamTicker
	receivedAt time.Time
}

// Provider serves quotes from the ticker stream when it is fresh and falls
// back to the REST 24h ticker otherwise.
type Provider struct {
	config ProviderConfig
	client httpclient.Client
	stream *wsconn.Client
	logger logger.LoggerInterface
	tracer trace.Tracer

	mu          sync.RWMutex
	tickers     map[string]streamEntry
	lastMessage time.Time
}

// NewProvider creates a new Binance provider.
func NewProvider(cfg ProviderConfig, log logger.LoggerInterface) (*Provider, error) {
	if cfg.Name == "" {
		cfg.Name = "binance"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = BaseAPIURL
	}
	if cfg.StaleTimeout <= 0 {
		cfg.StaleTimeout = defaultStale
	}

	client, err := ticker.NewClient(ticker.ClientConfig{
		Name:    cfg.Name,
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Limiter: cfg.Limiter,
	}, log)
	if err != nil {
		return nil, err
	}

	p := &Provider{
		config:  cfg,
		client:  client,
		logger:  log,
		tracer:  otel.Tracer(tracerName),
		tickers: make(map[string]streamEntry),
	}

	if cfg.StreamURL != "" {
		stream, err := wsconn.New(wsconn.DefaultConfig(cfg.StreamURL, cfg.Name+"-ticker"))
		if err != nil {
			return nil, err
		}
		stream.OnMessage(p.handleMessage)
		stream.OnStateChange(func(state wsconn.State, err error) {
			p.logger.Info(context.Background(), "ticker stream state changed",
				"source", cfg.Name, "state", string(state), "error", err)
		})
		p.stream = stream
	}

	return p, nil
}

// Name returns the exchange identifier.
func (p *Provider) Name() string {
	return p.config.Name
}

// Connect opens the ticker stream when configured, otherwise pings the REST API.
// A failed stream dial is not fatal: quotes are served over REST meanwhile.
func (p *Provider) Connect(ctx context.Context) error {
	if p.stream != nil {
		if err := p.stream.Connect(ctx); err != nil {
			p.logger.Warn(ctx, "ticker stream connect failed, using REST", "source", p.config.Name, "error", err)
			go p.retryStream()
		}
	}

	var pong struct{}
	return ticker.Get(ctx, p.client, p.config.Name, pingPath, nil, &pong)
}

func (p *Provider) retryStream() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	if err := p.stream.ConnectWithRetry(ctx); err != nil {
		p.logger.Warn(ctx, "ticker stream unavailable", "source", p.config.Name, "error", err)
	}
}

// FetchQuotes returns the current best bid/ask for every symbol.
func (p *Provider) FetchQuotes(ctx context.Context) ([]domain.Quote, error) {
	ctx, span := p.tracer.Start(ctx, p.config.Name+".fetch_quotes")
	defer span.End()

	if quotes, ok := p.streamQuotes(); ok {
		span.SetAttributes(
			attribute.Int("quotes", len(quotes)),
			attribute.String("source", "websocket"),
		)
		return quotes, nil
	}

	quotes, err := p.restQuotes(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("quotes", len(quotes)),
		attribute.String("source", "http"),
	)
	if p.stream != nil {
		p.logger.Info(ctx, "quotes retrieved via HTTP fallback", "source", p.config.Name, "quotes", len(quotes))
	}
	return quotes, nil
}

func (p *Provider) restQuotes(ctx context.Context) ([]domain.Quote, error) {
	var rows []Ticker24hr
	if err := ticker.Get(ctx, p.client, p.config.Name, tickerPath, nil, &rows); err != nil {
		return nil, err
	}

	c := ticker.NewCollector(p.config.Name, p.config.QuoteAssets, time.Now(), len(rows))
	for _, r := range rows {
		c.Add(r.Symbol, r.BidPrice, r.AskPrice, r.Volume)
	}

	p.logger.Debug(ctx, "fetched tickers via HTTP",
		"source", p.config.Name,
		"rows", len(rows),
		"quotes", len(c.Quotes()),
		"dropped", c.Dropped())

	return c.Quotes(), nil
}

// streamQuotes builds quotes from the stream when it delivered recently.
func (p *Provider) streamQuotes() ([]domain.Quote, bool) {
	if p.stream == nil || !p.stream.IsConnected() {
		return nil, false
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	now := time.Now()
	if len(p.tickers) == 0 || now.Sub(p.lastMessage) > p.config.StaleTimeout {
		return nil, false
	}

	c := ticker.NewCollector(p.config.Name, p.config.QuoteAssets, now, len(p.tickers))
	for _, e := range p.tickers {
		if now.Sub(e.receivedAt) > p.config.StaleTimeout {
			continue
		}
		c.Add(e.ticker.Symbol, e.ticker.BidPrice, e.ticker.AskPrice, e.ticker.Volume)
	}
	return c.Quotes(), true
}

// handleMessage stores one !ticker@arr payload.
func (p *Provider) handleMessage(ctx context.Context, msg []byte) {
	var rows []StreamTicker
	if err := json.Unmarshal(msg, &rows); err != nil {
		p.logger.Debug(ctx, "ignoring non-ticker stream message", "source", p.config.Name, "error", err)
		return
	}

	now := time.Now()
	p.mu.Lock()
	for _, r := range rows {
		p.tickers[r.Symbol] = streamEntry{ticker: r, receivedAt: now}
	}
	p.lastMessage = now
	p.mu.Unlock()
}

// Close stops the ticker stream.
func (p *Provider) Close() error {
	if p.stream == nil {
		return nil
	}
	return p.stream.Close()
}
