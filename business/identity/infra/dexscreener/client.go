// Package dexscreener implements ContractLookup against the DexScreener search API.
package dexscreener

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/arbitrage-scanner/business/identity/app"
	"github.com/fd1az/arbitrage-scanner/business/identity/domain"
	"github.com/fd1az/arbitrage-scanner/internal/apperror"
	"github.com/fd1az/arbitrage-scanner/internal/circuitbreaker"
	"github.com/fd1az/arbitrage-scanner/internal/httpclient"
	"github.com/fd1az/arbitrage-scanner/internal/logger"
	"github.com/fd1az/arbitrage-scanner/internal/ratelimit"
)

const (
	tracerName = "github.com/fd1az/arbitrage-scanner/business/identity/infra/dexscreener"

	Name       = "dexscreener"
	BaseAPIURL = "https://api.dexscreener.com"
	searchPath = "/latest/dex/search"

	defaultTimeout = 10 * time.Second
)

var _ app.ContractLookup = (*Client)(nil)

// Config holds configuration for the DexScreener client.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Limiter *ratelimit.Limiter
	// MinLiquidityUSD drops tokens whose summed pair liquidity is below it.
	MinLiquidityUSD float64
}

type searchResponse struct {
	Pairs []struct {
		ChainID     string `json:"chainId"`
		DexID       string `json:"dexId"`
		PairAddress string `json:"pairAddress"`
		BaseToken   struct {
			Address string `json:"address"`
			Name    string `json:"name"`
			Symbol  string `json:"symbol"`
		} `json:"baseToken"`
		Liquidity *struct {
			USD float64 `json:"usd"`
		} `json:"liquidity"`
	} `json:"pairs"`
}

// Client searches DexScreener pairs and groups them by token deployment.
type Client struct {
	config Config
	client httpclient.Client
	logger logger.LoggerInterface
	tracer trace.Tracer
}

// NewClient creates a DexScreener client.
func NewClient(cfg Config, log logger.LoggerInterface) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = BaseAPIURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	bcfg := circuitbreaker.DefaultConfig(Name)
	bcfg.OnStateChange = func(name string, from, to gobreaker.State) {
		log.Warn(context.Background(), "circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
	}

	tracer := otel.Tracer(tracerName)
	opts := []httpclient.ClientOption{
		httpclient.WithProviderName(Name),
		httpclient.WithBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")),
		httpclient.WithRequestTimeout(cfg.Timeout),
		httpclient.WithTraceOptions(tracer, httpclient.TraceRequest, httpclient.TraceResponse),
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

	return &Client{config: cfg, client: client, logger: log, tracer: tracer}, nil
}

func (c *Client) Name() string { return Name }

// Lookup returns one candidate per (chain, address) whose base token is symbol.
// Liquidity is summed over the token's pairs.
func (c *Client) Lookup(ctx context.Context, symbol string) ([]domain.Candidate, error) {
	ctx, span := c.tracer.Start(ctx, "dexscreener.lookup",
		trace.WithAttributes(attribute.String("symbol", symbol)),
	)
	defer span.End()

	var resp searchResponse
	r, err := c.client.NewRequestWithOptions(
		httpclient.WithLabels(httpclient.NewLabel("endpoint", searchPath)),
	).SetQueryParam("q", symbol).SetResult(&resp).Get(ctx, searchPath)
	if err == nil && r.IsError() {
		err = apperror.New(apperror.CodeLookupFailed,
			apperror.WithContext(fmt.Sprintf("dexscreener search %s: HTTP %d", symbol, r.StatusCode)))
	}
	if err != nil {
		span.RecordError(err)
		if apperror.IsAppError(err) {
			return nil, err
		}
		return nil, apperror.New(apperror.CodeLookupFailed,
			apperror.WithCause(err),
			apperror.WithContext("dexscreener search "+symbol))
	}

	byKey := make(map[string]int)
	var cands []domain.Candidate
	for _, p := range resp.Pairs {
		if !strings.EqualFold(p.BaseToken.Symbol, symbol) {
			continue
		}
		cand, ok := domain.NewCandidate(Name, symbol, p.ChainID, p.BaseToken.Address)
		if !ok {
			continue
		}
		liquidity := 0.0
		if p.Liquidity != nil {
			liquidity = p.Liquidity.USD
		}

		key := string(cand.Chain) + ":" + cand.Contract
		if i, seen := byKey[key]; seen {
			cands[i].LiquidityUSD += liquidity
			cands[i].Pairs++
			continue
		}
		cand.Name = p.BaseToken.Name
		cand.LiquidityUSD = liquidity
		cand.Pairs = 1
		byKey[key] = len(cands)
		cands = append(cands, cand)
	}

	out := cands[:0]
	for _, cand := range cands {
		if cand.LiquidityUSD >= c.config.MinLiquidityUSD {
			out = append(out, cand)
		}
	}

	span.SetAttributes(attribute.Int("pairs", len(resp.Pairs)), attribute.Int("candidates", len(out)))
	c.logger.Debug(ctx, "dexscreener lookup", "symbol", symbol, "pairs", len(resp.Pairs), "candidates", len(out))
	return out, nil
}
