// Package coingecko implements ContractLookup against the CoinGecko API.
package coingecko

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
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
	tracerName = "github.com/fd1az/arbitrage-scanner/business/identity/infra/coingecko"

	Name       = "coingecko"
	BaseAPIURL = "https://api.coingecko.com/api/v3"
	searchPath = "/search"
	coinPath   = "/coins/"

	apiKeyHeader   = "x-cg-demo-api-key"
	defaultTimeout = 10 * time.Second
)

var _ app.ContractLookup = (*Client)(nil)

// Config holds configuration for the CoinGecko client.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	Limiter *ratelimit.Limiter
}

type searchResponse struct {
	Coins []struct {
		ID            string `json:"id"`
		Symbol        string `json:"symbol"`
		Name          string `json:"name"`
		MarketCapRank int    `json:"market_cap_rank"`
	} `json:"coins"`
}

type coinResponse struct {
	ID              string            `json:"id"`
	Symbol          string            `json:"symbol"`
	Name            string            `json:"name"`
	Platforms       map[string]string `json:"platforms"` // platform id -> contract
	DetailPlatforms map[string]struct {
		DecimalPlace    int    `json:"decimal_place"`
		ContractAddress string `json:"contract_address"`
	} `json:"detail_platforms"`
}

// Client resolves symbols through CoinGecko search and coin detail endpoints.
type Client struct {
	client httpclient.Client
	logger logger.LoggerInterface
	tracer trace.Tracer
}

// NewClient creates a CoinGecko client.
func NewClient(cfg Config, log logger.LoggerInterface) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = BaseAPIURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	headers := map[string]string{"Accept": "application/json"}
	if cfg.APIKey != "" {
		headers[apiKeyHeader] = cfg.APIKey
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
		httpclient.WithHeaders(headers),
		httpclient.WithCircuitBreaker(circuitbreaker.New[*httpclient.Response](bcfg)),
	}
	if cfg.Limiter != nil {
		opts = append(opts, httpclient.WithRateLimiter(cfg.Limiter))
	}

	client, err := httpclient.NewInstrumentedClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	return &Client{client: client, logger: log, tracer: tracer}, nil
}

func (c *Client) Name() string { return Name }

// Lookup searches the symbol, then lists the matching coin's platform deployments.
func (c *Client) Lookup(ctx context.Context, symbol string) ([]domain.Candidate, error) {
	ctx, span := c.tracer.Start(ctx, "coingecko.lookup",
		trace.WithAttributes(attribute.String("symbol", symbol)),
	)
	defer span.End()

	coinID, err := c.search(ctx, symbol)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if coinID == "" {
		return nil, nil
	}

	var coin coinResponse
	status, err := c.get(ctx, coinPath+url.PathEscape(coinID), map[string]string{
		"localization":   "false",
		"tickers":        "false",
		"market_data":    "false",
		"community_data": "false",
		"developer_data": "false",
	}, &coin)
	if status == http.StatusNotFound {
		return nil, nil
	}
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	cands := make([]domain.Candidate, 0, len(coin.Platforms))
	for platform, contract := range coin.Platforms {
		cand, ok := domain.NewCandidate(Name, symbol, platform, contract)
		if !ok {
			continue
		}
		cand.Name = coin.Name
		if d, ok := coin.DetailPlatforms[platform]; ok {
			cand.Decimals = d.DecimalPlace
		}
		cands = append(cands, cand)
	}
	sort.Slice(cands, func(i, j int) bool { return cands[i].Chain < cands[j].Chain })

	span.SetAttributes(attribute.String("coin_id", coinID), attribute.Int("candidates", len(cands)))
	c.logger.Debug(ctx, "coingecko lookup", "symbol", symbol, "coin_id", coinID, "candidates", len(cands))
	return cands, nil
}

// search returns the id of the best ranked coin whose ticker equals symbol.
func (c *Client) search(ctx context.Context, symbol string) (string, error) {
	var resp searchResponse
	if _, err := c.get(ctx, searchPath, map[string]string{"query": symbol}, &resp); err != nil {
		return "", err
	}

	best, bestRank := "", 0
	for _, coin := range resp.Coins {
		if !strings.EqualFold(coin.Symbol, symbol) {
			continue
		}
		rank := coin.MarketCapRank
		if best == "" || (rank > 0 && (bestRank == 0 || rank < bestRank)) {
			best, bestRank = coin.ID, rank
		}
	}
	return best, nil
}

func (c *Client) get(ctx context.Context, path string, params map[string]string, result any) (int, error) {
	resp, err := c.client.NewRequestWithOptions(
		httpclient.WithLabels(httpclient.NewLabel("endpoint", endpointLabel(path))),
	).SetQueryParams(params).SetResult(result).Get(ctx, path)
	if err != nil {
		if apperror.IsAppError(err) {
			return 0, err
		}
		return 0, apperror.New(apperror.CodeLookupFailed,
			apperror.WithCause(err),
			apperror.WithContext("coingecko "+path))
	}
	if resp.IsError() {
		return resp.StatusCode, apperror.New(apperror.CodeLookupFailed,
			apperror.WithContext(fmt.Sprintf("coingecko %s: HTTP %d", path, resp.StatusCode)))
	}
	if resp.Result() == nil {
		return resp.StatusCode, apperror.New(apperror.CodeInvalidFormat,
			apperror.WithContext("coingecko "+path+": undecodable body"))
	}
	return resp.StatusCode, nil
}

// endpointLabel keeps metric cardinality bounded.
func endpointLabel(path string) string {
	if strings.HasPrefix(path, coinPath) {
		return coinPath + "{id}"
	}
	return path
}
