// Package market implements the market data bounded context: per-exchange
// ticker adapters and the quote cache they feed.
package market

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fd1az/arbitrage-scanner/business/market/app"
	marketDI "github.com/fd1az/arbitrage-scanner/business/market/di"
	"github.com/fd1az/arbitrage-scanner/business/market/infra/binance"
	"github.com/fd1az/arbitrage-scanner/business/market/infra/bybit"
	"github.com/fd1az/arbitrage-scanner/business/market/infra/gateio"
	"github.com/fd1az/arbitrage-scanner/business/market/infra/kucoin"
	"github.com/fd1az/arbitrage-scanner/business/market/infra/mexc"
	"github.com/fd1az/arbitrage-scanner/business/market/infra/okx"
	"github.com/fd1az/arbitrage-scanner/internal/apperror"
	"github.com/fd1az/arbitrage-scanner/internal/config"
	"github.com/fd1az/arbitrage-scanner/internal/di"
	"github.com/fd1az/arbitrage-scanner/internal/logger"
	"github.com/fd1az/arbitrage-scanner/internal/monolith"
	"github.com/fd1az/arbitrage-scanner/internal/ratelimit"
)

const tickerStreamPath = "/ws/!ticker@arr"

// Module implements the market data bounded context.
type Module struct{}

// RegisterServices registers all market services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register source adapters - private dependency
	di.RegisterToken(c, marketDI.Sources, func(sr di.ServiceRegistry) []app.SourceAdapter {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		limits := sr.Get("rateLimits").(*ratelimit.Registry)

		var sources []app.SourceAdapter
		for _, sc := range cfg.EnabledSources() {
			src, err := NewSource(sc, limits.For(sc.Name), log)
			if err != nil {
				panic("failed to create source " + sc.Name + ": " + err.Error())
			}
			sources = append(sources, src)
		}
		return sources
	})

	// Register QuoteCache (public - exposed to other modules)
	di.RegisterToken(c, marketDI.QuoteCache, func(sr di.ServiceRegistry) *app.QuoteCache {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		timeouts := make(map[string]time.Duration)
		for _, sc := range cfg.EnabledSources() {
			timeouts[sc.Name] = sc.Timeout
		}
		return app.NewQuoteCache(marketDI.GetSources(sr), app.QuoteCacheConfig{Timeouts: timeouts}, log)
	})

	return nil
}

// Startup connects every source. Sources that fail stay offline until a
// later refresh succeeds, so startup never blocks on an exchange.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	cache := marketDI.GetQuoteCache(mono.Services())

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	cache.Connect(connectCtx)

	log.Info(ctx, "market module started", "sources", cache.Sources(), "online", cache.OnlineCount())
	return nil
}

// NewSource builds the adapter for one configured source.
func NewSource(sc config.SourceConfig, limiter *ratelimit.Limiter, log logger.LoggerInterface) (app.SourceAdapter, error) {
	kind := strings.ToLower(sc.Kind)
	if kind == "" {
		kind = strings.ToLower(sc.Name)
	}

	switch kind {
	case "binance":
		pc := binance.ProviderConfig{
			Name:         sc.Name,
			BaseURL:      sc.BaseURL,
			StaleTimeout: sc.StaleTimeout,
			Timeout:      sc.Timeout,
			QuoteAssets:  sc.QuoteAssets,
			Limiter:      limiter,
		}
		if sc.Stream && sc.WSURL != "" {
			pc.StreamURL = strings.TrimSuffix(sc.WSURL, "/") + tickerStreamPath
		}
		return binance.NewProvider(pc, log)
	case "mexc":
		return mexc.NewProvider(binance.ProviderConfig{
			BaseURL:     sc.BaseURL,
			Timeout:     sc.Timeout,
			QuoteAssets: sc.QuoteAssets,
			Limiter:     limiter,
		}, log)
	case "okx":
		return okx.NewProvider(okx.ProviderConfig{
			BaseURL:     sc.BaseURL,
			Timeout:     sc.Timeout,
			QuoteAssets: sc.QuoteAssets,
			Limiter:     limiter,
		}, log)
	case "bybit":
		return bybit.NewProvider(bybit.ProviderConfig{
			BaseURL:     sc.BaseURL,
			Timeout:     sc.Timeout,
			QuoteAssets: sc.QuoteAssets,
			Limiter:     limiter,
		}, log)
	case "gateio":
		return gateio.NewProvider(gateio.ProviderConfig{
			BaseURL:     sc.BaseURL,
			Timeout:     sc.Timeout,
			QuoteAssets: sc.QuoteAssets,
			Limiter:     limiter,
		}, log)
	case "kucoin":
		return kucoin.NewProvider(kucoin.ProviderConfig{
			BaseURL:     sc.BaseURL,
			Timeout:     sc.Timeout,
			QuoteAssets: sc.QuoteAssets,
			Limiter:     limiter,
		}, log)
	default:
		return nil, apperror.New(apperror.CodeUnsupportedExchange,
			apperror.WithContext(fmt.Sprintf("source %q has unknown kind %q", sc.Name, sc.Kind)))
	}
}
