// Package transfer implements the transfer availability bounded context:
// which networks each exchange accepts for an asset, and whether a buy
// exchange can send it to a sell exchange.
package transfer

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/fd1az/arbitrage-scanner/business/transfer/app"
	transferDI "github.com/fd1az/arbitrage-scanner/business/transfer/di"
	"github.com/fd1az/arbitrage-scanner/business/transfer/infra/gateio"
	"github.com/fd1az/arbitrage-scanner/business/transfer/infra/kucoin"
	"github.com/fd1az/arbitrage-scanner/internal/apperror"
	"github.com/fd1az/arbitrage-scanner/internal/config"
	"github.com/fd1az/arbitrage-scanner/internal/di"
	"github.com/fd1az/arbitrage-scanner/internal/logger"
	"github.com/fd1az/arbitrage-scanner/internal/monolith"
	"github.com/fd1az/arbitrage-scanner/internal/ratelimit"
)

// Module implements the transfer bounded context.
type Module struct{}

// RegisterServices registers all transfer services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register network info providers - private dependency
	di.RegisterToken(c, transferDI.Providers, func(sr di.ServiceRegistry) []app.NetworkInfoProvider {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		limits := sr.Get("rateLimits").(*ratelimit.Registry)

		names := make([]string, 0, len(cfg.Transfer.Providers))
		for name := range cfg.Transfer.Providers {
			names = append(names, name)
		}
		sort.Strings(names)

		var providers []app.NetworkInfoProvider
		for _, name := range names {
			p, err := NewNetworkProvider(name, cfg.Transfer.Providers[name], cfg.Transfer.Timeout, limits.For(name), log)
			if err != nil {
				panic("failed to create network provider " + name + ": " + err.Error())
			}
			providers = append(providers, p)
		}
		return providers
	})

	// Register network info cache - private dependency
	di.RegisterToken(c, transferDI.NetworkInfo, func(sr di.ServiceRegistry) *app.NetworkInfoCache {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		return app.NewNetworkInfoCache(transferDI.GetProviders(sr), cfg.Transfer.NetworkInfoTTL, log)
	})

	// Register Checker (public - exposed to other modules)
	di.RegisterToken(c, transferDI.Checker, func(sr di.ServiceRegistry) *app.Checker {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		if !cfg.Transfer.Enabled {
			return nil
		}
		return app.NewChecker(transferDI.GetNetworkInfo(sr), log)
	})

	return nil
}

// Startup logs which exchanges can answer network queries.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	sr := mono.Services()

	if transferDI.GetChecker(sr) == nil {
		log.Info(ctx, "transfer module started", "enabled", false)
		return nil
	}
	networks := transferDI.GetNetworkInfo(sr)
	log.Info(ctx, "transfer module started",
		"enabled", true,
		"exchanges", networks.Exchanges(),
		"ttl", mono.Config().Transfer.NetworkInfoTTL.String(),
	)
	return nil
}

// NewNetworkProvider builds the network info provider for exchange.
func NewNetworkProvider(exchange, baseURL string, timeout time.Duration, limiter *ratelimit.Limiter, log logger.LoggerInterface) (app.NetworkInfoProvider, error) {
	switch strings.ToLower(exchange) {
	case gateio.Exchange:
		return gateio.NewProvider(gateio.Config{BaseURL: baseURL, Timeout: timeout, Limiter: limiter}, log)
	case kucoin.Exchange:
		return kucoin.NewProvider(kucoin.Config{BaseURL: baseURL, Timeout: timeout, Limiter: limiter}, log)
	default:
		return nil, apperror.New(apperror.CodeUnsupportedExchange,
			apperror.WithContext(fmt.Sprintf("no network info provider for %q", exchange)))
	}
}
