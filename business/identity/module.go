// Package identity implements the asset identity bounded context: resolving
// which chain and contract an exchange ticker refers to.
package identity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/fd1az/arbitrage-scanner/business/identity/app"
	identityDI "github.com/fd1az/arbitrage-scanner/business/identity/di"
	"github.com/fd1az/arbitrage-scanner/business/identity/infra/coingecko"
	"github.com/fd1az/arbitrage-scanner/business/identity/infra/dexscreener"
	"github.com/fd1az/arbitrage-scanner/business/identity/infra/evm"
	"github.com/fd1az/arbitrage-scanner/business/identity/infra/postgres"
	"github.com/fd1az/arbitrage-scanner/business/identity/infra/redis"
	"github.com/fd1az/arbitrage-scanner/internal/apperror"
	"github.com/fd1az/arbitrage-scanner/internal/asset"
	"github.com/fd1az/arbitrage-scanner/internal/config"
	"github.com/fd1az/arbitrage-scanner/internal/di"
	"github.com/fd1az/arbitrage-scanner/internal/logger"
	"github.com/fd1az/arbitrage-scanner/internal/monolith"
	"github.com/fd1az/arbitrage-scanner/internal/ratelimit"
)

// Module implements the identity bounded context.
type Module struct{}

// RegisterServices registers all identity services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register contract registry - private, nil without postgres
	di.RegisterToken(c, identityDI.Registry, func(sr di.ServiceRegistry) *postgres.Registry {
		if !sr.Has("db") {
			return nil
		}
		return postgres.NewRegistry(sr.Get("db").(*pgxpool.Pool))
	})

	// Register lookup strategy - private, nil when lookups are disabled
	di.RegisterToken(c, identityDI.Lookup, func(sr di.ServiceRegistry) *app.LookupStrategy {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		limits := sr.Get("rateLimits").(*ratelimit.Registry)

		lc := cfg.Identity.Lookup
		if !lc.Enabled {
			return nil
		}

		var providers []app.ContractLookup
		for _, name := range lc.Providers {
			p, err := NewLookupProvider(name, lc, limits, log)
			if err != nil {
				panic("failed to create lookup provider " + name + ": " + err.Error())
			}
			providers = append(providers, p)
		}
		if len(providers) == 0 {
			return nil
		}

		registry := identityDI.GetRegistry(sr)
		var recorder app.LookupRecorder
		if registry != nil {
			recorder = registry
		}

		opts := []app.LookupOption{app.WithRecorder(recorder)}
		if sr.Has("redis") {
			opts = append(opts, app.WithStores(redis.NewStore(sr.Get("redis").(*goredis.Client))))
		}
		if registry != nil {
			opts = append(opts, app.WithStores(registry))
		}
		if cfg.Identity.VerifyOnChain && len(cfg.Identity.EVMRPC) > 0 {
			opts = append(opts, app.WithVerifier(evm.NewVerifier(evm.VerifierConfig{
				RPCURLs: rpcURLs(cfg.Identity.EVMRPC),
			}, log)))
		}

		return app.NewLookupStrategy(app.LookupConfig{
			TTL:           lc.CacheTTL,
			MaxCandidates: lc.MaxCandidates,
		}, app.NewFallbackLookup(log, recorder, providers...), log, opts...)
	})

	// Register Resolver (public - exposed to other modules)
	di.RegisterToken(c, identityDI.Resolver, func(sr di.ServiceRegistry) *app.Resolver {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		registry := sr.Get("assetRegistry").(*asset.Registry)

		lookup := identityDI.GetLookup(sr)
		available := map[string]app.Strategy{
			app.StrategyStatic:  app.NewStaticStrategy(registry, cfg.Identity.StaticChains()),
			app.StrategyPattern: app.NewDefaultPatternStrategy(),
		}
		if lookup != nil {
			available[app.StrategyLookup] = lookup
		}

		return app.NewResolver(app.ResolverConfig{
			Concurrency: cfg.Identity.Lookup.Concurrency,
		}, app.Ordered(cfg.Identity.Strategies, available), registry, lookup, log)
	})

	return nil
}

// Startup applies registry migrations and reports recent lookup API usage.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	sr := mono.Services()

	if registry := identityDI.GetRegistry(sr); registry != nil {
		migrateCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		if err := registry.Migrate(migrateCtx); err != nil {
			log.Error(ctx, "contract registry migration failed", "error", err)
		} else if stats, err := registry.APIStats(migrateCtx, time.Now().Add(-24*time.Hour)); err == nil {
			for _, s := range stats {
				log.Info(ctx, "lookup api usage (24h)",
					"api", s.API, "total", s.Total, "success", s.Success, "failed", s.Failed, "avg_latency_ms", s.AvgLatencyMs)
			}
		}
	}

	resolver := identityDI.GetResolver(sr)
	log.Info(ctx, "identity module started",
		"strategies", mono.Config().Identity.Strategies,
		"lookup_enabled", identityDI.GetLookup(sr) != nil,
		"resolver_ready", resolver != nil,
	)
	return nil
}

// NewLookupProvider builds the contract lookup client called name.
func NewLookupProvider(name string, lc config.LookupConfig, limits *ratelimit.Registry, log logger.LoggerInterface) (app.ContractLookup, error) {
	var limiter *ratelimit.Limiter
	if limits != nil {
		limiter = limits.For(strings.ToLower(name))
	}

	switch strings.ToLower(name) {
	case coingecko.Name:
		return coingecko.NewClient(coingecko.Config{
			BaseURL: lc.CoinGeckoURL,
			APIKey:  lc.CoinGeckoAPIKey,
			Timeout: lc.Timeout,
			Limiter: limiter,
		}, log)
	case dexscreener.Name:
		return dexscreener.NewClient(dexscreener.Config{
			BaseURL:         lc.DexScreenerURL,
			Timeout:         lc.Timeout,
			Limiter:         limiter,
			MinLiquidityUSD: lc.MinLiquidityUSD,
		}, log)
	default:
		return nil, apperror.New(apperror.CodeConfigurationError,
			apperror.WithContext(fmt.Sprintf("unknown lookup provider %q", name)))
	}
}

func rpcURLs(raw map[string]string) map[asset.Chain]string {
	out := make(map[asset.Chain]string, len(raw))
	for name, url := range raw {
		if chain := asset.NormalizeChain(name); chain.IsEVM() && url != "" {
			out[chain] = url
		}
	}
	return out
}
