package app

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/fd1az/arbitrage-scanner/business/identity/domain"
	market "github.com/fd1az/arbitrage-scanner/business/market/domain"
	"github.com/fd1az/arbitrage-scanner/internal/asset"
	"github.com/fd1az/arbitrage-scanner/internal/logger"
)

const (
	tracerName = "github.com/fd1az/arbitrage-scanner/business/identity/app"

	defaultConcurrency = 4
)

// ResolverConfig configures the Resolver.
type ResolverConfig struct {
	// Concurrency bounds simultaneous symbol resolutions.
	Concurrency int
}

// Resolver enriches quotes with chain and contract identity.
type Resolver struct {
	config   ResolverConfig
	strategy Strategy
	registry *asset.Registry
	lookup   *LookupStrategy
	logger   logger.LoggerInterface
	tracer   trace.Tracer

	mu   sync.RWMutex
	last domain.Stats
}

// NewResolver creates a resolver. lookup may be nil; it is only used for stats.
func NewResolver(cfg ResolverConfig, strategy Strategy, registry *asset.Registry, lookup *LookupStrategy, log logger.LoggerInterface) *Resolver {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	return &Resolver{
		config:   cfg,
		strategy: strategy,
		registry: registry,
		lookup:   lookup,
		logger:   log,
		tracer:   otel.Tracer(tracerName),
	}
}

// Enrich returns a snapshot whose quotes carry resolved identity.
//
// Quotes that already name a chain keep it and only get their contract
// filled from the asset table. The rest are resolved once per distinct base
// symbol; a symbol with several candidate chains yields one quote per chain.
// Symbols nothing can resolve are tagged with asset.ChainUnresolved.
func (r *Resolver) Enrich(ctx context.Context, snap market.Snapshot) market.Snapshot {
	ctx, span := r.tracer.Start(ctx, "identity.enrich")
	defer span.End()

	pending := make(map[string]struct{})
	for _, q := range snap.Flatten() {
		if !q.Chain.IsResolved() {
			pending[strings.ToUpper(q.Base)] = struct{}{}
		}
	}

	resolved := r.resolveAll(ctx, pending)

	stats := domain.Stats{Symbols: len(pending)}
	for _, res := range resolved {
		if len(res) > 0 {
			stats.Resolved++
		}
		if len(res) > 1 {
			stats.Expanded++
		}
	}
	stats.Unresolved = stats.Symbols - stats.Resolved

	out := make(map[string][]market.Quote, len(snap.Sources()))
	for _, source := range snap.Sources() {
		quotes := snap.Quotes(source)
		enriched := make([]market.Quote, 0, len(quotes))
		for _, q := range quotes {
			enriched = append(enriched, r.apply(q, resolved[strings.ToUpper(q.Base)])...)
		}
		out[source] = enriched
	}

	if r.lookup != nil {
		ls := r.lookup.Stats()
		stats.CacheHits, stats.CacheMisses = ls.CacheHits, ls.CacheMisses
		stats.Lookups, stats.Failures = ls.Lookups, ls.Failures
	}
	r.mu.Lock()
	r.last = stats
	r.mu.Unlock()

	span.SetAttributes(
		attribute.Int("symbols", stats.Symbols),
		attribute.Int("resolved", stats.Resolved),
		attribute.Int("expanded", stats.Expanded),
	)
	r.logger.Debug(ctx, "identity enrichment complete",
		"symbols", stats.Symbols,
		"resolved", stats.Resolved,
		"unresolved", stats.Unresolved,
		"expanded", stats.Expanded,
		"cache_hit_rate", stats.HitRate(),
	)

	return market.NewSnapshot(out, snap.StampedAt())
}

// Stats returns the statistics of the last Enrich call.
func (r *Resolver) Stats() domain.Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.last
}

func (r *Resolver) resolveAll(ctx context.Context, pending map[string]struct{}) map[string][]domain.Resolution {
	bases := make([]string, 0, len(pending))
	for b := range pending {
		bases = append(bases, b)
	}
	sort.Strings(bases)

	var (
		mu  sync.Mutex
		out = make(map[string][]domain.Resolution, len(bases))
	)

	g := new(errgroup.Group)
	g.SetLimit(r.config.Concurrency)
	for _, base := range bases {
		g.Go(func() error {
			start := time.Now()
			res, err := r.strategy.Resolve(ctx, base)
			if err != nil {
				r.logger.Warn(ctx, "identity resolution failed", "symbol", base, "error", err, "duration", time.Since(start))
			}
			res = dedupeChains(res)

			mu.Lock()
			out[base] = res
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return out
}

// apply stamps q with each resolution, or with the unresolved chain.
func (r *Resolver) apply(q market.Quote, res []domain.Resolution) []market.Quote {
	if q.Chain.IsResolved() {
		if q.Contract == "" {
			if a, ok := r.registry.GetBySymbolAndChain(q.Base, q.Chain); ok {
				return []market.Quote{q.WithIdentity(q.Chain, a.Contract())}
			}
		}
		return []market.Quote{q}
	}

	if len(res) == 0 {
		return []market.Quote{q.WithIdentity(asset.ChainUnresolved, "")}
	}

	out := make([]market.Quote, 0, len(res))
	for _, rs := range res {
		contract := rs.Contract
		if contract == "" {
			if a, ok := r.registry.GetBySymbolAndChain(q.Base, rs.Chain); ok {
				contract = a.Contract()
			}
		}
		out = append(out, q.WithIdentity(rs.Chain, contract))
	}
	return out
}

func dedupeChains(res []domain.Resolution) []domain.Resolution {
	if len(res) == 0 {
		return res
	}
	seen := make(map[asset.Chain]struct{}, len(res))
	out := res[:0:0]
	for _, rs := range res {
		if !rs.Chain.IsResolved() {
			continue
		}
		if _, dup := seen[rs.Chain]; dup {
			continue
		}
		seen[rs.Chain] = struct{}{}
		out = append(out, rs)
	}
	return out
}
