package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/fd1az/arbitrage-scanner/business/identity/domain"
	"github.com/fd1az/arbitrage-scanner/internal/apperror"
	"github.com/fd1az/arbitrage-scanner/internal/cache"
	"github.com/fd1az/arbitrage-scanner/internal/logger"
)

const (
	meterName = "github.com/fd1az/arbitrage-scanner/business/identity"

	defaultCandidateTTL = 24 * time.Hour
	// Symbols no provider knows are retried after this long.
	negativeTTL = time.Hour
)

var _ Strategy = (*LookupStrategy)(nil)

// LookupConfig configures the lookup strategy.
type LookupConfig struct {
	TTL           time.Duration
	MaxCandidates int
}

// LookupStrategy resolves symbols through the external lookup services,
// reading through an in-process cache and the configured store tiers.
type LookupStrategy struct {
	config   LookupConfig
	lookup   ContractLookup
	local    *cache.Cache[string, []domain.Candidate]
	stores   []CandidateStore
	verifier CandidateVerifier
	recorder LookupRecorder
	logger   logger.LoggerInterface

	hits     atomic.Int64
	misses   atomic.Int64
	lookups  atomic.Int64
	failures atomic.Int64

	lookupCounter metric.Int64Counter
}

// LookupOption customizes a LookupStrategy.
type LookupOption func(*LookupStrategy)

// WithStores adds shared cache tiers, consulted in order.
func WithStores(stores ...CandidateStore) LookupOption {
	return func(s *LookupStrategy) {
		for _, st := range stores {
			if st != nil {
				s.stores = append(s.stores, st)
			}
		}
	}
}

// WithVerifier drops candidates that fail an on-chain check.
func WithVerifier(v CandidateVerifier) LookupOption {
	return func(s *LookupStrategy) { s.verifier = v }
}

// WithRecorder logs failed lookups.
func WithRecorder(r LookupRecorder) LookupOption {
	return func(s *LookupStrategy) { s.recorder = r }
}

// NewLookupStrategy creates a lookup strategy over lookup.
func NewLookupStrategy(cfg LookupConfig, lookup ContractLookup, log logger.LoggerInterface, opts ...LookupOption) *LookupStrategy {
	if cfg.TTL <= 0 {
		cfg.TTL = defaultCandidateTTL
	}
	s := &LookupStrategy{
		config: cfg,
		lookup: lookup,
		local:  cache.New[string, []domain.Candidate](10 * time.Minute),
		logger: log,
	}
	for _, opt := range opts {
		opt(s)
	}

	counter, err := otel.Meter(meterName).Int64Counter(
		"identity_lookups_total",
		metric.WithDescription("Contract lookups by outcome"),
		metric.WithUnit("{lookup}"),
	)
	if err == nil {
		s.lookupCounter = counter
	}
	return s
}

func (s *LookupStrategy) Name() string { return StrategyLookup }

// Resolve returns one resolution per candidate chain.
func (s *LookupStrategy) Resolve(ctx context.Context, base string) ([]domain.Resolution, error) {
	cands, err := s.Candidates(ctx, base)
	if err != nil {
		return nil, err
	}
	return domain.FromCandidates(StrategyLookup, cands), nil
}

// Candidates returns the deployments of symbol, reading cache tiers before
// calling the lookup services.
func (s *LookupStrategy) Candidates(ctx context.Context, symbol string) ([]domain.Candidate, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	if cands, ok := s.local.Get(ctx, symbol); ok {
		s.hits.Add(1)
		s.count(ctx, "cache_hit")
		return cands, nil
	}

	for i, store := range s.stores {
		cands, found, err := store.Get(ctx, symbol)
		if err != nil {
			s.logger.Warn(ctx, "candidate store read failed", "store", store.Name(), "symbol", symbol, "error", err)
			continue
		}
		if !found {
			continue
		}
		s.hits.Add(1)
		s.count(ctx, "store_hit")
		s.local.Set(ctx, symbol, cands, s.ttlFor(cands))
		// Backfill the faster tiers.
		for _, upper := range s.stores[:i] {
			s.put(ctx, upper, symbol, cands)
		}
		return cands, nil
	}

	s.misses.Add(1)
	s.lookups.Add(1)

	cands, err := s.lookup.Lookup(ctx, symbol)
	if err != nil {
		s.failures.Add(1)
		s.count(ctx, "error")
		s.recordFailure(ctx, symbol, err.Error())
		return nil, apperror.New(apperror.CodeLookupFailed,
			apperror.WithCause(err),
			apperror.WithContext(fmt.Sprintf("lookup %s", symbol)))
	}

	cands = s.verify(ctx, domain.BestPerChain(cands, s.config.MaxCandidates))
	if len(cands) == 0 {
		s.count(ctx, "not_found")
		s.recordFailure(ctx, symbol, "no candidates")
	} else {
		s.count(ctx, "found")
	}

	s.local.Set(ctx, symbol, cands, s.ttlFor(cands))
	for _, store := range s.stores {
		s.put(ctx, store, symbol, cands)
	}
	return cands, nil
}

// Stats returns cumulative cache and lookup counters.
func (s *LookupStrategy) Stats() domain.Stats {
	return domain.Stats{
		CacheHits:   s.hits.Load(),
		CacheMisses: s.misses.Load(),
		Lookups:     s.lookups.Load(),
		Failures:    s.failures.Load(),
	}
}

func (s *LookupStrategy) verify(ctx context.Context, cands []domain.Candidate) []domain.Candidate {
	if s.verifier == nil || len(cands) == 0 {
		return cands
	}
	out := cands[:0:0]
	for _, c := range cands {
		ok, err := s.verifier.Verify(ctx, c)
		if err != nil {
			// Unverifiable candidates are kept.
			s.logger.Debug(ctx, "candidate verification failed", "symbol", c.Symbol, "chain", c.Chain, "error", err)
			out = append(out, c)
			continue
		}
		if !ok {
			s.logger.Info(ctx, "dropping candidate without contract code", "symbol", c.Symbol, "chain", c.Chain, "contract", c.Contract)
			continue
		}
		c.Verified = c.Chain.IsEVM()
		out = append(out, c)
	}
	return out
}

func (s *LookupStrategy) ttlFor(cands []domain.Candidate) time.Duration {
	if len(cands) == 0 {
		return min(negativeTTL, s.config.TTL)
	}
	return s.config.TTL
}

func (s *LookupStrategy) put(ctx context.Context, store CandidateStore, symbol string, cands []domain.Candidate) {
	if err := store.Put(ctx, symbol, cands, s.ttlFor(cands)); err != nil {
		s.logger.Warn(ctx, "candidate store write failed", "store", store.Name(), "symbol", symbol, "error", err)
	}
}

func (s *LookupStrategy) recordFailure(ctx context.Context, symbol, reason string) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.RecordFailure(ctx, symbol, reason); err != nil {
		s.logger.Warn(ctx, "failed to record lookup failure", "symbol", symbol, "error", err)
	}
}

func (s *LookupStrategy) count(ctx context.Context, outcome string) {
	if s.lookupCounter != nil {
		s.lookupCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	}
}

// FallbackLookup queries providers in order; the first non-empty answer wins.
type FallbackLookup struct {
	providers []ContractLookup
	recorder  LookupRecorder
	logger    logger.LoggerInterface
	now       func() time.Time
}

var _ ContractLookup = (*FallbackLookup)(nil)

// NewFallbackLookup creates a fallback chain. recorder may be nil.
func NewFallbackLookup(log logger.LoggerInterface, recorder LookupRecorder, providers ...ContractLookup) *FallbackLookup {
	return &FallbackLookup{
		providers: providers,
		recorder:  recorder,
		logger:    log,
		now:       time.Now,
	}
}

func (f *FallbackLookup) Name() string { return "fallback" }

// Lookup returns the first non-empty provider answer. It fails only when
// every provider failed.
func (f *FallbackLookup) Lookup(ctx context.Context, symbol string) ([]domain.Candidate, error) {
	var errs []error
	for _, p := range f.providers {
		start := f.now()
		cands, err := p.Lookup(ctx, symbol)
		f.record(ctx, p.Name(), symbol, start, err)

		if err != nil {
			f.logger.Warn(ctx, "contract lookup failed", "provider", p.Name(), "symbol", symbol, "error", err)
			errs = append(errs, err)
			continue
		}
		if len(cands) > 0 {
			return cands, nil
		}
	}
	if len(errs) == len(f.providers) && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return nil, nil
}

func (f *FallbackLookup) record(ctx context.Context, api, symbol string, start time.Time, err error) {
	if f.recorder == nil {
		return
	}
	call := domain.APICall{
		API:      api,
		Endpoint: "lookup/" + symbol,
		Success:  err == nil,
		Latency:  f.now().Sub(start),
		CalledAt: start,
	}
	if err != nil {
		call.Error = err.Error()
	}
	if rerr := f.recorder.RecordCall(ctx, call); rerr != nil {
		f.logger.Debug(ctx, "failed to record api call", "api", api, "error", rerr)
	}
}
