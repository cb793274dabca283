package app

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/fd1az/arbitrage-scanner/business/identity/domain"
	"github.com/fd1az/arbitrage-scanner/internal/asset"
)

// Strategy names accepted in configuration.
const (
	StrategyStatic  = "static"
	StrategyPattern = "pattern"
	StrategyLookup  = "lookup"
)

var _ Strategy = (*StaticStrategy)(nil)
var _ Strategy = (*PatternStrategy)(nil)
var _ Strategy = (*FirstMatch)(nil)

// StaticStrategy resolves symbols from the maintained asset table.
type StaticStrategy struct {
	registry  *asset.Registry
	overrides map[string]asset.Chain
}

// NewStaticStrategy creates a static strategy. overrides pins a symbol to a
// chain ahead of the registry's home chain.
func NewStaticStrategy(registry *asset.Registry, overrides map[string]asset.Chain) *StaticStrategy {
	o := make(map[string]asset.Chain, len(overrides))
	for sym, chain := range overrides {
		if chain.IsResolved() {
			o[strings.ToUpper(sym)] = chain
		}
	}
	return &StaticStrategy{registry: registry, overrides: o}
}

func (s *StaticStrategy) Name() string { return StrategyStatic }

// Resolve returns the symbol's home deployment, or the overridden chain.
func (s *StaticStrategy) Resolve(_ context.Context, base string) ([]domain.Resolution, error) {
	base = strings.ToUpper(base)

	if chain, ok := s.overrides[base]; ok {
		res := domain.Resolution{Chain: chain, Strategy: StrategyStatic}
		if a, found := s.registry.GetBySymbolAndChain(base, chain); found {
			res.Contract = a.Contract()
		}
		return []domain.Resolution{res}, nil
	}

	a, ok := s.registry.Primary(base)
	if !ok {
		return nil, nil
	}
	return []domain.Resolution{{Chain: a.Chain(), Contract: a.Contract(), Strategy: StrategyStatic}}, nil
}

// PatternStrategy infers the chain from wrapped prefixes and bridged suffixes.
type PatternStrategy struct {
	prefixes []string
	byPrefix map[string]asset.Chain
	suffixes map[string]asset.Chain
}

// NewPatternStrategy builds a pattern strategy from prefix and suffix tables.
func NewPatternStrategy(prefixes, suffixes map[string]asset.Chain) *PatternStrategy {
	p := &PatternStrategy{
		byPrefix: make(map[string]asset.Chain, len(prefixes)),
		suffixes: make(map[string]asset.Chain, len(suffixes)),
	}
	for k, v := range prefixes {
		k = strings.ToUpper(k)
		p.byPrefix[k] = v
		p.prefixes = append(p.prefixes, k)
	}
	for k, v := range suffixes {
		p.suffixes[strings.ToUpper(k)] = v
	}
	// Longest prefix wins.
	sort.Slice(p.prefixes, func(i, j int) bool {
		if len(p.prefixes[i]) != len(p.prefixes[j]) {
			return len(p.prefixes[i]) > len(p.prefixes[j])
		}
		return p.prefixes[i] < p.prefixes[j]
	})
	return p
}

// NewDefaultPatternStrategy uses the well-known wrapped and bridged tables.
func NewDefaultPatternStrategy() *PatternStrategy {
	return NewPatternStrategy(asset.WrappedPrefixes, asset.BridgedSuffixes)
}

func (p *PatternStrategy) Name() string { return StrategyPattern }

// Resolve matches the symbol against the pattern tables. Contract is left
// empty because a pattern only implies the chain.
func (p *PatternStrategy) Resolve(_ context.Context, base string) ([]domain.Resolution, error) {
	base = strings.ToUpper(base)

	for _, prefix := range p.prefixes {
		if strings.HasPrefix(base, prefix) {
			return []domain.Resolution{{Chain: p.byPrefix[prefix], Strategy: StrategyPattern}}, nil
		}
	}
	for suffix, chain := range p.suffixes {
		if len(base) > len(suffix) && strings.HasSuffix(base, suffix) {
			return []domain.Resolution{{Chain: chain, Strategy: StrategyPattern}}, nil
		}
	}
	return nil, nil
}

// FirstMatch runs strategies in order and returns the first non-empty result.
// A failing strategy does not stop the chain; its error is only returned
// when no later strategy matches.
type FirstMatch struct {
	strategies []Strategy
}

// NewFirstMatch creates a combinator over strategies, skipping nil entries.
func NewFirstMatch(strategies ...Strategy) *FirstMatch {
	f := &FirstMatch{}
	for _, s := range strategies {
		if s != nil {
			f.strategies = append(f.strategies, s)
		}
	}
	return f
}

func (f *FirstMatch) Name() string { return "first_match" }

// Strategies returns the strategy names in evaluation order.
func (f *FirstMatch) Strategies() []string {
	names := make([]string, len(f.strategies))
	for i, s := range f.strategies {
		names[i] = s.Name()
	}
	return names
}

func (f *FirstMatch) Resolve(ctx context.Context, base string) ([]domain.Resolution, error) {
	var errs []error
	for _, s := range f.strategies {
		res, err := s.Resolve(ctx, base)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if len(res) > 0 {
			return res, nil
		}
	}
	return nil, errors.Join(errs...)
}

// Ordered picks strategies by name in the given order. Unknown or
// unavailable names are skipped.
func Ordered(order []string, available map[string]Strategy) *FirstMatch {
	picked := make([]Strategy, 0, len(order))
	for _, name := range order {
		if s, ok := available[strings.ToLower(name)]; ok && s != nil {
			picked = append(picked, s)
		}
	}
	return NewFirstMatch(picked...)
}
