package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/arbitrage-scanner/business/identity/domain"
	market "github.com/fd1az/arbitrage-scanner/business/market/domain"
	"github.com/fd1az/arbitrage-scanner/internal/asset"
	"github.com/fd1az/arbitrage-scanner/internal/logger"
)

func quote(source, base string) market.Quote {
	return market.NewQuote(source, base, "USDT",
		decimal.RequireFromString("1.00"),
		decimal.RequireFromString("1.01"),
		decimal.RequireFromString("1000"),
		time.Unix(1700000000, 0),
	)
}

func newTestResolver(lookup ContractLookup) (*Resolver, *LookupStrategy) {
	registry := asset.DefaultRegistry()
	ls := NewLookupStrategy(LookupConfig{MaxCandidates: 5}, lookup, logger.NewNop())
	strategy := NewFirstMatch(
		NewStaticStrategy(registry, nil),
		NewDefaultPatternStrategy(),
		ls,
	)
	return NewResolver(ResolverConfig{Concurrency: 2}, strategy, registry, ls, logger.NewNop()), ls
}

func byChain(quotes []market.Quote) map[asset.Chain]market.Quote {
	out := make(map[asset.Chain]market.Quote, len(quotes))
	for _, q := range quotes {
		out[q.Chain] = q
	}
	return out
}

func TestResolver_Enrich(t *testing.T) {
	lookup := newFakeLookup("fake", map[string][]domain.Candidate{"PEPE": pepeCandidates})
	r, _ := newTestResolver(lookup)

	snap := market.NewSnapshot(map[string][]market.Quote{
		"binance": {quote("binance", "ETH"), quote("binance", "PEPE"), quote("binance", "WAVAX2")},
		"okx":     {quote("okx", "PEPE"), quote("okx", "MYSTERY")},
	}, time.Unix(1700000000, 0))

	out := r.Enrich(context.Background(), snap)

	if !out.StampedAt().Equal(snap.StampedAt()) {
		t.Error("enrichment must keep the snapshot stamp")
	}

	binance := out.Quotes("binance")
	// ETH(1) + PEPE expanded to ethereum and solana (2) + WAVAX2 via pattern (1)
	if len(binance) != 4 {
		t.Fatalf("expected 4 binance quotes, got %d", len(binance))
	}
	if binance[0].Chain != asset.ChainEthereum || binance[0].Contract != asset.NativeContract {
		t.Errorf("expected native ETH, got %s/%s", binance[0].Chain, binance[0].Contract)
	}

	pepe := byChain(binance[1:3])
	if _, ok := pepe[asset.ChainEthereum]; !ok {
		t.Error("expected an ethereum PEPE quote")
	}
	if sol, ok := pepe[asset.ChainSolana]; !ok || sol.Contract != pepeCandidates[1].Contract {
		t.Errorf("expected a solana PEPE quote, got %+v", pepe)
	}
	if binance[3].Chain != asset.ChainAvalanche {
		t.Errorf("expected pattern match to avalanche, got %s", binance[3].Chain)
	}

	okx := out.Quotes("okx")
	if len(okx) != 3 {
		t.Fatalf("expected 3 okx quotes, got %d", len(okx))
	}
	mystery := okx[2]
	if mystery.Chain != asset.ChainUnresolved {
		t.Errorf("unresolvable symbols must be tagged unresolved, got %s", mystery.Chain)
	}
	if !mystery.Key().SymbolOnly() {
		t.Error("unresolved quote must carry a symbol-only key")
	}

	// PEPE and MYSTERY are looked up once each despite appearing on two sources.
	if lookup.Calls("PEPE") != 1 || lookup.Calls("MYSTERY") != 1 {
		t.Errorf("expected one lookup per symbol, got PEPE=%d MYSTERY=%d", lookup.Calls("PEPE"), lookup.Calls("MYSTERY"))
	}

	stats := r.Stats()
	if stats.Symbols != 4 || stats.Resolved != 3 || stats.Unresolved != 1 || stats.Expanded != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestResolver_KnownChainIsKept(t *testing.T) {
	r, _ := newTestResolver(newFakeLookup("fake", nil))

	// A pattern would say ethereum; the source already said arbitrum.
	weth := quote("dex", "WETH").WithIdentity(asset.ChainArbitrum, "")
	usdt := quote("dex", "USDT").WithIdentity(asset.ChainBSC, "")

	out := r.Enrich(context.Background(), market.NewSnapshot(map[string][]market.Quote{
		"dex": {weth, usdt},
	}, time.Now()))

	quotes := out.Quotes("dex")
	if len(quotes) != 2 {
		t.Fatalf("expected 2 quotes, got %d", len(quotes))
	}
	if quotes[0].Chain != asset.ChainArbitrum {
		t.Errorf("known chain must not be overridden, got %s", quotes[0].Chain)
	}
	if quotes[1].Contract != "0x55d398326f99059ff775485246999027b3197955" {
		t.Errorf("expected contract filled from the asset table, got %s", quotes[1].Contract)
	}
}

func TestResolver_LookupFailureDoesNotAbort(t *testing.T) {
	lookup := newFakeLookup("fake", nil)
	lookup.err = errors.New("service down")
	r, ls := newTestResolver(lookup)

	out := r.Enrich(context.Background(), market.NewSnapshot(map[string][]market.Quote{
		"binance": {quote("binance", "BTC"), quote("binance", "PEPE")},
	}, time.Now()))

	quotes := out.Quotes("binance")
	if len(quotes) != 2 {
		t.Fatalf("expected both quotes to survive, got %d", len(quotes))
	}
	if quotes[0].Chain != asset.ChainBitcoin {
		t.Errorf("expected BTC resolved statically, got %s", quotes[0].Chain)
	}
	if quotes[1].Chain != asset.ChainUnresolved {
		t.Errorf("expected PEPE unresolved, got %s", quotes[1].Chain)
	}
	if ls.Stats().Failures != 1 || r.Stats().Failures != 1 {
		t.Errorf("expected the failure counted, got %+v", r.Stats())
	}
}
