package app

import (
	"context"
	"errors"
	"testing"

	"github.com/fd1az/arbitrage-scanner/business/identity/domain"
	"github.com/fd1az/arbitrage-scanner/internal/asset"
)

type stubStrategy struct {
	name  string
	res   []domain.Resolution
	err   error
	calls int
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Resolve(_ context.Context, _ string) ([]domain.Resolution, error) {
	s.calls++
	return s.res, s.err
}

func TestStaticStrategy(t *testing.T) {
	s := NewStaticStrategy(asset.DefaultRegistry(), map[string]asset.Chain{"usdt": asset.ChainBSC})
	ctx := context.Background()

	tests := []struct {
		name         string
		base         string
		wantChain    asset.Chain
		wantContract string
		wantNone     bool
	}{
		{"native", "ETH", asset.ChainEthereum, asset.NativeContract, false},
		{"home_chain_token", "usdc", asset.ChainEthereum, "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", false},
		{"override", "USDT", asset.ChainBSC, "0x55d398326f99059ff775485246999027b3197955", false},
		{"solana_native", "SOL", asset.ChainSolana, asset.NativeContract, false},
		{"unknown", "PEPE", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := s.Resolve(ctx, tt.base)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantNone {
				if len(res) != 0 {
					t.Errorf("expected no resolution, got %+v", res)
				}
				return
			}
			if len(res) != 1 {
				t.Fatalf("expected 1 resolution, got %d", len(res))
			}
			if res[0].Chain != tt.wantChain || res[0].Contract != tt.wantContract {
				t.Errorf("expected %s/%s, got %s/%s", tt.wantChain, tt.wantContract, res[0].Chain, res[0].Contract)
			}
			if res[0].Strategy != StrategyStatic {
				t.Errorf("unexpected strategy %s", res[0].Strategy)
			}
		})
	}
}

func TestPatternStrategy(t *testing.T) {
	p := NewDefaultPatternStrategy()
	ctx := context.Background()

	tests := []struct {
		base string
		want asset.Chain
	}{
		{"WETH", asset.ChainEthereum},
		{"WBNB", asset.ChainBSC},
		{"WPOL", asset.ChainPolygon},
		{"WMATIC", asset.ChainPolygon},
		{"WSOL", asset.ChainSolana},
		{"USDC.E", asset.ChainAvalanche},
		{"usdc.e", asset.ChainAvalanche},
		{"PEPE", ""},
		{".E", ""},
	}

	for _, tt := range tests {
		t.Run(tt.base, func(t *testing.T) {
			res, err := p.Resolve(ctx, tt.base)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.want == "" {
				if len(res) != 0 {
					t.Errorf("expected no match, got %+v", res)
				}
				return
			}
			if len(res) != 1 || res[0].Chain != tt.want || res[0].Contract != "" {
				t.Errorf("expected %s without contract, got %+v", tt.want, res)
			}
		})
	}
}

func TestFirstMatch(t *testing.T) {
	ctx := context.Background()
	hit := []domain.Resolution{{Chain: asset.ChainSolana, Strategy: "b"}}

	t.Run("stops_at_first_match", func(t *testing.T) {
		a := &stubStrategy{name: "a"}
		b := &stubStrategy{name: "b", res: hit}
		c := &stubStrategy{name: "c", res: []domain.Resolution{{Chain: asset.ChainBSC}}}

		res, err := NewFirstMatch(a, b, c).Resolve(ctx, "X")
		if err != nil || len(res) != 1 || res[0].Chain != asset.ChainSolana {
			t.Fatalf("unexpected result %+v, %v", res, err)
		}
		if c.calls != 0 {
			t.Error("strategies after a match must not run")
		}
	})

	t.Run("failure_does_not_stop_chain", func(t *testing.T) {
		a := &stubStrategy{name: "a", err: errors.New("boom")}
		b := &stubStrategy{name: "b", res: hit}

		res, err := NewFirstMatch(a, b).Resolve(ctx, "X")
		if err != nil || len(res) != 1 {
			t.Fatalf("expected match after failure, got %+v, %v", res, err)
		}
	})

	t.Run("error_when_nothing_matches", func(t *testing.T) {
		a := &stubStrategy{name: "a", err: errors.New("boom")}
		b := &stubStrategy{name: "b"}

		res, err := NewFirstMatch(a, b).Resolve(ctx, "X")
		if err == nil || len(res) != 0 {
			t.Fatalf("expected error and no result, got %+v, %v", res, err)
		}
	})
}

func TestOrdered(t *testing.T) {
	static := &stubStrategy{name: StrategyStatic}
	pattern := &stubStrategy{name: StrategyPattern}

	f := Ordered([]string{"pattern", "lookup", "STATIC"}, map[string]Strategy{
		StrategyStatic:  static,
		StrategyPattern: pattern,
	})

	got := f.Strategies()
	if len(got) != 2 || got[0] != StrategyPattern || got[1] != StrategyStatic {
		t.Errorf("unexpected order %v", got)
	}
}
