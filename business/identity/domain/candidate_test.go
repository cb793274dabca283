package domain

import (
	"testing"

	"github.com/fd1az/arbitrage-scanner/internal/asset"
)

func TestNewCandidate(t *testing.T) {
	tests := []struct {
		name     string
		chain    string
		contract string
		wantOK   bool
		want     string
	}{
		{"evm_lowercased", "ethereum", asset.AddrUSDCEthereum, true, "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"},
		{"alias_chain", "binance-smart-chain", asset.AddrUSDTBSC, true, "0x55d398326f99059ff775485246999027b3197955"},
		{"solana_keeps_case", "solana", "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", true, "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"},
		{"unknown_chain", "osmosis", "0xabc", false, ""},
		{"bad_evm_address", "ethereum", "0x1234", false, ""},
		{"empty_contract", "ethereum", "", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := NewCandidate("test", "usdc", tt.chain, tt.contract)
			if ok != tt.wantOK {
				t.Fatalf("expected ok=%v, got %v", tt.wantOK, ok)
			}
			if !ok {
				return
			}
			if c.Contract != tt.want {
				t.Errorf("expected contract %s, got %s", tt.want, c.Contract)
			}
			if c.Symbol != "USDC" {
				t.Errorf("expected upper-cased symbol, got %s", c.Symbol)
			}
		})
	}
}

func TestBestPerChain(t *testing.T) {
	cands := []Candidate{
		{Symbol: "PEPE", Chain: asset.ChainEthereum, Contract: "0x1", LiquidityUSD: 500},
		{Symbol: "PEPE", Chain: asset.ChainBSC, Contract: "0x2", LiquidityUSD: 900},
		{Symbol: "PEPE", Chain: asset.ChainEthereum, Contract: "0x3", LiquidityUSD: 1000},
		{Symbol: "PEPE", Chain: asset.ChainSolana, Contract: "So1", LiquidityUSD: 10},
	}

	got := BestPerChain(cands, 0)
	if len(got) != 3 {
		t.Fatalf("expected one candidate per chain, got %d", len(got))
	}
	if got[0].Contract != "0x3" || got[1].Chain != asset.ChainBSC || got[2].Chain != asset.ChainSolana {
		t.Errorf("unexpected order %+v", got)
	}

	capped := BestPerChain(cands, 2)
	if len(capped) != 2 || capped[1].Chain != asset.ChainBSC {
		t.Errorf("expected the two most liquid chains, got %+v", capped)
	}
}

func TestStats_HitRate(t *testing.T) {
	if (Stats{}).HitRate() != 0 {
		t.Error("empty stats must report 0")
	}
	s := Stats{CacheHits: 3, CacheMisses: 1}
	if s.HitRate() != 75 {
		t.Errorf("expected 75, got %v", s.HitRate())
	}
}
