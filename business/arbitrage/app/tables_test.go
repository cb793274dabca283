package app

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/fd1az/arbitrage-scanner/internal/asset"
)

func TestFeeTable(t *testing.T) {
	fees := NewFeeTable(map[string]decimal.Decimal{
		"Binance": decimal.RequireFromString("0.1"),
	}, decimal.RequireFromString("0.2"))

	if !fees.Fee("binance").Equal(decimal.RequireFromString("0.1")) {
		t.Errorf("expected configured fee, got %s", fees.Fee("binance"))
	}
	if !fees.Fee("unknown").Equal(decimal.RequireFromString("0.2")) {
		t.Errorf("expected default fee, got %s", fees.Fee("unknown"))
	}

	snap := fees.Snapshot()
	fees.Set("BINANCE", decimal.RequireFromString("0.075"))

	if !fees.Fee("binance").Equal(decimal.RequireFromString("0.075")) {
		t.Errorf("expected updated fee, got %s", fees.Fee("binance"))
	}
	if !snap.Fee("binance").Equal(decimal.RequireFromString("0.1")) {
		t.Error("a snapshot must not see later updates")
	}
}

func TestTransferCostTable(t *testing.T) {
	costs := NewTransferCostTable(decimal.RequireFromString("1"))
	costs.Set(asset.ChainEthereum, asset.ChainArbitrum, decimal.RequireFromString("0.3"))

	tests := []struct {
		name     string
		from, to asset.Chain
		want     string
	}{
		{"explicit_route", asset.ChainEthereum, asset.ChainArbitrum, "0.3"},
		{"routes_are_directed", asset.ChainArbitrum, asset.ChainEthereum, "1"},
		{"same_chain_is_free", asset.ChainSolana, asset.ChainSolana, "0"},
		{"unresolved_pays_default", asset.ChainUnresolved, asset.ChainUnresolved, "1"},
		{"unknown_route", asset.ChainBSC, asset.ChainPolygon, "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := costs.Cost(tt.from, tt.to)
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}
