package domain

import (
	"testing"

	"github.com/fd1az/arbitrage-scanner/internal/asset"
)

func info(networks ...Network) *NetworkInfo {
	return &NetworkInfo{Exchange: "x", Asset: "USDT", Networks: networks}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name       string
		buy, sell  *NetworkInfo
		wantBuy    Availability
		wantSell   Availability
		wantCommon []asset.Chain
		rejected   bool
	}{
		{
			name:     "both_unknown",
			wantBuy:  AvailabilityUnknown,
			wantSell: AvailabilityUnknown,
		},
		{
			name:       "shared_network",
			buy:        info(NewNetwork("ERC20", true, true), NewNetwork("TRC20", true, true)),
			sell:       info(NewNetwork("ETH", false, true), NewNetwork("BSC", true, true)),
			wantBuy:    AvailabilityAvailable,
			wantSell:   AvailabilityAvailable,
			wantCommon: []asset.Chain{asset.ChainEthereum},
		},
		{
			name:     "no_shared_network",
			buy:      info(NewNetwork("SOL", true, true)),
			sell:     info(NewNetwork("ERC20", true, true)),
			wantBuy:  AvailabilityAvailable,
			wantSell: AvailabilityAvailable,
			rejected: true,
		},
		{
			name:     "both_suspended",
			buy:      info(NewNetwork("ERC20", false, true)),
			sell:     info(NewNetwork("ERC20", true, false)),
			wantBuy:  AvailabilityUnavailable,
			wantSell: AvailabilityUnavailable,
			rejected: true,
		},
		{
			name:     "one_side_unknown",
			buy:      info(NewNetwork("ERC20", false, false)),
			wantBuy:  AvailabilityUnavailable,
			wantSell: AvailabilityUnknown,
		},
		{
			name:     "unmapped_enabled_network_is_unknown",
			buy:      info(NewNetwork("SOMECHAIN", true, true)),
			sell:     info(NewNetwork("ERC20", true, true)),
			wantBuy:  AvailabilityUnknown,
			wantSell: AvailabilityAvailable,
		},
		{
			name:     "unmapped_on_both_sides_keeps_pair",
			buy:      info(NewNetwork("SOMECHAIN", true, true)),
			sell:     info(NewNetwork("SOMECHAIN", true, true)),
			wantBuy:  AvailabilityUnknown,
			wantSell: AvailabilityUnknown,
		},
		{
			name:     "unmapped_but_disabled_is_unavailable",
			buy:      info(NewNetwork("SOMECHAIN", false, false)),
			sell:     info(NewNetwork("OTHERCHAIN", false, false)),
			wantBuy:  AvailabilityUnavailable,
			wantSell: AvailabilityUnavailable,
			rejected: true,
		},
		{
			name:     "empty_network_list_is_unavailable",
			buy:      info(),
			sell:     info(),
			wantBuy:  AvailabilityUnavailable,
			wantSell: AvailabilityUnavailable,
			rejected: true,
		},
		{
			name:     "unmapped_network_may_be_the_shared_route",
			buy:      info(NewNetwork("ERC20", true, true), NewNetwork("SOMECHAIN", true, true)),
			sell:     info(NewNetwork("BEP20", true, true), NewNetwork("SOMECHAIN", true, true)),
			wantBuy:  AvailabilityUnknown,
			wantSell: AvailabilityUnknown,
		},
		{
			name:       "native_xrp_ledger",
			buy:        info(NewNetwork("XRP", true, true)),
			sell:       info(NewNetwork("XRP", true, true)),
			wantBuy:    AvailabilityAvailable,
			wantSell:   AvailabilityAvailable,
			wantCommon: []asset.Chain{asset.ChainXRP},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Evaluate(tt.buy, tt.sell)
			if res.BuyAvailable != tt.wantBuy || res.SellAvailable != tt.wantSell {
				t.Errorf("expected %s/%s, got %s/%s", tt.wantBuy, tt.wantSell, res.BuyAvailable, res.SellAvailable)
			}
			if len(res.CommonNetworks) != len(tt.wantCommon) {
				t.Fatalf("expected common %v, got %v", tt.wantCommon, res.CommonNetworks)
			}
			for i := range tt.wantCommon {
				if res.CommonNetworks[i] != tt.wantCommon[i] {
					t.Errorf("expected common %v, got %v", tt.wantCommon, res.CommonNetworks)
				}
			}
			if res.Rejected() != tt.rejected {
				t.Errorf("expected rejected=%v", tt.rejected)
			}
		})
	}
}

func TestAvailability_Known(t *testing.T) {
	if AvailabilityUnknown.Known() {
		t.Error("unknown must not be known")
	}
	if !AvailabilityUnavailable.Known() || !AvailabilityAvailable.Known() {
		t.Error("definitive answers must be known")
	}
}
