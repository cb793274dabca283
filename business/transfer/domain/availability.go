// Package domain holds the transfer availability model: which networks an
// exchange supports for an asset and whether a transfer between two
// exchanges is possible.
package domain

import (
	"sort"
	"time"

	"github.com/fd1az/arbitrage-scanner/internal/asset"
)

// Availability is a tri-state answer. Unknown means the exchange could not be asked.
type Availability string

const (
	AvailabilityUnknown     Availability = "unknown"
	AvailabilityAvailable   Availability = "available"
	AvailabilityUnavailable Availability = "unavailable"
)

// Known reports whether the exchange gave a definitive answer.
func (a Availability) Known() bool {
	return a == AvailabilityAvailable || a == AvailabilityUnavailable
}

// Network is one deposit/withdraw network an exchange lists for an asset.
type Network struct {
	Name            string      `json:"name"` // exchange's own label, e.g. "ERC20"
	Chain           asset.Chain `json:"chain"`
	WithdrawEnabled bool        `json:"withdraw_enabled"`
	DepositEnabled  bool        `json:"deposit_enabled"`
}

// NewNetwork normalizes the exchange label into the chain vocabulary.
func NewNetwork(name string, withdraw, deposit bool) Network {
	return Network{
		Name:            name,
		Chain:           asset.NormalizeChain(name),
		WithdrawEnabled: withdraw,
		DepositEnabled:  deposit,
	}
}

// NetworkInfo is an exchange's network list for one asset.
type NetworkInfo struct {
	Exchange  string    `json:"exchange"`
	Asset     string    `json:"asset"`
	Networks  []Network `json:"networks"`
	FetchedAt time.Time `json:"fetched_at"`
	Stale     bool      `json:"stale"`
}

// Withdrawable returns the resolved chains the asset can leave the exchange
// on, and whether some enabled network could not be mapped to a chain.
func (n NetworkInfo) Withdrawable() (map[asset.Chain]struct{}, bool) {
	return n.chains(func(nw Network) bool { return nw.WithdrawEnabled })
}

// Depositable is Withdrawable for the deposit direction.
func (n NetworkInfo) Depositable() (map[asset.Chain]struct{}, bool) {
	return n.chains(func(nw Network) bool { return nw.DepositEnabled })
}

func (n NetworkInfo) chains(enabled func(Network) bool) (map[asset.Chain]struct{}, bool) {
	out := make(map[asset.Chain]struct{}, len(n.Networks))
	unmapped := false
	for _, nw := range n.Networks {
		if !enabled(nw) {
			continue
		}
		if nw.Chain.IsResolved() {
			out[nw.Chain] = struct{}{}
		} else {
			unmapped = true
		}
	}
	return out, unmapped
}

// CheckResult is the transfer availability of one asset from a buy exchange
// to a sell exchange.
type CheckResult struct {
	BuyAvailable   Availability  `json:"buy_available"`  // withdraw from the buy exchange
	SellAvailable  Availability  `json:"sell_available"` // deposit to the sell exchange
	CommonNetworks []asset.Chain `json:"common_networks"`
}

// Unknown is the result when neither exchange could be asked.
func Unknown() CheckResult {
	return CheckResult{BuyAvailable: AvailabilityUnknown, SellAvailable: AvailabilityUnknown}
}

// Rejected reports whether the transfer is definitively impossible: both
// sides unavailable, or both available with no shared network. Any unknown
// side keeps the pair alive.
func (r CheckResult) Rejected() bool {
	if r.BuyAvailable == AvailabilityUnavailable && r.SellAvailable == AvailabilityUnavailable {
		return true
	}
	return r.BuyAvailable == AvailabilityAvailable &&
		r.SellAvailable == AvailabilityAvailable &&
		len(r.CommonNetworks) == 0
}

// Evaluate builds a CheckResult from each side's network info. A nil side is
// unknown. A side is unavailable only when none of its listed networks is
// enabled; enabled networks on chains outside the vocabulary make it unknown.
func Evaluate(buy, sell *NetworkInfo) CheckResult {
	res := Unknown()

	var out, in map[asset.Chain]struct{}
	var outUnmapped, inUnmapped bool
	if buy != nil {
		out, outUnmapped = buy.Withdrawable()
		res.BuyAvailable = classify(len(out), outUnmapped)
	}
	if sell != nil {
		in, inUnmapped = sell.Depositable()
		res.SellAvailable = classify(len(in), inUnmapped)
	}

	if res.BuyAvailable == AvailabilityAvailable && res.SellAvailable == AvailabilityAvailable {
		for chain := range out {
			if _, ok := in[chain]; ok {
				res.CommonNetworks = append(res.CommonNetworks, chain)
			}
		}
		sort.Slice(res.CommonNetworks, func(i, j int) bool { return res.CommonNetworks[i] < res.CommonNetworks[j] })

		// An unmapped network may be the shared route.
		if len(res.CommonNetworks) == 0 {
			if outUnmapped {
				res.BuyAvailable = AvailabilityUnknown
			}
			if inUnmapped {
				res.SellAvailable = AvailabilityUnknown
			}
		}
	}
	return res
}

func classify(resolved int, unmapped bool) Availability {
	switch {
	case resolved > 0:
		return AvailabilityAvailable
	case unmapped:
		return AvailabilityUnknown
	default:
		return AvailabilityUnavailable
	}
}
