// Package domain holds the asset identity types shared by the resolver and its lookup providers.
package domain

import (
	"sort"
	"strings"
	"time"

	"github.com/fd1az/arbitrage-scanner/internal/asset"
)

// Candidate is one deployment of a symbol reported by a lookup provider.
type Candidate struct {
	Symbol       string      `json:"symbol"`
	Chain        asset.Chain `json:"chain"`
	Contract     string      `json:"contract"`
	Name         string      `json:"name,omitempty"`
	Decimals     int         `json:"decimals,omitempty"`
	LiquidityUSD float64     `json:"liquidity_usd,omitempty"`
	Pairs        int         `json:"pairs,omitempty"`
	Source       string      `json:"source"`
	Verified     bool        `json:"verified,omitempty"`
}

// NewCandidate normalizes symbol, chain and contract. ok is false when the
// chain is not part of the vocabulary or the address is malformed for it.
func NewCandidate(source, symbol, chain, contract string) (Candidate, bool) {
	c := asset.NormalizeChain(chain)
	if !c.IsResolved() {
		return Candidate{}, false
	}
	contract = asset.NormalizeContract(c, contract)
	if contract == "" || !asset.ValidContract(c, contract) {
		return Candidate{}, false
	}
	return Candidate{
		Symbol:   strings.ToUpper(strings.TrimSpace(symbol)),
		Chain:    c,
		Contract: contract,
		Source:   source,
	}, true
}

// Key returns the asset key of the deployment.
func (c Candidate) Key() asset.Key {
	return asset.NewKey(c.Symbol, c.Chain, c.Contract)
}

// BestPerChain keeps the most liquid candidate per chain, ordered by
// liquidity descending, and caps the result at limit when limit > 0.
// Candidates without liquidity data keep their input order.
func BestPerChain(cands []Candidate, limit int) []Candidate {
	best := make(map[asset.Chain]int, len(cands))
	out := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		if i, ok := best[c.Chain]; ok {
			if c.LiquidityUSD > out[i].LiquidityUSD {
				out[i] = c
			}
			continue
		}
		best[c.Chain] = len(out)
		out = append(out, c)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LiquidityUSD > out[j].LiquidityUSD
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// APICall is one outbound lookup call, kept for usage analysis.
type APICall struct {
	API      string
	Endpoint string
	Success  bool
	Latency  time.Duration
	Error    string
	CalledAt time.Time
}
