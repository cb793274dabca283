package domain

import "github.com/fd1az/arbitrage-scanner/internal/asset"

// Resolution assigns a chain, and optionally a contract, to a base symbol.
type Resolution struct {
	Chain    asset.Chain
	Contract string
	// Strategy names the resolver stage that produced it.
	Strategy string
}

// FromCandidates converts lookup candidates into resolutions.
func FromCandidates(strategy string, cands []Candidate) []Resolution {
	if len(cands) == 0 {
		return nil
	}
	out := make([]Resolution, 0, len(cands))
	for _, c := range cands {
		out = append(out, Resolution{Chain: c.Chain, Contract: c.Contract, Strategy: strategy})
	}
	return out
}

// Stats summarizes resolver activity.
type Stats struct {
	Symbols     int
	Resolved    int
	Unresolved  int
	Expanded    int
	CacheHits   int64
	CacheMisses int64
	Lookups     int64
	Failures    int64
}

// HitRate returns cache hits as a percentage of cache reads.
func (s Stats) HitRate() float64 {
	total := s.CacheHits + s.CacheMisses
	if total == 0 {
		return 0
	}
	return float64(s.CacheHits) / float64(total) * 100
}
