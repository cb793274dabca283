package domain

import (
	"time"
)

// ExchangeStatus is the liveness of one source after its latest fetch attempt.
type ExchangeStatus struct {
	Source     string
	IsOnline   bool
	LastUpdate time.Time // last successful fetch
	ErrorCount int       // consecutive failures, reset on success
	LastError  string
	QuoteCount int
	Latency    time.Duration
}

// Snapshot is an immutable view of the quote cache after one refresh cycle.
type Snapshot struct {
	quotes    map[string][]Quote
	stampedAt time.Time
}

// NewSnapshot copies quotes so later cache writes cannot leak into it.
func NewSnapshot(quotes map[string][]Quote, stampedAt time.Time) Snapshot {
	cp := make(map[string][]Quote, len(quotes))
	for src, qs := range quotes {
		cp[src] = append([]Quote(nil), qs...)
	}
	return Snapshot{quotes: cp, stampedAt: stampedAt}
}

// Sources lists every source present in the snapshot.
func (s Snapshot) Sources() []string {
	out := make([]string, 0, len(s.quotes))
	for src := range s.quotes {
		out = append(out, src)
	}
	return out
}

// Quotes returns a copy of the quotes held for source.
func (s Snapshot) Quotes(source string) []Quote {
	return append([]Quote(nil), s.quotes[source]...)
}

// All returns a copy of every source's quotes.
func (s Snapshot) All() map[string][]Quote {
	cp := make(map[string][]Quote, len(s.quotes))
	for src, qs := range s.quotes {
		cp[src] = append([]Quote(nil), qs...)
	}
	return cp
}

// Flatten returns every quote across sources.
func (s Snapshot) Flatten() []Quote {
	n := 0
	for _, qs := range s.quotes {
		n += len(qs)
	}
	out := make([]Quote, 0, n)
	for _, qs := range s.quotes {
		out = append(out, qs...)
	}
	return out
}

// Len counts quotes across all sources.
func (s Snapshot) Len() int {
	n := 0
	for _, qs := range s.quotes {
		n += len(qs)
	}
	return n
}

// StampedAt is when every fetch of the cycle had settled.
func (s Snapshot) StampedAt() time.Time {
	return s.stampedAt
}
