// Package app contains application services and port definitions for the market data context.
package app

import (
	"context"

	"github.com/fd1az/arbitrage-scanner/business/market/domain"
)

// SourceAdapter normalizes one exchange's ticker feed into canonical quotes.
type SourceAdapter interface {
	// Name is the exchange identifier stamped on every quote.
	Name() string

	// Connect prepares the adapter. Adapters without a persistent
	// connection only verify reachability.
	Connect(ctx context.Context) error

	// FetchQuotes returns the current best bid/ask for every symbol.
	// Malformed records are dropped individually. An empty slice with a
	// nil error is a successful fetch that found nothing.
	FetchQuotes(ctx context.Context) ([]domain.Quote, error)
}

// Closer is implemented by adapters that hold connections open.
type Closer interface {
	Close() error
}
