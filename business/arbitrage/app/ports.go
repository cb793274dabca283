// Package app contains application services and port definitions for the arbitrage context.
package app

import (
	"context"
	"time"

	"github.com/fd1az/arbitrage-scanner/business/arbitrage/domain"
	identityDomain "github.com/fd1az/arbitrage-scanner/business/identity/domain"
	marketDomain "github.com/fd1az/arbitrage-scanner/business/market/domain"
	transferDomain "github.com/fd1az/arbitrage-scanner/business/transfer/domain"
)

// TransferChecker answers whether an asset can move from a buy exchange to a
// sell exchange. Implementations fail open: unknown is never a rejection.
type TransferChecker interface {
	Check(ctx context.Context, asset, buyExchange, sellExchange string) transferDomain.CheckResult
}

// QuoteSource is the refreshed quote cache the detector reads each cycle.
type QuoteSource interface {
	RefreshAll(ctx context.Context)
	GetAll() marketDomain.Snapshot
	GetStatus() []marketDomain.ExchangeStatus
}

// Enricher tags quotes with chain and contract before they are compared.
type Enricher interface {
	Enrich(ctx context.Context, snap marketDomain.Snapshot) marketDomain.Snapshot
	Stats() identityDomain.Stats
}

// Reporter defines the interface for reporting arbitrage opportunities.
type Reporter interface {
	// Start initializes the reporter.
	Start(ctx context.Context) error

	// Report publishes the outcome of one detection cycle.
	Report(ctx context.Context, cycle Cycle)

	// Stop gracefully shuts down the reporter.
	Stop() error
}

// Cycle is everything one detection pass produced.
type Cycle struct {
	Number        int
	StartedAt     time.Time
	Duration      time.Duration
	Opportunities []domain.Opportunity
	Stats         domain.CalcStats
	Sources       []marketDomain.ExchangeStatus
	Identity      identityDomain.Stats
}
