// Package app contains the asset identity resolver and its strategies.
package app

import (
	"context"
	"time"

	"github.com/fd1az/arbitrage-scanner/business/identity/domain"
)

// Strategy resolves a base symbol to zero or more chain deployments.
// An empty result with a nil error means the strategy has no opinion.
type Strategy interface {
	Name() string
	Resolve(ctx context.Context, base string) ([]domain.Resolution, error)
}

// ContractLookup queries an external service for a symbol's deployments.
type ContractLookup interface {
	Name() string
	Lookup(ctx context.Context, symbol string) ([]domain.Candidate, error)
}

// CandidateStore is a shared cache tier in front of the lookup services.
// Get reports found=true for a stored entry even when it holds no candidates.
type CandidateStore interface {
	Name() string
	Get(ctx context.Context, symbol string) (cands []domain.Candidate, found bool, err error)
	Put(ctx context.Context, symbol string, cands []domain.Candidate, ttl time.Duration) error
}

// LookupRecorder keeps a durable trail of lookup failures and outbound calls.
type LookupRecorder interface {
	RecordFailure(ctx context.Context, symbol, reason string) error
	RecordCall(ctx context.Context, call domain.APICall) error
}

// CandidateVerifier checks a candidate against its chain.
// ok is true when the candidate cannot be checked.
type CandidateVerifier interface {
	Verify(ctx context.Context, c domain.Candidate) (ok bool, err error)
}
