package app

import (
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/fd1az/arbitrage-scanner/internal/asset"
)

// FeeTable maps exchange -> trading fee percent. Unknown exchanges pay the default.
type FeeTable struct {
	mu       sync.RWMutex
	fees     map[string]decimal.Decimal
	fallback decimal.Decimal
}

// NewFeeTable copies fees; keys are matched case-insensitively.
func NewFeeTable(fees map[string]decimal.Decimal, fallback decimal.Decimal) *FeeTable {
	t := &FeeTable{fees: make(map[string]decimal.Decimal, len(fees)), fallback: fallback}
	for ex, fee := range fees {
		t.fees[strings.ToLower(ex)] = fee
	}
	return t
}

// Fee returns the fee percent charged by exchange.
func (t *FeeTable) Fee(exchange string) decimal.Decimal {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if fee, ok := t.fees[strings.ToLower(exchange)]; ok {
		return fee
	}
	return t.fallback
}

// Set overrides the fee for one exchange.
func (t *FeeTable) Set(exchange string, feePct decimal.Decimal) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.fees[strings.ToLower(exchange)] = feePct
}

// Snapshot returns a read-only copy for one calculation cycle.
func (t *FeeTable) Snapshot() *FeeTable {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return NewFeeTable(t.fees, t.fallback)
}

type route struct {
	from, to asset.Chain
}

// TransferCostTable maps (from chain, to chain) -> absolute cost per unit.
// Explicit routes win; otherwise the same resolved chain is free and every
// other combination, unresolved included, pays the default.
type TransferCostTable struct {
	mu       sync.RWMutex
	costs    map[route]decimal.Decimal
	fallback decimal.Decimal
}

// NewTransferCostTable creates an empty table with the given default cost.
func NewTransferCostTable(fallback decimal.Decimal) *TransferCostTable {
	return &TransferCostTable{costs: make(map[route]decimal.Decimal), fallback: fallback}
}

// Cost returns the transfer cost from one chain to another.
func (t *TransferCostTable) Cost(from, to asset.Chain) decimal.Decimal {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if cost, ok := t.costs[route{from, to}]; ok {
		return cost
	}
	if from == to && from.IsResolved() {
		return decimal.Zero
	}
	return t.fallback
}

// Set overrides the cost of one directed route.
func (t *TransferCostTable) Set(from, to asset.Chain, cost decimal.Decimal) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.costs[route{from, to}] = cost
}

// Snapshot returns a read-only copy for one calculation cycle.
func (t *TransferCostTable) Snapshot() *TransferCostTable {
	t.mu.RLock()
	defer t.mu.RUnlock()
	cp := &TransferCostTable{costs: make(map[route]decimal.Decimal, len(t.costs)), fallback: t.fallback}
	for r, c := range t.costs {
		cp.costs[r] = c
	}
	return cp
}
