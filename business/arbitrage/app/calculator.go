package app

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/fd1az/arbitrage-scanner/business/arbitrage/domain"
	market "github.com/fd1az/arbitrage-scanner/business/market/domain"
	transferDomain "github.com/fd1az/arbitrage-scanner/business/transfer/domain"
	"github.com/fd1az/arbitrage-scanner/internal/apperror"
	"github.com/fd1az/arbitrage-scanner/internal/asset"
	"github.com/fd1az/arbitrage-scanner/internal/logger"
)

const (
	tracerName = "github.com/fd1az/arbitrage-scanner/business/arbitrage/app"
	meterName  = tracerName

	DefaultWorkers = 8
)

// CalculatorConfig holds the tunables of one Calculator.
type CalculatorConfig struct {
	Thresholds           domain.Thresholds
	MaxResults           int // 0 keeps everything
	Workers              int // concurrent transfer checks
	AnomalySourceRatio   float64
	AllowSymbolOnlyMatch bool
}

// Result is the outcome of one calculation cycle.
type Result struct {
	Opportunities []domain.Opportunity
	Stats         domain.CalcStats
}

// Calculator finds cross-exchange spreads in an enriched quote snapshot.
type Calculator struct {
	fees    *FeeTable
	costs   *TransferCostTable
	checker TransferChecker
	guard   SyntheticGuard
	logger  logger.LoggerInterface
	tracer  trace.Tracer
	now     func() time.Time

	mu              sync.RWMutex
	thresholds      domain.Thresholds
	maxResults      int
	workers         int
	allowSymbolOnly bool

	cycleCounter       metric.Int64Counter
	opportunityCounter metric.Int64Counter
	rejectCounter      metric.Int64Counter
}

// NewCalculator creates a Calculator. checker may be nil, in which case every
// transfer is treated as unknown.
func NewCalculator(
	cfg CalculatorConfig,
	fees *FeeTable,
	costs *TransferCostTable,
	checker TransferChecker,
	log logger.LoggerInterface,
) (*Calculator, error) {
	if err := cfg.Thresholds.Validate(); err != nil {
		return nil, err
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if fees == nil {
		fees = NewFeeTable(nil, decimal.Zero)
	}
	if costs == nil {
		costs = NewTransferCostTable(decimal.Zero)
	}

	c := &Calculator{
		fees:            fees,
		costs:           costs,
		checker:         checker,
		guard:           NewSyntheticGuard(cfg.AnomalySourceRatio),
		logger:          log,
		tracer:          otel.Tracer(tracerName),
		now:             time.Now,
		thresholds:      cfg.Thresholds,
		maxResults:      cfg.MaxResults,
		workers:         cfg.Workers,
		allowSymbolOnly: cfg.AllowSymbolOnlyMatch,
	}

	meter := otel.Meter(meterName)
	c.cycleCounter, _ = meter.Int64Counter(
		"arbitrage_cycles_total",
		metric.WithDescription("Calculation cycles by outcome"),
	)
	c.opportunityCounter, _ = meter.Int64Counter(
		"arbitrage_opportunities_total",
		metric.WithDescription("Opportunities emitted"),
	)
	c.rejectCounter, _ = meter.Int64Counter(
		"arbitrage_rejections_total",
		metric.WithDescription("Candidate pairs rejected by reason"),
	)
	return c, nil
}

// UpdateTradingFee changes an exchange's fee percent from the next cycle on.
func (c *Calculator) UpdateTradingFee(exchange string, feePct decimal.Decimal) error {
	if feePct.IsNegative() || feePct.GreaterThanOrEqual(decimal.NewFromInt(100)) {
		return apperror.New(apperror.CodeInvalidInput,
			apperror.WithContext(fmt.Sprintf("fee for %s must be in [0, 100), got %s", exchange, feePct)))
	}
	c.fees.Set(exchange, feePct)
	return nil
}

// UpdateTransferCost changes the cost of moving an asset from one chain to another.
func (c *Calculator) UpdateTransferCost(from, to asset.Chain, cost decimal.Decimal) error {
	if cost.IsNegative() {
		return apperror.New(apperror.CodeInvalidInput,
			apperror.WithContext(fmt.Sprintf("transfer cost %s -> %s must be >= 0, got %s", from, to, cost)))
	}
	c.costs.Set(from, to, cost)
	return nil
}

// SetThresholds replaces the profit and volume bounds.
func (c *Calculator) SetThresholds(t domain.Thresholds) error {
	if err := t.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	c.thresholds = t
	c.mu.Unlock()
	return nil
}

// Thresholds returns the bounds currently in force.
func (c *Calculator) Thresholds() domain.Thresholds {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.thresholds
}

// cycle is the configuration frozen at the start of one Calculate call.
type cycle struct {
	thresholds      domain.Thresholds
	fees            *FeeTable
	costs           *TransferCostTable
	maxResults      int
	workers         int
	allowSymbolOnly bool
}

func (c *Calculator) freeze() cycle {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cycle{
		thresholds:      c.thresholds,
		fees:            c.fees.Snapshot(),
		costs:           c.costs.Snapshot(),
		maxResults:      c.maxResults,
		workers:         c.workers,
		allowSymbolOnly: c.allowSymbolOnly,
	}
}

type groupKey struct {
	key        asset.Key
	quoteAsset string
}

type candidate struct {
	buy, sell  domain.Leg
	spread     domain.Spread
	fees       domain.Fees
	confidence domain.MatchConfidence
}

// Calculate runs one cycle over snap and returns opportunities ranked by
// profit percent, highest first. It never fails: anomalies shrink the result.
func (c *Calculator) Calculate(ctx context.Context, snap market.Snapshot) Result {
	ctx, span := c.tracer.Start(ctx, "arbitrage.calculate")
	defer span.End()

	cyc := c.freeze()
	stats := domain.NewCalcStats()

	valid := make(map[string][]market.Quote)
	for src, quotes := range snap.All() {
		kept := make([]market.Quote, 0, len(quotes))
		for _, q := range quotes {
			if err := q.Validate(); err != nil {
				stats.Reject(domain.RejectInvalidQuote)
				c.logger.Debug(ctx, "dropping invalid quote", "error", err)
				continue
			}
			if q.Crossed() {
				stats.Crossed++
			}
			kept = append(kept, q)
		}
		valid[src] = kept
		stats.Quotes += len(kept)
	}

	flagged, err := c.guard.Check(valid)
	stats.FlaggedSources = flagged
	if err != nil {
		stats.BatchRejected = true
		c.logger.Warn(ctx, "discarding batch", "error", err, "flagged_sources", flagged)
		c.count(ctx, "rejected", stats)
		span.SetAttributes(attribute.Bool("batch_rejected", true))
		return Result{Opportunities: []domain.Opportunity{}, Stats: stats}
	}

	candidates := c.evaluate(valid, cyc, &stats)
	opps := c.checkTransfers(ctx, candidates, cyc, &stats)

	sort.Slice(opps, func(i, j int) bool { return ranksBefore(opps[i], opps[j]) })
	if cyc.maxResults > 0 && len(opps) > cyc.maxResults {
		opps = opps[:cyc.maxResults]
	}
	stats.Opportunities = len(opps)

	span.SetAttributes(
		attribute.Int("quotes", stats.Quotes),
		attribute.Int("groups", stats.Groups),
		attribute.Int("opportunities", stats.Opportunities),
	)
	c.count(ctx, "ok", stats)
	return Result{Opportunities: opps, Stats: stats}
}

// evaluate groups legs by asset and applies every check that needs no I/O.
func (c *Calculator) evaluate(bySource map[string][]market.Quote, cyc cycle, stats *domain.CalcStats) []candidate {
	groups := make(map[groupKey][]domain.Leg)
	for _, quotes := range bySource {
		for _, q := range quotes {
			leg := domain.Leg{
				Source:     q.Source,
				Symbol:     q.Symbol,
				QuoteAsset: q.QuoteAsset,
				Key:        q.Key(),
				Bid:        q.Bid,
				Ask:        q.Ask,
				Volume:     q.Volume,
			}
			gk := groupKey{key: leg.Key, quoteAsset: leg.QuoteAsset}
			groups[gk] = append(groups[gk], leg)
		}
	}

	var out []candidate
	for gk, legs := range groups {
		if len(legs) < 2 || !multiSource(legs) {
			continue
		}
		confidence := domain.MatchExact
		if gk.key.SymbolOnly() {
			if !cyc.allowSymbolOnly {
				continue
			}
			confidence = domain.MatchSymbolOnly
			stats.SymbolOnly++
		}
		stats.Groups++

		for i := range legs {
			for j := range legs {
				if i == j || legs[i].Source == legs[j].Source {
					continue
				}
				stats.Pairs++
				if cand, reason, ok := c.price(legs[i], legs[j], cyc); ok {
					cand.confidence = confidence
					out = append(out, cand)
				} else {
					stats.Reject(reason)
				}
			}
		}
	}
	return out
}

// price evaluates buying on buy and selling on sell.
func (c *Calculator) price(buy, sell domain.Leg, cyc cycle) (candidate, domain.RejectReason, bool) {
	if !buy.Ask.LessThan(sell.Bid) {
		return candidate{}, domain.RejectNoGrossSpread, false
	}

	fees := domain.Fees{
		BuyFeePct:    cyc.fees.Fee(buy.Source),
		SellFeePct:   cyc.fees.Fee(sell.Source),
		TransferCost: cyc.costs.Cost(buy.Key.Chain, sell.Key.Chain),
	}
	spread := domain.NewSpread(buy.Ask, sell.Bid, fees)
	if !spread.IsProfitable() {
		return candidate{}, domain.RejectUnprofitable, false
	}

	if !cyc.thresholds.AcceptsVolume(decimal.Min(buy.Volume, sell.Volume)) {
		return candidate{}, domain.RejectLowVolume, false
	}
	if spread.ProfitPct.LessThan(cyc.thresholds.MinProfitPct) {
		return candidate{}, domain.RejectBelowMinProfit, false
	}
	if spread.ProfitPct.GreaterThan(cyc.thresholds.MaxProfitPct) {
		return candidate{}, domain.RejectAboveMaxProfit, false
	}

	return candidate{buy: buy, sell: sell, spread: spread, fees: fees}, "", true
}

// checkTransfers consults the transfer checker for every surviving candidate
// with at most cyc.workers checks in flight.
func (c *Calculator) checkTransfers(ctx context.Context, cands []candidate, cyc cycle, stats *domain.CalcStats) []domain.Opportunity {
	results := make([]transferDomain.CheckResult, len(cands))
	if c.checker == nil {
		for i := range results {
			results[i] = transferDomain.Unknown()
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(cyc.workers)
		for i, cand := range cands {
			g.Go(func() error {
				results[i] = c.checker.Check(gctx, cand.buy.Key.Base, cand.buy.Source, cand.sell.Source)
				return nil
			})
		}
		_ = g.Wait()
		stats.TransferCalls = len(cands)
	}

	now := c.now()
	opps := make([]domain.Opportunity, 0, len(cands))
	for i, cand := range cands {
		if results[i].Rejected() {
			stats.Reject(domain.RejectTransfer)
			continue
		}
		opps = append(opps, domain.NewOpportunity(cand.buy, cand.sell, cand.spread, cand.fees, results[i], cand.confidence, now))
	}
	return opps
}

func (c *Calculator) count(ctx context.Context, outcome string, stats domain.CalcStats) {
	if c.cycleCounter != nil {
		c.cycleCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	}
	if c.opportunityCounter != nil && stats.Opportunities > 0 {
		c.opportunityCounter.Add(ctx, int64(stats.Opportunities))
	}
	if c.rejectCounter != nil {
		for reason, n := range stats.Rejected {
			c.rejectCounter.Add(ctx, int64(n), metric.WithAttributes(attribute.String("reason", string(reason))))
		}
	}
}

func multiSource(legs []domain.Leg) bool {
	for _, l := range legs[1:] {
		if l.Source != legs[0].Source {
			return true
		}
	}
	return false
}

// ranksBefore orders by profit percent descending, then by a stable identity.
func ranksBefore(a, b domain.Opportunity) bool {
	if cmp := a.ProfitPct.Cmp(b.ProfitPct); cmp != 0 {
		return cmp > 0
	}
	if a.Symbol != b.Symbol {
		return a.Symbol < b.Symbol
	}
	if a.Blockchain != b.Blockchain {
		return a.Blockchain < b.Blockchain
	}
	if a.BuyExchange != b.BuyExchange {
		return a.BuyExchange < b.BuyExchange
	}
	return a.SellExchange < b.SellExchange
}
