package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/fd1az/arbitrage-scanner/internal/apm"
	"github.com/fd1az/arbitrage-scanner/internal/logger"
)

const DefaultInterval = 30 * time.Second

// DetectorConfig holds configuration for the arbitrage detector.
type DetectorConfig struct {
	Interval time.Duration
}

// Detector schedules detection cycles: refresh quotes, resolve identities,
// calculate, report.
type Detector struct {
	quotes     QuoteSource
	enricher   Enricher
	calculator *Calculator
	reporter   Reporter
	config     DetectorConfig
	logger     logger.LoggerInterface
	tracer     apm.Tracer

	mu     sync.Mutex
	cycles int
	last   Cycle

	cancel context.CancelFunc
	done   chan struct{}
}

// NewDetector creates a new arbitrage Detector. enricher may be nil, in
// which case quotes are compared as fetched.
func NewDetector(
	quotes QuoteSource,
	enricher Enricher,
	calculator *Calculator,
	reporter Reporter,
	config DetectorConfig,
	log logger.LoggerInterface,
) *Detector {
	if config.Interval <= 0 {
		config.Interval = DefaultInterval
	}
	return &Detector{
		quotes:     quotes,
		enricher:   enricher,
		calculator: calculator,
		reporter:   reporter,
		config:     config,
		logger:     log,
		tracer:     apm.NewTracer(tracerName),
	}
}

// Start starts the reporter, runs the first cycle and keeps running one
// cycle per interval until ctx is done or Stop is called.
func (d *Detector) Start(ctx context.Context) error {
	d.logger.Info(ctx, "starting arbitrage detector", "interval", d.config.Interval)

	if err := d.reporter.Start(ctx); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.done = make(chan struct{})

	go d.run(ctx)
	return nil
}

func (d *Detector) run(ctx context.Context) {
	defer close(d.done)

	ticker := time.NewTicker(d.config.Interval)
	defer ticker.Stop()

	d.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			d.logger.Info(context.Background(), "detector stopping", "reason", ctx.Err())
			return
		case <-ticker.C:
			d.RunOnce(ctx)
		}
	}
}

// RunOnce executes a single detection cycle and reports it.
func (d *Detector) RunOnce(ctx context.Context) Cycle {
	d.mu.Lock()
	d.cycles++
	number := d.cycles
	d.mu.Unlock()

	ctx, span := d.tracer.Start(ctx, "arbitrage.cycle", attribute.Int("cycle", number))
	defer span.End()

	started := time.Now()
	d.quotes.RefreshAll(ctx)
	snap := d.quotes.GetAll()

	cycle := Cycle{Number: number, StartedAt: started}
	if d.enricher != nil {
		snap = d.enricher.Enrich(ctx, snap)
		cycle.Identity = d.enricher.Stats()
	}

	res := d.calculator.Calculate(ctx, snap)
	cycle.Opportunities = res.Opportunities
	cycle.Stats = res.Stats
	cycle.Sources = d.quotes.GetStatus()
	cycle.Duration = time.Since(started)

	span.SetAttributes(
		attribute.Int("quotes", res.Stats.Quotes),
		attribute.Int("opportunities", len(res.Opportunities)),
	)
	if res.Stats.BatchRejected {
		span.AddEvent("batch_rejected", attribute.StringSlice("sources", res.Stats.FlaggedSources))
	}

	d.logger.Info(ctx, "cycle complete",
		"cycle", number,
		"quotes", res.Stats.Quotes,
		"groups", res.Stats.Groups,
		"opportunities", len(res.Opportunities),
		"batch_rejected", res.Stats.BatchRejected,
		"duration_ms", cycle.Duration.Milliseconds(),
	)

	d.mu.Lock()
	d.last = cycle
	d.mu.Unlock()

	d.reporter.Report(ctx, cycle)
	return cycle
}

// Last returns the most recent completed cycle.
func (d *Detector) Last() Cycle {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last
}

// Freshness is a health check: it fails until a cycle has completed and
// again when the last one finished more than three intervals ago.
func (d *Detector) Freshness(context.Context) (bool, string) {
	last := d.Last()
	if last.Number == 0 {
		return false, "no cycle completed yet"
	}
	age := time.Since(last.StartedAt.Add(last.Duration)).Round(time.Second)
	if age > 3*d.config.Interval {
		return false, fmt.Sprintf("cycle %d finished %s ago", last.Number, age)
	}
	return true, fmt.Sprintf("cycle %d finished %s ago", last.Number, age)
}

// Stop gracefully shuts down the detector.
func (d *Detector) Stop() error {
	d.logger.Info(context.Background(), "stopping arbitrage detector")
	if d.cancel != nil {
		d.cancel()
		<-d.done
	}
	return d.reporter.Stop()
}
