package app

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/fd1az/arbitrage-scanner/business/market/domain"
	"github.com/fd1az/arbitrage-scanner/internal/apperror"
	"github.com/fd1az/arbitrage-scanner/internal/logger"
)

const (
	tracerName = "github.com/fd1az/arbitrage-scanner/business/market"

	defaultFetchTimeout = 10 * time.Second
)

// QuoteCacheConfig configures the quote cache.
type QuoteCacheConfig struct {
	DefaultTimeout time.Duration
	Timeouts       map[string]time.Duration // per-source fetch timeout
	KeepOnEmpty    bool                     // keep the previous quotes when a fetch succeeds empty
}

// QuoteCache holds the latest quote set per source.
type QuoteCache struct {
	sources []SourceAdapter
	config  QuoteCacheConfig
	logger  logger.LoggerInterface
	tracer  trace.Tracer
	now     func() time.Time

	fetches metric.Int64Counter
	latency metric.Float64Histogram

	mu          sync.RWMutex
	quotes      map[string][]domain.Quote
	status      map[string]*domain.ExchangeStatus
	lastRefresh time.Time
}

// NewQuoteCache creates a cache over sources.
func NewQuoteCache(sources []SourceAdapter, cfg QuoteCacheConfig, log logger.LoggerInterface) *QuoteCache {
	if cfg.DefaultTimeout <= 0 {
		cfg.DefaultTimeout = defaultFetchTimeout
	}

	c := &QuoteCache{
		sources: sources,
		config:  cfg,
		logger:  log,
		tracer:  otel.Tracer(tracerName),
		now:     time.Now,
		quotes:  make(map[string][]domain.Quote, len(sources)),
		status:  make(map[string]*domain.ExchangeStatus, len(sources)),
	}

	meter := otel.Meter(tracerName)
	c.fetches, _ = meter.Int64Counter("market_fetch_total",
		metric.WithDescription("Source fetch attempts by outcome"))
	c.latency, _ = meter.Float64Histogram("market_fetch_duration_seconds",
		metric.WithDescription("Source fetch latency"),
		metric.WithUnit("s"))

	for _, s := range sources {
		c.status[s.Name()] = &domain.ExchangeStatus{Source: s.Name()}
	}
	return c
}

// Connect connects every source concurrently. A source that fails to
// connect is marked offline; it is retried by the next refresh.
func (c *QuoteCache) Connect(ctx context.Context) {
	var g errgroup.Group
	for _, s := range c.sources {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(ctx, c.timeoutFor(s.Name()))
			defer cancel()

			if err := s.Connect(cctx); err != nil {
				c.logger.Warn(ctx, "source connect failed", "source", s.Name(), "error", err)
				c.recordFailure(s.Name(), err, 0)
				return nil
			}
			c.logger.Info(ctx, "source connected", "source", s.Name())
			return nil
		})
	}
	_ = g.Wait()
}

// RefreshAll fetches every source concurrently and waits for all of them
// to settle. One source failing or timing out never cancels the others;
// its previous quotes are kept and its status records the error.
func (c *QuoteCache) RefreshAll(ctx context.Context) {
	ctx, span := c.tracer.Start(ctx, "market.refresh_all",
		trace.WithAttributes(attribute.Int("sources", len(c.sources))))
	defer span.End()

	// Every goroutine returns nil so the group settles all sources.
	var g errgroup.Group
	for _, s := range c.sources {
		g.Go(func() error {
			c.refreshOne(ctx, s)
			return nil
		})
	}
	_ = g.Wait()

	c.mu.Lock()
	c.lastRefresh = c.now()
	online := 0
	for _, st := range c.status {
		if st.IsOnline {
			online++
		}
	}
	c.mu.Unlock()

	span.SetAttributes(attribute.Int("online", online))
}

func (c *QuoteCache) refreshOne(ctx context.Context, s SourceAdapter) {
	name := s.Name()
	ctx, span := c.tracer.Start(ctx, "market.fetch",
		trace.WithAttributes(attribute.String("source", name)))
	defer span.End()

	fctx, cancel := context.WithTimeout(ctx, c.timeoutFor(name))
	defer cancel()

	start := c.now()
	quotes, err := s.FetchQuotes(fctx)
	elapsed := c.now().Sub(start)

	if err == nil && fctx.Err() != nil {
		err = fctx.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		err = apperror.New(apperror.CodeServiceTimeout,
			apperror.WithCause(err),
			apperror.WithContext(name))
	}

	c.latency.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attribute.String("source", name)))

	if err != nil {
		span.RecordError(err)
		c.fetches.Add(ctx, 1, metric.WithAttributes(
			attribute.String("source", name),
			attribute.String("outcome", "error")))
		c.recordFailure(name, err, elapsed)
		c.logger.Warn(ctx, "source fetch failed, keeping previous quotes",
			"source", name,
			"error", err,
			"transport", apperror.IsTransport(err))
		return
	}

	outcome := "ok"
	if len(quotes) == 0 {
		outcome = "empty"
		c.logger.Warn(ctx, "source returned no quotes", "source", name)
	}
	c.fetches.Add(ctx, 1, metric.WithAttributes(
		attribute.String("source", name),
		attribute.String("outcome", outcome)))
	span.SetAttributes(attribute.Int("quotes", len(quotes)))

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(quotes) > 0 || !c.config.KeepOnEmpty {
		// Full replace: old and new quotes of a source never mix.
		c.quotes[name] = quotes
	}
	st := c.statusLocked(name)
	st.IsOnline = true
	st.LastUpdate = c.now()
	st.ErrorCount = 0
	st.LastError = ""
	st.QuoteCount = len(quotes)
	st.Latency = elapsed

	c.logger.Debug(ctx, "source refreshed", "source", name, "quotes", len(quotes), "latency", elapsed)
}

func (c *QuoteCache) recordFailure(name string, err error, elapsed time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := c.statusLocked(name)
	st.IsOnline = false
	st.ErrorCount++
	st.LastError = err.Error()
	st.Latency = elapsed
}

func (c *QuoteCache) statusLocked(name string) *domain.ExchangeStatus {
	st, ok := c.status[name]
	if !ok {
		st = &domain.ExchangeStatus{Source: name}
		c.status[name] = st
	}
	return st
}

func (c *QuoteCache) timeoutFor(name string) time.Duration {
	if d, ok := c.config.Timeouts[name]; ok && d > 0 {
		return d
	}
	return c.config.DefaultTimeout
}

// GetAll returns an immutable snapshot of the cached quotes.
func (c *QuoteCache) GetAll() domain.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return domain.NewSnapshot(c.quotes, c.lastRefresh)
}

// GetStatus returns the latest status of every source, sorted by name.
func (c *QuoteCache) GetStatus() []domain.ExchangeStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.ExchangeStatus, 0, len(c.status))
	for _, st := range c.status {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Source < out[j].Source })
	return out
}

// OnlineCount counts sources whose last fetch succeeded.
func (c *QuoteCache) OnlineCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n := 0
	for _, st := range c.status {
		if st.IsOnline {
			n++
		}
	}
	return n
}

// LastRefresh is when the last RefreshAll settled.
func (c *QuoteCache) LastRefresh() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastRefresh
}

// Sources lists the registered source names.
func (c *QuoteCache) Sources() []string {
	out := make([]string, 0, len(c.sources))
	for _, s := range c.sources {
		out = append(out, s.Name())
	}
	return out
}

// Close closes every adapter holding a connection.
func (c *QuoteCache) Close() error {
	var errs []error
	for _, s := range c.sources {
		if cl, ok := s.(Closer); ok {
			if err := cl.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
