// Package app contains the transfer availability use cases.
package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/singleflight"

	"github.com/fd1az/arbitrage-scanner/business/transfer/domain"
	"github.com/fd1az/arbitrage-scanner/internal/apperror"
	"github.com/fd1az/arbitrage-scanner/internal/cache"
	"github.com/fd1az/arbitrage-scanner/internal/logger"
)

const (
	meterName = "github.com/fd1az/arbitrage-scanner/business/transfer/app"

	DefaultNetworkInfoTTL = time.Hour
)

// NetworkInfoCache serves per-exchange network lists with a TTL. When a
// refresh fails the last known list is served as stale instead of failing.
type NetworkInfoCache struct {
	providers map[string]NetworkInfoProvider
	entries   *cache.Cache[string, domain.NetworkInfo]
	ttl       time.Duration
	logger    logger.LoggerInterface
	group     singleflight.Group
	now       func() time.Time

	// exchange:asset pairs the provider cannot answer for, rechecked after ttl
	unsupported *cache.Cache[string, struct{}]

	fetchCounter metric.Int64Counter
}

// NewNetworkInfoCache creates a cache over providers, keyed by exchange name.
func NewNetworkInfoCache(providers []NetworkInfoProvider, ttl time.Duration, log logger.LoggerInterface) *NetworkInfoCache {
	if ttl <= 0 {
		ttl = DefaultNetworkInfoTTL
	}
	c := &NetworkInfoCache{
		providers: make(map[string]NetworkInfoProvider, len(providers)),
		ttl:       ttl,
		logger:    log,
		now:       time.Now,
	}
	clock := cache.WithClock(func() time.Time { return c.now() })
	c.entries = cache.New[string, domain.NetworkInfo](ttl, cache.WithRetention(24*time.Hour), clock)
	c.unsupported = cache.New[string, struct{}](ttl, cache.WithRetention(ttl), clock)
	for _, p := range providers {
		if p != nil {
			c.providers[strings.ToLower(p.Exchange())] = p
		}
	}

	counter, err := otel.Meter(meterName).Int64Counter(
		"transfer_network_info_fetches_total",
		metric.WithDescription("Network info fetches by exchange and outcome"),
		metric.WithUnit("{fetch}"),
	)
	if err == nil {
		c.fetchCounter = counter
	}
	return c
}

// Exchanges lists exchanges with a network info provider.
func (c *NetworkInfoCache) Exchanges() []string {
	out := make([]string, 0, len(c.providers))
	for name := range c.providers {
		out = append(out, name)
	}
	return out
}

// Networks returns exchange's network info for asset. It fails with
// CodeNetworkInfoUnsupported when the exchange has no provider or the
// provider cannot answer for that asset, and with CodeNetworkInfoFailed when
// a fetch failed and nothing was cached before.
func (c *NetworkInfoCache) Networks(ctx context.Context, exchange, asset string) (domain.NetworkInfo, error) {
	exchange = strings.ToLower(exchange)
	asset = strings.ToUpper(asset)
	key := exchange + ":" + asset

	p, ok := c.providers[exchange]
	if _, skip := c.unsupported.Get(ctx, key); !ok || skip {
		return domain.NetworkInfo{}, unsupported(exchange, asset)
	}

	cached, fresh, found := c.entries.GetStale(ctx, key)
	if found && fresh {
		return cached, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		return c.fetch(ctx, p, exchange, asset)
	})
	if err == nil {
		return v.(domain.NetworkInfo), nil
	}

	if apperror.GetCode(err) == apperror.CodeNetworkInfoUnsupported {
		c.unsupported.Set(ctx, key, struct{}{}, c.ttl)
		return domain.NetworkInfo{}, err
	}
	if found {
		c.logger.Warn(ctx, "network info refresh failed, serving stale",
			"exchange", exchange, "asset", asset, "age", c.now().Sub(cached.FetchedAt).String(), "error", err)
		cached.Stale = true
		return cached, nil
	}
	return domain.NetworkInfo{}, err
}

func (c *NetworkInfoCache) fetch(ctx context.Context, p NetworkInfoProvider, exchange, asset string) (domain.NetworkInfo, error) {
	networks, err := p.Networks(ctx, asset)
	if err != nil {
		c.count(ctx, exchange, "error")
		if apperror.IsAppError(err) {
			return domain.NetworkInfo{}, err
		}
		return domain.NetworkInfo{}, apperror.New(apperror.CodeNetworkInfoFailed,
			apperror.WithCause(err),
			apperror.WithContext(fmt.Sprintf("%s %s", exchange, asset)))
	}

	info := domain.NetworkInfo{
		Exchange:  exchange,
		Asset:     asset,
		Networks:  networks,
		FetchedAt: c.now(),
	}
	c.entries.Set(ctx, exchange+":"+asset, info, c.ttl)
	c.count(ctx, exchange, "ok")
	return info, nil
}

// Close stops the cache janitor.
func (c *NetworkInfoCache) Close() {
	c.entries.Close()
	c.unsupported.Close()
}

func (c *NetworkInfoCache) count(ctx context.Context, exchange, outcome string) {
	if c.fetchCounter != nil {
		c.fetchCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String("exchange", exchange),
			attribute.String("outcome", outcome),
		))
	}
}

func unsupported(exchange, asset string) error {
	return apperror.New(apperror.CodeNetworkInfoUnsupported,
		apperror.WithContext(fmt.Sprintf("%s %s", exchange, asset)))
}
