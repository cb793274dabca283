package app

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/arbitrage-scanner/business/transfer/domain"
	"github.com/fd1az/arbitrage-scanner/internal/apperror"
	"github.com/fd1az/arbitrage-scanner/internal/logger"
)

const tracerName = "github.com/fd1az/arbitrage-scanner/business/transfer/app"

// Checker decides whether an asset can move from a buy exchange to a sell
// exchange. It fails open: a side that cannot be checked is unknown, never
// unavailable.
type Checker struct {
	networks *NetworkInfoCache
	logger   logger.LoggerInterface
	tracer   trace.Tracer

	checkCounter metric.Int64Counter
}

// NewChecker creates a checker over the network info cache.
func NewChecker(networks *NetworkInfoCache, log logger.LoggerInterface) *Checker {
	c := &Checker{
		networks: networks,
		logger:   log,
		tracer:   otel.Tracer(tracerName),
	}

	counter, err := otel.Meter(meterName).Int64Counter(
		"transfer_checks_total",
		metric.WithDescription("Transfer availability checks by result"),
		metric.WithUnit("{check}"),
	)
	if err == nil {
		c.checkCounter = counter
	}
	return c
}

// Check returns the transfer availability of asset from buyExchange to
// sellExchange. A nil Checker answers unknown for both sides.
func (c *Checker) Check(ctx context.Context, asset, buyExchange, sellExchange string) domain.CheckResult {
	if c == nil || c.networks == nil {
		return domain.Unknown()
	}

	ctx, span := c.tracer.Start(ctx, "transfer.check",
		trace.WithAttributes(
			attribute.String("asset", asset),
			attribute.String("buy_exchange", buyExchange),
			attribute.String("sell_exchange", sellExchange),
		),
	)
	defer span.End()

	buy := c.side(ctx, buyExchange, asset)
	sell := c.side(ctx, sellExchange, asset)
	res := domain.Evaluate(buy, sell)

	span.SetAttributes(
		attribute.String("buy_available", string(res.BuyAvailable)),
		attribute.String("sell_available", string(res.SellAvailable)),
		attribute.Int("common_networks", len(res.CommonNetworks)),
		attribute.Bool("rejected", res.Rejected()),
	)
	if c.checkCounter != nil {
		c.checkCounter.Add(ctx, 1, metric.WithAttributes(attribute.Bool("rejected", res.Rejected())))
	}
	return res
}

func (c *Checker) side(ctx context.Context, exchange, asset string) *domain.NetworkInfo {
	info, err := c.networks.Networks(ctx, exchange, asset)
	if err != nil {
		if apperror.GetCode(err) != apperror.CodeNetworkInfoUnsupported {
			c.logger.Warn(ctx, "network info unavailable", "exchange", exchange, "asset", asset, "error", err)
		}
		return nil
	}
	return &info
}
