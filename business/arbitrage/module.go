// Package arbitrage implements the arbitrage bounded context: pairing quotes
// of the same asset across exchanges and reporting the profitable spreads.
package arbitrage

import (
	"context"
	"os"

	"github.com/shopspring/decimal"

	"github.com/fd1az/arbitrage-scanner/business/arbitrage/app"
	arbitrageDI "github.com/fd1az/arbitrage-scanner/business/arbitrage/di"
	"github.com/fd1az/arbitrage-scanner/business/arbitrage/domain"
	"github.com/fd1az/arbitrage-scanner/business/arbitrage/infra"
	identityDI "github.com/fd1az/arbitrage-scanner/business/identity/di"
	marketDI "github.com/fd1az/arbitrage-scanner/business/market/di"
	transferDI "github.com/fd1az/arbitrage-scanner/business/transfer/di"
	"github.com/fd1az/arbitrage-scanner/internal/asset"
	"github.com/fd1az/arbitrage-scanner/internal/config"
	"github.com/fd1az/arbitrage-scanner/internal/di"
	"github.com/fd1az/arbitrage-scanner/internal/logger"
	"github.com/fd1az/arbitrage-scanner/internal/monolith"
)

// consoleRows caps the table printed per cycle in CLI mode.
const consoleRows = 25

// Module implements the arbitrage bounded context.
type Module struct{}

// RegisterServices registers all arbitrage services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, arbitrageDI.Fees, func(sr di.ServiceRegistry) *app.FeeTable {
		cfg := sr.Get("config").(*config.Config)
		return NewFeeTable(cfg.Arbitrage)
	})

	di.RegisterToken(c, arbitrageDI.TransferCosts, func(sr di.ServiceRegistry) *app.TransferCostTable {
		cfg := sr.Get("config").(*config.Config)
		return NewTransferCostTable(cfg.Arbitrage)
	})

	// Register Calculator (public - runtime fee and threshold updates go through it)
	di.RegisterToken(c, arbitrageDI.Calculator, func(sr di.ServiceRegistry) *app.Calculator {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		var checker app.TransferChecker
		if ch := transferDI.GetChecker(sr); ch != nil {
			checker = ch
		}

		ac := cfg.Arbitrage
		calc, err := app.NewCalculator(app.CalculatorConfig{
			Thresholds: domain.Thresholds{
				MinProfitPct: ac.MinProfitDecimal(),
				MaxProfitPct: ac.MaxProfitDecimal(),
				MinVolume:    ac.MinVolumeDecimal(),
			},
			MaxResults:           ac.MaxResults,
			Workers:              ac.Workers,
			AnomalySourceRatio:   ac.AnomalySourceRatio,
			AllowSymbolOnlyMatch: ac.AllowSymbolOnlyMatch,
		}, arbitrageDI.GetFees(sr), arbitrageDI.GetTransferCosts(sr), checker, log)
		if err != nil {
			panic("failed to create calculator: " + err.Error())
		}
		return calc
	})

	// Register Reporter - private, TUI or console depending on the run mode
	di.RegisterToken(c, arbitrageDI.Reporter, func(sr di.ServiceRegistry) app.Reporter {
		cfg := sr.Get("config").(*config.Config)
		if cfg.Arbitrage.TUIMode {
			return infra.NewTUIReporter(nil)
		}
		return infra.NewConsoleReporter(os.Stdout, consoleRows)
	})

	// Register Detector (public - started by the entrypoint)
	di.RegisterToken(c, arbitrageDI.Detector, func(sr di.ServiceRegistry) *app.Detector {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		var enricher app.Enricher
		if r := identityDI.GetResolver(sr); r != nil {
			enricher = r
		}

		return app.NewDetector(
			marketDI.GetQuoteCache(sr),
			enricher,
			arbitrageDI.GetCalculator(sr),
			arbitrageDI.GetReporter(sr),
			app.DetectorConfig{Interval: cfg.Arbitrage.Interval},
			log,
		)
	})

	return nil
}

// Startup builds the detector so wiring errors surface before the first cycle.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	sr := mono.Services()

	_ = arbitrageDI.GetDetector(sr)
	t := arbitrageDI.GetCalculator(sr).Thresholds()

	log.Info(ctx, "arbitrage module started",
		"min_profit_pct", t.MinProfitPct.String(),
		"max_profit_pct", t.MaxProfitPct.String(),
		"min_volume", t.MinVolume.String(),
		"transfer_checks", transferDI.GetChecker(sr) != nil,
		"symbol_only_match", mono.Config().Arbitrage.AllowSymbolOnlyMatch,
	)
	return nil
}

// NewFeeTable builds the per-exchange fee table from configuration.
func NewFeeTable(ac config.ArbitrageConfig) *app.FeeTable {
	return app.NewFeeTable(ac.FeesDecimal(), decimal.NewFromFloat(ac.DefaultFeePct))
}

// NewTransferCostTable builds the chain-to-chain cost table from configuration.
func NewTransferCostTable(ac config.ArbitrageConfig) *app.TransferCostTable {
	t := app.NewTransferCostTable(decimal.NewFromFloat(ac.DefaultTransferCost))
	for _, tc := range ac.TransferCosts {
		t.Set(asset.NormalizeChain(tc.From), asset.NormalizeChain(tc.To), decimal.NewFromFloat(tc.Cost))
	}
	return t
}
