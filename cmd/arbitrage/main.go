// Package main is the entry point for the cross-exchange arbitrage scanner.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/fd1az/arbitrage-scanner/business/arbitrage"
	arbitrageApp "github.com/fd1az/arbitrage-scanner/business/arbitrage/app"
	arbitrageDI "github.com/fd1az/arbitrage-scanner/business/arbitrage/di"
	"github.com/fd1az/arbitrage-scanner/business/identity"
	"github.com/fd1az/arbitrage-scanner/business/market"
	marketDI "github.com/fd1az/arbitrage-scanner/business/market/di"
	"github.com/fd1az/arbitrage-scanner/business/transfer"
	"github.com/fd1az/arbitrage-scanner/internal/apm"
	"github.com/fd1az/arbitrage-scanner/internal/config"
	"github.com/fd1az/arbitrage-scanner/internal/health"
	"github.com/fd1az/arbitrage-scanner/internal/logger"
	"github.com/fd1az/arbitrage-scanner/internal/metrics"
	"github.com/fd1az/arbitrage-scanner/internal/monolith"
	"github.com/fd1az/arbitrage-scanner/pkg/ui"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	// Parse flags
	configPath := flag.String("config", "", "Path to configuration file")
	tuiFlag := flag.Bool("tui", false, "Run with the interactive dashboard instead of console output")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("arbitrage-scanner %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	tuiMode := *tuiFlag

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		if !tuiMode {
			fmt.Fprintf(os.Stderr, "received shutdown signal: %v\n", sig)
		}
		cancel()
	}()

	if err := run(ctx, *configPath, tuiMode); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, tuiMode bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Set TUI mode in config so modules know
	cfg.Arbitrage.TUIMode = tuiMode

	var out io.Writer = os.Stderr
	if tuiMode {
		// The dashboard owns the terminal
		out = io.Discard
	}
	log := logger.New(out, logger.ParseLevel(cfg.App.LogLevel), cfg.App.Name, &logger.Options{
		Format:    logger.Format(cfg.App.LogFormat),
		AddSource: cfg.App.LogFormat != string(logger.FormatText),
	})
	log.Info(ctx, "starting arbitrage scanner",
		"version", version,
		"environment", cfg.App.Environment,
		"sources", len(cfg.EnabledSources()),
	)

	traceProvider := setupTracing(ctx, cfg.Telemetry, log)
	defer func() {
		if err := traceProvider.Stop(); err != nil {
			log.Error(ctx, "failed to stop trace provider", "error", err)
		}
	}()

	var meters *metrics.Provider
	if cfg.Telemetry.MetricsEnabled {
		meters, err = setupMetrics(ctx, cfg.Telemetry)
		if err != nil {
			log.Warn(ctx, "metrics disabled", "error", err)
		} else {
			defer func() {
				stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := meters.Shutdown(stopCtx); err != nil {
					log.Error(ctx, "failed to stop meter provider", "error", err)
				}
			}()
		}
	}

	mono, err := monolith.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create monolith: %w", err)
	}
	defer mono.Close()

	// Define modules in dependency order
	modules := []monolith.Module{
		&market.Module{},    // quote sources and cache
		&identity.Module{},  // resolves chains on top of market quotes
		&transfer.Module{},  // deposit/withdraw network status
		&arbitrage.Module{}, // depends on all of the above
	}

	if err := mono.RegisterModules(modules...); err != nil {
		return fmt.Errorf("failed to register modules: %w", err)
	}

	if cfg.Health.Enabled {
		healthServer := health.NewServer(cfg.Health.Port, version, log)
		healthServer.RegisterCheck("sources", func(ctx context.Context) (bool, string) {
			online := marketDI.GetQuoteCache(mono.Services()).OnlineCount()
			return online > 0, fmt.Sprintf("%d sources online", online)
		})
		healthServer.RegisterCheck("cycle", func(ctx context.Context) (bool, string) {
			return arbitrageDI.GetDetector(mono.Services()).Freshness(ctx)
		})
		if meters != nil {
			healthServer.Handle("/metrics", meters.Handler())
		}
		if err := healthServer.Start(); err != nil {
			log.Warn(ctx, "failed to start health server", "error", err)
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = healthServer.Stop(stopCtx)
		}()
	}

	if tuiMode {
		// TUI mode: Start modules in background so TUI shows immediately
		startFunc := func() error {
			ui.Send(ui.StartupMsg{Step: "config", Status: "done", Message: configLabel(configPath)})
			ui.Send(ui.StartupMsg{Step: "sources", Status: "connecting"})
			if err := mono.StartModules(ctx, modules...); err != nil {
				ui.Send(ui.StartupMsg{Step: "sources", Status: "failed", Message: err.Error()})
				return fmt.Errorf("failed to start modules: %w", err)
			}
			online := marketDI.GetQuoteCache(mono.Services()).OnlineCount()
			ui.Send(ui.StartupMsg{Step: "sources", Status: "connected", Message: fmt.Sprintf("%d online", online)})
			ui.Send(ui.StartupMsg{Step: "identity", Status: "done"})

			detector := arbitrageDI.GetDetector(mono.Services())
			return detector.Start(ctx)
		}
		stopFunc := func() {
			detector := arbitrageDI.GetDetector(mono.Services())
			_ = detector.Stop()
		}
		return runTUI(ctx, startFunc, stopFunc)
	}

	// CLI mode: Start modules synchronously
	if err := mono.StartModules(ctx, modules...); err != nil {
		return fmt.Errorf("failed to start modules: %w", err)
	}

	detector := arbitrageDI.GetDetector(mono.Services())
	return runCLI(ctx, detector, log)
}

func setupTracing(ctx context.Context, tc config.TelemetryConfig, log logger.LoggerInterface) apm.TraceProvider {
	if !tc.Enabled {
		return apm.NewEmptyTraceProvider()
	}

	headers, err := apm.ParseHeaders(tc.OTLPHeaders)
	if err != nil {
		log.Warn(ctx, "ignoring telemetry headers", "error", err)
	}

	return apm.NewTraceProvider(tc.ServiceName, apm.WithProvider(apm.Provider(tc.TraceProvider), apm.Settings{
		ServiceName: tc.ServiceName,
		Endpoint:    tc.OTLPEndpoint,
		Headers:     headers,
		Insecure:    tc.Insecure,
	}, log))
}

func setupMetrics(ctx context.Context, tc config.TelemetryConfig) (*metrics.Provider, error) {
	opts := []metrics.Option{
		metrics.WithService(tc.ServiceName, version),
		metrics.WithPrometheus(),
	}
	if tc.Enabled {
		headers, _ := apm.ParseHeaders(tc.OTLPHeaders)
		opts = append(opts, metrics.WithOTLP(tc.OTLPEndpoint, headers, tc.Insecure))
	}
	return metrics.NewProvider(ctx, opts...)
}

func configLabel(path string) string {
	if path == "" {
		return "defaults + environment"
	}
	return path
}

func runCLI(ctx context.Context, detector *arbitrageApp.Detector, log logger.LoggerInterface) error {
	log.Info(ctx, "all modules started, beginning arbitrage detection")

	if err := detector.Start(ctx); err != nil {
		return fmt.Errorf("failed to start detector: %w", err)
	}

	// Wait for shutdown
	<-ctx.Done()

	log.Info(ctx, "shutting down")

	if err := detector.Stop(); err != nil {
		log.Error(ctx, "error stopping detector", "error", err)
	}

	return nil
}

func runTUI(ctx context.Context, startFunc func() error, stopFunc func()) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Channel to receive StartModulesMsg signal
	startSignal := make(chan struct{}, 1)
	ui.OnStartModules = func() {
		select {
		case startSignal <- struct{}{}:
		default:
		}
	}

	p := tea.NewProgram(ui.New(), tea.WithAltScreen())
	ui.Program = p

	errCh := make(chan error, 1)
	go func() {
		// Wait for welcome screen to complete (StartModulesMsg signal)
		select {
		case <-startSignal:
		case <-ctx.Done():
			errCh <- nil
			return
		}

		if err := startFunc(); err != nil {
			ui.Send(ui.ErrorMsg{Error: err})
			errCh <- err
			return
		}

		<-ctx.Done()

		stopFunc()
		errCh <- nil
	}()

	// A shutdown signal closes the dashboard.
	go func() {
		<-ctx.Done()
		p.Quit()
	}()

	_, runErr := p.Run()

	// Quitting the dashboard stops the detector the same way a signal does.
	cancel()

	var err error
	select {
	case err = <-errCh:
	case <-time.After(10 * time.Second):
	}
	if runErr != nil {
		return fmt.Errorf("TUI error: %w", runErr)
	}
	return err
}
