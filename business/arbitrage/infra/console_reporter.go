// Package infra contains infrastructure adapters for the arbitrage context.
package infra

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fd1az/arbitrage-scanner/business/arbitrage/app"
	"github.com/fd1az/arbitrage-scanner/business/arbitrage/domain"
)

var _ app.Reporter = (*ConsoleReporter)(nil)

// ConsoleReporter implements Reporter for CLI output.
type ConsoleReporter struct {
	out   io.Writer
	limit int
}

// NewConsoleReporter creates a ConsoleReporter printing at most limit
// opportunities per cycle to out. A nil out writes to stdout.
func NewConsoleReporter(out io.Writer, limit int) *ConsoleReporter {
	if out == nil {
		out = os.Stdout
	}
	return &ConsoleReporter{out: out, limit: limit}
}

// Start initializes the console reporter.
func (r *ConsoleReporter) Start(ctx context.Context) error {
	fmt.Fprintln(r.out, "Arbitrage Scanner Started")
	fmt.Fprintln(r.out, "=========================")
	return nil
}

// Report prints one cycle's sources and opportunities.
func (r *ConsoleReporter) Report(ctx context.Context, cycle app.Cycle) {
	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, strings.Repeat("=", 100))
	fmt.Fprintf(r.out, "CYCLE #%d  %s  (%s)\n", cycle.Number, cycle.StartedAt.Format(time.RFC3339), cycle.Duration.Round(time.Millisecond))
	fmt.Fprintln(r.out, strings.Repeat("=", 100))

	online := 0
	for _, s := range cycle.Sources {
		if s.IsOnline {
			online++
			continue
		}
		fmt.Fprintf(r.out, "  [offline] %s: %s (%d consecutive errors)\n", s.Source, s.LastError, s.ErrorCount)
	}
	fmt.Fprintf(r.out, "Sources: %d/%d online  Quotes: %d  Assets compared: %d (%d by ticker only)\n",
		online, len(cycle.Sources), cycle.Stats.Quotes, cycle.Stats.Groups, cycle.Stats.SymbolOnly)

	if cycle.Stats.BatchRejected {
		fmt.Fprintf(r.out, "BATCH DISCARDED: synthetic prices from %s\n", strings.Join(cycle.Stats.FlaggedSources, ", "))
		return
	}
	if len(cycle.Opportunities) == 0 {
		fmt.Fprintln(r.out, "No opportunities.")
		return
	}

	fmt.Fprintln(r.out, strings.Repeat("-", 100))
	fmt.Fprintf(r.out, "%-3s %-14s %-10s %-20s %14s %14s %9s %12s %s\n",
		"#", "SYMBOL", "CHAIN", "ROUTE", "BUY", "SELL", "PROFIT", "VOLUME", "TRANSFER")

	shown := cycle.Opportunities
	if r.limit > 0 && len(shown) > r.limit {
		shown = shown[:r.limit]
	}
	for i, o := range shown {
		fmt.Fprintf(r.out, "%-3d %-14s %-10s %-20s %14s %14s %8s%% %12s %s\n",
			i+1,
			symbolLabel(o),
			o.Blockchain,
			o.Route(),
			o.BuyPrice.String(),
			o.SellPrice.String(),
			o.ProfitPct.StringFixed(3),
			o.Volume.StringFixed(2),
			transferLabel(o),
		)
	}
	if len(shown) < len(cycle.Opportunities) {
		fmt.Fprintf(r.out, "... %d more\n", len(cycle.Opportunities)-len(shown))
	}
}

// Stop gracefully shuts down the console reporter.
func (r *ConsoleReporter) Stop() error {
	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, "Arbitrage Scanner Stopped")
	return nil
}

func symbolLabel(o domain.Opportunity) string {
	if o.Confidence == domain.MatchSymbolOnly {
		return o.Symbol + "*"
	}
	return o.Symbol
}

func transferLabel(o domain.Opportunity) string {
	t := o.Transfer
	if !t.BuyAvailable.Known() || !t.SellAvailable.Known() {
		return fmt.Sprintf("withdraw=%s deposit=%s", t.BuyAvailable, t.SellAvailable)
	}
	names := make([]string, 0, len(t.CommonNetworks))
	for _, c := range t.CommonNetworks {
		names = append(names, c.String())
	}
	return "via " + strings.Join(names, ",")
}
