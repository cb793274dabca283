package infra

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/fd1az/arbitrage-scanner/business/arbitrage/app"
	"github.com/fd1az/arbitrage-scanner/business/arbitrage/domain"
	marketDomain "github.com/fd1az/arbitrage-scanner/business/market/domain"
	transferDomain "github.com/fd1az/arbitrage-scanner/business/transfer/domain"
	"github.com/fd1az/arbitrage-scanner/internal/asset"
	"github.com/fd1az/arbitrage-scanner/pkg/ui"
)

func testCycle() app.Cycle {
	opp := func(symbol, pct string, confidence domain.MatchConfidence) domain.Opportunity {
		return domain.Opportunity{
			Symbol:       symbol,
			BuyExchange:  "binance",
			SellExchange: "okx",
			BuyPrice:     decimal.RequireFromString("100.10"),
			SellPrice:    decimal.RequireFromString("101.00"),
			ProfitPct:    decimal.RequireFromString(pct),
			Volume:       decimal.RequireFromString("5000"),
			Blockchain:   asset.ChainEthereum,
			Transfer:     transferDomain.Unknown(),
			Confidence:   confidence,
		}
	}
	return app.Cycle{
		Number:    7,
		StartedAt: time.Unix(1700000000, 0).UTC(),
		Duration:  150 * time.Millisecond,
		Opportunities: []domain.Opportunity{
			opp("X/USDT", "1.5", domain.MatchExact),
			opp("Y/USDT", "0.9", domain.MatchSymbolOnly),
			opp("Z/USDT", "0.6", domain.MatchExact),
		},
		Stats: domain.CalcStats{Quotes: 12, Groups: 3, SymbolOnly: 1},
		Sources: []marketDomain.ExchangeStatus{
			{Source: "binance", IsOnline: true},
			{Source: "mexc", IsOnline: false, LastError: "timeout", ErrorCount: 3},
		},
	}
}

func TestConsoleReporter_Report(t *testing.T) {
	var buf bytes.Buffer
	r := NewConsoleReporter(&buf, 2)

	r.Report(context.Background(), testCycle())
	out := buf.String()

	for _, want := range []string{
		"CYCLE #7",
		"[offline] mexc: timeout (3 consecutive errors)",
		"Sources: 1/2 online",
		"X/USDT",
		"Y/USDT*",
		"binance -> okx",
		"1.500%",
		"withdraw=unknown deposit=unknown",
		"... 1 more",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Z/USDT") {
		t.Error("expected output capped at 2 opportunities")
	}
}

func TestConsoleReporter_BatchRejected(t *testing.T) {
	var buf bytes.Buffer
	r := NewConsoleReporter(&buf, 0)

	cycle := testCycle()
	cycle.Opportunities = nil
	cycle.Stats.BatchRejected = true
	cycle.Stats.FlaggedSources = []string{"a", "b"}
	r.Report(context.Background(), cycle)

	if !strings.Contains(buf.String(), "BATCH DISCARDED: synthetic prices from a, b") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}

func TestTUIReporter_Report(t *testing.T) {
	var sent []tea.Msg
	r := NewTUIReporter(func(msg tea.Msg) { sent = append(sent, msg) })

	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	r.Report(context.Background(), testCycle())

	if len(sent) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(sent))
	}
	if _, ok := sent[1].(ui.SourcesMsg); !ok {
		t.Errorf("expected sources first, got %T", sent[1])
	}
	cycle, ok := sent[2].(ui.CycleMsg)
	if !ok || cycle.Number != 7 || len(cycle.Opportunities) != 3 {
		t.Errorf("unexpected cycle message %+v", sent[2])
	}
}
