package app

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/arbitrage-scanner/business/arbitrage/domain"
	market "github.com/fd1az/arbitrage-scanner/business/market/domain"
	transferDomain "github.com/fd1az/arbitrage-scanner/business/transfer/domain"
	"github.com/fd1az/arbitrage-scanner/internal/asset"
	"github.com/fd1az/arbitrage-scanner/internal/logger"
)

type fakeChecker struct {
	results map[string]transferDomain.CheckResult // buy|sell -> result
	delay   time.Duration

	mu       sync.Mutex
	calls    int
	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

func (f *fakeChecker) Check(_ context.Context, _, buy, sell string) transferDomain.CheckResult {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		seen := f.maxSeen.Load()
		if n <= seen || f.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if res, ok := f.results[buy+"|"+sell]; ok {
		return res
	}
	return transferDomain.Unknown()
}

func (f *fakeChecker) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func defaultThresholds() domain.Thresholds {
	return domain.Thresholds{
		MinProfitPct: decimal.RequireFromString("0.5"),
		MaxProfitPct: decimal.RequireFromString("110"),
		MinVolume:    decimal.RequireFromString("100"),
	}
}

func newTestCalculator(t *testing.T, checker TransferChecker, mutate ...func(*CalculatorConfig)) *Calculator {
	t.Helper()
	cfg := CalculatorConfig{
		Thresholds:           defaultThresholds(),
		Workers:              4,
		AnomalySourceRatio:   0.5,
		AllowSymbolOnlyMatch: true,
	}
	for _, m := range mutate {
		m(&cfg)
	}

	fees := NewFeeTable(map[string]decimal.Decimal{
		"a": decimal.RequireFromString("0.1"),
		"b": decimal.RequireFromString("0.1"),
	}, decimal.RequireFromString("0.1"))

	c, err := NewCalculator(cfg, fees, NewTransferCostTable(decimal.RequireFromString("1")), checker, logger.NewNop())
	if err != nil {
		t.Fatalf("new calculator: %v", err)
	}
	c.now = func() time.Time { return time.Unix(1700000000, 0) }
	return c
}

func onChain(q market.Quote, chain asset.Chain, contract string) market.Quote {
	return q.WithIdentity(chain, contract)
}

func snapshot(quotes ...market.Quote) market.Snapshot {
	bySource := make(map[string][]market.Quote)
	for _, q := range quotes {
		bySource[q.Source] = append(bySource[q.Source], q)
	}
	return market.NewSnapshot(bySource, time.Unix(1700000000, 0))
}

// simpleSpread is the reference scenario: buy on a at 100.10, sell on b at 101.00.
func simpleSpread(chainA, chainB asset.Chain) market.Snapshot {
	return snapshot(
		onChain(mkQuote("a", "X", "100.00", "100.10", "5000"), chainA, ""),
		onChain(mkQuote("b", "X", "101.00", "101.10", "5000"), chainB, ""),
	)
}

func TestCalculator_SimpleSpread(t *testing.T) {
	c := newTestCalculator(t, nil)

	res := c.Calculate(context.Background(), simpleSpread(asset.ChainEthereum, asset.ChainEthereum))

	if len(res.Opportunities) != 1 {
		t.Fatalf("expected 1 opportunity, got %d (%+v)", len(res.Opportunities), res.Stats)
	}
	opp := res.Opportunities[0]

	if opp.BuyExchange != "a" || opp.SellExchange != "b" {
		t.Errorf("expected a -> b, got %s", opp.Route())
	}
	if !opp.BuyPrice.Equal(decimal.RequireFromString("100.10")) || !opp.SellPrice.Equal(decimal.RequireFromString("101.00")) {
		t.Errorf("unexpected prices buy=%s sell=%s", opp.BuyPrice, opp.SellPrice)
	}
	if !opp.NetBuyPrice.Equal(decimal.RequireFromString("100.2001")) {
		t.Errorf("expected net buy 100.2001, got %s", opp.NetBuyPrice)
	}
	if !opp.NetSellPrice.Equal(decimal.RequireFromString("100.899")) {
		t.Errorf("expected net sell 100.899, got %s", opp.NetSellPrice)
	}
	if got := opp.ProfitPct.Round(4); !got.Equal(decimal.RequireFromString("0.6975")) {
		t.Errorf("expected profit 0.6975%%, got %s", got)
	}
	if !opp.Fees.TransferCost.IsZero() {
		t.Errorf("same-chain transfer must be free, got %s", opp.Fees.TransferCost)
	}
	if !opp.Volume.Equal(decimal.RequireFromString("5000")) {
		t.Errorf("expected volume 5000, got %s", opp.Volume)
	}
	if opp.Blockchain != asset.ChainEthereum || opp.Confidence != domain.MatchExact {
		t.Errorf("expected a high-confidence ethereum match, got %s/%s", opp.Blockchain, opp.Confidence)
	}
	if opp.ID == "" || !opp.DetectedAt.Equal(time.Unix(1700000000, 0)) {
		t.Errorf("expected id and detection time, got %q at %s", opp.ID, opp.DetectedAt)
	}
	if opp.Transfer.BuyAvailable != transferDomain.AvailabilityUnknown {
		t.Errorf("expected unknown transfer without a checker, got %s", opp.Transfer.BuyAvailable)
	}

	// b -> a has no gross spread.
	if res.Stats.Pairs != 2 || res.Stats.Rejected[domain.RejectNoGrossSpread] != 1 {
		t.Errorf("unexpected stats %+v", res.Stats)
	}
}

func TestCalculator_BelowMinimumProfit(t *testing.T) {
	c := newTestCalculator(t, nil)

	snap := snapshot(
		onChain(mkQuote("a", "X", "100.00", "100.10", "5000"), asset.ChainEthereum, ""),
		onChain(mkQuote("b", "X", "100.15", "100.25", "5000"), asset.ChainEthereum, ""),
	)
	if res := c.Calculate(context.Background(), snap); len(res.Opportunities) != 0 {
		t.Errorf("expected no opportunity, got %+v", res.Opportunities)
	}

	snap = snapshot(
		onChain(mkQuote("a", "X", "100.00", "100.10", "5000"), asset.ChainEthereum, ""),
		onChain(mkQuote("b", "X", "100.60", "100.70", "5000"), asset.ChainEthereum, ""),
	)
	res := c.Calculate(context.Background(), snap)
	if len(res.Opportunities) != 0 {
		t.Errorf("expected no opportunity, got %+v", res.Opportunities)
	}
	if res.Stats.Rejected[domain.RejectBelowMinProfit] != 1 {
		t.Errorf("expected a below-minimum rejection, got %+v", res.Stats.Rejected)
	}
}

func TestCalculator_DifferentChains(t *testing.T) {
	noCommon := transferDomain.CheckResult{
		BuyAvailable:  transferDomain.AvailabilityAvailable,
		SellAvailable: transferDomain.AvailabilityAvailable,
	}
	checker := &fakeChecker{results: map[string]transferDomain.CheckResult{"a|b": noCommon}}
	c := newTestCalculator(t, checker)

	res := c.Calculate(context.Background(), simpleSpread(asset.ChainSolana, asset.ChainEthereum))
	if len(res.Opportunities) != 0 {
		t.Fatalf("expected no opportunity across chains, got %+v", res.Opportunities)
	}
	if res.Stats.Groups != 0 {
		t.Errorf("solana and ethereum X are different assets, got %d groups", res.Stats.Groups)
	}
	if checker.Calls() != 0 {
		t.Error("unpaired assets must not reach the transfer checker")
	}
}

func TestCalculator_TransferAvailability(t *testing.T) {
	available := transferDomain.AvailabilityAvailable
	unavailable := transferDomain.AvailabilityUnavailable

	tests := []struct {
		name   string
		result transferDomain.CheckResult
		want   int
	}{
		{"common_network", transferDomain.CheckResult{BuyAvailable: available, SellAvailable: available, CommonNetworks: []asset.Chain{asset.ChainEthereum}}, 1},
		{"no_common_network", transferDomain.CheckResult{BuyAvailable: available, SellAvailable: available}, 0},
		{"both_unavailable", transferDomain.CheckResult{BuyAvailable: unavailable, SellAvailable: unavailable}, 0},
		{"one_side_unavailable", transferDomain.CheckResult{BuyAvailable: unavailable, SellAvailable: available}, 1},
		{"both_unknown", transferDomain.Unknown(), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := &fakeChecker{results: map[string]transferDomain.CheckResult{"a|b": tt.result}}
			c := newTestCalculator(t, checker)

			res := c.Calculate(context.Background(), simpleSpread(asset.ChainEthereum, asset.ChainEthereum))
			if len(res.Opportunities) != tt.want {
				t.Fatalf("expected %d opportunities, got %d", tt.want, len(res.Opportunities))
			}
			if tt.want == 0 && res.Stats.Rejected[domain.RejectTransfer] != 1 {
				t.Errorf("expected a transfer rejection, got %+v", res.Stats.Rejected)
			}
			if tt.want == 1 && res.Opportunities[0].Transfer.BuyAvailable != tt.result.BuyAvailable {
				t.Errorf("expected the check result on the opportunity, got %+v", res.Opportunities[0].Transfer)
			}
			if checker.Calls() != 1 {
				t.Errorf("expected one transfer check, got %d", checker.Calls())
			}
		})
	}
}

func TestCalculator_FeeMonotonicity(t *testing.T) {
	c := newTestCalculator(t, nil, func(cfg *CalculatorConfig) {
		cfg.Thresholds.MinProfitPct = decimal.Zero
	})
	snap := simpleSpread(asset.ChainEthereum, asset.ChainEthereum)

	prev := decimal.NewFromInt(100)
	for _, fee := range []string{"0", "0.1", "0.2", "0.3", "0.4", "0.5"} {
		if err := c.UpdateTradingFee("b", decimal.RequireFromString(fee)); err != nil {
			t.Fatalf("update fee: %v", err)
		}
		res := c.Calculate(context.Background(), snap)
		if len(res.Opportunities) == 0 {
			prev = decimal.Zero
			continue
		}
		got := res.Opportunities[0].ProfitPct
		if got.GreaterThan(prev) {
			t.Errorf("raising the sell fee to %s%% raised profit from %s to %s", fee, prev, got)
		}
		prev = got
	}

	// 101 × 0.992 = 100.192 < 100.2001
	if err := c.UpdateTradingFee("b", decimal.RequireFromString("0.8")); err != nil {
		t.Fatalf("update fee: %v", err)
	}
	if res := c.Calculate(context.Background(), snap); len(res.Opportunities) != 0 {
		t.Errorf("expected a 0.8%% sell fee to remove the opportunity, got %s", res.Opportunities[0].ProfitPct)
	}
}

func TestCalculator_ThresholdBoundary(t *testing.T) {
	snap := simpleSpread(asset.ChainEthereum, asset.ChainEthereum)
	fees := domain.Fees{
		BuyFeePct:    decimal.RequireFromString("0.1"),
		SellFeePct:   decimal.RequireFromString("0.1"),
		TransferCost: decimal.Zero,
	}
	exact := domain.NewSpread(decimal.RequireFromString("100.10"), decimal.RequireFromString("101.00"), fees).ProfitPct
	epsilon := decimal.New(1, -12)

	tests := []struct {
		name     string
		min, max decimal.Decimal
		want     int
	}{
		{"min_equal_is_included", exact, decimal.NewFromInt(110), 1},
		{"min_just_above_excludes", exact.Add(epsilon), decimal.NewFromInt(110), 0},
		{"max_equal_is_included", decimal.Zero, exact, 1},
		{"max_just_below_excludes", decimal.Zero, exact.Sub(epsilon), 0},
	}

	c := newTestCalculator(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.SetThresholds(domain.Thresholds{MinProfitPct: tt.min, MaxProfitPct: tt.max, MinVolume: decimal.Zero})
			if err != nil {
				t.Fatalf("set thresholds: %v", err)
			}
			if got := len(c.Calculate(context.Background(), snap).Opportunities); got != tt.want {
				t.Errorf("expected %d opportunities, got %d", tt.want, got)
			}
		})
	}
}

func TestCalculator_SetThresholdsRejectsInvalid(t *testing.T) {
	c := newTestCalculator(t, nil)
	before := c.Thresholds()

	err := c.SetThresholds(domain.Thresholds{
		MinProfitPct: decimal.NewFromInt(5),
		MaxProfitPct: decimal.NewFromInt(1),
	})
	if err == nil {
		t.Fatal("expected an error for min above max")
	}
	if !c.Thresholds().MinProfitPct.Equal(before.MinProfitPct) {
		t.Error("invalid thresholds must not replace the current ones")
	}
}

func TestCalculator_MinVolume(t *testing.T) {
	c := newTestCalculator(t, nil)

	snap := snapshot(
		onChain(mkQuote("a", "X", "100.00", "100.10", "5000"), asset.ChainEthereum, ""),
		onChain(mkQuote("b", "X", "101.00", "101.10", "99"), asset.ChainEthereum, ""),
	)
	res := c.Calculate(context.Background(), snap)
	if len(res.Opportunities) != 0 {
		t.Fatalf("expected volume below minimum to be rejected, got %+v", res.Opportunities)
	}
	if res.Stats.Rejected[domain.RejectLowVolume] != 1 {
		t.Errorf("expected a low-volume rejection, got %+v", res.Stats.Rejected)
	}
}

func TestCalculator_AssetSeparation(t *testing.T) {
	c := newTestCalculator(t, nil)

	snap := snapshot(
		onChain(mkQuote("a", "X", "100.00", "100.10", "5000"), asset.ChainEthereum, "0x1111111111111111111111111111111111111111"),
		onChain(mkQuote("b", "X", "101.00", "101.10", "5000"), asset.ChainBSC, "0x2222222222222222222222222222222222222222"),
		onChain(mkQuote("b", "Y", "202.00", "202.20", "5000"), asset.ChainEthereum, "0x3333333333333333333333333333333333333333"),
		onChain(mkQuote("a", "Y", "200.00", "200.20", "5000"), asset.ChainEthereum, "0x4444444444444444444444444444444444444444"),
		// resolved and unresolved quotes of the same ticker never pair
		onChain(mkQuote("a", "Z", "300.00", "300.30", "5000"), asset.ChainEthereum, "0x5555555555555555555555555555555555555555"),
		mkQuote("b", "Z", "303.00", "303.30", "5000"),
	)

	res := c.Calculate(context.Background(), snap)
	if res.Stats.BatchRejected {
		t.Fatalf("unexpected batch rejection of %v", res.Stats.FlaggedSources)
	}
	if len(res.Opportunities) != 0 || res.Stats.Groups != 0 {
		t.Errorf("different contracts must never pair, got %d opportunities in %d groups", len(res.Opportunities), res.Stats.Groups)
	}
}

func TestCalculator_QuoteAssetSeparation(t *testing.T) {
	c := newTestCalculator(t, nil)

	usdc := market.NewQuote("b", "X", "USDC",
		decimal.RequireFromString("101.00"),
		decimal.RequireFromString("101.10"),
		decimal.RequireFromString("5000"),
		time.Unix(1700000000, 0),
	).WithIdentity(asset.ChainEthereum, "")

	snap := snapshot(onChain(mkQuote("a", "X", "100.00", "100.10", "5000"), asset.ChainEthereum, ""), usdc)
	if res := c.Calculate(context.Background(), snap); len(res.Opportunities) != 0 {
		t.Errorf("USDT and USDC books must not pair, got %+v", res.Opportunities)
	}
}

func TestCalculator_SymbolOnlyMatch(t *testing.T) {
	snap := snapshot(
		mkQuote("a", "X", "100.00", "100.10", "5000"),
		mkQuote("b", "X", "101.00", "101.10", "5000"),
	)

	t.Run("allowed", func(t *testing.T) {
		c := newTestCalculator(t, nil)
		if err := c.UpdateTransferCost(asset.ChainUnresolved, asset.ChainUnresolved, decimal.RequireFromString("0.05")); err != nil {
			t.Fatalf("update cost: %v", err)
		}

		res := c.Calculate(context.Background(), snap)
		if len(res.Opportunities) != 1 {
			t.Fatalf("expected 1 opportunity, got %d", len(res.Opportunities))
		}
		opp := res.Opportunities[0]
		if opp.Confidence != domain.MatchSymbolOnly {
			t.Errorf("expected low confidence, got %s", opp.Confidence)
		}
		if opp.Blockchain != asset.ChainUnresolved {
			t.Errorf("expected unresolved chain, got %s", opp.Blockchain)
		}
		if !opp.Fees.TransferCost.Equal(decimal.RequireFromString("0.05")) {
			t.Errorf("expected the configured route cost, got %s", opp.Fees.TransferCost)
		}
		if res.Stats.SymbolOnly != 1 {
			t.Errorf("expected one symbol-only group, got %d", res.Stats.SymbolOnly)
		}
	})

	t.Run("default_cost_applies", func(t *testing.T) {
		c := newTestCalculator(t, nil)

		// 100.899 - 1 < 100.2001
		if res := c.Calculate(context.Background(), snap); len(res.Opportunities) != 0 {
			t.Errorf("expected the default transfer cost to remove the spread, got %+v", res.Opportunities)
		}
	})

	t.Run("disabled", func(t *testing.T) {
		c := newTestCalculator(t, nil, func(cfg *CalculatorConfig) { cfg.AllowSymbolOnlyMatch = false })
		_ = c.UpdateTransferCost(asset.ChainUnresolved, asset.ChainUnresolved, decimal.Zero)

		res := c.Calculate(context.Background(), snap)
		if len(res.Opportunities) != 0 || res.Stats.Pairs != 0 {
			t.Errorf("symbol-only groups must be skipped, got %+v", res.Stats)
		}
	})
}

func TestCalculator_SyntheticBatchIsDiscarded(t *testing.T) {
	checker := &fakeChecker{}
	c := newTestCalculator(t, checker)

	bySource := map[string][]market.Quote{
		"a": append(fakeQuotes("a"), onChain(mkQuote("a", "X", "100.00", "100.10", "5000"), asset.ChainEthereum, "")),
		"b": append(fakeQuotes("b"), onChain(mkQuote("b", "X", "101.00", "101.10", "5000"), asset.ChainEthereum, "")),
		"c": realQuotes("c"),
	}

	res := c.Calculate(context.Background(), market.NewSnapshot(bySource, time.Now()))
	if !res.Stats.BatchRejected {
		t.Fatalf("expected the batch to be rejected, got %+v", res.Stats)
	}
	if res.Opportunities == nil || len(res.Opportunities) != 0 {
		t.Errorf("expected an empty, non-nil result, got %+v", res.Opportunities)
	}
	if checker.Calls() != 0 {
		t.Error("a discarded batch must not reach the transfer checker")
	}
}

func TestCalculator_InvalidQuotesAreDropped(t *testing.T) {
	c := newTestCalculator(t, nil)

	snap := snapshot(
		onChain(mkQuote("a", "X", "100.00", "100.10", "5000"), asset.ChainEthereum, ""),
		onChain(mkQuote("b", "X", "101.00", "101.10", "5000"), asset.ChainEthereum, ""),
		onChain(mkQuote("c", "X", "-1", "90", "5000"), asset.ChainEthereum, ""),
	)

	res := c.Calculate(context.Background(), snap)
	if len(res.Opportunities) != 1 {
		t.Fatalf("expected the valid pair to survive, got %d", len(res.Opportunities))
	}
	if res.Stats.Rejected[domain.RejectInvalidQuote] != 1 || res.Stats.Quotes != 2 {
		t.Errorf("unexpected stats %+v", res.Stats)
	}
}

func TestCalculator_CrossedBooksWithinTolerance(t *testing.T) {
	c := newTestCalculator(t, nil)

	snap := snapshot(
		onChain(mkQuote("a", "X", "100.00", "100.10", "5000"), asset.ChainEthereum, ""),
		onChain(mkQuote("b", "X", "101.00", "101.10", "5000"), asset.ChainEthereum, ""),
		onChain(mkQuote("c", "Y", "50.20", "50.00", "5000"), asset.ChainEthereum, ""),
	)

	res := c.Calculate(context.Background(), snap)
	if res.Stats.Rejected[domain.RejectInvalidQuote] != 0 || res.Stats.Quotes != 3 {
		t.Fatalf("a book crossed within tolerance must be kept, got %+v", res.Stats)
	}
	if res.Stats.Crossed != 1 {
		t.Errorf("expected one crossed book, got %d", res.Stats.Crossed)
	}
	if len(res.Opportunities) != 1 {
		t.Errorf("expected the X pair to survive, got %d", len(res.Opportunities))
	}
}

func TestCalculator_PartialSourceFailure(t *testing.T) {
	c := newTestCalculator(t, nil)

	// b failed this cycle and holds no quotes.
	snap := market.NewSnapshot(map[string][]market.Quote{
		"a": {onChain(mkQuote("a", "X", "100.00", "100.10", "5000"), asset.ChainEthereum, "")},
		"b": nil,
		"c": {onChain(mkQuote("c", "X", "101.00", "101.10", "5000"), asset.ChainEthereum, "")},
	}, time.Now())

	res := c.Calculate(context.Background(), snap)
	if len(res.Opportunities) != 1 || res.Opportunities[0].Route() != "a -> c" {
		t.Fatalf("expected a -> c, got %+v", res.Opportunities)
	}
}

func TestCalculator_RankingAndCap(t *testing.T) {
	c := newTestCalculator(t, nil, func(cfg *CalculatorConfig) { cfg.MaxResults = 2 })

	snap := snapshot(
		onChain(mkQuote("a", "ONE", "100.00", "100.10", "5000"), asset.ChainEthereum, ""),
		onChain(mkQuote("b", "ONE", "101.00", "101.10", "5000"), asset.ChainEthereum, ""),
		onChain(mkQuote("a", "TWO", "50.00", "50.05", "5000"), asset.ChainEthereum, ""),
		onChain(mkQuote("b", "TWO", "51.50", "51.55", "5000"), asset.ChainEthereum, ""),
		onChain(mkQuote("a", "THREE", "200.00", "200.20", "5000"), asset.ChainEthereum, ""),
		onChain(mkQuote("b", "THREE", "204.00", "204.20", "5000"), asset.ChainEthereum, ""),
	)

	res := c.Calculate(context.Background(), snap)
	if len(res.Opportunities) != 2 {
		t.Fatalf("expected results capped at 2, got %d", len(res.Opportunities))
	}
	if res.Opportunities[0].Base != "TWO" || res.Opportunities[1].Base != "THREE" {
		t.Errorf("expected TWO then THREE, got %s then %s", res.Opportunities[0].Base, res.Opportunities[1].Base)
	}
	if !res.Opportunities[0].ProfitPct.GreaterThan(res.Opportunities[1].ProfitPct) {
		t.Error("expected profit-descending order")
	}
}

func TestCalculator_BoundedTransferChecks(t *testing.T) {
	checker := &fakeChecker{delay: 5 * time.Millisecond}
	c := newTestCalculator(t, checker, func(cfg *CalculatorConfig) { cfg.Workers = 2 })

	var quotes []market.Quote
	for i, src := range []string{"s0", "s1", "s2", "s3", "s4", "s5"} {
		bid := decimal.NewFromInt(int64(100 + 2*i))
		ask := bid.Add(decimal.RequireFromString("0.1"))
		quotes = append(quotes, onChain(mkQuote(src, "X", bid.String(), ask.String(), "5000"), asset.ChainEthereum, ""))
	}

	res := c.Calculate(context.Background(), snapshot(quotes...))

	// every lower-priced source buys and every higher-priced one sells: 6 choose 2
	if len(res.Opportunities) != 15 {
		t.Fatalf("expected 15 opportunities, got %d", len(res.Opportunities))
	}
	if checker.Calls() != 15 {
		t.Errorf("expected 15 transfer checks, got %d", checker.Calls())
	}
	if got := checker.maxSeen.Load(); got > 2 {
		t.Errorf("expected at most 2 checks in flight, saw %d", got)
	}
}

func TestCalculator_UpdateValidation(t *testing.T) {
	c := newTestCalculator(t, nil)

	if err := c.UpdateTradingFee("a", decimal.NewFromInt(-1)); err == nil {
		t.Error("expected negative fee to be rejected")
	}
	if err := c.UpdateTradingFee("a", decimal.NewFromInt(100)); err == nil {
		t.Error("expected a 100% fee to be rejected")
	}
	if err := c.UpdateTransferCost(asset.ChainEthereum, asset.ChainBSC, decimal.NewFromInt(-1)); err == nil {
		t.Error("expected negative transfer cost to be rejected")
	}
}
