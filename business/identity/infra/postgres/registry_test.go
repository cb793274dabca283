package postgres

import (
	"context"
	"io/fs"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fd1az/arbitrage-scanner/business/identity/domain"
	"github.com/fd1az/arbitrage-scanner/internal/asset"
)

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}
	if len(entries) < 2 {
		t.Fatalf("expected embedded migrations, got %d", len(entries))
	}
	for _, e := range entries {
		if !strings.HasSuffix(e.Name(), ".sql") {
			t.Errorf("unexpected file %s", e.Name())
		}
	}
}

// newTestRegistry connects to ARB_TEST_POSTGRES_DSN, skipping when unset.
func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	dsn := os.Getenv("ARB_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("ARB_TEST_POSTGRES_DSN not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)

	r := NewRegistry(pool)
	if err := r.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	// Migrations are idempotent.
	if err := r.Migrate(ctx); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	return r
}

func TestRegistry_PutGet(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()
	symbol := "TEST" + strings.ToUpper(time.Now().Format("150405"))

	if _, found, err := r.Get(ctx, symbol); err != nil || found {
		t.Fatalf("expected miss, got found=%v err=%v", found, err)
	}

	cands := []domain.Candidate{
		{Symbol: symbol, Chain: asset.ChainEthereum, Contract: "0x6982508145454ce325ddbe47a25d4ec3d2311933", LiquidityUSD: 100, Source: "dexscreener"},
		{Symbol: symbol, Chain: asset.ChainSolana, Contract: "B5WTLaRwaUQpKk7ir1wniNB6m5o8GgMrimhKMYan2R6B", LiquidityUSD: 50, Source: "dexscreener"},
	}
	if err := r.Put(ctx, symbol, cands, time.Hour); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, found, err := r.Get(ctx, symbol)
	if err != nil || !found {
		t.Fatalf("expected hit, got found=%v err=%v", found, err)
	}
	if len(got) != 2 || got[0].Chain != asset.ChainEthereum {
		t.Errorf("unexpected candidates %+v", got)
	}

	// Replacing with an empty list remembers the miss.
	if err := r.Put(ctx, symbol, nil, time.Hour); err != nil {
		t.Fatalf("put empty: %v", err)
	}
	got, found, err = r.Get(ctx, symbol)
	if err != nil || !found || len(got) != 0 {
		t.Errorf("expected remembered miss, got %v found=%v err=%v", got, found, err)
	}
}

func TestRegistry_RecordFailureAndCalls(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()
	symbol := "FAIL" + time.Now().Format("150405")

	for i := 0; i < 2; i++ {
		if err := r.RecordFailure(ctx, symbol, "no candidates"); err != nil {
			t.Fatalf("record failure: %v", err)
		}
	}

	var retries int
	if err := r.pool.QueryRow(ctx,
		"SELECT retry_count FROM failed_contract_lookups WHERE symbol = $1", strings.ToUpper(symbol),
	).Scan(&retries); err != nil {
		t.Fatalf("query: %v", err)
	}
	if retries != 2 {
		t.Errorf("expected retry_count 2, got %d", retries)
	}

	start := time.Now().Add(-time.Second)
	if err := r.RecordCall(ctx, domain.APICall{API: "coingecko-test", Endpoint: "lookup/X", Success: true, Latency: 120 * time.Millisecond}); err != nil {
		t.Fatalf("record call: %v", err)
	}
	stats, err := r.APIStats(ctx, start)
	if err != nil {
		t.Fatalf("api stats: %v", err)
	}
	var seen bool
	for _, s := range stats {
		if s.API == "coingecko-test" && s.Success >= 1 {
			seen = true
		}
	}
	if !seen {
		t.Errorf("expected coingecko-test in stats, got %+v", stats)
	}
}
