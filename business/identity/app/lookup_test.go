package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fd1az/arbitrage-scanner/business/identity/domain"
	"github.com/fd1az/arbitrage-scanner/internal/apperror"
	"github.com/fd1az/arbitrage-scanner/internal/asset"
	"github.com/fd1az/arbitrage-scanner/internal/logger"
)

type fakeLookup struct {
	name  string
	cands map[string][]domain.Candidate
	err   error

	mu    sync.Mutex
	calls map[string]int
}

func newFakeLookup(name string, cands map[string][]domain.Candidate) *fakeLookup {
	return &fakeLookup{name: name, cands: cands, calls: make(map[string]int)}
}

func (f *fakeLookup) Name() string { return f.name }

func (f *fakeLookup) Lookup(_ context.Context, symbol string) ([]domain.Candidate, error) {
	f.mu.Lock()
	f.calls[symbol]++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.cands[symbol], nil
}

func (f *fakeLookup) Calls(symbol string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[symbol]
}

type memStore struct {
	name string
	data map[string][]domain.Candidate
	err  error
	puts int
}

func newMemStore(name string) *memStore {
	return &memStore{name: name, data: make(map[string][]domain.Candidate)}
}

func (m *memStore) Name() string { return m.name }

func (m *memStore) Get(_ context.Context, symbol string) ([]domain.Candidate, bool, error) {
	if m.err != nil {
		return nil, false, m.err
	}
	c, ok := m.data[symbol]
	return c, ok, nil
}

func (m *memStore) Put(_ context.Context, symbol string, cands []domain.Candidate, _ time.Duration) error {
	m.puts++
	m.data[symbol] = cands
	return nil
}

type fakeRecorder struct {
	mu       sync.Mutex
	failures []string
	calls    []domain.APICall
}

func (r *fakeRecorder) RecordFailure(_ context.Context, symbol, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, symbol)
	return nil
}

func (r *fakeRecorder) RecordCall(_ context.Context, call domain.APICall) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
	return nil
}

type fakeVerifier struct {
	reject map[string]bool
	err    error
}

func (v *fakeVerifier) Verify(_ context.Context, c domain.Candidate) (bool, error) {
	if v.err != nil {
		return false, v.err
	}
	return !v.reject[c.Contract], nil
}

var pepeCandidates = []domain.Candidate{
	{Symbol: "PEPE", Chain: asset.ChainEthereum, Contract: "0x6982508145454ce325ddbe47a25d4ec3d2311933", LiquidityUSD: 1000, Source: "dexscreener"},
	{Symbol: "PEPE", Chain: asset.ChainSolana, Contract: "B5WTLaRwaUQpKk7ir1wniNB6m5o8GgMrimhKMYan2R6B", LiquidityUSD: 500, Source: "dexscreener"},
	{Symbol: "PEPE", Chain: asset.ChainEthereum, Contract: "0x1111111111111111111111111111111111111111", LiquidityUSD: 10, Source: "dexscreener"},
}

func TestLookupStrategy_CachesPerSymbol(t *testing.T) {
	lookup := newFakeLookup("fake", map[string][]domain.Candidate{"PEPE": pepeCandidates})
	s := NewLookupStrategy(LookupConfig{MaxCandidates: 5}, lookup, logger.NewNop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := s.Resolve(ctx, "pepe")
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if len(res) != 2 {
			t.Fatalf("expected best candidate per chain, got %+v", res)
		}
		if res[0].Chain != asset.ChainEthereum || res[0].Contract != pepeCandidates[0].Contract {
			t.Errorf("expected the most liquid ethereum deployment, got %+v", res[0])
		}
	}

	if lookup.Calls("PEPE") != 1 {
		t.Errorf("expected one external lookup, got %d", lookup.Calls("PEPE"))
	}
	stats := s.Stats()
	if stats.Lookups != 1 || stats.CacheHits != 2 || stats.CacheMisses != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestLookupStrategy_StoreTiers(t *testing.T) {
	lookup := newFakeLookup("fake", nil)
	fast := newMemStore("fast")
	slow := newMemStore("slow")
	slow.data["PEPE"] = pepeCandidates[:2]

	s := NewLookupStrategy(LookupConfig{}, lookup, logger.NewNop(), WithStores(fast, slow))

	res, err := s.Resolve(context.Background(), "PEPE")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(res) != 2 {
		t.Fatalf("expected store candidates, got %+v", res)
	}
	if lookup.Calls("PEPE") != 0 {
		t.Error("a store hit must not reach the lookup service")
	}
	if len(fast.data["PEPE"]) != 2 {
		t.Error("expected the faster tier to be backfilled")
	}
}

func TestLookupStrategy_StoreErrorFallsThrough(t *testing.T) {
	lookup := newFakeLookup("fake", map[string][]domain.Candidate{"PEPE": pepeCandidates[:1]})
	broken := newMemStore("broken")
	broken.err = errors.New("connection refused")

	s := NewLookupStrategy(LookupConfig{}, lookup, logger.NewNop(), WithStores(broken))

	res, err := s.Resolve(context.Background(), "PEPE")
	if err != nil || len(res) != 1 {
		t.Fatalf("expected lookup result despite store error, got %+v, %v", res, err)
	}
}

func TestLookupStrategy_FailureIsRecorded(t *testing.T) {
	lookup := newFakeLookup("fake", nil)
	lookup.err = apperror.New(apperror.CodeSourceUnavailable)
	rec := &fakeRecorder{}

	s := NewLookupStrategy(LookupConfig{}, lookup, logger.NewNop(), WithRecorder(rec))

	_, err := s.Resolve(context.Background(), "PEPE")
	if apperror.GetCode(err) != apperror.CodeLookupFailed {
		t.Fatalf("expected lookup failure, got %v", err)
	}
	if len(rec.failures) != 1 || rec.failures[0] != "PEPE" {
		t.Errorf("expected recorded failure, got %v", rec.failures)
	}
	if s.Stats().Failures != 1 {
		t.Errorf("expected 1 failure, got %d", s.Stats().Failures)
	}

	// Failures are not cached; the next cycle retries.
	_, _ = s.Resolve(context.Background(), "PEPE")
	if lookup.Calls("PEPE") != 2 {
		t.Errorf("expected retry, got %d calls", lookup.Calls("PEPE"))
	}
}

func TestLookupStrategy_NegativeResultIsCached(t *testing.T) {
	lookup := newFakeLookup("fake", nil)
	rec := &fakeRecorder{}
	s := NewLookupStrategy(LookupConfig{}, lookup, logger.NewNop(), WithRecorder(rec))

	for i := 0; i < 2; i++ {
		res, err := s.Resolve(context.Background(), "NOPE")
		if err != nil || len(res) != 0 {
			t.Fatalf("expected empty result, got %+v, %v", res, err)
		}
	}
	if lookup.Calls("NOPE") != 1 {
		t.Errorf("expected the miss to be cached, got %d calls", lookup.Calls("NOPE"))
	}
	if len(rec.failures) != 1 {
		t.Errorf("expected one recorded miss, got %d", len(rec.failures))
	}
}

func TestLookupStrategy_Verifier(t *testing.T) {
	lookup := newFakeLookup("fake", map[string][]domain.Candidate{"PEPE": pepeCandidates[:2]})

	t.Run("drops_rejected", func(t *testing.T) {
		v := &fakeVerifier{reject: map[string]bool{pepeCandidates[0].Contract: true}}
		s := NewLookupStrategy(LookupConfig{}, lookup, logger.NewNop(), WithVerifier(v))

		cands, err := s.Candidates(context.Background(), "PEPE")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(cands) != 1 || cands[0].Chain != asset.ChainSolana {
			t.Errorf("expected only the solana candidate, got %+v", cands)
		}
	})

	t.Run("keeps_unverifiable", func(t *testing.T) {
		v := &fakeVerifier{err: errors.New("rpc down")}
		s := NewLookupStrategy(LookupConfig{}, lookup, logger.NewNop(), WithVerifier(v))

		cands, err := s.Candidates(context.Background(), "PEPE")
		if err != nil || len(cands) != 2 {
			t.Errorf("expected both candidates kept, got %+v, %v", cands, err)
		}
	})
}

func TestFallbackLookup(t *testing.T) {
	ctx := context.Background()
	eth := pepeCandidates[:1]

	t.Run("first_non_empty_wins", func(t *testing.T) {
		empty := newFakeLookup("coingecko", nil)
		dex := newFakeLookup("dexscreener", map[string][]domain.Candidate{"PEPE": eth})
		rec := &fakeRecorder{}

		got, err := NewFallbackLookup(logger.NewNop(), rec, empty, dex).Lookup(ctx, "PEPE")
		if err != nil || len(got) != 1 {
			t.Fatalf("unexpected result %+v, %v", got, err)
		}
		if len(rec.calls) != 2 || rec.calls[0].API != "coingecko" || !rec.calls[1].Success {
			t.Errorf("expected both calls recorded, got %+v", rec.calls)
		}
	})

	t.Run("error_then_success", func(t *testing.T) {
		broken := newFakeLookup("coingecko", nil)
		broken.err = errors.New("timeout")
		dex := newFakeLookup("dexscreener", map[string][]domain.Candidate{"PEPE": eth})

		got, err := NewFallbackLookup(logger.NewNop(), nil, broken, dex).Lookup(ctx, "PEPE")
		if err != nil || len(got) != 1 {
			t.Fatalf("unexpected result %+v, %v", got, err)
		}
	})

	t.Run("all_failed", func(t *testing.T) {
		a := newFakeLookup("a", nil)
		a.err = errors.New("a down")
		b := newFakeLookup("b", nil)
		b.err = errors.New("b down")

		if _, err := NewFallbackLookup(logger.NewNop(), nil, a, b).Lookup(ctx, "PEPE"); err == nil {
			t.Error("expected error when every provider fails")
		}
	})

	t.Run("failure_and_empty_is_empty", func(t *testing.T) {
		a := newFakeLookup("a", nil)
		a.err = errors.New("a down")
		b := newFakeLookup("b", nil)

		got, err := NewFallbackLookup(logger.NewNop(), nil, a, b).Lookup(ctx, "PEPE")
		if err != nil || len(got) != 0 {
			t.Errorf("expected empty success, got %+v, %v", got, err)
		}
	})
}
