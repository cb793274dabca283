package okx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/fd1az/arbitrage-scanner/internal/apperror"
	"github.com/fd1az/arbitrage-scanner/internal/logger"
)

func TestProvider_FetchQuotes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != tickersPath {
			http.NotFound(w, r)
			return
		}
		if got := r.URL.Query().Get("instType"); got != "SPOT" {
			t.Errorf("expected instType=SPOT, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":"0","msg":"","data":[
			{"instId":"BTC-USDT","bidPx":"65000.1","askPx":"65000.2","vol24h":"1520.3"},
			{"instId":"ETH-USDC","bidPx":"3400","askPx":"3400.5","vol24h":"800"},
			{"instId":"OKB-USDT","bidPx":"","askPx":"50","vol24h":"1"},
			{"instId":"BTC-EUR","bidPx":"60000","askPx":"60001","vol24h":"1"}
		]}`))
	}))
	defer server.Close()

	p, err := NewProvider(ProviderConfig{BaseURL: server.URL}, logger.NewNop())
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}

	quotes, err := p.FetchQuotes(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(quotes) != 2 {
		t.Fatalf("expected 2 quotes, got %d", len(quotes))
	}
	if quotes[0].Symbol != "BTC/USDT" || !quotes[0].Volume.Equal(decimal.RequireFromString("1520.3")) {
		t.Errorf("unexpected quote %+v", quotes[0])
	}
}

func TestProvider_APIErrorCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":"50011","msg":"Rate limit reached","data":[]}`))
	}))
	defer server.Close()

	p, err := NewProvider(ProviderConfig{BaseURL: server.URL}, logger.NewNop())
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}

	_, err = p.FetchQuotes(context.Background())
	if apperror.GetCode(err) != apperror.CodeSourceAPIError {
		t.Errorf("expected source api error, got %v", err)
	}
}
