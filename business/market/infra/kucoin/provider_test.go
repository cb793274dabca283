package kucoin

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
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case timePath:
			_, _ = w.Write([]byte(`{"code":"200000","data":1700000000000}`))
		case tickersPath:
			_, _ = w.Write([]byte(`{"code":"200000","data":{"time":1700000000000,"ticker":[
				{"symbol":"KCS-USDT","buy":"9.1","sell":"9.11","vol":"5000"},
				{"symbol":"ETH-USDC","buy":"3400","sell":"3400.4","vol":"10"},
				{"symbol":"BROKEN-USDT","buy":null,"sell":"1","vol":"1"}
			]}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	p, err := NewProvider(ProviderConfig{BaseURL: server.URL}, logger.NewNop())
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}

	ctx := context.Background()
	if err := p.Connect(ctx); err != nil {
		t.Fatalf("connect: %v", err)
	}

	quotes, err := p.FetchQuotes(ctx)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(quotes) != 2 {
		t.Fatalf("expected 2 quotes, got %d", len(quotes))
	}
	if quotes[0].Base != "KCS" || !quotes[0].Bid.Equal(decimal.RequireFromString("9.1")) {
		t.Errorf("unexpected quote %+v", quotes[0])
	}
}

func TestProvider_HTTPErrorIsTransport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"code":"429000","msg":"Too Many Requests"}`))
	}))
	defer server.Close()

	p, err := NewProvider(ProviderConfig{BaseURL: server.URL}, logger.NewNop())
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}

	_, err = p.FetchQuotes(context.Background())
	if !apperror.IsTransport(err) {
		t.Errorf("expected transport error, got %v", err)
	}
}
