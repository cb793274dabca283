package evm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/fd1az/arbitrage-scanner/business/identity/domain"
	"github.com/fd1az/arbitrage-scanner/internal/asset"
	"github.com/fd1az/arbitrage-scanner/internal/logger"
)

const (
	tokenAddr = "0xdac17f958d2ee523a2206206994597c13d831ec7"
	emptyAddr = "0x000000000000000000000000000000000000dead"
)

// newRPCServer answers eth_getCode with bytecode for tokenAddr only.
func newRPCServer(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage `json:"id"`
			Method string          `json:"method"`
			Params []any           `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		calls.Add(1)

		result := "0x"
		if req.Method == "eth_getCode" && len(req.Params) > 0 {
			if addr, _ := req.Params[0].(string); strings.EqualFold(addr, tokenAddr) {
				result = "0x6080604052"
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  result,
		})
	}))
}

func TestVerifier_Verify(t *testing.T) {
	var calls atomic.Int32
	server := newRPCServer(t, &calls)
	defer server.Close()

	v := NewVerifier(VerifierConfig{
		RPCURLs: map[asset.Chain]string{asset.ChainEthereum: server.URL},
	}, logger.NewNop())
	defer v.Close()

	ctx := context.Background()
	tests := []struct {
		name string
		cand domain.Candidate
		want bool
	}{
		{"contract_with_code", domain.Candidate{Chain: asset.ChainEthereum, Contract: tokenAddr}, true},
		{"address_without_code", domain.Candidate{Chain: asset.ChainEthereum, Contract: emptyAddr}, false},
		{"chain_without_rpc", domain.Candidate{Chain: asset.ChainBSC, Contract: emptyAddr}, true},
		{"non_evm", domain.Candidate{Chain: asset.ChainSolana, Contract: "B5WTLaRwaUQpKk7ir1wniNB6m5o8GgMrimhKMYan2R6B"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.Verify(ctx, tt.cand)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}

	before := calls.Load()
	if _, err := v.Verify(ctx, domain.Candidate{Chain: asset.ChainEthereum, Contract: tokenAddr}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls.Load() != before {
		t.Error("expected repeated checks to be served from cache")
	}
}
