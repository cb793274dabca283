package transfer

import (
	"testing"
	"time"

	"github.com/fd1az/arbitrage-scanner/internal/apperror"
	"github.com/fd1az/arbitrage-scanner/internal/logger"
)

func TestNewNetworkProvider(t *testing.T) {
	tests := []struct {
		exchange string
		want     string
		wantErr  bool
	}{
		{"gateio", "gateio", false},
		{"KuCoin", "kucoin", false},
		{"binance", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.exchange, func(t *testing.T) {
			p, err := NewNetworkProvider(tt.exchange, "http://localhost", time.Second, nil, logger.NewNop())
			if tt.wantErr {
				if apperror.GetCode(err) != apperror.CodeUnsupportedExchange {
					t.Errorf("expected unsupported exchange, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.Exchange() != tt.want {
				t.Errorf("expected %s, got %s", tt.want, p.Exchange())
			}
		})
	}
}
