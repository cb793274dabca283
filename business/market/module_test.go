package market

import (
	"testing"

	"github.com/fd1az/arbitrage-scanner/internal/apperror"
	"github.com/fd1az/arbitrage-scanner/internal/config"
	"github.com/fd1az/arbitrage-scanner/internal/logger"
)

func TestNewSource(t *testing.T) {
	tests := []struct {
		name     string
		sc       config.SourceConfig
		wantName string
		wantErr  bool
	}{
		{"binance", config.SourceConfig{Name: "binance", Kind: "binance", BaseURL: "http://localhost"}, "binance", false},
		{"kind_defaults_to_name", config.SourceConfig{Name: "okx", BaseURL: "http://localhost"}, "okx", false},
		{"mexc", config.SourceConfig{Name: "mexc", Kind: "mexc"}, "mexc", false},
		{"bybit", config.SourceConfig{Name: "bybit", Kind: "BYBIT"}, "bybit", false},
		{"gateio", config.SourceConfig{Name: "gateio", Kind: "gateio"}, "gateio", false},
		{"kucoin", config.SourceConfig{Name: "kucoin", Kind: "kucoin"}, "kucoin", false},
		{"unknown", config.SourceConfig{Name: "ftx", Kind: "ftx"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := NewSource(tt.sc, nil, logger.NewNop())
			if tt.wantErr {
				if apperror.GetCode(err) != apperror.CodeUnsupportedExchange {
					t.Errorf("expected unsupported exchange, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if src.Name() != tt.wantName {
				t.Errorf("expected name %s, got %s", tt.wantName, src.Name())
			}
		})
	}
}
