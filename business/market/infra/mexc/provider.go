// Package mexc adapts the MEXC spot API, which mirrors Binance's v3 REST surface.
package mexc

import (
	"github.com/fd1az/arbitrage-scanner/business/market/infra/binance"
	"github.com/fd1az/arbitrage-scanner/internal/logger"
)

// BaseAPIURL is the public MEXC spot endpoint.
const BaseAPIURL = "https://api.mexc.com"

// NewProvider creates a MEXC provider. MEXC's websocket protocol differs from
// Binance's, so quotes are always served over REST.
func NewProvider(cfg binance.ProviderConfig, log logger.LoggerInterface) (*binance.Provider, error) {
	cfg.Name = "mexc"
	if cfg.BaseURL == "" {
		cfg.BaseURL = BaseAPIURL
	}
	cfg.StreamURL = ""
	return binance.NewProvider(cfg, log)
}
