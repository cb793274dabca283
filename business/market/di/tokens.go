// Package di contains dependency injection tokens for the market data context.
package di

import (
	"github.com/fd1az/arbitrage-scanner/business/market/app"
	"github.com/fd1az/arbitrage-scanner/internal/di"
)

// Public service tokens - exposed to other modules
var (
	QuoteCache = di.NewToken[*app.QuoteCache]("market.QuoteCache")
)

// Private dependency tokens - internal to market module
var (
	Sources = di.NewToken[[]app.SourceAdapter]("market:sources")
)

// Helper functions for type-safe access
func GetQuoteCache(c di.ServiceRegistry) *app.QuoteCache {
	return di.GetToken(c, QuoteCache)
}

func GetSources(c di.ServiceRegistry) []app.SourceAdapter {
	return di.GetToken(c, Sources)
}
