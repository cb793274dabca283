// Package di contains dependency injection tokens for the transfer context.
package di

import (
	"github.com/fd1az/arbitrage-scanner/business/transfer/app"
	"github.com/fd1az/arbitrage-scanner/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Checker = di.NewToken[*app.Checker]("transfer.Checker")
)

// Private dependency tokens - internal to transfer module
var (
	Providers   = di.NewToken[[]app.NetworkInfoProvider]("transfer:providers")
	NetworkInfo = di.NewToken[*app.NetworkInfoCache]("transfer:networkInfo")
)

// GetChecker returns nil when transfer checks are disabled.
func GetChecker(c di.ServiceRegistry) *app.Checker {
	return di.GetToken(c, Checker)
}

func GetProviders(c di.ServiceRegistry) []app.NetworkInfoProvider {
	return di.GetToken(c, Providers)
}

func GetNetworkInfo(c di.ServiceRegistry) *app.NetworkInfoCache {
	return di.GetToken(c, NetworkInfo)
}
