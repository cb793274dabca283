package app

import (
	"context"

	"github.com/fd1az/arbitrage-scanner/business/transfer/domain"
)

// NetworkInfoProvider lists an exchange's deposit/withdraw networks for an asset.
// Exchanges without a public endpoint return a CodeNetworkInfoUnsupported error.
type NetworkInfoProvider interface {
	Exchange() string
	Networks(ctx context.Context, asset string) ([]domain.Network, error)
}
