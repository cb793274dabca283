package asset

// Whitelisted contracts.
const (
	AddrUSDCEthereum = "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"
	AddrUSDTEthereum = "0xdAC17F958D2ee523a2206206994597C13D831ec7"
	AddrWETHEthereum = "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"
	AddrUSDTBSC      = "0x55d398326f99059fF775485246999027B3197955"
	AddrUSDCBSC      = "0x8AC76a51cc950d9822D68b83fE1Ad97B32Cd580d"
)

// Other well-known deployments.
const (
	AddrWBTCEthereum   = "0x2260FAC5E5542a773Aa44fBCfeDf7C193bc2C599"
	AddrDAIEthereum    = "0x6B175474E89094C44Da98b954EedeAC495271d0F"
	AddrLINKEthereum   = "0x514910771AF9Ca656af840dff83E8264EcF986CA"
	AddrUNIEthereum    = "0x1f9840a85d5aF5bf1D1762F925BDADdC4201F984"
	AddrARBArbitrum    = "0x912CE59144191C1204E64559FE8253a0e49E6548"
	AddrOPOptimism     = "0x4200000000000000000000000000000000000042"
	AddrWBNBBSC        = "0xbb4CdB9CBd36B01bD1cBaEBF2De08d9173bc095c"
	AddrWMATICPolygon  = "0x0d500B1d8E8eF31E21C99d1Db9A6444d3ADf1270"
	AddrWAVAXAvalanche = "0xB31f66AA3C1e785363F0875A1B74E27b85FD66c7"
)

// Natives lists native coins. The first chain per symbol is its home chain.
func Natives() []*Asset {
	return []*Asset{
		NewNative("ETH", "Ethereum", ChainEthereum, 18),
		NewNative("ETH", "Ethereum", ChainArbitrum, 18),
		NewNative("ETH", "Ethereum", ChainOptimism, 18),
		NewNative("ETH", "Ethereum", ChainBase, 18),
		NewNative("ETH", "Ethereum", ChainZkSync, 18),
		NewNative("ETH", "Ethereum", ChainScroll, 18),
		NewNative("ETH", "Ethereum", ChainLinea, 18),
		NewNative("ETH", "Ethereum", ChainBlast, 18),
		NewNative("BNB", "BNB", ChainBSC, 18),
		NewNative("POL", "Polygon", ChainPolygon, 18),
		NewNative("MATIC", "Polygon", ChainPolygon, 18),
		NewNative("AVAX", "Avalanche", ChainAvalanche, 18),
		NewNative("FTM", "Fantom", ChainFantom, 18),
		NewNative("S", "Sonic", ChainSonic, 18),
		NewNative("BERA", "Berachain", ChainBerachain, 18),
		NewNative("SOL", "Solana", ChainSolana, 9),
		NewNative("SUI", "Sui", ChainSui, 9),
		NewNative("APT", "Aptos", ChainAptos, 8),
		NewNative("TRX", "Tron", ChainTron, 6),
		NewNative("BTC", "Bitcoin", ChainBitcoin, 8),
		NewNative("XRP", "XRP", ChainXRP, 6),
		NewNative("TON", "Toncoin", ChainTON, 9),
		NewNative("DOGE", "Dogecoin", ChainDogecoin, 8),
		NewNative("LTC", "Litecoin", ChainLitecoin, 8),
		NewNative("ADA", "Cardano", ChainCardano, 6),
		NewNative("DOT", "Polkadot", ChainPolkadot, 10),
	}
}

// Tokens lists well-known contract tokens. Ethereum deployments come first.
func Tokens() []*Asset {
	return []*Asset{
		NewToken("USDC", "USD Coin", ChainEthereum, AddrUSDCEthereum, 6),
		NewToken("USDT", "Tether USD", ChainEthereum, AddrUSDTEthereum, 6),
		NewToken("WETH", "Wrapped Ether", ChainEthereum, AddrWETHEthereum, 18),
		NewToken("WBTC", "Wrapped Bitcoin", ChainEthereum, AddrWBTCEthereum, 8),
		NewToken("DAI", "Dai Stablecoin", ChainEthereum, AddrDAIEthereum, 18),
		NewToken("LINK", "Chainlink", ChainEthereum, AddrLINKEthereum, 18),
		NewToken("UNI", "Uniswap", ChainEthereum, AddrUNIEthereum, 18),
		NewToken("USDT", "Tether USD", ChainBSC, AddrUSDTBSC, 18),
		NewToken("USDC", "USD Coin", ChainBSC, AddrUSDCBSC, 18),
		NewToken("WBNB", "Wrapped BNB", ChainBSC, AddrWBNBBSC, 18),
		NewToken("ARB", "Arbitrum", ChainArbitrum, AddrARBArbitrum, 18),
		NewToken("OP", "Optimism", ChainOptimism, AddrOPOptimism, 18),
		NewToken("WMATIC", "Wrapped Matic", ChainPolygon, AddrWMATICPolygon, 18),
		NewToken("WAVAX", "Wrapped AVAX", ChainAvalanche, AddrWAVAXAvalanche, 18),
	}
}

// DefaultRegistry returns a registry pre-populated with natives and well-known tokens.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.MustRegister(Natives()...)
	r.MustRegister(Tokens()...)
	return r
}

// WrappedPrefixes maps wrapped-asset symbols to the chain of the wrapped coin.
var WrappedPrefixes = map[string]Chain{
	"WETH":   ChainEthereum,
	"WBTC":   ChainEthereum,
	"WBNB":   ChainBSC,
	"WMATIC": ChainPolygon,
	"WPOL":   ChainPolygon,
	"WAVAX":  ChainAvalanche,
	"WFTM":   ChainFantom,
	"WSOL":   ChainSolana,
}

// Bridged suffixes, e.g. USDC.e on Avalanche.
var BridgedSuffixes = map[string]Chain{
	".E": ChainAvalanche,
}
