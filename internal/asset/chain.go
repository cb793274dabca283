package asset

import "strings"

// Chain is a canonical blockchain identifier. Raw network names from
// exchanges and lookup services are normalized into this set at ingestion.
type Chain string

const (
	ChainEthereum  Chain = "ethereum"
	ChainBSC       Chain = "bsc"
	ChainPolygon   Chain = "polygon"
	ChainArbitrum  Chain = "arbitrum"
	ChainOptimism  Chain = "optimism"
	ChainBase      Chain = "base"
	ChainAvalanche Chain = "avalanche"
	ChainFantom    Chain = "fantom"
	ChainSolana    Chain = "solana"
	ChainSui       Chain = "sui"
	ChainAptos     Chain = "aptos"
	ChainZkSync    Chain = "zksync"
	ChainScroll    Chain = "scroll"
	ChainLinea     Chain = "linea"
	ChainBlast     Chain = "blast"
	ChainSonic     Chain = "sonic"
	ChainBerachain Chain = "berachain"
	ChainTron      Chain = "tron"
	ChainBitcoin   Chain = "bitcoin"
	ChainXRP       Chain = "xrp"
	ChainTON       Chain = "ton"
	ChainDogecoin  Chain = "dogecoin"
	ChainLitecoin  Chain = "litecoin"
	ChainCardano   Chain = "cardano"
	ChainPolkadot  Chain = "polkadot"

	// ChainUnresolved marks an asset whose chain could not be determined.
	// It is never replaced by a concrete default.
	ChainUnresolved Chain = "unresolved"
)

// EVM chain IDs.
var evmChainIDs = map[Chain]uint64{
	ChainEthereum:  1,
	ChainBSC:       56,
	ChainPolygon:   137,
	ChainArbitrum:  42161,
	ChainOptimism:  10,
	ChainBase:      8453,
	ChainAvalanche: 43114,
	ChainFantom:    250,
	ChainZkSync:    324,
	ChainScroll:    534352,
	ChainLinea:     59144,
	ChainBlast:     81457,
	ChainSonic:     146,
	ChainBerachain: 80094,
}

var knownChains = map[Chain]struct{}{
	ChainEthereum: {}, ChainBSC: {}, ChainPolygon: {}, ChainArbitrum: {}, ChainOptimism: {},
	ChainBase:     {}, ChainAvalanche: {}, ChainFantom: {}, ChainSolana: {}, ChainSui: {},
	ChainAptos:    {}, ChainZkSync: {}, ChainScroll: {}, ChainLinea: {}, ChainBlast: {},
	ChainSonic:    {}, ChainBerachain: {}, ChainTron: {}, ChainBitcoin: {},
	ChainXRP:      {}, ChainTON: {}, ChainDogecoin: {}, ChainLitecoin: {}, ChainCardano: {},
	ChainPolkadot: {},
}

// chainAliases maps lowercased exchange and provider spellings to canonical chains.
var chainAliases = map[string]Chain{
	"eth":              ChainEthereum,
	"ether":            ChainEthereum,
	"mainnet":          ChainEthereum,
	"erc20":            ChainEthereum,
	"eth-erc20":        ChainEthereum,
	"ethereum (erc20)": ChainEthereum,

	"bnb":                     ChainBSC,
	"binance":                 ChainBSC,
	"bep20":                   ChainBSC,
	"bsc_bep20":               ChainBSC,
	"binance-smart-chain":     ChainBSC,
	"binance smart chain":     ChainBSC,
	"bnb smart chain":         ChainBSC,
	"bnb smart chain (bep20)": ChainBSC,

	"matic":       ChainPolygon,
	"poly":        ChainPolygon,
	"polygon-pos": ChainPolygon,
	"polygon pos": ChainPolygon,

	"arb":          ChainArbitrum,
	"arbitrum one": ChainArbitrum,
	"arbitrum-one": ChainArbitrum,
	"arbitrumone":  ChainArbitrum,
	"arbevm":       ChainArbitrum,

	"op":                  ChainOptimism,
	"optimistic-ethereum": ChainOptimism,
	"opeth":               ChainOptimism,

	"avax":              ChainAvalanche,
	"avaxc":             ChainAvalanche,
	"avax c-chain":      ChainAvalanche,
	"avax_c":            ChainAvalanche,
	"avalanche c-chain": ChainAvalanche,

	"ftm": ChainFantom,

	"baseevm":  ChainBase,
	"base-evm": ChainBase,

	"sol": ChainSolana,
	"spl": ChainSolana,

	"apt":        ChainAptos,
	"zksync era": ChainZkSync,
	"zksyncera":  ChainZkSync,
	"era":        ChainZkSync,

	"trx":   ChainTron,
	"trc20": ChainTron,

	"btc": ChainBitcoin,

	"ripple":  ChainXRP,
	"toncoin": ChainTON,
	"doge":    ChainDogecoin,
	"ltc":     ChainLitecoin,
	"ada":     ChainCardano,
	"dot":     ChainPolkadot,
}

// NormalizeChain maps a raw network name to a canonical chain.
// Unknown or empty input yields ChainUnresolved.
func NormalizeChain(raw string) Chain {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ChainUnresolved
	}
	if _, ok := knownChains[Chain(s)]; ok {
		return Chain(s)
	}
	if c, ok := chainAliases[s]; ok {
		return c
	}
	return ChainUnresolved
}

// IsKnown reports whether c is a concrete canonical chain.
func (c Chain) IsKnown() bool {
	_, ok := knownChains[c]
	return ok
}

// IsResolved reports whether c carries chain information.
func (c Chain) IsResolved() bool {
	return c != "" && c != ChainUnresolved
}

// IsEVM reports whether c uses 20-byte hex contract addresses.
func (c Chain) IsEVM() bool {
	_, ok := evmChainIDs[c]
	return ok
}

// ChainID returns the EVM chain ID, or 0 for non-EVM chains.
func (c Chain) ChainID() uint64 {
	return evmChainIDs[c]
}

func (c Chain) String() string {
	if c == "" {
		return string(ChainUnresolved)
	}
	return string(c)
}

// Chains returns every known chain.
func Chains() []Chain {
	out := make([]Chain, 0, len(knownChains))
	for c := range knownChains {
		out = append(out, c)
	}
	return out
}
