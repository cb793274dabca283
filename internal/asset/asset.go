// Package asset models cross-exchange asset identity: the canonical chain
// vocabulary, asset keys, and the static registry of known tokens.
package asset

import "fmt"

// Asset is a known token deployment: one symbol on one chain.
// The symbol alone is never identity; the Key is.
type Asset struct {
	symbol   string
	name     string
	chain    Chain
	contract string
	decimals uint8
}

// NewNative creates the native coin of chain.
func NewNative(symbol, name string, chain Chain, decimals uint8) *Asset {
	return newAsset(symbol, name, chain, NativeContract, decimals)
}

// NewToken creates a contract token.
func NewToken(symbol, name string, chain Chain, contract string, decimals uint8) *Asset {
	if contract == "" || contract == NativeContract {
		panic("asset: token requires a contract address, use NewNative for native coins")
	}
	if !ValidContract(chain, contract) {
		panic(fmt.Sprintf("asset: invalid contract %q on %s", contract, chain))
	}
	return newAsset(symbol, name, chain, contract, decimals)
}

func newAsset(symbol, name string, chain Chain, contract string, decimals uint8) *Asset {
	if symbol == "" {
		panic("asset: empty symbol")
	}
	if !chain.IsKnown() {
		panic(fmt.Sprintf("asset: unknown chain %q", chain))
	}
	if decimals > 30 {
		panic("asset: suspicious decimals (>30)")
	}
	k := NewKey(symbol, chain, contract)
	return &Asset{
		symbol:   k.Base,
		name:     name,
		chain:    chain,
		contract: k.Contract,
		decimals: decimals,
	}
}

// Key returns the canonical identity.
func (a *Asset) Key() Key {
	return Key{Base: a.symbol, Chain: a.chain, Contract: a.contract}
}

// Symbol returns the ticker symbol (e.g., "ETH", "USDC").
func (a *Asset) Symbol() string {
	return a.symbol
}

// Name returns the human-readable name (e.g., "Ethereum", "USD Coin").
func (a *Asset) Name() string {
	if a.name == "" {
		return a.symbol
	}
	return a.name
}

func (a *Asset) Chain() Chain { return a.chain }
func (a *Asset) Contract() string { return a.contract }
func (a *Asset) Decimals() uint8 { return a.decimals }

// IsNative returns true if this is a native coin.
func (a *Asset) IsNative() bool {
	return a.contract == NativeContract
}

// String returns a human-readable representation.
func (a *Asset) String() string {
	return a.Key().String()
}

// Equals compares two Assets by key.
func (a *Asset) Equals(other *Asset) bool {
	if a == nil || other == nil {
		return a == other
	}
	return a.Key() == other.Key()
}
