package asset

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// NativeContract is the contract placeholder for a chain's native coin.
const NativeContract = "native"

// Key is the canonical cross-exchange identity of an asset.
// Two quotes are the same asset only when their keys are equal.
type Key struct {
	Base     string
	Chain    Chain
	Contract string
}

// NewKey builds a Key, normalizing the symbol, chain and contract.
// EVM addresses are lowercased so checksum and plain spellings compare equal.
func NewKey(base string, chain Chain, contract string) Key {
	base = strings.ToUpper(strings.TrimSpace(base))
	if !chain.IsResolved() {
		return Key{Base: base, Chain: ChainUnresolved}
	}
	return Key{Base: base, Chain: chain, Contract: NormalizeContract(chain, contract)}
}

// NormalizeContract canonicalizes an address for chain.
// Non-EVM addresses (base58, move) are case-sensitive and only trimmed.
func NormalizeContract(chain Chain, contract string) string {
	contract = strings.TrimSpace(contract)
	switch {
	case contract == "":
		return ""
	case strings.EqualFold(contract, NativeContract):
		return NativeContract
	case chain.IsEVM() && common.IsHexAddress(contract):
		return strings.ToLower(common.HexToAddress(contract).Hex())
	default:
		return contract
	}
}

// ValidContract reports whether contract is well formed for chain.
func ValidContract(chain Chain, contract string) bool {
	if contract == "" || contract == NativeContract {
		return true
	}
	if chain.IsEVM() {
		return common.IsHexAddress(contract) && common.HexToAddress(contract) != (common.Address{})
	}
	return len(contract) >= 20
}

// IsResolved reports whether the key carries a concrete chain.
func (k Key) IsResolved() bool {
	return k.Chain.IsResolved()
}

// IsNative reports whether the key denotes a native coin.
func (k Key) IsNative() bool {
	return k.Contract == NativeContract
}

// SymbolOnly reports whether the key has neither chain nor contract.
func (k Key) SymbolOnly() bool {
	return !k.Chain.IsResolved() && k.Contract == ""
}

// String renders base:chain:contract, degrading to base:chain and base:unknown.
func (k Key) String() string {
	switch {
	case !k.Chain.IsResolved():
		return fmt.Sprintf("%s:unknown", k.Base)
	case k.Contract == "":
		return fmt.Sprintf("%s:%s", k.Base, k.Chain)
	default:
		return fmt.Sprintf("%s:%s:%s", k.Base, k.Chain, k.Contract)
	}
}
