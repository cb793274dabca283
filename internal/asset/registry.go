package asset

import (
	"fmt"
	"strings"
	"sync"
)

// Registry is a thread-safe index of known token deployments.
// A symbol may map to several assets on different chains.
type Registry struct {
	byKey    map[Key]*Asset
	bySymbol map[string][]*Asset
	mu       sync.RWMutex
}

// NewRegistry creates a new empty asset registry.
func NewRegistry() *Registry {
	return &Registry{
		byKey:    make(map[Key]*Asset),
		bySymbol: make(map[string][]*Asset),
	}
}

// Register adds an asset. It fails when the key is already present.
func (r *Registry) Register(a *Asset) error {
	if a == nil {
		return fmt.Errorf("asset: cannot register nil asset")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	k := a.Key()
	if _, exists := r.byKey[k]; exists {
		return fmt.Errorf("asset: %s already registered", k)
	}

	r.byKey[k] = a
	r.bySymbol[a.Symbol()] = append(r.bySymbol[a.Symbol()], a)
	return nil
}

// MustRegister is Register that panics, for static tables.
func (r *Registry) MustRegister(assets ...*Asset) {
	for _, a := range assets {
		if err := r.Register(a); err != nil {
			panic(err)
		}
	}
}

// Get retrieves an asset by key.
func (r *Registry) Get(k Key) (*Asset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byKey[k]
	return a, ok
}

// GetBySymbol returns every deployment of symbol, in registration order.
func (r *Registry) GetBySymbol(symbol string) []*Asset {
	r.mu.RLock()
	defer r.mu.RUnlock()

	assets := r.bySymbol[strings.ToUpper(symbol)]
	if len(assets) == 0 {
		return nil
	}

	result := make([]*Asset, len(assets))
	copy(result, assets)
	return result
}

// GetBySymbolAndChain returns the deployment of symbol on chain.
func (r *Registry) GetBySymbolAndChain(symbol string, chain Chain) (*Asset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.bySymbol[strings.ToUpper(symbol)] {
		if a.Chain() == chain {
			return a, true
		}
	}
	return nil, false
}

// Primary returns the first registered deployment of symbol. The static
// table registers each symbol's home chain first.
func (r *Registry) Primary(symbol string) (*Asset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	assets := r.bySymbol[strings.ToUpper(symbol)]
	if len(assets) == 0 {
		return nil, false
	}
	return assets[0], true
}

// Chains returns the chains symbol is registered on.
func (r *Registry) Chains(symbol string) []Chain {
	assets := r.GetBySymbol(symbol)
	out := make([]Chain, 0, len(assets))
	for _, a := range assets {
		out = append(out, a.Chain())
	}
	return out
}

// IsWhitelisted reports whether the exact key is registered.
func (r *Registry) IsWhitelisted(k Key) bool {
	_, ok := r.Get(k)
	return ok
}

// Count returns the number of registered assets.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byKey)
}
