// Package domain contains the core domain types for the market data context.
package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/arbitrage-scanner/internal/apperror"
	"github.com/fd1az/arbitrage-scanner/internal/asset"
)

// DefaultQuoteAssets are the quote currencies kept when a source has none configured.
var DefaultQuoteAssets = []string{"USDT", "USDC"}

// crossTolerance is how far a bid may sit above its own ask before the
// record is treated as corrupt rather than a momentarily crossed book.
var crossTolerance = decimal.RequireFromString("0.01")

// Quote is one exchange's best bid/ask/volume for a symbol at a point in time.
type Quote struct {
	Symbol     string // display pair, BASE/QUOTE
	Base       string
	QuoteAsset string
	Bid        decimal.Decimal
	Ask        decimal.Decimal
	Volume     decimal.Decimal // base-asset volume as reported by the source
	Timestamp  time.Time
	Source     string
	Chain      asset.Chain // empty until resolved
	Contract   string
}

// NewQuote builds a quote for base/quote stamped with now.
func NewQuote(source, base, quote string, bid, ask, volume decimal.Decimal, now time.Time) Quote {
	base = strings.ToUpper(base)
	quote = strings.ToUpper(quote)
	return Quote{
		Symbol:     base + "/" + quote,
		Base:       base,
		QuoteAsset: quote,
		Bid:        bid,
		Ask:        ask,
		Volume:     volume,
		Timestamp:  now,
		Source:     source,
	}
}

// Validate rejects records that must never reach the calculator.
func (q Quote) Validate() error {
	switch {
	case q.Base == "" || q.QuoteAsset == "":
		return invalid(q, "missing symbol")
	case !q.Bid.IsPositive():
		return invalid(q, "bid must be positive")
	case !q.Ask.IsPositive():
		return invalid(q, "ask must be positive")
	case q.Volume.IsNegative():
		return invalid(q, "negative volume")
	case q.Bid.GreaterThan(q.Ask.Mul(decimal.NewFromInt(1).Add(crossTolerance))):
		return invalid(q, "bid above ask beyond tolerance")
	}
	return nil
}

func invalid(q Quote, reason string) error {
	return apperror.New(apperror.CodeInvalidQuote,
		apperror.WithContext(fmt.Sprintf("%s %s: %s", q.Source, q.Symbol, reason)))
}

// Crossed reports whether the quote's own book is crossed.
func (q Quote) Crossed() bool {
	return q.Bid.GreaterThan(q.Ask)
}

// Key returns the canonical identity of the quoted asset. A resolved chain
// without a contract degrades to the chain's native placeholder.
func (q Quote) Key() asset.Key {
	if q.Chain.IsResolved() && q.Contract == "" {
		return asset.NewKey(q.Base, q.Chain, asset.NativeContract)
	}
	return asset.NewKey(q.Base, q.Chain, q.Contract)
}

// WithIdentity returns a copy of q tagged with chain and contract.
func (q Quote) WithIdentity(chain asset.Chain, contract string) Quote {
	q.Chain = chain
	q.Contract = asset.NormalizeContract(chain, contract)
	return q
}

// ParseSymbol splits an exchange symbol into base and quote. Separated forms
// (BTC-USDT, BTC_USDT, BTC/USDT) are split directly; concatenated forms
// (BTCUSDT) are matched against quoteAssets, longest suffix first.
func ParseSymbol(raw string, quoteAssets []string) (base, quote string, ok bool) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return "", "", false
	}

	if i := strings.IndexAny(s, "-_/"); i >= 0 {
		base, quote = s[:i], s[i+1:]
		if base == "" || quote == "" || !acceptsQuote(quote, quoteAssets) {
			return "", "", false
		}
		return base, quote, true
	}

	candidates := make([]string, 0, len(quoteAssets))
	for _, qa := range quoteAssets {
		candidates = append(candidates, strings.ToUpper(qa))
	}
	sort.Slice(candidates, func(i, j int) bool { return len(candidates[i]) > len(candidates[j]) })

	for _, qa := range candidates {
		if len(s) > len(qa) && strings.HasSuffix(s, qa) {
			return s[:len(s)-len(qa)], qa, true
		}
	}
	return "", "", false
}

func acceptsQuote(quote string, quoteAssets []string) bool {
	if len(quoteAssets) == 0 {
		return true
	}
	for _, qa := range quoteAssets {
		if strings.EqualFold(qa, quote) {
			return true
		}
	}
	return false
}
