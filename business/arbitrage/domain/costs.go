// Package domain contains the core domain types for the arbitrage context.
package domain

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fd1az/arbitrage-scanner/internal/apperror"
)

var hundred = decimal.NewFromInt(100)

// NetBuyPrice is what one unit costs after the buy-side fee: ask × (1 + fee/100).
func NetBuyPrice(ask, feePct decimal.Decimal) decimal.Decimal {
	return ask.Mul(decimal.NewFromInt(1).Add(feePct.Div(hundred)))
}

// NetSellPrice is what one unit yields after the sell-side fee and the cost
// of moving it between exchanges: bid × (1 − fee/100) − transferCost.
func NetSellPrice(bid, feePct, transferCost decimal.Decimal) decimal.Decimal {
	return bid.Mul(decimal.NewFromInt(1).Sub(feePct.Div(hundred))).Sub(transferCost)
}

// Spread is the net result of buying at one exchange's ask and selling at
// another's bid.
type Spread struct {
	GrossBuy  decimal.Decimal // ask
	GrossSell decimal.Decimal // bid
	NetBuy    decimal.Decimal
	NetSell   decimal.Decimal
	Profit    decimal.Decimal // per unit, quote currency
	ProfitPct decimal.Decimal // relative to NetBuy, e.g. 0.69 for 0.69%
}

// NewSpread applies fees and transfer cost to an ask/bid pair.
func NewSpread(ask, bid decimal.Decimal, fees Fees) Spread {
	s := Spread{
		GrossBuy:  ask,
		GrossSell: bid,
		NetBuy:    NetBuyPrice(ask, fees.BuyFeePct),
		NetSell:   NetSellPrice(bid, fees.SellFeePct, fees.TransferCost),
	}
	s.Profit = s.NetSell.Sub(s.NetBuy)
	if s.NetBuy.IsPositive() {
		s.ProfitPct = s.Profit.Div(s.NetBuy).Mul(hundred)
	}
	return s
}

// HasGrossSpread reports whether the bid exceeds the ask before costs.
func (s Spread) HasGrossSpread() bool {
	return s.GrossBuy.LessThan(s.GrossSell)
}

// IsProfitable reports whether net sell strictly exceeds net buy.
func (s Spread) IsProfitable() bool {
	return s.Profit.IsPositive()
}

// Fees are the costs applied to one buy/sell pair.
type Fees struct {
	BuyFeePct    decimal.Decimal `json:"buy_fee_pct"`
	SellFeePct   decimal.Decimal `json:"sell_fee_pct"`
	TransferCost decimal.Decimal `json:"transfer_cost"` // absolute, quote currency per unit
}

// Thresholds bound which spreads become opportunities. All bounds are inclusive.
type Thresholds struct {
	MinProfitPct decimal.Decimal
	MaxProfitPct decimal.Decimal
	MinVolume    decimal.Decimal
}

// Validate rejects thresholds that can never accept anything.
func (t Thresholds) Validate() error {
	switch {
	case t.MinProfitPct.IsNegative():
		return thresholdError("min profit must be >= 0, got %s", t.MinProfitPct)
	case !t.MaxProfitPct.GreaterThan(t.MinProfitPct):
		return thresholdError("max profit %s must exceed min profit %s", t.MaxProfitPct, t.MinProfitPct)
	case t.MinVolume.IsNegative():
		return thresholdError("min volume must be >= 0, got %s", t.MinVolume)
	}
	return nil
}

// AcceptsProfit reports whether pct lies within [MinProfitPct, MaxProfitPct].
func (t Thresholds) AcceptsProfit(pct decimal.Decimal) bool {
	return pct.GreaterThanOrEqual(t.MinProfitPct) && pct.LessThanOrEqual(t.MaxProfitPct)
}

// AcceptsVolume reports whether volume reaches MinVolume.
func (t Thresholds) AcceptsVolume(volume decimal.Decimal) bool {
	return volume.GreaterThanOrEqual(t.MinVolume)
}

func thresholdError(format string, args ...any) error {
	return apperror.New(apperror.CodeConfigurationError,
		apperror.WithContext(fmt.Sprintf(format, args...)))
}
