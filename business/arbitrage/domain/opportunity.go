package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	transferDomain "github.com/fd1az/arbitrage-scanner/business/transfer/domain"
	"github.com/fd1az/arbitrage-scanner/internal/asset"
)

// MatchConfidence says how sure the engine is that both legs are the same asset.
type MatchConfidence string

const (
	// MatchExact means both quotes resolved to the same chain and contract.
	MatchExact MatchConfidence = "high"

	// MatchSymbolOnly means neither quote carried chain data; only the ticker matched.
	MatchSymbolOnly MatchConfidence = "low"
)

// Opportunity is one profitable buy/sell pair from a calculation cycle.
type Opportunity struct {
	ID           string                     `json:"id"`
	Symbol       string                     `json:"symbol"`
	Base         string                     `json:"base"`
	QuoteAsset   string                     `json:"quote_asset"`
	BuyExchange  string                     `json:"buy_exchange"`
	SellExchange string                     `json:"sell_exchange"`
	BuyPrice     decimal.Decimal            `json:"buy_price"`  // ask on the buy exchange
	SellPrice    decimal.Decimal            `json:"sell_price"` // bid on the sell exchange
	NetBuyPrice  decimal.Decimal            `json:"net_buy_price"`
	NetSellPrice decimal.Decimal            `json:"net_sell_price"`
	ProfitPct    decimal.Decimal            `json:"profit_pct"`
	ProfitAmount decimal.Decimal            `json:"profit_amount"` // per unit, quote currency
	Volume       decimal.Decimal            `json:"volume"`        // min of both legs
	Blockchain   asset.Chain                `json:"blockchain"`
	Contract     string                     `json:"contract,omitempty"`
	Fees         Fees                       `json:"fees"`
	Transfer     transferDomain.CheckResult `json:"transfer_availability"`
	Confidence   MatchConfidence            `json:"match_confidence"`
	DetectedAt   time.Time                  `json:"detected_at"`
}

// NewOpportunity stamps a fresh ID on a spread between two legs.
func NewOpportunity(buy, sell Leg, spread Spread, fees Fees, transfer transferDomain.CheckResult, confidence MatchConfidence, now time.Time) Opportunity {
	key := buy.Key
	return Opportunity{
		ID:           uuid.NewString(),
		Symbol:       buy.Symbol,
		Base:         key.Base,
		QuoteAsset:   buy.QuoteAsset,
		BuyExchange:  buy.Source,
		SellExchange: sell.Source,
		BuyPrice:     spread.GrossBuy,
		SellPrice:    spread.GrossSell,
		NetBuyPrice:  spread.NetBuy,
		NetSellPrice: spread.NetSell,
		ProfitPct:    spread.ProfitPct,
		ProfitAmount: spread.Profit,
		Volume:       decimal.Min(buy.Volume, sell.Volume),
		Blockchain:   key.Chain,
		Contract:     key.Contract,
		Fees:         fees,
		Transfer:     transfer,
		Confidence:   confidence,
		DetectedAt:   now,
	}
}

// Route renders "buy -> sell".
func (o Opportunity) Route() string {
	return o.BuyExchange + " -> " + o.SellExchange
}

// Leg is one side of a candidate pair: a quote reduced to what the
// calculator needs.
type Leg struct {
	Source     string
	Symbol     string
	QuoteAsset string
	Key        asset.Key
	Bid        decimal.Decimal
	Ask        decimal.Decimal
	Volume     decimal.Decimal
}
