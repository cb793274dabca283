// Package binance implements the SourceAdapter for Binance and Binance-compatible APIs.
package binance

// Ticker24hr is one row of GET /api/v3/ticker/24hr.
type Ticker24hr struct {
	Symbol      string `json:"symbol"`
	BidPrice    string `json:"bidPrice"`
	BidQty      string `json:"bidQty"`
	AskPrice    string `json:"askPrice"`
	AskQty      string `json:"askQty"`
	LastPrice   string `json:"lastPrice"`
	Volume      string `json:"volume"`      // base asset
	QuoteVolume string `json:"quoteVolume"` // quote asset
	CloseTime   int64  `json:"closeTime"`
}

// StreamTicker is one element of the !ticker@arr stream payload.
type StreamTicker struct {
	EventType string `json:"e"` // "24hrTicker"
	EventTime int64  `json:"E"` // ms
	Symbol    string `json:"s"`
	LastPrice string `json:"c"`
	BidPrice  string `json:"b"`
	BidQty    string `json:"B"`
	AskPrice  string `json:"a"`
	AskQty    string `json:"A"`
	Volume    string `json:"v"` // base asset
}

