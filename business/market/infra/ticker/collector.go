package ticker

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/arbitrage-scanner/business/market/domain"
)

// Collector turns raw ticker rows into validated quotes. Rows that fail
// parsing or validation are dropped one at a time.
type Collector struct {
	source      string
	quoteAssets []string
	now         time.Time

	quotes  []domain.Quote
	dropped int
	skipped int
}

// NewCollector creates a collector stamping quotes with now.
func NewCollector(source string, quoteAssets []string, now time.Time, sizeHint int) *Collector {
	if len(quoteAssets) == 0 {
		quoteAssets = domain.DefaultQuoteAssets
	}
	return &Collector{
		source:      source,
		quoteAssets: quoteAssets,
		now:         now,
		quotes:      make([]domain.Quote, 0, sizeHint),
	}
}

// Add parses one row. Symbols outside the configured quote assets are
// skipped; malformed prices are dropped.
func (c *Collector) Add(symbol, bid, ask, volume string) {
	base, quote, ok := domain.ParseSymbol(symbol, c.quoteAssets)
	if !ok {
		c.skipped++
		return
	}

	b, err := parseDecimal(bid)
	if err != nil {
		c.dropped++
		return
	}
	a, err := parseDecimal(ask)
	if err != nil {
		c.dropped++
		return
	}
	v := decimal.Zero
	if strings.TrimSpace(volume) != "" {
		if v, err = parseDecimal(volume); err != nil {
			c.dropped++
			return
		}
	}

	q := domain.NewQuote(c.source, base, quote, b, a, v, c.now)
	if err := q.Validate(); err != nil {
		c.dropped++
		return
	}
	c.quotes = append(c.quotes, q)
}

// Quotes returns the accepted quotes.
func (c *Collector) Quotes() []domain.Quote {
	return c.quotes
}

// Dropped counts malformed rows.
func (c *Collector) Dropped() int { return c.dropped }

// Skipped counts rows outside the quote assets.
func (c *Collector) Skipped() int { return c.skipped }

func parseDecimal(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(s))
}
