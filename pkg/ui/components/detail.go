package components

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Breakdown is the cost decomposition of one opportunity. Values are
// computed by the calculator; the component only displays them.
type Breakdown struct {
	Symbol       string
	Contract     string
	Route        string
	BuyPrice     decimal.Decimal
	SellPrice    decimal.Decimal
	BuyFeePct    decimal.Decimal
	SellFeePct   decimal.Decimal
	TransferCost decimal.Decimal
	NetBuy       decimal.Decimal
	NetSell      decimal.Decimal
	Profit       decimal.Decimal
	ProfitPct    decimal.Decimal
	BuySide      string // withdraw availability on the buy exchange
	SellSide     string // deposit availability on the sell exchange
	Networks     []string
	Confidence   string
}

// DetailComponent renders the breakdown of the selected opportunity.
type DetailComponent struct {
	breakdown *Breakdown
}

// NewDetailComponent creates an empty detail panel.
func NewDetailComponent() *DetailComponent {
	return &DetailComponent{}
}

// Set shows b; nil clears the panel.
func (d *DetailComponent) Set(b *Breakdown) {
	d.breakdown = b
}

// View renders the detail panel.
func (d *DetailComponent) View() string {
	var sb strings.Builder
	sb.WriteString(headerStyle.Render("SPREAD DETAIL"))
	sb.WriteString("\n\n")

	b := d.breakdown
	if b == nil {
		sb.WriteString(dimStyle.Render("  Select an opportunity..."))
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("  %s  %s\n", b.Symbol, dimStyle.Render(b.Route)))
	if b.Contract != "" {
		sb.WriteString(dimStyle.Render("  "+b.Contract) + "\n")
	}
	sb.WriteString(dimStyle.Render("  "+strings.Repeat("─", 40)) + "\n")

	sb.WriteString(fmt.Sprintf("  %-16s %s\n", "Buy (ask):", b.BuyPrice))
	sb.WriteString(fmt.Sprintf("  %-16s %s\n", "Buy fee:", lossStyle.Render(b.BuyFeePct.String()+"%")))
	sb.WriteString(fmt.Sprintf("  %-16s %s\n", "Net buy:", b.NetBuy.StringFixed(6)))
	sb.WriteString(fmt.Sprintf("  %-16s %s\n", "Sell (bid):", b.SellPrice))
	sb.WriteString(fmt.Sprintf("  %-16s %s\n", "Sell fee:", lossStyle.Render(b.SellFeePct.String()+"%")))
	sb.WriteString(fmt.Sprintf("  %-16s %s\n", "Transfer cost:", lossStyle.Render("-"+b.TransferCost.String())))
	sb.WriteString(fmt.Sprintf("  %-16s %s\n", "Net sell:", b.NetSell.StringFixed(6)))
	sb.WriteString(fmt.Sprintf("  %-16s %s\n", "Profit / unit:",
		gainStyle.Render(fmt.Sprintf("%s (%s%%)", b.Profit.StringFixed(6), b.ProfitPct.StringFixed(3)))))

	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  %-16s %s → %s\n", "Transfer:", availability(b.BuySide), availability(b.SellSide)))
	if len(b.Networks) > 0 {
		sb.WriteString(fmt.Sprintf("  %-16s %s\n", "Networks:", strings.Join(b.Networks, ", ")))
	}
	if b.Confidence == "low" {
		sb.WriteString(cautionStyle.Render("  Matched by ticker only: verify the asset before trading"))
		sb.WriteString("\n")
	}
	return sb.String()
}

func availability(s string) string {
	switch s {
	case "available":
		return gainStyle.Render("✓")
	case "unavailable":
		return lossStyle.Render("✗")
	default:
		return dimStyle.Render("?")
	}
}
