// Package components provides reusable TUI components.
package components

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// OpportunityRow represents an opportunity in the list.
type OpportunityRow struct {
	Symbol        string
	Chain         string
	Route         string
	BuyPrice      decimal.Decimal
	SellPrice     decimal.Decimal
	ProfitPct     decimal.Decimal
	Volume        decimal.Decimal
	Transfer      string // e.g. "ok", "?", "eth,bsc"
	LowConfidence bool
}

// OpportunitiesComponent renders the ranked opportunities of the latest cycle.
type OpportunitiesComponent struct {
	rows     []OpportunityRow
	visible  int
	offset   int
	selected int
}

// NewOpportunitiesComponent creates a component showing visible rows at a time.
func NewOpportunitiesComponent(visible int) *OpportunitiesComponent {
	if visible <= 0 {
		visible = 10
	}
	return &OpportunitiesComponent{visible: visible}
}

// SetRows replaces the list with the latest cycle's results.
func (o *OpportunitiesComponent) SetRows(rows []OpportunityRow) {
	o.rows = rows
	if o.selected >= len(rows) {
		o.selected = max(len(rows)-1, 0)
	}
	o.clampOffset()
}

// Len returns the number of rows held.
func (o *OpportunitiesComponent) Len() int {
	return len(o.rows)
}

// Selected returns the highlighted row index, or -1 when empty.
func (o *OpportunitiesComponent) Selected() int {
	if len(o.rows) == 0 {
		return -1
	}
	return o.selected
}

// Clear clears all opportunities.
func (o *OpportunitiesComponent) Clear() {
	o.rows = nil
	o.offset = 0
	o.selected = 0
}

// ScrollUp moves the selection one row up.
func (o *OpportunitiesComponent) ScrollUp() {
	if o.selected > 0 {
		o.selected--
	}
	o.clampOffset()
}

// ScrollDown moves the selection one row down.
func (o *OpportunitiesComponent) ScrollDown() {
	if o.selected < len(o.rows)-1 {
		o.selected++
	}
	o.clampOffset()
}

func (o *OpportunitiesComponent) clampOffset() {
	if o.selected < o.offset {
		o.offset = o.selected
	}
	if o.selected >= o.offset+o.visible {
		o.offset = o.selected - o.visible + 1
	}
}

// View renders the opportunities component.
func (o *OpportunitiesComponent) View() string {
	var sb strings.Builder
	sb.WriteString(headerStyle.Render(fmt.Sprintf("OPPORTUNITIES (%d)", len(o.rows))))
	sb.WriteString("\n\n")

	if len(o.rows) == 0 {
		sb.WriteString(dimStyle.Render("  No opportunities this cycle..."))
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("  %-12s %-10s %-18s %12s %12s %8s %10s %s\n",
		"Symbol", "Chain", "Route", "Buy", "Sell", "Profit", "Volume", "Transfer"))
	sb.WriteString(dimStyle.Render("  "+strings.Repeat("─", 96)) + "\n")

	end := min(o.offset+o.visible, len(o.rows))
	for i := o.offset; i < end; i++ {
		row := o.rows[i]
		symbol := row.Symbol
		if row.LowConfidence {
			symbol += "*"
		}
		line := fmt.Sprintf("%-12s %-10s %-18s %12s %12s %s %10s %s",
			symbol,
			truncate(row.Chain, 10),
			truncate(row.Route, 18),
			row.BuyPrice.String(),
			row.SellPrice.String(),
			gainStyle.Render(fmt.Sprintf("%7.2f%%", row.ProfitPct.InexactFloat64())),
			row.Volume.StringFixed(2),
			row.Transfer,
		)
		if row.LowConfidence {
			line = cautionStyle.Render(line)
		}
		if i == o.selected {
			sb.WriteString(selectedStyle.Render("▸ " + line))
		} else {
			sb.WriteString("  " + line)
		}
		sb.WriteString("\n")
	}

	if len(o.rows) > o.visible {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("  %d-%d of %d", o.offset+1, end, len(o.rows))))
		sb.WriteString("\n")
	}
	sb.WriteString(dimStyle.Render("  * matched by ticker only"))
	return sb.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
