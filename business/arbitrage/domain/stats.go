package domain

// RejectReason names the filter that dropped a candidate pair.
type RejectReason string

const (
	RejectInvalidQuote   RejectReason = "invalid_quote"
	RejectNoGrossSpread  RejectReason = "no_gross_spread"
	RejectUnprofitable   RejectReason = "unprofitable"
	RejectLowVolume      RejectReason = "low_volume"
	RejectBelowMinProfit RejectReason = "below_min_profit"
	RejectAboveMaxProfit RejectReason = "above_max_profit"
	RejectTransfer       RejectReason = "transfer_unavailable"
)

// CalcStats summarizes one calculation cycle.
type CalcStats struct {
	Quotes        int
	Crossed       int // valid quotes whose bid sits above their own ask
	Groups        int // asset groups quoted by at least two sources
	SymbolOnly    int // of which matched by ticker only
	Pairs         int // ordered cross-source pairs considered
	TransferCalls int
	Opportunities int
	Rejected      map[RejectReason]int

	// BatchRejected is set when the synthetic price guard discarded the cycle.
	BatchRejected  bool
	FlaggedSources []string
}

// NewCalcStats returns empty stats ready for counting.
func NewCalcStats() CalcStats {
	return CalcStats{Rejected: make(map[RejectReason]int)}
}

// Reject counts one rejection.
func (s *CalcStats) Reject(reason RejectReason) {
	s.Rejected[reason]++
}
