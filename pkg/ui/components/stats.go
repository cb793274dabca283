package components

import "fmt"

// Stats holds statistics for display.
type Stats struct {
	Cycles        int
	Quotes        int
	Groups        int
	SymbolOnly    int
	Pairs         int
	Opportunities int
	Rejected      int
	BatchRejected bool
	CycleTimeMs   int64
	CacheHitRate  float64
	Unresolved    int
}

// StatsComponent renders statistics.
type StatsComponent struct {
	stats Stats
}

// NewStatsComponent creates a new stats component.
func NewStatsComponent() *StatsComponent {
	return &StatsComponent{}
}

// Update updates the statistics.
func (s *StatsComponent) Update(stats Stats) {
	s.stats = stats
}

// Stats returns the statistics currently displayed.
func (s *StatsComponent) Stats() Stats {
	return s.stats
}

// View renders the stats component.
func (s *StatsComponent) View() string {
	batch := valueStyle.Render("ok")
	if s.stats.BatchRejected {
		batch = alertStyle.Render("DISCARDED (synthetic prices)")
	}

	return dimStyle.Render("STATS") + "\n" +
		fmt.Sprintf("Cycle: %s  │  Quotes: %s  │  Assets compared: %s (%s by ticker)  │  Pairs: %s\n",
			valueStyle.Render(fmt.Sprintf("%d", s.stats.Cycles)),
			valueStyle.Render(fmt.Sprintf("%d", s.stats.Quotes)),
			valueStyle.Render(fmt.Sprintf("%d", s.stats.Groups)),
			valueStyle.Render(fmt.Sprintf("%d", s.stats.SymbolOnly)),
			valueStyle.Render(fmt.Sprintf("%d", s.stats.Pairs)),
		) +
		fmt.Sprintf("Opportunities: %s  │  Rejected: %s  │  Batch: %s  │  Cycle time: %s  │  Lookup hit rate: %s  │  Unresolved: %s",
			valueStyle.Render(fmt.Sprintf("%d", s.stats.Opportunities)),
			valueStyle.Render(fmt.Sprintf("%d", s.stats.Rejected)),
			batch,
			valueStyle.Render(fmt.Sprintf("%dms", s.stats.CycleTimeMs)),
			valueStyle.Render(fmt.Sprintf("%.1f%%", s.stats.CacheHitRate)),
			valueStyle.Render(fmt.Sprintf("%d", s.stats.Unresolved)),
		)
}
