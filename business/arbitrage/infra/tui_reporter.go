package infra

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fd1az/arbitrage-scanner/business/arbitrage/app"
	"github.com/fd1az/arbitrage-scanner/pkg/ui"
)

var _ app.Reporter = (*TUIReporter)(nil)

// TUIReporter implements Reporter for the Bubble Tea dashboard. The program
// itself is owned by main; the reporter only sends it messages.
type TUIReporter struct {
	send func(tea.Msg)
}

// NewTUIReporter creates a TUIReporter. A nil send posts to the running ui program.
func NewTUIReporter(send func(tea.Msg)) *TUIReporter {
	if send == nil {
		send = ui.Send
	}
	return &TUIReporter{send: send}
}

// Start marks the detection steps as running.
func (r *TUIReporter) Start(ctx context.Context) error {
	r.send(ui.StartupMsg{Step: "cycle", Status: "connecting"})
	return nil
}

// Report sends one cycle to the dashboard.
func (r *TUIReporter) Report(ctx context.Context, cycle app.Cycle) {
	r.send(ui.SourcesMsg{Sources: cycle.Sources})
	r.send(ui.CycleMsg{
		Number:        cycle.Number,
		Duration:      cycle.Duration,
		Opportunities: cycle.Opportunities,
		Stats:         cycle.Stats,
		Identity:      cycle.Identity,
	})
}

// Stop is a no-op; quitting the program is the dashboard's decision.
func (r *TUIReporter) Stop() error {
	return nil
}
