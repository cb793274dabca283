package ui

import (
	"time"

	"github.com/fd1az/arbitrage-scanner/business/arbitrage/domain"
	identityDomain "github.com/fd1az/arbitrage-scanner/business/identity/domain"
	marketDomain "github.com/fd1az/arbitrage-scanner/business/market/domain"
)

// Message types for TUI updates

// CycleMsg is sent when a detection cycle completes.
type CycleMsg struct {
	Number        int
	Duration      time.Duration
	Opportunities []domain.Opportunity
	Stats         domain.CalcStats
	Identity      identityDomain.Stats
}

// SourcesMsg is sent with the status of every exchange after a refresh.
type SourcesMsg struct {
	Sources []marketDomain.ExchangeStatus
}

// ErrorMsg is sent when an error occurs.
type ErrorMsg struct {
	Error error
}

// TickMsg is sent periodically for UI updates.
type TickMsg struct{}

// StartModulesMsg signals that modules should start loading.
type StartModulesMsg struct{}

// LogMsg is sent to display a log message in the UI.
type LogMsg struct {
	Level   string // "info", "warn", "error"
	Message string
}

// StartupMsg is sent during application startup to show progress.
type StartupMsg struct {
	Step    string // config | sources | identity | cycle
	Status  string // "connecting", "connected", "failed", "done"
	Message string
}
