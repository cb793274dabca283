package components

import "github.com/charmbracelet/lipgloss"

// Palette shared by the dashboard chrome and its panels.
var (
	Accent  = lipgloss.Color("#7C3AED")
	Gain    = lipgloss.Color("#10B981")
	Loss    = lipgloss.Color("#EF4444")
	Caution = lipgloss.Color("#F59E0B")
	Dim     = lipgloss.Color("#6B7280")
	Frame   = lipgloss.Color("#374151")
	Bright  = lipgloss.Color("#FFFFFF")
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(Accent)
	gainStyle     = lipgloss.NewStyle().Foreground(Gain)
	lossStyle     = lipgloss.NewStyle().Foreground(Loss)
	alertStyle    = lossStyle.Bold(true)
	cautionStyle  = lipgloss.NewStyle().Foreground(Caution)
	dimStyle      = lipgloss.NewStyle().Foreground(Dim)
	valueStyle    = lipgloss.NewStyle().Foreground(Bright).Bold(true)
	selectedStyle = lipgloss.NewStyle().Bold(true)
)
