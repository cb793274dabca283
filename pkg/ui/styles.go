package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/fd1az/arbitrage-scanner/pkg/ui/components"
)

// Dashboard chrome. Panel content is styled in components.
var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(components.Frame).
			Padding(0, 1)

	bannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(components.Bright).
			Background(components.Accent).
			Padding(0, 2)

	sectionStyle   = lipgloss.NewStyle().Bold(true).Foreground(components.Accent)
	highlightStyle = lipgloss.NewStyle().Bold(true).Foreground(components.Bright)
	onlineStyle    = lipgloss.NewStyle().Bold(true).Foreground(components.Gain)
	offlineStyle   = lipgloss.NewStyle().Bold(true).Foreground(components.Loss)
	warnStyle      = lipgloss.NewStyle().Bold(true).Foreground(components.Caution)
	pendingStyle   = lipgloss.NewStyle().Foreground(components.Caution)
	errorStyle     = lipgloss.NewStyle().Foreground(components.Loss)
	mutedStyle     = lipgloss.NewStyle().Foreground(components.Dim)
	helpStyle      = mutedStyle.Padding(0, 1)
)
