// Package ui provides the Bubble Tea dashboard for the arbitrage scanner.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fd1az/arbitrage-scanner/business/arbitrage/domain"
	"github.com/fd1az/arbitrage-scanner/pkg/ui/components"
)

// StartupStep represents a step in the startup process.
type StartupStep struct {
	Name   string
	Status string // "pending", "connecting", "connected", "failed", "done"
}

// Phase represents the current UI phase.
type Phase string

const (
	PhaseWelcome   Phase = "welcome"   // Initial welcome screen
	PhaseStartup   Phase = "startup"   // Loading/connecting
	PhaseDashboard Phase = "dashboard" // Main dashboard
)

// WelcomeDuration is how long the welcome screen shows before auto-advancing.
const WelcomeDuration = 2 * time.Second

var stepOrder = []string{"config", "sources", "identity", "cycle"}

// ErrorEntry represents an error with timestamp.
type ErrorEntry struct {
	Message   string
	Timestamp time.Time
}

// Model is the main Bubble Tea model for the TUI.
type Model struct {
	// Components
	opportunities *components.OpportunitiesComponent
	detail        *components.DetailComponent
	status        *components.StatusComponent
	stats         *components.StatsComponent
	help          help.Model
	keys          KeyMap

	// Phase state
	phase        Phase
	welcomeStart time.Time

	// State
	ready      bool
	quitting   bool
	paused     bool // list frozen, cycles still counted
	width      int
	height     int
	lastUpdate time.Time
	errors     []ErrorEntry // last 3
	logs       []string
	current    []domain.Opportunity

	// Startup state
	startupSteps map[string]*StartupStep
	startupTime  time.Time

	activityFeed []string
}

// New creates a new TUI model.
func New() Model {
	now := time.Now()
	return Model{
		opportunities: components.NewOpportunitiesComponent(12),
		detail:        components.NewDetailComponent(),
		status:        components.NewStatusComponent(),
		stats:         components.NewStatsComponent(),
		help:          help.New(),
		keys:          DefaultKeyMap(),
		phase:         PhaseWelcome,
		welcomeStart:  now,
		logs:          make([]string, 0, 5),
		errors:        make([]ErrorEntry, 0, 3),
		activityFeed:  make([]string, 0, 6),
		startupSteps: map[string]*StartupStep{
			"config":   {Name: "Loading configuration", Status: "pending"},
			"sources":  {Name: "Connecting to exchanges", Status: "pending"},
			"identity": {Name: "Preparing asset identity", Status: "pending"},
			"cycle":    {Name: "Running first detection cycle", Status: "pending"},
		},
		startupTime: now,
	}
}

// Init initializes the TUI model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// tickCmd returns a command that sends a tick every 100ms for smooth animations.
func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg {
		return TickMsg{}
	})
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
		// During welcome phase, any other key skips to startup
		if m.phase == PhaseWelcome {
			m = m.leaveWelcome()
			return m, tickCmd()
		}
		switch {
		case key.Matches(msg, m.keys.Clear):
			m.opportunities.Clear()
			m.current = nil
			m.detail.Set(nil)
		case key.Matches(msg, m.keys.Pause):
			m.paused = !m.paused
		case key.Matches(msg, m.keys.Up):
			m.opportunities.ScrollUp()
			m.syncDetail()
		case key.Matches(msg, m.keys.Down):
			m.opportunities.ScrollDown()
			m.syncDetail()
		case key.Matches(msg, m.keys.ClearErrors):
			m.errors = make([]ErrorEntry, 0, 3)
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true

	case TickMsg:
		if m.phase == PhaseWelcome && time.Since(m.welcomeStart) >= WelcomeDuration {
			m = m.leaveWelcome()
		}
		return m, tickCmd()

	case CycleMsg:
		m = m.applyCycle(msg)

	case SourcesMsg:
		rows := make([]components.SourceStatus, 0, len(msg.Sources))
		for _, s := range msg.Sources {
			rows = append(rows, components.SourceStatus{
				Name:       s.Source,
				Online:     s.IsOnline,
				Quotes:     s.QuoteCount,
				Latency:    s.Latency,
				Errors:     s.ErrorCount,
				LastError:  s.LastError,
				LastUpdate: s.LastUpdate,
			})
		}
		m.status.Update(rows)
		if step := m.startupSteps["sources"]; step != nil {
			if m.status.Online() > 0 {
				step.Status = "connected"
			} else {
				step.Status = "failed"
			}
		}
		m.lastUpdate = time.Now()

	case ErrorMsg:
		m = m.addError(msg.Error.Error())
		m.logs = addLog(m.logs, "error", msg.Error.Error())

	case LogMsg:
		m.logs = addLog(m.logs, msg.Level, msg.Message)

	case StartupMsg:
		if step, ok := m.startupSteps[msg.Step]; ok {
			step.Status = msg.Status
		}
		if msg.Status == "failed" && msg.Message != "" {
			m = m.addError(msg.Message)
		}
	}

	return m, nil
}

func (m Model) leaveWelcome() Model {
	m.phase = PhaseStartup
	m.startupTime = time.Now()
	if OnStartModules != nil {
		go OnStartModules()
	}
	return m
}

func (m Model) applyCycle(msg CycleMsg) Model {
	if step := m.startupSteps["cycle"]; step != nil {
		step.Status = "done"
	}
	if m.phase == PhaseStartup {
		m.phase = PhaseDashboard
	}

	rejected := 0
	for _, n := range msg.Stats.Rejected {
		rejected += n
	}
	m.stats.Update(components.Stats{
		Cycles:        msg.Number,
		Quotes:        msg.Stats.Quotes,
		Groups:        msg.Stats.Groups,
		SymbolOnly:    msg.Stats.SymbolOnly,
		Pairs:         msg.Stats.Pairs,
		Opportunities: len(msg.Opportunities),
		Rejected:      rejected,
		BatchRejected: msg.Stats.BatchRejected,
		CycleTimeMs:   msg.Duration.Milliseconds(),
		CacheHitRate:  msg.Identity.HitRate(),
		Unresolved:    msg.Identity.Unresolved,
	})

	activity := fmt.Sprintf("Cycle #%d: %d opportunities", msg.Number, len(msg.Opportunities))
	if len(msg.Opportunities) > 0 {
		best := msg.Opportunities[0]
		activity += fmt.Sprintf(" (best %s %s%%)", best.Symbol, best.ProfitPct.StringFixed(2))
	}
	m.activityFeed = addActivity(m.activityFeed, activity)

	if msg.Stats.BatchRejected {
		m = m.addError(fmt.Sprintf("cycle #%d discarded: synthetic prices from %s",
			msg.Number, strings.Join(msg.Stats.FlaggedSources, ", ")))
	}

	if !m.paused {
		m.current = msg.Opportunities
		m.opportunities.SetRows(toRows(msg.Opportunities))
		m.syncDetail()
	}
	m.lastUpdate = time.Now()
	return m
}

func (m Model) addError(message string) Model {
	m.errors = append(m.errors, ErrorEntry{Message: message, Timestamp: time.Now()})
	if len(m.errors) > 3 {
		m.errors = m.errors[len(m.errors)-3:]
	}
	return m
}

func (m Model) syncDetail() {
	i := m.opportunities.Selected()
	if i < 0 || i >= len(m.current) {
		m.detail.Set(nil)
		return
	}
	m.detail.Set(toBreakdown(m.current[i]))
}

func toRows(opps []domain.Opportunity) []components.OpportunityRow {
	rows := make([]components.OpportunityRow, 0, len(opps))
	for _, o := range opps {
		rows = append(rows, components.OpportunityRow{
			Symbol:        o.Symbol,
			Chain:         o.Blockchain.String(),
			Route:         o.BuyExchange + "→" + o.SellExchange,
			BuyPrice:      o.BuyPrice,
			SellPrice:     o.SellPrice,
			ProfitPct:     o.ProfitPct,
			Volume:        o.Volume,
			Transfer:      transferLabel(o),
			LowConfidence: o.Confidence == domain.MatchSymbolOnly,
		})
	}
	return rows
}

func transferLabel(o domain.Opportunity) string {
	if len(o.Transfer.CommonNetworks) > 0 {
		names := make([]string, 0, len(o.Transfer.CommonNetworks))
		for _, c := range o.Transfer.CommonNetworks {
			names = append(names, c.String())
		}
		return strings.Join(names, ",")
	}
	if !o.Transfer.BuyAvailable.Known() || !o.Transfer.SellAvailable.Known() {
		return "?"
	}
	return "ok"
}

func toBreakdown(o domain.Opportunity) *components.Breakdown {
	networks := make([]string, 0, len(o.Transfer.CommonNetworks))
	for _, c := range o.Transfer.CommonNetworks {
		networks = append(networks, c.String())
	}
	return &components.Breakdown{
		Symbol:       o.Symbol,
		Contract:     o.Contract,
		Route:        o.Route(),
		BuyPrice:     o.BuyPrice,
		SellPrice:    o.SellPrice,
		BuyFeePct:    o.Fees.BuyFeePct,
		SellFeePct:   o.Fees.SellFeePct,
		TransferCost: o.Fees.TransferCost,
		NetBuy:       o.NetBuyPrice,
		NetSell:      o.NetSellPrice,
		Profit:       o.ProfitAmount,
		ProfitPct:    o.ProfitPct,
		BuySide:      string(o.Transfer.BuyAvailable),
		SellSide:     string(o.Transfer.SellAvailable),
		Networks:     networks,
		Confidence:   string(o.Confidence),
	}
}

// addLog adds a log message and returns the updated slice (keeps last 5).
func addLog(logs []string, level, message string) []string {
	timestamp := time.Now().Format("15:04:05")
	logs = append(logs, fmt.Sprintf("[%s] %s: %s", timestamp, level, message))
	if len(logs) > 5 {
		logs = logs[len(logs)-5:]
	}
	return logs
}

// addActivity adds an activity message and returns the updated slice (keeps last 6).
func addActivity(feed []string, message string) []string {
	timestamp := time.Now().Format("15:04:05")
	feed = append(feed, fmt.Sprintf("[%s] %s", timestamp, message))
	if len(feed) > 6 {
		feed = feed[len(feed)-6:]
	}
	return feed
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return "\n  Goodbye!\n\n"
	}

	switch m.phase {
	case PhaseWelcome:
		return m.renderWelcomeScreen()
	case PhaseStartup:
		return m.renderStartupScreen()
	}

	var b strings.Builder

	b.WriteString(bannerStyle.Render(" ⇄ Cross-Exchange Arbitrage Scanner "))
	b.WriteString("\n\n")
	b.WriteString(m.renderStatusBar())
	b.WriteString("\n\n")

	// Left: exchanges + spread detail. Right: activity + opportunities.
	leftCol := m.status.View() + "\n\n" + m.detail.View()
	rightCol := m.renderActivityFeed() + "\n\n" + m.opportunities.View()

	if m.width > 120 {
		left := panelStyle.Width(m.width/3 - 2).Render(leftCol)
		right := panelStyle.Width(m.width*2/3 - 2).Render(rightCol)
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right))
	} else {
		width := max(m.width-4, 40)
		b.WriteString(panelStyle.Width(width).Render(leftCol))
		b.WriteString("\n")
		b.WriteString(panelStyle.Width(width).Render(rightCol))
	}
	b.WriteString("\n")
	b.WriteString(m.stats.View())
	b.WriteString("\n\n")

	if len(m.errors) > 0 {
		b.WriteString(errorStyle.Bold(true).Render("ERRORS"))
		b.WriteString(mutedStyle.Render(" (e: clear)"))
		b.WriteString("\n")
		for _, err := range m.errors {
			ago := time.Since(err.Timestamp).Round(time.Second)
			b.WriteString(errorStyle.Render(fmt.Sprintf("  • %s ", err.Message)))
			b.WriteString(mutedStyle.Render(fmt.Sprintf("(%s ago)", ago)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if m.paused {
		b.WriteString(warnStyle.Render("⏸ FROZEN"))
		b.WriteString(" • ")
	}
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// renderActivityFeed renders the recent activity feed.
func (m Model) renderActivityFeed() string {
	var sb strings.Builder
	sb.WriteString(sectionStyle.Render("LIVE ACTIVITY"))
	sb.WriteString("\n\n")

	if len(m.activityFeed) == 0 {
		sb.WriteString(mutedStyle.Render("  Waiting for first cycle..."))
		return sb.String()
	}
	for _, activity := range m.activityFeed {
		sb.WriteString(mutedStyle.Render("  " + activity))
		sb.WriteString("\n")
	}
	return sb.String()
}

// renderWelcomeScreen renders the animated welcome screen.
func (m Model) renderWelcomeScreen() string {
	elapsed := time.Since(m.welcomeStart)
	dots := strings.Repeat(".", int(elapsed.Milliseconds()/300)%4)

	logo := `
    █████╗ ██████╗ ██████╗
   ██╔══██╗██╔══██╗██╔══██╗
   ███████║██████╔╝██████╔╝
   ██╔══██║██╔══██╗██╔══██╗
   ██║  ██║██║  ██║██████╔╝
   ╚═╝  ╚═╝╚═╝  ╚═╝╚═════╝
`
	var sb strings.Builder
	sb.WriteString("\n\n\n\n")
	sb.WriteString(sectionStyle.Render(logo))
	sb.WriteString("\n")
	sb.WriteString(mutedStyle.Render("     C R O S S - E X C H A N G E   S C A N N E R"))
	sb.WriteString("\n\n\n")
	sb.WriteString(warnStyle.Render("        Same asset, different price"))
	sb.WriteString("\n\n\n")
	sb.WriteString(onlineStyle.Render(fmt.Sprintf("            Initializing%s", dots)))
	sb.WriteString("\n\n")
	sb.WriteString(mutedStyle.Render("      Press any key to skip, or wait..."))
	sb.WriteString("\n")
	return sb.String()
}

// renderStartupScreen renders the loading/startup screen.
func (m Model) renderStartupScreen() string {
	var sb strings.Builder
	sb.WriteString("\n\n")
	sb.WriteString(sectionStyle.Render("  ⇄ Cross-Exchange Arbitrage Scanner"))
	sb.WriteString("\n\n")
	sb.WriteString(highlightStyle.Render("  Starting up..."))
	sb.WriteString("\n\n")

	for _, k := range stepOrder {
		step, ok := m.startupSteps[k]
		if !ok {
			continue
		}

		var icon, statusText string
		var style lipgloss.Style

		switch step.Status {
		case "connected", "done":
			icon, statusText, style = "✓", "Ready", onlineStyle
		case "connecting":
			spinners := []string{"◐", "◓", "◑", "◒"}
			icon = spinners[int(time.Since(m.startupTime).Milliseconds()/200)%len(spinners)]
			statusText, style = "Working...", pendingStyle
		case "failed":
			icon, statusText, style = "✗", "Failed", offlineStyle
		default:
			icon, statusText, style = "○", "Pending", mutedStyle
		}

		sb.WriteString(fmt.Sprintf("  %s %s %s\n",
			style.Render(icon),
			mutedStyle.Render(step.Name),
			style.Render(statusText),
		))
	}

	sb.WriteString("\n")
	elapsed := time.Since(m.startupTime).Round(time.Second)
	sb.WriteString(mutedStyle.Render(fmt.Sprintf("  Elapsed: %s", elapsed)))
	sb.WriteString("\n")
	return sb.String()
}

func (m Model) renderStatusBar() string {
	var parts []string

	stats := m.stats.Stats()
	parts = append(parts, fmt.Sprintf("Cycle: #%d", stats.Cycles))

	online := fmt.Sprintf("Exchanges: %d/%d", m.status.Online(), m.status.Len())
	if m.status.Len() > 0 && m.status.Online() == 0 {
		parts = append(parts, offlineStyle.Render(online))
	} else {
		parts = append(parts, onlineStyle.Render(online))
	}

	parts = append(parts, fmt.Sprintf("Opportunities: %d", m.opportunities.Len()))

	if !m.lastUpdate.IsZero() {
		ago := time.Since(m.lastUpdate).Round(time.Second)
		parts = append(parts, mutedStyle.Render(fmt.Sprintf("Updated: %s ago", ago)))
	}

	return strings.Join(parts, "  │  ")
}

// Program holds the Bubble Tea program instance for external access.
var Program *tea.Program

// OnStartModules is called when the welcome screen completes and modules should start.
// This is set by main.go to signal when to begin loading modules.
var OnStartModules func()

// Send sends a message to the running program.
func Send(msg tea.Msg) {
	if Program != nil {
		Program.Send(msg)
	}
	if _, ok := msg.(StartModulesMsg); ok && OnStartModules != nil {
		OnStartModules()
	}
}
