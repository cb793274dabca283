package components

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// SourceStatus is one exchange's liveness as last reported by the quote cache.
type SourceStatus struct {
	Name       string
	Online     bool
	Quotes     int
	Latency    time.Duration
	Errors     int
	LastError  string
	LastUpdate time.Time
}

// StatusComponent renders exchange status.
type StatusComponent struct {
	sources []SourceStatus
}

// NewStatusComponent creates a new status component.
func NewStatusComponent() *StatusComponent {
	return &StatusComponent{}
}

// Update replaces the status of every source.
func (s *StatusComponent) Update(sources []SourceStatus) {
	s.sources = append([]SourceStatus(nil), sources...)
	sort.Slice(s.sources, func(i, j int) bool { return s.sources[i].Name < s.sources[j].Name })
}

// Online returns how many sources are online.
func (s *StatusComponent) Online() int {
	n := 0
	for _, src := range s.sources {
		if src.Online {
			n++
		}
	}
	return n
}

// Len returns the number of tracked sources.
func (s *StatusComponent) Len() int {
	return len(s.sources)
}

// View renders the status component.
func (s *StatusComponent) View() string {
	var sb strings.Builder
	sb.WriteString(headerStyle.Render(fmt.Sprintf("EXCHANGES (%d/%d online)", s.Online(), len(s.sources))))
	sb.WriteString("\n\n")

	if len(s.sources) == 0 {
		sb.WriteString(dimStyle.Render("  Waiting for first refresh..."))
		return sb.String()
	}

	for _, src := range s.sources {
		if src.Online {
			sb.WriteString(gainStyle.Render("  ● " + fmt.Sprintf("%-9s", src.Name)))
			sb.WriteString(fmt.Sprintf(" %5d quotes %6s", src.Quotes, src.Latency.Round(time.Millisecond)))
		} else {
			sb.WriteString(lossStyle.Render("  ○ " + fmt.Sprintf("%-9s", src.Name)))
			sb.WriteString(fmt.Sprintf(" %5d quotes", src.Quotes))
			if src.Errors > 0 {
				sb.WriteString(lossStyle.Render(fmt.Sprintf("  %d errors", src.Errors)))
			}
		}
		sb.WriteString("\n")
		if !src.Online && src.LastError != "" {
			sb.WriteString(dimStyle.Render("    " + truncate(src.LastError, 48)))
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
