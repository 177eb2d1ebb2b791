package panels

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mars1523/marsctl/internal/store"
	"github.com/mars1523/marsctl/internal/tui/components"
)

// SecondaryTab identifies the active content tab in the secondary panel.
type SecondaryTab int

const (
	TabWatchdog SecondaryTab = iota // watchdog supervisor messages
	TabFeed                         // command feed log
	TabStatus                       // session statistics
)

var secondaryTabLabels = []string{"Watchdog", "Feed", "Status"}

// SecondaryPanel is the secondary (right-bottom) panel with
// watchdog/feed/status tabs.
type SecondaryPanel struct {
	tabbar    components.TabBar
	watchdog  components.LogView
	feed      components.LogView
	stats     []store.ActivationSummary
	session   store.SessionSummary
	width     int
	height    int
	activeTab SecondaryTab
}

// NewSecondaryPanel creates a secondary panel.
func NewSecondaryPanel(w, h int) SecondaryPanel {
	contentH := h - 1
	if contentH < 1 {
		contentH = 1
	}
	return SecondaryPanel{
		tabbar:    components.NewTabBar(secondaryTabLabels).SetWidth(w),
		watchdog:  components.NewLogView(w, contentH),
		feed:      components.NewLogView(w, contentH),
		width:     w,
		height:    h,
		activeTab: TabWatchdog,
	}
}

// AppendLine appends a pre-rendered line routed to the given tab.
func (p SecondaryPanel) AppendLine(rendered string, routeTab SecondaryTab) SecondaryPanel {
	switch routeTab {
	case TabWatchdog:
		p.watchdog = p.watchdog.AppendLine(rendered)
	case TabFeed:
		p.feed = p.feed.AppendLine(rendered)
	}
	return p
}

// AddActivation records a completed activation for the status tab.
func (p SecondaryPanel) AddActivation(s store.ActivationSummary) SecondaryPanel {
	p.stats = append(p.stats, s)
	return p
}

// SetSession updates the session totals shown on the status tab.
func (p SecondaryPanel) SetSession(s store.SessionSummary) SecondaryPanel {
	p.session = s
	return p
}

// SetSize resizes all internal viewports.
func (p SecondaryPanel) SetSize(w, h int) SecondaryPanel {
	p.width = w
	p.height = h
	contentH := h - 1
	if contentH < 1 {
		contentH = 1
	}
	p.tabbar = p.tabbar.SetWidth(w)
	p.watchdog = p.watchdog.SetSize(w, contentH)
	p.feed = p.feed.SetSize(w, contentH)
	return p
}

// Update handles key messages for the secondary panel.
func (p SecondaryPanel) Update(msg tea.Msg) (SecondaryPanel, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "]":
			p.tabbar = p.tabbar.Next()
			p.activeTab = SecondaryTab(p.tabbar.Active())
		case "[":
			p.tabbar = p.tabbar.Prev()
			p.activeTab = SecondaryTab(p.tabbar.Active())
		default:
			switch p.activeTab {
			case TabWatchdog:
				p.watchdog, cmd = p.watchdog.Update(msg)
			case TabFeed:
				p.feed, cmd = p.feed.Update(msg)
			}
		}
	default:
		switch p.activeTab {
		case TabWatchdog:
			p.watchdog, cmd = p.watchdog.Update(msg)
		case TabFeed:
			p.feed, cmd = p.feed.Update(msg)
		}
	}
	return p, cmd
}

// View renders the secondary panel: tab bar + active tab content.
func (p SecondaryPanel) View() string {
	var content string
	switch p.activeTab {
	case TabWatchdog:
		content = p.watchdog.View()
	case TabFeed:
		content = p.feed.View()
	case TabStatus:
		content = p.renderStatusTable()
	}
	return lipgloss.JoinVertical(lipgloss.Left, p.tabbar.View(), content)
}

// renderStatusTable renders per-activation durations and session totals.
func (p SecondaryPanel) renderStatusTable() string {
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	contentH := p.height - 1
	if contentH < 1 {
		contentH = 1
	}
	if len(p.stats) == 0 {
		return lipgloss.NewStyle().
			Width(p.width).Height(contentH).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(lipgloss.Color("#888888")).
			Render("No activations yet")
	}

	var sb strings.Builder
	header := fmt.Sprintf("  %-4s %-16s %10s", "#", "Mode", "Held")
	divider := strings.Repeat("─", min(p.width, 36))
	sb.WriteString(dim.Render(header))
	sb.WriteString("\n")
	sb.WriteString(dim.Render(divider))
	sb.WriteString("\n")

	var totalHeld float64
	for _, s := range p.stats {
		line := fmt.Sprintf("  %-4d %-16s %9.1fs", s.Number, s.Mode, s.Duration)
		sb.WriteString(line)
		sb.WriteString("\n")
		totalHeld += s.Duration
	}

	sb.WriteString(dim.Render(divider))
	sb.WriteString("\n")
	totalLine := fmt.Sprintf("  %-21s %9.1fs", "Total", totalHeld)
	sb.WriteString(dim.Render(totalLine))
	if p.session.Overruns > 0 {
		sb.WriteString("\n")
		sb.WriteString(dim.Render(fmt.Sprintf("  overruns: %d", p.session.Overruns)))
	}

	return lipgloss.NewStyle().
		Width(p.width).Height(contentH).
		Render(sb.String())
}
