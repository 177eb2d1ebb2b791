package panels

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mars1523/marsctl/internal/store"
)

// ActivationSelectedMsg is emitted when the user selects an activation.
// Defined here (not in parent tui package) to avoid circular imports.
type ActivationSelectedMsg struct{ Number int }

// histItem implements list.Item for an activation summary.
type histItem struct {
	summary store.ActivationSummary
	open    bool // true if this activation has not ended yet
}

func (i histItem) Title() string {
	status := "✓"
	if i.open {
		status = "●"
	}
	return fmt.Sprintf("#%d %s %s", i.summary.Number, i.summary.Mode, status)
}

func (i histItem) Description() string {
	if i.open {
		return "active…"
	}
	return fmt.Sprintf("%.1fs", i.summary.Duration)
}

func (i histItem) FilterValue() string {
	return fmt.Sprintf("#%d", i.summary.Number)
}

// histDelegate is a custom list item delegate with compact rendering.
type histDelegate struct{}

func (d histDelegate) Height() int                             { return 1 }
func (d histDelegate) Spacing() int                            { return 0 }
func (d histDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d histDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(histItem)
	if !ok {
		return
	}
	s := fmt.Sprintf("%s  %s", item.Title(), item.Description())
	if index == m.Index() {
		s = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#D9480F")).Render("> " + s)
	} else {
		s = "  " + s
	}
	fmt.Fprint(w, s)
}

// HistoryPanel displays the activation history of the current session,
// most recent last.
type HistoryPanel struct {
	list        list.Model
	activations []store.ActivationSummary
	currentNum  *int // activation still running (nil if none)
	width       int
	height      int
}

// NewHistoryPanel creates an empty history panel.
func NewHistoryPanel(w, h int) HistoryPanel {
	l := list.New(nil, histDelegate{}, w, h)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	return HistoryPanel{
		list:   l,
		width:  w,
		height: h,
	}
}

// AddActivation records a completed activation.
func (p HistoryPanel) AddActivation(s store.ActivationSummary) HistoryPanel {
	p.activations = append(p.activations, s)
	p.list.SetItems(p.buildItems())
	return p
}

// SetCurrent marks the given activation number as still active.
// Pass 0 to clear the marker.
func (p HistoryPanel) SetCurrent(n int) HistoryPanel {
	if n == 0 {
		p.currentNum = nil
	} else {
		p.currentNum = &n
	}
	p.list.SetItems(p.buildItems())
	return p
}

// buildItems rebuilds the list.Item slice from stored summaries.
func (p HistoryPanel) buildItems() []list.Item {
	items := make([]list.Item, len(p.activations))
	for i, s := range p.activations {
		open := p.currentNum != nil && *p.currentNum == s.Number
		items[i] = histItem{summary: s, open: open}
	}
	return items
}

// SelectedActivation returns the highlighted activation summary, or nil.
func (p HistoryPanel) SelectedActivation() *store.ActivationSummary {
	if item, ok := p.list.SelectedItem().(histItem); ok {
		s := item.summary
		return &s
	}
	return nil
}

// SetSize resizes the panel.
func (p HistoryPanel) SetSize(w, h int) HistoryPanel {
	p.width = w
	p.height = h
	p.list.SetSize(w, h)
	return p
}

// Update handles key/mouse messages for the panel.
func (p HistoryPanel) Update(msg tea.Msg) (HistoryPanel, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "j", "down":
			p.list, cmd = p.list.Update(tea.KeyMsg{Type: tea.KeyDown})
		case "k", "up":
			p.list, cmd = p.list.Update(tea.KeyMsg{Type: tea.KeyUp})
		case "enter":
			if sel := p.SelectedActivation(); sel != nil {
				return p, func() tea.Msg { return ActivationSelectedMsg{Number: sel.Number} }
			}
		default:
			p.list, cmd = p.list.Update(msg)
		}
	default:
		p.list, cmd = p.list.Update(msg)
	}
	return p, cmd
}

// View renders the history panel.
func (p HistoryPanel) View() string {
	if len(p.activations) == 0 {
		return lipgloss.NewStyle().
			Width(p.width).Height(p.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(lipgloss.Color("#888888")).
			Render("No activations yet")
	}
	return p.list.View()
}
