// Package components provides reusable widgets for the marsctl dashboard.
package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	tabActiveStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#D9480F"))
	tabInactiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)

// TabBar renders a row of labelled tabs with the active one highlighted.
// It holds no content of its own; panels pair it with one view per tab.
type TabBar struct {
	tabs   []string
	active int
	width  int
}

// NewTabBar creates a TabBar with the given titles. The first tab is active.
func NewTabBar(tabs []string) TabBar {
	return TabBar{tabs: tabs}
}

// Active returns the index of the active tab.
func (t TabBar) Active() int {
	return t.active
}

// Next returns a TabBar with the next tab active, wrapping around.
func (t TabBar) Next() TabBar {
	if len(t.tabs) == 0 {
		return t
	}
	t.active = (t.active + 1) % len(t.tabs)
	return t
}

// Prev returns a TabBar with the previous tab active, wrapping around.
func (t TabBar) Prev() TabBar {
	if len(t.tabs) == 0 {
		return t
	}
	t.active = (t.active + len(t.tabs) - 1) % len(t.tabs)
	return t
}

// SetWidth returns a TabBar configured for the given render width.
func (t TabBar) SetWidth(w int) TabBar {
	t.width = w
	return t
}

// View renders the tab row, tabs separated by " │ ".
func (t TabBar) View() string {
	if len(t.tabs) == 0 {
		return ""
	}
	parts := make([]string, len(t.tabs))
	for i, label := range t.tabs {
		if i == t.active {
			parts[i] = tabActiveStyle.Render(label)
		} else {
			parts[i] = tabInactiveStyle.Render(label)
		}
	}
	return strings.Join(parts, "  │  ")
}
