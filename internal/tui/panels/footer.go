package panels

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))

// FooterProps holds all data needed to render the footer bar.
type FooterProps struct {
	Focus         string // "modes", "history", "main", "secondary"
	SessionID     string
	StopRequested bool
	StateLabel    string // "RUNNING", "IDLE", etc.
	ScrollOffset  int
	NewBelow      int
}

// RenderFooter renders the context-sensitive footer bar. Left side: session
// ID. Right side: keybinding hints for the focused panel plus globals.
func RenderFooter(props FooterProps, width int) string {
	session := props.SessionID
	if session == "" {
		session = "—"
	}
	left := fmt.Sprintf("session: %s", session)

	var right string
	switch {
	case props.StopRequested:
		right = "⏹ stopping loop…  q to force quit"
	default:
		scrollHints := ""
		if props.ScrollOffset > 0 && props.NewBelow > 0 {
			scrollHints = fmt.Sprintf("  ↓%d new  ↑%d", props.NewBelow, props.ScrollOffset)
		} else if props.ScrollOffset > 0 {
			scrollHints = fmt.Sprintf("  ↑%d", props.ScrollOffset)
		}
		right = panelHints(props.Focus) + scrollHints + "  q:quit  1-4:panel  s:stop"
	}

	gap := width - len(left) - len(right)
	if gap < 2 {
		gap = 2
	}

	return footerStyle.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}

// panelHints returns the keybinding hints for a given focus.
func panelHints(focus string) string {
	switch focus {
	case "modes":
		return "j/k:navigate  /:filter  enter:activate  tab:next panel"
	case "history":
		return "j/k:navigate  enter:view  tab:next panel"
	case "main":
		return "f:follow  [/]:tab  ctrl+u/d:scroll  tab:next panel"
	case "secondary":
		return "[/]:tab  j/k:scroll  tab:next panel"
	default:
		return "tab:next panel"
	}
}
