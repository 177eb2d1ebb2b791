package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mars1523/marsctl/internal/control"
)

// Theme holds accent-color-derived styles for the dashboard.
type Theme struct {
	accentStyle     lipgloss.Style // header background / focused elements
	feedStyle       lipgloss.Style // command feed messages
	borderFocused   lipgloss.Style // focused panel border
	borderUnfocused lipgloss.Style // unfocused panel border
}

// NewTheme creates a Theme from a hex accent color string (e.g. "#D9480F").
// If accentColor is empty, the default accent color is used.
func NewTheme(accentColor string) Theme {
	color := defaultAccentColor
	if accentColor != "" {
		color = accentColor
	}
	c := lipgloss.Color(color)
	return Theme{
		accentStyle: lipgloss.NewStyle().
			Background(c).
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true),
		feedStyle: lipgloss.NewStyle().
			Foreground(c),
		borderFocused: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(c),
		borderUnfocused: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorGray),
	}
}

// AccentHeaderStyle returns the style for the header bar.
func (t Theme) AccentHeaderStyle() lipgloss.Style {
	return t.accentStyle
}

// PanelBorderStyle returns the appropriate border style for a panel based
// on whether it currently holds keyboard focus.
func (t Theme) PanelBorderStyle(focused bool) lipgloss.Style {
	if focused {
		return t.borderFocused
	}
	return t.borderUnfocused
}

// RenderEventLine renders a control.Event as a single terminal line.
func (t Theme) RenderEventLine(e control.Event, width int) string {
	ts := timestampStyle.Render(fmt.Sprintf("[%s]", e.Timestamp.Format("15:04:05")))

	switch e.Kind {
	case control.EventModeEnter:
		msg := "→ " + e.Mode
		if e.FromMode != "" {
			msg = fmt.Sprintf("→ %s (was %s)", e.Mode, e.FromMode)
		}
		return fmt.Sprintf("%s  %s", ts, enterStyle.Render(msg))

	case control.EventModeExit:
		msg := fmt.Sprintf("← %s after %.1fs", e.Mode, e.Duration)
		return fmt.Sprintf("%s  %s", ts, exitStyle.Render(msg))

	case control.EventHeartbeat:
		return fmt.Sprintf("%s  %s", ts, heartbeatStyle.Render(singleLine(e.Message)))

	case control.EventInvalidSelection:
		return fmt.Sprintf("%s  %s", ts, warnStyle.Render("⚠ "+singleLine(e.Message)))

	case control.EventModeSkipped:
		return fmt.Sprintf("%s  %s", ts, warnStyle.Render("⚠ "+singleLine(e.Message)))

	case control.EventOverrun:
		return fmt.Sprintf("%s  %s", ts, warnStyle.Render("⏱ "+singleLine(e.Message)))

	case control.EventError:
		return fmt.Sprintf("%s  %s", ts, errorStyle.Render("✗ "+singleLine(e.Message)))

	case control.EventLoopStart:
		return fmt.Sprintf("%s  %s", ts, infoStyle.Render("▶ "+singleLine(e.Message)))

	case control.EventDone:
		return fmt.Sprintf("%s  %s", ts, resultStyle.Render("✓ "+singleLine(e.Message)))

	case control.EventStopped:
		return fmt.Sprintf("%s  %s", ts, errorStyle.Render("⏹ "+singleLine(e.Message)))

	case control.EventWatchdog:
		return fmt.Sprintf("%s  %s", ts, watchdogStyle.Render("🐕 watchdog: "+singleLine(e.Message)))

	case control.EventFeed:
		return fmt.Sprintf("%s  %s", ts, t.feedStyle.Render("⇥ feed: "+singleLine(e.Message)))

	default:
		return fmt.Sprintf("%s  %s", ts, infoStyle.Render(singleLine(e.Message)))
	}
}

// singleLine collapses a possibly multi-line message into one line.
func singleLine(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}
