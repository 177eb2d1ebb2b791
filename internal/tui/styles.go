// Package tui provides a bubbletea + lipgloss terminal dashboard for the
// control loop.
package tui

import "github.com/charmbracelet/lipgloss"

// defaultAccentColor is the default accent color (mars orange).
const defaultAccentColor = "#D9480F"

var (
	colorWhite  = lipgloss.Color("#FAFAFA")
	colorGray   = lipgloss.Color("#888888")
	colorBlue   = lipgloss.Color("#5B9BD5")
	colorGreen  = lipgloss.Color("#6BCB77")
	colorYellow = lipgloss.Color("#FFD93D")
	colorRed    = lipgloss.Color("#FF6B6B")
	colorOrange = lipgloss.Color("#FFA54F")
)

// Styles used across the dashboard. Accent-dependent styles (header bar,
// focused borders) live on Theme and are computed from the configured
// accent color at creation.
var (
	timestampStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	enterStyle = lipgloss.NewStyle().
			Foreground(colorGreen).
			Bold(true)

	exitStyle = lipgloss.NewStyle().
			Foreground(colorBlue)

	heartbeatStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	warnStyle = lipgloss.NewStyle().
			Foreground(colorYellow)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)

	resultStyle = lipgloss.NewStyle().
			Foreground(colorGreen).
			Bold(true)

	watchdogStyle = lipgloss.NewStyle().
			Foreground(colorOrange)

	infoStyle = lipgloss.NewStyle().
			Foreground(colorWhite)
)
