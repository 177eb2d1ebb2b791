package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// LogView is a scrollable line buffer backed by bubbles/viewport. It is the
// body of the event and activation panels. While follow mode is on (the
// default), appended lines keep the view pinned to the bottom; scrolling up
// with the keyboard or mouse turns follow off, and 'f' toggles it back.
type LogView struct {
	vp     viewport.Model
	lines  []string // already styled, one terminal row each
	follow bool
	width  int
	height int
}

// NewLogView creates a LogView with the given dimensions, following.
func NewLogView(w, h int) LogView {
	return LogView{
		vp:     viewport.New(w, h),
		follow: true,
		width:  w,
		height: h,
	}
}

// AppendLine adds a styled line and, in follow mode, scrolls to the bottom.
func (v LogView) AppendLine(rendered string) LogView {
	v.lines = append(v.lines, rendered)
	v.vp.SetContent(strings.Join(v.lines, "\n"))
	if v.follow {
		v.vp.GotoBottom()
	}
	return v
}

// SetContent replaces the whole buffer.
func (v LogView) SetContent(lines []string) LogView {
	v.lines = make([]string, len(lines))
	copy(v.lines, lines)
	v.vp.SetContent(strings.Join(v.lines, "\n"))
	if v.follow {
		v.vp.GotoBottom()
	}
	return v
}

// ToggleFollow flips follow mode, scrolling to the bottom when it turns on.
func (v LogView) ToggleFollow() LogView {
	v.follow = !v.follow
	if v.follow {
		v.vp.GotoBottom()
	}
	return v
}

// SetSize resizes the viewport.
func (v LogView) SetSize(w, h int) LogView {
	v.width = w
	v.height = h
	v.vp.Width = w
	v.vp.Height = h
	if v.follow {
		v.vp.GotoBottom()
	}
	return v
}

// Following reports whether follow mode is active.
func (v LogView) Following() bool {
	return v.follow
}

// Update forwards scroll keys and mouse events to the viewport. A manual
// scroll away from the bottom exits follow mode; resizes do not.
func (v LogView) Update(msg tea.Msg) (LogView, tea.Cmd) {
	var cmd tea.Cmd
	v.vp, cmd = v.vp.Update(msg)
	if v.follow && !v.vp.AtBottom() {
		switch msg.(type) {
		case tea.KeyMsg, tea.MouseMsg:
			v.follow = false
		}
	}
	return v, cmd
}

// View renders the visible window of the buffer.
func (v LogView) View() string {
	return v.vp.View()
}
