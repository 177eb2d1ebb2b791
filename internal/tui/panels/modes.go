package panels

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/mars1523/marsctl/internal/control"
)

// ModeSelectedMsg is emitted when the user picks a mode to activate.
type ModeSelectedMsg struct{ ID int }

// modeItem wraps a control.ModeInfo as a list.Item.
type modeItem struct {
	info   control.ModeInfo
	active bool
}

func (m modeItem) Title() string {
	marker := " "
	if m.active {
		marker = "●"
	} else if m.info.Default {
		marker = "◦"
	}
	return fmt.Sprintf("%s %2d  %s", marker, m.info.Priority, m.info.Name)
}

func (m modeItem) Description() string { return "" }

func (m modeItem) FilterValue() string { return m.info.Name }

// modeDelegate renders compact single-line mode items.
type modeDelegate struct{}

func (d modeDelegate) Height() int                             { return 1 }
func (d modeDelegate) Spacing() int                            { return 0 }
func (d modeDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d modeDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	mi, ok := item.(modeItem)
	if !ok {
		return
	}
	s := mi.Title()
	switch {
	case index == m.Index():
		s = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#D9480F")).Render("> " + s)
	case mi.active:
		s = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FB865")).Render("  " + s)
	default:
		s = "  " + s
	}
	_, _ = fmt.Fprint(w, s)
}

// ModesPanel displays the mode registry, highest priority first, with the
// active mode marked. '/' opens a fuzzy filter over mode names.
type ModesPanel struct {
	list         list.Model
	modes        []control.ModeInfo
	activeID     int
	width        int
	height       int
	filter       textinput.Model
	filterActive bool
}

// NewModesPanel creates a modes panel over the given registry listing.
func NewModesPanel(modes []control.ModeInfo, w, h int) ModesPanel {
	l := list.New(nil, modeDelegate{}, w, h)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)

	fi := textinput.New()
	fi.Placeholder = "filter"
	fi.CharLimit = 48
	if w > 4 {
		fi.Width = w - 4
	}

	p := ModesPanel{
		list:     l,
		modes:    modes,
		activeID: -1,
		width:    w,
		height:   h,
		filter:   fi,
	}
	p.list.SetItems(p.buildItems(""))
	return p
}

// buildItems converts the registry to list items, applying the fuzzy filter
// query when non-empty. Matches are ordered by fuzzy score; an empty query
// preserves registry order.
func (p ModesPanel) buildItems(query string) []list.Item {
	if query == "" {
		items := make([]list.Item, len(p.modes))
		for i, m := range p.modes {
			items[i] = modeItem{info: m, active: m.ID == p.activeID}
		}
		return items
	}
	names := make([]string, len(p.modes))
	for i, m := range p.modes {
		names[i] = m.Name
	}
	matches := fuzzy.Find(query, names)
	items := make([]list.Item, 0, len(matches))
	for _, match := range matches {
		m := p.modes[match.Index]
		items = append(items, modeItem{info: m, active: m.ID == p.activeID})
	}
	return items
}

// SetActive marks the mode with the given registry ID as active. Pass -1
// to clear the marker.
func (p ModesPanel) SetActive(id int) ModesPanel {
	p.activeID = id
	p.list.SetItems(p.buildItems(strings.TrimSpace(p.filter.Value())))
	return p
}

// SelectedMode returns the highlighted mode, or nil when the list is empty.
func (p ModesPanel) SelectedMode() *control.ModeInfo {
	if item, ok := p.list.SelectedItem().(modeItem); ok {
		info := item.info
		return &info
	}
	return nil
}

// Filtering reports whether the filter input is capturing keys.
func (p ModesPanel) Filtering() bool {
	return p.filterActive
}

// SetSize resizes the panel.
func (p ModesPanel) SetSize(w, h int) ModesPanel {
	p.width = w
	p.height = h
	listHeight := h
	if p.filterActive {
		listHeight--
	}
	p.list.SetSize(w, listHeight)
	if w > 4 {
		p.filter.Width = w - 4
	}
	return p
}

// Update handles key messages for the panel.
func (p ModesPanel) Update(msg tea.Msg) (ModesPanel, tea.Cmd) {
	// While the filter input is active it captures everything except
	// esc (clear and close) and enter (select top match).
	if p.filterActive {
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "esc":
				p.filterActive = false
				p.filter.Blur()
				p.filter.Reset()
				p.list.SetItems(p.buildItems(""))
				return p.SetSize(p.width, p.height), nil
			case "enter":
				p.filterActive = false
				p.filter.Blur()
				if sel := p.SelectedMode(); sel != nil {
					id := sel.ID
					return p, func() tea.Msg { return ModeSelectedMsg{ID: id} }
				}
				return p, nil
			}
		}
		var cmd tea.Cmd
		p.filter, cmd = p.filter.Update(msg)
		p.list.SetItems(p.buildItems(strings.TrimSpace(p.filter.Value())))
		return p, cmd
	}

	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "j", "down":
			p.list, cmd = p.list.Update(tea.KeyMsg{Type: tea.KeyDown})
		case "k", "up":
			p.list, cmd = p.list.Update(tea.KeyMsg{Type: tea.KeyUp})
		case "enter":
			if sel := p.SelectedMode(); sel != nil {
				id := sel.ID
				return p, func() tea.Msg { return ModeSelectedMsg{ID: id} }
			}
		case "/":
			p.filterActive = true
			p.filter.Reset()
			p.filter.Focus()
			return p.SetSize(p.width, p.height), textinput.Blink
		default:
			p.list, cmd = p.list.Update(msg)
		}
	default:
		p.list, cmd = p.list.Update(msg)
	}
	return p, cmd
}

// View renders the modes panel.
func (p ModesPanel) View() string {
	if len(p.modes) == 0 {
		return lipgloss.NewStyle().
			Width(p.width).Height(p.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(lipgloss.Color("#888888")).
			Render("No modes")
	}
	if p.filterActive {
		return lipgloss.JoinVertical(lipgloss.Left,
			p.filter.View(),
			p.list.View(),
		)
	}
	return p.list.View()
}
