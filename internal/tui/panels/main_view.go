package panels

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mars1523/marsctl/internal/tui/components"
)

// MainTab identifies the active content tab in the main view.
type MainTab int

const (
	TabEvents     MainTab = iota // live event stream
	TabActivation                // past activation drill-down
)

var mainTabLabels = []string{"Events", "Activation"}

// MainView is the main (right-top) panel showing the live event stream and
// activation drill-downs.
type MainView struct {
	tabbar    components.TabBar
	logview   components.LogView
	detail    components.LogView
	width     int
	height    int
	activeTab MainTab
}

// NewMainView creates a MainView with the events tab active.
func NewMainView(w, h int) MainView {
	contentH := h - 1 // tab bar row
	if contentH < 1 {
		contentH = 1
	}
	return MainView{
		tabbar:  components.NewTabBar(mainTabLabels).SetWidth(w),
		logview: components.NewLogView(w, contentH),
		detail:  components.NewLogView(w, contentH),
		width:   w,
		height:  h,
	}
}

// AppendLine appends a styled line to the live event stream.
func (v MainView) AppendLine(rendered string) MainView {
	v.logview = v.logview.AppendLine(rendered)
	return v
}

// ShowActivationLog loads a past activation's rendered events and switches
// to the activation tab.
func (v MainView) ShowActivationLog(rendered []string) MainView {
	v.detail = v.detail.SetContent(rendered)
	v.activeTab = TabActivation
	v.tabbar = components.NewTabBar(mainTabLabels).SetWidth(v.width).Next()
	return v
}

// SwitchToEvents returns to the live event stream tab.
func (v MainView) SwitchToEvents() MainView {
	v.activeTab = TabEvents
	v.tabbar = components.NewTabBar(mainTabLabels).SetWidth(v.width)
	return v
}

// Following reports whether the live event stream is in follow mode.
func (v MainView) Following() bool {
	return v.logview.Following()
}

// SetSize resizes the main view.
func (v MainView) SetSize(w, h int) MainView {
	v.width = w
	v.height = h
	contentH := h - 1
	if contentH < 1 {
		contentH = 1
	}
	v.tabbar = v.tabbar.SetWidth(w)
	v.logview = v.logview.SetSize(w, contentH)
	v.detail = v.detail.SetSize(w, contentH)
	return v
}

// Update handles key messages for the main panel.
func (v MainView) Update(msg tea.Msg) (MainView, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "]":
			v.tabbar = v.tabbar.Next()
			v.activeTab = MainTab(v.tabbar.Active())
		case "[":
			v.tabbar = v.tabbar.Prev()
			v.activeTab = MainTab(v.tabbar.Active())
		case "f":
			if v.activeTab == TabEvents {
				v.logview = v.logview.ToggleFollow()
			}
		default:
			if v.activeTab == TabActivation {
				v.detail, cmd = v.detail.Update(msg)
			} else {
				v.logview, cmd = v.logview.Update(msg)
			}
		}
	default:
		if v.activeTab == TabActivation {
			v.detail, cmd = v.detail.Update(msg)
		} else {
			v.logview, cmd = v.logview.Update(msg)
		}
	}
	return v, cmd
}

// View renders the main panel: tab bar + content area.
func (v MainView) View() string {
	var content string
	if v.activeTab == TabActivation {
		content = v.detail.View()
	} else {
		content = v.logview.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, v.tabbar.View(), content)
}
