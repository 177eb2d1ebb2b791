package panels

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mars1523/marsctl/internal/store"
)

func TestNewSecondaryPanel_WatchdogTabActive(t *testing.T) {
	p := NewSecondaryPanel(80, 20)
	if p.activeTab != TabWatchdog {
		t.Errorf("initial tab: got %v, want TabWatchdog", p.activeTab)
	}
	view := p.View()
	for _, label := range []string{"Watchdog", "Feed", "Status"} {
		if !strings.Contains(view, label) {
			t.Errorf("View() missing tab label %q", label)
		}
	}
}

func TestSecondaryPanel_AppendLineRouting(t *testing.T) {
	p := NewSecondaryPanel(80, 20)
	p = p.AppendLine("watchdog line", TabWatchdog)
	p = p.AppendLine("feed line", TabFeed)

	// Watchdog tab is active; its line is visible, the feed line is not.
	view := p.View()
	if !strings.Contains(view, "watchdog line") {
		t.Errorf("watchdog tab missing its line; got %q", view)
	}
	if strings.Contains(view, "feed line") {
		t.Errorf("watchdog tab should not show feed lines; got %q", view)
	}

	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{']'}})
	view = p.View()
	if !strings.Contains(view, "feed line") {
		t.Errorf("feed tab missing its line; got %q", view)
	}
}

func TestSecondaryPanel_TabSwitching(t *testing.T) {
	p := NewSecondaryPanel(80, 20)

	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{']'}})
	if p.activeTab != TabFeed {
		t.Errorf("after ]: got %v, want TabFeed", p.activeTab)
	}
	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{']'}})
	if p.activeTab != TabStatus {
		t.Errorf("after ]]: got %v, want TabStatus", p.activeTab)
	}
	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{']'}})
	if p.activeTab != TabWatchdog {
		t.Errorf("tab cycle should wrap to TabWatchdog; got %v", p.activeTab)
	}
	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'['}})
	if p.activeTab != TabStatus {
		t.Errorf("after [: got %v, want TabStatus", p.activeTab)
	}
}

func TestSecondaryPanel_StatusTab(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		p := NewSecondaryPanel(80, 20)
		p, _ = p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'['}}) // wrap to Status
		view := p.View()
		if !strings.Contains(view, "No activations yet") {
			t.Errorf("empty status tab should show placeholder; got %q", view)
		}
	})

	t.Run("with activations", func(t *testing.T) {
		p := NewSecondaryPanel(80, 20)
		p = p.AddActivation(store.ActivationSummary{Number: 1, Mode: "Arcade Drive", Duration: 4.2})
		p = p.AddActivation(store.ActivationSummary{Number: 2, Mode: "Autonomous", Duration: 10.0})
		p, _ = p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'['}})

		view := p.View()
		for _, want := range []string{"Arcade Drive", "Autonomous", "Total", "14.2s"} {
			if !strings.Contains(view, want) {
				t.Errorf("status table missing %q; got %q", want, view)
			}
		}
	})

	t.Run("session overruns", func(t *testing.T) {
		p := NewSecondaryPanel(80, 20)
		p = p.AddActivation(store.ActivationSummary{Number: 1, Mode: "Tank Drive", Duration: 1.0})
		p = p.SetSession(store.SessionSummary{Overruns: 2})
		p, _ = p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'['}})

		if !strings.Contains(p.View(), "overruns: 2") {
			t.Errorf("status table missing overrun count; got %q", p.View())
		}
	})
}

func TestSecondaryPanel_SetSize(t *testing.T) {
	p := NewSecondaryPanel(80, 20)
	p = p.SetSize(100, 30)
	if p.width != 100 || p.height != 30 {
		t.Errorf("SetSize: got %dx%d, want 100x30", p.width, p.height)
	}
}
