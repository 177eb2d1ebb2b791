package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mars1523/marsctl/internal/control"
	"github.com/mars1523/marsctl/internal/store"
	"github.com/mars1523/marsctl/internal/tui/panels"
)

// Model is the root bubbletea model for the marsctl dashboard.
type Model struct {
	// Event source
	events      <-chan control.Event
	storeReader store.Reader

	// Sub-panels
	modesPanel   panels.ModesPanel
	historyPanel panels.HistoryPanel
	mainView     panels.MainView
	secondary    panels.SecondaryPanel

	// Layout and focus
	layout Layout
	focus  FocusTarget
	theme  Theme
	width  int
	height int

	// Loop state
	runState      RunState
	activeMode    string
	tickRate      float64
	ticks         int64
	overruns      int64
	activationNum int
	pendingFrom   string
	sessionID     string

	// Time
	startedAt time.Time
	now       time.Time

	// Identity
	projectName string
	workDir     string

	// Graceful stop
	requestStop   func()
	stopRequested bool

	// Selection forwarding (nil when selections come from the feed only)
	controller LoopController

	// Error/done
	err  error
	done bool
}

// New creates the dashboard Model.
// storeReader may be nil if no session log is available.
// modes is the registry listing for the sidebar, highest priority first.
// requestStop, if non-nil, is called once when the user presses 's'.
func New(events <-chan control.Event, storeReader store.Reader, accentColor, projectName, workDir string, modes []control.ModeInfo, requestStop func(), controller LoopController) Model {
	now := time.Now()
	th := NewTheme(accentColor)
	layout := Calculate(80, 24)

	modesW, modesH := innerDims(layout.Modes)
	histW, histH := innerDims(layout.History)
	mainW, mainH := innerDims(layout.Main)
	secW, secH := innerDims(layout.Secondary)

	sessionID := ""
	if storeReader != nil {
		if s, err := storeReader.SessionSummary(); err == nil {
			sessionID = s.SessionID
		}
	}

	return Model{
		events:       events,
		storeReader:  storeReader,
		modesPanel:   panels.NewModesPanel(modes, modesW, modesH),
		historyPanel: panels.NewHistoryPanel(histW, histH),
		mainView:     panels.NewMainView(mainW, mainH),
		secondary:    panels.NewSecondaryPanel(secW, secH),
		layout:       layout,
		focus:        FocusMain,
		theme:        th,
		width:        80,
		height:       24,
		runState:     StateIdle,
		sessionID:    sessionID,
		startedAt:    now,
		now:          now,
		projectName:  projectName,
		workDir:      workDir,
		requestStop:  requestStop,
		controller:   controller,
	}
}

// Err returns any error recorded from the loop.
func (m Model) Err() error { return m.err }

// Init returns the initial commands: event listener + clock ticker.
func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForEvent(m.events), tickCmd())
}

// tickCmd schedules the next one-second clock tick.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitForEvent blocks on the event channel and returns the next message.
func waitForEvent(ch <-chan control.Event) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-ch
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg(e)
	}
}

// Update handles all incoming bubbletea messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg)
	case tea.KeyMsg:
		return m.handleKey(msg)
	case eventMsg:
		return m.handleEvent(msg)
	case tickMsg:
		m.now = time.Time(msg)
		return m, tickCmd()
	case eventsClosedMsg:
		// Channel closed, the loop is finished. Keep the dashboard open so
		// the user can review the session; q exits.
		if m.runState.CanTransitionTo(StateIdle) {
			m.runState = StateIdle
		}
		return m, nil
	case fatalErrMsg:
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	case panels.ModeSelectedMsg:
		return m.handleModeSelected(msg)
	case panels.ActivationSelectedMsg:
		return m.handleActivationSelected(msg)
	case activationLogLoadedMsg:
		return m.handleActivationLogLoaded(msg)
	}
	return m.delegateToFocused(msg)
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.layout = Calculate(msg.Width, msg.Height)
	if !m.layout.TooSmall {
		modesW, modesH := innerDims(m.layout.Modes)
		histW, histH := innerDims(m.layout.History)
		mainW, mainH := innerDims(m.layout.Main)
		secW, secH := innerDims(m.layout.Secondary)
		m.modesPanel = m.modesPanel.SetSize(modesW, modesH)
		m.historyPanel = m.historyPanel.SetSize(histW, histH)
		m.mainView = m.mainView.SetSize(mainW, mainH)
		m.secondary = m.secondary.SetSize(secW, secH)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The filter input owns the keyboard while it is open.
	if m.focus == FocusModes && m.modesPanel.Filtering() {
		return m.delegateToFocused(msg)
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "s":
		if m.requestStop != nil && !m.stopRequested {
			m.stopRequested = true
			if m.runState.CanTransitionTo(StateStopping) {
				m.runState = StateStopping
			}
			m.requestStop()
		}
		return m, nil
	case "tab":
		m.focus = m.focus.Next()
		return m, nil
	case "shift+tab":
		m.focus = m.focus.Prev()
		return m, nil
	case "1":
		m.focus = FocusModes
		return m, nil
	case "2":
		m.focus = FocusHistory
		return m, nil
	case "3":
		m.focus = FocusMain
		return m, nil
	case "4":
		m.focus = FocusSecondary
		return m, nil
	}
	return m.delegateToFocused(msg)
}

func (m Model) delegateToFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case FocusModes:
		m.modesPanel, cmd = m.modesPanel.Update(msg)
	case FocusHistory:
		m.historyPanel, cmd = m.historyPanel.Update(msg)
	case FocusMain:
		m.mainView, cmd = m.mainView.Update(msg)
	case FocusSecondary:
		m.secondary, cmd = m.secondary.Update(msg)
	}
	return m, cmd
}

func (m Model) handleEvent(msg eventMsg) (tea.Model, tea.Cmd) {
	e := control.Event(msg)

	if e.RateHz > 0 && m.tickRate == 0 {
		m.tickRate = e.RateHz
	}
	if e.Ticks > 0 {
		m.ticks = e.Ticks
	}

	// Derive RunState transitions from the event kind.
	switch e.Kind {
	case control.EventLoopStart:
		if e.RateHz > 0 {
			m.tickRate = e.RateHz
		}
		if m.runState.CanTransitionTo(StateRunning) {
			m.runState = StateRunning
		}

	case control.EventModeEnter:
		m.activeMode = e.Mode
		m.pendingFrom = e.FromMode
		m.activationNum++
		m.modesPanel = m.modesPanel.SetActive(e.ModeID)
		m.historyPanel = m.historyPanel.SetCurrent(m.activationNum)

	case control.EventModeExit:
		summary := store.ActivationSummary{
			Number:   m.activationNum,
			Mode:     e.Mode,
			FromMode: m.pendingFrom,
			Duration: e.Duration,
		}
		m.historyPanel = m.historyPanel.AddActivation(summary).SetCurrent(0)
		m.secondary = m.secondary.AddActivation(summary)
		if m.storeReader != nil {
			if s, err := m.storeReader.SessionSummary(); err == nil {
				m.secondary = m.secondary.SetSession(s)
			}
		}

	case control.EventOverrun:
		m.overruns++

	case control.EventDone, control.EventStopped:
		if m.runState.CanTransitionTo(StateIdle) {
			m.runState = StateIdle
		}

	case control.EventError:
		if m.runState.CanTransitionTo(StateFailed) {
			m.runState = StateFailed
		}

	case control.EventWatchdog:
		if m.runState.CanTransitionTo(StateRestarting) {
			m.runState = StateRestarting
		}
	}

	// Render once at current width; route by kind.
	rendered := m.theme.RenderEventLine(e, m.layout.Main.Width)
	switch e.Kind {
	case control.EventWatchdog:
		m.secondary = m.secondary.AppendLine(rendered, panels.TabWatchdog)
	case control.EventFeed:
		m.secondary = m.secondary.AppendLine(rendered, panels.TabFeed)
		m.mainView = m.mainView.AppendLine(rendered)
	default:
		m.mainView = m.mainView.AppendLine(rendered)
	}

	return m, waitForEvent(m.events)
}

func (m Model) handleModeSelected(msg panels.ModeSelectedMsg) (tea.Model, tea.Cmd) {
	if m.controller != nil && m.controller.IsRunning() {
		m.controller.Select(msg.ID)
	}
	return m, nil
}

func (m Model) handleActivationSelected(msg panels.ActivationSelectedMsg) (tea.Model, tea.Cmd) {
	if m.storeReader == nil {
		return m, nil
	}
	n := msg.Number
	return m, func() tea.Msg {
		events, err := m.storeReader.ActivationLog(n)
		var summary store.ActivationSummary
		if summaries, sErr := m.storeReader.Activations(); sErr == nil {
			for _, s := range summaries {
				if s.Number == n {
					summary = s
					break
				}
			}
		}
		return activationLogLoadedMsg{Number: n, Events: events, Summary: summary, Err: err}
	}
}

func (m Model) handleActivationLogLoaded(msg activationLogLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		return m, nil
	}
	header := renderActivationSummary(msg.Summary)
	rendered := make([]string, 0, len(header)+len(msg.Events))
	rendered = append(rendered, header...)
	for _, e := range msg.Events {
		rendered = append(rendered, m.theme.RenderEventLine(e, m.layout.Main.Width))
	}
	m.mainView = m.mainView.ShowActivationLog(rendered)
	return m, nil
}

// renderActivationSummary formats an ActivationSummary as key-value lines
// shown above the drill-down event log.
func renderActivationSummary(s store.ActivationSummary) []string {
	if s.Number == 0 {
		return nil
	}
	lines := []string{
		fmt.Sprintf("%-12s #%d", "Activation:", s.Number),
		fmt.Sprintf("%-12s %s", "Mode:", s.Mode),
		fmt.Sprintf("%-12s %.1fs", "Held:", s.Duration),
	}
	if s.FromMode != "" {
		lines = append(lines, fmt.Sprintf("%-12s %s", "Previous:", s.FromMode))
	}
	lines = append(lines, "")
	return lines
}

// View renders the full dashboard.
func (m Model) View() string {
	if m.layout.TooSmall {
		msg := fmt.Sprintf("Terminal too small (%dx%d).\nPlease resize to at least 80x24.", m.width, m.height)
		return lipgloss.NewStyle().
			Width(m.width).
			Align(lipgloss.Center).
			Render(msg)
	}

	header := panels.RenderHeader(panels.HeaderProps{
		ProjectName: m.projectName,
		WorkDir:     m.workDir,
		ActiveMode:  m.activeMode,
		TickRate:    m.tickRate,
		Ticks:       m.ticks,
		Overruns:    m.overruns,
		StateSymbol: m.runState.Symbol(),
		StateLabel:  m.runState.Label(),
		Elapsed:     m.now.Sub(m.startedAt),
		Clock:       m.now,
	}, m.layout.Header.Width, m.theme.AccentHeaderStyle())

	footer := panels.RenderFooter(panels.FooterProps{
		Focus:         m.focus.String(),
		SessionID:     m.sessionID,
		StopRequested: m.stopRequested,
		StateLabel:    m.runState.Label(),
	}, m.layout.Footer.Width)

	// Left sidebar: modes (top) + history (bottom).
	modesW, modesH := innerDims(m.layout.Modes)
	histW, histH := innerDims(m.layout.History)
	mainW, mainH := innerDims(m.layout.Main)
	secW, secH := innerDims(m.layout.Secondary)

	sidebar := lipgloss.JoinVertical(lipgloss.Left,
		m.theme.PanelBorderStyle(m.focus == FocusModes).
			Width(modesW).Height(modesH).
			Render(m.modesPanel.View()),
		m.theme.PanelBorderStyle(m.focus == FocusHistory).
			Width(histW).Height(histH).
			Render(m.historyPanel.View()),
	)

	rightCol := lipgloss.JoinVertical(lipgloss.Left,
		m.theme.PanelBorderStyle(m.focus == FocusMain).
			Width(mainW).Height(mainH).
			Render(m.mainView.View()),
		m.theme.PanelBorderStyle(m.focus == FocusSecondary).
			Width(secW).Height(secH).
			Render(m.secondary.View()),
	)

	body := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, rightCol)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

// innerDims returns the content dimensions for a panel rect accounting for
// the 1-character border on each side.
func innerDims(r Rect) (w, h int) {
	w = r.Width - 2
	if w < 1 {
		w = 1
	}
	h = r.Height - 2
	if h < 1 {
		h = 1
	}
	return
}
