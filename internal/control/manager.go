package control

import (
	"fmt"
	"sort"
	"time"
)

// ConfigError is a fatal construction failure: the Manager cannot be built
// because no usable mode remains.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "control: " + e.Reason
}

// ModeInfo describes one registered mode for listings and lookups.
type ModeInfo struct {
	ID       int
	Name     string
	Priority int
	Default  bool
}

// Manager owns the ordered mode registry and the single active-mode pointer.
// It is built once; the mode set never changes afterwards.
//
// The Manager performs no internal locking: the control loop goroutine is
// expected to be the sole caller of SelectionChanged and Tick.
type Manager struct {
	modes     []Interface
	active    int // index into modes; -1 = no active mode
	enteredAt time.Time
	events    chan<- Event
}

// New builds a Manager from the given modes. Modes with an empty display
// name are reported on the event sink and dropped; construction fails with
// *ConfigError when no modes are given or validation drops every one.
//
// Surviving modes are sorted by priority descending (stable on ties) and
// registered with the chooser in that order, the first as the default.
// No mode is activated: activation happens on the first selection report.
//
// chooser and events may be nil; registration and event emission are then
// skipped.
func New(chooser Chooser, events chan<- Event, modes ...Interface) (*Manager, error) {
	return build(chooser, events, false, modes)
}

// NewStrict is like New but treats any validation drop as fatal, failing
// construction instead of proceeding with the surviving modes.
func NewStrict(chooser Chooser, events chan<- Event, modes ...Interface) (*Manager, error) {
	return build(chooser, events, true, modes)
}

func build(chooser Chooser, events chan<- Event, strict bool, modes []Interface) (*Manager, error) {
	if len(modes) == 0 {
		return nil, &ConfigError{Reason: "no control modes given"}
	}

	m := &Manager{active: -1, events: events}

	kept := make([]Interface, 0, len(modes))
	for i, mode := range modes {
		if mode.DisplayName() == "" {
			if strict {
				return nil, &ConfigError{Reason: fmt.Sprintf("mode %d has no display name", i)}
			}
			m.emit(Event{
				Kind:    EventModeSkipped,
				ModeID:  i,
				Message: fmt.Sprintf("control mode %d has no display name, skipping", i),
			})
			continue
		}
		kept = append(kept, mode)
	}

	if len(kept) == 0 {
		return nil, &ConfigError{Reason: "all control modes failed validation"}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Priority() > kept[j].Priority()
	})
	m.modes = kept

	if chooser != nil {
		for i, mode := range kept {
			if i == 0 {
				chooser.AddDefault(mode.DisplayName(), i)
			} else {
				chooser.AddOption(mode.DisplayName(), i)
			}
		}
	}

	return m, nil
}

// SelectionChanged applies a selection reported by the chooser. A negative id
// means the chooser has not reported a choice yet and is a no-op, as is
// reselecting the already-active mode. An id outside the registry is reported
// on the event sink and leaves state unchanged.
//
// On a transition the previous mode's Exit runs to completion before the new
// mode's Enter. The active pointer is updated before Enter is invoked, so a
// failing hook propagates its error while the Manager still points at the
// newly selected mode.
func (m *Manager) SelectionChanged(id int) error {
	if id < 0 {
		return nil
	}
	if id >= len(m.modes) {
		m.emit(Event{
			Kind:    EventInvalidSelection,
			ModeID:  id,
			Message: fmt.Sprintf("invalid control mode: %d", id),
		})
		return nil
	}
	if id == m.active {
		return nil
	}

	var from string
	if m.active >= 0 {
		old := m.modes[m.active]
		from = old.DisplayName()
		exitErr := old.Exit()
		m.emit(Event{
			Kind:     EventModeExit,
			Mode:     from,
			ModeID:   m.active,
			Duration: time.Since(m.enteredAt).Seconds(),
			Message:  fmt.Sprintf("%s deactivated", from),
		})
		if exitErr != nil {
			// The switch still happens; the caller decides what a failed
			// exit hook means.
			m.active = id
			m.enteredAt = time.Now()
			return fmt.Errorf("control: exit %s: %w", from, exitErr)
		}
	}

	next := m.modes[id]
	m.active = id
	m.enteredAt = time.Now()
	m.emit(Event{
		Kind:     EventModeEnter,
		Mode:     next.DisplayName(),
		FromMode: from,
		ModeID:   id,
		Message:  fmt.Sprintf("%s active", next.DisplayName()),
	})

	if err := next.Enter(); err != nil {
		return fmt.Errorf("control: enter %s: %w", next.DisplayName(), err)
	}
	return nil
}

// Tick forwards one control cycle to the active mode. A no-op when no mode
// has been selected yet. Errors from the mode's Tick propagate unmodified.
func (m *Manager) Tick() error {
	if m.active < 0 {
		return nil
	}
	return m.modes[m.active].Tick()
}

// Active returns the active mode, or nil before the first selection.
func (m *Manager) Active() Interface {
	if m.active < 0 {
		return nil
	}
	return m.modes[m.active]
}

// ActiveID returns the active mode's selection id, or -1 before the first
// selection.
func (m *Manager) ActiveID() int {
	return m.active
}

// ActiveName returns the active mode's display name, or "" before the first
// selection.
func (m *Manager) ActiveName() string {
	if m.active < 0 {
		return ""
	}
	return m.modes[m.active].DisplayName()
}

// Modes lists the registered modes in chooser order.
func (m *Manager) Modes() []ModeInfo {
	infos := make([]ModeInfo, len(m.modes))
	for i, mode := range m.modes {
		infos[i] = ModeInfo{
			ID:       i,
			Name:     mode.DisplayName(),
			Priority: mode.Priority(),
			Default:  i == 0,
		}
	}
	return infos
}

// IDByName resolves a display name to its selection id. Names are compared
// exactly; when two modes share a name the highest-priority one wins.
func (m *Manager) IDByName(name string) (int, bool) {
	for i, mode := range m.modes {
		if mode.DisplayName() == name {
			return i, true
		}
	}
	return 0, false
}

// emit sends an event on the sink without blocking. Events are dropped when
// the sink is nil or full.
func (m *Manager) emit(ev Event) {
	if m.events == nil {
		return
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	select {
	case m.events <- ev:
	default:
	}
}
