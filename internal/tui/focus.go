package tui

// FocusTarget identifies which panel currently holds keyboard focus.
type FocusTarget int

const (
	FocusModes     FocusTarget = iota // Left sidebar, mode chooser
	FocusHistory                      // Left sidebar, activation history
	FocusMain                         // Right top, live event log
	FocusSecondary                    // Right bottom, watchdog/feed/session tabs
)

// Next returns the next focus target in forward tab order.
func (f FocusTarget) Next() FocusTarget {
	return (f + 1) % 4
}

// Prev returns the previous focus target in reverse tab order.
func (f FocusTarget) Prev() FocusTarget {
	return (f + 3) % 4
}

// String returns the human-readable name of the focus target.
func (f FocusTarget) String() string {
	switch f {
	case FocusModes:
		return "modes"
	case FocusHistory:
		return "history"
	case FocusMain:
		return "main"
	case FocusSecondary:
		return "secondary"
	default:
		return "unknown"
	}
}

// RunState represents the current state of the control loop.
type RunState int

const (
	StateIdle       RunState = iota // no loop running
	StateRunning                    // loop ticking
	StateFailed                     // last run ended in failure
	StateRestarting                 // watchdog is restarting the loop
	StateStopping                   // stop requested, loop draining
)

// validTransitions defines the allowed RunState transitions.
var validTransitions = map[RunState][]RunState{
	StateIdle:       {StateRunning},
	StateRunning:    {StateFailed, StateIdle, StateRestarting, StateStopping},
	StateFailed:     {StateRunning, StateRestarting, StateIdle},
	StateRestarting: {StateRunning, StateFailed, StateIdle},
	StateStopping:   {StateIdle, StateFailed},
}

// CanTransitionTo reports whether transitioning from s to next is valid.
func (s RunState) CanTransitionTo(next RunState) bool {
	for _, valid := range validTransitions[s] {
		if valid == next {
			return true
		}
	}
	return false
}

// Label returns a short uppercase label for the state.
func (s RunState) Label() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateRunning:
		return "RUNNING"
	case StateFailed:
		return "FAILED"
	case StateRestarting:
		return "RESTARTING"
	case StateStopping:
		return "STOPPING"
	default:
		return "UNKNOWN"
	}
}

// Symbol returns a single-character symbol representing the state.
func (s RunState) Symbol() string {
	switch s {
	case StateIdle:
		return "✓"
	case StateRunning:
		return "●"
	case StateFailed:
		return "✗"
	case StateRestarting:
		return "⟳"
	case StateStopping:
		return "⏹"
	default:
		return "?"
	}
}
