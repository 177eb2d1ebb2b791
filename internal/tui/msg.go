package tui

import (
	"time"

	"github.com/mars1523/marsctl/internal/control"
	"github.com/mars1523/marsctl/internal/store"
)

// eventMsg wraps a control.Event for broadcasting to all panels.
type eventMsg control.Event

// eventsClosedMsg signals the event channel closed.
type eventsClosedMsg struct{}

// fatalErrMsg carries an unrecoverable error into the TUI.
type fatalErrMsg struct{ err error }

// tickMsg is sent every second for the clock.
type tickMsg time.Time

// activationLogLoadedMsg carries loaded activation log data.
type activationLogLoadedMsg struct {
	Number  int
	Events  []control.Event
	Summary store.ActivationSummary
	Err     error
}
