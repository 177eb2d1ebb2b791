package control

import "time"

// EventKind identifies the type of a control event.
type EventKind int

const (
	EventInfo             EventKind = iota // General informational message
	EventLoopStart                         // Control loop starting
	EventHeartbeat                         // Periodic loop heartbeat with tick stats
	EventModeSkipped                       // Mode dropped during registry validation
	EventModeEnter                         // Mode became active
	EventModeExit                          // Mode deactivated
	EventInvalidSelection                  // Selection id outside the registry
	EventOverrun                           // Tick handler exceeded the loop period
	EventError                             // Error from a mode hook or the loop
	EventDone                              // Loop finished normally
	EventStopped                           // Loop stopped (context cancelled or stop requested)
	EventWatchdog                          // Watchdog supervisor message
	EventFeed                              // Remote selection feed message
)

// Event is a structured record emitted by the Manager and the control loop.
// When a sink channel is set, events are sent there for TUI/store/notify
// consumption; emission is non-blocking so a slow consumer never stalls the
// control loop.
type Event struct {
	Kind      EventKind
	Timestamp time.Time
	Message   string

	// Mode transition fields
	Mode     string // display name of the mode this event concerns
	FromMode string // previous active mode on a transition, if any
	ModeID   int    // selection id (registry index); raw id for invalid selections

	// Heartbeat/tick fields
	Ticks    int64   // cumulative ticks this run
	RateHz   float64 // measured tick rate over the last heartbeat interval
	Overruns int64   // cumulative tick overruns this run

	// Duration a mode was active, in seconds (exit events)
	Duration float64
}
