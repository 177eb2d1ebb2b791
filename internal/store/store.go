// Package store persists control-loop events to a JSONL session log and
// provides indexed read-back of past mode activations. One store instance
// is created per marsctl invocation in cmd/marsctl/wiring.go and reused
// across watchdog restarts (which occur in the same OS process, keeping
// session identity stable).
package store

import (
	"time"

	"github.com/mars1523/marsctl/internal/control"
)

// Writer persists control events to durable storage.
type Writer interface {
	Append(e control.Event) error
	Close() error
}

// Reader retrieves past activation data from storage.
type Reader interface {
	Activations() ([]ActivationSummary, error)
	ActivationLog(n int) ([]control.Event, error)
	SessionSummary() (SessionSummary, error)
}

// Store combines Writer and Reader into a single session-scoped handle.
type Store interface {
	Writer
	Reader
}

// ActivationSummary summarises one completed mode activation: the span
// from a mode entering to it exiting on the next switch.
type ActivationSummary struct {
	Number   int
	Mode     string
	FromMode string  // mode that was active before, "" for the first activation
	Duration float64 // seconds the mode was active
	StartAt  time.Time
	EndAt    time.Time
}

// SessionSummary summarises the current session.
type SessionSummary struct {
	SessionID   string
	StartedAt   time.Time
	Activations int    // completed activations
	ActiveMode  string // mode currently entered, "" before the first selection
	Overruns    int64
}
