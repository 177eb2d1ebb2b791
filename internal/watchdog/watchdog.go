package watchdog

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/mars1523/marsctl/internal/config"
	"github.com/mars1523/marsctl/internal/control"
)

// RunFunc is the function the watchdog supervises. Typically wraps
// loop.Loop.Run.
type RunFunc func(ctx context.Context) error

// Watchdog supervises the control loop: crash detection with retry and
// backoff, stall detection via an event timeout, and state persistence.
type Watchdog struct {
	cfg    config.WatchdogConfig
	dir    string
	events chan<- control.Event

	// mu protects lastEventAt and state
	mu          sync.Mutex
	lastEventAt time.Time
	state       State
}

// New creates a Watchdog with the given configuration. dir is the project
// directory where state is persisted.
func New(cfg config.WatchdogConfig, dir string, events chan<- control.Event) *Watchdog {
	return &Watchdog{
		cfg:         cfg,
		dir:         dir,
		events:      events,
		lastEventAt: time.Now(),
	}
}

// Supervise runs the given function under supervision. A crashed loop is
// restarted with backoff up to max_restarts; a stalled loop (no events for
// stall_timeout_ms) is cancelled and treated as a crash.
func (w *Watchdog) Supervise(ctx context.Context, run RunFunc) error {
	now := time.Now()
	w.mu.Lock()
	w.state = State{
		PID:         os.Getpid(),
		LastEventAt: now,
		StartedAt:   now,
	}
	w.mu.Unlock()
	w.saveState()

	var restarts int
	for {
		select {
		case <-ctx.Done():
			w.emit("shutting down")
			return ctx.Err()
		default:
		}

		w.emit(fmt.Sprintf("starting control loop (attempt %d/%d)", restarts+1, w.cfg.MaxRestarts+1))
		w.touch()

		err := w.runWithStallDetection(ctx, run)

		if err == nil {
			w.mu.Lock()
			w.state.Restarts = restarts
			w.state.FinishedAt = time.Now()
			w.state.Clean = true
			w.mu.Unlock()
			w.saveState()
			return nil
		}

		if ctx.Err() != nil {
			w.emit("context cancelled, stopping")
			return ctx.Err()
		}

		restarts++
		w.mu.Lock()
		w.state.Restarts = restarts
		w.mu.Unlock()
		w.saveState()

		w.emit(fmt.Sprintf("control loop exited with error: %v", err))

		if restarts > w.cfg.MaxRestarts {
			w.mu.Lock()
			w.state.FinishedAt = time.Now()
			w.state.Clean = false
			w.mu.Unlock()
			w.saveState()
			w.emit(fmt.Sprintf("max restarts (%d) exceeded, giving up", w.cfg.MaxRestarts))
			return fmt.Errorf("watchdog: max restarts exceeded after %d failures: %w", restarts, err)
		}

		backoff := time.Duration(w.cfg.RestartBackoffSeconds) * time.Second
		w.emit(fmt.Sprintf("restarting in %s (attempt %d/%d)", backoff, restarts+1, w.cfg.MaxRestarts+1))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
}

// runWithStallDetection runs the function with a goroutine that monitors
// for stalls. If no event is observed for the stall timeout, the loop's
// context is cancelled.
func (w *Watchdog) runWithStallDetection(ctx context.Context, run RunFunc) error {
	stallTimeout := w.cfg.StallTimeout()
	if stallTimeout <= 0 {
		return run(ctx)
	}

	loopCtx, loopCancel := context.WithCancel(ctx)
	defer loopCancel()

	stallDone := make(chan struct{})
	go func() {
		defer close(stallDone)
		ticker := time.NewTicker(stallTimeout / 4)
		defer ticker.Stop()

		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
				w.mu.Lock()
				elapsed := time.Since(w.lastEventAt)
				w.mu.Unlock()

				if elapsed >= stallTimeout {
					w.emit(fmt.Sprintf("stall detected, no events for %s, killing loop", stallTimeout))
					loopCancel()
					return
				}
			}
		}
	}()

	err := run(loopCtx)
	loopCancel()
	<-stallDone
	return err
}

// UpdateState updates tracked state fields from a control event and resets
// the stall detection timer. Wire this into the event fan-out so every
// loop event feeds the watchdog.
func (w *Watchdog) UpdateState(e control.Event) {
	w.touch()

	w.mu.Lock()
	if e.Ticks > 0 {
		w.state.Ticks = e.Ticks
	}
	if e.Overruns > 0 {
		w.state.Overruns = e.Overruns
	}
	if e.Kind == control.EventModeEnter && e.Mode != "" {
		w.state.ActiveMode = e.Mode
	}
	w.mu.Unlock()
}

// Snapshot returns a copy of the current state.
func (w *Watchdog) Snapshot() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *Watchdog) touch() {
	w.mu.Lock()
	w.lastEventAt = time.Now()
	w.state.LastEventAt = w.lastEventAt
	w.mu.Unlock()
}

func (w *Watchdog) emit(msg string) {
	if w.events == nil {
		return
	}
	e := control.Event{
		Kind:      control.EventWatchdog,
		Timestamp: time.Now(),
		Message:   msg,
	}
	select {
	case w.events <- e:
	default:
	}
}

func (w *Watchdog) saveState() {
	w.mu.Lock()
	s := w.state
	w.mu.Unlock()

	if err := SaveState(w.dir, s); err != nil {
		w.emit(fmt.Sprintf("failed to save state: %v", err))
	}
}
