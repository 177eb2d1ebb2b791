package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mars1523/marsctl/internal/config"
	"github.com/mars1523/marsctl/internal/control"
	"github.com/mars1523/marsctl/internal/feed"
	"github.com/mars1523/marsctl/internal/loop"
	"github.com/mars1523/marsctl/internal/notify"
	"github.com/mars1523/marsctl/internal/store"
	"github.com/mars1523/marsctl/internal/tui"
	"github.com/mars1523/marsctl/internal/watchdog"
)

// runHeadless runs the control loop without the dashboard, draining events
// to stdout. The command feed (if configured) is the only way to switch
// modes in this path.
func runHeadless(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, dir string, maxTicks int64) error {
	events := make(chan control.Event, 128)
	selections := make(chan int, 16)

	modes, err := buildRegistry(cfg)
	if err != nil {
		return err
	}
	var chooser control.OptionSet
	mgr, err := newManager(cfg, &chooser, events, modes)
	if err != nil {
		return err
	}

	sess, err := openSession(cfg, dir)
	if err != nil {
		return err
	}
	defer sess.Close()

	notifier := newNotifier(cfg)
	wd := watchdog.New(cfg.Watchdog, dir, events)
	track, finish := trackerFor(cfg, wd, dir)

	lp := &loop.Loop{
		Control:    mgr,
		Period:     cfg.Control.TickPeriod(),
		Selections: selections,
		Events:     events,
		MaxTicks:   maxTicks,
	}

	// The manager activates nothing until the chooser reports a choice;
	// seed the default so the loop starts in the default mode.
	selections <- 0

	feedClose, feedDone, err := startFeed(cfg.Feed.Path, mgr, selections, events, cancel)
	if err != nil {
		return err
	}

	// Drain events to stdout, the session log, and the notifier.
	drainDone := make(chan struct{})
	go func() {
		defer close(drainDone)
		for e := range events {
			track(e)
			_ = sess.Append(e)
			notifier.Hook(e)
			fmt.Fprintln(os.Stdout, formatEventLine(e))
		}
	}()

	var runErr error
	if cfg.Watchdog.Enabled {
		runErr = wd.Supervise(ctx, lp.Run)
	} else {
		runErr = lp.Run(ctx)
	}
	finish(runErr)

	if feedClose != nil {
		feedClose()
		<-feedDone
	}
	close(events)
	<-drainDone

	if errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}

// runDashboard runs the control loop with the TUI. Loop events are forwarded
// through the state tracker and session log, then sent to the dashboard;
// mode picks travel the other way on the selections channel.
func runDashboard(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, dir string, maxTicks int64) error {
	loopEvents := make(chan control.Event, 128)
	tuiEvents := make(chan control.Event, 128)
	selections := make(chan int, 16)

	modes, err := buildRegistry(cfg)
	if err != nil {
		return err
	}
	var chooser control.OptionSet
	mgr, err := newManager(cfg, &chooser, loopEvents, modes)
	if err != nil {
		return err
	}

	sess, err := openSession(cfg, dir)
	if err != nil {
		return err
	}
	defer sess.Close()

	notifier := newNotifier(cfg)
	wd := watchdog.New(cfg.Watchdog, dir, loopEvents)
	track, finish := trackerFor(cfg, wd, dir)

	lp := &loop.Loop{
		Control:    mgr,
		Period:     cfg.Control.TickPeriod(),
		Selections: selections,
		Events:     loopEvents,
		MaxTicks:   maxTicks,
	}

	selections <- 0

	// Stdin belongs to the dashboard here, so a stdin feed is disabled.
	feedPath := cfg.Feed.Path
	if feedPath == "-" {
		feedPath = ""
	}
	feedClose, feedDone, err := startFeed(feedPath, mgr, selections, loopEvents, cancel)
	if err != nil {
		return err
	}

	var running atomic.Bool
	fwd := &selectionForwarder{ch: selections, running: &running}

	model := tui.New(tuiEvents, sess, cfg.TUI.AccentColor, cfg.Project.Name, dir, mgr.Modes(), cancel, fwd)
	program := tea.NewProgram(model, tea.WithAltScreen())

	// Forward loop events → state tracking → session log → TUI.
	forwardDone := make(chan struct{})
	go func() {
		defer close(forwardDone)
		for e := range loopEvents {
			track(e)
			_ = sess.Append(e)
			notifier.Hook(e)
			select {
			case tuiEvents <- e:
			default:
			}
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		defer close(tuiEvents)
		running.Store(true)
		var runErr error
		if cfg.Watchdog.Enabled {
			runErr = wd.Supervise(ctx, lp.Run)
		} else {
			runErr = lp.Run(ctx)
		}
		running.Store(false)
		finish(runErr)

		if feedClose != nil {
			feedClose()
			<-feedDone
		}
		close(loopEvents)
		<-forwardDone
		errCh <- runErr
	}()

	tuiErr := finishTUI(program)
	cancel()
	if tuiErr != nil {
		return tuiErr
	}

	loopErr := <-errCh
	if loopErr != nil && !errors.Is(loopErr, context.Canceled) {
		return loopErr
	}
	return nil
}

// finishTUI runs the bubbletea program and returns any error the dashboard
// recorded. Context cancellation errors are suppressed since they indicate
// normal shutdown (user quit, signal).
func finishTUI(program *tea.Program) error {
	finalModel, err := program.Run()
	if err != nil {
		return fmt.Errorf("tui: %w", err)
	}

	if m, ok := finalModel.(tui.Model); ok && m.Err() != nil {
		if errors.Is(m.Err(), context.Canceled) {
			return nil
		}
		return m.Err()
	}

	return nil
}

// openSession opens the session JSONL log under .marsctl/sessions and
// applies the configured retention.
func openSession(cfg *config.Config, dir string) (*store.JSONL, error) {
	sessDir := filepath.Join(dir, ".marsctl", "sessions")
	sess, err := store.NewJSONL(sessDir)
	if err != nil {
		return nil, err
	}
	if cfg.TUI.LogRetention > 0 {
		if err := store.EnforceRetention(sessDir, cfg.TUI.LogRetention); err != nil {
			sess.Close()
			return nil, err
		}
	}
	return sess, nil
}

// newNotifier builds the webhook notifier from config. A Notifier with an
// empty URL is inert, so this is safe to wire unconditionally.
func newNotifier(cfg *config.Config) *notify.Notifier {
	n := cfg.Notifications
	return notify.New(n.URL, cfg.Project.Name, n.OnSwitch, n.OnError, n.OnStop)
}

// trackerFor returns the per-event state update and the run-finished hook.
// Under the watchdog the supervisor owns state persistence; otherwise a
// plain tracker keeps .marsctl/watchdog-state.json current so
// `marsctl status` works either way.
func trackerFor(cfg *config.Config, wd *watchdog.Watchdog, dir string) (func(control.Event), func(error)) {
	if cfg.Watchdog.Enabled {
		track := func(e control.Event) {
			if e.Kind != control.EventWatchdog {
				wd.UpdateState(e)
			}
		}
		return track, func(error) {}
	}
	st := newStateTracker(dir)
	st.save()
	return st.track, st.finish
}

// stateTracker persists loop state to .marsctl/watchdog-state.json on runs
// where the watchdog is disabled. Only the event drain goroutine calls it.
type stateTracker struct {
	state watchdog.State
	dir   string
}

func newStateTracker(dir string) *stateTracker {
	now := time.Now()
	return &stateTracker{
		dir: dir,
		state: watchdog.State{
			PID:         os.Getpid(),
			StartedAt:   now,
			LastEventAt: now,
		},
	}
}

func (s *stateTracker) track(e control.Event) {
	changed := false
	if e.Ticks > 0 {
		s.state.Ticks = e.Ticks
		changed = true
	}
	if e.Overruns > 0 {
		s.state.Overruns = e.Overruns
		changed = true
	}
	if e.Kind == control.EventModeEnter && e.Mode != "" {
		s.state.ActiveMode = e.Mode
		changed = true
	}
	s.state.LastEventAt = time.Now()
	if changed {
		s.save()
	}
}

func (s *stateTracker) save() { _ = watchdog.SaveState(s.dir, s.state) }

func (s *stateTracker) finish(err error) {
	s.state.FinishedAt = time.Now()
	s.state.Clean = err == nil || errors.Is(err, context.Canceled)
	s.save()
}

// selectionForwarder carries dashboard mode picks to the control loop. It
// satisfies tui.LoopController; Select drops the pick when the channel is
// full rather than blocking the UI.
type selectionForwarder struct {
	ch      chan<- int
	running *atomic.Bool
}

func (f *selectionForwarder) Select(id int) {
	select {
	case f.ch <- id:
	default:
	}
}

func (f *selectionForwarder) IsRunning() bool { return f.running.Load() }

// startFeed wires the command feed into the loop: select commands become
// selection requests, stop invokes stop. Returns a nil close function when
// path is empty (feed disabled). The returned done channel closes when the
// feed reader exits; callers must wait on it before closing the events
// channel.
func startFeed(path string, mgr *control.Manager, selections chan<- int, events chan<- control.Event, stop func()) (func(), <-chan struct{}, error) {
	if path == "" {
		return nil, nil, nil
	}

	var r io.ReadCloser
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, fmt.Errorf("open feed %q: %w", path, err)
		}
		r = f
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for cmd := range feed.ParseStream(r) {
			switch cmd.Type {
			case feed.CommandSelect:
				id := cmd.ModeID
				label := cmd.Mode
				if id < 0 {
					var ok bool
					id, ok = mgr.IDByName(cmd.Mode)
					if !ok {
						emitFeed(events, fmt.Sprintf("unknown mode %q", cmd.Mode))
						continue
					}
				} else if label == "" {
					label = fmt.Sprintf("id %d", id)
				}
				emitFeed(events, "select "+label)
				select {
				case selections <- id:
				default:
				}
			case feed.CommandStop:
				emitFeed(events, "stop requested")
				stop()
			case feed.CommandError:
				emitFeed(events, strings.TrimPrefix(cmd.Error, "feed: "))
			}
		}
	}()

	return func() { _ = r.Close() }, done, nil
}

// emitFeed reports a feed action on the loop event channel, dropping the
// event if the channel is full.
func emitFeed(events chan<- control.Event, msg string) {
	e := control.Event{
		Kind:      control.EventFeed,
		Timestamp: time.Now(),
		Message:   msg,
	}
	select {
	case events <- e:
	default:
	}
}

// formatEventLine renders one event as a plain stdout line for headless
// runs. Mirrors the dashboard's event log without the styling.
func formatEventLine(e control.Event) string {
	ts := e.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	var msg string
	switch e.Kind {
	case control.EventModeEnter:
		msg = "→ " + e.Mode
		if e.FromMode != "" {
			msg = fmt.Sprintf("→ %s (was %s)", e.Mode, e.FromMode)
		}
	case control.EventModeExit:
		msg = fmt.Sprintf("← %s after %.1fs", e.Mode, e.Duration)
	case control.EventInvalidSelection, control.EventModeSkipped:
		msg = "⚠ " + e.Message
	case control.EventOverrun:
		msg = "⏱ " + e.Message
	case control.EventError:
		msg = "✗ " + e.Message
	case control.EventDone:
		msg = "✓ " + e.Message
	case control.EventStopped:
		msg = "⏹ " + e.Message
	case control.EventWatchdog:
		msg = "watchdog: " + e.Message
	case control.EventFeed:
		msg = "feed: " + e.Message
	default:
		msg = e.Message
	}

	return fmt.Sprintf("[%s]  %s", ts.Format("15:04:05"), msg)
}
