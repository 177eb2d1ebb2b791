package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mars1523/marsctl/internal/config"
	"github.com/mars1523/marsctl/internal/control"
	"github.com/mars1523/marsctl/internal/watchdog"
)

func TestStateTracker_TracksAndPersists(t *testing.T) {
	dir := t.TempDir()
	st := newStateTracker(dir)

	if st.state.PID == 0 {
		t.Error("expected non-zero PID")
	}
	if st.state.StartedAt.IsZero() {
		t.Error("expected StartedAt to be set")
	}

	st.track(control.Event{Kind: control.EventModeEnter, Mode: "Tank Drive"})
	st.track(control.Event{Kind: control.EventHeartbeat, Ticks: 500, Overruns: 2})

	state, err := watchdog.LoadState(dir)
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if state.ActiveMode != "Tank Drive" {
		t.Errorf("ActiveMode = %q, want %q", state.ActiveMode, "Tank Drive")
	}
	if state.Ticks != 500 {
		t.Errorf("Ticks = %d, want 500", state.Ticks)
	}
	if state.Overruns != 2 {
		t.Errorf("Overruns = %d, want 2", state.Overruns)
	}
}

func TestStateTracker_ZeroValuesPreserved(t *testing.T) {
	dir := t.TempDir()
	st := newStateTracker(dir)

	st.track(control.Event{Kind: control.EventHeartbeat, Ticks: 100})
	st.track(control.Event{Kind: control.EventInfo, Message: "just info"})

	if st.state.Ticks != 100 {
		t.Errorf("Ticks = %d, want 100 (should not be overwritten by zero)", st.state.Ticks)
	}
}

func TestStateTracker_Finish(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantClean bool
	}{
		{"nil error is clean", nil, true},
		{"context cancellation is clean", context.Canceled, true},
		{"real error is not clean", errors.New("tick: hardware fault"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			st := newStateTracker(dir)
			st.finish(tt.err)

			state, err := watchdog.LoadState(dir)
			if err != nil {
				t.Fatalf("LoadState: %v", err)
			}
			if state.Clean != tt.wantClean {
				t.Errorf("Clean = %v, want %v", state.Clean, tt.wantClean)
			}
			if state.FinishedAt.IsZero() {
				t.Error("expected FinishedAt to be set")
			}
		})
	}
}

func TestTrackerFor_WatchdogDisabledPersistsState(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig()
	wd := watchdog.New(cfg.Watchdog, dir, nil)

	track, finish := trackerFor(cfg, wd, dir)
	track(control.Event{Kind: control.EventModeEnter, Mode: "Arcade Drive"})
	finish(nil)

	state, err := watchdog.LoadState(dir)
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if state.ActiveMode != "Arcade Drive" {
		t.Errorf("ActiveMode = %q, want %q", state.ActiveMode, "Arcade Drive")
	}
	if !state.Clean {
		t.Error("expected Clean after nil finish")
	}
}

func TestSelectionForwarder(t *testing.T) {
	ch := make(chan int, 1)
	var running atomic.Bool
	fwd := &selectionForwarder{ch: ch, running: &running}

	if fwd.IsRunning() {
		t.Error("IsRunning() = true before the loop started")
	}
	running.Store(true)
	if !fwd.IsRunning() {
		t.Error("IsRunning() = false while the loop is running")
	}

	fwd.Select(2)
	select {
	case got := <-ch:
		if got != 2 {
			t.Errorf("forwarded id = %d, want 2", got)
		}
	default:
		t.Fatal("expected a selection on the channel")
	}

	// A full channel drops the pick instead of blocking.
	fwd.Select(1)
	fwd.Select(3)
	if got := <-ch; got != 1 {
		t.Errorf("forwarded id = %d, want 1", got)
	}
	select {
	case got := <-ch:
		t.Errorf("unexpected extra selection %d", got)
	default:
	}
}

func TestStartFeed_Disabled(t *testing.T) {
	closeFn, done, err := startFeed("", nil, nil, nil, nil)
	if err != nil {
		t.Fatalf("startFeed: %v", err)
	}
	if closeFn != nil || done != nil {
		t.Error("expected nil close and done for a disabled feed")
	}
}

func TestStartFeed_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.jsonl")
	_, _, err := startFeed(path, nil, nil, nil, nil)
	if err == nil {
		t.Fatal("expected error for missing feed file")
	}
}

func TestStartFeed_CommandsReachTheLoop(t *testing.T) {
	cfg := testConfig(
		config.ModeConfig{Kind: "arcade", Priority: 50},
		config.ModeConfig{Kind: "tank", Priority: 40},
		config.ModeConfig{Kind: "auto", Priority: 10},
	)
	modes, err := buildRegistry(cfg)
	if err != nil {
		t.Fatalf("buildRegistry: %v", err)
	}
	mgr, err := newManager(cfg, nil, nil, modes)
	if err != nil {
		t.Fatalf("newManager: %v", err)
	}

	lines := strings.Join([]string{
		`{"cmd":"select","mode":"Tank Drive"}`,
		`{"cmd":"select","id":2}`,
		`{"cmd":"select","mode":"Warp Drive"}`,
		`not json`,
		`{"cmd":"stop"}`,
	}, "\n")
	path := filepath.Join(t.TempDir(), "feed.jsonl")
	if err := os.WriteFile(path, []byte(lines), 0644); err != nil {
		t.Fatalf("write feed: %v", err)
	}

	selections := make(chan int, 16)
	events := make(chan control.Event, 16)
	var stopped atomic.Int32
	stop := func() { stopped.Add(1) }

	closeFn, done, err := startFeed(path, mgr, selections, events, stop)
	if err != nil {
		t.Fatalf("startFeed: %v", err)
	}
	defer closeFn()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("feed did not finish")
	}

	var ids []int
	for {
		select {
		case id := <-selections:
			ids = append(ids, id)
			continue
		default:
		}
		break
	}
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 2 {
		t.Errorf("selections = %v, want [1 2]", ids)
	}

	if got := stopped.Load(); got != 1 {
		t.Errorf("stop called %d times, want 1", got)
	}

	var msgs []string
	for {
		select {
		case e := <-events:
			if e.Kind != control.EventFeed {
				t.Errorf("event kind = %v, want EventFeed", e.Kind)
			}
			msgs = append(msgs, e.Message)
			continue
		default:
		}
		break
	}
	joined := strings.Join(msgs, "\n")
	for _, want := range []string{
		"select Tank Drive",
		"select id 2",
		`unknown mode "Warp Drive"`,
		"malformed line",
		"stop requested",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("feed events should mention %q\ngot:\n%s", want, joined)
		}
	}
}

func TestFormatEventLine(t *testing.T) {
	ts := time.Date(2026, 3, 14, 15, 4, 5, 0, time.UTC)

	tests := []struct {
		name     string
		event    control.Event
		contains []string
	}{
		{
			name:     "mode enter with previous mode",
			event:    control.Event{Kind: control.EventModeEnter, Timestamp: ts, Mode: "Tank Drive", FromMode: "Arcade Drive"},
			contains: []string{"[15:04:05]", "→ Tank Drive", "(was Arcade Drive)"},
		},
		{
			name:     "mode enter without previous mode",
			event:    control.Event{Kind: control.EventModeEnter, Timestamp: ts, Mode: "Arcade Drive"},
			contains: []string{"→ Arcade Drive"},
		},
		{
			name:     "mode exit with hold duration",
			event:    control.Event{Kind: control.EventModeExit, Timestamp: ts, Mode: "Autonomous", Duration: 12.5},
			contains: []string{"← Autonomous after 12.5s"},
		},
		{
			name:     "overrun",
			event:    control.Event{Kind: control.EventOverrun, Timestamp: ts, Message: "tick took 31ms"},
			contains: []string{"⏱ tick took 31ms"},
		},
		{
			name:     "error",
			event:    control.Event{Kind: control.EventError, Timestamp: ts, Message: "enter: motor fault"},
			contains: []string{"✗ enter: motor fault"},
		},
		{
			name:     "watchdog",
			event:    control.Event{Kind: control.EventWatchdog, Timestamp: ts, Message: "restarting in 5s"},
			contains: []string{"watchdog: restarting in 5s"},
		},
		{
			name:     "feed",
			event:    control.Event{Kind: control.EventFeed, Timestamp: ts, Message: "select Tank Drive"},
			contains: []string{"feed: select Tank Drive"},
		},
		{
			name:     "plain info",
			event:    control.Event{Kind: control.EventInfo, Timestamp: ts, Message: "hello"},
			contains: []string{"[15:04:05]", "hello"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatEventLine(tt.event)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("formatEventLine() = %q, want it to contain %q", got, want)
				}
			}
		})
	}
}

func TestFormatEventLine_ZeroTimestamp(t *testing.T) {
	got := formatEventLine(control.Event{Kind: control.EventInfo, Message: "x"})
	if strings.Contains(got, "00:00:00") {
		t.Errorf("zero timestamp should be replaced, got %q", got)
	}
}

func TestOpenSession_Retention(t *testing.T) {
	dir := t.TempDir()
	sessDir := filepath.Join(dir, ".marsctl", "sessions")
	if err := os.MkdirAll(sessDir, 0755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"1000-1.jsonl", "1001-1.jsonl", "1002-1.jsonl"} {
		if err := os.WriteFile(filepath.Join(sessDir, name), []byte("{}\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	cfg := testConfig()
	cfg.TUI.LogRetention = 2

	sess, err := openSession(cfg, dir)
	if err != nil {
		t.Fatalf("openSession: %v", err)
	}
	defer sess.Close()

	entries, err := os.ReadDir(sessDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("len(entries) = %d, want 2 (got %v)", len(entries), names)
	}
	for _, e := range entries {
		if e.Name() == "1000-1.jsonl" || e.Name() == "1001-1.jsonl" {
			t.Errorf("old session %s should have been removed", e.Name())
		}
	}
}
