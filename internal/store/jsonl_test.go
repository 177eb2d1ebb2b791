package store_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mars1523/marsctl/internal/control"
	"github.com/mars1523/marsctl/internal/store"
)

// Compile-time check: *JSONL implements Store.
var _ store.Store = (*store.JSONL)(nil)

func TestNewJSONL_CreatesFile(t *testing.T) {
	dir := t.TempDir()
	s, err := store.NewJSONL(dir)
	if err != nil {
		t.Fatalf("NewJSONL: %v", err)
	}
	defer func() { _ = s.Close() }()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 file in dir, got %d", len(entries))
	}
	if ext := filepath.Ext(entries[0].Name()); ext != ".jsonl" {
		t.Errorf("expected .jsonl extension, got %q", ext)
	}
}

func TestNewJSONL_CreatesDir(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "subdir", "logs")
	s, err := store.NewJSONL(dir)
	if err != nil {
		t.Fatalf("NewJSONL on non-existent dir: %v", err)
	}
	defer func() { _ = s.Close() }()

	if _, err := os.Stat(dir); err != nil {
		t.Errorf("expected dir to exist after NewJSONL: %v", err)
	}
}

// activate appends the event sequence for switching into mode at time now.
func activate(t *testing.T, s store.Writer, from, to string, now time.Time, held float64) {
	t.Helper()
	if from != "" {
		if err := s.Append(control.Event{Kind: control.EventModeExit, Timestamp: now, Mode: from, Duration: held}); err != nil {
			t.Fatalf("Append exit: %v", err)
		}
	}
	if err := s.Append(control.Event{Kind: control.EventModeEnter, Timestamp: now, Mode: to, FromMode: from}); err != nil {
		t.Fatalf("Append enter: %v", err)
	}
}

func TestAppendAndActivationLog(t *testing.T) {
	dir := t.TempDir()
	s, err := store.NewJSONL(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = s.Close() }()

	now := time.Now()
	activate(t, s, "", "Arcade", now, 0)
	_ = s.Append(control.Event{Kind: control.EventHeartbeat, Timestamp: now, Ticks: 50, RateHz: 49.8})
	activate(t, s, "Arcade", "Tank", now.Add(2*time.Second), 2.0)

	got, err := s.ActivationLog(1)
	if err != nil {
		t.Fatalf("ActivationLog(1): %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 events, got %d", len(got))
	}
	if got[0].Kind != control.EventModeEnter || got[0].Mode != "Arcade" {
		t.Errorf("got[0] = %+v, want Arcade enter", got[0])
	}
	if got[1].Kind != control.EventHeartbeat {
		t.Errorf("got[1].Kind: expected EventHeartbeat, got %v", got[1].Kind)
	}
	if got[1].Ticks != 50 {
		t.Errorf("got[1].Ticks: expected 50, got %d", got[1].Ticks)
	}
	if got[2].Kind != control.EventModeExit {
		t.Errorf("got[2].Kind: expected EventModeExit, got %v", got[2].Kind)
	}
}

func TestActivationLog_NotFound(t *testing.T) {
	dir := t.TempDir()
	s, err := store.NewJSONL(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = s.Close() }()

	// Activation 1 is open but not completed.
	activate(t, s, "", "Arcade", time.Now(), 0)

	if _, err := s.ActivationLog(1); err == nil {
		t.Error("expected error for an open activation")
	}
	if _, err := s.ActivationLog(99); err == nil {
		t.Error("expected error for an unknown activation")
	}
}

func TestActivations(t *testing.T) {
	dir := t.TempDir()
	s, err := store.NewJSONL(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = s.Close() }()

	now := time.Now()
	modes := []string{"Arcade", "Tank", "Auto", "Arcade"}
	prev := ""
	for i, m := range modes {
		activate(t, s, prev, m, now.Add(time.Duration(i)*time.Second), 1.0)
		prev = m
	}

	acts, err := s.Activations()
	if err != nil {
		t.Fatal(err)
	}
	// The fourth activation is still open.
	if len(acts) != 3 {
		t.Fatalf("expected 3 completed activations, got %d", len(acts))
	}
	for i, a := range acts {
		if a.Number != i+1 {
			t.Errorf("acts[%d].Number: expected %d, got %d", i, i+1, a.Number)
		}
		if a.Mode != modes[i] {
			t.Errorf("acts[%d].Mode: expected %q, got %q", i, modes[i], a.Mode)
		}
		if a.Duration != 1.0 {
			t.Errorf("acts[%d].Duration: expected 1.0, got %v", i, a.Duration)
		}
	}
	if acts[1].FromMode != "Arcade" {
		t.Errorf("acts[1].FromMode: expected Arcade, got %q", acts[1].FromMode)
	}
}

func TestSessionSummary(t *testing.T) {
	dir := t.TempDir()
	s, err := store.NewJSONL(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = s.Close() }()

	now := time.Now()
	activate(t, s, "", "Arcade", now, 0)
	activate(t, s, "Arcade", "Tank", now, 3.5)
	_ = s.Append(control.Event{Kind: control.EventOverrun, Timestamp: now, Overruns: 2})

	sum, err := s.SessionSummary()
	if err != nil {
		t.Fatal(err)
	}
	if sum.SessionID == "" {
		t.Error("expected non-empty session id")
	}
	if sum.Activations != 1 {
		t.Errorf("Activations: expected 1, got %d", sum.Activations)
	}
	if sum.ActiveMode != "Tank" {
		t.Errorf("ActiveMode: expected Tank, got %q", sum.ActiveMode)
	}
	if sum.Overruns != 2 {
		t.Errorf("Overruns: expected 2, got %d", sum.Overruns)
	}
}

func TestExitWithoutEnterIsIgnored(t *testing.T) {
	dir := t.TempDir()
	s, err := store.NewJSONL(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = s.Close() }()

	// A stray exit with no open activation must not corrupt the index.
	_ = s.Append(control.Event{Kind: control.EventModeExit, Timestamp: time.Now(), Mode: "Arcade"})

	acts, err := s.Activations()
	if err != nil {
		t.Fatal(err)
	}
	if len(acts) != 0 {
		t.Errorf("expected no activations, got %d", len(acts))
	}
}

func TestEnforceRetention(t *testing.T) {
	t.Run("removes oldest files", func(t *testing.T) {
		dir := t.TempDir()
		for i := 0; i < 5; i++ {
			name := fmt.Sprintf("%d-100.jsonl", 1700000000+i)
			if err := os.WriteFile(filepath.Join(dir, name), []byte("{}\n"), 0644); err != nil {
				t.Fatal(err)
			}
		}

		if err := store.EnforceRetention(dir, 2); err != nil {
			t.Fatal(err)
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 2 {
			t.Fatalf("expected 2 files after retention, got %d", len(entries))
		}
		if entries[0].Name() != "1700000003-100.jsonl" {
			t.Errorf("expected newest files kept, got %s", entries[0].Name())
		}
	})

	t.Run("zero keeps everything", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "1-1.jsonl"), []byte("{}\n"), 0644); err != nil {
			t.Fatal(err)
		}
		if err := store.EnforceRetention(dir, 0); err != nil {
			t.Fatal(err)
		}
		entries, _ := os.ReadDir(dir)
		if len(entries) != 1 {
			t.Errorf("expected file kept with maxKeep=0, got %d files", len(entries))
		}
	})

	t.Run("missing dir is not an error", func(t *testing.T) {
		if err := store.EnforceRetention(filepath.Join(t.TempDir(), "nope"), 3); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("ignores non-jsonl files", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
		if err := store.EnforceRetention(dir, 1); err != nil {
			t.Fatal(err)
		}
		if _, err := os.Stat(filepath.Join(dir, "notes.txt")); err != nil {
			t.Errorf("non-jsonl file removed: %v", err)
		}
	})
}
