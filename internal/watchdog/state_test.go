package watchdog

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSaveAndLoadState(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 8, 26, 9, 15, 0, 0, time.UTC)

	original := State{
		PID:         12345,
		Restarts:    2,
		LastEventAt: now,
		ActiveMode:  "Tank Drive",
		Ticks:       4200,
		Overruns:    3,
		StartedAt:   now.Add(-time.Minute),
	}

	if err := SaveState(dir, original); err != nil {
		t.Fatalf("SaveState: %v", err)
	}

	loaded, err := LoadState(dir)
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}

	if loaded.PID != original.PID {
		t.Errorf("PID = %d, want %d", loaded.PID, original.PID)
	}
	if loaded.Restarts != original.Restarts {
		t.Errorf("Restarts = %d, want %d", loaded.Restarts, original.Restarts)
	}
	if !loaded.LastEventAt.Equal(original.LastEventAt) {
		t.Errorf("LastEventAt = %v, want %v", loaded.LastEventAt, original.LastEventAt)
	}
	if loaded.ActiveMode != original.ActiveMode {
		t.Errorf("ActiveMode = %q, want %q", loaded.ActiveMode, original.ActiveMode)
	}
	if loaded.Ticks != original.Ticks {
		t.Errorf("Ticks = %d, want %d", loaded.Ticks, original.Ticks)
	}
}

func TestLoadState_NoFile(t *testing.T) {
	dir := t.TempDir()
	state, err := LoadState(dir)
	if err != nil {
		t.Fatalf("LoadState with no file should not error: %v", err)
	}
	if state.PID != 0 {
		t.Errorf("expected zero state, got PID=%d", state.PID)
	}
}

func TestSaveState_CreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	stateDir := filepath.Join(dir, stateDirName)

	if _, err := os.Stat(stateDir); !os.IsNotExist(err) {
		t.Fatal("expected .marsctl to not exist initially")
	}

	if err := SaveState(dir, State{PID: 1}); err != nil {
		t.Fatalf("SaveState: %v", err)
	}

	if _, err := os.Stat(stateDir); os.IsNotExist(err) {
		t.Error("expected .marsctl directory to be created")
	}
}

func TestLoadState_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	stateDir := filepath.Join(dir, stateDirName)
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(stateDir, stateFileName), []byte("{invalid"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadState(dir); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}
