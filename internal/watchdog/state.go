// Package watchdog provides the supervisor that watches the control loop,
// detects crashes and stalls, and restarts it on failure.
package watchdog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// State tracks the watchdog's operational state, persisted to
// .marsctl/watchdog-state.json so `marsctl status` can report on a
// running session from another terminal.
type State struct {
	PID         int       `json:"pid"`
	Restarts    int       `json:"restarts"`
	LastEventAt time.Time `json:"last_event_at"`
	ActiveMode  string    `json:"active_mode"`
	Ticks       int64     `json:"ticks"`
	Overruns    int64     `json:"overruns"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	Clean       bool      `json:"clean"` // loop finished without error
}

// stateFileName is the path within the .marsctl directory.
const stateFileName = "watchdog-state.json"

// stateDirName is the directory that holds the state file.
const stateDirName = ".marsctl"

// LoadState reads the watchdog state from .marsctl/watchdog-state.json in
// dir. Returns a zero State (not an error) if the file does not exist.
func LoadState(dir string) (State, error) {
	path := filepath.Join(dir, stateDirName, stateFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return State{}, nil
		}
		return State{}, fmt.Errorf("watchdog: read state: %w", err)
	}

	var s State
	if jsonErr := json.Unmarshal(data, &s); jsonErr != nil {
		return State{}, fmt.Errorf("watchdog: parse state: %w", jsonErr)
	}
	return s, nil
}

// SaveState writes the watchdog state to .marsctl/watchdog-state.json in
// dir. Creates the .marsctl directory if it does not exist.
// Uses a write-then-rename pattern so concurrent readers never observe a
// partially-written file.
func SaveState(dir string, s State) error {
	stateDir := filepath.Join(dir, stateDirName)
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return fmt.Errorf("watchdog: create state dir: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("watchdog: marshal state: %w", err)
	}

	tmp, err := os.CreateTemp(stateDir, ".watchdog-state-*.tmp")
	if err != nil {
		return fmt.Errorf("watchdog: create temp state: %w", err)
	}
	if _, writeErr := tmp.Write(data); writeErr != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("watchdog: write state: %w", writeErr)
	}
	if closeErr := tmp.Close(); closeErr != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("watchdog: close state: %w", closeErr)
	}
	path := filepath.Join(stateDir, stateFileName)
	if renameErr := os.Rename(tmp.Name(), path); renameErr != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("watchdog: finalize state: %w", renameErr)
	}
	return nil
}
