// Package feed parses the headless command feed: newline-delimited JSON
// selection commands read from a FIFO, a file, or stdin.
package feed

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"
	"time"
)

// CommandType identifies the kind of feed command.
type CommandType string

const (
	CommandSelect CommandType = "select"
	CommandStop   CommandType = "stop"
	CommandError  CommandType = "error"
)

// Command is a parsed feed line.
type Command struct {
	Type      CommandType
	Timestamp time.Time

	// Select fields: exactly one of Mode or ModeID identifies the target.
	// ModeID is -1 when the command named the mode instead.
	Mode   string
	ModeID int

	// Error fields
	Error string
}

// SelectByName creates a select command targeting a mode by display name.
func SelectByName(name string) Command {
	return Command{Type: CommandSelect, Timestamp: time.Now(), Mode: name, ModeID: -1}
}

// SelectByID creates a select command targeting a mode by registry id.
func SelectByID(id int) Command {
	return Command{Type: CommandSelect, Timestamp: time.Now(), ModeID: id}
}

// StopCommand creates a stop command.
func StopCommand() Command {
	return Command{Type: CommandStop, Timestamp: time.Now(), ModeID: -1}
}

// ErrorCommand creates an error command for a malformed line.
func ErrorCommand(msg string) Command {
	return Command{Type: CommandError, Timestamp: time.Now(), Error: msg, ModeID: -1}
}

// feedLine is the wire format of one feed command.
type feedLine struct {
	Cmd  string `json:"cmd"`
	Mode string `json:"mode"`
	ID   *int   `json:"id"`
}

// ParseStream reads newline-JSON commands from r and sends parsed Commands
// on the returned channel. Blank lines are skipped; malformed lines produce
// an error command rather than stopping the stream. The channel is closed
// when r reaches EOF or a read error.
func ParseStream(r io.Reader) <-chan Command {
	ch := make(chan Command, 16)
	go func() {
		defer close(ch)
		scanner := bufio.NewScanner(r)

		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if cmd, ok := parseLine(line); ok {
				ch <- cmd
			}
		}
	}()
	return ch
}

// parseLine parses a single feed line. Lines with an unknown cmd are
// dropped so future command types do not break older readers.
func parseLine(line string) (Command, bool) {
	var fl feedLine
	if err := json.Unmarshal([]byte(line), &fl); err != nil {
		return ErrorCommand("feed: malformed line: " + err.Error()), true
	}

	switch fl.Cmd {
	case "select":
		if fl.ID != nil {
			return SelectByID(*fl.ID), true
		}
		if fl.Mode == "" {
			return ErrorCommand(`feed: select needs "mode" or "id"`), true
		}
		return SelectByName(fl.Mode), true
	case "stop":
		return StopCommand(), true
	case "":
		return ErrorCommand(`feed: missing "cmd" field`), true
	}
	return Command{}, false
}
