// Package config parses marsctl.toml project configuration.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultAccentColor is the default TUI accent color (Mars red).
const DefaultAccentColor = "#D9480F"

// hexColorRe matches a 6-digit hex color string like "#D9480F".
var hexColorRe = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// knownModeKinds are the built-in mode implementations a [[mode]] block may
// reference.
var knownModeKinds = map[string]bool{
	"arcade": true,
	"tank":   true,
	"auto":   true,
}

// Config is the top-level marsctl.toml configuration.
type Config struct {
	Project       ProjectConfig       `toml:"project"`
	Control       ControlConfig       `toml:"control"`
	Drive         DriveConfig         `toml:"drive"`
	Modes         []ModeConfig        `toml:"mode"`
	Watchdog      WatchdogConfig      `toml:"watchdog"`
	TUI           TUIConfig           `toml:"tui"`
	Feed          FeedConfig          `toml:"feed"`
	Notifications NotificationsConfig `toml:"notifications"`
}

// ProjectConfig identifies the robot project.
type ProjectConfig struct {
	Name string `toml:"name"`
}

// ControlConfig tunes the control loop and the mode registry.
type ControlConfig struct {
	TickRateHz       int    `toml:"tick_rate_hz"`
	DashboardKey     string `toml:"dashboard_key"`
	StrictValidation bool   `toml:"strict_validation"` // fail startup when any mode is dropped during validation
}

// TickPeriod returns the control-loop period derived from tick_rate_hz.
func (c ControlConfig) TickPeriod() time.Duration {
	if c.TickRateHz <= 0 {
		return 20 * time.Millisecond
	}
	return time.Second / time.Duration(c.TickRateHz)
}

// DriveConfig caps the simulated drivetrain outputs.
type DriveConfig struct {
	MaxSpeed    float64 `toml:"max_speed"`     // normalized [0, 1]
	MaxTurnRate float64 `toml:"max_turn_rate"` // normalized [0, 1]
}

// ModeConfig declares one control mode entry for the chooser.
type ModeConfig struct {
	Kind     string `toml:"kind"`     // built-in implementation: "arcade", "tank", "auto"
	Label    string `toml:"label"`    // chooser label; empty = the kind's default label
	Priority int    `toml:"priority"` // higher sorts first in the chooser
	Disabled bool   `toml:"disabled"`
}

// WatchdogConfig controls the control-loop supervisor.
type WatchdogConfig struct {
	Enabled               bool `toml:"enabled"`
	StallTimeoutMS        int  `toml:"stall_timeout_ms"` // 0 = no stall detection
	MaxRestarts           int  `toml:"max_restarts"`
	RestartBackoffSeconds int  `toml:"restart_backoff_seconds"`
}

// StallTimeout returns the stall detection window as a duration.
func (c WatchdogConfig) StallTimeout() time.Duration {
	return time.Duration(c.StallTimeoutMS) * time.Millisecond
}

// TUIConfig controls the terminal dashboard appearance.
type TUIConfig struct {
	AccentColor  string `toml:"accent_color"`
	LogRetention int    `toml:"log_retention"` // number of session logs to keep; 0 = unlimited
}

// FeedConfig controls the remote selection feed used in headless runs.
// Path is a FIFO or file of newline-JSON commands; "-" reads stdin and
// empty disables the feed.
type FeedConfig struct {
	Path string `toml:"path"`
}

// NotificationsConfig controls webhook/ntfy.sh notifications.
type NotificationsConfig struct {
	URL      string `toml:"url"`
	OnSwitch bool   `toml:"on_switch"`
	OnError  bool   `toml:"on_error"`
	OnStop   bool   `toml:"on_stop"`
}

// Validate checks the configuration for issues that would cause confusing
// runtime failures. It returns all found issues joined together.
func (c *Config) Validate() error {
	var errs []error

	if c.Control.TickRateHz < 1 || c.Control.TickRateHz > 1000 {
		errs = append(errs, fmt.Errorf("control.tick_rate_hz must be in [1, 1000]"))
	}
	if c.Control.DashboardKey == "" {
		errs = append(errs, fmt.Errorf("control.dashboard_key must not be empty"))
	}

	if c.Drive.MaxSpeed < 0 || c.Drive.MaxSpeed > 1 {
		errs = append(errs, fmt.Errorf("drive.max_speed must be in [0, 1]"))
	}
	if c.Drive.MaxTurnRate < 0 || c.Drive.MaxTurnRate > 1 {
		errs = append(errs, fmt.Errorf("drive.max_turn_rate must be in [0, 1]"))
	}

	if len(c.Modes) == 0 {
		errs = append(errs, fmt.Errorf("at least one [[mode]] block is required"))
	}
	for i, m := range c.Modes {
		if !knownModeKinds[m.Kind] {
			errs = append(errs, fmt.Errorf("mode %d: unknown kind %q (want arcade, tank, or auto)", i, m.Kind))
		}
	}

	if c.Watchdog.Enabled {
		if c.Watchdog.StallTimeoutMS < 0 {
			errs = append(errs, fmt.Errorf("watchdog.stall_timeout_ms must be >= 0 (0 = no stall detection)"))
		}
		if c.Watchdog.MaxRestarts < 0 {
			errs = append(errs, fmt.Errorf("watchdog.max_restarts must be >= 0"))
		}
		if c.Watchdog.RestartBackoffSeconds < 0 {
			errs = append(errs, fmt.Errorf("watchdog.restart_backoff_seconds must be >= 0"))
		}
	}

	if c.TUI.AccentColor != "" && !hexColorRe.MatchString(c.TUI.AccentColor) {
		errs = append(errs, fmt.Errorf("tui.accent_color must be a hex color (e.g. \"#D9480F\")"))
	}
	if c.TUI.LogRetention < 0 {
		errs = append(errs, fmt.Errorf("tui.log_retention must be >= 0 (0 = unlimited)"))
	}

	if c.Notifications.URL != "" {
		u, parseErr := url.ParseRequestURI(c.Notifications.URL)
		if parseErr != nil || (u.Scheme != "http" && u.Scheme != "https") {
			errs = append(errs, fmt.Errorf("notifications.url must be a valid http or https URL"))
		}
	}

	return errors.Join(errs...)
}

// Defaults returns a Config with sensible defaults: a 50 Hz loop and the
// three built-in modes with arcade drive as the default choice.
func Defaults() Config {
	return Config{
		Project: ProjectConfig{Name: ""},
		Control: ControlConfig{
			TickRateHz:       50,
			DashboardKey:     "Control Mode",
			StrictValidation: false,
		},
		Drive: DriveConfig{
			MaxSpeed:    1.0,
			MaxTurnRate: 1.0,
		},
		Modes: []ModeConfig{
			{Kind: "arcade", Priority: 10},
			{Kind: "tank", Priority: 5},
			{Kind: "auto", Priority: 0},
		},
		Watchdog: WatchdogConfig{
			Enabled:               true,
			StallTimeoutMS:        5000,
			MaxRestarts:           3,
			RestartBackoffSeconds: 5,
		},
		TUI: TUIConfig{
			AccentColor:  DefaultAccentColor,
			LogRetention: 20,
		},
		Feed: FeedConfig{Path: ""},
		Notifications: NotificationsConfig{
			URL:      "",
			OnSwitch: true,
			OnError:  true,
			OnStop:   true,
		},
	}
}

// Load reads marsctl.toml from the given path. If path is empty, it walks up
// from the current working directory looking for marsctl.toml. Returns an
// error if the file contains unknown keys (likely typos).
func Load(path string) (*Config, error) {
	if path == "" {
		found, err := findConfig()
		if err != nil {
			return nil, err
		}
		path = found
	}

	cfg := Defaults()
	// A config that declares its own [[mode]] blocks replaces the default
	// set rather than appending to it.
	cfg.Modes = nil
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	if len(cfg.Modes) == 0 {
		cfg.Modes = Defaults().Modes
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("config: unknown keys in %s: %s (possible typos?)", path, strings.Join(keys, ", "))
	}

	if cfg.Project.Name == "" {
		cfg.Project.Name = filepath.Base(filepath.Dir(path))
	}

	return &cfg, nil
}

// findConfig walks up from the current directory looking for marsctl.toml.
func findConfig() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("config: get working directory: %w", err)
	}

	for {
		candidate := filepath.Join(dir, "marsctl.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("config: marsctl.toml not found (searched up from %s)", dir)
		}
		dir = parent
	}
}

// InitFile writes a default marsctl.toml template to the given directory.
func InitFile(dir string) (string, error) {
	path := filepath.Join(dir, "marsctl.toml")
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("config: marsctl.toml already exists at %s", path)
	}

	content := `# marsctl.toml: robot control-mode service configuration
# Place this file in the root of your robot project.

[project]
name = ""

[control]
tick_rate_hz = 50              # control loop cadence
dashboard_key = "Control Mode" # chooser label on the dashboard
strict_validation = false      # true = abort startup if any mode fails validation

[drive]
max_speed = 1.0     # normalized drivetrain output cap
max_turn_rate = 1.0

# Modes offered by the chooser. Higher priority sorts first; the
# highest-priority mode is the default choice.
[[mode]]
kind = "arcade"   # single-stick teleop
priority = 10

[[mode]]
kind = "tank"     # two-stick teleop
priority = 5

[[mode]]
kind = "auto"     # scripted autonomous
priority = 0

[watchdog]
enabled = true
stall_timeout_ms = 5000      # restart the loop after this long without output (0 = off)
max_restarts = 3
restart_backoff_seconds = 5

[tui]
accent_color = "#D9480F" # hex color for header/accent elements
log_retention = 20       # number of session logs to keep; 0 = unlimited

[feed]
path = "" # FIFO of newline-JSON selection commands; "-" = stdin, empty = disabled

[notifications]
url = ""         # ntfy.sh topic URL or any HTTP webhook (empty = disabled)
on_switch = true # notify on each mode switch
on_error = true  # notify on loop error
on_stop = true   # notify when the loop finishes or is stopped
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("config: write %s: %w", path, err)
	}
	return path, nil
}
