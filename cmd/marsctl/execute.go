package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mars1523/marsctl/internal/config"
	"github.com/mars1523/marsctl/internal/control"
	"github.com/mars1523/marsctl/internal/drive"
	"github.com/mars1523/marsctl/internal/watchdog"
)

// defaultLabels maps built-in mode kinds to their chooser labels when the
// config does not set one.
var defaultLabels = map[string]string{
	"arcade": "Arcade Drive",
	"tank":   "Tank Drive",
	"auto":   "Autonomous",
}

// executeRun loads config, builds the mode registry, and runs the loop with
// or without the dashboard.
func executeRun(maxTicks int64, headless bool) error {
	cfg, err := config.Load("")
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	dir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	if headless {
		return runHeadless(ctx, cancel, cfg, dir, maxTicks)
	}
	return runDashboard(ctx, cancel, cfg, dir, maxTicks)
}

// buildRegistry constructs the configured modes over a shared simulated
// drivetrain and input source.
func buildRegistry(cfg *config.Config) ([]control.Interface, error) {
	d := drive.NewSimDrive()
	in := drive.NewSimInput()
	lim := drive.Limits{MaxSpeed: cfg.Drive.MaxSpeed, MaxTurnRate: cfg.Drive.MaxTurnRate}

	var modes []control.Interface
	for _, mc := range cfg.Modes {
		if mc.Disabled {
			continue
		}
		label := mc.Label
		if label == "" {
			label = defaultLabels[mc.Kind]
		}
		switch mc.Kind {
		case "arcade":
			modes = append(modes, drive.NewArcade(label, mc.Priority, d, in, lim))
		case "tank":
			modes = append(modes, drive.NewTank(label, mc.Priority, d, in, lim))
		case "auto":
			modes = append(modes, drive.NewAutonomous(label, mc.Priority, d, lim, drive.DefaultScript(cfg.Control.TickRateHz)))
		default:
			return nil, fmt.Errorf("mode kind %q not recognized", mc.Kind)
		}
	}
	if len(modes) == 0 {
		return nil, errors.New("no enabled control modes in config")
	}
	return modes, nil
}

// newManager builds the mode registry with the validation strictness the
// config asks for.
func newManager(cfg *config.Config, chooser control.Chooser, events chan<- control.Event, modes []control.Interface) (*control.Manager, error) {
	if cfg.Control.StrictValidation {
		return control.NewStrict(chooser, events, modes...)
	}
	return control.New(chooser, events, modes...)
}

// showStatus reads .marsctl/watchdog-state.json and prints a summary.
func showStatus() error {
	dir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	state, err := watchdog.LoadState(dir)
	if err != nil {
		return err
	}

	if state.PID == 0 && state.Ticks == 0 {
		fmt.Println("No watchdog state found. Run 'marsctl run' first.")
		return nil
	}

	fmt.Println("marsctl Status")
	fmt.Println("──────────────")

	if state.ActiveMode != "" {
		fmt.Printf("  %-20s %s\n", "Active mode:", state.ActiveMode)
	}
	fmt.Printf("  %-20s %d\n", "Ticks:", state.Ticks)
	if state.Overruns > 0 {
		fmt.Printf("  %-20s %d\n", "Overruns:", state.Overruns)
	}
	if state.Restarts > 0 {
		fmt.Printf("  %-20s %d\n", "Restarts:", state.Restarts)
	}

	running := !state.StartedAt.IsZero() && state.FinishedAt.IsZero()

	if running {
		elapsed := time.Since(state.StartedAt).Round(time.Second)
		fmt.Printf("  %-20s %s (running)\n", "Duration:", elapsed)
	} else if !state.StartedAt.IsZero() && !state.FinishedAt.IsZero() {
		dur := state.FinishedAt.Sub(state.StartedAt).Round(time.Second)
		fmt.Printf("  %-20s %s\n", "Duration:", dur)
	}

	if running && !state.LastEventAt.IsZero() {
		ago := time.Since(state.LastEventAt).Round(time.Second)
		fmt.Printf("  %-20s %s ago\n", "Last event:", ago)
	}

	switch {
	case running:
		fmt.Printf("  %-20s %s\n", "Result:", "running")
	case state.Clean:
		fmt.Printf("  %-20s %s\n", "Result:", "clean")
	default:
		fmt.Printf("  %-20s %s\n", "Result:", "failed")
	}

	return nil
}

// showModes loads the config and prints the registry in chooser order.
func showModes() error {
	cfg, err := config.Load("")
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	modes, err := buildRegistry(cfg)
	if err != nil {
		return err
	}

	mgr, err := newManager(cfg, nil, nil, modes)
	if err != nil {
		return err
	}

	title := cfg.Control.DashboardKey
	fmt.Println(title)
	fmt.Println(strings.Repeat("─", len([]rune(title))))
	for _, info := range mgr.Modes() {
		marker := " "
		if info.Default {
			marker = "*"
		}
		fmt.Printf("  %s %3d  %-24s (id %d)\n", marker, info.Priority, info.Name, info.ID)
	}
	fmt.Println()
	fmt.Println("* default — selected when the loop starts")
	return nil
}

// signalContext returns a context that is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		cancel()
	}()
	return ctx, cancel
}
