package tui

// LoopController lets the dashboard forward mode selections to the control
// loop and query its run state. It is passed to New() and used by the modes
// panel enter handler. Pass nil to disable in-TUI selection; headless runs
// take selections from the command feed instead.
type LoopController interface {
	// Select requests a switch to the mode with the given registry ID. The
	// selection is applied on the loop's next tick.
	Select(id int)

	// IsRunning reports whether the control loop is currently active.
	IsRunning() bool
}
