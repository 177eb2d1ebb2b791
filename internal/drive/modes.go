package drive

import (
	"fmt"

	"github.com/mars1523/marsctl/internal/control"
)

// stickDeadband is the threshold below which stick input reads as zero.
const stickDeadband = 0.05

// Arcade is single-stick teleop: left stick Y drives forward/back and
// left stick X turns.
type Arcade struct {
	control.Base

	label    string
	priority int
	drive    Drivetrain
	input    InputSource
	limits   Limits
}

// NewArcade returns an arcade teleop mode.
func NewArcade(label string, priority int, d Drivetrain, in InputSource, lim Limits) *Arcade {
	return &Arcade{label: label, priority: priority, drive: d, input: in, limits: lim}
}

func (m *Arcade) DisplayName() string { return m.label }
func (m *Arcade) Priority() int       { return m.priority }

// Exit stops the base so a mode switch never leaves it moving.
func (m *Arcade) Exit() error { return m.drive.Stop() }

func (m *Arcade) Tick() error {
	s := m.input.Left()
	forward := deadband(s.Y, stickDeadband) * m.limits.MaxSpeed
	turn := deadband(s.X, stickDeadband) * m.limits.MaxTurnRate

	left := clamp(forward+turn, -1, 1)
	right := clamp(forward-turn, -1, 1)
	return m.drive.SetPower(left, right)
}

// Tank is two-stick teleop: each stick's Y axis drives its own side.
type Tank struct {
	control.Base

	label    string
	priority int
	drive    Drivetrain
	input    InputSource
	limits   Limits
}

// NewTank returns a tank teleop mode.
func NewTank(label string, priority int, d Drivetrain, in InputSource, lim Limits) *Tank {
	return &Tank{label: label, priority: priority, drive: d, input: in, limits: lim}
}

func (m *Tank) DisplayName() string { return m.label }
func (m *Tank) Priority() int       { return m.priority }

func (m *Tank) Exit() error { return m.drive.Stop() }

func (m *Tank) Tick() error {
	left := deadband(m.input.Left().Y, stickDeadband) * m.limits.MaxSpeed
	right := deadband(m.input.Right().Y, stickDeadband) * m.limits.MaxSpeed
	return m.drive.SetPower(clamp(left, -1, 1), clamp(right, -1, 1))
}

// Step is one segment of an autonomous script: hold the given power for a
// number of control-loop ticks.
type Step struct {
	Left  float64
	Right float64
	Ticks int
}

// Autonomous plays back a scripted sequence of drive steps. When the
// script ends the base stops and further ticks are no-ops until the mode
// is re-entered.
type Autonomous struct {
	control.Base

	label    string
	priority int
	drive    Drivetrain
	limits   Limits
	script   []Step

	step      int
	remaining int
	done      bool
}

// NewAutonomous returns an autonomous mode for the given script. A nil or
// empty script is valid; the mode simply holds the base stopped.
func NewAutonomous(label string, priority int, d Drivetrain, lim Limits, script []Step) *Autonomous {
	return &Autonomous{label: label, priority: priority, drive: d, limits: lim, script: script}
}

func (m *Autonomous) DisplayName() string { return m.label }
func (m *Autonomous) Priority() int       { return m.priority }

// Enter rewinds the script so every activation plays it from the start.
func (m *Autonomous) Enter() error {
	m.step = 0
	m.remaining = 0
	m.done = len(m.script) == 0
	if m.done {
		return m.drive.Stop()
	}
	m.remaining = m.script[0].Ticks
	return nil
}

func (m *Autonomous) Exit() error { return m.drive.Stop() }

func (m *Autonomous) Tick() error {
	if m.done {
		return nil
	}

	for m.remaining <= 0 {
		m.step++
		if m.step >= len(m.script) {
			m.done = true
			if err := m.drive.Stop(); err != nil {
				return fmt.Errorf("drive: stop after script: %w", err)
			}
			return nil
		}
		m.remaining = m.script[m.step].Ticks
	}

	s := m.script[m.step]
	m.remaining--
	left := clamp(s.Left*m.limits.MaxSpeed, -1, 1)
	right := clamp(s.Right*m.limits.MaxSpeed, -1, 1)
	return m.drive.SetPower(left, right)
}

// Done reports whether the script has finished playing.
func (m *Autonomous) Done() bool { return m.done }

// DefaultScript is the script used when a config declares an auto mode
// without providing one: drive forward briefly, turn in place, stop.
func DefaultScript(tickRateHz int) []Step {
	if tickRateHz <= 0 {
		tickRateHz = 50
	}
	return []Step{
		{Left: 0.5, Right: 0.5, Ticks: 2 * tickRateHz}, // forward 2s
		{Left: 0.3, Right: -0.3, Ticks: tickRateHz},    // spin 1s
	}
}
