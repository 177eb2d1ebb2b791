// Package drive provides the drivetrain abstraction and the simulated
// differential drive used when no real hardware is attached.
package drive

import (
	"fmt"
	"math"
	"sync"
	"time"
)

// Drivetrain is a differential (tank-style) drive base. Power values are
// normalized to [-1, 1]; implementations clamp anything outside that range.
type Drivetrain interface {
	// SetPower commands the left and right sides of the base.
	SetPower(left, right float64) error
	// Stop cuts power to both sides.
	Stop() error
}

// Limits caps drivetrain output. Zero values mean no movement, so callers
// normally fill these from configuration.
type Limits struct {
	MaxSpeed    float64 // cap on forward/reverse power, [0, 1]
	MaxTurnRate float64 // cap on turn contribution, [0, 1]
}

// Pose is a 2D position estimate maintained by the simulator.
type Pose struct {
	X       float64 // meters
	Y       float64 // meters
	Heading float64 // radians, counterclockwise from +X
}

// SimDrive integrates commanded power into a 2D pose so the dashboard has
// something to display without real hardware. It is safe for concurrent use;
// the control loop writes power while the TUI reads the pose.
type SimDrive struct {
	mu sync.Mutex

	left, right float64
	pose        Pose
	lastStep    time.Time

	trackWidth float64 // meters between wheel centers
	topSpeed   float64 // meters per second at full power
}

// NewSimDrive returns a simulated base with a 0.5 m track width and a
// 2 m/s top speed.
func NewSimDrive() *SimDrive {
	return &SimDrive{trackWidth: 0.5, topSpeed: 2.0}
}

// SetPower records the commanded power, clamped to [-1, 1], and advances
// the pose by the time elapsed since the previous command.
func (d *SimDrive) SetPower(left, right float64) error {
	if math.IsNaN(left) || math.IsNaN(right) {
		return fmt.Errorf("drive: power must not be NaN (left=%v right=%v)", left, right)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.step(time.Now())
	d.left = clamp(left, -1, 1)
	d.right = clamp(right, -1, 1)
	return nil
}

// Stop cuts power to both sides.
func (d *SimDrive) Stop() error {
	return d.SetPower(0, 0)
}

// Power returns the last commanded left and right power.
func (d *SimDrive) Power() (left, right float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.left, d.right
}

// Pose returns the integrated position estimate.
func (d *SimDrive) Pose() Pose {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.step(time.Now())
	return d.pose
}

// step integrates the current power over the interval since lastStep.
// Callers must hold d.mu.
func (d *SimDrive) step(now time.Time) {
	if d.lastStep.IsZero() {
		d.lastStep = now
		return
	}
	dt := now.Sub(d.lastStep).Seconds()
	d.lastStep = now
	if dt <= 0 {
		return
	}

	// Standard differential-drive kinematics.
	vLeft := d.left * d.topSpeed
	vRight := d.right * d.topSpeed
	v := (vLeft + vRight) / 2
	w := (vRight - vLeft) / d.trackWidth

	d.pose.X += v * math.Cos(d.pose.Heading) * dt
	d.pose.Y += v * math.Sin(d.pose.Heading) * dt
	d.pose.Heading += w * dt
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// deadband zeroes out small stick values so a centered stick does not
// creep the base.
func deadband(v, threshold float64) float64 {
	if math.Abs(v) < threshold {
		return 0
	}
	return v
}
