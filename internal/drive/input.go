package drive

import "sync"

// Stick is the position of one analog stick. Axis values are normalized
// to [-1, 1]; Y is positive when the stick is pushed forward.
type Stick struct {
	X float64
	Y float64
}

// InputSource supplies operator stick positions to the teleop modes.
// Reads happen once per control-loop tick.
type InputSource interface {
	Left() Stick
	Right() Stick
}

// SimInput is an InputSource fed by the dashboard or by tests. It is safe
// for concurrent use; the TUI writes stick positions while the control
// loop reads them.
type SimInput struct {
	mu    sync.Mutex
	left  Stick
	right Stick
}

// NewSimInput returns a SimInput with both sticks centered.
func NewSimInput() *SimInput {
	return &SimInput{}
}

func (s *SimInput) Left() Stick {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.left
}

func (s *SimInput) Right() Stick {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.right
}

// SetLeft replaces the left stick position.
func (s *SimInput) SetLeft(st Stick) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.left = st
}

// SetRight replaces the right stick position.
func (s *SimInput) SetRight(st Stick) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.right = st
}

// Center returns both sticks to neutral.
func (s *SimInput) Center() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.left = Stick{}
	s.right = Stick{}
}
