// Package control implements the mode registry and selection core: a set of
// named, priority-ordered, mutually-exclusive control interfaces, a single
// active-mode pointer, and the enter/exit transition protocol driven by an
// external chooser.
package control

// Interface is the contract every control mode implements. A mode is a named,
// swappable unit of behavior: the Manager forwards the periodic tick to
// whichever mode is currently selected and runs Exit/Enter around transitions.
//
// Concrete modes typically embed Base and override only the hooks they use.
type Interface interface {
	// DisplayName returns the label shown by the chooser. Modes with an
	// empty display name are dropped during registry validation.
	DisplayName() string

	// Priority orders modes in the chooser. Higher sorts first; ties keep
	// their registration order.
	Priority() int

	// Enter is called when the mode becomes active.
	Enter() error

	// Exit is called when the mode is switched away from. It always runs
	// to completion before the next mode's Enter.
	Exit() error

	// Tick is called once per control cycle while the mode is active.
	Tick() error
}

// Base provides no-op implementations of the optional mode hooks and a
// default priority of zero. Embed it so a mode only overrides what it needs;
// DisplayName is deliberately not provided.
type Base struct{}

// Priority returns the default priority of zero.
func (Base) Priority() int { return 0 }

// Enter is a no-op.
func (Base) Enter() error { return nil }

// Exit is a no-op.
func (Base) Exit() error { return nil }

// Tick is a no-op.
func (Base) Tick() error { return nil }

// Chooser is the external selection widget the Manager registers its modes
// with. Labels are display names; ids are registry indices the chooser later
// reports back through Manager.SelectionChanged.
type Chooser interface {
	// AddDefault registers the default choice (the highest-priority mode).
	AddDefault(label string, id int)

	// AddOption registers a non-default choice.
	AddOption(label string, id int)
}

// Option is one registered chooser entry.
type Option struct {
	Label   string
	ID      int
	Default bool
}

// OptionSet is a Chooser that records registrations in order. It backs the
// dashboard modes panel and the headless modes listing.
type OptionSet struct {
	opts []Option
}

// AddDefault records the default choice.
func (s *OptionSet) AddDefault(label string, id int) {
	s.opts = append(s.opts, Option{Label: label, ID: id, Default: true})
}

// AddOption records a non-default choice.
func (s *OptionSet) AddOption(label string, id int) {
	s.opts = append(s.opts, Option{Label: label, ID: id})
}

// Options returns the recorded choices in registration order.
// The returned slice is a copy and safe to mutate.
func (s *OptionSet) Options() []Option {
	out := make([]Option, len(s.opts))
	copy(out, s.opts)
	return out
}
