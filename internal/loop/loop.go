// Package loop implements the fixed-cadence control cycle: drain selection
// requests, tick the active mode, repeat.
package loop

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mars1523/marsctl/internal/control"
)

// Controller is the mode-selection surface the loop drives.
// *control.Manager satisfies this interface.
type Controller interface {
	SelectionChanged(id int) error
	Tick() error
}

// Loop runs the control cycle. It is the only goroutine that calls into the
// Controller; selection requests from other goroutines arrive on Selections
// and are applied between ticks.
type Loop struct {
	Control Controller
	Period  time.Duration // tick interval; defaults to 20ms

	// Selections carries mode ids requested by the dashboard or the
	// command feed. A closed channel stops further selection handling
	// without stopping the loop.
	Selections <-chan int

	// Events receives structured loop events when set. Otherwise events
	// fall back to the Log writer.
	Events chan<- control.Event
	Log    io.Writer // defaults to os.Stdout

	// MaxTicks stops the loop normally after this many ticks. 0 = run
	// until the context is cancelled.
	MaxTicks int64
}

// Run executes the loop until the context is cancelled, MaxTicks is
// reached, or a mode hook fails.
func (l *Loop) Run(ctx context.Context) error {
	period := l.Period
	if period <= 0 {
		period = 20 * time.Millisecond
	}
	rateHz := float64(time.Second) / float64(period)

	l.emit(control.Event{
		Kind:    control.EventLoopStart,
		Message: fmt.Sprintf("control loop started at %.0f Hz", rateHz),
		RateHz:  rateHz,
	})

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	const hbInterval = time.Second

	var (
		ticks         int64
		overruns      int64
		hbTicks       int64
		hbAt          = time.Now()
		nextHeartbeat = hbAt.Add(hbInterval)
	)

	for {
		select {
		case <-ctx.Done():
			l.emit(control.Event{
				Kind:    control.EventStopped,
				Message: fmt.Sprintf("control loop stopped: %v", ctx.Err()),
				Ticks:   ticks,
			})
			return ctx.Err()

		case <-ticker.C:
			if err := l.drainSelections(); err != nil {
				l.emit(control.Event{Kind: control.EventError, Message: err.Error()})
				return err
			}

			start := time.Now()
			if err := l.Control.Tick(); err != nil {
				err = fmt.Errorf("loop: tick %d: %w", ticks+1, err)
				l.emit(control.Event{Kind: control.EventError, Message: err.Error()})
				return err
			}
			ticks++
			hbTicks++

			if elapsed := time.Since(start); elapsed > period {
				overruns++
				l.emit(control.Event{
					Kind:     control.EventOverrun,
					Message:  fmt.Sprintf("tick %d overran its %v budget (took %v)", ticks, period, elapsed.Round(time.Microsecond)),
					Ticks:    ticks,
					Duration: elapsed.Seconds(),
					Overruns: overruns,
				})
			}

			if now := time.Now(); now.After(nextHeartbeat) {
				measured := float64(hbTicks) / now.Sub(hbAt).Seconds()
				l.emit(control.Event{
					Kind:     control.EventHeartbeat,
					Message:  fmt.Sprintf("%d ticks, %.1f Hz", ticks, measured),
					Ticks:    ticks,
					RateHz:   measured,
					Overruns: overruns,
				})
				hbAt = now
				hbTicks = 0
				nextHeartbeat = now.Add(hbInterval)
			}

			if l.MaxTicks > 0 && ticks >= l.MaxTicks {
				l.emit(control.Event{
					Kind:    control.EventDone,
					Message: fmt.Sprintf("control loop finished after %d ticks", ticks),
					Ticks:   ticks,
				})
				return nil
			}
		}
	}
}

// drainSelections applies every pending selection request. Invalid ids are
// reported by the Controller itself; only hook failures surface here.
func (l *Loop) drainSelections() error {
	for {
		select {
		case id, ok := <-l.Selections:
			if !ok {
				l.Selections = nil
				return nil
			}
			if err := l.Control.SelectionChanged(id); err != nil {
				return fmt.Errorf("loop: selection %d: %w", id, err)
			}
		default:
			return nil
		}
	}
}

// emit sends the event to the Events channel when set, dropping it if the
// consumer is not keeping up, and otherwise writes a log line.
func (l *Loop) emit(e control.Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	if l.Events != nil {
		select {
		case l.Events <- e:
		default:
		}
		return
	}

	w := l.Log
	if w == nil {
		w = os.Stdout
	}
	fmt.Fprintf(w, "[%s]  %s\n", e.Timestamp.Format("15:04:05"), e.Message)
}
