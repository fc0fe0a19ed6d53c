// Package busy implements the single-flight gate that keeps at most one load
// or run operation in progress.
//
// A Controller is owned by the interactive goroutine. Worker goroutines never
// touch it; they publish completion through the coordinator's result slot and
// the interactive goroutine releases the gate when it drains that slot.
package busy

import "fmt"

// State is the externally visible gate state.
type State int

const (
	Idle State = iota
	Busy
)

func (s State) String() string {
	if s == Busy {
		return "busy"
	}
	return "idle"
}

// StatusCancelled is the status text set by a soft cancel.
const StatusCancelled = "Cancelled (soft)"

// InvariantError reports acquire/release misuse. It is a programmer error and
// never expected on a production path.
type InvariantError struct {
	Op     string
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("busy gate invariant violated in %s: %s", e.Op, e.Reason)
}

// Controller is the busy gate plus the human-readable status line.
type Controller struct {
	state     State
	status    string
	cancelled bool
}

// New returns an idle controller.
func New() *Controller {
	return &Controller{}
}

// Acquire moves Idle to Busy and reports whether it did. It never blocks.
func (c *Controller) Acquire(status string) bool {
	if c.state == Busy {
		return false
	}
	c.state = Busy
	c.cancelled = false
	if status != "" {
		c.status = status
	}
	return true
}

// Release moves Busy to Idle and clears any stale cancellation marker.
// Releasing an idle gate returns an *InvariantError and leaves the gate Idle.
func (c *Controller) Release(status string) error {
	c.cancelled = false
	if status != "" {
		c.status = status
	}
	if c.state != Busy {
		return &InvariantError{Op: "release", Reason: "gate is not held"}
	}
	c.state = Idle
	return nil
}

// Cancel abandons the in-flight operation: the gate goes Idle immediately and
// the cancellation marker is set until the next Acquire or Release.
// It reports false when there was nothing to cancel.
func (c *Controller) Cancel(status string) bool {
	if c.state != Busy {
		return false
	}
	if status == "" {
		status = StatusCancelled
	}
	c.state = Idle
	c.cancelled = true
	c.status = status
	return true
}

// SetStatus replaces the status text without changing state.
func (c *Controller) SetStatus(status string) {
	c.status = status
}

// Busy reports whether an operation holds the gate.
func (c *Controller) Busy() bool { return c.state == Busy }

// State returns the current gate state.
func (c *Controller) State() State { return c.state }

// Status returns the current status text.
func (c *Controller) Status() string { return c.status }

// Cancelled reports whether the last operation was soft-cancelled.
func (c *Controller) Cancelled() bool { return c.cancelled }
