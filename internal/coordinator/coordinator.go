// Package coordinator tracks which adapter is loaded, serializes load and run
// operations behind the busy gate, runs each request on a worker goroutine
// and polls for its completion from the interactive goroutine.
//
// Every exported method must be called from the interactive goroutine (the
// Bubble Tea Update loop, or the headless driver loop). Only the worker
// goroutine spawned by RequestRun runs concurrently, and it communicates
// solely through its job's result slot.
package coordinator

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/modeldeck/internal/adapter"
	"github.com/marcus/modeldeck/internal/busy"
)

// DefaultPollInterval is how often a pending run is checked for completion.
const DefaultPollInterval = 50 * time.Millisecond

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithPollInterval overrides DefaultPollInterval.
func WithPollInterval(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.log = l
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(c *Coordinator) {
		if r != nil {
			c.rec = r
		}
	}
}

// Coordinator is the adapter lifecycle and execution state machine.
type Coordinator struct {
	registry     *adapter.Registry
	gate         *busy.Controller
	sink         Sink
	rec          Recorder
	log          *slog.Logger
	pollInterval time.Duration

	selected string
	loaded   string // changes only when a load succeeds
	epoch    uint64 // bumped per dispatch and per cancel
	active   *job   // the run being polled, nil when none
}

// New creates a coordinator over reg. The first registered adapter starts
// selected.
func New(reg *adapter.Registry, sink Sink, opts ...Option) *Coordinator {
	if sink == nil {
		sink = NopSink{}
	}
	c := &Coordinator{
		registry:     reg,
		gate:         busy.New(),
		sink:         sink,
		rec:          NoopRecorder{},
		log:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		pollInterval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	if names := reg.List(); len(names) > 0 {
		c.selected = names[0]
	}
	c.gate.SetStatus("Ready")
	return c
}

// State is a point-in-time view of the coordinator.
type State struct {
	Busy          bool
	Cancelled     bool
	Status        string
	Selected      string
	Loaded        string
	Active        *Request
	WorkerAlive   bool
	ResultPending bool
	Epoch         uint64
}

// Snapshot returns the current state.
func (c *Coordinator) Snapshot() State {
	s := State{
		Busy:      c.gate.Busy(),
		Cancelled: c.gate.Cancelled(),
		Status:    c.gate.Status(),
		Selected:  c.selected,
		Loaded:    c.loaded,
		Epoch:     c.epoch,
	}
	if j := c.active; j != nil {
		req := j.req
		s.Active = &req
		done := j.done.Load()
		s.WorkerAlive = !done
		s.ResultPending = done
	}
	return s
}

// Registry returns the adapter registry.
func (c *Coordinator) Registry() *adapter.Registry { return c.registry }

// Busy reports whether an operation holds the gate.
func (c *Coordinator) Busy() bool { return c.gate.Busy() }

// Selected returns the selected adapter name.
func (c *Coordinator) Selected() string { return c.selected }

// Loaded returns the name of the last successfully loaded adapter.
func (c *Coordinator) Loaded() string { return c.loaded }

// Status returns the current status text.
func (c *Coordinator) Status() string { return c.gate.Status() }

// PollInterval returns the poller period.
func (c *Coordinator) PollInterval() time.Duration { return c.pollInterval }

// Select changes the selected adapter. It is rejected while busy and fails
// with *adapter.NotFoundError for unknown names.
func (c *Coordinator) Select(name string) error {
	if c.gate.Busy() {
		c.rec.ObserveRejected("select")
		return ErrBusy
	}
	handle, err := c.lookup(name)
	if err != nil {
		return err
	}
	c.selected = name
	c.safely("info", func() { c.sink.Info(handle.Describe()) })
	return nil
}

// NeedsSwitchConfirm reports whether loading the selected adapter would
// replace a different loaded one, and which.
func (c *Coordinator) NeedsSwitchConfirm() (from string, ok bool) {
	if c.loaded != "" && c.loaded != c.selected {
		return c.loaded, true
	}
	return "", false
}

// LoadAdapter selects name and loads it.
func (c *Coordinator) LoadAdapter(name string, confirmed bool) error {
	if err := c.Select(name); err != nil {
		return err
	}
	return c.RequestLoad(confirmed)
}

// RequestLoad loads the selected adapter synchronously under the busy gate.
//
// If a different adapter is loaded and confirmed is false, it returns a
// *SwitchConfirmationError without changing anything. With confirmation the
// previous adapter's resources are released and the display is reset before
// the new load begins. The gate is released on every exit path.
func (c *Coordinator) RequestLoad(confirmed bool) error {
	if c.gate.Busy() {
		c.rec.ObserveRejected("load")
		return ErrBusy
	}
	name := c.selected
	handle, err := c.lookup(name)
	if err != nil {
		return err
	}

	if from, ok := c.NeedsSwitchConfirm(); ok {
		if !confirmed {
			return &SwitchConfirmationError{From: from, To: name}
		}
		c.releasePrevious(from)
	}

	return c.load(name, handle)
}

func (c *Coordinator) load(name string, handle adapter.Adapter) (err error) {
	status := fmt.Sprintf("Loading %s …", name)
	if !c.gate.Acquire(status) {
		c.rec.ObserveRejected("load")
		return ErrBusy
	}
	c.rec.SetBusy(true)
	c.safely("busy", func() { c.sink.BusyChanged(true) })
	c.safely("status", func() { c.sink.StatusChanged(status) })

	final := "Load error"
	defer func() { c.releaseGate(final) }()

	start := time.Now()
	c.log.Debug("load adapter", "adapter", name)
	if err = callLoad(name, handle); err != nil {
		c.rec.ObserveLoad(name, StatusError, time.Since(start))
		c.log.Warn("load failed", "adapter", name, "err", err)
		c.safely("error", func() { c.sink.Error(KindLoad, err) })
		return err
	}

	c.loaded = name
	final = "Loaded " + name
	c.rec.ObserveLoad(name, StatusOK, time.Since(start))
	c.log.Info("adapter loaded", "adapter", name, "elapsed", time.Since(start))
	c.safely("info", func() { c.sink.Info(handle.Describe()) })
	return nil
}

// callLoad runs handle.Load, converting failures and panics to *adapter.LoadError.
func callLoad(name string, handle adapter.Adapter) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &adapter.LoadError{Name: name, Cause: fmt.Errorf("panic: %v", r)}
		}
	}()
	if err := handle.Load(); err != nil {
		var le *adapter.LoadError
		if errors.As(err, &le) {
			return err
		}
		return &adapter.LoadError{Name: name, Cause: err}
	}
	return nil
}

// releasePrevious drops the previous adapter's resources and clears the display.
func (c *Coordinator) releasePrevious(from string) {
	prev, err := c.registry.Get(from)
	if err == nil {
		if r, ok := prev.(adapter.Releaser); ok {
			c.safely("release", r.Release)
			c.log.Debug("released adapter", "adapter", from)
		}
	}
	c.safely("reset", c.sink.Reset)
}

// RequestRun validates the selected adapter, acquires the gate and starts one
// worker goroutine. It returns the first poll tick; feed every PollMsg back
// into HandlePoll until it returns nil.
func (c *Coordinator) RequestRun(p adapter.Payload) (tea.Cmd, error) {
	if c.gate.Busy() {
		c.rec.ObserveRejected("run")
		return nil, ErrBusy
	}
	name := c.selected
	handle, err := c.lookup(name)
	if err != nil {
		return nil, err
	}
	if !handle.Loaded() {
		err := &NotLoadedError{Name: name}
		c.safely("error", func() { c.sink.Error(KindNotLoaded, err) })
		return nil, err
	}

	status := fmt.Sprintf("Running %s …", name)
	if !c.gate.Acquire(status) {
		c.rec.ObserveRejected("run")
		return nil, ErrBusy
	}
	c.epoch++
	j := newJob(c.epoch, Request{Adapter: name, Payload: p}, handle)
	c.active = j

	c.rec.SetBusy(true)
	c.safely("busy", func() { c.sink.BusyChanged(true) })
	c.safely("status", func() { c.sink.StatusChanged(status) })
	c.log.Debug("dispatch run", "adapter", name, "epoch", j.epoch, "payload", p.Summary())

	go j.run()
	return c.pollCmd(j.epoch), nil
}

// RequestCancel soft-cancels the in-flight operation. The gate is released
// immediately and the worker's eventual result is discarded; the worker
// itself keeps running until it returns.
func (c *Coordinator) RequestCancel() bool {
	if !c.gate.Busy() {
		return false
	}
	name := c.selected
	if c.active != nil {
		name = c.active.req.Adapter
	}
	c.gate.Cancel(busy.StatusCancelled)
	c.epoch++
	c.active = nil

	c.rec.ObserveCancel(name)
	c.rec.SetBusy(false)
	c.log.Info("run cancelled", "adapter", name)
	c.safely("busy", func() { c.sink.BusyChanged(false) })
	c.safely("status", func() { c.sink.StatusChanged(busy.StatusCancelled) })
	return true
}

func (c *Coordinator) lookup(name string) (adapter.Adapter, error) {
	handle, err := c.registry.Get(name)
	if err != nil {
		c.safely("error", func() { c.sink.Error(KindNotFound, err) })
		return nil, err
	}
	return handle, nil
}

// releaseGate releases the busy gate and notifies the sink. A failed release
// is an invariant violation: it is logged and reported, never panicked on.
func (c *Coordinator) releaseGate(status string) {
	if err := c.gate.Release(status); err != nil {
		c.log.Error("busy gate", "err", err)
		c.safely("error", func() { c.sink.Error(KindInvariant, err) })
		return
	}
	c.rec.SetBusy(false)
	c.safely("busy", func() { c.sink.BusyChanged(false) })
	c.safely("status", func() { c.sink.StatusChanged(status) })
}

// safely runs a sink callback, turning a panic into a KindDelivery error.
func (c *Coordinator) safely(what string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("%s: panic: %v", what, r)
			c.log.Error("sink delivery failed", "err", err)
			func() {
				defer func() { _ = recover() }()
				c.sink.Error(KindDelivery, err)
			}()
		}
	}()
	fn()
}
