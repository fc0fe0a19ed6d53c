package coordinator

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// PollMsg is one poller tick for the run dispatched under Epoch.
type PollMsg struct {
	Epoch uint64
	Time  time.Time
}

func (c *Coordinator) pollCmd(epoch uint64) tea.Cmd {
	return tea.Tick(c.pollInterval, func(t time.Time) tea.Msg {
		return PollMsg{Epoch: epoch, Time: t}
	})
}

// IsStale reports whether msg belongs to a cancelled or finished run.
func (c *Coordinator) IsStale(msg PollMsg) bool {
	return c.active == nil || c.active.epoch != msg.Epoch
}

// HandlePoll checks the pending run. It returns the next tick while the
// worker is still running and nil once the result has been drained or when
// the tick is stale.
func (c *Coordinator) HandlePoll(msg PollMsg) tea.Cmd {
	if c.IsStale(msg) {
		return nil
	}
	j := c.active
	if !j.done.Load() {
		return c.pollCmd(j.epoch)
	}
	c.drain(j)
	return nil
}

// drain consumes the result slot, releases the gate and then delivers the
// result. Delivery failures are reported without holding the gate.
func (c *Coordinator) drain(j *job) {
	res := j.result
	c.active = nil
	name := res.Request.Adapter

	var status string
	if res.Err != nil {
		status = "Error"
		c.rec.ObserveRun(name, StatusError, msDuration(res.Elapsed))
		c.log.Warn("run failed", "adapter", name, "err", res.Err)
	} else {
		status = fmt.Sprintf("Ran %s in %.1f ms", name, res.Elapsed)
		c.rec.ObserveRun(name, StatusOK, msDuration(res.Elapsed))
		c.log.Debug("run finished", "adapter", name, "elapsed_ms", res.Elapsed)
	}

	c.releaseGate(status)

	c.safely("result", func() { c.sink.Result(res) })
	if res.Err != nil {
		c.safely("error", func() { c.sink.Error(KindRun, res.Err) })
		return
	}
	c.safely("info", func() { c.sink.Info(j.handle.Describe()) })
}

func msDuration(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}
