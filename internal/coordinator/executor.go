package coordinator

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/marcus/modeldeck/internal/adapter"
)

// job is one dispatched run. The worker goroutine writes result exactly once
// and then publishes done; the interactive goroutine reads result only after
// observing done.
type job struct {
	epoch  uint64
	req    Request
	handle adapter.Adapter

	result Result
	done   atomic.Bool
}

func newJob(epoch uint64, req Request, handle adapter.Adapter) *job {
	return &job{epoch: epoch, req: req, handle: handle}
}

func (j *job) run() {
	j.result = j.execute()
	j.done.Store(true)
}

// execute calls the adapter and never panics.
func (j *job) execute() (res Result) {
	res.Request = j.req
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			res.Output = nil
			res.Err = &adapter.RunError{Name: j.req.Adapter, Cause: fmt.Errorf("panic: %v", r)}
		}
		res.Elapsed = elapsedMS(start)
		if res.Output != nil {
			res.Output[adapter.KeyElapsed] = res.Elapsed
		}
	}()

	out, err := j.handle.Run(j.req.Payload)
	if err != nil {
		var re *adapter.RunError
		if !errors.As(err, &re) {
			err = &adapter.RunError{Name: j.req.Adapter, Cause: err}
		}
		res.Err = err
		return res
	}

	res.Output = out.Clone()
	if _, ok := res.Output[adapter.KeyResult]; !ok {
		res.Output[adapter.KeyResult] = ""
	}
	return res
}

func elapsedMS(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}
