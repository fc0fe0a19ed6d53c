package coordinator

import "github.com/marcus/modeldeck/internal/adapter"

// Sink receives everything the coordinator wants displayed. All methods are
// called on the interactive goroutine.
type Sink interface {
	StatusChanged(text string)
	BusyChanged(busy bool)
	Result(res Result)
	Info(info map[string]string)
	Error(kind ErrorKind, err error)
	// Reset clears displayed input and output, used when switching adapters.
	Reset()
}

// NopSink discards everything.
type NopSink struct{}

func (NopSink) StatusChanged(string)   {}
func (NopSink) BusyChanged(bool)       {}
func (NopSink) Result(Result)          {}
func (NopSink) Info(map[string]string) {}
func (NopSink) Error(ErrorKind, error) {}
func (NopSink) Reset()                 {}

// Request is the snapshot taken when a run is requested.
type Request struct {
	Adapter string
	Payload adapter.Payload
}

// Result is the settled outcome of one run.
type Result struct {
	Request Request
	Output  adapter.Output // nil on failure
	Err     error          // *adapter.RunError on failure
	Elapsed float64        // milliseconds
}

// OK reports whether the run succeeded.
func (r Result) OK() bool { return r.Err == nil }
