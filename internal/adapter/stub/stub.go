// Package stub provides configurable in-memory adapters for tests.
package stub

import (
	"errors"
	"sync"
	"time"

	"github.com/marcus/modeldeck/internal/adapter"
)

// Log records adapter lifecycle calls in order, across adapters.
type Log struct {
	mu     sync.Mutex
	events []string
}

func (l *Log) add(ev string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	l.events = append(l.events, ev)
	l.mu.Unlock()
}

// Events returns a copy of the recorded events.
func (l *Log) Events() []string {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.events))
	copy(out, l.events)
	return out
}

// Adapter is a scriptable adapter.Adapter.
type Adapter struct {
	Desc     adapter.Descriptor
	LoadFunc func() error
	RunFunc  func(adapter.Payload) (adapter.Output, error)
	Log      *Log

	mu       sync.Mutex
	loaded   bool
	loads    int
	runs     int
	releases int
}

var _ adapter.Releaser = (*Adapter)(nil)

// Descriptor implements adapter.Adapter.
func (a *Adapter) Descriptor() adapter.Descriptor { return a.Desc }

// Load implements adapter.Adapter.
func (a *Adapter) Load() error {
	a.Log.add("load:" + a.Desc.Name)
	a.mu.Lock()
	a.loads++
	a.mu.Unlock()

	if a.LoadFunc != nil {
		if err := a.LoadFunc(); err != nil {
			a.mu.Lock()
			a.loaded = false
			a.mu.Unlock()
			return err
		}
	}

	a.mu.Lock()
	a.loaded = true
	a.mu.Unlock()
	return nil
}

// Run implements adapter.Adapter.
func (a *Adapter) Run(p adapter.Payload) (adapter.Output, error) {
	a.Log.add("run:" + a.Desc.Name)
	a.mu.Lock()
	a.runs++
	a.mu.Unlock()

	if a.RunFunc == nil {
		return adapter.Output{adapter.KeyResult: p.Value()}, nil
	}
	return a.RunFunc(p)
}

// Describe implements adapter.Adapter.
func (a *Adapter) Describe() map[string]string {
	info := a.Desc.Info()
	if a.Loaded() {
		info[adapter.InfoStatus] = adapter.StatusLoaded
	} else {
		info[adapter.InfoStatus] = adapter.StatusUnloaded
	}
	return info
}

// Loaded implements adapter.Adapter.
func (a *Adapter) Loaded() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loaded
}

// Release implements adapter.Releaser.
func (a *Adapter) Release() {
	a.Log.add("release:" + a.Desc.Name)
	a.mu.Lock()
	a.loaded = false
	a.releases++
	a.mu.Unlock()
}

// Loads returns how many times Load was called.
func (a *Adapter) Loads() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loads
}

// Runs returns how many times Run was called.
func (a *Adapter) Runs() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.runs
}

// Releases returns how many times Release was called.
func (a *Adapter) Releases() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.releases
}

// Echo returns the payload value as the result, instantly.
func Echo(name string) *Adapter {
	return &Adapter{Desc: adapter.Descriptor{Name: name, Category: "Test", Description: "Echoes its input"}}
}

// Slow sleeps for d and then returns result.
func Slow(name string, d time.Duration, result string) *Adapter {
	return &Adapter{
		Desc: adapter.Descriptor{Name: name, Category: "Test", Description: "Sleeps before answering"},
		RunFunc: func(adapter.Payload) (adapter.Output, error) {
			time.Sleep(d)
			return adapter.Output{adapter.KeyResult: result}, nil
		},
	}
}

// Gated blocks each run until release is closed.
func Gated(name string, release <-chan struct{}, result string) *Adapter {
	return &Adapter{
		Desc: adapter.Descriptor{Name: name, Category: "Test", Description: "Waits for a signal"},
		RunFunc: func(adapter.Payload) (adapter.Output, error) {
			<-release
			return adapter.Output{adapter.KeyResult: result}, nil
		},
	}
}

// ErrStub is the cause used by failing stubs.
var ErrStub = errors.New("stub failure")

// FailingRun loads fine but every run returns ErrStub.
func FailingRun(name string) *Adapter {
	return &Adapter{
		Desc: adapter.Descriptor{Name: name, Category: "Test"},
		RunFunc: func(adapter.Payload) (adapter.Output, error) {
			return nil, ErrStub
		},
	}
}

// FailingLoad never loads.
func FailingLoad(name string) *Adapter {
	return &Adapter{
		Desc:     adapter.Descriptor{Name: name, Category: "Test"},
		LoadFunc: func() error { return ErrStub },
	}
}

// PanickingRun panics inside Run.
func PanickingRun(name string) *Adapter {
	return &Adapter{
		Desc: adapter.Descriptor{Name: name, Category: "Test"},
		RunFunc: func(adapter.Payload) (adapter.Output, error) {
			panic("stub panic")
		},
	}
}
