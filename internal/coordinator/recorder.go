package coordinator

import "time"

// Recorder receives operation metrics.
type Recorder interface {
	ObserveLoad(adapter, status string, d time.Duration)
	ObserveRun(adapter, status string, d time.Duration)
	ObserveRejected(op string)
	ObserveCancel(adapter string)
	SetBusy(busy bool)
}

// Metric status labels.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// NoopRecorder is the default until metrics are configured.
type NoopRecorder struct{}

func (NoopRecorder) ObserveLoad(string, string, time.Duration) {}
func (NoopRecorder) ObserveRun(string, string, time.Duration)  {}
func (NoopRecorder) ObserveRejected(string)                    {}
func (NoopRecorder) ObserveCancel(string)                      {}
func (NoopRecorder) SetBusy(bool)                              {}
