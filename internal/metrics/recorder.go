// Package metrics exports coordinator activity as Prometheus metrics and
// serves them over HTTP.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/marcus/modeldeck/internal/coordinator"
)

const namespace = "modeldeck"

// Recorder implements coordinator.Recorder with Prometheus collectors.
type Recorder struct {
	loads     *prometheus.CounterVec
	loadDur   *prometheus.HistogramVec
	runs      *prometheus.CounterVec
	runDur    *prometheus.HistogramVec
	rejected  *prometheus.CounterVec
	cancelled *prometheus.CounterVec
	busy      prometheus.Gauge
}

var _ coordinator.Recorder = (*Recorder)(nil)

// NewRecorder creates the collectors and registers them with registry.
func NewRecorder(registry *prometheus.Registry) (*Recorder, error) {
	if registry == nil {
		return nil, fmt.Errorf("prometheus registry is nil")
	}
	r := &Recorder{
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "adapter_loads_total",
			Help:      "Adapter loads by adapter and status",
		}, []string{"adapter", "status"}),
		loadDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "adapter_load_duration_seconds",
			Help:      "Adapter load latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"adapter"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "adapter_runs_total",
			Help:      "Delivered adapter runs by adapter and status",
		}, []string{"adapter", "status"}),
		runDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "adapter_run_duration_seconds",
			Help:      "Adapter run latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"adapter"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "busy_rejections_total",
			Help:      "Requests rejected because another operation was in progress",
		}, []string{"op"}),
		cancelled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "soft_cancels_total",
			Help:      "Soft cancellations by adapter",
		}, []string{"adapter"}),
		busy: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "busy",
			Help:      "1 while a load or run holds the busy gate",
		}),
	}

	for _, c := range []prometheus.Collector{r.loads, r.loadDur, r.runs, r.runDur, r.rejected, r.cancelled, r.busy} {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}
	return r, nil
}

// ObserveLoad implements coordinator.Recorder.
func (r *Recorder) ObserveLoad(adapter, status string, d time.Duration) {
	r.loads.WithLabelValues(adapter, status).Inc()
	r.loadDur.WithLabelValues(adapter).Observe(d.Seconds())
}

// ObserveRun implements coordinator.Recorder.
func (r *Recorder) ObserveRun(adapter, status string, d time.Duration) {
	r.runs.WithLabelValues(adapter, status).Inc()
	r.runDur.WithLabelValues(adapter).Observe(d.Seconds())
}

// ObserveRejected implements coordinator.Recorder.
func (r *Recorder) ObserveRejected(op string) {
	r.rejected.WithLabelValues(op).Inc()
}

// ObserveCancel implements coordinator.Recorder.
func (r *Recorder) ObserveCancel(adapter string) {
	r.cancelled.WithLabelValues(adapter).Inc()
}

// SetBusy implements coordinator.Recorder.
func (r *Recorder) SetBusy(busy bool) {
	if busy {
		r.busy.Set(1)
		return
	}
	r.busy.Set(0)
}
