// Package metrics counts what one invocation did and leaves the result
// as a Prometheus textfile in the cell tmp dir, for node_exporter style
// collection from operator machines.
package metrics

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/cellos/cell/internal/provisioning"
)

// TextfileName is the metrics file inside the cell tmp dir.
const TextfileName = "metrics.prom"

// Recorder holds the metrics of one invocation.
type Recorder struct {
	registry *prometheus.Registry

	commandsTotal   *prometheus.CounterVec
	commandDuration *prometheus.HistogramVec
	phasesTotal     *prometheus.CounterVec
	phaseDuration   *prometheus.HistogramVec
	resourcesTotal  *prometheus.CounterVec
}

// NewRecorder returns a Recorder with its own registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		commandsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "cell",
				Subsystem: "cli",
				Name:      "commands_total",
				Help:      "Commands run by result",
			},
			[]string{"cell", "command", "result"},
		),
		commandDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "cell",
				Subsystem: "cli",
				Name:      "command_duration_seconds",
				Help:      "Duration of commands in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12), // 100ms to ~7min
			},
			[]string{"cell", "command"},
		),
		phasesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "cell",
				Subsystem: "provisioning",
				Name:      "phases_total",
				Help:      "Provisioning phases by result",
			},
			[]string{"phase", "result"},
		),
		phaseDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "cell",
				Subsystem: "provisioning",
				Name:      "phase_duration_seconds",
				Help:      "Duration of provisioning phases in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
			},
			[]string{"phase"},
		),
		resourcesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "cell",
				Subsystem: "provisioning",
				Name:      "resource_events_total",
				Help:      "Resource lifecycle events by type",
			},
			[]string{"type", "event"},
		),
	}
	r.registry.MustRegister(r.commandsTotal, r.commandDuration, r.phasesTotal, r.phaseDuration, r.resourcesTotal)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveCommand records one finished command.
func (r *Recorder) ObserveCommand(cell, command string, d time.Duration, err error) {
	r.commandsTotal.WithLabelValues(cell, command, result(err)).Inc()
	r.commandDuration.WithLabelValues(cell, command).Observe(d.Seconds())
}

// ObservePhase records one finished provisioning phase.
func (r *Recorder) ObservePhase(phase string, d time.Duration, err error) {
	r.phasesTotal.WithLabelValues(phase, result(err)).Inc()
	r.phaseDuration.WithLabelValues(phase).Observe(d.Seconds())
}

// WriteTextfile writes every metric to path in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// Observer forwards to an inner provisioning.Observer and records phase
// and resource events on the way.
type Observer struct {
	provisioning.Observer
	recorder *Recorder

	mu      *sync.Mutex
	started map[string]time.Time
}

// NewObserver wraps inner.
func NewObserver(inner provisioning.Observer, r *Recorder) *Observer {
	return &Observer{
		Observer: inner,
		recorder: r,
		mu:       &sync.Mutex{},
		started:  make(map[string]time.Time),
	}
}

// Event implements provisioning.Observer.
func (o *Observer) Event(event provisioning.Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	o.record(event)
	o.Observer.Event(event)
}

func (o *Observer) record(event provisioning.Event) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch event.Type {
	case provisioning.EventPhaseStarted:
		o.started[event.Phase] = event.Timestamp
	case provisioning.EventPhaseCompleted, provisioning.EventPhaseFailed:
		var d time.Duration
		if start, ok := o.started[event.Phase]; ok {
			d = event.Timestamp.Sub(start)
			delete(o.started, event.Phase)
		}
		var err error
		if event.Type == provisioning.EventPhaseFailed {
			err = fmt.Errorf("%s", event.Message)
		}
		o.recorder.ObservePhase(event.Phase, d, err)
	case provisioning.EventResourceCreated, provisioning.EventResourceDeleted,
		provisioning.EventResourceExists, provisioning.EventResourceFailed:
		o.recorder.resourcesTotal.WithLabelValues(event.Fields["type"], string(event.Type)).Inc()
	}
}

// WithFields implements provisioning.Observer.
func (o *Observer) WithFields(fields map[string]string) provisioning.Observer {
	return &Observer{
		Observer: o.Observer.WithFields(fields),
		recorder: o.recorder,
		mu:       o.mu,
		started:  o.started,
	}
}
