package executor

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "mrcz"

// Metrics holds the collectors updated by a Pool. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	Submitted  prometheus.Counter
	Completed  prometheus.Counter
	Failed     prometheus.Counter
	QueueDepth prometheus.Gauge
	Workers    prometheus.Gauge
}

// NewMetrics creates unregistered collectors under the given subsystem.
func NewMetrics(subsystem string) *Metrics {
	return &Metrics{
		Submitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "tasks_submitted_total",
			Help:      "Total tasks submitted to the pool.",
		}),
		Completed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "tasks_completed_total",
			Help:      "Total tasks that finished, successfully or not.",
		}),
		Failed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "tasks_failed_total",
			Help:      "Total tasks that returned an error or panicked.",
		}),
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "queue_depth",
			Help:      "Tasks waiting for a worker.",
		}),
		Workers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "workers",
			Help:      "Configured number of workers.",
		}),
	}
}

// Register adds every collector to reg. Collectors that are already
// registered are not an error.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.Submitted, m.Completed, m.Failed, m.QueueDepth, m.Workers} {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	return nil
}

func (m *Metrics) submitted(depth int) {
	if m == nil {
		return
	}
	m.Submitted.Inc()
	m.QueueDepth.Set(float64(depth))
}

func (m *Metrics) dequeued(depth int) {
	if m == nil {
		return
	}
	m.QueueDepth.Set(float64(depth))
}

func (m *Metrics) finished(err error) {
	if m == nil {
		return
	}
	m.Completed.Inc()
	if err != nil {
		m.Failed.Inc()
	}
}

func (m *Metrics) setWorkers(n int) {
	if m == nil {
		return
	}
	m.Workers.Set(float64(n))
}
