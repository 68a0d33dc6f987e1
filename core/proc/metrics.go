package proc

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the per-processor Prometheus collectors: restart
// counts, which Supervise increments, and a queue-depth gauge, which
// nothing in this package sets. A nil *Metrics is safe to use
// everywhere below; Supervise simply skips recording.
type Metrics struct {
	Restarts *prometheus.CounterVec
	QueueLen *prometheus.GaugeVec
}

// NewMetrics registers Restarts and QueueLen against reg (typically
// the process's telemetry.Telemetry.Registry()) and returns a Metrics
// ready to pass to Supervise via WithMetrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Restarts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "prosa",
			Subsystem: "proc",
			Name:      "restarts_total",
			Help:      "Number of times a processor has been restarted after a recoverable error.",
		}, []string{"proc_name"}),
		QueueLen: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "prosa",
			Subsystem: "proc",
			Name:      "queue_length",
			Help:      "Number of messages currently queued for a processor's queue.",
		}, []string{"proc_name", "queue_id"}),
	}
	reg.MustRegister(m.Restarts, m.QueueLen)
	return m
}

func (m *Metrics) recordRestart(procName string) {
	if m == nil {
		return
	}
	m.Restarts.WithLabelValues(procName).Inc()
}
