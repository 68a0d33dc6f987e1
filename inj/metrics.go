package inj

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the Prometheus collector Proc records transaction
// durations against, the Go rendition of the
// prosa_inj_request_duration histogram (meter.f64_histogram in
// inj/proc.rs's internal_run).
type Metrics struct {
	TransDuration *prometheus.HistogramVec
}

// NewMetrics registers TransDuration against reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		TransDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "prosa",
			Subsystem: "inj",
			Name:      "request_duration_seconds",
			Help:      "Injector transaction processing duration.",
		}, []string{"proc", "service", "err_code"}),
	}
	reg.MustRegister(m.TransDuration)
	return m
}
