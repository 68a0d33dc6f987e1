// Package telemetry is a process-wide Telemetry capability: a single
// opaque sink processors ask for a logger or a tracer scoped to their
// own name, or for the Prometheus registry to register metrics on, so instrumentation never needs to thread a dozen
// separate handles through a processor's constructor.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
)

// Telemetry is the process-wide observability root. Zero value is not
// usable; construct with New.
type Telemetry struct {
	logger         *logrus.Logger
	registry       *prometheus.Registry
	tracerProvider trace.TracerProvider
}

// Option configures a Telemetry at construction time.
type Option func(*Telemetry)

// WithLogger overrides the default logrus logger.
func WithLogger(l *logrus.Logger) Option {
	return func(t *Telemetry) { t.logger = l }
}

// WithRegistry overrides the default Prometheus registry.
func WithRegistry(r *prometheus.Registry) Option {
	return func(t *Telemetry) { t.registry = r }
}

// WithTracerProvider overrides the default no-op tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(t *Telemetry) { t.tracerProvider = tp }
}

// New returns a Telemetry with sane defaults: logrus's standard
// logger, a fresh Prometheus registry pre-registered with the Go and
// process collectors, and a no-op tracer provider (callers that want
// real spans pass WithTracerProvider, typically built from
// go.opentelemetry.io/otel/sdk/trace in cmd/).
func New(opts ...Option) *Telemetry {
	t := &Telemetry{
		logger:         logrus.StandardLogger(),
		registry:       prometheus.NewRegistry(),
		tracerProvider: trace.NewNoopTracerProvider(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.registry.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return t
}

// Logger returns a logger scoped to name via the "component" field.
func (t *Telemetry) Logger(name string) *logrus.Entry {
	return t.logger.WithField("component", name)
}

// Tracer returns a tracer scoped to name.
func (t *Telemetry) Tracer(name string) trace.Tracer {
	return t.tracerProvider.Tracer(name)
}

// Registry returns the Prometheus registry every processor's own
// collectors should register themselves against.
func (t *Telemetry) Registry() *prometheus.Registry {
	return t.registry
}

// SetLevel adjusts the logger's minimum level, mirroring the
// `-log-level` flag wiring in `pkg/flags.ConfigureAndParse`.
func (t *Telemetry) SetLevel(level logrus.Level) {
	t.logger.SetLevel(level)
}
