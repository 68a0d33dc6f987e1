package telemetry

import (
	"fmt"

	"github.com/sirupsen/logrus"
	stdouttrace "go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Observability is the settings-document section driving a process's
// Telemetry sink: log level plus which tracer exporter to wire up,
// matching the kind of document pkg/flags.ConfigureAndParse's
// `-log-level` flag and an OTLP/stdout/Prometheus exporter choice
// would otherwise be passed as individual flags.
type Observability struct {
	LogLevel       string `mapstructure:"log_level" json:"log_level,omitempty" yaml:"log_level,omitempty"`
	TracerExporter string `mapstructure:"tracer_exporter" json:"tracer_exporter,omitempty" yaml:"tracer_exporter,omitempty"`
	MetricsAddr    string `mapstructure:"metrics_addr" json:"metrics_addr,omitempty" yaml:"metrics_addr,omitempty"`
}

// DefaultObservability returns the zero-configuration defaults: info
// logging, no tracer export (a no-op tracer provider), and a metrics
// address of :9090, which FromObservability does not use.
func DefaultObservability() Observability {
	return Observability{
		LogLevel:       logrus.InfoLevel.String(),
		TracerExporter: "none",
		MetricsAddr:    ":9090",
	}
}

// FromObservability builds a Telemetry matching o: a logrus logger at
// the configured level, and a tracer provider backed by the requested
// exporter ("stdout" or "none"; any other value is rejected so a typo
// in config fails loudly rather than silently dropping spans).
func FromObservability(o Observability) (*Telemetry, error) {
	level, err := logrus.ParseLevel(orDefault(o.LogLevel, logrus.InfoLevel.String()))
	if err != nil {
		return nil, fmt.Errorf("telemetry: invalid log_level %q: %w", o.LogLevel, err)
	}
	logger := logrus.StandardLogger()
	logger.SetLevel(level)

	opts := []Option{WithLogger(logger)}

	switch orDefault(o.TracerExporter, "none") {
	case "none":
		// WithTracerProvider left unset: New's no-op default applies.
	case "stdout":
		exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("telemetry: building stdout tracer exporter: %w", err)
		}
		tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
		opts = append(opts, WithTracerProvider(tp))
	default:
		return nil, fmt.Errorf("telemetry: unknown tracer_exporter %q", o.TracerExporter)
	}

	return New(opts...), nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
