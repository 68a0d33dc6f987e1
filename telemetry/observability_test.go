package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromObservabilityDefaults(t *testing.T) {
	tel, err := FromObservability(DefaultObservability())
	require.NoError(t, err)
	assert.NotNil(t, tel.Logger("test"))
}

func TestFromObservabilityStdoutTracer(t *testing.T) {
	o := DefaultObservability()
	o.TracerExporter = "stdout"
	tel, err := FromObservability(o)
	require.NoError(t, err)
	assert.NotNil(t, tel.Tracer("test"))
}

func TestFromObservabilityInvalidLogLevel(t *testing.T) {
	o := DefaultObservability()
	o.LogLevel = "not-a-level"
	_, err := FromObservability(o)
	assert.Error(t, err)
}

func TestFromObservabilityUnknownExporter(t *testing.T) {
	o := DefaultObservability()
	o.TracerExporter = "jaeger"
	_, err := FromObservability(o)
	assert.Error(t, err)
}
