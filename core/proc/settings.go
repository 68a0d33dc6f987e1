// Package proc implements the processor runtime: the Proc contract a
// concrete processor satisfies, the ProcBusParam handle it uses to
// talk to the main task, and the Supervise loop that restarts it with
// exponential backoff.
package proc

import (
	"time"

	"github.com/prosaframework/prosa/core/settings"
	"github.com/spf13/viper"
)

// DefaultQueueCapacity is the bounded internal-message queue size a
// processor gets unless its configuration overrides it.
const DefaultQueueCapacity uint32 = 2048

// DefaultRestartBase and DefaultRestartCap are the backoff parameters
// used when a processor's settings don't specify their own.
const (
	DefaultRestartBase = 50 * time.Millisecond
	DefaultRestartCap  = 30 * time.Second
)

// ProcSettings is the contract every processor's settings type
// satisfies: the supervision loop's backoff base delay and cap.
type ProcSettings interface {
	// GetProcRestartDelay returns the base backoff delay and the cap,
	// in whole seconds, the supervision loop uses for this processor.
	GetProcRestartDelay() (base time.Duration, capSeconds uint32)
}

// ProcConfig is the process-configuration-driven ProcSettings
// implementation ("adaptor_config_path, proc_restart_duration_period,
// proc_max_restart_period"), loaded via viper alongside the rest of
// the per-processor config document.
type ProcConfig struct {
	AdaptorConfigPath    string        `mapstructure:"adaptor_config_path"`
	RestartDurationPeriod time.Duration `mapstructure:"proc_restart_duration_period"`
	MaxRestartPeriod     time.Duration `mapstructure:"proc_max_restart_period"`
	QueueCapacity        uint32        `mapstructure:"queue_capacity"`
}

// GetProcRestartDelay implements ProcSettings, falling back to the
// package defaults for any zero-valued field.
func (c ProcConfig) GetProcRestartDelay() (time.Duration, uint32) {
	base := c.RestartDurationPeriod
	if base <= 0 {
		base = DefaultRestartBase
	}
	cap := c.MaxRestartPeriod
	if cap <= 0 {
		cap = DefaultRestartCap
	}
	return base, uint32(cap / time.Second)
}

// Capacity returns the processor's internal-message queue capacity,
// falling back to DefaultQueueCapacity.
func (c ProcConfig) Capacity() uint32 {
	if c.QueueCapacity == 0 {
		return DefaultQueueCapacity
	}
	return c.QueueCapacity
}

// GetAdaptorConfig loads the adaptor's own configuration from the
// glob-matched file(s) AdaptorConfigPath names, merged in glob order.
// ok is false when no path is configured, leaving the adaptor on its
// compiled-in defaults.
func (c ProcConfig) GetAdaptorConfig() (v *viper.Viper, ok bool, err error) {
	if c.AdaptorConfigPath == "" {
		return nil, false, nil
	}
	v, err = settings.GetAdaptorConfigBuilder(c.AdaptorConfigPath)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}
