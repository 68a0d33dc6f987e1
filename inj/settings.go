// Package inj implements a demonstration injector processor: a
// processor that builds its own transactions and sends them to a
// target service at a regulated pace.
package inj

import (
	"time"

	"github.com/prosaframework/prosa/core/proc"
	"github.com/prosaframework/prosa/core/regulator"
)

// Package defaults for the injector pacing parameters.
const (
	DefaultMaxSpeed          = 5.0
	DefaultTimeoutThreshold  = 10 * time.Second
	DefaultMaxConcurrentSend = 1
	DefaultSpeedInterval     = regulator.DefaultWindow
)

// Settings configures the target service and pacing parameters.
type Settings struct {
	proc.ProcConfig `mapstructure:",squash"`

	// ServiceName is the target service every built transaction is
	// sent to.
	ServiceName string `mapstructure:"service_name"`
	// MaxSpeed caps throughput in transactions per second.
	MaxSpeed float64 `mapstructure:"max_speed"`
	// TimeoutThreshold is the elapsed time past which a response is
	// charged as cooldown overhead against the next send.
	TimeoutThreshold time.Duration `mapstructure:"timeout_threshold"`
	// MaxConcurrentSend caps the number of transactions in flight at
	// once.
	MaxConcurrentSend uint32 `mapstructure:"max_concurrents_send"`
	// SpeedInterval is the number of past sends GetSpeed/GetDuration
	// average over.
	SpeedInterval uint16 `mapstructure:"speed_interval"`
}

// NewSettings returns Settings targeting serviceName with the package
// defaults for pacing.
func NewSettings(serviceName string) Settings {
	return Settings{
		ServiceName:       serviceName,
		MaxSpeed:          DefaultMaxSpeed,
		TimeoutThreshold:  DefaultTimeoutThreshold,
		MaxConcurrentSend: DefaultMaxConcurrentSend,
		SpeedInterval:     DefaultSpeedInterval,
	}
}

// GetRegulator builds the Regulator these settings describe, falling
// back to the package defaults for a zero SpeedInterval,
// MaxConcurrentSend or TimeoutThreshold. A zero MaxSpeed is passed
// through as is, which disables rate pacing.
func (s Settings) GetRegulator() *regulator.Regulator {
	window := int(s.SpeedInterval)
	if window == 0 {
		window = DefaultSpeedInterval
	}
	maxConcurrent := int(s.MaxConcurrentSend)
	if maxConcurrent == 0 {
		maxConcurrent = DefaultMaxConcurrentSend
	}
	threshold := s.TimeoutThreshold
	if threshold == 0 {
		threshold = DefaultTimeoutThreshold
	}
	return regulator.New(s.MaxSpeed, window, maxConcurrent, threshold)
}
