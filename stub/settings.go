// Package stub implements a demonstration processor: a processor that
// answers every request for its configured service names by
// delegating to a core/adaptor.Adaptor.
package stub

import "github.com/prosaframework/prosa/core/proc"

// Settings lists the service names a Proc responds to, embedding
// proc.ProcConfig for the restart-backoff and queue-capacity fields
// every processor's settings carries.
type Settings struct {
	proc.ProcConfig `mapstructure:",squash"`

	// ServiceNames are the service names this processor registers and
	// answers requests for.
	ServiceNames []string `mapstructure:"service_names"`
}

// NewSettings returns Settings for serviceNames with the package
// defaults for everything else.
func NewSettings(serviceNames []string) Settings {
	return Settings{ServiceNames: serviceNames}
}

// AddServiceName appends a service name to respond to.
func (s *Settings) AddServiceName(name string) {
	s.ServiceNames = append(s.ServiceNames, name)
}
