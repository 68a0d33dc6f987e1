// Package settings defines the top-level running configuration every
// ProSA process loads at startup. A concrete process settings type
// embeds Base and satisfies Settings; GetConfigBuilder loads that
// document from a single file or a directory of fragments, using
// viper rather than introducing a new config library.
package settings

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/prosaframework/prosa/telemetry"
	"github.com/spf13/viper"
	yamlenc "sigs.k8s.io/yaml"
)

// Settings is the contract every process settings type satisfies for
// the top-level configuration document: a running name defaulting to
// prosa-$HOSTNAME or prosa, and the observability section
// telemetry.FromObservability builds from.
type Settings interface {
	GetProsaName() string
	SetProsaName(name string)
	GetObservability() *telemetry.Observability
}

// Base is the embeddable implementation of Settings a concrete
// process settings struct composes to get the `name` and
// `observability` fields for free.
type Base struct {
	Name          string                  `mapstructure:"name" json:"name,omitempty" toml:"name,omitempty"`
	Observability telemetry.Observability `mapstructure:"observability" json:"observability,omitempty" toml:"observability,omitempty"`
}

// GetProsaName returns the configured name, or "prosa-$HOSTNAME" when
// HOSTNAME is set, or "prosa" otherwise.
func (b *Base) GetProsaName() string {
	if b.Name != "" {
		return b.Name
	}
	if hostname := os.Getenv("HOSTNAME"); hostname != "" {
		return fmt.Sprintf("prosa-%s", hostname)
	}
	return "prosa"
}

// SetProsaName overrides the configured name.
func (b *Base) SetProsaName(name string) { b.Name = name }

// GetObservability returns the observability section of the settings
// document.
func (b *Base) GetObservability() *telemetry.Observability { return &b.Observability }

// GetConfigBuilder returns a *viper.Viper sourced from path, which may
// be either a single YAML/TOML file or a directory containing several
// such fragments.
func GetConfigBuilder(path string) (*viper.Viper, error) {
	v := viper.New()

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	switch {
	case info.Mode()&os.ModeSymlink != 0:
		target, err := filepath.EvalSymlinks(path)
		if err != nil {
			return nil, err
		}
		return GetConfigBuilder(target)
	case info.IsDir():
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, err
		}
		merged := false
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			ext := strings.TrimPrefix(filepath.Ext(e.Name()), ".")
			if ext != "yml" && ext != "yaml" && ext != "toml" {
				continue
			}
			v.SetConfigFile(filepath.Join(path, e.Name()))
			if merged {
				if err := v.MergeInConfig(); err != nil {
					return nil, err
				}
			} else {
				if err := v.ReadInConfig(); err != nil {
					return nil, err
				}
				merged = true
			}
		}
		return v, nil
	case info.Mode().IsRegular():
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, fmt.Errorf("settings: unrecognized filetype for path %q", path)
	}
}

// GetAdaptorConfigBuilder returns a *viper.Viper merged from every
// YAML/TOML file matching pattern, in glob order. An adaptor's own
// configuration is typically split across fragments dropped into a
// conf.d-style directory, so a glob rather than a single path is the
// natural unit here.
func GetAdaptorConfigBuilder(pattern string) (*viper.Viper, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}

	v := viper.New()
	merged := false
	for _, match := range matches {
		ext := strings.TrimPrefix(filepath.Ext(match), ".")
		if ext != "yml" && ext != "yaml" && ext != "toml" {
			continue
		}
		v.SetConfigFile(match)
		if merged {
			if err := v.MergeInConfig(); err != nil {
				return nil, err
			}
		} else {
			if err := v.ReadInConfig(); err != nil {
				return nil, err
			}
			merged = true
		}
	}
	return v, nil
}

// WriteConfig serializes s to configPath, writing TOML if the path
// ends in .toml and YAML otherwise.
func WriteConfig(s Settings, configPath string) error {
	f, err := os.Create(configPath)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := io.WriteString(f, "# ProSA default settings\n"); err != nil {
		return err
	}

	if strings.HasSuffix(configPath, ".toml") {
		return writeTOML(f, s)
	}
	return writeYAML(f, s)
}

func writeYAML(w io.Writer, s Settings) error {
	b, err := yamlenc.Marshal(s)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

func writeTOML(w io.Writer, s Settings) error {
	enc := toml.NewEncoder(w)
	return enc.Encode(s)
}
