// Package descriptor reads and writes the ProSA.toml processor
// descriptor file the scaffolding CLI generates and consumes. The
// running process never reparses this file; it exists purely for the
// generator/CLI to locate the main task, the TVF, and each
// processor's (proc, adaptor) pair.
package descriptor

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// DefaultMain is the fully-qualified main-task type name a fresh
// descriptor is seeded with.
const DefaultMain = "github.com/prosaframework/prosa/core/bus.MainProc"

// DefaultTvf is the fully-qualified message-container type name a
// fresh descriptor is seeded with.
const DefaultTvf = "github.com/prosaframework/prosa/core/tvf.Simple"

// MainDesc names the main task type and the TVF (typed-value-field)
// message container type a process is built around.
type MainDesc struct {
	Main string `toml:"main"`
	Tvf  string `toml:"tvf"`
}

// DefaultMainDesc returns the descriptor's default [prosa] table.
func DefaultMainDesc() MainDesc {
	return MainDesc{Main: DefaultMain, Tvf: DefaultTvf}
}

// ProcDesc is one [[proc]] entry: a processor/adaptor pair registered
// under a service family name.
type ProcDesc struct {
	Name     string `toml:"name,omitempty"`
	ProcName string `toml:"proc_name"`
	Proc     string `toml:"proc"`
	Adaptor  string `toml:"adaptor"`
}

// NewProcDesc builds a ProcDesc with no display-name override, the
// same defaulting the generator applies when it first emits an entry.
func NewProcDesc(procName, proc, adaptor string) ProcDesc {
	return ProcDesc{ProcName: procName, Proc: proc, Adaptor: adaptor}
}

// GetName returns the display name for this processor: the optional
// override if set, otherwise the service family name.
func (p ProcDesc) GetName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.ProcName
}

func (p ProcDesc) String() string {
	display := p.Proc
	if p.Name != "" {
		display = p.Name
	}
	return fmt.Sprintf("ProSA processor %s (%s)\n  Processor %s\n  Adaptor %s\n",
		display, p.ProcName, p.Proc, p.Adaptor)
}

// Validate reports a configuration error if any of the three required
// fields is missing ("missing proc_name, proc, or adaptor is a
// configuration error").
func (p ProcDesc) Validate() error {
	switch {
	case p.ProcName == "":
		return fmt.Errorf("descriptor: proc entry missing proc_name")
	case p.Proc == "":
		return fmt.Errorf("descriptor: proc entry %q missing proc", p.ProcName)
	case p.Adaptor == "":
		return fmt.Errorf("descriptor: proc entry %q missing adaptor", p.ProcName)
	}
	return nil
}

// Desc is the full contents of a ProSA.toml file.
type Desc struct {
	Prosa MainDesc   `toml:"prosa"`
	Proc  []ProcDesc `toml:"proc,omitempty"`
}

// New returns a descriptor seeded with the default main task and TVF
// and no processors, the same starting point the `new`/`init` CLI
// subcommands create.
func New() *Desc {
	return &Desc{Prosa: DefaultMainDesc()}
}

// AddProc appends a processor entry to the descriptor.
func (d *Desc) AddProc(p ProcDesc) {
	d.Proc = append(d.Proc, p)
}

// Validate checks the [prosa] table and every [[proc]] entry.
func (d *Desc) Validate() error {
	if d.Prosa.Main == "" {
		return fmt.Errorf("descriptor: [prosa] missing main")
	}
	if d.Prosa.Tvf == "" {
		return fmt.Errorf("descriptor: [prosa] missing tvf")
	}
	for _, p := range d.Proc {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Create writes d to path as a ProSA.toml file.
func (d *Desc) Create(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := fmt.Fprintln(f, "# ProSA definition"); err != nil {
		return err
	}
	enc := toml.NewEncoder(f)
	return enc.Encode(d)
}

// Read loads and validates a ProSA.toml file from path.
func Read(path string) (*Desc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var d Desc
	if err := toml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("descriptor: parsing %s: %w", path, err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}
