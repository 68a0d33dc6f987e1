// Command prosactl scaffolds and inspects ProSA processes: it reads
// and writes a ProSA.toml descriptor but never runs a process itself.
package main

import (
	"fmt"
	"os"

	"github.com/prosaframework/prosa/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitCode(err))
	}
}
