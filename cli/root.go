// Package cli implements prosactl, a scaffolding tool: it reads and
// writes a ProSA.toml processor descriptor but never runs a process
// itself, mirroring the cobra command tree
// structure of cli/cmd/root.go.
package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// special handling for Windows, on all other platforms these resolve
	// to os.Stdout and os.Stderr.
	stdout = color.Output
	stderr = color.Error

	descriptorPath string
	verbose        bool
)

// RootCmd is prosactl's top-level command: scaffolding only, never
// part of the runtime core.
var RootCmd = &cobra.Command{
	Use:   "prosactl",
	Short: "prosactl scaffolds and inspects ProSA processes",
	Long:  `prosactl scaffolds and inspects ProSA processes described by a ProSA.toml descriptor.`,

	// Errors are reported by Execute's caller via ExitCode, not printed
	// twice by cobra's own usage/error output.
	SilenceUsage:  true,
	SilenceErrors: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			logrus.SetLevel(logrus.DebugLevel)
		} else {
			logrus.SetLevel(logrus.WarnLevel)
		}
		return nil
	},
}

func init() {
	RootCmd.PersistentFlags().StringVar(&descriptorPath, "descriptor", "ProSA.toml", "Path to the processor descriptor file")
	RootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Turn on debug logging")

	RootCmd.AddCommand(newCmdNew())
	RootCmd.AddCommand(newCmdInit())
	RootCmd.AddCommand(newCmdUpdate())
	RootCmd.AddCommand(newCmdAdd())
	RootCmd.AddCommand(newCmdRemove())
	RootCmd.AddCommand(newCmdMain())
	RootCmd.AddCommand(newCmdTvf())
	RootCmd.AddCommand(newCmdList())
	RootCmd.AddCommand(newCmdContainer())
	RootCmd.AddCommand(newCmdCompletion())
}

// UsageError marks a failure as exit code 2 ("unrecognized subcommand
// or usage error"), as distinct from an I/O or descriptor failure,
// which reports as a plain error (exit code 1).
type UsageError struct{ msg string }

func (e *UsageError) Error() string { return e.msg }

func usageErrorf(format string, args ...any) error {
	return &UsageError{msg: fmt.Sprintf(format, args...)}
}

// ExitCode translates the error Execute returns into the process exit
// code: 0 on success (callers never pass nil here), 2 for an
// unrecognized subcommand or a UsageError, 1 for everything else (a
// descriptor read/write failure, typically).
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if _, ok := err.(*UsageError); ok {
		return 2
	}
	msg := err.Error()
	if strings.Contains(msg, "unknown command") || strings.Contains(msg, "unknown flag") || strings.Contains(msg, "unknown shorthand flag") {
		return 2
	}
	return 1
}
