package cli

import (
	"os"
	"path/filepath"

	"github.com/prosaframework/prosa/core/descriptor"
	"github.com/spf13/cobra"
)

func newCmdNew() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Scaffold a new ProSA process directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			if err := os.Mkdir(dir, 0o755); err != nil {
				return err
			}
			return descriptor.New().Create(filepath.Join(dir, "ProSA.toml"))
		},
	}
	return cmd
}
