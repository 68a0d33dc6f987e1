package cli

import (
	"os"

	"github.com/prosaframework/prosa/core/descriptor"
	"github.com/spf13/cobra"
)

func newCmdInit() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a fresh ProSA.toml in the current directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(descriptorPath); err == nil {
				return usageErrorf("%s already exists", descriptorPath)
			}
			return descriptor.New().Create(descriptorPath)
		},
	}
	return cmd
}
