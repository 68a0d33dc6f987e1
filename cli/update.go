package cli

import (
	"github.com/prosaframework/prosa/core/descriptor"
	"github.com/spf13/cobra"
)

func newCmdUpdate() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Validate and rewrite the descriptor in its canonical form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := descriptor.Read(descriptorPath)
			if err != nil {
				return err
			}
			return d.Create(descriptorPath)
		},
	}
	return cmd
}
