package cli

import (
	"github.com/prosaframework/prosa/core/descriptor"
	"github.com/spf13/cobra"
)

func newCmdMain() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "main <processor>",
		Short: "Set the [prosa].main entry of the descriptor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := descriptor.Read(descriptorPath)
			if err != nil {
				return err
			}
			d.Prosa.Main = args[0]
			return d.Create(descriptorPath)
		},
	}
	return cmd
}
