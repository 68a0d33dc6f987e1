package cli

import (
	"github.com/prosaframework/prosa/core/descriptor"
	"github.com/spf13/cobra"
)

func newCmdTvf() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tvf <format>",
		Short: "Set the [prosa].tvf entry of the descriptor",
		Long:  "Set the [prosa].tvf entry of the descriptor. <format> is the fully-qualified message-container type name.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := descriptor.Read(descriptorPath)
			if err != nil {
				return err
			}
			d.Prosa.Tvf = args[0]
			return d.Create(descriptorPath)
		},
	}
	return cmd
}
