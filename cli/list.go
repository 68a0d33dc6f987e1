package cli

import (
	"fmt"

	"github.com/prosaframework/prosa/core/descriptor"
	"github.com/spf13/cobra"
)

func newCmdList() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the main task, TVF, and every registered processor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := descriptor.Read(descriptorPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "main: %s\n", d.Prosa.Main)
			fmt.Fprintf(stdout, "tvf:  %s\n", d.Prosa.Tvf)
			if len(d.Proc) == 0 {
				fmt.Fprintln(stdout, "(no processors registered)")
				return nil
			}
			for _, p := range d.Proc {
				fmt.Fprint(stdout, p.String())
			}
			return nil
		},
	}
	return cmd
}
