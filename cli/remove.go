package cli

import (
	"github.com/prosaframework/prosa/core/descriptor"
	"github.com/spf13/cobra"
)

func newCmdRemove() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <processors...>",
		Short: "Remove one or more processor entries from the descriptor",
		Long:  "Remove one or more processor entries from the descriptor, matched by display name (or proc_name if no display name override was set).",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := descriptor.Read(descriptorPath)
			if err != nil {
				return err
			}

			targets := make(map[string]bool, len(args))
			for _, a := range args {
				targets[a] = true
			}

			kept := d.Proc[:0]
			for _, p := range d.Proc {
				if targets[p.GetName()] {
					continue
				}
				kept = append(kept, p)
			}
			d.Proc = kept

			return d.Create(descriptorPath)
		},
	}
	return cmd
}
