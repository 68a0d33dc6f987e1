package cli

import (
	"github.com/prosaframework/prosa/core/descriptor"
	"github.com/spf13/cobra"
)

func newCmdAdd() *cobra.Command {
	var procName, adaptor, displayName string

	cmd := &cobra.Command{
		Use:   "add <processor>",
		Short: "Register a processor entry in the descriptor",
		Long:  "Register a processor entry in the descriptor. <processor> is the fully-qualified processor type name.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Flag variables outlive one Execute call on the shared
			// RootCmd; clear them so a later invocation starts empty.
			defer func() { procName, adaptor, displayName = "", "", "" }()
			if procName == "" {
				return usageErrorf("add: --proc-name is required")
			}
			if adaptor == "" {
				return usageErrorf("add: --adaptor is required")
			}

			d, err := descriptor.Read(descriptorPath)
			if err != nil {
				return err
			}

			entry := descriptor.NewProcDesc(procName, args[0], adaptor)
			entry.Name = displayName
			if err := entry.Validate(); err != nil {
				return usageErrorf("%s", err)
			}
			d.AddProc(entry)

			return d.Create(descriptorPath)
		},
	}

	cmd.Flags().StringVar(&procName, "proc-name", "", "Service family this processor advertises")
	cmd.Flags().StringVar(&adaptor, "adaptor", "", "Fully-qualified adaptor type name")
	cmd.Flags().StringVar(&displayName, "name", "", "Display name override, unique within this process")

	return cmd
}
