package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wbrown/imagekit"
	"github.com/wbrown/imagekit/imageutil"
)

func newKernelsCmd() *cobra.Command {
	var ops bool
	cmd := &cobra.Command{
		Use:   "kernels",
		Short: "List the built-in kernels, or with --ops the recipe operations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			if ops {
				for _, name := range imagekit.Names() {
					op, _ := imagekit.Lookup(name)
					fmt.Fprintf(w, "%-14s %s\n", name, op.Description())
				}
				return nil
			}

			for _, kt := range imageutil.KernelTypes {
				k := kt.Kernel()
				fmt.Fprintf(w, "%s (sum %g)\n", kt, k.Sum())
				for _, line := range strings.Split(k.String(), "\n") {
					fmt.Fprintf(w, "    %s\n", line)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&ops, "ops", false, "List recipe operations instead")
	return cmd
}
