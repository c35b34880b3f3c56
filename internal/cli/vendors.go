package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/parlancehq/parlance"
)

func newVendorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vendors",
		Short: "List the supported vendors and their default models",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, vendor := range parlance.Vendors() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s\n", vendor, vendor.DefaultModel())
			}
		},
	}
}
