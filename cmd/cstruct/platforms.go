package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wippyai/cstruct/platform"
)

func newPlatformsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "platforms",
		Short: "List the C data models available for native width",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			host := platform.Host()
			for _, m := range platform.All() {
				marker := " "
				if host != nil && m.Name == host.Name {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %-12s ptr %d  %s\n", marker, m.Name, m.PointerSize(), m.Description)
			}
			return nil
		},
	}
}
