package main

import (
	"github.com/spf13/cobra"
)

func newLayoutCmd(a *app) *cobra.Command {
	var flags recordFlags
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Show the compiled layout of schema records",
		Long: `Show format string, size, alignment and field offsets. Without
--record every record in the schema is shown in file order.

Example:
  cstruct layout -s packets.yaml -r Header`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.loadSchema(flags.schema)
			if err != nil {
				return err
			}
			names := s.Names()
			if flags.record != "" {
				names = []string{flags.record}
			}
			for _, name := range names {
				r, err := s.Record(name)
				if err != nil {
					return err
				}
				if err := a.printer.Layout(r.Layout()); err != nil {
					return err
				}
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}
