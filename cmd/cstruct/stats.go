package main

import (
	"github.com/spf13/cobra"

	"github.com/wippyai/cstruct/record"
	"github.com/wippyai/cstruct/stats"
)

func newStatsCmd(a *app) *cobra.Command {
	var (
		flags  recordFlags
		stream streamOptions
	)
	cmd := &cobra.Command{
		Use:   "stats <file>",
		Short: "Summarize numeric fields over a record file",
		Long: `Compute count, mean, standard deviation, min, median and max for
every numeric field across the records in a file.

Example:
  cstruct stats -s sensors.yaml -r Reading readings.bin`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := flags.resolve(a)
			if err != nil {
				return err
			}
			in, err := openInput(cmd, args[0])
			if err != nil {
				return err
			}
			defer in.Close()

			acc := stats.NewAccumulator(r)
			err = eachRecord(r, in, stream, func(_ int, inst *record.Instance) error {
				return acc.Add(inst)
			})
			if err != nil {
				return err
			}
			return a.printer.Summary(acc.Summary())
		},
	}
	flags.register(cmd)
	stream.register(cmd)
	return cmd
}
