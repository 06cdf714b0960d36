package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/cstruct/schema"
)

func newEncodeCmd(a *app) *cobra.Command {
	var (
		flags  recordFlags
		values string
		output string
	)
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode records from a YAML value list",
		Long: `Encode a YAML list of records, each a mapping keyed by field name or a
list in field order, and write the packed bytes back to back.

Example:
  cstruct encode -s packets.yaml -r Header -v headers.yaml -o headers.bin`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := flags.resolve(a)
			if err != nil {
				return err
			}
			in, err := openInput(cmd, values)
			if err != nil {
				return err
			}
			data, err := io.ReadAll(in)
			in.Close()
			if err != nil {
				return fmt.Errorf("read values: %w", err)
			}
			var items []any
			if err := yaml.Unmarshal(data, &items); err != nil {
				return fmt.Errorf("failed to parse values: %w", err)
			}

			var out io.Writer = cmd.OutOrStdout()
			if output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create output: %w", err)
				}
				defer f.Close()
				out = f
			}
			for i, item := range items {
				positional, err := schema.Positional(r, item)
				if err != nil {
					return fmt.Errorf("value %d: %w", i, err)
				}
				inst, err := r.New(positional...)
				if err != nil {
					return fmt.Errorf("value %d: %w", i, err)
				}
				if _, err := inst.WriteTo(out); err != nil {
					return fmt.Errorf("value %d: %w", i, err)
				}
			}
			a.log.Debug("records encoded", zap.String("record", r.Name()), zap.Int("count", len(items)))
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&values, "values", "v", "-", "YAML values file, - for standard input")
	cmd.Flags().StringVarP(&output, "output", "o", "-", "output file, - for standard output")
	return cmd
}
