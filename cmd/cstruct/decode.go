package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/cstruct/record"
	"github.com/wippyai/cstruct/schema"
)

func newDecodeCmd(a *app) *cobra.Command {
	var (
		flags  recordFlags
		stream streamOptions
		hex    bool
		format string
	)
	cmd := &cobra.Command{
		Use:   "decode <file>",
		Short: "Decode consecutive records from a binary file",
		Long: `Decode a file of back-to-back records. Use "-" to read standard input.

Example:
  cstruct decode -s packets.yaml -r Header capture.bin
  cstruct decode -s packets.yaml -r Header --format yaml -n 10 capture.bin`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "text" && format != "yaml" {
				return fmt.Errorf("unknown format %q", format)
			}
			r, err := flags.resolve(a)
			if err != nil {
				return err
			}
			in, err := openInput(cmd, args[0])
			if err != nil {
				return err
			}
			defer in.Close()

			var docs []map[string]any
			err = eachRecord(r, in, stream, func(i int, inst *record.Instance) error {
				if format == "yaml" {
					docs = append(docs, schema.Named(inst))
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "#%d\n", i)
				if err := a.printer.Instance(inst); err != nil {
					return err
				}
				if hex {
					buf, err := inst.Bytes()
					if err != nil {
						return err
					}
					return a.printer.Bytes(r.Layout(), buf)
				}
				return nil
			})
			if err != nil {
				return err
			}
			if format == "yaml" {
				out, err := yaml.Marshal(docs)
				if err != nil {
					return fmt.Errorf("failed to marshal records: %w", err)
				}
				_, err = cmd.OutOrStdout().Write(out)
				return err
			}
			return nil
		},
	}
	flags.register(cmd)
	stream.register(cmd)
	cmd.Flags().BoolVar(&hex, "hex", false, "also print each record's bytes split by field")
	cmd.Flags().StringVar(&format, "format", "text", "output format: text or yaml")
	return cmd
}
