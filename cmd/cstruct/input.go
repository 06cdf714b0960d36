package main

import (
	"bufio"
	goerrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/wippyai/cstruct/record"
)

// openInput opens path for reading; "-" is standard input.
func openInput(cmd *cobra.Command, path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	return f, nil
}

// streamOptions select a window of a record stream.
type streamOptions struct {
	skip  int
	count int
}

func (o *streamOptions) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&o.skip, "skip", 0, "records to skip before the first one processed")
	cmd.Flags().IntVarP(&o.count, "count", "n", 0, "maximum records to process (0 for all)")
}

// eachRecord decodes consecutive records from rd and calls fn with the
// record's index in the stream.
func eachRecord(r *record.Record, rd io.Reader, opts streamOptions, fn func(int, *record.Instance) error) error {
	if r.Sizeof() == 0 {
		return fmt.Errorf("record %s is empty and cannot be streamed", r.Name())
	}
	br := bufio.NewReader(rd)
	done := 0
	for i := 0; opts.count == 0 || done < opts.count; i++ {
		inst, err := r.DecodeFrom(br)
		if goerrors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		if i < opts.skip {
			continue
		}
		if err := fn(i, inst); err != nil {
			return err
		}
		done++
	}
	return nil
}
