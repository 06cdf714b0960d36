package main

import (
	"fmt"

	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"

	"github.com/wippyai/cstruct/record"
	"github.com/wippyai/cstruct/store"
)

func newStoreCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Keep decoded records in a local Pebble store",
		Long: `Store records by KSUID. The store directory comes from store.dir in
the config file or --dir.

Example:
  cstruct store put -s packets.yaml -r Header capture.bin
  cstruct store list -s packets.yaml -r Header
  cstruct store get -s packets.yaml -r Header 2NxHPK6cMfWmK4jDAa5Y3Hzqk8M`,
	}
	var dir string
	cmd.PersistentFlags().StringVar(&dir, "dir", "", "store directory (overrides config)")

	open := func() (*store.Store, error) {
		d := a.cfg.Store.Dir
		if dir != "" {
			d = dir
		}
		return store.Open(d, store.WithSync(a.cfg.Store.Sync))
	}

	cmd.AddCommand(
		newStorePutCmd(a, open),
		newStoreGetCmd(a, open),
		newStoreListCmd(a, open),
		newStoreDeleteCmd(a, open),
	)
	return cmd
}

type storeOpener func() (*store.Store, error)

func newStorePutCmd(a *app, open storeOpener) *cobra.Command {
	var (
		flags  recordFlags
		stream streamOptions
	)
	cmd := &cobra.Command{
		Use:   "put <file>",
		Short: "Store every record in a binary file",
		Args:  cobra.ExactArgs(1),
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
			s, err := open()
			if err != nil {
				return err
			}
			defer s.Close()

			return eachRecord(r, in, stream, func(_ int, inst *record.Instance) error {
				id, err := s.Put(inst)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), id)
				return nil
			})
		},
	}
	flags.register(cmd)
	stream.register(cmd)
	return cmd
}

func newStoreGetCmd(a *app, open storeOpener) *cobra.Command {
	var flags recordFlags
	cmd := &cobra.Command{
		Use:   "get <id>...",
		Short: "Print stored records",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := flags.resolve(a)
			if err != nil {
				return err
			}
			s, err := open()
			if err != nil {
				return err
			}
			defer s.Close()

			for _, arg := range args {
				id, err := ksuid.Parse(arg)
				if err != nil {
					return fmt.Errorf("invalid id %q: %w", arg, err)
				}
				inst, err := s.Get(r, id)
				if err != nil {
					return err
				}
				if err := a.printer.Instance(inst); err != nil {
					return err
				}
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newStoreListCmd(a *app, open storeOpener) *cobra.Command {
	var flags recordFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored ids, or record names when no schema is given",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open()
			if err != nil {
				return err
			}
			defer s.Close()

			if flags.schema == "" {
				names, err := s.Names()
				if err != nil {
					return err
				}
				for _, name := range names {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			}
			r, err := flags.resolve(a)
			if err != nil {
				return err
			}
			ids, err := s.List(r)
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", id, id.Time().UTC().Format("2006-01-02T15:04:05Z"))
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newStoreDeleteCmd(a *app, open storeOpener) *cobra.Command {
	var flags recordFlags
	cmd := &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete stored records",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := flags.resolve(a)
			if err != nil {
				return err
			}
			s, err := open()
			if err != nil {
				return err
			}
			defer s.Close()

			for _, arg := range args {
				id, err := ksuid.Parse(arg)
				if err != nil {
					return fmt.Errorf("invalid id %q: %w", arg, err)
				}
				if err := s.Delete(r, id); err != nil {
					return err
				}
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}
