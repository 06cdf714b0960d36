package main

import (
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/cstruct/config"
	"github.com/wippyai/cstruct/dump"
	"github.com/wippyai/cstruct/metrics"
	"github.com/wippyai/cstruct/record"
	"github.com/wippyai/cstruct/schema"
	"github.com/wippyai/cstruct/store"
	"github.com/wippyai/cstruct/wasmmem"
	"github.com/wippyai/cstruct/witrecord"
)

// app carries state shared by every subcommand. It is filled in by the
// root command's PersistentPreRunE.
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	printer *dump.Printer
	reg     *prometheus.Registry

	configPath string
	logLevel   string
	noColor    bool
	metrics    bool
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "cstruct",
		Short: "Inspect and convert binary C struct records",
		Long: `cstruct lays out C-struct-like records described in a YAML schema and
converts between their binary form and readable values.

Example:
  cstruct layout -s packets.yaml -r Header
  cstruct decode -s packets.yaml -r Header capture.bin`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.teardown(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	flags.StringVar(&a.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	flags.BoolVar(&a.noColor, "no-color", false, "disable colored output")
	flags.BoolVar(&a.metrics, "metrics", false, "print Prometheus metrics to stderr on exit")

	root.AddCommand(
		newLayoutCmd(a),
		newDecodeCmd(a),
		newEncodeCmd(a),
		newStatsCmd(a),
		newStoreCmd(a),
		newInspectCmd(a),
		newPlatformsCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg := config.DefaultConfig()
	path := a.configPath
	if path == "" && config.Exists(config.DefaultPath()) {
		path = config.DefaultPath()
	}
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if a.noColor {
		cfg.Output.Color = "never"
	}
	if a.metrics {
		cfg.Output.Metrics = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	log, err := cfg.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	a.log = log
	record.SetLogger(log.Named("record"))
	store.SetLogger(log.Named("store"))
	wasmmem.SetLogger(log.Named("wasmmem"))
	witrecord.SetLogger(log.Named("witrecord"))

	if cfg.Output.Metrics {
		a.reg = prometheus.NewRegistry()
		record.SetObserver(metrics.New(a.reg))
	}

	a.printer = dump.New(cmd.OutOrStdout(), a.color(cmd.OutOrStdout()))
	log.Debug("configured", zap.String("config", path), zap.String("color", cfg.Output.Color))
	return nil
}

func (a *app) teardown(cmd *cobra.Command) error {
	if a.log != nil {
		_ = a.log.Sync()
	}
	if a.reg == nil {
		return nil
	}
	record.SetObserver(nil)
	families, err := a.reg.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	enc := expfmt.NewEncoder(cmd.ErrOrStderr(), expfmt.FmtText)
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}
	return nil
}

// color resolves the "auto" setting against whether w is a terminal.
func (a *app) color(w io.Writer) bool {
	switch a.cfg.Output.Color {
	case "always":
		return true
	case "never":
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// loadSchema loads path with the configured defaults.
func (a *app) loadSchema(path string) (*schema.Schema, error) {
	if path == "" {
		return nil, fmt.Errorf("a schema file is required (--schema)")
	}
	s, err := schema.Load(path, a.cfg.Defaults)
	if err != nil {
		return nil, fmt.Errorf("load schema %s: %w", path, err)
	}
	return s, nil
}

// recordFlags are the --schema/--record pair most commands take.
type recordFlags struct {
	schema string
	record string
}

func (f *recordFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.schema, "schema", "s", "", "schema file")
	cmd.Flags().StringVarP(&f.record, "record", "r", "", "record name")
}

func (f *recordFlags) resolve(a *app) (*record.Record, error) {
	s, err := a.loadSchema(f.schema)
	if err != nil {
		return nil, err
	}
	if f.record == "" {
		names := s.Names()
		if len(names) != 1 {
			return nil, fmt.Errorf("schema defines %d records, pick one with --record", len(names))
		}
		return s.Record(names[0])
	}
	return s.Record(f.record)
}
