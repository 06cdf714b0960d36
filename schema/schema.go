package schema

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/multierr"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/cstruct/errors"
	"github.com/wippyai/cstruct/platform"
	"github.com/wippyai/cstruct/record"
)

// File is the on-disk form of a schema.
type File struct {
	Defaults Options     `yaml:"defaults"`
	Records  []RecordDef `yaml:"records"`
}

// Options selects byte order, width mode and data model. Empty values
// inherit from the enclosing scope.
type Options struct {
	ByteOrder string `yaml:"byte_order,omitempty"`
	Width     string `yaml:"width,omitempty"`
	Platform  string `yaml:"platform,omitempty"`
}

type RecordDef struct {
	Name    string     `yaml:"name"`
	Options `yaml:",inline"`
	Fields  []FieldDef `yaml:"fields"`
}

type FieldDef struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

func (o Options) merge(over Options) Options {
	if over.ByteOrder != "" {
		o.ByteOrder = over.ByteOrder
	}
	if over.Width != "" {
		o.Width = over.Width
	}
	if over.Platform != "" {
		o.Platform = over.Platform
	}
	return o
}

// RecordOptions converts o into definition options.
func (o Options) RecordOptions() ([]record.Option, error) {
	order, err := record.ParseByteOrder(o.ByteOrder)
	if err != nil {
		return nil, err
	}
	width, err := record.ParseWidthMode(o.Width)
	if err != nil {
		return nil, err
	}
	opts := []record.Option{record.WithByteOrder(order), record.WithWidth(width)}
	if o.Platform != "" {
		m, err := platform.Lookup(o.Platform)
		if err != nil {
			return nil, err
		}
		opts = append(opts, record.WithPlatform(m))
	}
	return opts, nil
}

// Schema is a set of defined records resolved from one file.
type Schema struct {
	records map[string]*record.Record
	order   []string
}

// Load reads and resolves a schema file. defaults apply where the file is
// silent.
func Load(path string, defaults Options) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindNotFound, err, "read schema "+path)
	}
	return Parse(data, defaults)
}

// Parse decodes YAML schema data and defines every record in it.
func Parse(data []byte, defaults Options) (*Schema, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.ParseFailed("schema", err)
	}
	return Build(f, defaults)
}

// Build defines the records of f. Records may reference each other in any
// order; embedding cycles are reported with the offending chain.
func Build(f File, defaults Options) (*Schema, error) {
	base := defaults.merge(f.Defaults)
	s := &Schema{records: make(map[string]*record.Record, len(f.Records))}
	defs := make(map[string]RecordDef, len(f.Records))

	var errs error
	for _, rd := range f.Records {
		if rd.Name == "" {
			errs = multierr.Append(errs, fmt.Errorf("record without a name"))
			continue
		}
		if _, dup := defs[rd.Name]; dup {
			errs = multierr.Append(errs, fmt.Errorf("record %s defined twice", rd.Name))
			continue
		}
		defs[rd.Name] = rd
		s.records[rd.Name] = record.Declare(rd.Name)
		s.order = append(s.order, rd.Name)
	}

	order, err := dependencyOrder(s.order, defs)
	errs = multierr.Append(errs, err)
	if errs != nil {
		return nil, loadError(errs)
	}

	resolve := func(name string) (*record.Record, bool) {
		r, ok := s.records[name]
		return r, ok
	}

	for _, name := range order {
		rd := defs[name]
		if err := s.define(rd, base.merge(rd.Options), resolve); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	if errs != nil {
		return nil, loadError(errs)
	}
	return s, nil
}

func loadError(errs error) error {
	return errors.New(errors.PhaseLoad, errors.KindConfiguration).
		Detail("invalid schema").
		Cause(errs).
		Build()
}

func (s *Schema) define(rd RecordDef, opts Options, resolve Resolver) error {
	var errs error
	fields := make([]record.Field, 0, len(rd.Fields))
	for _, fd := range rd.Fields {
		t, err := ParseType(fd.Type, resolve)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s.%s: %w", rd.Name, fd.Name, err))
			continue
		}
		fields = append(fields, record.Field{Name: fd.Name, Type: t})
	}

	ropts, err := opts.RecordOptions()
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("%s: %w", rd.Name, err))
	}
	if errs != nil {
		return errs
	}
	return s.records[rd.Name].Define(fields, ropts...)
}

// dependencyOrder sorts records so every record embedded by value is
// defined before its users.
func dependencyOrder(names []string, defs map[string]RecordDef) ([]string, error) {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(names))
	order := make([]string, 0, len(names))
	var errs error

	var visit func(name string, chain []string)
	visit = func(name string, chain []string) {
		switch state[name] {
		case done:
			return
		case visiting:
			start := slices.Index(chain, name)
			cycle := append(slices.Clone(chain[start:]), name)
			errs = multierr.Append(errs, fmt.Errorf("embedding cycle %s", strings.Join(cycle, " -> ")))
			return
		}
		state[name] = visiting
		chain = append(chain, name)
		for _, fd := range defs[name].Fields {
			for _, dep := range references(fd.Type) {
				if _, known := defs[dep]; known {
					visit(dep, chain)
				}
			}
		}
		state[name] = done
		order = append(order, name)
	}

	for _, name := range names {
		visit(name, nil)
	}
	return order, errs
}

// Record returns the named record.
func (s *Schema) Record(name string) (*record.Record, error) {
	r, ok := s.records[name]
	if !ok {
		return nil, errors.NotFound(errors.PhaseLoad, "record", name)
	}
	return r, nil
}

// Names lists record names in file order.
func (s *Schema) Names() []string {
	return slices.Clone(s.order)
}

// Sorted lists record names alphabetically.
func (s *Schema) Sorted() []string {
	names := maps.Keys(s.records)
	slices.Sort(names)
	return names
}

// Marshal renders f as YAML.
func Marshal(f File) ([]byte, error) {
	return yaml.Marshal(f)
}
