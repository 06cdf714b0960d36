package schema

import (
	"fmt"

	"github.com/wippyai/cstruct/record"
)

// Positional converts loosely typed values, as produced by a YAML or JSON
// decoder, into the positional form record.Encode expects. A record value
// is either a mapping keyed by field name or a list in field order.
func Positional(r *record.Record, v any) ([]any, error) {
	fields := r.Fields()
	switch x := v.(type) {
	case map[string]any:
		out := make([]any, len(fields))
		for i, f := range fields {
			fv, ok := x[f.Name]
			if !ok {
				return nil, fmt.Errorf("%s: missing field %s", r.Name(), f.Name)
			}
			cv, err := convert(f.Type, fv)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", r.Name(), f.Name, err)
			}
			out[i] = cv
		}
		if len(x) > len(fields) {
			for k := range x {
				if _, ok := fieldIndex(fields, k); !ok {
					return nil, fmt.Errorf("%s: unknown field %s", r.Name(), k)
				}
			}
		}
		return out, nil

	case []any:
		if len(x) != len(fields) {
			return nil, fmt.Errorf("%s: expected %d values, got %d", r.Name(), len(fields), len(x))
		}
		out := make([]any, len(fields))
		for i, f := range fields {
			cv, err := convert(f.Type, x[i])
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", r.Name(), f.Name, err)
			}
			out[i] = cv
		}
		return out, nil
	}
	return nil, fmt.Errorf("%s: expected a mapping or a list, got %T", r.Name(), v)
}

// Named is the inverse of Positional for decoded instances: a mapping
// keyed by field name, embedded records included.
func Named(inst *record.Instance) map[string]any {
	fields := inst.Type().Fields()
	values := inst.Values()
	out := make(map[string]any, len(fields))
	for i, f := range fields {
		out[f.Name] = named(values[i])
	}
	return out
}

func named(v any) any {
	switch x := v.(type) {
	case *record.Instance:
		return Named(x)
	case []*record.Instance:
		out := make([]any, len(x))
		for i, inst := range x {
			out[i] = Named(inst)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = named(item)
		}
		return out
	case []byte:
		return string(x)
	}
	return v
}

func convert(t record.Type, v any) (any, error) {
	switch tt := t.(type) {
	case *record.Record:
		return Positional(tt, v)
	case *record.Array:
		if _, isRecord := tt.Base().(*record.Record); !isRecord {
			return v, nil
		}
		items, ok := v.([]any)
		if !ok {
			return nil, fmt.Errorf("expected a list for %s, got %T", tt, v)
		}
		out := make([]any, len(items))
		for i, item := range items {
			cv, err := convert(tt.Elem(), item)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = cv
		}
		return out, nil
	}
	return v, nil
}

func fieldIndex(fields []record.Field, name string) (int, bool) {
	for i, f := range fields {
		if f.Name == name {
			return i, true
		}
	}
	return 0, false
}
