package witrecord

import (
	"fmt"
	"sync"

	"go.bytecodealliance.org/wit"
	"go.uber.org/zap"

	"github.com/wippyai/cstruct/errors"
	"github.com/wippyai/cstruct/record"
	"github.com/wippyai/cstruct/wasmmem"
)

// Builder turns WIT record and tuple definitions into records. Each WIT
// type definition maps to exactly one record, so a record used by value in
// several places shares one layout.
type Builder struct {
	opts    []record.Option
	mu      sync.Mutex
	records map[*wit.TypeDef]*record.Record
}

// NewBuilder creates a builder. Without options records use the wasm32
// canonical layout from wasmmem.Options.
func NewBuilder(opts ...record.Option) (*Builder, error) {
	if len(opts) == 0 {
		def, err := wasmmem.Options()
		if err != nil {
			return nil, err
		}
		opts = def
	}
	return &Builder{
		opts:    opts,
		records: make(map[*wit.TypeDef]*record.Record),
	}, nil
}

// Record returns the record for a WIT record or tuple definition.
func (b *Builder) Record(t wit.Type) (*record.Record, error) {
	td, ok := t.(*wit.TypeDef)
	if !ok {
		return nil, errors.Configuration(nil, "%s is not a type definition", typeName(t))
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.record(td, "")
}

// Resolve builds every named record and tuple definition in res, keyed by
// WIT type name. Definitions that cannot be laid out flat (strings, lists,
// variants) are skipped and logged.
func (b *Builder) Resolve(res *wit.Resolve) (map[string]*record.Record, error) {
	if res == nil {
		return nil, errors.InvalidInput(errors.PhaseLoad, "nil resolve")
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make(map[string]*record.Record)
	for _, td := range res.TypeDefs {
		if td.Name == nil {
			continue
		}
		switch td.Kind.(type) {
		case *wit.Record, *wit.Tuple:
		default:
			continue
		}
		r, err := b.record(td, "")
		if err != nil {
			Logger().Debug("skipping WIT type",
				zap.String("type", *td.Name),
				zap.Error(err))
			continue
		}
		out[*td.Name] = r
	}
	return out, nil
}

// record builds td, naming anonymous definitions after hint.
func (b *Builder) record(td *wit.TypeDef, hint string) (*record.Record, error) {
	if r, ok := b.records[td]; ok {
		return r, nil
	}

	name := recordName(td, hint)
	var fields []record.Field
	switch kind := td.Kind.(type) {
	case *wit.Record:
		fields = make([]record.Field, 0, len(kind.Fields))
		for _, f := range kind.Fields {
			ft, err := b.fieldType(f.Type, name, f.Name)
			if err != nil {
				return nil, err
			}
			fields = append(fields, record.Field{Name: f.Name, Type: ft})
		}
	case *wit.Tuple:
		fields = make([]record.Field, 0, len(kind.Types))
		for i, t := range kind.Types {
			fname := fmt.Sprintf("f%d", i)
			ft, err := b.fieldType(t, name, fname)
			if err != nil {
				return nil, err
			}
			fields = append(fields, record.Field{Name: fname, Type: ft})
		}
	default:
		return nil, errors.Configuration([]string{name}, "%s is not a record or tuple", typeName(td))
	}

	r, err := record.Define(name, fields, b.opts...)
	if err != nil {
		return nil, err
	}
	b.records[td] = r
	Logger().Debug("WIT record built",
		zap.String("record", name),
		zap.Int("size", r.Sizeof()))
	return r, nil
}

func (b *Builder) fieldType(t wit.Type, owner, field string) (record.Type, error) {
	switch t := t.(type) {
	case wit.Bool:
		return record.Bool, nil
	case wit.S8:
		return record.Int8, nil
	case wit.U8:
		return record.Uint8, nil
	case wit.S16:
		return record.Int16, nil
	case wit.U16:
		return record.Uint16, nil
	case wit.S32:
		return record.Int32, nil
	case wit.U32:
		return record.Uint32, nil
	case wit.S64:
		return record.Int64, nil
	case wit.U64:
		return record.Uint64, nil
	case wit.F32:
		return record.Float, nil
	case wit.F64:
		return record.Double, nil
	case wit.Char:
		// Unicode scalar value
		return record.Uint32, nil
	case *wit.TypeDef:
		switch kind := t.Kind.(type) {
		case *wit.Record, *wit.Tuple:
			return b.record(t, owner+"."+field)
		case *wit.Enum:
			return discriminant(len(kind.Cases)), nil
		case *wit.Flags:
			return flags(len(kind.Flags))
		case wit.Type:
			// type alias
			return b.fieldType(kind, owner, field)
		}
	}
	return nil, errors.Configuration([]string{owner, field}, "WIT type %s has no fixed C layout", typeName(t))
}

// discriminant picks the smallest unsigned integer holding n enum cases.
func discriminant(n int) record.Type {
	switch {
	case n <= 1<<8:
		return record.Uint8
	case n <= 1<<16:
		return record.Uint16
	default:
		return record.Uint32
	}
}

// flags packs n flag bits into one integer, or into 32-bit words past 32.
func flags(n int) (record.Type, error) {
	switch {
	case n == 0:
		return nil, errors.Configuration(nil, "flags type has no flags")
	case n <= 8:
		return record.Uint8, nil
	case n <= 16:
		return record.Uint16, nil
	case n <= 32:
		return record.Uint32, nil
	default:
		a, err := record.ArrayOf(record.Uint32, (n+31)/32)
		if err != nil {
			return nil, err
		}
		return a, nil
	}
}

func recordName(td *wit.TypeDef, hint string) string {
	if td.Name != nil && *td.Name != "" {
		return *td.Name
	}
	if hint != "" {
		return hint
	}
	return "anonymous"
}

func typeName(t wit.Type) string {
	if td, ok := t.(*wit.TypeDef); ok {
		if td.Name != nil {
			return *td.Name
		}
		return fmt.Sprintf("%T", td.Kind)
	}
	return fmt.Sprintf("%T", t)
}
