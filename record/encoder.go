package record

import (
	"encoding/binary"
	"math"
	"reflect"

	"github.com/wippyai/cstruct/errors"
	"github.com/wippyai/cstruct/record/internal/abi"
)

// Encode packs one value per field into a fresh buffer of exactly Size
// bytes. Padding is zero. Nothing is returned on a mismatch.
func (l *Layout) Encode(values []any) ([]byte, error) {
	return encodeLayout(l, values)
}

type encoder struct {
	buf   []byte
	order binary.ByteOrder
	cur   cursor
}

func encodeLayout(l *Layout, values []any) ([]byte, error) {
	e := &encoder{
		buf:   make([]byte, l.Size),
		order: l.Order.binary(),
		cur:   cursor{tokens: l.Tokens},
	}
	if err := e.fields(l, values, []string{l.Name}); err != nil {
		return nil, err
	}
	return e.buf, nil
}

func (e *encoder) fields(l *Layout, values []any, path []string) error {
	if len(values) != len(l.Fields) {
		return errors.New(errors.PhaseEncode, errors.KindValueMismatch).
			Path(path...).
			Value(len(values)).
			Detail("expected %d values, got %d", len(l.Fields), len(values)).
			Build()
	}
	for i, f := range l.Fields {
		if err := e.value(f.Type, values[i], childPath(path, f.Name)); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) value(t Type, v any, path []string) error {
	switch tt := t.(type) {
	case *Array:
		return e.array(tt, v, path)
	case *Record:
		return e.record(tt, v, path)
	default:
		tok, off, err := e.cur.take(1, errors.PhaseEncode, path)
		if err != nil {
			return err
		}
		return e.scalar(tok, off, v, path, t.String())
	}
}

func (e *encoder) array(a *Array, v any, path []string) error {
	switch a.elem.(type) {
	case *Array, *Record:
		seq, err := sequence(a, v, path)
		if err != nil {
			return err
		}
		for i, item := range seq {
			if err := e.value(a.elem, item, indexed(path, i)); err != nil {
				return err
			}
		}
		return nil
	}

	tok, off, err := e.cur.take(a.length, errors.PhaseEncode, path)
	if err != nil {
		return err
	}

	if tok.Kind == KindChar {
		if b, ok := charBytes(v); ok {
			if len(b) != a.length {
				return errors.LengthMismatch(path, a.String(), a.length, len(b))
			}
			copy(e.buf[off:], b)
			return nil
		}
	}

	seq, err := sequence(a, v, path)
	if err != nil {
		return err
	}
	ctype := a.elem.String()
	for i, item := range seq {
		if err := e.scalar(tok, off+i*tok.Width, item, indexed(path, i), ctype); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) record(r *Record, v any, path []string) error {
	l := r.Layout()
	if l == nil {
		return errors.New(errors.PhaseEncode, errors.KindConfiguration).
			Path(path...).
			Detail("record %s is not defined", r.name).
			Build()
	}

	var values []any
	switch x := v.(type) {
	case *Instance:
		if x == nil || x.typ != r {
			return errors.TypeMismatch(path, abi.TypeName(v), r.String())
		}
		values = x.values
	case []any:
		values = x
	default:
		return errors.TypeMismatch(path, abi.TypeName(v), r.String())
	}
	return e.fields(l, values, path)
}

func (e *encoder) scalar(tok Token, off int, v any, path []string, ctype string) error {
	p := e.buf[off : off+tok.Width]
	k := tok.Kind

	switch {
	case k == KindChar:
		b, ok := abi.CoerceToByte(v)
		if !ok {
			return errors.TypeMismatch(path, abi.TypeName(v), ctype)
		}
		p[0] = b

	case k == KindBool:
		b, ok := abi.CoerceToBool(v)
		if !ok {
			return errors.TypeMismatch(path, abi.TypeName(v), ctype)
		}
		if b {
			abi.PutUint(e.order, p, 1)
		}

	case k.IsFloat():
		f, ok := abi.CoerceToFloat64(v)
		if !ok {
			return errors.TypeMismatch(path, abi.TypeName(v), ctype)
		}
		if tok.Width == 4 {
			if !math.IsInf(f, 0) && !math.IsNaN(f) && math.Abs(f) > math.MaxFloat32 {
				return errors.Overflow(path, v, ctype)
			}
			abi.PutUint(e.order, p, uint64(math.Float32bits(float32(f))))
		} else {
			abi.PutUint(e.order, p, math.Float64bits(f))
		}

	case k.IsSigned():
		i, ok := abi.CoerceToInt64(v)
		if !ok {
			if _, big := abi.CoerceToUint64(v); big {
				return errors.Overflow(path, v, ctype)
			}
			return errors.TypeMismatch(path, abi.TypeName(v), ctype)
		}
		if !abi.FitsSigned(i, tok.Width) {
			return errors.Overflow(path, v, ctype)
		}
		abi.PutUint(e.order, p, uint64(i))

	default:
		u, ok := abi.CoerceToUint64(v)
		if !ok {
			if i, neg := abi.CoerceToInt64(v); neg && i < 0 {
				return errors.Overflow(path, v, ctype)
			}
			return errors.TypeMismatch(path, abi.TypeName(v), ctype)
		}
		if !abi.FitsUnsigned(u, tok.Width) {
			return errors.Overflow(path, v, ctype)
		}
		abi.PutUint(e.order, p, u)
	}
	return nil
}

func charBytes(v any) ([]byte, bool) {
	switch x := v.(type) {
	case []byte:
		return x, true
	case string:
		return []byte(x), true
	}
	return nil, false
}

// sequence spreads any Go slice or array into exactly a.length items.
func sequence(a *Array, v any, path []string) ([]any, error) {
	if items, ok := v.([]any); ok {
		if len(items) != a.length {
			return nil, errors.LengthMismatch(path, a.String(), a.length, len(items))
		}
		return items, nil
	}
	if v == nil {
		return nil, errors.TypeMismatch(path, "nil", a.String())
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, errors.TypeMismatch(path, abi.TypeName(v), a.String())
	}
	if rv.Len() != a.length {
		return nil, errors.LengthMismatch(path, a.String(), a.length, rv.Len())
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, nil
}
