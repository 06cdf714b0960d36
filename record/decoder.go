package record

import (
	"encoding/binary"
	"math"

	"golang.org/x/exp/slices"

	"github.com/wippyai/cstruct/errors"
	"github.com/wippyai/cstruct/record/internal/abi"
)

// Decode unpacks buf into one value per field. Scalars decode to their Go
// type, the innermost array dimension to a typed slice (char to []byte),
// outer dimensions to []any, pointers to uint64 and embedded records to
// validated *Instance values. Returned slices never alias buf.
func (l *Layout) Decode(buf []byte) ([]any, error) {
	return decodeLayout(l, buf)
}

type decoder struct {
	buf   []byte
	order binary.ByteOrder
	cur   cursor
}

func decodeLayout(l *Layout, buf []byte) ([]any, error) {
	if len(buf) != l.Size {
		return nil, errors.SizeMismatch(errors.PhaseDecode, []string{l.Name}, l.Size, len(buf))
	}
	d := &decoder{
		buf:   buf,
		order: l.Order.binary(),
		cur:   cursor{tokens: l.Tokens},
	}
	return d.fields(l, []string{l.Name})
}

func (d *decoder) fields(l *Layout, path []string) ([]any, error) {
	values := make([]any, len(l.Fields))
	for i, f := range l.Fields {
		v, err := d.value(f.Type, childPath(path, f.Name))
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

func (d *decoder) value(t Type, path []string) (any, error) {
	switch tt := t.(type) {
	case *Array:
		return d.array(tt, path)
	case *Record:
		return d.record(tt, path)
	default:
		tok, off, err := d.cur.take(1, errors.PhaseDecode, path)
		if err != nil {
			return nil, err
		}
		return d.scalar(tok, d.buf[off:off+tok.Width]), nil
	}
}

func (d *decoder) array(a *Array, path []string) (any, error) {
	switch elem := a.elem.(type) {
	case *Array:
		out := make([]any, a.length)
		for i := range out {
			v, err := d.array(elem, indexed(path, i))
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil

	case *Record:
		out := make([]*Instance, a.length)
		for i := range out {
			inst, err := d.record(elem, indexed(path, i))
			if err != nil {
				return nil, err
			}
			out[i] = inst
		}
		return out, nil

	default:
		tok, off, err := d.cur.take(a.length, errors.PhaseDecode, path)
		if err != nil {
			return nil, err
		}
		return d.slice(tok, d.buf[off:off+a.length*tok.Width]), nil
	}
}

func (d *decoder) record(r *Record, path []string) (*Instance, error) {
	l := r.Layout()
	if l == nil {
		return nil, errors.New(errors.PhaseDecode, errors.KindConfiguration).
			Path(path...).
			Detail("record %s is not defined", r.name).
			Build()
	}
	values, err := d.fields(l, path)
	if err != nil {
		return nil, err
	}
	return r.bind(values)
}

func (d *decoder) signed(p []byte) int64 {
	return abi.SignExtend(abi.ReadUint(d.order, p), len(p))
}

func (d *decoder) unsigned(p []byte) uint64 {
	return abi.ReadUint(d.order, p)
}

func (d *decoder) scalar(tok Token, p []byte) any {
	switch tok.Kind {
	case KindChar, KindUChar:
		return p[0]
	case KindSChar:
		return int8(p[0])
	case KindBool:
		return d.unsigned(p) != 0
	case KindShort:
		return int16(d.signed(p))
	case KindUShort:
		return uint16(d.unsigned(p))
	case KindInt:
		return int32(d.signed(p))
	case KindUInt:
		return uint32(d.unsigned(p))
	case KindLong, KindLongLong, KindSSize:
		return d.signed(p)
	case KindFloat:
		return math.Float32frombits(uint32(d.unsigned(p)))
	case KindDouble:
		return math.Float64frombits(d.unsigned(p))
	default:
		return d.unsigned(p)
	}
}

func (d *decoder) slice(tok Token, p []byte) any {
	w := tok.Width
	switch tok.Kind {
	case KindChar, KindUChar:
		return slices.Clone(p)
	case KindSChar:
		return readSlice(p, w, func(b []byte) int8 { return int8(b[0]) })
	case KindBool:
		return readSlice(p, w, func(b []byte) bool { return d.unsigned(b) != 0 })
	case KindShort:
		return readSlice(p, w, func(b []byte) int16 { return int16(d.signed(b)) })
	case KindUShort:
		return readSlice(p, w, func(b []byte) uint16 { return uint16(d.unsigned(b)) })
	case KindInt:
		return readSlice(p, w, func(b []byte) int32 { return int32(d.signed(b)) })
	case KindUInt:
		return readSlice(p, w, func(b []byte) uint32 { return uint32(d.unsigned(b)) })
	case KindLong, KindLongLong, KindSSize:
		return readSlice(p, w, d.signed)
	case KindFloat:
		return readSlice(p, w, func(b []byte) float32 { return math.Float32frombits(uint32(d.unsigned(b))) })
	case KindDouble:
		return readSlice(p, w, func(b []byte) float64 { return math.Float64frombits(d.unsigned(b)) })
	default:
		return readSlice(p, w, d.unsigned)
	}
}

func readSlice[T any](p []byte, width int, conv func([]byte) T) []T {
	out := make([]T, len(p)/width)
	for i := range out {
		out[i] = conv(p[i*width : (i+1)*width])
	}
	return out
}
