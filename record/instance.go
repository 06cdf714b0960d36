package record

import (
	"fmt"
	"io"
	"reflect"
	"strings"
	"time"

	"golang.org/x/exp/slices"

	"github.com/wippyai/cstruct/errors"
)

// Instance is a record value: one Go value per field. Instances are
// read-only once built.
type Instance struct {
	typ    *Record
	values []any
}

func (i *Instance) Type() *Record { return i.typ }

// Values returns a copy of the field values in declaration order.
func (i *Instance) Values() []any {
	return slices.Clone(i.values)
}

// Get returns the value of the named field.
func (i *Instance) Get(name string) (any, bool) {
	l := i.typ.Layout()
	if l == nil {
		return nil, false
	}
	idx, ok := l.index[name]
	if !ok {
		return nil, false
	}
	return i.values[idx], true
}

// Value is Get without the presence flag.
func (i *Instance) Value(name string) any {
	v, _ := i.Get(name)
	return v
}

func (i *Instance) Sizeof() int { return i.typ.Sizeof() }

func (i *Instance) FormatString() string { return i.typ.FormatString() }

// Bytes encodes the instance. The result is always Sizeof bytes long.
func (i *Instance) Bytes() ([]byte, error) {
	l, err := i.typ.definedLayout(errors.PhaseEncode)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	buf, err := encodeLayout(l, i.values)
	currentObserver().ObserveEncode(i.typ.name, len(buf), time.Since(start), err)
	return buf, err
}

// WriteTo encodes the instance into w.
func (i *Instance) WriteTo(w io.Writer) (int64, error) {
	buf, err := i.Bytes()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(buf)
	return int64(n), err
}

// EncodeTo packs positional values into w.
func (r *Record) EncodeTo(w io.Writer, values ...any) error {
	buf, err := r.Encode(values...)
	if err != nil {
		return err
	}
	_, err = w.Write(buf)
	return err
}

// Equal reports whether both instances share a record type and hold
// deeply equal values.
func (i *Instance) Equal(other *Instance) bool {
	if i == nil || other == nil {
		return i == other
	}
	if i.typ != other.typ || len(i.values) != len(other.values) {
		return false
	}
	for k := range i.values {
		if !valuesEqual(i.values[k], other.values[k]) {
			return false
		}
	}
	return true
}

func valuesEqual(a, b any) bool {
	switch x := a.(type) {
	case *Instance:
		y, ok := b.(*Instance)
		return ok && x.Equal(y)
	case []*Instance:
		y, ok := b.([]*Instance)
		if !ok || len(x) != len(y) {
			return false
		}
		for k := range x {
			if !x[k].Equal(y[k]) {
				return false
			}
		}
		return true
	case []any:
		y, ok := b.([]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for k := range x {
			if !valuesEqual(x[k], y[k]) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a, b)
}

// String renders the record header and one line per field with its
// declared type and value.
func (i *Instance) String() string {
	var b strings.Builder
	r := i.typ
	fmt.Fprintf(&b, "%s {byte order: %s, width: %s, size: %d}", r, r.cfg.order, r.cfg.width, r.Sizeof())
	for k, f := range r.fields {
		fmt.Fprintf(&b, "\n    %s: %s = %s", f.Name, f.Type, FormatValue(i.values[k]))
	}
	return b.String()
}

// FormatValue renders a decoded value on one line. Byte strings are quoted,
// embedded records print as struct literals.
func FormatValue(v any) string {
	switch x := v.(type) {
	case []byte:
		return fmt.Sprintf("%q", x)
	case *Instance:
		if x == nil {
			return "<nil>"
		}
		var b strings.Builder
		b.WriteString(x.typ.String())
		b.WriteByte('{')
		for k, f := range x.typ.fields {
			if k > 0 {
				b.WriteString(", ")
			}
			b.WriteString(f.Name)
			b.WriteString(": ")
			b.WriteString(FormatValue(x.values[k]))
		}
		b.WriteByte('}')
		return b.String()
	case []*Instance:
		parts := make([]string, len(x))
		for k, inst := range x {
			parts[k] = FormatValue(inst)
		}
		return "[" + strings.Join(parts, " ") + "]"
	case []any:
		parts := make([]string, len(x))
		for k, item := range x {
			parts[k] = FormatValue(item)
		}
		return "[" + strings.Join(parts, " ") + "]"
	}
	return fmt.Sprint(v)
}
