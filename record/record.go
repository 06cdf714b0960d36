package record

import (
	goerrors "errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/exp/slices"

	"github.com/wippyai/cstruct/errors"
)

const (
	stateDeclared int32 = iota
	stateCompiling
	stateDefined
)

// Field is one named, typed member of a record. Order is wire order.
type Field struct {
	Name string
	Type Type
}

// Record is a named record type. A record is declared first and defined
// once; pointers may refer to a record before it is defined, embedding by
// value requires a defined record.
type Record struct {
	name  string
	state atomic.Int32
	mu    sync.Mutex

	fields []Field
	cfg    config
	layout *Layout
}

// Declare creates an undefined record that pointers can already refer to.
func Declare(name string) *Record {
	return &Record{name: name}
}

// Define declares and defines a record in one step.
func Define(name string, fields []Field, opts ...Option) (*Record, error) {
	r := Declare(name)
	if err := r.Define(fields, opts...); err != nil {
		return nil, err
	}
	return r, nil
}

// MustDefine is Define that panics on error.
func MustDefine(name string, fields []Field, opts ...Option) *Record {
	r, err := Define(name, fields, opts...)
	if err != nil {
		panic(err)
	}
	return r
}

// Define compiles the field list and makes the record usable. A failed
// definition leaves the record declared.
func (r *Record) Define(fields []Field, opts ...Option) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.state.CompareAndSwap(stateDeclared, stateCompiling) {
		return errors.Configuration([]string{r.name}, "record %s is already defined", r.name)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	r.cfg = cfg
	r.fields = slices.Clone(fields)

	start := time.Now()
	l, err := cfg.compiler.Compile(r)
	currentObserver().ObserveCompile(r.name, time.Since(start), err)
	if err != nil {
		r.fields = nil
		r.cfg = config{}
		r.state.Store(stateDeclared)
		return err
	}

	r.layout = l
	r.state.Store(stateDefined)

	Logger().Debug("record defined",
		zap.String("record", r.name),
		zap.Int("size", l.Size),
		zap.Int("fields", len(l.Fields)),
		zap.String("format", l.FormatString()))
	return nil
}

func (r *Record) Name() string { return r.name }

// Defined reports whether Define has completed.
func (r *Record) Defined() bool {
	return r.state.Load() == stateDefined
}

// Fields returns a copy of the declared fields.
func (r *Record) Fields() []Field {
	if !r.Defined() {
		return nil
	}
	return slices.Clone(r.fields)
}

// Layout returns the compiled layout, or nil before the record is defined.
func (r *Record) Layout() *Layout {
	if !r.Defined() {
		return nil
	}
	return r.layout
}

// Sizeof is the encoded size in bytes; 0 for undefined records.
func (r *Record) Sizeof() int {
	if l := r.Layout(); l != nil {
		return l.Size
	}
	return 0
}

func (r *Record) FormatString() string {
	if l := r.Layout(); l != nil {
		return l.FormatString()
	}
	return ""
}

func (r *Record) ByteOrder() ByteOrder { return r.cfg.order }

func (r *Record) Width() WidthMode { return r.cfg.width }

func (r *Record) String() string {
	return "struct " + r.name
}

func (*Record) sealed() {}

func (r *Record) definedLayout(phase errors.Phase) (*Layout, error) {
	l := r.Layout()
	if l == nil {
		return nil, errors.New(phase, errors.KindConfiguration).
			Path(r.name).
			Detail("record %s is not defined", r.name).
			Build()
	}
	return l, nil
}

// Decode unpacks buf into a validated instance. buf must be exactly
// Sizeof bytes long.
func (r *Record) Decode(buf []byte) (*Instance, error) {
	l, err := r.definedLayout(errors.PhaseDecode)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	values, err := decodeLayout(l, buf)
	currentObserver().ObserveDecode(r.name, len(buf), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return r.bind(values)
}

// DecodeAll unpacks consecutive records from buf. A trailing partial
// record is a size mismatch.
func (r *Record) DecodeAll(buf []byte) ([]*Instance, error) {
	l, err := r.definedLayout(errors.PhaseDecode)
	if err != nil {
		return nil, err
	}
	if l.Size == 0 {
		if len(buf) != 0 {
			return nil, errors.SizeMismatch(errors.PhaseDecode, []string{r.name}, 0, len(buf))
		}
		return nil, nil
	}
	if rem := len(buf) % l.Size; rem != 0 {
		return nil, errors.New(errors.PhaseDecode, errors.KindSizeMismatch).
			Path(r.name).
			Value(len(buf)).
			Detail("%d bytes is not a multiple of %d, %d trailing bytes", len(buf), l.Size, rem).
			Build()
	}

	out := make([]*Instance, 0, len(buf)/l.Size)
	for off := 0; off < len(buf); off += l.Size {
		inst, err := r.Decode(buf[off : off+l.Size])
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, nil
}

// DecodeFrom reads exactly one record from rd. A clean end of input is
// reported as io.EOF.
func (r *Record) DecodeFrom(rd io.Reader) (*Instance, error) {
	l, err := r.definedLayout(errors.PhaseDecode)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, l.Size)
	n, err := io.ReadFull(rd, buf)
	if err != nil {
		if goerrors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		if goerrors.Is(err, io.ErrUnexpectedEOF) {
			return nil, errors.SizeMismatch(errors.PhaseDecode, []string{r.name}, l.Size, n)
		}
		return nil, errors.Wrap(errors.PhaseDecode, errors.KindInvalidInput, err, "read "+r.name)
	}
	return r.Decode(buf)
}

// New builds an instance from positional values, one per field.
func (r *Record) New(values ...any) (*Instance, error) {
	l, err := r.definedLayout(errors.PhaseEncode)
	if err != nil {
		return nil, err
	}
	if len(values) != len(l.Fields) {
		return nil, errors.New(errors.PhaseEncode, errors.KindValueMismatch).
			Path(r.name).
			Value(len(values)).
			Detail("expected %d values, got %d", len(l.Fields), len(values)).
			Build()
	}
	return r.bind(slices.Clone(values))
}

// Encode packs positional values without building an instance.
func (r *Record) Encode(values ...any) ([]byte, error) {
	l, err := r.definedLayout(errors.PhaseEncode)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	buf, err := encodeLayout(l, values)
	currentObserver().ObserveEncode(r.name, len(buf), time.Since(start), err)
	return buf, err
}

func (r *Record) bind(values []any) (*Instance, error) {
	inst := &Instance{typ: r, values: values}
	if fn := r.cfg.validator; fn != nil {
		ok := fn(inst)
		currentObserver().ObserveValidation(r.name, ok)
		if !ok {
			Logger().Debug("validation rejected", zap.String("record", r.name))
			return nil, errors.Validation(r.name)
		}
	}
	return inst, nil
}
