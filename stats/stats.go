package stats

import (
	"math"
	"reflect"
	"strconv"

	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/wippyai/cstruct/errors"
	"github.com/wippyai/cstruct/record"
)

// Field summarizes one numeric field across a set of records. Elements of
// an array field are pooled into one series.
type Field struct {
	Path   string
	Count  int
	Mean   float64
	StdDev float64
	Min    float64
	Median float64
	Max    float64
}

// Summary is the result of Summarize.
type Summary struct {
	Record  string
	Records int
	Fields  []Field
}

// Accumulator collects numeric field values one record at a time.
type Accumulator struct {
	typ    *record.Record
	n      int
	order  []string
	series map[string][]float64
}

// NewAccumulator creates an accumulator for instances of r.
func NewAccumulator(r *record.Record) *Accumulator {
	return &Accumulator{typ: r, series: make(map[string][]float64)}
}

// Add folds one instance into the accumulator.
func (a *Accumulator) Add(inst *record.Instance) error {
	if inst.Type() != a.typ {
		return errors.New(errors.PhaseDecode, errors.KindValueMismatch).
			Path(a.typ.Name()).
			Detail("instance of %s", inst.Type().Name()).
			Build()
	}
	a.n++
	a.record(a.typ, inst, "")
	return nil
}

func (a *Accumulator) record(r *record.Record, inst *record.Instance, prefix string) {
	values := inst.Values()
	for i, f := range r.Fields() {
		a.value(f.Type, values[i], prefix+f.Name)
	}
}

func (a *Accumulator) value(t record.Type, v any, path string) {
	switch t := t.(type) {
	case record.Scalar:
		if numeric(t.Kind()) {
			a.push(path, v)
		}
	case *record.Array:
		base := t.Base()
		if s, ok := base.(record.Scalar); ok && !numeric(s.Kind()) {
			return
		}
		if _, ok := base.(*record.Pointer); ok {
			return
		}
		a.elements(base, v, path+"[]")
	case *record.Record:
		if inst, ok := v.(*record.Instance); ok {
			a.record(t, inst, path+".")
		}
	}
}

// elements walks nested []any dimensions down to the innermost slice.
func (a *Accumulator) elements(base record.Type, v any, path string) {
	switch v := v.(type) {
	case []any:
		for _, e := range v {
			a.elements(base, e, path)
		}
	case []*record.Instance:
		r := base.(*record.Record)
		for _, inst := range v {
			a.record(r, inst, path+".")
		}
	default:
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Slice {
			return
		}
		for i := 0; i < rv.Len(); i++ {
			a.push(path, rv.Index(i).Interface())
		}
	}
}

func (a *Accumulator) push(path string, v any) {
	f, ok := toFloat(v)
	if !ok {
		return
	}
	if _, seen := a.series[path]; !seen {
		a.order = append(a.order, path)
	}
	a.series[path] = append(a.series[path], f)
}

// Summary computes statistics over everything added so far. Fields are in
// declaration order.
func (a *Accumulator) Summary() *Summary {
	s := &Summary{Record: a.typ.Name(), Records: a.n}
	for _, path := range a.order {
		xs := a.series[path]
		mean, std := stat.MeanStdDev(xs, nil)
		if len(xs) < 2 {
			std = 0
		}
		sorted := slices.Clone(xs)
		slices.Sort(sorted)
		s.Fields = append(s.Fields, Field{
			Path:   path,
			Count:  len(xs),
			Mean:   mean,
			StdDev: std,
			Min:    floats.Min(xs),
			Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
			Max:    floats.Max(xs),
		})
	}
	return s
}

// Summarize computes statistics for the numeric fields of insts.
func Summarize(r *record.Record, insts []*record.Instance) (*Summary, error) {
	a := NewAccumulator(r)
	for i, inst := range insts {
		if err := a.Add(inst); err != nil {
			return nil, errors.Wrap(errors.PhaseDecode, errors.KindValueMismatch, err, "instance "+strconv.Itoa(i))
		}
	}
	return a.Summary(), nil
}

func numeric(k record.TypeKind) bool {
	switch k {
	case record.KindChar, record.KindBool, record.KindPointer:
		return false
	}
	return true
}

func toFloat(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return f, !math.IsNaN(f)
	}
	return 0, false
}
