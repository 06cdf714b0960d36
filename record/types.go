package record

import (
	"strconv"
	"strings"

	"github.com/wippyai/cstruct/errors"
	"github.com/wippyai/cstruct/record/internal/types"
)

type TypeKind = types.Kind

const (
	KindChar      = types.KindChar
	KindSChar     = types.KindSChar
	KindUChar     = types.KindUChar
	KindBool      = types.KindBool
	KindShort     = types.KindShort
	KindUShort    = types.KindUShort
	KindInt       = types.KindInt
	KindUInt      = types.KindUInt
	KindLong      = types.KindLong
	KindULong     = types.KindULong
	KindLongLong  = types.KindLongLong
	KindULongLong = types.KindULongLong
	KindFloat     = types.KindFloat
	KindDouble    = types.KindDouble
	KindSSize     = types.KindSSize
	KindSize      = types.KindSize
	KindPointer   = types.KindPointer
)

type Token = types.Token

// Type is a field type: a Scalar, an *Array, a *Pointer or a *Record.
type Type interface {
	String() string
	sealed()
}

// Scalar is a primitive C type.
type Scalar struct {
	desc *types.Descriptor
	name string
}

// C primitives.
var (
	Char      = scalar(KindChar, "")
	SChar     = scalar(KindSChar, "")
	UChar     = scalar(KindUChar, "")
	Bool      = scalar(KindBool, "")
	Short     = scalar(KindShort, "")
	UShort    = scalar(KindUShort, "")
	Int       = scalar(KindInt, "")
	UInt      = scalar(KindUInt, "")
	Long      = scalar(KindLong, "")
	ULong     = scalar(KindULong, "")
	LongLong  = scalar(KindLongLong, "")
	ULongLong = scalar(KindULongLong, "")
	Float     = scalar(KindFloat, "")
	Double    = scalar(KindDouble, "")
	SSizeT    = scalar(KindSSize, "")
	SizeT     = scalar(KindSize, "")
	Ptr       = scalar(KindPointer, "")
)

// Fixed-width integers.
var (
	Int8   = scalar(KindSChar, "int8")
	Uint8  = scalar(KindUChar, "uint8")
	Int16  = scalar(KindShort, "int16")
	Uint16 = scalar(KindUShort, "uint16")
	Int32  = scalar(KindInt, "int32")
	Uint32 = scalar(KindUInt, "uint32")
	Int64  = scalar(KindLongLong, "int64")
	Uint64 = scalar(KindULongLong, "uint64")
)

func scalar(k TypeKind, name string) Scalar {
	desc := types.Lookup(k)
	if name == "" {
		name = desc.Name
	}
	return Scalar{desc: desc, name: name}
}

// ScalarOf resolves a primitive by name ("short", "uint32", "size_t", ...).
func ScalarOf(name string) (Scalar, bool) {
	desc, ok := types.ByName(name)
	if !ok {
		return Scalar{}, false
	}
	return Scalar{desc: desc, name: name}, true
}

func (s Scalar) Kind() TypeKind { return s.desc.Kind }

// Code is the format character of the primitive.
func (s Scalar) Code() byte { return s.desc.Code }

func (s Scalar) String() string {
	if s.desc == nil {
		return "invalid"
	}
	return s.name
}

func (Scalar) sealed() {}

// Array is a fixed-length array. Multidimensional arrays nest: T[a][b] is
// an array of a elements, each an array of b elements of T.
type Array struct {
	elem   Type
	length int
}

// ArrayOf appends a dimension to t. Applied to an array, the new dimension
// becomes the innermost one, so ArrayOf(ArrayOf(T, a), b) is T[a][b].
func ArrayOf(t Type, length int) (*Array, error) {
	if t == nil {
		return nil, errors.Configuration(nil, "array element type is nil")
	}
	if length < 1 {
		return nil, errors.Configuration(nil, "array length %d < 1", length)
	}
	if inner, ok := t.(*Array); ok {
		nested, err := ArrayOf(inner.elem, length)
		if err != nil {
			return nil, err
		}
		return &Array{elem: nested, length: inner.length}, nil
	}
	return &Array{elem: t, length: length}, nil
}

// MustArrayOf is ArrayOf that panics on error.
func MustArrayOf(t Type, length int) *Array {
	a, err := ArrayOf(t, length)
	if err != nil {
		panic(err)
	}
	return a
}

// Dims builds t[d0][d1]... in declaration order.
func Dims(t Type, dims ...int) (*Array, error) {
	if len(dims) == 0 {
		return nil, errors.Configuration(nil, "no array dimensions")
	}
	cur := t
	for _, d := range dims {
		a, err := ArrayOf(cur, d)
		if err != nil {
			return nil, err
		}
		cur = a
	}
	return cur.(*Array), nil
}

// Elem is the element type: the next inner array for multidimensional arrays.
func (a *Array) Elem() Type { return a.elem }

// Length is the outermost dimension.
func (a *Array) Length() int { return a.length }

// Dimensions lists all dimensions, outermost first.
func (a *Array) Dimensions() []int {
	dims := []int{a.length}
	for inner, ok := a.elem.(*Array); ok; inner, ok = inner.elem.(*Array) {
		dims = append(dims, inner.length)
	}
	return dims
}

// Len is the total number of base elements.
func (a *Array) Len() int {
	n := 1
	for _, d := range a.Dimensions() {
		n *= d
	}
	return n
}

// Base is the innermost non-array element type.
func (a *Array) Base() Type {
	var t Type = a
	for {
		inner, ok := t.(*Array)
		if !ok {
			return t
		}
		t = inner.elem
	}
}

func (a *Array) String() string {
	var b strings.Builder
	base := a.Base()
	p, isPtr := base.(*Pointer)
	if isPtr {
		b.WriteString("ptr")
	} else {
		b.WriteString(base.String())
	}
	for _, d := range a.Dimensions() {
		b.WriteByte('[')
		b.WriteString(strconv.Itoa(d))
		b.WriteByte(']')
	}
	if isPtr && p.pointee != nil {
		b.WriteByte('>')
		b.WriteString(p.pointee.String())
	}
	return b.String()
}

func (*Array) sealed() {}

// Pointer is a pointer-sized field annotated with the type it points to.
// The pointee is documentation only; it never affects layout.
type Pointer struct {
	pointee Type
}

// PointerTo annotates a pointer with its pointee. A nil pointee is void*.
func PointerTo(t Type) *Pointer {
	return &Pointer{pointee: t}
}

func (p *Pointer) Pointee() Type { return p.pointee }

func (p *Pointer) String() string {
	if p.pointee == nil {
		return "ptr"
	}
	return "ptr>" + p.pointee.String()
}

func (*Pointer) sealed() {}
