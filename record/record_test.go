package record

import (
	"bytes"
	"encoding/binary"
	goerrors "errors"
	"io"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/wippyai/cstruct/errors"
	"github.com/wippyai/cstruct/platform"
)

func lp64(t *testing.T) *platform.Model {
	t.Helper()
	m, err := platform.Lookup("lp64")
	if err != nil {
		t.Fatalf("Lookup(lp64): %v", err)
	}
	return m
}

func threeShort(t *testing.T, opts ...Option) *Record {
	t.Helper()
	r, err := Define("ThreeShort", []Field{
		{Name: "one", Type: Int16},
		{Name: "two", Type: MustArrayOf(Int16, 2)},
	}, opts...)
	if err != nil {
		t.Fatalf("Define: %v", err)
	}
	return r
}

func header(t *testing.T, withValue bool) *Record {
	t.Helper()
	fields := []Field{
		{Name: "time", Type: MustArrayOf(Uint64, 2)},
		{Name: "type", Type: Int16},
		{Name: "code", Type: Int16},
	}
	if withValue {
		fields = append(fields, Field{Name: "value", Type: Int32})
	}
	r, err := Define("Header", fields)
	if err != nil {
		t.Fatalf("Define: %v", err)
	}
	return r
}

func TestHeaderDecode(t *testing.T) {
	r := header(t, false)
	if r.Sizeof() != 20 {
		t.Fatalf("Sizeof = %d, want 20", r.Sizeof())
	}
	if got := r.FormatString(); got != "=2Q1h1h" {
		t.Errorf("FormatString = %s, want =2Q1h1h", got)
	}

	buf := []byte("Some  arbitrary  buf")
	inst, err := r.Decode(buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	ne := binary.NativeEndian
	want := []any{
		[]uint64{ne.Uint64(buf[0:8]), ne.Uint64(buf[8:16])},
		int16(ne.Uint16(buf[16:18])),
		int16(ne.Uint16(buf[18:20])),
	}
	if got := inst.Values(); !reflect.DeepEqual(got, want) {
		t.Errorf("Values = %#v, want %#v", got, want)
	}

	out, err := inst.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if !bytes.Equal(out, buf) {
		t.Errorf("round trip = %q, want %q", out, buf)
	}

	offsets := []int{0, 16, 18}
	for i, f := range r.Layout().Fields {
		if f.Offset != offsets[i] {
			t.Errorf("field %s offset = %d, want %d", f.Name, f.Offset, offsets[i])
		}
	}
}

func TestHeaderWithValue(t *testing.T) {
	r := header(t, true)
	if r.Sizeof() != 24 {
		t.Fatalf("Sizeof = %d, want 24", r.Sizeof())
	}
	if got := r.FormatString(); got != "=2Q1h1h1i" {
		t.Errorf("FormatString = %s, want =2Q1h1h1i", got)
	}

	if _, err := r.Decode([]byte("Some  arbitrary  buf")); !goerrors.Is(err, errors.ErrSizeMismatch) {
		t.Fatalf("20-byte buffer: got %v, want size mismatch", err)
	}

	buf := []byte("Some  arbitrary  buffer.")
	inst, err := r.Decode(buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := int32(binary.NativeEndian.Uint32(buf[20:24]))
	if got := inst.Value("value"); got != want {
		t.Errorf("value = %v, want %v", got, want)
	}
}

func TestDecodeSizeMismatch(t *testing.T) {
	r := header(t, false)
	for _, n := range []int{0, 19, 21} {
		inst, err := r.Decode(make([]byte, n))
		if err == nil {
			t.Fatalf("Decode(%d bytes) succeeded", n)
		}
		if inst != nil {
			t.Errorf("Decode(%d bytes) returned a partial instance", n)
		}
		if !goerrors.Is(err, errors.ErrSizeMismatch) {
			t.Errorf("Decode(%d bytes) error = %v, want size mismatch", n, err)
		}
		if !strings.Contains(err.Error(), "expected 20 bytes") {
			t.Errorf("error %q does not name expected size", err)
		}
	}
}

func TestFormatStringRepeatCounts(t *testing.T) {
	r := threeShort(t)
	if r.Sizeof() != 6 {
		t.Errorf("Sizeof = %d, want 6", r.Sizeof())
	}
	if got := r.FormatString(); got != "=1h2h" {
		t.Errorf("FormatString = %s, want =1h2h", got)
	}

	big := threeShort(t, WithByteOrder(BigEndian))
	if got := big.FormatString(); got != ">1h2h" {
		t.Errorf("FormatString = %s, want >1h2h", got)
	}
}

func TestNewPacksValues(t *testing.T) {
	r := threeShort(t, WithByteOrder(LittleEndian))

	inst, err := r.New(32767, []any{0, -32768})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := inst.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	want := []byte{0xff, 0x7f, 0x00, 0x00, 0x00, 0x80}
	if !bytes.Equal(got, want) {
		t.Errorf("Bytes = % x, want % x", got, want)
	}

	if _, err := r.New(2); !goerrors.Is(err, errors.ErrValueMismatch) {
		t.Errorf("New with one value: got %v, want value mismatch", err)
	}
	if _, err := r.New(1, []int16{1, 2}, 3); !goerrors.Is(err, errors.ErrValueMismatch) {
		t.Errorf("New with three values: got %v, want value mismatch", err)
	}
}

func TestComparison(t *testing.T) {
	r := threeShort(t)
	bigBuf := []byte{0x00, 0x00, 0x00, 0xde, 0xc0, 0xde}
	littleBuf := []byte{0xde, 0xc0, 0xde, 0x00, 0x00, 0x00}

	a, err := r.Decode(bigBuf)
	if err != nil {
		t.Fatal(err)
	}
	a2, err := r.Decode(bytes.Clone(bigBuf))
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.Decode(littleBuf)
	if err != nil {
		t.Fatal(err)
	}

	if !a.Equal(a2) {
		t.Error("equal buffers decode to unequal instances")
	}
	if a.Equal(b) {
		t.Error("different buffers decode to equal instances")
	}

	other := threeShort(t)
	c, err := other.Decode(bigBuf)
	if err != nil {
		t.Fatal(err)
	}
	if a.Equal(c) {
		t.Error("instances of distinct record types compare equal")
	}
}

func TestNativeInversion(t *testing.T) {
	r, err := Define("ComplexStruct", []Field{
		{Name: "a", Type: mustDims(t, Int8, 20, 5, 4)},
		{Name: "b", Type: Bool},
	}, WithWidth(NativeWidth), WithPlatform(lp64(t)))
	if err != nil {
		t.Fatalf("Define: %v", err)
	}
	if r.Sizeof() != 401 {
		t.Fatalf("Sizeof = %d, want 401", r.Sizeof())
	}
	if got := r.FormatString(); got != "@400b1?" {
		t.Errorf("FormatString = %s, want @400b1?", got)
	}

	s, err := r.Decode(bytes.Repeat([]byte{'@'}, r.Sizeof()))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	a := s.Value("a").([]any)
	if len(a) != 20 {
		t.Fatalf("len(a) = %d, want 20", len(a))
	}
	row := a[19].([]any)
	if len(row) != 5 {
		t.Fatalf("len(a[19]) = %d, want 5", len(row))
	}
	if inner := row[4].([]int8); !reflect.DeepEqual(inner, []int8{64, 64, 64, 64}) {
		t.Errorf("a[19][4] = %v", inner)
	}
	if s.Value("b") != true {
		t.Errorf("b = %v, want true", s.Value("b"))
	}

	out, err := s.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	again, err := r.Decode(out)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !s.Equal(again) {
		t.Error("instance does not survive a round trip")
	}
}

func mustDims(t *testing.T, elem Type, dims ...int) *Array {
	t.Helper()
	a, err := Dims(elem, dims...)
	if err != nil {
		t.Fatalf("Dims: %v", err)
	}
	return a
}

func TestNativeOnlyTypes(t *testing.T) {
	for _, typ := range []Type{Ptr, SizeT, SSizeT, PointerTo(Double)} {
		t.Run(typ.String(), func(t *testing.T) {
			_, err := Define("Bad", []Field{{Name: "l", Type: typ}})
			if !goerrors.Is(err, errors.ErrConfiguration) {
				t.Fatalf("standard width: got %v, want configuration error", err)
			}

			r, err := Define("Good", []Field{{Name: "l", Type: typ}},
				WithWidth(NativeWidth), WithPlatform(lp64(t)))
			if err != nil {
				t.Fatalf("native width: %v", err)
			}
			if r.Sizeof() != 8 {
				t.Errorf("Sizeof = %d, want 8", r.Sizeof())
			}
		})
	}
}

func TestNativeWidthRequiresNativeOrder(t *testing.T) {
	_, err := Define("Mixed", []Field{{Name: "x", Type: Int}},
		WithWidth(NativeWidth), WithByteOrder(BigEndian))
	if !goerrors.Is(err, errors.ErrConfiguration) {
		t.Fatalf("got %v, want configuration error", err)
	}
}

func TestValidator(t *testing.T) {
	r, err := Define("Requirement", []Field{{Name: "operand", Type: UChar}},
		WithValidator(func(i *Instance) bool {
			return i.Value("operand") == uint8(4)
		}))
	if err != nil {
		t.Fatalf("Define: %v", err)
	}

	if _, err := r.Decode([]byte{4}); err != nil {
		t.Errorf("Decode(4): %v", err)
	}
	if _, err := r.Decode([]byte{0}); !goerrors.Is(err, errors.ErrValidation) {
		t.Errorf("Decode(0): got %v, want validation error", err)
	}
	if _, err := r.New(uint8(0)); !goerrors.Is(err, errors.ErrValidation) {
		t.Errorf("New(0): got %v, want validation error", err)
	}
}

func TestEmptyRecord(t *testing.T) {
	r, err := Define("Empty", nil)
	if err != nil {
		t.Fatalf("Define: %v", err)
	}
	if r.Sizeof() != 0 {
		t.Errorf("Sizeof = %d, want 0", r.Sizeof())
	}
	inst, err := r.Decode(nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(inst.Values()) != 0 {
		t.Errorf("Values = %v, want none", inst.Values())
	}
	if _, err := r.Decode([]byte("0")); !goerrors.Is(err, errors.ErrSizeMismatch) {
		t.Errorf("Decode(1 byte): got %v", err)
	}
}

func TestNativePadding(t *testing.T) {
	r, err := Define("Padded", []Field{
		{Name: "c", Type: Char},
		{Name: "i", Type: Int},
		{Name: "d", Type: Char},
	}, WithWidth(NativeWidth), WithPlatform(lp64(t)))
	if err != nil {
		t.Fatalf("Define: %v", err)
	}
	if r.Sizeof() != 12 {
		t.Errorf("Sizeof = %d, want 12", r.Sizeof())
	}
	if got := r.FormatString(); got != "@1c3x1i1c3x" {
		t.Errorf("FormatString = %s, want @1c3x1i1c3x", got)
	}

	out, err := r.Encode("a", int32(-1), byte('z'))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := []byte{'a', 0, 0, 0, 0xff, 0xff, 0xff, 0xff, 'z', 0, 0, 0}
	if !bytes.Equal(out, want) {
		t.Errorf("Encode = % x, want % x", out, want)
	}

	inst, err := r.Decode(want)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if inst.Value("c") != byte('a') || inst.Value("i") != int32(-1) {
		t.Errorf("values = %v", inst.Values())
	}
}

func TestCharArrayCollapse(t *testing.T) {
	r, err := Define("Named", []Field{
		{Name: "name", Type: MustArrayOf(Char, 4)},
		{Name: "grid", Type: mustDims(t, Char, 2, 3)},
	})
	if err != nil {
		t.Fatalf("Define: %v", err)
	}

	inst, err := r.Decode([]byte("abcdxyzuvw"))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got := inst.Value("name"); !reflect.DeepEqual(got, []byte("abcd")) {
		t.Errorf("name = %#v, want []byte(abcd)", got)
	}
	grid := inst.Value("grid").([]any)
	if !reflect.DeepEqual(grid[1], []byte("uvw")) {
		t.Errorf("grid[1] = %#v", grid[1])
	}

	out, err := r.Encode([]any{"w", "x", byte('y'), 'z'}, []any{"abc", []byte("def")})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if string(out) != "wxyzabcdef" {
		t.Errorf("Encode = %q", out)
	}

	if _, err := r.Encode("abc", []any{"abc", "def"}); !goerrors.Is(err, errors.ErrValueMismatch) {
		t.Errorf("short string: got %v, want value mismatch", err)
	}
}

func TestDecodedBytesDoNotAlias(t *testing.T) {
	r, err := Define("Alias", []Field{{Name: "b", Type: MustArrayOf(Char, 3)}})
	if err != nil {
		t.Fatal(err)
	}
	buf := []byte("abc")
	inst, err := r.Decode(buf)
	if err != nil {
		t.Fatal(err)
	}
	buf[0] = 'X'
	if got := inst.Value("b").([]byte); got[0] != 'a' {
		t.Error("decoded bytes alias the input buffer")
	}
}

func TestEncodeErrors(t *testing.T) {
	r := threeShort(t)

	tests := []struct {
		name   string
		values []any
		path   string
	}{
		{"overflow", []any{40000, []any{0, 0}}, "ThreeShort.one"},
		{"element_overflow", []any{0, []any{0, -40000}}, "ThreeShort.two[1]"},
		{"wrong_type", []any{"x", []any{0, 0}}, "ThreeShort.one"},
		{"array_length", []any{0, []any{0}}, "ThreeShort.two"},
		{"not_a_sequence", []any{0, 7}, "ThreeShort.two"},
		{"fraction", []any{1.5, []int{1, 2}}, "ThreeShort.one"},
		{"value_count", []any{0}, "ThreeShort"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, err := r.Encode(tc.values...)
			if err == nil {
				t.Fatalf("Encode succeeded: % x", out)
			}
			if out != nil {
				t.Error("partial buffer returned")
			}
			if !goerrors.Is(err, errors.ErrValueMismatch) {
				t.Errorf("got %v, want value mismatch", err)
			}
			if !strings.Contains(err.Error(), tc.path) {
				t.Errorf("error %q does not name %s", err, tc.path)
			}
		})
	}
}

func TestEncodeCoercion(t *testing.T) {
	r, err := Define("Numbers", []Field{
		{Name: "u", Type: UInt},
		{Name: "f", Type: Float},
		{Name: "d", Type: Double},
		{Name: "q", Type: ULongLong},
		{Name: "flag", Type: Bool},
	}, WithByteOrder(BigEndian))
	if err != nil {
		t.Fatal(err)
	}

	type myInt int
	out, err := r.Encode(float64(7), 1, float32(0.5), uint64(1<<63), true)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	inst, err := r.Decode(out)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := []any{uint32(7), float32(1), float64(0.5), uint64(1 << 63), true}
	if !reflect.DeepEqual(inst.Values(), want) {
		t.Errorf("Values = %#v, want %#v", inst.Values(), want)
	}

	if _, err := r.Encode(myInt(3), 0, 0, 0, false); err != nil {
		t.Errorf("named integer type: %v", err)
	}
	if _, err := r.Encode(-1, 0, 0, 0, false); !goerrors.Is(err, errors.ErrValueMismatch) {
		t.Errorf("negative to unsigned: got %v", err)
	}
	if _, err := r.Encode(0, 1e300, 0, 0, false); !goerrors.Is(err, errors.ErrValueMismatch) {
		t.Errorf("float32 overflow: got %v", err)
	}
	if _, err := r.Encode(0, 0, 0, 0, 1); !goerrors.Is(err, errors.ErrValueMismatch) {
		t.Errorf("int for bool: got %v", err)
	}
}

func TestNestedRecords(t *testing.T) {
	point, err := Define("Point", []Field{
		{Name: "x", Type: Int16},
		{Name: "y", Type: Int16},
	}, WithByteOrder(LittleEndian))
	if err != nil {
		t.Fatal(err)
	}
	shape, err := Define("Shape", []Field{
		{Name: "tag", Type: Char},
		{Name: "origin", Type: point},
		{Name: "corners", Type: MustArrayOf(point, 2)},
	}, WithByteOrder(LittleEndian))
	if err != nil {
		t.Fatalf("Define: %v", err)
	}

	if shape.Sizeof() != 13 {
		t.Errorf("Sizeof = %d, want 13", shape.Sizeof())
	}
	if got := shape.FormatString(); got != "<1c1h1h1h1h1h1h" {
		t.Errorf("FormatString = %s", got)
	}
	paths := []string{"tag", "origin.x", "origin.y", "corners[0].x", "corners[0].y", "corners[1].x", "corners[1].y"}
	for i, tok := range shape.Layout().Tokens {
		if tok.Path != paths[i] {
			t.Errorf("token %d path = %s, want %s", i, tok.Path, paths[i])
		}
	}

	origin, err := point.New(1, 2)
	if err != nil {
		t.Fatal(err)
	}
	out, err := shape.Encode("s", origin, []any{[]any{3, 4}, []any{-5, -6}})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	inst, err := shape.Decode(out)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got := inst.Value("origin").(*Instance); !got.Equal(origin) {
		t.Errorf("origin = %v", got)
	}
	corners := inst.Value("corners").([]*Instance)
	if corners[1].Value("y") != int16(-6) {
		t.Errorf("corners[1].y = %v", corners[1].Value("y"))
	}

	again, err := inst.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if !bytes.Equal(again, out) {
		t.Errorf("round trip = % x, want % x", again, out)
	}

	if _, err := shape.Encode("s", shape, []any{[]any{3, 4}, []any{5, 6}}); !goerrors.Is(err, errors.ErrValueMismatch) {
		t.Errorf("wrong nested value: got %v", err)
	}
}

func TestNestedNativeAlignment(t *testing.T) {
	m := lp64(t)
	inner, err := Define("Inner", []Field{
		{Name: "d", Type: Double},
		{Name: "c", Type: Char},
	}, WithWidth(NativeWidth), WithPlatform(m))
	if err != nil {
		t.Fatal(err)
	}
	outer, err := Define("Outer", []Field{
		{Name: "c", Type: Char},
		{Name: "in", Type: inner},
	}, WithWidth(NativeWidth), WithPlatform(m))
	if err != nil {
		t.Fatal(err)
	}
	if inner.Sizeof() != 16 {
		t.Errorf("Inner size = %d, want 16", inner.Sizeof())
	}
	if outer.Sizeof() != 24 {
		t.Errorf("Outer size = %d, want 24", outer.Sizeof())
	}
	if got := outer.FormatString(); got != "@1c7x1d1c7x" {
		t.Errorf("FormatString = %s", got)
	}
	f, _ := outer.Layout().Field("in")
	if f.Offset != 8 {
		t.Errorf("in offset = %d, want 8", f.Offset)
	}
}

func TestNestedConfigurationMismatch(t *testing.T) {
	inner, err := Define("BigInner", []Field{{Name: "x", Type: Int}}, WithByteOrder(BigEndian))
	if err != nil {
		t.Fatal(err)
	}
	_, err = Define("LittleOuter", []Field{{Name: "in", Type: inner}}, WithByteOrder(LittleEndian))
	if !goerrors.Is(err, errors.ErrConfiguration) {
		t.Fatalf("got %v, want configuration error", err)
	}

	ilp32, err := platform.Lookup("ilp32")
	if err != nil {
		t.Fatal(err)
	}
	native32, err := Define("Native32", []Field{{Name: "x", Type: Long}},
		WithWidth(NativeWidth), WithPlatform(ilp32))
	if err != nil {
		t.Fatal(err)
	}
	_, err = Define("Native64", []Field{{Name: "in", Type: native32}},
		WithWidth(NativeWidth), WithPlatform(lp64(t)))
	if !goerrors.Is(err, errors.ErrConfiguration) {
		t.Fatalf("platform mismatch: got %v, want configuration error", err)
	}
}

func TestCycleDetection(t *testing.T) {
	node := Declare("Node")

	err := node.Define([]Field{
		{Name: "value", Type: Int},
		{Name: "next", Type: node},
	})
	if !goerrors.Is(err, errors.ErrConfiguration) {
		t.Fatalf("self embedding: got %v, want configuration error", err)
	}
	if node.Defined() {
		t.Fatal("failed definition left the record defined")
	}

	err = node.Define([]Field{
		{Name: "value", Type: Int},
		{Name: "next", Type: PointerTo(node)},
	}, WithWidth(NativeWidth), WithPlatform(lp64(t)))
	if err != nil {
		t.Fatalf("pointer to self: %v", err)
	}
	if node.Sizeof() != 16 {
		t.Errorf("Sizeof = %d, want 16", node.Sizeof())
	}

	if err := node.Define(nil); !goerrors.Is(err, errors.ErrConfiguration) {
		t.Errorf("redefinition: got %v, want configuration error", err)
	}

	later := Declare("Later")
	_, err = Define("Early", []Field{{Name: "l", Type: MustArrayOf(later, 2)}})
	if !goerrors.Is(err, errors.ErrConfiguration) {
		t.Errorf("undefined embedding: got %v, want configuration error", err)
	}
}

func TestDefinitionErrorsAggregate(t *testing.T) {
	_, err := Define("Broken", []Field{
		{Name: "", Type: Int},
		{Name: "a", Type: Int},
		{Name: "a", Type: Short},
		{Name: "p", Type: Ptr},
		{Name: "n", Type: nil},
	})
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	for _, want := range []string{"field name is empty", "duplicate field name", "native type widths", "field type is nil"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q does not mention %q", msg, want)
		}
	}
}

func TestDecodeAllAndStreams(t *testing.T) {
	r := threeShort(t, WithByteOrder(BigEndian))
	buf := []byte{0, 1, 0, 2, 0, 3, 0, 4, 0, 5, 0, 6}

	all, err := r.DecodeAll(buf)
	if err != nil {
		t.Fatalf("DecodeAll: %v", err)
	}
	if len(all) != 2 || all[1].Value("one") != int16(4) {
		t.Fatalf("DecodeAll = %v", all)
	}
	if _, err := r.DecodeAll(buf[:7]); !goerrors.Is(err, errors.ErrSizeMismatch) {
		t.Errorf("trailing bytes: got %v", err)
	}

	rd := bytes.NewReader(buf[:9])
	if _, err := r.DecodeFrom(rd); err != nil {
		t.Fatalf("DecodeFrom: %v", err)
	}
	if _, err := r.DecodeFrom(rd); !goerrors.Is(err, errors.ErrSizeMismatch) {
		t.Errorf("short read: got %v", err)
	}
	if _, err := r.DecodeFrom(bytes.NewReader(nil)); err != io.EOF {
		t.Errorf("empty reader: got %v, want io.EOF", err)
	}

	var w bytes.Buffer
	if err := r.EncodeTo(&w, 1, []int16{2, 3}); err != nil {
		t.Fatalf("EncodeTo: %v", err)
	}
	if _, err := all[1].WriteTo(&w); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	want := []byte{0, 1, 0, 2, 0, 3, 0, 4, 0, 5, 0, 6}
	if !bytes.Equal(w.Bytes(), want) {
		t.Errorf("written = % x, want % x", w.Bytes(), want)
	}
}

func TestUndefinedRecord(t *testing.T) {
	r := Declare("Pending")
	if r.Sizeof() != 0 || r.Layout() != nil {
		t.Error("undefined record reports a layout")
	}
	if _, err := r.Decode(nil); !goerrors.Is(err, errors.ErrConfiguration) {
		t.Errorf("Decode: got %v", err)
	}
	if _, err := r.New(); !goerrors.Is(err, errors.ErrConfiguration) {
		t.Errorf("New: got %v", err)
	}
}

func TestInstanceString(t *testing.T) {
	r, err := Define("Named", []Field{
		{Name: "id", Type: UShort},
		{Name: "name", Type: MustArrayOf(Char, 3)},
	})
	if err != nil {
		t.Fatal(err)
	}
	inst, err := r.New(7, []byte("abc"))
	if err != nil {
		t.Fatal(err)
	}
	s := inst.String()
	for _, want := range []string{"struct Named", "byte order: native", "width: standard", `name: char[3] = "abc"`, "id: ushort = 7"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() = %q, missing %q", s, want)
		}
	}
}

func TestConcurrentDecode(t *testing.T) {
	r := header(t, false)
	buf := []byte("Some  arbitrary  buf")
	first, err := r.Decode(buf)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			inst, err := r.Decode(buf)
			if err != nil {
				t.Error(err)
				return
			}
			if !inst.Equal(first) {
				t.Error("concurrent decode differs")
			}
		}()
	}
	wg.Wait()
}

func TestCompilerCache(t *testing.T) {
	c := NewCompiler()
	r, err := Define("Cached", []Field{{Name: "x", Type: Int}}, WithCompiler(c))
	if err != nil {
		t.Fatal(err)
	}
	cached, ok := c.Cached(r)
	if !ok || cached != r.Layout() {
		t.Fatal("layout not cached by the record's compiler")
	}
	again, err := c.Compile(r)
	if err != nil || again != cached {
		t.Errorf("Compile returned a different layout: %v", err)
	}
	if _, ok := DefaultCompiler().Cached(r); ok {
		t.Error("default compiler cached a record it never compiled")
	}
}

type countingObserver struct {
	mu                         sync.Mutex
	compiles, decodes, encodes int
	rejected                   int
}

func (o *countingObserver) ObserveCompile(string, time.Duration, error) {
	o.mu.Lock()
	o.compiles++
	o.mu.Unlock()
}

func (o *countingObserver) ObserveDecode(string, int, time.Duration, error) {
	o.mu.Lock()
	o.decodes++
	o.mu.Unlock()
}

func (o *countingObserver) ObserveEncode(string, int, time.Duration, error) {
	o.mu.Lock()
	o.encodes++
	o.mu.Unlock()
}

func (o *countingObserver) ObserveValidation(_ string, ok bool) {
	o.mu.Lock()
	if !ok {
		o.rejected++
	}
	o.mu.Unlock()
}

func TestObserver(t *testing.T) {
	obs := &countingObserver{}
	SetObserver(obs)
	defer SetObserver(nil)

	r, err := Define("Observed", []Field{{Name: "x", Type: UChar}},
		WithValidator(func(i *Instance) bool { return i.Value("x") != uint8(0) }))
	if err != nil {
		t.Fatal(err)
	}
	inst, _ := r.Decode([]byte{1})
	_, _ = r.Decode([]byte{0})
	_, _ = inst.Bytes()

	obs.mu.Lock()
	defer obs.mu.Unlock()
	if obs.compiles != 1 || obs.decodes != 2 || obs.encodes != 1 || obs.rejected != 1 {
		t.Errorf("observer counts = %+v", obs)
	}
}
