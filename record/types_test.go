package record

import (
	goerrors "errors"
	"reflect"
	"testing"

	"github.com/wippyai/cstruct/errors"
)

func TestArrayDimensions(t *testing.T) {
	a := mustDims(t, Int, 1, 2, 3)
	if got := a.Dimensions(); !reflect.DeepEqual(got, []int{1, 2, 3}) {
		t.Errorf("Dimensions = %v, want [1 2 3]", got)
	}
	if a.Len() != 6 {
		t.Errorf("Len = %d, want 6", a.Len())
	}
	if a.Length() != 1 {
		t.Errorf("Length = %d, want 1", a.Length())
	}
	if a.Base() != Type(Int) {
		t.Errorf("Base = %v, want int", a.Base())
	}
	if got := a.String(); got != "int[1][2][3]" {
		t.Errorf("String = %s", got)
	}

	// applying a dimension to an array appends it innermost
	nested := MustArrayOf(MustArrayOf(Short, 4), 2)
	if got := nested.Dimensions(); !reflect.DeepEqual(got, []int{4, 2}) {
		t.Errorf("Dimensions = %v, want [4 2]", got)
	}
	inner, ok := nested.Elem().(*Array)
	if !ok || inner.Length() != 2 {
		t.Errorf("Elem = %v, want short[2]", nested.Elem())
	}
}

func TestArrayLengthCheck(t *testing.T) {
	for _, n := range []int{0, -1} {
		if _, err := ArrayOf(Int, n); !goerrors.Is(err, errors.ErrConfiguration) {
			t.Errorf("ArrayOf(int, %d): got %v, want configuration error", n, err)
		}
	}
	if _, err := ArrayOf(nil, 2); err == nil {
		t.Error("ArrayOf(nil) succeeded")
	}
	if _, err := Dims(Int); err == nil {
		t.Error("Dims without dimensions succeeded")
	}
	if _, err := Dims(Int, 2, 0); err == nil {
		t.Error("Dims with zero dimension succeeded")
	}
}

func TestPointerNotation(t *testing.T) {
	tests := []struct {
		typ  Type
		want string
	}{
		{PointerTo(nil), "ptr"},
		{PointerTo(Double), "ptr>double"},
		{MustArrayOf(PointerTo(Int), 2), "ptr[2]>int"},
		{PointerTo(MustArrayOf(Int, 2)), "ptr>int[2]"},
		{PointerTo(Declare("Later")), "ptr>struct Later"},
	}
	for _, tc := range tests {
		if got := tc.typ.String(); got != tc.want {
			t.Errorf("String = %s, want %s", got, tc.want)
		}
	}
}

func TestPointerLayoutIgnoresPointee(t *testing.T) {
	m := lp64(t)
	r, err := Define("Pointers", []Field{
		{Name: "simple", Type: PointerTo(Double)},
		{Name: "array_of_ptr", Type: MustArrayOf(PointerTo(Int), 2)},
		{Name: "ptr_to_array", Type: PointerTo(MustArrayOf(Int, 64))},
	}, WithWidth(NativeWidth), WithPlatform(m))
	if err != nil {
		t.Fatalf("Define: %v", err)
	}
	if r.Sizeof() != 32 {
		t.Errorf("Sizeof = %d, want 32", r.Sizeof())
	}
	if got := r.FormatString(); got != "@1P2P1P" {
		t.Errorf("FormatString = %s, want @1P2P1P", got)
	}

	inst, err := r.New(uint64(0x1000), []uint64{1, 2}, 0)
	if err != nil {
		t.Fatal(err)
	}
	out, err := inst.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	back, err := r.Decode(out)
	if err != nil {
		t.Fatal(err)
	}
	if back.Value("simple") != uint64(0x1000) {
		t.Errorf("simple = %v", back.Value("simple"))
	}
	if !reflect.DeepEqual(back.Value("array_of_ptr"), []uint64{1, 2}) {
		t.Errorf("array_of_ptr = %v", back.Value("array_of_ptr"))
	}
}

func TestScalarOf(t *testing.T) {
	tests := []struct {
		name string
		kind TypeKind
	}{
		{"int16", KindShort},
		{"unsigned long", KindULong},
		{"size_t", KindSize},
		{"double", KindDouble},
	}
	for _, tc := range tests {
		s, ok := ScalarOf(tc.name)
		if !ok {
			t.Errorf("ScalarOf(%s) not found", tc.name)
			continue
		}
		if s.Kind() != tc.kind {
			t.Errorf("ScalarOf(%s).Kind = %v, want %v", tc.name, s.Kind(), tc.kind)
		}
		if s.String() != tc.name {
			t.Errorf("ScalarOf(%s).String = %s", tc.name, s.String())
		}
	}
	if _, ok := ScalarOf("quad"); ok {
		t.Error("ScalarOf(quad) found")
	}
}

func TestLongWidths(t *testing.T) {
	std, err := Define("StdLong", []Field{{Name: "l", Type: Long}, {Name: "u", Type: ULong}})
	if err != nil {
		t.Fatal(err)
	}
	if std.Sizeof() != 8 {
		t.Errorf("standard long pair = %d bytes, want 8", std.Sizeof())
	}
	inst, err := std.New(-2, 3)
	if err != nil {
		t.Fatal(err)
	}
	out, err := inst.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	back, err := std.Decode(out)
	if err != nil {
		t.Fatal(err)
	}
	if back.Value("l") != int64(-2) || back.Value("u") != uint64(3) {
		t.Errorf("values = %v", back.Values())
	}
	// New binds without encoding; a 4-byte long overflow surfaces on Bytes
	wide, err := std.New(int64(1)<<40, 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := wide.Bytes(); !goerrors.Is(err, errors.ErrValueMismatch) {
		t.Errorf("4-byte long overflow: got %v", err)
	}
}
