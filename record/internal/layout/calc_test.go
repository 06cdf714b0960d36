package layout

import (
	"testing"

	"github.com/wippyai/cstruct/platform"
	"github.com/wippyai/cstruct/record/internal/types"
)

func mustModel(t *testing.T, name string) *platform.Model {
	t.Helper()
	m, err := platform.Lookup(name)
	if err != nil {
		t.Fatalf("Lookup(%s): %v", name, err)
	}
	return m
}

func TestCalculateScalarsStandard(t *testing.T) {
	c := NewCalculator(mustModel(t, "lp64"), false)

	tests := []struct {
		kind types.Kind
		size int
	}{
		{types.KindChar, 1},
		{types.KindBool, 1},
		{types.KindShort, 2},
		{types.KindInt, 4},
		{types.KindLong, 4},
		{types.KindLongLong, 8},
		{types.KindFloat, 4},
		{types.KindDouble, 8},
	}

	for _, tc := range tests {
		t.Run(tc.kind.String(), func(t *testing.T) {
			info, err := c.Scalar(tc.kind)
			if err != nil {
				t.Fatalf("Scalar: %v", err)
			}
			if info.Size != tc.size {
				t.Errorf("size: got %d, want %d", info.Size, tc.size)
			}
			if info.Align != 1 {
				t.Errorf("align: got %d, want 1", info.Align)
			}
		})
	}

	for _, k := range []types.Kind{types.KindPointer, types.KindSize, types.KindSSize} {
		if _, err := c.Scalar(k); err == nil {
			t.Errorf("%s should be rejected in standard mode", k)
		}
	}
}

func TestCalculateScalarsNative(t *testing.T) {
	tests := []struct {
		model string
		kind  types.Kind
		size  int
		align int
	}{
		{"lp64", types.KindLong, 8, 8},
		{"lp64", types.KindPointer, 8, 8},
		{"llp64", types.KindLong, 4, 4},
		{"ilp32", types.KindPointer, 4, 4},
		{"ilp32-i386", types.KindDouble, 8, 4},
		{"wasm32", types.KindLongLong, 8, 8},
	}

	for _, tc := range tests {
		t.Run(tc.model+"/"+tc.kind.String(), func(t *testing.T) {
			c := NewCalculator(mustModel(t, tc.model), true)
			info, err := c.Scalar(tc.kind)
			if err != nil {
				t.Fatalf("Scalar: %v", err)
			}
			if info.Size != tc.size || info.Align != tc.align {
				t.Errorf("got %+v, want size %d align %d", info, tc.size, tc.align)
			}
		})
	}
}

func TestCalculateArray(t *testing.T) {
	c := NewCalculator(mustModel(t, "lp64"), true)

	info, err := c.Array(Info{Size: 2, Align: 2}, 6)
	if err != nil {
		t.Fatalf("Array: %v", err)
	}
	if info.Size != 12 || info.Align != 2 {
		t.Errorf("got %+v, want {12 2}", info)
	}

	if _, err := c.Array(Info{Size: 8, Align: 8}, 1<<28); err == nil {
		t.Error("expected error for oversized array")
	}
}

func TestCalculateRecord(t *testing.T) {
	native := NewCalculator(mustModel(t, "lp64"), true)
	standard := NewCalculator(mustModel(t, "lp64"), false)

	t.Run("empty", func(t *testing.T) {
		info, offs, err := native.Record(nil)
		if err != nil {
			t.Fatal(err)
		}
		if info.Size != 0 || info.Align != 1 || len(offs) != 0 {
			t.Errorf("got %+v %v", info, offs)
		}
	})

	t.Run("char_int_native", func(t *testing.T) {
		info, offs, err := native.Record([]Info{{1, 1}, {4, 4}})
		if err != nil {
			t.Fatal(err)
		}
		if info.Size != 8 || info.Align != 4 {
			t.Errorf("got %+v, want {8 4}", info)
		}
		if offs[0] != 0 || offs[1] != 4 {
			t.Errorf("offsets = %v, want [0 4]", offs)
		}
	})

	t.Run("int_char_tail_padding", func(t *testing.T) {
		info, offs, err := native.Record([]Info{{4, 4}, {1, 1}})
		if err != nil {
			t.Fatal(err)
		}
		if info.Size != 8 {
			t.Errorf("size = %d, want 8", info.Size)
		}
		if offs[1] != 4 {
			t.Errorf("offsets = %v, want [0 4]", offs)
		}
	})

	t.Run("standard_packed", func(t *testing.T) {
		info, offs, err := standard.Record([]Info{{1, 1}, {4, 1}, {2, 1}})
		if err != nil {
			t.Fatal(err)
		}
		if info.Size != 7 || info.Align != 1 {
			t.Errorf("got %+v, want {7 1}", info)
		}
		if offs[2] != 5 {
			t.Errorf("offsets = %v, want [0 1 5]", offs)
		}
	})
}

func TestPad(t *testing.T) {
	tokens := []types.Token{
		{Kind: types.KindChar, Count: 1, Width: 1, Offset: 0},
		{Kind: types.KindInt, Count: 1, Width: 4, Offset: 4},
		{Kind: types.KindChar, Count: 1, Width: 1, Offset: 8},
	}
	got := Pad(tokens, 12)

	want := []string{"1c", "3x", "1i", "1c", "3x"}
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(got), len(want))
	}
	for i, tok := range got {
		if tok.Format() != want[i] {
			t.Errorf("token %d = %s, want %s", i, tok.Format(), want[i])
		}
	}
	if got[4].Offset != 9 {
		t.Errorf("tail pad offset = %d, want 9", got[4].Offset)
	}

	if packed := Pad(tokens[:1], 1); len(packed) != 1 {
		t.Errorf("packed stream should gain no pads, got %d tokens", len(packed))
	}
}
