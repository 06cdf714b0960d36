package abi

import (
	"encoding/binary"
	"math"
	"reflect"

	"golang.org/x/exp/constraints"
)

// MaxRecordSize bounds a single compiled layout.
const MaxRecordSize = 1 << 30

func SafeMul(a, b int) (int, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}
	if b != 0 && a > math.MaxInt/b {
		return 0, false
	}
	return a * b, true
}

func SafeAdd(a, b int) (int, bool) {
	if a < 0 || b < 0 || a > math.MaxInt-b {
		return 0, false
	}
	return a + b, true
}

// TypeName returns "nil" for nil values, avoiding reflect.TypeOf(nil) panic.
func TypeName(value any) string {
	if value == nil {
		return "nil"
	}
	return reflect.TypeOf(value).String()
}

func AlignTo(offset, align int) int {
	if align <= 1 {
		return offset
	}
	return (offset + align - 1) &^ (align - 1)
}

// FitsSigned reports whether v is representable in width bytes, two's complement.
func FitsSigned[T constraints.Signed](v T, width int) bool {
	if width >= 8 {
		return true
	}
	bits := uint(width * 8)
	lo := -(int64(1) << (bits - 1))
	hi := int64(1)<<(bits-1) - 1
	return int64(v) >= lo && int64(v) <= hi
}

// FitsUnsigned reports whether v is representable in width bytes.
func FitsUnsigned[T constraints.Unsigned](v T, width int) bool {
	if width >= 8 {
		return true
	}
	return uint64(v) <= uint64(1)<<(uint(width)*8)-1
}

// ReadUint reads a len(b)-byte unsigned integer. Widths other than 1, 2, 4
// and 8 are not produced by the compiler.
func ReadUint(order binary.ByteOrder, b []byte) uint64 {
	switch len(b) {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(order.Uint16(b))
	case 4:
		return uint64(order.Uint32(b))
	default:
		return order.Uint64(b)
	}
}

func PutUint(order binary.ByteOrder, b []byte, v uint64) {
	switch len(b) {
	case 1:
		b[0] = byte(v)
	case 2:
		order.PutUint16(b, uint16(v))
	case 4:
		order.PutUint32(b, uint32(v))
	default:
		order.PutUint64(b, v)
	}
}

// SignExtend interprets the low width bytes of v as two's complement.
func SignExtend(v uint64, width int) int64 {
	if width >= 8 {
		return int64(v)
	}
	shift := uint(64 - width*8)
	return int64(v<<shift) >> shift
}
