// Package record declares fixed-layout binary records and converts them
// to and from raw bytes with C struct semantics.
//
// A record is an ordered list of named fields. Each field has a Type:
//
//	Scalar    one C primitive (Char, Short, Int16, Double, Ptr, ...)
//	*Array    fixed-length array, nested for multidimensional shapes
//	*Pointer  a pointer-sized integer annotated with its pointee
//	*Record   another record embedded by value
//
// # Width Regimes
//
//	Mode           Sizes                   Padding
//	──────────────────────────────────────────────────────────────
//	StandardWidth  fixed (int 4, long 4)   none
//	NativeWidth    from a platform.Model   C member alignment + tail
//
// size_t, ssize_t and pointers exist only under NativeWidth. NativeWidth
// requires NativeOrder.
//
// # Compilation
//
// Define compiles the field list once into a Layout: a flat stream of
// primitive tokens with explicit pad tokens, per-field offsets and a
// format string in struct-module notation:
//
//	one int16; two int16[2]   →   "=1h2h"   (6 bytes)
//
// Layouts are cached by the Compiler and are immutable.
//
// # Decoding Flow
//
//  1. Record.Decode(buf) checks len(buf) == Sizeof
//  2. the decoder walks fields and tokens in lock step, skipping pads
//  3. values are bound to an Instance and the validator runs
//
// Decoded values use these Go types:
//
//	char          byte, arrays collapse to []byte
//	short, int    int16, int32
//	long          int64 (4 bytes wide under StandardWidth)
//	ulong, size   uint64
//	ptr           uint64
//	float, double float32, float64
//	T[n]          []T for the innermost dimension, []any outside
//	record        *Instance, []*Instance for arrays
//
// # Encoding
//
// Instance.Bytes and Record.Encode accept any Go integer or float that
// fits the target, any slice or array of the exact length, and either an
// *Instance or a positional []any for embedded records. Errors carry the
// field path, e.g. "Header.time[1]".
package record
