package types

import "reflect"

// Descriptor describes one primitive C type. Descriptors are immutable and
// shared; use Lookup to get the canonical instance for a kind.
type Descriptor struct {
	GoType        reflect.Type
	Name          string
	Kind          Kind
	StandardWidth int // 0 for native-only kinds
	Code          byte
}

var descriptors = [kindCount]Descriptor{
	KindChar:      {Kind: KindChar, Name: "char", Code: 'c', StandardWidth: 1, GoType: reflect.TypeOf(byte(0))},
	KindSChar:     {Kind: KindSChar, Name: "schar", Code: 'b', StandardWidth: 1, GoType: reflect.TypeOf(int8(0))},
	KindUChar:     {Kind: KindUChar, Name: "uchar", Code: 'B', StandardWidth: 1, GoType: reflect.TypeOf(uint8(0))},
	KindBool:      {Kind: KindBool, Name: "bool", Code: '?', StandardWidth: 1, GoType: reflect.TypeOf(false)},
	KindShort:     {Kind: KindShort, Name: "short", Code: 'h', StandardWidth: 2, GoType: reflect.TypeOf(int16(0))},
	KindUShort:    {Kind: KindUShort, Name: "ushort", Code: 'H', StandardWidth: 2, GoType: reflect.TypeOf(uint16(0))},
	KindInt:       {Kind: KindInt, Name: "int", Code: 'i', StandardWidth: 4, GoType: reflect.TypeOf(int32(0))},
	KindUInt:      {Kind: KindUInt, Name: "uint", Code: 'I', StandardWidth: 4, GoType: reflect.TypeOf(uint32(0))},
	KindLong:      {Kind: KindLong, Name: "long", Code: 'l', StandardWidth: 4, GoType: reflect.TypeOf(int64(0))},
	KindULong:     {Kind: KindULong, Name: "ulong", Code: 'L', StandardWidth: 4, GoType: reflect.TypeOf(uint64(0))},
	KindLongLong:  {Kind: KindLongLong, Name: "longlong", Code: 'q', StandardWidth: 8, GoType: reflect.TypeOf(int64(0))},
	KindULongLong: {Kind: KindULongLong, Name: "ulonglong", Code: 'Q', StandardWidth: 8, GoType: reflect.TypeOf(uint64(0))},
	KindFloat:     {Kind: KindFloat, Name: "float", Code: 'f', StandardWidth: 4, GoType: reflect.TypeOf(float32(0))},
	KindDouble:    {Kind: KindDouble, Name: "double", Code: 'd', StandardWidth: 8, GoType: reflect.TypeOf(float64(0))},
	KindSSize:     {Kind: KindSSize, Name: "ssize", Code: 'n', GoType: reflect.TypeOf(int64(0))},
	KindSize:      {Kind: KindSize, Name: "size", Code: 'N', GoType: reflect.TypeOf(uint64(0))},
	KindPointer:   {Kind: KindPointer, Name: "ptr", Code: 'P', GoType: reflect.TypeOf(uint64(0))},
}

// aliases maps the fixed-width and C spellings onto kinds.
var aliases = map[string]Kind{
	"int8":               KindSChar,
	"uint8":              KindUChar,
	"int16":              KindShort,
	"uint16":             KindUShort,
	"int32":              KindInt,
	"uint32":             KindUInt,
	"int64":              KindLongLong,
	"uint64":             KindULongLong,
	"signed char":        KindSChar,
	"unsigned char":      KindUChar,
	"unsigned short":     KindUShort,
	"unsigned int":       KindUInt,
	"unsigned long":      KindULong,
	"long long":          KindLongLong,
	"unsigned long long": KindULongLong,
	"_Bool":              KindBool,
	"size_t":             KindSize,
	"ssize_t":            KindSSize,
	"void*":              KindPointer,
}

// Lookup returns the shared descriptor for k, or nil for an invalid kind.
func Lookup(k Kind) *Descriptor {
	if !k.Valid() {
		return nil
	}
	return &descriptors[k]
}

// ByName resolves a primitive by its canonical name or an alias.
func ByName(name string) (*Descriptor, bool) {
	for i := range descriptors {
		if descriptors[i].Name == name {
			return &descriptors[i], true
		}
	}
	if k, ok := aliases[name]; ok {
		return &descriptors[k], true
	}
	return nil, false
}

// ByCode resolves a primitive by its format code.
func ByCode(code byte) (*Descriptor, bool) {
	for i := range descriptors {
		if descriptors[i].Code == code {
			return &descriptors[i], true
		}
	}
	return nil, false
}
