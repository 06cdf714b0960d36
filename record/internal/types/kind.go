package types

type Kind uint8

const (
	KindChar Kind = iota
	KindSChar
	KindUChar
	KindBool
	KindShort
	KindUShort
	KindInt
	KindUInt
	KindLong
	KindULong
	KindLongLong
	KindULongLong
	KindFloat
	KindDouble
	KindSSize
	KindSize
	KindPointer

	kindCount
)

var kindNames = [...]string{
	KindChar:      "char",
	KindSChar:     "schar",
	KindUChar:     "uchar",
	KindBool:      "bool",
	KindShort:     "short",
	KindUShort:    "ushort",
	KindInt:       "int",
	KindUInt:      "uint",
	KindLong:      "long",
	KindULong:     "ulong",
	KindLongLong:  "longlong",
	KindULongLong: "ulonglong",
	KindFloat:     "float",
	KindDouble:    "double",
	KindSSize:     "ssize",
	KindSize:      "size",
	KindPointer:   "ptr",
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return "unknown"
}

func (k Kind) Valid() bool {
	return k < kindCount
}

func (k Kind) IsSigned() bool {
	switch k {
	case KindSChar, KindShort, KindInt, KindLong, KindLongLong, KindSSize:
		return true
	}
	return false
}

func (k Kind) IsUnsigned() bool {
	switch k {
	case KindUChar, KindUShort, KindUInt, KindULong, KindULongLong, KindSize, KindPointer:
		return true
	}
	return false
}

func (k Kind) IsFloat() bool {
	return k == KindFloat || k == KindDouble
}

// NativeOnly reports kinds whose width exists only under the native regime.
func (k Kind) NativeOnly() bool {
	return k == KindSSize || k == KindSize || k == KindPointer
}
