// Package witrecord builds records from WebAssembly Interface Type
// definitions.
//
// WIT records and tuples whose fields are all fixed-size (integers,
// floats, bool, char, enums, flags and other such records) map onto C
// structs with the canonical ABI layout:
//
//	b, _ := witrecord.NewBuilder()
//	point, err := b.Record(pointTypeDef)
//
// Enums become their discriminant integer and flags their bit set. Strings,
// lists, options, results, variants and resource handles have no fixed C
// layout and are rejected.
package witrecord
