// Package types defines the primitive C type descriptors and layout tokens.
//
// Kind enumerates the closed set of primitives; Descriptor carries the
// format code, standard width and Go value type of each one. Token is the
// unit of a flattened record layout.
//
// This package is internal to record.
package types
