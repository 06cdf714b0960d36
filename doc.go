// Package cstruct describes C-struct-like binary records in Go and converts
// between their packed bytes and Go values.
//
// A record is an ordered list of named fields whose types are C primitives,
// fixed-size arrays, pointers or other records. Defining a record compiles
// its byte layout once: field offsets, alignment padding and a struct-module
// style format string such as "=2Q1h1h". The compiled record then decodes
// buffers of exactly its size into instances and encodes values back.
//
// # Architecture Overview
//
// The module is organized into several packages with distinct responsibilities:
//
//	cstruct/
//	├── record/      Type algebra, layout compiler, codec and instances
//	├── platform/    C data models (LP64, LLP64, ILP32, wasm32) for native widths
//	├── errors/      Structured errors with phase and kind
//	├── schema/      YAML record definitions with C-like type expressions
//	├── witrecord/   Records built from WIT record and tuple definitions
//	├── wasmmem/     Records read from and written to wasm linear memory
//	├── store/       Pebble-backed storage of encoded records
//	├── metrics/     Prometheus observer for codec activity
//	├── stats/       Numeric field statistics over record streams
//	├── dump/        Terminal rendering of layouts, records and bytes
//	├── config/      Configuration for the cstruct command
//	└── cmd/cstruct/ Command line tool
//
// # Byte Order and Width
//
// Records default to native byte order with standard widths: every
// primitive has a fixed size and fields are packed without padding. Native
// width instead takes sizes and alignment from a platform data model and
// pads fields the way a C compiler would:
//
//	r, err := record.Define("Node", []record.Field{
//		{Name: "tag", Type: record.Char},
//		{Name: "value", Type: record.Double},
//	}, record.WithWidth(record.NativeWidth))
//	// r.FormatString() == "@1c7x1d", r.Sizeof() == 16
//
// # Thread Safety
//
// Defined records and their layouts are immutable and safe for concurrent
// use. Instances are not synchronized.
package cstruct
