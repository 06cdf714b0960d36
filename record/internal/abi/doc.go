// Package abi provides internal utilities for record encoding and decoding.
//
// This package contains alignment arithmetic, integer range checks, byte
// order helpers and coercion of loosely typed Go values onto primitive
// C types.
//
// # Contents
//
//   - coerce.go: Go value to primitive coercion
//   - helpers.go: Alignment, overflow-checked arithmetic, integer packing
//
// This package is internal to record.
package abi
