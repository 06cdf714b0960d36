// Package stats summarizes numeric fields over decoded records.
//
// Scalars and array elements of every integer and floating kind are
// collected by field path; char, bool and pointer fields are ignored.
// Nested records contribute dotted paths ("pos.x") and array elements are
// pooled under a "[]" suffix ("samples[]", "points[].y").
package stats
