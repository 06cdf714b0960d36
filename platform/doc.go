// Package platform describes C data models for the native width regime.
//
// Native-width records take each primitive's size and alignment from a Model
// instead of the fixed standard widths. Models are loaded from an embedded
// YAML table; Host picks the one matching runtime.GOOS/GOARCH.
//
//	Model        long  ptr  double align
//	─────────────────────────────────────
//	lp64         8     8    8
//	llp64        4     8    8
//	ilp32        4     4    8
//	ilp32-i386   4     4    4
//	wasm32       4     4    8
package platform
