// Package wasmmem reads and writes records in WebAssembly linear memory.
//
// Records shared with a guest compiled for wasm32 should be defined with
// Options, which selects native widths under the wasm32 data model:
//
//	opts, _ := wasmmem.Options()
//	r, _ := record.Define("Event", fields, opts...)
//
//	mem := wasmmem.WrapMemory(mod.ExportedMemory("memory"))
//	ev, err := wasmmem.Decode(r, mem, ptr)
//
// Store allocates through a guest export (cabi_realloc or a malloc-style
// function) and writes the encoded record there. Pointer fields hold guest
// addresses; Follow decodes the record one points to.
package wasmmem
