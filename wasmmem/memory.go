package wasmmem

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero/api"
)

// Memory is byte-addressed guest memory.
type Memory interface {
	Read(offset uint32, length uint32) ([]byte, error)
	Write(offset uint32, data []byte) error
}

// Allocator reserves guest memory.
type Allocator interface {
	Alloc(ctx context.Context, size, align uint32) (uint32, error)
}

// WrapMemory wraps a wazero api.Memory. It returns nil for nil memory.
func WrapMemory(mem api.Memory) Memory {
	if mem == nil {
		return nil
	}
	return &Wrapper{Mem: mem}
}

// Wrapper adapts wazero api.Memory to Memory.
type Wrapper struct {
	Mem api.Memory
}

// Read returns a view of guest memory; it is invalidated when memory grows.
func (m *Wrapper) Read(offset uint32, length uint32) ([]byte, error) {
	data, ok := m.Mem.Read(offset, length)
	if !ok {
		return nil, fmt.Errorf("memory read out of bounds: offset=%d, length=%d, size=%d", offset, length, m.Mem.Size())
	}
	return data, nil
}

func (m *Wrapper) Write(offset uint32, data []byte) error {
	if !m.Mem.Write(offset, data) {
		return fmt.Errorf("memory write out of bounds: offset=%d, length=%d, size=%d", offset, len(data), m.Mem.Size())
	}
	return nil
}

// WrapAllocator wraps an exported guest allocation function. Functions
// with four parameters are called as cabi_realloc(0, 0, align, size);
// anything else as malloc(size).
func WrapAllocator(fn api.Function) Allocator {
	if fn == nil {
		return nil
	}
	return &AllocatorWrapper{
		Fn:      fn,
		realloc: len(fn.Definition().ParamTypes()) == 4,
	}
}

// AllocatorWrapper adapts a wazero api.Function to Allocator.
type AllocatorWrapper struct {
	Fn      api.Function
	realloc bool
}

func (a *AllocatorWrapper) Alloc(ctx context.Context, size, align uint32) (uint32, error) {
	var (
		results []uint64
		err     error
	)
	if a.realloc {
		results, err = a.Fn.Call(ctx, 0, 0, uint64(align), uint64(size))
	} else {
		results, err = a.Fn.Call(ctx, uint64(size))
	}
	if err != nil {
		return 0, fmt.Errorf("allocation failed: %w", err)
	}
	if len(results) == 0 {
		return 0, fmt.Errorf("allocation returned no result")
	}
	ptr := uint32(results[0])
	if align > 1 && ptr%align != 0 {
		return 0, fmt.Errorf("allocator returned %#x, not aligned to %d", ptr, align)
	}
	return ptr, nil
}
