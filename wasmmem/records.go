package wasmmem

import (
	"context"

	"go.uber.org/zap"

	"github.com/wippyai/cstruct/errors"
	"github.com/wippyai/cstruct/platform"
	"github.com/wippyai/cstruct/record"
)

// Options returns definition options matching the layout a wasm32 C
// compiler gives a struct. Linear memory is little-endian, so these
// records are only meaningful on little-endian hosts.
func Options() ([]record.Option, error) {
	m, err := platform.Lookup("wasm32")
	if err != nil {
		return nil, err
	}
	return []record.Option{record.WithWidth(record.NativeWidth), record.WithPlatform(m)}, nil
}

// Decode reads one record at offset.
func Decode(r *record.Record, mem Memory, offset uint32) (*record.Instance, error) {
	if mem == nil {
		return nil, errors.InvalidInput(errors.PhaseDecode, "nil memory")
	}
	data, err := mem.Read(offset, uint32(r.Sizeof()))
	if err != nil {
		return nil, errors.Wrap(errors.PhaseDecode, errors.KindInvalidInput, err, "read "+r.Name())
	}
	return r.Decode(data)
}

// DecodeArray reads count consecutive records starting at offset.
func DecodeArray(r *record.Record, mem Memory, offset, count uint32) ([]*record.Instance, error) {
	if mem == nil {
		return nil, errors.InvalidInput(errors.PhaseDecode, "nil memory")
	}
	size := uint64(r.Sizeof()) * uint64(count)
	if size > uint64(^uint32(0)) {
		return nil, errors.InvalidInput(errors.PhaseDecode, "array exceeds 32-bit address space")
	}
	data, err := mem.Read(offset, uint32(size))
	if err != nil {
		return nil, errors.Wrap(errors.PhaseDecode, errors.KindInvalidInput, err, "read "+r.Name())
	}
	return r.DecodeAll(data)
}

// Encode writes inst at offset.
func Encode(inst *record.Instance, mem Memory, offset uint32) error {
	if mem == nil {
		return errors.InvalidInput(errors.PhaseEncode, "nil memory")
	}
	buf, err := inst.Bytes()
	if err != nil {
		return err
	}
	if err := mem.Write(offset, buf); err != nil {
		return errors.Wrap(errors.PhaseEncode, errors.KindInvalidInput, err, "write "+inst.Type().Name())
	}
	return nil
}

// Store allocates guest memory for inst, writes it and returns its address.
func Store(ctx context.Context, inst *record.Instance, mem Memory, alloc Allocator) (uint32, error) {
	if alloc == nil {
		return 0, errors.InvalidInput(errors.PhaseEncode, "nil allocator")
	}
	r := inst.Type()
	align := 1
	if l := r.Layout(); l != nil {
		align = l.Align
	}
	ptr, err := alloc.Alloc(ctx, uint32(r.Sizeof()), uint32(align))
	if err != nil {
		return 0, errors.Wrap(errors.PhaseEncode, errors.KindInvalidInput, err, "allocate "+r.Name())
	}
	if err := Encode(inst, mem, ptr); err != nil {
		return 0, err
	}
	Logger().Debug("record stored in guest memory",
		zap.String("record", r.Name()),
		zap.Uint32("ptr", ptr),
		zap.Int("size", r.Sizeof()))
	return ptr, nil
}

// Follow decodes the record a pointer field refers to. A null pointer
// returns nil without error.
func Follow(inst *record.Instance, field string, target *record.Record, mem Memory) (*record.Instance, error) {
	v, ok := inst.Get(field)
	if !ok {
		return nil, errors.NotFound(errors.PhaseDecode, "field", field)
	}
	ptr, ok := v.(uint64)
	if !ok {
		return nil, errors.New(errors.PhaseDecode, errors.KindValueMismatch).
			Path(inst.Type().Name(), field).
			Detail("not a pointer value").
			Build()
	}
	if ptr == 0 {
		return nil, nil
	}
	if ptr > uint64(^uint32(0)) {
		return nil, errors.InvalidInput(errors.PhaseDecode, "pointer outside 32-bit linear memory")
	}
	return Decode(target, mem, uint32(ptr))
}
