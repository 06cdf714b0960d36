package layout

import (
	"fmt"

	"github.com/wippyai/cstruct/platform"
	"github.com/wippyai/cstruct/record/internal/abi"
	"github.com/wippyai/cstruct/record/internal/types"
)

// Info is the size and alignment of a type under one width regime.
type Info struct {
	Size  int
	Align int
}

// Calculator computes sizes and member offsets. In standard mode every
// primitive has its fixed width and alignment 1; in native mode widths and
// alignments come from the data model.
type Calculator struct {
	model  *platform.Model
	native bool
}

func NewCalculator(model *platform.Model, native bool) *Calculator {
	if model == nil {
		model = platform.Host()
	}
	return &Calculator{model: model, native: native}
}

func (c *Calculator) Native() bool {
	return c.native
}

func (c *Calculator) Model() *platform.Model {
	return c.model
}

// Scalar returns the layout of one primitive.
func (c *Calculator) Scalar(k types.Kind) (Info, error) {
	desc := types.Lookup(k)
	if desc == nil {
		return Info{}, fmt.Errorf("invalid primitive kind %d", k)
	}
	if !c.native {
		if k.NativeOnly() {
			return Info{}, fmt.Errorf("%s is only available with native type widths", desc.Name)
		}
		return Info{Size: desc.StandardWidth, Align: 1}, nil
	}
	info, ok := c.model.Info(desc.Name)
	if !ok {
		return Info{}, fmt.Errorf("data model %s does not describe %s", c.model.Name, desc.Name)
	}
	return Info{Size: info.Size, Align: info.Align}, nil
}

// Array returns the layout of length consecutive elements.
func (c *Calculator) Array(elem Info, length int) (Info, error) {
	size, ok := abi.SafeMul(elem.Size, length)
	if !ok || size > abi.MaxRecordSize {
		return Info{}, fmt.Errorf("array of %d elements of %d bytes exceeds %d bytes", length, elem.Size, abi.MaxRecordSize)
	}
	return Info{Size: size, Align: elem.Align}, nil
}

// Record lays members out in order and returns the record layout and the
// offset of each member.
func (c *Calculator) Record(members []Info) (Info, []int, error) {
	offsets := make([]int, len(members))
	if len(members) == 0 {
		return Info{Size: 0, Align: 1}, offsets, nil
	}

	maxAlign := 1
	offset := 0

	for i, m := range members {
		align := 1
		if c.native {
			align = m.Align
		}
		offset = abi.AlignTo(offset, align)
		offsets[i] = offset

		if align > maxAlign {
			maxAlign = align
		}

		next, ok := abi.SafeAdd(offset, m.Size)
		if !ok || next > abi.MaxRecordSize {
			return Info{}, nil, fmt.Errorf("record exceeds %d bytes", abi.MaxRecordSize)
		}
		offset = next
	}

	totalSize := abi.AlignTo(offset, maxAlign)

	return Info{
		Size:  totalSize,
		Align: maxAlign,
	}, offsets, nil
}

// Pad inserts pad tokens into every gap of an offset-ordered token stream
// and after its end up to size.
func Pad(tokens []types.Token, size int) []types.Token {
	out := make([]types.Token, 0, len(tokens)+2)
	cursor := 0
	for _, tok := range tokens {
		if tok.Offset > cursor {
			out = append(out, types.Token{Pad: true, Offset: cursor, Count: tok.Offset - cursor})
		}
		out = append(out, tok)
		if end := tok.End(); end > cursor {
			cursor = end
		}
	}
	if size > cursor {
		out = append(out, types.Token{Pad: true, Offset: cursor, Count: size - cursor})
	}
	return out
}
