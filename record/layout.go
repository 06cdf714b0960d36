package record

import (
	"strings"

	"github.com/wippyai/cstruct/platform"
)

// Layout is the compiled, immutable byte layout of a record.
type Layout struct {
	Name string
	// Tokens is the flattened primitive stream in wire order, pads included.
	Tokens   []Token
	Fields   []FieldLayout
	Size     int
	Align    int
	Order    ByteOrder
	Width    WidthMode
	Platform *platform.Model

	format string
	index  map[string]int
}

// FieldLayout places one declared field.
type FieldLayout struct {
	Name   string
	Type   Type
	Offset int
	Size   int
	Align  int
}

// FormatString renders the layout in struct-module notation: a marker
// followed by <count><code> per token, e.g. "=1h2h".
func (l *Layout) FormatString() string {
	return l.format
}

// Field looks up a field by name.
func (l *Layout) Field(name string) (FieldLayout, bool) {
	i, ok := l.index[name]
	if !ok {
		return FieldLayout{}, false
	}
	return l.Fields[i], true
}

func (l *Layout) marker() byte {
	if l.Width == NativeWidth {
		return '@'
	}
	return l.Order.Marker()
}

func buildFormat(l *Layout) string {
	var b strings.Builder
	b.WriteByte(l.marker())
	for _, tok := range l.Tokens {
		b.WriteString(tok.Format())
	}
	return b.String()
}
