package dump

import (
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/termenv"

	"github.com/wippyai/cstruct/record"
	"github.com/wippyai/cstruct/stats"
)

// Printer writes human-readable views of layouts, instances and buffers.
type Printer struct {
	w     io.Writer
	title lipgloss.Style
	name  lipgloss.Style
	typ   lipgloss.Style
	value lipgloss.Style
	pad   lipgloss.Style
	dim   lipgloss.Style
	head  lipgloss.Style
	cell  lipgloss.Style
}

// New creates a printer writing to w. With color off all styling is
// dropped and the output is plain text.
func New(w io.Writer, color bool) *Printer {
	r := lipgloss.NewRenderer(w)
	if !color {
		r.SetColorProfile(termenv.Ascii)
	}
	return &Printer{
		w: w,
		title: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1),
		name:  r.NewStyle().Foreground(lipgloss.Color("#98FB98")),
		typ:   r.NewStyle().Foreground(lipgloss.Color("#87CEEB")),
		value: r.NewStyle().Foreground(lipgloss.Color("#FAFAFA")),
		pad:   r.NewStyle().Foreground(lipgloss.Color("#666666")),
		dim:   r.NewStyle().Foreground(lipgloss.Color("#666666")),
		head:  r.NewStyle().Bold(true).Padding(0, 1),
		cell:  r.NewStyle().Padding(0, 1),
	}
}

// Layout prints the record header and a table of field placements.
func (p *Printer) Layout(l *record.Layout) error {
	platform := "-"
	if l.Platform != nil {
		platform = l.Platform.Name
	}
	header := fmt.Sprintf("%s %s  size %d  align %d  %s/%s/%s",
		p.title.Render("struct "+l.Name), p.typ.Render(l.FormatString()),
		l.Size, l.Align, l.Order, l.Width, platform)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("offset", "size", "align", "field", "type").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return p.head
			}
			return p.cell
		})
	for _, f := range l.Fields {
		t.Row(strconv.Itoa(f.Offset), strconv.Itoa(f.Size), strconv.Itoa(f.Align), f.Name, f.Type.String())
	}
	_, err := fmt.Fprintf(p.w, "%s\n%s\n", header, t.String())
	return err
}

// Instance prints one field per line; nested records are indented under
// their field.
func (p *Printer) Instance(inst *record.Instance) error {
	var b strings.Builder
	r := inst.Type()
	fmt.Fprintf(&b, "%s %s\n", p.title.Render(r.String()), p.dim.Render(fmt.Sprintf("%d bytes", r.Sizeof())))
	p.fields(&b, inst, 1)
	_, err := io.WriteString(p.w, b.String())
	return err
}

func (p *Printer) fields(b *strings.Builder, inst *record.Instance, depth int) {
	indent := strings.Repeat("  ", depth)
	values := inst.Values()
	for i, f := range inst.Type().Fields() {
		fmt.Fprintf(b, "%s%s %s", indent, p.name.Render(f.Name), p.typ.Render(f.Type.String()))
		switch v := values[i].(type) {
		case *record.Instance:
			b.WriteByte('\n')
			p.fields(b, v, depth+1)
		case []*record.Instance:
			b.WriteByte('\n')
			for k, e := range v {
				fmt.Fprintf(b, "%s  %s\n", indent, p.dim.Render("["+strconv.Itoa(k)+"]"))
				p.fields(b, e, depth+2)
			}
		default:
			fmt.Fprintf(b, " = %s\n", p.value.Render(record.FormatValue(v)))
		}
	}
}

// Bytes prints buf as hex split along the layout's tokens, one line per
// token, padding included.
func (p *Printer) Bytes(l *record.Layout, buf []byte) error {
	if len(buf) != l.Size {
		return fmt.Errorf("buffer is %d bytes, layout %s needs %d", len(buf), l.Name, l.Size)
	}
	var b strings.Builder
	for _, tok := range l.Tokens {
		chunk := hex.EncodeToString(buf[tok.Offset:tok.End()])
		if tok.Pad {
			fmt.Fprintf(&b, "%04x  %s  %s\n", tok.Offset, p.pad.Render(chunk), p.pad.Render("padding"))
			continue
		}
		fmt.Fprintf(&b, "%04x  %s  %s %s\n", tok.Offset, chunk, p.name.Render(tok.Path), p.typ.Render(tok.Format()))
	}
	_, err := io.WriteString(p.w, b.String())
	return err
}

// Summary prints a stats table.
func (p *Printer) Summary(s *stats.Summary) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("field", "count", "mean", "stddev", "min", "median", "max").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return p.head
			}
			return p.cell
		})
	num := func(f float64) string { return strconv.FormatFloat(f, 'g', 6, 64) }
	for _, f := range s.Fields {
		t.Row(f.Path, strconv.Itoa(f.Count), num(f.Mean), num(f.StdDev), num(f.Min), num(f.Median), num(f.Max))
	}
	_, err := fmt.Fprintf(p.w, "%s %s\n%s\n",
		p.title.Render("struct "+s.Record), p.dim.Render(fmt.Sprintf("%d records", s.Records)), t.String())
	return err
}
