package main

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/wippyai/cstruct/dump"
	"github.com/wippyai/cstruct/record"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	listStyle = lipgloss.NewStyle().
			Width(listWidth).
			MarginRight(1)
)

const (
	listWidth     = 36
	summaryFields = 3
)

func newInspectCmd(a *app) *cobra.Command {
	var (
		flags  recordFlags
		stream streamOptions
	)
	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Browse the records of a binary file interactively",
		Long: `Open a terminal browser over the records in a file. Each record shows
its decoded fields and its bytes split by field.

Keys: up/down select, pgup/pgdown scroll, : jump to index, q quit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := flags.resolve(a)
			if err != nil {
				return err
			}
			in, err := openInput(cmd, args[0])
			if err != nil {
				return err
			}
			defer in.Close()

			var insts []*record.Instance
			err = eachRecord(r, in, stream, func(_ int, inst *record.Instance) error {
				insts = append(insts, inst)
				return nil
			})
			if err != nil {
				return err
			}
			if len(insts) == 0 {
				return fmt.Errorf("%s holds no %s records", args[0], r.Name())
			}

			m := newInspectModel(args[0], r, insts, a.color(cmd.OutOrStdout()))
			p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithInput(cmd.InOrStdin()), tea.WithOutput(cmd.OutOrStdout()))
			_, err = p.Run()
			return err
		},
	}
	flags.register(cmd)
	stream.register(cmd)
	return cmd
}

type inspectModel struct {
	err      error
	rec      *record.Record
	filename string
	insts    []*record.Instance
	detail   viewport.Model
	jump     textinput.Model
	selected int
	height   int
	jumping  bool
	color    bool
}

func newInspectModel(filename string, r *record.Record, insts []*record.Instance, color bool) *inspectModel {
	ti := textinput.New()
	ti.Prompt = "go to: "
	ti.Placeholder = "index"
	ti.Width = 10

	m := &inspectModel{
		rec:      r,
		filename: filename,
		insts:    insts,
		detail:   viewport.New(80, 20),
		jump:     ti,
		height:   24,
		color:    color,
	}
	m.refresh()
	return m
}

func (m *inspectModel) Init() tea.Cmd {
	return nil
}

func (m *inspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		m.detail.Width = msg.Width - listWidth - 1
		m.detail.Height = msg.Height - 4
		return m, nil

	case tea.KeyMsg:
		if m.jumping {
			return m.updateJump(msg)
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "up", "k":
			m.selectIndex(m.selected - 1)
		case "down", "j":
			m.selectIndex(m.selected + 1)
		case "home", "g":
			m.selectIndex(0)
		case "end", "G":
			m.selectIndex(len(m.insts) - 1)
		case ":":
			m.jumping = true
			m.err = nil
			m.jump.SetValue("")
			return m, m.jump.Focus()
		default:
			var cmd tea.Cmd
			m.detail, cmd = m.detail.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m *inspectModel) updateJump(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.jumping = false
		m.jump.Blur()
		return m, nil
	case "enter":
		m.jumping = false
		m.jump.Blur()
		i, err := strconv.Atoi(strings.TrimSpace(m.jump.Value()))
		if err != nil || i < 0 || i >= len(m.insts) {
			m.err = fmt.Errorf("no record %q", m.jump.Value())
			return m, nil
		}
		m.selectIndex(i)
		return m, nil
	}
	var cmd tea.Cmd
	m.jump, cmd = m.jump.Update(msg)
	return m, cmd
}

func (m *inspectModel) selectIndex(i int) {
	if i < 0 || i >= len(m.insts) || i == m.selected {
		return
	}
	m.selected = i
	m.refresh()
}

// refresh renders the selected record into the detail viewport.
func (m *inspectModel) refresh() {
	var b bytes.Buffer
	p := dump.New(&b, m.color)
	inst := m.insts[m.selected]
	if err := p.Instance(inst); err != nil {
		m.err = err
	}
	b.WriteByte('\n')
	buf, err := inst.Bytes()
	if err == nil {
		err = p.Bytes(m.rec.Layout(), buf)
	}
	if err != nil {
		m.err = err
	}
	m.detail.SetContent(b.String())
	m.detail.GotoTop()
}

func (m *inspectModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("struct " + m.rec.Name()))
	fmt.Fprintf(&b, " %s  %d/%d\n\n", m.filename, m.selected+1, len(m.insts))

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, listStyle.Render(m.list()), m.detail.View()))
	b.WriteString("\n")

	switch {
	case m.jumping:
		b.WriteString(m.jump.View())
	case m.err != nil:
		b.WriteString(errorStyle.Render(m.err.Error()))
	default:
		b.WriteString(helpStyle.Render("↑/↓ select • pgup/pgdn scroll • : jump • q quit"))
	}
	return b.String()
}

// list renders the window of record summaries around the selection.
func (m *inspectModel) list() string {
	rows := m.height - 4
	if rows < 1 {
		rows = 1
	}
	start := m.selected - rows/2
	if start > len(m.insts)-rows {
		start = len(m.insts) - rows
	}
	if start < 0 {
		start = 0
	}
	end := start + rows
	if end > len(m.insts) {
		end = len(m.insts)
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		line := truncate(fmt.Sprintf("%4d %s", i, summarize(m.insts[i])), listWidth)
		if i == m.selected {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line)
		if i < end-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// summarize shows the first few field values of inst on one line.
func summarize(inst *record.Instance) string {
	values := inst.Values()
	n := len(values)
	if n > summaryFields {
		n = summaryFields
	}
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		parts[i] = record.FormatValue(values[i])
	}
	s := strings.Join(parts, " ")
	if len(values) > summaryFields {
		s += " …"
	}
	return s
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}
