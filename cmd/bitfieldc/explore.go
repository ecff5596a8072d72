package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/wippyai/bitfield/accessor"
	"github.com/wippyai/bitfield/compiler"
	"github.com/wippyai/bitfield/render/wit"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	fieldStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	wordStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

func cmdExplore(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("explore", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var c common
	c.register(fs)
	layoutName := fs.String("layout", "", "layout to explore (required when the file declares several)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	path, err := oneFile(fs)
	if err != nil {
		return err
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("explore needs an interactive terminal; use eval instead")
	}
	if _, err := c.setup(stderr); err != nil {
		return err
	}
	layouts, err := compiler.CompileFile(path)
	if err != nil {
		return err
	}
	l, err := pick(layouts, *layoutName)
	if err != nil {
		return err
	}

	p := tea.NewProgram(newExploreModel(path, accessor.New(l)), tea.WithAltScreen())
	_, err = p.Run()
	return err
}

type exploreModel struct {
	err      error
	typ      *accessor.Type
	file     string
	value    accessor.Value
	input    textinput.Model
	selected int
	editing  bool
}

func newExploreModel(file string, typ *accessor.Type) *exploreModel {
	return &exploreModel{
		file:  file,
		typ:   typ,
		value: typ.Default(),
	}
}

func (m *exploreModel) Init() tea.Cmd {
	return nil
}

func (m *exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if m.editing {
		return m.updateEditing(key)
	}

	fields := m.typ.Layout().Fields
	switch key.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}

	case "down", "j":
		if m.selected < len(fields)-1 {
			m.selected++
		}

	case "r":
		m.value = m.typ.Default()
		m.err = nil

	case "z":
		m.value = m.typ.From64(0)
		m.err = nil

	case " ", "space", "enter":
		f := fields[m.selected]
		if f.IsSingle() {
			b := m.typ.MustBit(f.Name)
			b.W(&m.value).Bit(b.R(m.value).IsBitClear())
			return m, nil
		}
		ti := textinput.New()
		ti.Placeholder = f.Encoding.Tag()
		ti.Prompt = f.Name + " = "
		ti.Width = 40
		ti.Focus()
		m.input = ti
		m.editing = true
		m.err = nil
		return m, textinput.Blink
	}
	return m, nil
}

func (m *exploreModel) updateEditing(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		m.editing = false
		return m, nil

	case "enter":
		m.editing = false
		f := m.typ.Layout().Fields[m.selected]
		v, err := compiler.ParseLiteral(strings.TrimSpace(m.input.Value()))
		if err != nil {
			m.err = err
			return m, nil
		}
		m.err = m.value.Set(f.Name, v)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(key)
	return m, cmd
}

func (m *exploreModel) View() string {
	l := m.typ.Layout()
	var b strings.Builder

	b.WriteString(titleStyle.Render("Bit-field Explorer"))
	b.WriteString(" ")
	b.WriteString(fmt.Sprintf("%s (%s)", l.Name, m.file))
	b.WriteString("\n\n")

	b.WriteString(wordStyle.Render(fmt.Sprintf("%#x", m.value.Raw().Big())))
	b.WriteString("  ")
	b.WriteString(binary(m))
	b.WriteString("\n\n")

	for i, f := range l.Fields {
		got, _ := m.value.Get(f.Name)
		bits := fmt.Sprintf("%d..=%d", f.Bits.Bottom(), f.Bits.Top())
		if f.IsSingle() {
			bits = fmt.Sprintf("%d", f.Bits.Bottom())
		}
		line := fmt.Sprintf("%-16s %-8s %s = %s", f.Name, bits, wit.TypeString(wit.FieldType(f)), got)
		if i == m.selected {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + fieldStyle.Render(line))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.editing {
		b.WriteString(m.input.View())
		b.WriteString(" ")
		b.WriteString(typeStyle.Render(l.Fields[m.selected].Encoding.Tag()))
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter apply • esc cancel"))
		return b.String()
	}

	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n\n")
	}
	b.WriteString(helpStyle.Render("↑/↓ select • space toggle bit • enter edit • r default • z zero • q quit"))
	return b.String()
}

// binary renders the word most significant bit first, in nibbles.
func binary(m *exploreModel) string {
	l := m.typ.Layout()
	raw := m.value.Raw()
	var b strings.Builder
	for i := int(l.Width) - 1; i >= 0; i-- {
		if raw.Rsh(uint(i)).Lo&1 == 1 {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
		if i > 0 && i%4 == 0 {
			b.WriteByte('_')
		}
	}
	return b.String()
}
