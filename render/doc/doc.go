// Package doc renders layouts as register maps in Markdown or HTML.
package doc

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/parser"
	"lukechampine.com/uint128"

	"github.com/wippyai/bitfield/layout"
	"github.com/wippyai/bitfield/render"
)

// Markdown renders a Markdown register map.
type Markdown struct{}

func (Markdown) Name() string { return "md" }
func (Markdown) Ext() string  { return ".md" }

func (Markdown) Render(layouts []*layout.Layout, opts render.Options) ([]byte, error) {
	return []byte(Text(layouts, opts)), nil
}

// HTML renders the Markdown register map converted to HTML.
type HTML struct{}

func (HTML) Name() string { return "html" }
func (HTML) Ext() string  { return ".html" }

func (HTML) Render(layouts []*layout.Layout, opts render.Options) ([]byte, error) {
	md := []byte(Text(layouts, opts))
	p := parser.NewWithExtensions(parser.CommonExtensions)
	return markdown.ToHTML(md, p, nil), nil
}

// Text returns the Markdown source for layouts.
func Text(layouts []*layout.Layout, opts render.Options) string {
	var b strings.Builder
	for _, line := range opts.Header {
		fmt.Fprintf(&b, "%s\n\n", line)
	}
	for i, l := range layouts {
		if i > 0 {
			b.WriteByte('\n')
		}
		writeLayout(&b, l, opts.Source)
	}
	return b.String()
}

func writeLayout(b *strings.Builder, l *layout.Layout, source string) {
	fmt.Fprintf(b, "## %s\n\n", l.Name)
	fmt.Fprintf(b, "%d-bit word (`%s`), default `%s`.", l.Width, l.Width.Tag(), hex(l.Default, l.Width))
	if !l.Span.IsZero() && source != "" {
		fmt.Fprintf(b, " Declared at `%s:%d`.", source, l.Span.Line)
	}
	b.WriteString("\n\n")

	b.WriteString("| Bits | Field | Kind | Type | Default | Accessors |\n")
	b.WriteString("|------|-------|------|------|---------|-----------|\n")
	for _, f := range l.Modifiers() {
		kind, typ := "range", f.Encoding.Tag()
		bits := fmt.Sprintf("%d..=%d", f.Bits.Bottom(), f.Bits.Top())
		if f.IsSingle() {
			kind, typ = "bit", "bool"
			bits = fmt.Sprintf("%d", f.Bits.Bottom())
		}
		def := "-"
		if f.HasDefault {
			def = fmt.Sprintf("`%#x`", f.Default.Big())
		}
		fmt.Fprintf(b, "| %s | `%s` | %s | %s | %s | `%s` / `%s` |\n", bits, f.Name, kind, typ, def, f.Reader, f.Writer)
	}

	free := l.Width.Ones().And(l.Used().Xor(uint128.Max))
	if free.IsZero() {
		b.WriteString("\nAll bits are assigned.\n")
	} else {
		fmt.Fprintf(b, "\nUnassigned bits: `%s`.\n", hex(free, l.Width))
	}
}

// hex formats v zero-padded to the word width.
func hex(v uint128.Uint128, w layout.Width) string {
	digits := int(w) / 4
	if w <= layout.W64 {
		return fmt.Sprintf("0x%0*x", digits, v.Lo)
	}
	return fmt.Sprintf("0x%016x%016x", v.Hi, v.Lo)
}
