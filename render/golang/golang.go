// Package golang renders layouts as Go source.
//
// Each layout becomes a named struct over its backing integer, with a default
// constructor, wrap and unwrap functions and one reader/writer accessor pair
// per field. 128-bit words use lukechampine.com/uint128.
package golang

import (
	"fmt"
	"go/format"
	"strings"

	"github.com/wippyai/bitfield/errors"
	"github.com/wippyai/bitfield/layout"
	"github.com/wippyai/bitfield/render"
)

const (
	generatedMarker = "// Code generated by bitfieldc. DO NOT EDIT."
	defaultPackage  = "bitfields"
	uint128Import   = "lukechampine.com/uint128"
)

// Target renders Go source.
type Target struct{}

func (Target) Name() string { return "go" }
func (Target) Ext() string  { return ".go" }

func (Target) Render(layouts []*layout.Layout, opts render.Options) ([]byte, error) {
	src := Source(layouts, opts)
	out, err := format.Source(src)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseRender, errors.KindInvalidInput, err, "format generated go source")
	}
	return out, nil
}

// Source returns the unformatted generated source.
func Source(layouts []*layout.Layout, opts render.Options) []byte {
	g := &generator{}
	g.header(layouts, opts)
	for _, l := range layouts {
		g.layout(l)
	}
	return []byte(g.b.String())
}

type generator struct {
	b strings.Builder
}

func (g *generator) p(format string, args ...any) {
	fmt.Fprintf(&g.b, format, args...)
	g.b.WriteByte('\n')
}

func (g *generator) header(layouts []*layout.Layout, opts render.Options) {
	g.p("%s", generatedMarker)
	if opts.Source != "" {
		g.p("// Source: %s", opts.Source)
	}
	for _, line := range opts.Header {
		g.p("// %s", line)
	}
	g.p("")

	pkg := opts.Package
	if pkg == "" {
		pkg = defaultPackage
	}
	g.p("package %s", pkg)
	g.p("")

	for _, l := range layouts {
		if l.Width == layout.W128 {
			g.p("import %q", uint128Import)
			g.p("")
			break
		}
	}
}

func (g *generator) layout(l *layout.Layout) {
	name := layout.Ident(l.Name)
	word := l.Width.GoType()

	g.p("// %s is a packed %d-bit word.", name, l.Width)
	g.p("type %s struct {", name)
	g.p("bits %s", word)
	g.p("}")
	g.p("")
	g.p("// New%s returns a %s holding every field default.", name, name)
	g.p("func New%s() %s {", name, name)
	g.p("return %s{bits: %s}", name, literal(l.Width, l.Default.Lo, l.Default.Hi))
	g.p("}")
	g.p("")
	g.p("// %sFrom wraps a raw word without validation.", name)
	g.p("func %sFrom(raw %s) %s {", name, word, name)
	g.p("return %s{bits: raw}", name)
	g.p("}")
	g.p("")
	g.p("// IntoInner returns the raw word.")
	g.p("func (v %s) IntoInner() %s {", name, word)
	g.p("return v.bits")
	g.p("}")
	g.p("")

	for _, f := range l.Fields {
		if f.IsSingle() {
			g.bit(l, name, f)
		} else {
			g.rng(l, name, f)
		}
	}
}

func (g *generator) bit(l *layout.Layout, name string, f layout.Field) {
	w := name + layout.Ident(f.Name) + "W"
	r := name + layout.Ident(f.Name) + "R"
	word := l.Width.GoType()
	placed := layout.PlacedMask(f.Bits)
	mask := literal(l.Width, placed.Lo, placed.Hi)

	g.p("// %s writes %s (bit %d). Discard after use.", w, f.Name, f.Bits.Bottom())
	g.p("type %s struct {", w)
	g.p("w *%s", name)
	g.p("}")
	g.p("")
	g.p("func (v *%s) %s() %s {", name, f.Writer, w)
	g.p("return %s{w: v}", w)
	g.p("}")
	g.p("")
	g.p("func (a %s) Bit(on bool) *%s {", w, name)
	g.p("if on {")
	g.p("return a.SetBit()")
	g.p("}")
	g.p("return a.ClearBit()")
	g.p("}")
	g.p("")
	g.p("func (a %s) SetBit() *%s {", w, name)
	if l.Width == layout.W128 {
		g.p("a.w.bits = a.w.bits.Or(%s)", mask)
	} else {
		g.p("a.w.bits |= %s", mask)
	}
	g.p("return a.w")
	g.p("}")
	g.p("")
	g.p("func (a %s) ClearBit() *%s {", w, name)
	if l.Width == layout.W128 {
		g.p("a.w.bits = a.w.bits.And(%s.Xor(uint128.Max))", mask)
	} else {
		g.p("a.w.bits &^= %s", mask)
	}
	g.p("return a.w")
	g.p("}")
	g.p("")
	g.p("// %s reads %s (bit %d). Discard after use.", r, f.Name, f.Bits.Bottom())
	g.p("type %s struct {", r)
	g.p("bits %s", word)
	g.p("}")
	g.p("")
	g.p("func (v %s) %s() %s {", name, f.Reader, r)
	g.p("return %s{bits: v.bits}", r)
	g.p("}")
	g.p("")
	g.p("func (a %s) IsBitSet() bool {", r)
	if l.Width == layout.W128 {
		g.p("return !a.bits.And(%s).IsZero()", mask)
	} else {
		g.p("return a.bits&%s != 0", mask)
	}
	g.p("}")
	g.p("")
	g.p("func (a %s) IsBitClear() bool {", r)
	g.p("return !a.IsBitSet()")
	g.p("}")
	g.p("")
	g.p("func (a %s) GetBit() uint8 {", r)
	g.p("if a.IsBitSet() {")
	g.p("return 1")
	g.p("}")
	g.p("return 0")
	g.p("}")
	g.p("")
}

func (g *generator) rng(l *layout.Layout, name string, f layout.Field) {
	w := name + layout.Ident(f.Name) + "W"
	r := name + layout.Ident(f.Name) + "R"
	word := l.Width.GoType()
	enc := f.Encoding.GoType()
	shift := f.Bits.Bottom()
	m := layout.Mask(f.Bits)
	pm := layout.PlacedMask(f.Bits)
	mask := literal(l.Width, m.Lo, m.Hi)
	placed := literal(l.Width, pm.Lo, pm.Hi)

	g.p("// %s writes %s (bits %d..=%d). Discard after use.", w, f.Name, f.Bits.Bottom(), f.Bits.Top())
	g.p("type %s struct {", w)
	g.p("w *%s", name)
	g.p("}")
	g.p("")
	g.p("func (v *%s) %s() %s {", name, f.Writer, w)
	g.p("return %s{w: v}", w)
	g.p("}")
	g.p("")
	g.p("// Bits stores x masked to the field width.")
	g.p("func (a %s) Bits(x %s) *%s {", w, enc, name)
	switch {
	case l.Width != layout.W128:
		g.p("a.w.bits = a.w.bits&^%s | (%s(x)&%s)<<%d", placed, word, mask, shift)
	case f.Encoding == layout.W128:
		g.p("a.w.bits = a.w.bits.And(%s.Xor(uint128.Max)).Or(x.And(%s).Lsh(%d))", placed, mask, shift)
	default:
		g.p("a.w.bits = a.w.bits.And(%s.Xor(uint128.Max)).Or(uint128.From64(uint64(x)).And(%s).Lsh(%d))", placed, mask, shift)
	}
	g.p("return a.w")
	g.p("}")
	g.p("")
	g.p("// %s reads %s (bits %d..=%d). Discard after use.", r, f.Name, f.Bits.Bottom(), f.Bits.Top())
	g.p("type %s struct {", r)
	g.p("bits %s", word)
	g.p("}")
	g.p("")
	g.p("func (v %s) %s() %s {", name, f.Reader, r)
	g.p("return %s{bits: v.bits}", r)
	g.p("}")
	g.p("")
	g.p("func (a %s) GetBits() %s {", r, enc)
	switch {
	case l.Width != layout.W128:
		g.p("return %s(a.bits >> %d & %s)", enc, shift, mask)
	case f.Encoding == layout.W128:
		g.p("return a.bits.Rsh(%d).And(%s)", shift, mask)
	default:
		g.p("return %s(a.bits.Rsh(%d).And(%s).Lo)", enc, shift, mask)
	}
	g.p("}")
	g.p("")
}

// literal formats a constant of the word type. 128-bit constants become
// uint128.New calls.
func literal(w layout.Width, lo, hi uint64) string {
	if w == layout.W128 {
		return fmt.Sprintf("uint128.New(%#x, %#x)", lo, hi)
	}
	return fmt.Sprintf("%#x", lo)
}
