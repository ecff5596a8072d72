// Package wit renders layouts as WIT records describing the unpacked view of
// each word: one record field per bit-field field, single bits as bool.
package wit

import (
	"fmt"
	"strings"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/bitfield/layout"
	"github.com/wippyai/bitfield/render"
)

const defaultNamespace = "local"

type Target struct{}

func (Target) Name() string { return "wit" }
func (Target) Ext() string  { return ".wit" }

func (Target) Render(layouts []*layout.Layout, opts render.Options) ([]byte, error) {
	var b strings.Builder
	b.WriteString("// Code generated by bitfieldc. DO NOT EDIT.\n")
	for _, line := range opts.Header {
		fmt.Fprintf(&b, "// %s\n", line)
	}
	pkg := opts.Package
	if pkg == "" {
		pkg = "bitfields"
	}
	fmt.Fprintf(&b, "package %s:%s;\n\n", defaultNamespace, Kebab(pkg))
	b.WriteString("interface bitfields {\n")
	for i, l := range layouts {
		if i > 0 {
			b.WriteByte('\n')
		}
		writeLayout(&b, l, TypeDef(l))
	}
	b.WriteString("}\n")
	return []byte(b.String()), nil
}

// TypeDef builds the record type for one layout.
func TypeDef(l *layout.Layout) *wit.TypeDef {
	fields := make([]wit.Field, 0, len(l.Fields))
	for _, f := range l.Fields {
		fields = append(fields, wit.Field{Name: Kebab(f.Name), Type: FieldType(f)})
	}
	name := Kebab(l.Name)
	return &wit.TypeDef{
		Name: &name,
		Kind: &wit.Record{Fields: fields},
	}
}

// FieldType maps a field to the WIT type of its unpacked value.
func FieldType(f layout.Field) wit.Type {
	if f.IsSingle() {
		return wit.Bool{}
	}
	return widthType(f.Encoding)
}

// WordType maps a backing width to the WIT type of the raw word.
func WordType(w layout.Width) wit.Type {
	return widthType(w)
}

func widthType(w layout.Width) wit.Type {
	switch w {
	case layout.W8:
		return wit.U8{}
	case layout.W16:
		return wit.U16{}
	case layout.W32:
		return wit.U32{}
	case layout.W64:
		return wit.U64{}
	}
	return &wit.TypeDef{Kind: &wit.Tuple{Types: []wit.Type{wit.U64{}, wit.U64{}}}}
}

func writeLayout(b *strings.Builder, l *layout.Layout, td *wit.TypeDef) {
	name := *td.Name
	fmt.Fprintf(b, "  /// %s: %d-bit word, default %#x.\n", l.Name, l.Width, l.Default.Big())
	fmt.Fprintf(b, "  record %s {\n", name)
	rec := td.Kind.(*wit.Record)
	for i, f := range rec.Fields {
		lf := l.Fields[i]
		if lf.IsSingle() {
			fmt.Fprintf(b, "    /// bit %d\n", lf.Bits.Bottom())
		} else {
			fmt.Fprintf(b, "    /// bits %d..=%d\n", lf.Bits.Bottom(), lf.Bits.Top())
		}
		fmt.Fprintf(b, "    %s: %s,\n", f.Name, TypeString(f.Type))
	}
	b.WriteString("  }\n")
	fmt.Fprintf(b, "  type %s-word = %s;\n", name, TypeString(WordType(l.Width)))
}

// TypeString renders the WIT spelling of the types this package produces.
func TypeString(t wit.Type) string {
	switch v := t.(type) {
	case wit.Bool:
		return "bool"
	case wit.U8:
		return "u8"
	case wit.U16:
		return "u16"
	case wit.U32:
		return "u32"
	case wit.U64:
		return "u64"
	case *wit.TypeDef:
		if v.Name != nil {
			return *v.Name
		}
		if tup, ok := v.Kind.(*wit.Tuple); ok {
			parts := make([]string, len(tup.Types))
			for i, e := range tup.Types {
				parts[i] = TypeString(e)
			}
			return "tuple<" + strings.Join(parts, ", ") + ">"
		}
	}
	return fmt.Sprintf("%T", t)
}

// Kebab converts snake_case and camelCase names to WIT kebab-case.
func Kebab(name string) string {
	return layout.Kebab(name)
}
