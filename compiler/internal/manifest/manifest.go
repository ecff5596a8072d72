// Package manifest reads bit-field layouts written as YAML documents.
//
//	bitfields:
//	  - name: Ctrl
//	    size: 8
//	    fields:
//	      - {name: enable, bits: 0, default: 1}
//	      - {name: mode, bits: "1..=2"}
//
// A document may also hold a single layout at its root. The result is the
// same syntax tree the DSL parser produces, with spans pointing into the
// YAML source.
package manifest

import (
	"gopkg.in/yaml.v3"

	"github.com/wippyai/bitfield/compiler/internal/ast"
	"github.com/wippyai/bitfield/compiler/internal/parser"
	"github.com/wippyai/bitfield/errors"
)

func Parse(file string, data []byte) (*ast.File, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.New(errors.PhaseParse, errors.KindGrammar).
			At(errors.Span{File: file}).
			Detail("invalid YAML").
			Cause(err).
			Build()
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, errors.Grammar(errors.Span{File: file}, "expected a bit-field declaration")
	}

	m := &reader{file: file}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, m.errorf(root, "expected a mapping")
	}

	f := &ast.File{Name: file}
	if list := lookup(root, "bitfields"); list != nil {
		if list.Kind != yaml.SequenceNode {
			return nil, m.errorf(list, "bitfields must be a list")
		}
		for _, n := range list.Content {
			bf, err := m.bitField(n)
			if err != nil {
				return nil, err
			}
			f.Decls = append(f.Decls, bf)
		}
	} else {
		bf, err := m.bitField(root)
		if err != nil {
			return nil, err
		}
		f.Decls = append(f.Decls, bf)
	}
	if len(f.Decls) == 0 {
		return nil, m.errorf(root, "expected a bit-field declaration")
	}
	return f, nil
}

type reader struct {
	file string
}

func (m *reader) span(n *yaml.Node) errors.Span {
	return errors.Span{File: m.file, Line: n.Line, Col: n.Column, Text: n.Value}
}

func (m *reader) errorf(n *yaml.Node, format string, args ...any) error {
	return errors.Grammar(m.span(n), format, args...)
}

func (m *reader) bitField(n *yaml.Node) (*ast.BitField, error) {
	if n.Kind != yaml.MappingNode {
		return nil, m.errorf(n, "expected a bit-field mapping")
	}
	bf := &ast.BitField{}
	var fields *yaml.Node
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		switch key.Value {
		case "name":
			ident, err := m.ident(val)
			if err != nil {
				return nil, err
			}
			bf.Name = ident
		case "size":
			size, err := m.intLit(val)
			if err != nil {
				return nil, err
			}
			bf.Size = &size
		case "fields":
			fields = val
		default:
			return nil, m.errorf(key, "unknown key %q", key.Value)
		}
	}
	if bf.Name.Name == "" {
		return nil, m.errorf(n, "bit-field requires a name")
	}
	if fields == nil || fields.Kind != yaml.SequenceNode || len(fields.Content) == 0 {
		return nil, errors.Grammar(bf.Name.Span, "bit-field %s declares no fields", bf.Name.Name)
	}
	for _, fn := range fields.Content {
		field, err := m.field(fn)
		if err != nil {
			return nil, err
		}
		bf.Fields = append(bf.Fields, field)
	}
	return bf, nil
}

func (m *reader) field(n *yaml.Node) (*ast.Field, error) {
	if n.Kind != yaml.MappingNode {
		return nil, m.errorf(n, "expected a field mapping")
	}
	field := &ast.Field{}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		switch key.Value {
		case "name":
			ident, err := m.ident(val)
			if err != nil {
				return nil, err
			}
			field.Name = ident
		case "bits":
			if val.Kind != yaml.ScalarNode {
				return nil, m.errorf(val, "bits must be a position or range")
			}
			line, col := val.Line, val.Column
			if val.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle) != 0 {
				col++
			}
			spec, err := parser.ParseBitSpec(m.file, val.Value, line, col)
			if err != nil {
				return nil, err
			}
			field.Bits = spec
		case "default":
			def, err := m.intLit(val)
			if err != nil {
				return nil, err
			}
			field.Default = &def
		default:
			return nil, m.errorf(key, "unknown key %q", key.Value)
		}
	}
	if field.Name.Name == "" {
		return nil, m.errorf(n, "field requires a name")
	}
	if field.Bits == nil {
		return nil, errors.Grammar(field.Name.Span, "field %s requires bits", field.Name.Name)
	}
	return field, nil
}

func (m *reader) ident(n *yaml.Node) (ast.Ident, error) {
	if n.Kind != yaml.ScalarNode || !isIdent(n.Value) {
		return ast.Ident{}, m.errorf(n, "expected identifier, got %q", n.Value)
	}
	return ast.Ident{Name: n.Value, Span: m.span(n)}, nil
}

func (m *reader) intLit(n *yaml.Node) (ast.IntLit, error) {
	if n.Kind != yaml.ScalarNode {
		return ast.IntLit{}, m.errorf(n, "expected integer")
	}
	v, err := parser.ParseInt(n.Value)
	if err != nil {
		return ast.IntLit{}, errors.New(errors.PhaseParse, errors.KindGrammar).
			At(m.span(n)).
			Detail("invalid integer literal").
			Cause(err).
			Build()
	}
	return ast.IntLit{Value: v, Span: m.span(n)}, nil
}

func lookup(n *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
