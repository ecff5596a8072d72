package parser

import (
	"github.com/wippyai/bitfield/compiler/internal/ast"
	"github.com/wippyai/bitfield/compiler/internal/token"
	"github.com/wippyai/bitfield/errors"
)

// SizeKey is the reserved entry naming the backing width.
const SizeKey = "_size"

type Parser struct {
	file   string
	tokens []token.Token
	pos    int
}

func New(file string, tokens []token.Token) *Parser {
	return &Parser{file: file, tokens: tokens}
}

// Parse reads one or more bit-field declarations. Only grammar shape is
// checked; ranges, sizes and defaults are left to validation.
func (p *Parser) Parse() (*ast.File, error) {
	f := &ast.File{Name: p.file}
	for p.peek() != nil {
		bf, err := p.parseBitField()
		if err != nil {
			return nil, err
		}
		f.Decls = append(f.Decls, bf)
	}
	if len(f.Decls) == 0 {
		return nil, errors.Grammar(errors.Span{File: p.file}, "expected a bit-field declaration")
	}
	return f, nil
}

// ParseBitSpec parses a standalone bitspec whose text starts at line:col.
func ParseBitSpec(file, text string, line, col int) (ast.BitSpec, error) {
	p := New(file, token.TokenizeAt(text, line, col))
	spec, err := p.parseBitSpec()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t != nil {
		return nil, errors.Grammar(p.span(t), "unexpected %v after bit specification", t.Type)
	}
	return spec, nil
}

func (p *Parser) peek() *token.Token {
	if p.pos >= len(p.tokens) {
		return nil
	}
	return &p.tokens[p.pos]
}

func (p *Parser) next() *token.Token {
	if p.pos >= len(p.tokens) {
		return nil
	}
	t := &p.tokens[p.pos]
	p.pos++
	return t
}

func (p *Parser) accept(typ token.Type) bool {
	if t := p.peek(); t != nil && t.Type == typ {
		p.pos++
		return true
	}
	return false
}

func (p *Parser) expect(typ token.Type) (*token.Token, error) {
	t := p.next()
	if t == nil {
		return nil, p.eof(typ.String())
	}
	if t.Type != typ {
		return nil, errors.Grammar(p.span(t), "expected %v, got %q", typ, t.Value)
	}
	return t, nil
}

func (p *Parser) span(t *token.Token) errors.Span {
	return errors.Span{File: p.file, Line: t.Line, Col: t.Col, Text: t.Value}
}

func (p *Parser) eof(want string) error {
	span := errors.Span{File: p.file}
	if n := len(p.tokens); n > 0 {
		last := p.tokens[n-1]
		span.Line = last.Line
		span.Col = last.Col + len([]rune(last.Value))
	}
	return errors.Grammar(span, "unexpected end of input, expected %s", want)
}

func (p *Parser) parseBitField() (*ast.BitField, error) {
	name, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBrace); err != nil {
		return nil, err
	}

	bf := &ast.BitField{Name: name}

	if t := p.peek(); t != nil && t.Type == token.Ident && t.Value == SizeKey {
		p.next()
		if _, err := p.expect(token.Colon); err != nil {
			return nil, err
		}
		size, err := p.parseInt()
		if err != nil {
			return nil, err
		}
		bf.Size = &size
		if t := p.peek(); t == nil || t.Type != token.RBrace {
			if _, err := p.expect(token.Comma); err != nil {
				return nil, err
			}
		}
	}

	for {
		t := p.peek()
		if t == nil {
			return nil, p.eof("field or '}'")
		}
		if t.Type == token.RBrace {
			p.next()
			break
		}
		if t.Type == token.Ident && t.Value == SizeKey {
			return nil, errors.Grammar(p.span(t), "%s must be the first entry", SizeKey)
		}
		field, err := p.parseField()
		if err != nil {
			return nil, err
		}
		bf.Fields = append(bf.Fields, field)
		if p.accept(token.Comma) {
			continue
		}
		if _, err := p.expect(token.RBrace); err != nil {
			return nil, err
		}
		break
	}

	if len(bf.Fields) == 0 {
		return nil, errors.Grammar(name.Span, "bit-field %s declares no fields", name.Name)
	}
	return bf, nil
}

func (p *Parser) parseField() (*ast.Field, error) {
	name, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Colon); err != nil {
		return nil, err
	}
	bits, err := p.parseBitSpec()
	if err != nil {
		return nil, err
	}
	field := &ast.Field{Name: name, Bits: bits}
	if p.accept(token.Eq) {
		def, err := p.parseInt()
		if err != nil {
			return nil, err
		}
		field.Default = &def
	}
	return field, nil
}

func (p *Parser) parseBitSpec() (ast.BitSpec, error) {
	start, err := p.parseInt()
	if err != nil {
		return nil, err
	}
	switch {
	case p.accept(token.DotDotEq):
		end, err := p.parseInt()
		if err != nil {
			return nil, err
		}
		return ast.RangeSpec{Start: start, End: end, Inclusive: true}, nil
	case p.accept(token.DotDot):
		end, err := p.parseInt()
		if err != nil {
			return nil, err
		}
		return ast.RangeSpec{Start: start, End: end}, nil
	}
	return ast.SingleSpec{Pos: start}, nil
}

func (p *Parser) parseIdent() (ast.Ident, error) {
	t, err := p.expect(token.Ident)
	if err != nil {
		return ast.Ident{}, err
	}
	return ast.Ident{Name: t.Value, Span: p.span(t)}, nil
}

func (p *Parser) parseInt() (ast.IntLit, error) {
	t, err := p.expect(token.Number)
	if err != nil {
		return ast.IntLit{}, err
	}
	v, err := ParseInt(t.Value)
	if err != nil {
		return ast.IntLit{}, errors.New(errors.PhaseParse, errors.KindGrammar).
			At(p.span(t)).
			Detail("invalid integer literal").
			Cause(err).
			Build()
	}
	return ast.IntLit{Value: v, Span: p.span(t)}, nil
}
