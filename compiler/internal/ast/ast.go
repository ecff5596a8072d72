package ast

import (
	"lukechampine.com/uint128"

	"github.com/wippyai/bitfield/errors"
)

// File is one parsed source: one or more bit-field declarations.
type File struct {
	Name  string
	Decls []*BitField
}

// BitField is a declaration before validation.
type BitField struct {
	Size   *IntLit
	Name   Ident
	Fields []*Field
}

type Ident struct {
	Name string
	Span errors.Span
}

type IntLit struct {
	Value uint128.Uint128
	Span  errors.Span
}

type Field struct {
	Bits    BitSpec
	Default *IntLit
	Name    Ident
}

// BitSpec is the grammar form of a field's bits: SingleSpec or RangeSpec.
type BitSpec interface{ isBitSpec() }

type SingleSpec struct {
	Pos IntLit
}

func (SingleSpec) isBitSpec() {}

// RangeSpec is start..end (half-open) or start..=end (Inclusive).
type RangeSpec struct {
	Start     IntLit
	End       IntLit
	Inclusive bool
}

func (RangeSpec) isBitSpec() {}
