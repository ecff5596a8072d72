package layout

import (
	"sort"

	"lukechampine.com/uint128"

	"github.com/wippyai/bitfield/errors"
)

// Bits is the normalized span of a field: either Single or Range.
type Bits interface {
	// Bottom is the lowest bit position owned by the field.
	Bottom() int
	// Top is the highest bit position owned by the field.
	Top() int
	// Len is the number of bits in the span.
	Len() int
	isBits()
}

// Single is a one-bit field at Pos.
type Single struct {
	Pos int
}

func (s Single) Bottom() int { return s.Pos }
func (s Single) Top() int    { return s.Pos }
func (s Single) Len() int    { return 1 }
func (Single) isBits()       {}

// Range is a multi-bit field covering Start..=End.
type Range struct {
	Start int
	End   int
}

func (r Range) Bottom() int { return r.Start }
func (r Range) Top() int    { return r.End }
func (r Range) Len() int    { return r.End - r.Start + 1 }
func (Range) isBits()       {}

// Mask returns the unshifted mask covering b's width.
func Mask(b Bits) uint128.Uint128 {
	return Ones(b.Len())
}

// PlacedMask returns the mask of b shifted to its bottom position.
func PlacedMask(b Bits) uint128.Uint128 {
	return Mask(b).Lsh(uint(b.Bottom()))
}

// Field is a validated field: its span, default and derived accessor names.
type Field struct {
	Default    uint128.Uint128
	Bits       Bits
	Name       string
	Reader     string
	Writer     string
	Span       errors.Span
	Encoding   Width
	HasDefault bool
}

// IsSingle reports whether the field is one bit wide. Validation folds
// one-bit ranges such as 7..=7 into Single, so every one-bit field is Single.
func (f Field) IsSingle() bool {
	_, ok := f.Bits.(Single)
	return ok
}

// Layout is a validated bit-field: a named backing width and its fields.
// A Layout is immutable once built.
type Layout struct {
	Default uint128.Uint128
	Name    string
	Fields  []Field
	Span    errors.Span
	Width   Width
}

// Field looks up a field by name.
func (l *Layout) Field(name string) (Field, bool) {
	for _, f := range l.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Modifiers returns the fields ordered by their bottom bit.
func (l *Layout) Modifiers() []Field {
	out := make([]Field, len(l.Fields))
	copy(out, l.Fields)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Bits.Bottom() < out[j].Bits.Bottom()
	})
	return out
}

// Used returns the union of every field's placed mask.
func (l *Layout) Used() uint128.Uint128 {
	var used uint128.Uint128
	for _, f := range l.Fields {
		used = used.Or(PlacedMask(f.Bits))
	}
	return used
}
