package accessor

import (
	"fmt"
	"strings"

	"lukechampine.com/uint128"

	"github.com/wippyai/bitfield/errors"
	"github.com/wippyai/bitfield/layout"
)

// Type is the assembled named unit for one layout.
type Type struct {
	layout *layout.Layout
	mask   uint128.Uint128
}

// New assembles a type for a validated layout.
func New(l *layout.Layout) *Type {
	return &Type{layout: l, mask: l.Width.Ones()}
}

// Layout returns the layout the type was assembled from.
func (t *Type) Layout() *layout.Layout { return t.layout }

// Name returns the layout name.
func (t *Type) Name() string { return t.layout.Name }

// Default returns a word holding every field default.
func (t *Type) Default() Value {
	return Value{t: t, bits: t.layout.Default}
}

// From wraps a raw word without validation. Bits above the backing width
// are dropped.
func (t *Type) From(raw uint128.Uint128) Value {
	return Value{t: t, bits: raw.And(t.mask)}
}

// From64 is From for words that fit in 64 bits.
func (t *Type) From64(raw uint64) Value {
	return t.From(uint128.From64(raw))
}

// Range resolves a multi-bit field.
func (t *Type) Range(name string) (Range, error) {
	f, err := t.field(name)
	if err != nil {
		return Range{}, err
	}
	if f.IsSingle() {
		return Range{}, errors.TypeMismatch(errors.PhaseRuntime, name, "a bit range", "a single bit")
	}
	return Range{f: f, mask: layout.Mask(f.Bits)}, nil
}

// MustRange is like Range but panics if the field is missing or is a single bit.
func (t *Type) MustRange(name string) Range {
	r, err := t.Range(name)
	if err != nil {
		panic(err)
	}
	return r
}

// Bit resolves a single-bit field.
func (t *Type) Bit(name string) (Bit, error) {
	f, err := t.field(name)
	if err != nil {
		return Bit{}, err
	}
	if !f.IsSingle() {
		return Bit{}, errors.TypeMismatch(errors.PhaseRuntime, name, "a single bit", "a bit range")
	}
	return Bit{f: f, mask: layout.PlacedMask(f.Bits)}, nil
}

// MustBit is like Bit but panics if the field is missing or is a range.
func (t *Type) MustBit(name string) Bit {
	b, err := t.Bit(name)
	if err != nil {
		panic(err)
	}
	return b
}

func (t *Type) field(name string) (layout.Field, error) {
	f, ok := t.layout.Field(name)
	if !ok {
		e := errors.NotFound(errors.PhaseRuntime, "field", name)
		e.Layout = t.layout.Name
		return layout.Field{}, e
	}
	return f, nil
}

// Value is one packed word of a Type.
type Value struct {
	t    *Type
	bits uint128.Uint128
}

// Type returns the type the value belongs to.
func (v Value) Type() *Type { return v.t }

// Raw unwraps the backing word.
func (v Value) Raw() uint128.Uint128 { return v.bits }

// Raw64 unwraps the low 64 bits of the backing word.
func (v Value) Raw64() uint64 { return v.bits.Lo }

// Get reads a field by name, whatever its kind.
func (v Value) Get(name string) (uint128.Uint128, error) {
	f, err := v.t.field(name)
	if err != nil {
		return uint128.Zero, err
	}
	return extract(v.bits, f.Bits), nil
}

// Set writes a field by name. Unlike the typed writers, which mask silently,
// Set rejects a value that does not fit the field.
func (v *Value) Set(name string, x uint128.Uint128) error {
	f, err := v.t.field(name)
	if err != nil {
		return err
	}
	if n := layout.BitLen(x); n > f.Bits.Len() {
		return errors.New(errors.PhaseRuntime, errors.KindInvalidInput).
			Layout(v.t.layout.Name).
			Field(name).
			Value(x.String()).
			Detail("value needs %d bits, field holds %d", n, f.Bits.Len()).
			Build()
	}
	v.bits = insert(v.bits, f.Bits, x)
	return nil
}

// String renders the word and every field in declaration order.
func (v Value) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s(%#x)", v.t.layout.Name, v.bits.Big())
	b.WriteString(" {")
	for i, f := range v.t.layout.Fields {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, " %s: %s", f.Name, extract(v.bits, f.Bits))
	}
	b.WriteString(" }")
	return b.String()
}

func extract(word uint128.Uint128, bits layout.Bits) uint128.Uint128 {
	return word.Rsh(uint(bits.Bottom())).And(layout.Mask(bits))
}

func insert(word uint128.Uint128, bits layout.Bits, x uint128.Uint128) uint128.Uint128 {
	placed := layout.PlacedMask(bits)
	return word.And(placed.Xor(uint128.Max)).Or(x.And(layout.Mask(bits)).Lsh(uint(bits.Bottom())))
}
