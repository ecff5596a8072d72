package accessor

import (
	"lukechampine.com/uint128"

	"github.com/wippyai/bitfield/layout"
)

// Range is a resolved multi-bit field.
type Range struct {
	f    layout.Field
	mask uint128.Uint128
}

// Field returns the layout field behind the handle.
func (r Range) Field() layout.Field { return r.f }

// W returns a writer over v. The writer is consumed by one call.
func (r Range) W(v *Value) RangeW { return RangeW{r: r, v: v} }

// R returns a reader over v.
func (r Range) R(v Value) RangeR { return RangeR{r: r, v: v} }

// RangeW writes one multi-bit field.
type RangeW struct {
	v *Value
	r Range
}

// Bits masks x to the field width and stores it, leaving other fields alone.
func (w RangeW) Bits(x uint64) *Value {
	return w.Bits128(uint128.From64(x))
}

// Bits128 is Bits for fields wider than 64 bits.
func (w RangeW) Bits128(x uint128.Uint128) *Value {
	w.v.bits = insert(w.v.bits, w.r.f.Bits, x.And(w.r.mask))
	return w.v
}

// RangeR reads one multi-bit field.
type RangeR struct {
	v Value
	r Range
}

// GetBits returns the field value. Fields wider than 64 bits are truncated;
// use GetBits128 for those.
func (r RangeR) GetBits() uint64 {
	return r.GetBits128().Lo
}

// GetBits128 returns the full field value.
func (r RangeR) GetBits128() uint128.Uint128 {
	return extract(r.v.bits, r.r.f.Bits)
}

// Bit is a resolved single-bit field.
type Bit struct {
	f    layout.Field
	mask uint128.Uint128
}

// Field returns the layout field behind the handle.
func (b Bit) Field() layout.Field { return b.f }

// W returns a writer over v. The writer is consumed by one call.
func (b Bit) W(v *Value) BitW { return BitW{b: b, v: v} }

// R returns a reader over v.
func (b Bit) R(v Value) BitR { return BitR{b: b, v: v} }

// BitW writes one single-bit field.
type BitW struct {
	v *Value
	b Bit
}

// Bit sets the bit when on is true and clears it otherwise.
func (w BitW) Bit(on bool) *Value {
	if on {
		return w.SetBit()
	}
	return w.ClearBit()
}

func (w BitW) SetBit() *Value {
	w.v.bits = w.v.bits.Or(w.b.mask)
	return w.v
}

func (w BitW) ClearBit() *Value {
	w.v.bits = w.v.bits.And(w.b.mask.Xor(uint128.Max))
	return w.v
}

// BitR reads one single-bit field.
type BitR struct {
	v Value
	b Bit
}

func (r BitR) IsBitSet() bool {
	return !r.v.bits.And(r.b.mask).IsZero()
}

func (r BitR) IsBitClear() bool {
	return !r.IsBitSet()
}

// GetBit returns the bit as 0 or 1.
func (r BitR) GetBit() uint8 {
	if r.IsBitSet() {
		return 1
	}
	return 0
}
