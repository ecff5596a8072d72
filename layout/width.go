package layout

import (
	"fmt"
	"math/bits"

	"lukechampine.com/uint128"

	"github.com/wippyai/bitfield/width"
)

// Width is an integer width in bits. Backing words and field encodings both
// use one of W8, W16, W32, W64 or W128.
type Width int

const (
	W8   Width = 8
	W16  Width = 16
	W32  Width = 32
	W64  Width = 64
	W128 Width = 128
)

// DefaultWidth is the backing width used when a layout declares no _size.
const DefaultWidth = W32

// Widths lists the supported widths in ascending order.
var Widths = []Width{W8, W16, W32, W64, W128}

// ResolveWidth maps a declared size to a supported width.
func ResolveWidth(n int) (Width, bool) {
	for _, w := range Widths {
		if int(w) == n {
			_, ok := width.Size(w.Tag())
			return w, ok
		}
	}
	return 0, false
}

// EncodingFor returns the smallest width able to hold a span of n bits.
func EncodingFor(n int) (Width, bool) {
	var w Width
	switch {
	case n >= 1 && n <= 8:
		w = W8
	case n >= 9 && n <= 16:
		w = W16
	case n >= 17 && n <= 32:
		w = W32
	case n >= 33 && n <= 64:
		w = W64
	case n >= 65 && n <= 128:
		w = W128
	default:
		return 0, false
	}
	return w, width.CanFit(w.Tag(), n)
}

// Tag returns the short type tag, e.g. "u8".
func (w Width) Tag() string {
	return fmt.Sprintf("u%d", int(w))
}

// GoType returns the Go type holding a value of this width.
func (w Width) GoType() string {
	if w == W128 {
		return "uint128.Uint128"
	}
	return fmt.Sprintf("uint%d", int(w))
}

// Ones returns a value with the low w bits set.
func (w Width) Ones() uint128.Uint128 {
	return Ones(int(w))
}

// Ones returns a value with the low n bits set, 0 <= n <= 128.
func Ones(n int) uint128.Uint128 {
	if n <= 0 {
		return uint128.Zero
	}
	if n >= 128 {
		return uint128.Max
	}
	return uint128.Max.Rsh(uint(128 - n))
}

// BitLen returns the number of bits needed to represent v; zero needs none.
func BitLen(v uint128.Uint128) int {
	if v.Hi != 0 {
		return 64 + bits.Len64(v.Hi)
	}
	return bits.Len64(v.Lo)
}

