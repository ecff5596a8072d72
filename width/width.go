// Package width maps integer type names to their bit widths.
//
// Both the short names used in layout sources (u8..u128, i8..i128) and Go's
// names (uint8..uint64, int8..int64) are known. There is no native 128-bit Go
// integer; "uint128" names lukechampine.com/uint128.Uint128.
package width

var sizes = map[string]int{
	"u8":      8,
	"u16":     16,
	"u32":     32,
	"u64":     64,
	"u128":    128,
	"i8":      8,
	"i16":     16,
	"i32":     32,
	"i64":     64,
	"i128":    128,
	"uint8":   8,
	"uint16":  16,
	"uint32":  32,
	"uint64":  64,
	"uint128": 128,
	"int8":    8,
	"int16":   16,
	"int32":   32,
	"int64":   64,
	"int128":  128,
	"byte":    8,
}

// Size returns the bit width of the named integer type.
func Size(name string) (int, bool) {
	n, ok := sizes[name]
	return n, ok
}

// CanFit reports whether a value of bits significant bits fits in the named
// type. Unknown types fit nothing.
func CanFit(name string, bits int) bool {
	n, ok := sizes[name]
	return ok && bits >= 0 && bits <= n
}
