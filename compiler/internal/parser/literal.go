package parser

import (
	"fmt"
	"math/big"
	"strings"

	"lukechampine.com/uint128"
)

// ParseInt parses an unsigned integer literal of at most 128 bits.
// Decimal, 0x, 0o and 0b forms are accepted, with '_' separators.
func ParseInt(text string) (uint128.Uint128, error) {
	s := strings.ReplaceAll(text, "_", "")
	base := 10
	if len(s) > 2 && s[0] == '0' {
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 10 {
			s = s[2:]
		}
	}
	if s == "" {
		return uint128.Zero, fmt.Errorf("no digits in %q", text)
	}
	n, ok := new(big.Int).SetString(s, base)
	if !ok || n.Sign() < 0 {
		return uint128.Zero, fmt.Errorf("malformed base-%d literal %q", base, text)
	}
	if n.BitLen() > 128 {
		return uint128.Zero, fmt.Errorf("literal %q overflows 128 bits", text)
	}
	lo := new(big.Int).And(n, new(big.Int).SetUint64(^uint64(0))).Uint64()
	hi := new(big.Int).Rsh(n, 64).Uint64()
	return uint128.New(lo, hi), nil
}
