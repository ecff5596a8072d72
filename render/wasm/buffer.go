package wasm

// buffer accumulates the binary encoding of a module.
type buffer struct {
	bytes []byte
}

func (b *buffer) put(v byte) {
	b.bytes = append(b.bytes, v)
}

func (b *buffer) raw(v ...byte) {
	b.bytes = append(b.bytes, v...)
}

// u32 writes unsigned LEB128.
func (b *buffer) u32(v uint32) {
	for ; v >= 0x80; v >>= 7 {
		b.put(byte(v) | 0x80)
	}
	b.put(byte(v))
}

// s64 writes signed LEB128. Encoding stops once the remaining value is pure
// sign extension of the last group's bit 6: 0 with bit 6 clear, or -1 with
// it set.
func (b *buffer) s64(v int64) {
	for more := true; more; {
		c := byte(v) & 0x7F
		v >>= 7
		signBit := c&0x40 != 0
		more = !(v == 0 && !signBit) && !(v == -1 && signBit)
		if more {
			c |= 0x80
		}
		b.put(c)
	}
}

func (b *buffer) name(s string) {
	b.u32(uint32(len(s)))
	b.raw([]byte(s)...)
}

// section writes id, the content length and the content.
func (b *buffer) section(id byte, content *buffer) {
	b.put(id)
	b.u32(uint32(len(content.bytes)))
	b.raw(content.bytes...)
}
