// Package wasm renders a layout as a core WebAssembly module.
//
// The module has no imports and no memory. Words travel as i64 and every
// accessor is a pure function of its arguments:
//
//	default            () -> i64
//	width              () -> i32
//	<field>.get        (word i64) -> i64
//	<field>.set        (word i64, value i64) -> i64
//	<bit>.set_bit      (word i64) -> i64
//	<bit>.clear_bit    (word i64) -> i64
//	<bit>.is_set       (word i64) -> i32
//
// Words wider than 64 bits do not fit an i64 and are rejected.
package wasm

import (
	"github.com/wippyai/bitfield/errors"
	"github.com/wippyai/bitfield/layout"
	"github.com/wippyai/bitfield/render"
)

// Export names.
const (
	ExportDefault = "default"
	ExportWidth   = "width"
	SuffixGet     = ".get"
	SuffixSet     = ".set"
	SuffixSetBit  = ".set_bit"
	SuffixClear   = ".clear_bit"
	SuffixIsSet   = ".is_set"
)

var header = []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}

const (
	sectionType   byte = 1
	sectionFunc   byte = 3
	sectionExport byte = 7
	sectionCode   byte = 10

	funcTypeMarker byte = 0x60
	valI32         byte = 0x7F
	valI64         byte = 0x7E
	exportFunc     byte = 0x00

	opEnd      byte = 0x0B
	opLocalGet byte = 0x20
	opI32Const byte = 0x41
	opI64Const byte = 0x42
	opI64Ne    byte = 0x52
	opI64And   byte = 0x83
	opI64Or    byte = 0x84
	opI64Shl   byte = 0x86
	opI64ShrU  byte = 0x88
)

// function type indices, in type section order
const (
	typeNullaryI64 uint32 = iota // () -> i64
	typeNullaryI32               // () -> i32
	typeUnary                    // (i64) -> i64
	typeBinary                   // (i64, i64) -> i64
	typePredicate                // (i64) -> i32
)

type Target struct{}

func (Target) Name() string { return "wasm" }
func (Target) Ext() string  { return ".wasm" }

// Render encodes exactly one layout.
func (Target) Render(layouts []*layout.Layout, _ render.Options) ([]byte, error) {
	if len(layouts) != 1 {
		return nil, errors.InvalidInput(errors.PhaseRender, "wasm target renders one layout at a time")
	}
	return Module(layouts[0])
}

type function struct {
	name string
	typ  uint32
	body buffer
}

// Module encodes the accessor module for l.
func Module(l *layout.Layout) ([]byte, error) {
	if l.Width > layout.W64 {
		e := errors.Unsupported(errors.PhaseRender, "wasm accessors for words wider than 64 bits")
		e.Layout = l.Name
		return nil, e
	}

	var funcs []*function
	add := func(name string, typ uint32) *buffer {
		f := &function{name: name, typ: typ}
		funcs = append(funcs, f)
		return &f.body
	}

	def := add(ExportDefault, typeNullaryI64)
	i64Const(def, l.Default.Lo)

	width := add(ExportWidth, typeNullaryI32)
	width.put(opI32Const)
	width.s64(int64(l.Width))

	for _, f := range l.Fields {
		shift := uint64(f.Bits.Bottom())
		mask := layout.Mask(f.Bits).Lo
		placed := layout.PlacedMask(f.Bits).Lo

		get := add(f.Name+SuffixGet, typeUnary)
		get.raw(opLocalGet, 0)
		i64Const(get, shift)
		get.put(opI64ShrU)
		i64Const(get, mask)
		get.put(opI64And)

		set := add(f.Name+SuffixSet, typeBinary)
		set.raw(opLocalGet, 0)
		i64Const(set, ^placed)
		set.put(opI64And)
		set.raw(opLocalGet, 1)
		i64Const(set, mask)
		set.put(opI64And)
		i64Const(set, shift)
		set.put(opI64Shl)
		set.put(opI64Or)

		if !f.IsSingle() {
			continue
		}

		on := add(f.Name+SuffixSetBit, typeUnary)
		on.raw(opLocalGet, 0)
		i64Const(on, placed)
		on.put(opI64Or)

		off := add(f.Name+SuffixClear, typeUnary)
		off.raw(opLocalGet, 0)
		i64Const(off, ^placed)
		off.put(opI64And)

		is := add(f.Name+SuffixIsSet, typePredicate)
		is.raw(opLocalGet, 0)
		i64Const(is, placed)
		is.put(opI64And)
		i64Const(is, 0)
		is.put(opI64Ne)
	}

	return encode(funcs), nil
}

func i64Const(b *buffer, v uint64) {
	b.put(opI64Const)
	b.s64(int64(v))
}

func encode(funcs []*function) []byte {
	out := &buffer{}
	out.raw(header...)

	types := &buffer{}
	sigs := []struct{ params, results []byte }{
		typeNullaryI64: {nil, []byte{valI64}},
		typeNullaryI32: {nil, []byte{valI32}},
		typeUnary:      {[]byte{valI64}, []byte{valI64}},
		typeBinary:     {[]byte{valI64, valI64}, []byte{valI64}},
		typePredicate:  {[]byte{valI64}, []byte{valI32}},
	}
	types.u32(uint32(len(sigs)))
	for _, s := range sigs {
		types.put(funcTypeMarker)
		types.u32(uint32(len(s.params)))
		types.raw(s.params...)
		types.u32(uint32(len(s.results)))
		types.raw(s.results...)
	}
	out.section(sectionType, types)

	decls := &buffer{}
	decls.u32(uint32(len(funcs)))
	for _, f := range funcs {
		decls.u32(f.typ)
	}
	out.section(sectionFunc, decls)

	exports := &buffer{}
	exports.u32(uint32(len(funcs)))
	for i, f := range funcs {
		exports.name(f.name)
		exports.put(exportFunc)
		exports.u32(uint32(i))
	}
	out.section(sectionExport, exports)

	code := &buffer{}
	code.u32(uint32(len(funcs)))
	for _, f := range funcs {
		body := &buffer{}
		body.u32(0) // no locals
		body.raw(f.body.bytes...)
		body.put(opEnd)
		code.u32(uint32(len(body.bytes)))
		code.raw(body.bytes...)
	}
	out.section(sectionCode, code)

	return out.bytes
}
