// Package bitfield compiles compact bit-field layout descriptions into typed
// accessors over fixed-width packed integers.
//
// A layout names a backing width and a set of non-overlapping fields:
//
//	Ctrl {
//	    _size: 8,
//	    enable: 0 = 1,      // single bit, default set
//	    mode: 1..=2,        // inclusive range
//	    reserved: 3..8,     // half-open range, same as 3..=7
//	}
//
// # Architecture Overview
//
//	bitfield/            Root package with the Compile facade and version
//	├── compiler/        DSL and YAML front ends, validation into layouts
//	├── layout/          Validated layout model, widths and encodings
//	├── accessor/        Runtime word types with scoped field accessors
//	├── render/          Output targets: Go source, WIT, wasm, Markdown, HTML
//	├── engine/          wazero host for generated wasm accessor modules
//	├── config/          bitfieldc.toml / bitfieldc.yaml loading
//	├── width/           Integer type name to bit width lookup
//	├── errors/          Structured diagnostics with source spans
//	└── cmd/bitfieldc/   Command-line compiler
//
// # Quick Start
//
//	ctrl, err := bitfield.Compile(src)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	mode := ctrl.MustRange("mode")
//
//	v := ctrl.Default()
//	mode.W(&v).Bits(2)
//	fmt.Println(v) // Ctrl(0x5) { enable: 1, mode: 2, reserved: 0 }
//
// # Generated Code
//
// The go target emits the same API as Go source, one named type per layout:
//
//	v := regs.NewCtrl()
//	v.WMode().Bits(2)
//	v.WEnable().ClearBit()
//	_ = v.RMode().GetBits() // 2
//
// Compilation either yields a complete layout or a structured error; there
// is no partial result.
package bitfield
