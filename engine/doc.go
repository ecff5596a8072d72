// Package engine hosts generated wasm accessor modules on wazero.
//
// # Architecture
//
// The engine package provides three main types:
//
//	Engine    - Owns one wazero runtime
//	Module    - A compiled accessor module for one layout
//	Instance  - A running module with every accessor export resolved
//
// # Instantiation Flow
//
//  1. Engine.Load() renders the layout's module and compiles it
//  2. Module.Instantiate() creates an anonymous instance and resolves exports
//  3. Instance methods call the accessors, one word in and one word out
//
// # Calling Convention
//
// Words cross the boundary as i64; the module keeps no state between calls:
//
//	Export            Core Signature         Result
//	──────────────────────────────────────────────────────
//	default           () -> i64              default word
//	width             () -> i32              backing width
//	<f>.get           (i64) -> i64           field value
//	<f>.set           (i64, i64) -> i64      new word
//	<f>.set_bit       (i64) -> i64           new word
//	<f>.clear_bit     (i64) -> i64           new word
//	<f>.is_set        (i64) -> i32           0 or 1
//
// Only layouts up to 64 bits are hosted. Every blocking call takes a
// context.Context, which wazero uses for cancellation.
package engine
