// Package accessor assembles validated layouts into runtime word types.
//
// A Type wraps one layout. Field handles are resolved once, when the program
// sets up, so a misspelt field name or a bit accessed as a range fails there
// rather than on every access:
//
//	ctrl := accessor.New(compiler.MustCompile(src))
//	mode := ctrl.MustRange("mode")
//	enable := ctrl.MustBit("enable")
//
//	v := ctrl.Default()
//	mode.W(&v).Bits(2)
//	enable.W(&v).ClearBit()
//	fmt.Println(mode.R(v).GetBits(), v.Raw())
//
// Readers and writers are small values consumed by a single call. Values carry
// no synchronization; a Value has one owner.
package accessor
