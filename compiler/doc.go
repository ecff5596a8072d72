// Package compiler turns bit-field layout descriptions into validated layouts.
//
// A layout names a backing word and the bits each field owns:
//
//	Ctrl {
//		_size: 8,          // 8, 16, 32, 64 or 128; 32 when omitted
//		enable: 0 = 1,     // single bit with a default
//		mode: 1..=2,       // inclusive range
//		reserved: 3..8,    // half-open range, same as 3..=7
//	}
//
// Compilation runs in two passes. Each field is range-checked against the
// width, its name checked for uniqueness and its default checked against
// the field width, in declaration order. Then all fields are sorted by
// their lowest bit and adjacent pairs are checked for overlap. Every failure
// is an *errors.Error carrying the span of the offending literal, and no
// layout is returned.
//
// The same checks apply to YAML manifests (CompileYAML, or CompileFile on a
// .yaml path).
package compiler
