// Package errors provides structured error types for the bit-field compiler.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// Compiler diagnostics carry the Span of the responsible source literal; combined
// diagnostics such as duplicate names or overlapping ranges carry the second site
// as a Related note.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseValidate, errors.KindOverlap).
//		At(span).
//		Layout("Ctrl").
//		Field("mode").
//		Detail("overlapping bit ranges").
//		Note(other, "collision here").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.RangeOrder(span, "mode")
//	err := errors.DefaultOverflow(span, "x", 3, 1)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
