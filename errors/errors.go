package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseParse    Phase = "parse"    // DSL or manifest grammar
	PhaseValidate Phase = "validate" // layout semantics
	PhaseRender   Phase = "render"   // code/binary generation
	PhaseRuntime  Phase = "runtime"  // accessor resolution and wasm hosting
	PhaseConfig   Phase = "config"   // configuration loading
)

// Kind categorizes the error
type Kind string

const (
	KindGrammar         Kind = "grammar"
	KindSize            Kind = "size"
	KindRangeOrder      Kind = "range_order"
	KindRangeBounds     Kind = "range_bounds"
	KindDuplicateField  Kind = "duplicate_field"
	KindOverlap         Kind = "overlap"
	KindDefaultOverflow Kind = "default_overflow"
	KindUnsupported     Kind = "unsupported"
	KindNotFound        Kind = "not_found"
	KindTypeMismatch    Kind = "type_mismatch"
	KindInvalidInput    Kind = "invalid_input"
)

// Span locates the source text responsible for an error.
// Line and Col are 1-based; a zero Line means no position is known.
type Span struct {
	File string
	Text string
	Line int
	Col  int
}

// IsZero reports whether the span carries no position
func (s Span) IsZero() bool {
	return s.Line == 0
}

func (s Span) String() string {
	if s.IsZero() {
		return s.File
	}
	if s.File != "" {
		return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Col)
	}
	return fmt.Sprintf("%d:%d", s.Line, s.Col)
}

// Note is a secondary site attached to a combined diagnostic
type Note struct {
	Message string
	Span    Span
}

// Error is the structured error type used throughout the compiler
type Error struct {
	Value   any
	Cause   error
	Phase   Phase
	Kind    Kind
	Layout  string
	Field   string
	Detail  string
	Span    Span
	Related []Note
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if !e.Span.IsZero() || e.Span.File != "" {
		b.WriteString(" at ")
		b.WriteString(e.Span.String())
	}

	if e.Layout != "" || e.Field != "" {
		b.WriteString(" in ")
		switch {
		case e.Layout != "" && e.Field != "":
			b.WriteString(e.Layout)
			b.WriteByte('.')
			b.WriteString(e.Field)
		case e.Layout != "":
			b.WriteString(e.Layout)
		default:
			b.WriteString(e.Field)
		}
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Span.Text != "" {
		fmt.Fprintf(&b, " (%q)", e.Span.Text)
	}

	for _, n := range e.Related {
		b.WriteString("; ")
		if !n.Span.IsZero() {
			b.WriteString(n.Span.String())
			b.WriteString(": ")
		}
		b.WriteString(n.Message)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Spans returns the primary span followed by every related span
func (e *Error) Spans() []Span {
	spans := make([]Span, 0, 1+len(e.Related))
	spans = append(spans, e.Span)
	for _, n := range e.Related {
		spans = append(spans, n.Span)
	}
	return spans
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// At sets the primary span
func (b *Builder) At(span Span) *Builder {
	b.err.Span = span
	return b
}

// Layout sets the bit-field name
func (b *Builder) Layout(name string) *Builder {
	b.err.Layout = name
	return b
}

// Field sets the field name
func (b *Builder) Field(name string) *Builder {
	b.err.Field = name
	return b
}

// Note attaches a secondary site
func (b *Builder) Note(span Span, msg string) *Builder {
	b.err.Related = append(b.err.Related, Note{Span: span, Message: msg})
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for the compiler's diagnostics

// Grammar creates a parse error for malformed input
func Grammar(span Span, detail string, args ...any) *Error {
	return New(PhaseParse, KindGrammar).At(span).Detail(detail, args...).Build()
}

// Size creates an error for an unsupported backing width
func Size(span Span, size any) *Error {
	return &Error{
		Phase:  PhaseValidate,
		Kind:   KindSize,
		Span:   span,
		Value:  size,
		Detail: "must be 8, 16, 32, 64 or 128",
	}
}

// RangeOrder creates an error for an inverted or empty range
func RangeOrder(span Span, field string) *Error {
	return &Error{
		Phase:  PhaseValidate,
		Kind:   KindRangeOrder,
		Span:   span,
		Field:  field,
		Detail: "start must be strictly less than end",
	}
}

// RangeBounds creates an error for a bit position outside the word
func RangeBounds(span Span, field, detail string) *Error {
	return &Error{
		Phase:  PhaseValidate,
		Kind:   KindRangeBounds,
		Span:   span,
		Field:  field,
		Detail: detail,
	}
}

// DuplicateField creates a combined diagnostic citing both declarations
func DuplicateField(field string, span, first Span) *Error {
	return New(PhaseValidate, KindDuplicateField).
		At(span).
		Field(field).
		Detail("duplicate field name").
		Note(first, "first declared here").
		Build()
}

// Overlap creates a combined diagnostic citing both colliding fields
func Overlap(field string, span Span, other string, otherSpan Span) *Error {
	return New(PhaseValidate, KindOverlap).
		At(span).
		Field(field).
		Detail("overlapping bit ranges").
		Note(otherSpan, fmt.Sprintf("collision with %s here", other)).
		Build()
}

// DefaultOverflow creates an error for a default wider than its field
func DefaultOverflow(span Span, field string, need, have int) *Error {
	return &Error{
		Phase:  PhaseValidate,
		Kind:   KindDefaultOverflow,
		Span:   span,
		Field:  field,
		Value:  need,
		Detail: fmt.Sprintf("default too large to fit in field (needs %d bits, field holds %d)", need, have),
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// TypeMismatch creates an error for an accessor of the wrong kind
func TypeMismatch(phase Phase, field, want, got string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Field:  field,
		Detail: fmt.Sprintf("field is %s, not %s", got, want),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// KindOf returns the Kind of the first *Error in err's chain
func KindOf(err error) (Kind, bool) {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return "", false
		}
		err = u.Unwrap()
	}
	return "", false
}
