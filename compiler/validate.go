package compiler

import (
	"sort"

	"lukechampine.com/uint128"

	"github.com/wippyai/bitfield/compiler/internal/ast"
	"github.com/wippyai/bitfield/errors"
	"github.com/wippyai/bitfield/layout"
)

// maxPosition bounds literal bit positions before they are narrowed to int;
// anything larger is out of bounds for every width.
const maxPosition = 1 << 16

// validate checks one declaration and builds its layout. Fields are checked
// in declaration order, then overlap is checked in a single sorted sweep.
func validate(bf *ast.BitField) (*layout.Layout, error) {
	w := layout.DefaultWidth
	if bf.Size != nil {
		n, ok := position(bf.Size)
		if !ok {
			return nil, inLayout(errors.Size(bf.Size.Span, bf.Size.Span.Text), bf)
		}
		if w, ok = layout.ResolveWidth(n); !ok {
			return nil, inLayout(errors.Size(bf.Size.Span, n), bf)
		}
	}

	l := &layout.Layout{
		Name:  bf.Name.Name,
		Span:  bf.Name.Span,
		Width: w,
	}

	names := make(map[string]errors.Span, len(bf.Fields))
	idents := make(map[string]string, len(bf.Fields))
	kebabs := make(map[string]string, len(bf.Fields))
	for _, fd := range bf.Fields {
		bits, err := normalize(fd, w)
		if err != nil {
			return nil, inLayout(err, bf)
		}

		if first, dup := names[fd.Name.Name]; dup {
			return nil, inLayout(errors.DuplicateField(fd.Name.Name, fd.Name.Span, first), bf)
		}
		names[fd.Name.Name] = fd.Name.Span

		ident := layout.Ident(fd.Name.Name)
		if other, dup := idents[ident]; dup {
			return nil, inLayout(errors.New(errors.PhaseValidate, errors.KindDuplicateField).
				At(fd.Name.Span).
				Field(fd.Name.Name).
				Detail("accessor name %s collides with field %s", ident, other).
				Note(names[other], "first declared here").
				Build(), bf)
		}
		idents[ident] = fd.Name.Name

		kebab := layout.Kebab(fd.Name.Name)
		if other, dup := kebabs[kebab]; dup {
			return nil, inLayout(errors.New(errors.PhaseValidate, errors.KindDuplicateField).
				At(fd.Name.Span).
				Field(fd.Name.Name).
				Detail("WIT name %s collides with field %s", kebab, other).
				Note(names[other], "first declared here").
				Build(), bf)
		}
		kebabs[kebab] = fd.Name.Name

		f := layout.Field{
			Name:   fd.Name.Name,
			Bits:   bits,
			Span:   fd.Name.Span,
			Reader: layout.ReaderName(fd.Name.Name),
			Writer: layout.WriterName(fd.Name.Name),
		}
		if fd.Default != nil {
			if need := layout.BitLen(fd.Default.Value); need > bits.Len() {
				return nil, inLayout(errors.DefaultOverflow(fd.Default.Span, fd.Name.Name, need, bits.Len()), bf)
			}
			f.Default = fd.Default.Value
			f.HasDefault = true
		}
		enc, ok := layout.EncodingFor(bits.Len())
		if !ok {
			return nil, inLayout(errors.RangeBounds(fd.Name.Span, fd.Name.Name, "field wider than any encoding"), bf)
		}
		f.Encoding = enc

		l.Fields = append(l.Fields, f)
	}

	if err := checkOverlap(l.Fields); err != nil {
		return nil, inLayout(err, bf)
	}

	l.Default = aggregateDefault(l.Fields)
	return l, nil
}

// normalize turns a bitspec into inclusive bounds and checks them against
// the width. A one-bit range folds into Single.
func normalize(fd *ast.Field, w layout.Width) (layout.Bits, *errors.Error) {
	name := fd.Name.Name
	switch spec := fd.Bits.(type) {
	case ast.SingleSpec:
		pos, ok := position(&spec.Pos)
		if !ok || pos >= int(w) {
			return nil, errors.RangeBounds(spec.Pos.Span, name, "field out of bounds")
		}
		return layout.Single{Pos: pos}, nil

	case ast.RangeSpec:
		start, okStart := position(&spec.Start)
		end, okEnd := position(&spec.End)
		if !okStart {
			return nil, errors.RangeBounds(spec.Start.Span, name, "start is out of bounds")
		}
		if !okEnd {
			return nil, errors.RangeBounds(spec.End.Span, name, "end is out of bounds")
		}
		if !spec.Inclusive {
			end--
		}
		if start > end {
			return nil, errors.RangeOrder(spec.Start.Span, name)
		}
		if end >= int(w) {
			return nil, errors.RangeBounds(spec.End.Span, name, "end is out of bounds")
		}
		if start == end {
			return layout.Single{Pos: start}, nil
		}
		return layout.Range{Start: start, End: end}, nil
	}
	return nil, errors.Grammar(fd.Name.Span, "field %s has no bit specification", name)
}

// checkOverlap sorts fields by bottom bit; after sorting only neighbours can
// collide.
func checkOverlap(fields []layout.Field) *errors.Error {
	sorted := make([]layout.Field, len(fields))
	copy(sorted, fields)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Bits.Bottom() < sorted[j].Bits.Bottom()
	})
	for i := 1; i < len(sorted); i++ {
		prev, next := sorted[i-1], sorted[i]
		if prev.Bits.Top() >= next.Bits.Bottom() {
			return errors.Overlap(next.Name, next.Span, prev.Name, prev.Span)
		}
	}
	return nil
}

func aggregateDefault(fields []layout.Field) uint128.Uint128 {
	var def uint128.Uint128
	for _, f := range fields {
		if f.HasDefault {
			def = def.Or(f.Default.Lsh(uint(f.Bits.Bottom())))
		}
	}
	return def
}

func position(lit *ast.IntLit) (int, bool) {
	if lit.Value.Hi != 0 || lit.Value.Lo > maxPosition {
		return 0, false
	}
	return int(lit.Value.Lo), true
}

func inLayout(err *errors.Error, bf *ast.BitField) *errors.Error {
	err.Layout = bf.Name.Name
	return err
}
