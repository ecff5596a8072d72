package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"lukechampine.com/uint128"

	"github.com/wippyai/bitfield/accessor"
	"github.com/wippyai/bitfield/compiler"
	"github.com/wippyai/bitfield/engine"
	"github.com/wippyai/bitfield/errors"
	"github.com/wippyai/bitfield/layout"
)

type opKind int

const (
	opAssign opKind = iota
	opSetBit
	opClearBit
)

// op is one command-line write: field=value, field (set bit) or !field
// (clear bit).
type op struct {
	field string
	value uint128.Uint128
	kind  opKind
}

func parseOps(l *layout.Layout, args []string) ([]op, error) {
	ops := make([]op, 0, len(args))
	for _, arg := range args {
		var o op
		switch {
		case strings.Contains(arg, "="):
			name, text, _ := strings.Cut(arg, "=")
			v, err := compiler.ParseLiteral(strings.TrimSpace(text))
			if err != nil {
				return nil, err
			}
			o = op{field: strings.TrimSpace(name), value: v, kind: opAssign}
		case strings.HasPrefix(arg, "!"):
			o = op{field: arg[1:], kind: opClearBit}
		default:
			o = op{field: arg, kind: opSetBit}
		}

		f, ok := l.Field(o.field)
		if !ok {
			e := errors.NotFound(errors.PhaseRuntime, "field", o.field)
			e.Layout = l.Name
			return nil, e
		}
		if o.kind != opAssign && !f.IsSingle() {
			e := errors.TypeMismatch(errors.PhaseRuntime, o.field, "a single bit", "a bit range")
			e.Layout = l.Name
			return nil, e
		}
		if o.kind == opAssign && layout.BitLen(o.value) > f.Bits.Len() {
			return nil, errors.New(errors.PhaseRuntime, errors.KindInvalidInput).
				Layout(l.Name).
				Field(o.field).
				Value(o.value.String()).
				Detail("value needs %d bits, field holds %d", layout.BitLen(o.value), f.Bits.Len()).
				Build()
		}
		ops = append(ops, o)
	}
	return ops, nil
}

func cmdEval(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("eval", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var c common
	c.register(fs)
	layoutName := fs.String("layout", "", "layout to evaluate (required when the file declares several)")
	raw := fs.String("raw", "", "starting word (default: the layout default)")
	useWasm := fs.Bool("wasm", false, "evaluate through the wasm accessor module")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("eval requires a layout file")
	}

	cfg, err := c.setup(stderr)
	if err != nil {
		return err
	}
	layouts, err := compiler.CompileFile(fs.Arg(0))
	if err != nil {
		return err
	}
	l, err := pick(layouts, *layoutName)
	if err != nil {
		return err
	}
	ops, err := parseOps(l, fs.Args()[1:])
	if err != nil {
		return err
	}

	typ := accessor.New(l)
	v := typ.Default()
	if *raw != "" {
		word, err := compiler.ParseLiteral(*raw)
		if err != nil {
			return err
		}
		v = typ.From(word)
	}

	if *useWasm {
		word, err := evalWasm(l, v.Raw64(), ops, cfg.Wasm.MemoryLimitPages)
		if err != nil {
			return err
		}
		v = typ.From64(word)
	} else if err := evalRuntime(typ, &v, ops); err != nil {
		return err
	}

	fmt.Fprintln(stdout, v)
	return nil
}

func evalRuntime(typ *accessor.Type, v *accessor.Value, ops []op) error {
	for _, o := range ops {
		switch o.kind {
		case opAssign:
			if err := v.Set(o.field, o.value); err != nil {
				return err
			}
		case opSetBit, opClearBit:
			b, err := typ.Bit(o.field)
			if err != nil {
				return err
			}
			b.W(v).Bit(o.kind == opSetBit)
		}
	}
	return nil
}

func evalWasm(l *layout.Layout, word uint64, ops []op, memoryPages uint32) (uint64, error) {
	ctx := context.Background()
	e := engine.New(ctx, &engine.Config{MemoryLimitPages: memoryPages})
	defer e.Close(ctx)

	mod, err := e.Load(ctx, l)
	if err != nil {
		return 0, err
	}
	inst, err := mod.Instantiate(ctx)
	if err != nil {
		return 0, err
	}
	defer inst.Close(ctx)

	for _, o := range ops {
		switch o.kind {
		case opAssign:
			word, err = inst.Set(ctx, word, o.field, o.value.Lo)
		case opSetBit:
			word, err = inst.SetBit(ctx, word, o.field)
		case opClearBit:
			word, err = inst.ClearBit(ctx, word, o.field)
		}
		if err != nil {
			return 0, err
		}
	}
	return word, nil
}
