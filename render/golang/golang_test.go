package golang

import (
	"bytes"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"strings"
	"testing"

	"github.com/wippyai/bitfield/compiler"
	"github.com/wippyai/bitfield/layout"
	"github.com/wippyai/bitfield/render"
)

const regs = `
Ctrl { _size: 8, enable: 0 = 1, mode: 1..=2, reserved: 3..=7 }
Status { _size: 64, ready: 0, count: 1..=40 = 0x10, tag: 48..64 }
`

func compileAll(t *testing.T, src string) []*layout.Layout {
	t.Helper()
	layouts, err := compiler.CompileAll(src)
	if err != nil {
		t.Fatalf("CompileAll failed: %v", err)
	}
	return layouts
}

func TestRenderTypeChecks(t *testing.T) {
	out, err := Target{}.Render(compileAll(t, regs), render.Options{Package: "regs", Source: "regs.bf"})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "regs.go", out, parser.ParseComments)
	if err != nil {
		t.Fatalf("generated source does not parse: %v\n%s", err, out)
	}
	if file.Name.Name != "regs" {
		t.Errorf("package = %s, want regs", file.Name.Name)
	}
	if !ast.IsGenerated(file) {
		t.Error("generated file is missing the generated-code marker")
	}

	pkg, err := (&types.Config{}).Check("regs", fset, []*ast.File{file}, nil)
	if err != nil {
		t.Fatalf("generated source does not type-check: %v\n%s", err, out)
	}

	for _, name := range []string{"Ctrl", "NewCtrl", "CtrlFrom", "CtrlEnableW", "CtrlEnableR", "CtrlModeW", "CtrlModeR", "Status", "StatusCountR", "StatusTagW"} {
		if pkg.Scope().Lookup(name) == nil {
			t.Errorf("missing declaration %s", name)
		}
	}

	ctrl := pkg.Scope().Lookup("Ctrl").Type()
	for _, m := range []string{"IntoInner", "WEnable", "REnable", "WMode", "RMode", "WReserved", "RReserved"} {
		obj, _, _ := types.LookupFieldOrMethod(ctrl, true, pkg, m)
		if obj == nil {
			t.Errorf("Ctrl is missing method %s", m)
		}
	}

	getBits, _, _ := types.LookupFieldOrMethod(pkg.Scope().Lookup("StatusCountR").Type(), false, pkg, "GetBits")
	sig := getBits.Type().(*types.Signature)
	if got := sig.Results().At(0).Type().String(); got != "uint64" {
		t.Errorf("count reader returns %s, want uint64", got)
	}
	getBits, _, _ = types.LookupFieldOrMethod(pkg.Scope().Lookup("StatusTagR").Type(), false, pkg, "GetBits")
	if got := getBits.Type().(*types.Signature).Results().At(0).Type().String(); got != "uint16" {
		t.Errorf("tag reader returns %s, want uint16", got)
	}
}

func TestRenderContent(t *testing.T) {
	out, err := Target{}.Render(compileAll(t, regs), render.Options{Header: []string{"regenerate with go generate"}})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	src := string(out)
	for _, want := range []string{
		generatedMarker,
		"// regenerate with go generate",
		"package bitfields",
		"return Ctrl{bits: 0x1}",
		"return Status{bits: 0x20}",
		"a.w.bits &^= 0x1",
		"func (a StatusTagW) Bits(x uint16) *Status",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("output missing %q\n%s", want, src)
		}
	}

	raw := string(Source(compileAll(t, regs), render.Options{}))
	for _, want := range []string{
		"a.w.bits = a.w.bits&^0x6 | (uint8(x)&0x3)<<1",
		"return uint8(a.bits >> 1 & 0x3)",
		"a.w.bits = a.w.bits&^0xffff000000000000 | (uint64(x)&0xffff)<<48",
	} {
		if !strings.Contains(raw, want) {
			t.Errorf("source missing %q", want)
		}
	}
	if strings.Contains(src, uint128Import) {
		t.Error("uint128 import emitted for narrow words")
	}
}

func TestRenderWide(t *testing.T) {
	out, err := Target{}.Render(compileAll(t, `Wide { _size: 128, flag: 0, lo: 1..=64, hi: 65..=127 = 3 }`), render.Options{})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	src := string(out)
	for _, want := range []string{
		`import "lukechampine.com/uint128"`,
		"bits uint128.Uint128",
		"return Wide{bits: uint128.New(0x0, 0x6)}",
		"func (a WideLoW) Bits(x uint64) *Wide",
		"func (a WideHiR) GetBits() uint64",
		"uint128.From64(uint64(x))",
		"return !a.bits.And(uint128.New(0x1, 0x0)).IsZero()",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("output missing %q\n%s", want, src)
		}
	}
	if _, err := parser.ParseFile(token.NewFileSet(), "wide.go", out, 0); err != nil {
		t.Errorf("generated source does not parse: %v", err)
	}
}

func TestRenderDeterministic(t *testing.T) {
	layouts := compileAll(t, regs)
	a, err := Target{}.Render(layouts, render.Options{})
	if err != nil {
		t.Fatal(err)
	}
	b, err := Target{}.Render(layouts, render.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Error("render output is not deterministic")
	}
}

func TestRenderSimilarNamesTypeCheck(t *testing.T) {
	// Spellings that differ only in case or underscores stay distinct Go
	// identifiers whenever the compiler accepts them together.
	src := `A { bc: 0, d_e: 1 } Ab { c: 0 } ADe { f: 0 }`
	out, err := Target{}.Render(compileAll(t, src), render.Options{Package: "regs"})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "regs.go", out, 0)
	if err != nil {
		t.Fatalf("generated source does not parse: %v\n%s", err, out)
	}
	if _, err := (&types.Config{}).Check("regs", fset, []*ast.File{file}, nil); err != nil {
		t.Fatalf("generated source does not type-check: %v\n%s", err, out)
	}

	for _, bad := range []string{
		`ctrl { a: 0 } Ctrl { b: 0 }`,
		`A { b_c: 0 } AB { c: 0 }`,
	} {
		if _, err := compiler.CompileAll(bad); err == nil {
			t.Errorf("CompileAll(%q) accepted layouts whose Go names collide", bad)
		}
	}
}
