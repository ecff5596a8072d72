package wit

import (
	"strings"
	"testing"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/bitfield/compiler"
	"github.com/wippyai/bitfield/render"
)

func TestTypeDef(t *testing.T) {
	l := compiler.MustCompile(`CtrlReg { _size: 8, tx_en: 0 = 1, mode: 1..=2, reserved: 3..=7 }`)
	td := TypeDef(l)
	if td.Name == nil || *td.Name != "ctrl-reg" {
		t.Fatalf("name = %v", td.Name)
	}
	rec, ok := td.Kind.(*wit.Record)
	if !ok {
		t.Fatalf("kind = %T, want *wit.Record", td.Kind)
	}
	want := []struct {
		name string
		typ  string
	}{
		{"tx-en", "bool"},
		{"mode", "u8"},
		{"reserved", "u8"},
	}
	if len(rec.Fields) != len(want) {
		t.Fatalf("fields = %d, want %d", len(rec.Fields), len(want))
	}
	for i, w := range want {
		if rec.Fields[i].Name != w.name || TypeString(rec.Fields[i].Type) != w.typ {
			t.Errorf("field %d = %s: %s, want %s: %s", i, rec.Fields[i].Name, TypeString(rec.Fields[i].Type), w.name, w.typ)
		}
	}
}

func TestFieldTypes(t *testing.T) {
	l := compiler.MustCompile(`W { _size: 128, a: 0..=15, b: 16..=47, c: 48..=110, d: 111 }`)
	rec := TypeDef(l).Kind.(*wit.Record)
	got := make([]string, len(rec.Fields))
	for i, f := range rec.Fields {
		got[i] = TypeString(f.Type)
	}
	if strings.Join(got, " ") != "u16 u32 u64 bool" {
		t.Errorf("types = %v", got)
	}
	if s := TypeString(WordType(l.Width)); s != "tuple<u64, u64>" {
		t.Errorf("word type = %s", s)
	}
}

func TestRender(t *testing.T) {
	layouts, err := compiler.CompileAll(`Ctrl { _size: 8, enable: 0 = 1, mode: 1..=2 } Status { ready: 0 }`)
	if err != nil {
		t.Fatal(err)
	}
	out, err := Target{}.Render(layouts, render.Options{Package: "my_regs"})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	src := string(out)
	for _, want := range []string{
		"package local:my-regs;",
		"interface bitfields {",
		"/// Ctrl: 8-bit word, default 0x1.",
		"record ctrl {",
		"enable: bool,",
		"/// bits 1..=2",
		"mode: u8,",
		"type ctrl-word = u8;",
		"record status {",
		"type status-word = u32;",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("output missing %q\n%s", want, src)
		}
	}
}

func TestKebab(t *testing.T) {
	tests := map[string]string{
		"Ctrl":     "ctrl",
		"tx_en":    "tx-en",
		"txEn":     "tx-en",
		"CtrlReg":  "ctrl-reg",
		"_private": "private",
		"a__b_":    "a-b",
		"reg2Mode": "reg2-mode",
	}
	for in, want := range tests {
		if got := Kebab(in); got != want {
			t.Errorf("Kebab(%q) = %q, want %q", in, got, want)
		}
	}
}
