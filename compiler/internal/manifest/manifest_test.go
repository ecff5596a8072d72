package manifest

import (
	"strings"
	"testing"

	"github.com/wippyai/bitfield/compiler/internal/ast"
)

func TestParseList(t *testing.T) {
	src := `
bitfields:
  - name: Ctrl
    size: 8
    fields:
      - {name: enable, bits: 0, default: 1}
      - name: mode
        bits: "1..=2"
      - name: reserved
        bits: 3..8
  - name: Status
    fields:
      - name: busy
        bits: 31
`
	f, err := Parse("regs.yaml", []byte(src))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(f.Decls) != 2 {
		t.Fatalf("got %d decls, want 2", len(f.Decls))
	}
	ctrl := f.Decls[0]
	if ctrl.Name.Name != "Ctrl" || ctrl.Size == nil || !ctrl.Size.Value.Equals64(8) {
		t.Errorf("ctrl = %+v", ctrl)
	}
	if len(ctrl.Fields) != 3 {
		t.Fatalf("got %d fields, want 3", len(ctrl.Fields))
	}
	if ctrl.Fields[0].Default == nil || !ctrl.Fields[0].Default.Value.Equals64(1) {
		t.Error("enable default not parsed")
	}
	mode, ok := ctrl.Fields[1].Bits.(ast.RangeSpec)
	if !ok || !mode.Inclusive {
		t.Fatalf("mode bits = %+v", ctrl.Fields[1].Bits)
	}
	// "1..=2" sits on line 8; the quote is skipped.
	if mode.Start.Span.Line != 8 || mode.Start.Span.Col != 16 || mode.Start.Span.File != "regs.yaml" {
		t.Errorf("mode start span = %+v", mode.Start.Span)
	}
	if r, ok := ctrl.Fields[2].Bits.(ast.RangeSpec); !ok || r.Inclusive {
		t.Errorf("reserved bits = %+v", ctrl.Fields[2].Bits)
	}
	if f.Decls[1].Size != nil {
		t.Error("Status size should be absent")
	}
}

func TestParseSingleRoot(t *testing.T) {
	f, err := Parse("one.yaml", []byte("name: Flags\nfields:\n  - {name: a, bits: 0x3}\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(f.Decls) != 1 || f.Decls[0].Name.Name != "Flags" {
		t.Fatalf("decls = %+v", f.Decls)
	}
	if s, ok := f.Decls[0].Fields[0].Bits.(ast.SingleSpec); !ok || !s.Pos.Value.Equals64(3) {
		t.Errorf("bits = %+v", f.Decls[0].Fields[0].Bits)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name, src, wantErr string
	}{
		{"invalid_yaml", "name: [", "invalid YAML"},
		{"scalar_root", "42", "expected a mapping"},
		{"unknown_key", "name: A\ncolor: red\nfields: [{name: a, bits: 0}]", `unknown key "color"`},
		{"no_name", "fields: [{name: a, bits: 0}]", "requires a name"},
		{"no_fields", "name: A", "declares no fields"},
		{"bad_ident", "name: 9a\nfields: [{name: a, bits: 0}]", "expected identifier"},
		{"field_no_bits", "name: A\nfields: [{name: a}]", "requires bits"},
		{"bad_bits", "name: A\nfields: [{name: a, bits: '1..'}]", "unexpected end of input"},
		{"bad_default", "name: A\nfields: [{name: a, bits: 0, default: x}]", "invalid integer literal"},
		{"bitfields_not_list", "bitfields: 3", "must be a list"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("bad.yaml", []byte(tt.src))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q missing %q", err, tt.wantErr)
			}
		})
	}
}
