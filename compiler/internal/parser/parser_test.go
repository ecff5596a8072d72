package parser

import (
	stderrors "errors"
	"strings"
	"testing"

	"lukechampine.com/uint128"

	"github.com/wippyai/bitfield/compiler/internal/ast"
	"github.com/wippyai/bitfield/compiler/internal/token"
	"github.com/wippyai/bitfield/errors"
)

func parse(t *testing.T, src string) (*ast.File, error) {
	t.Helper()
	return New("test.bf", token.Tokenize(src)).Parse()
}

func TestParseBitField(t *testing.T) {
	f, err := parse(t, `Ctrl { _size: 8, enable: 0 = 1, mode: 1..=2, reserved: 3..8, }`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(f.Decls) != 1 {
		t.Fatalf("got %d decls, want 1", len(f.Decls))
	}
	bf := f.Decls[0]
	if bf.Name.Name != "Ctrl" {
		t.Errorf("name = %q", bf.Name.Name)
	}
	if bf.Size == nil || !bf.Size.Value.Equals64(8) {
		t.Errorf("size = %v", bf.Size)
	}
	if len(bf.Fields) != 3 {
		t.Fatalf("got %d fields, want 3", len(bf.Fields))
	}

	enable := bf.Fields[0]
	if _, ok := enable.Bits.(ast.SingleSpec); !ok {
		t.Errorf("enable bits = %T, want SingleSpec", enable.Bits)
	}
	if enable.Default == nil || !enable.Default.Value.Equals64(1) {
		t.Errorf("enable default = %v", enable.Default)
	}

	mode, ok := bf.Fields[1].Bits.(ast.RangeSpec)
	if !ok || !mode.Inclusive || !mode.Start.Value.Equals64(1) || !mode.End.Value.Equals64(2) {
		t.Errorf("mode bits = %+v", bf.Fields[1].Bits)
	}

	reserved, ok := bf.Fields[2].Bits.(ast.RangeSpec)
	if !ok || reserved.Inclusive || !reserved.End.Value.Equals64(8) {
		t.Errorf("reserved bits = %+v", bf.Fields[2].Bits)
	}
}

func TestParseWithoutSize(t *testing.T) {
	f, err := parse(t, "Reg { a: 31 }")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if f.Decls[0].Size != nil {
		t.Error("size should be absent")
	}
}

func TestParseMultiple(t *testing.T) {
	f, err := parse(t, `
		// status register
		Status { _size: 16, busy: 15 }
		/* control */
		Ctrl { go: 0 }
	`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(f.Decls) != 2 || f.Decls[1].Name.Name != "Ctrl" {
		t.Fatalf("decls = %+v", f.Decls)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name, src, wantErr string
	}{
		{"empty", "", "expected a bit-field declaration"},
		{"missing_brace", "Ctrl a: 1 }", "expected '{'"},
		{"unclosed", "Ctrl { a: 1", "unexpected end of input"},
		{"missing_colon", "Ctrl { a 1 }", "expected ':'"},
		{"missing_bits", "Ctrl { a: }", "expected integer"},
		{"range_missing_end", "Ctrl { a: 1.. }", "expected integer"},
		{"bad_literal", "Ctrl { a: 1u8 }", "invalid integer literal"},
		{"illegal_char", "Ctrl { a: 1; }", "expected '}'"},
		{"size_not_first", "Ctrl { a: 1, _size: 8 }", "_size must be the first entry"},
		{"size_missing_comma", "Ctrl { _size: 8 a: 1 }", "expected ','"},
		{"no_fields", "Ctrl { _size: 8 }", "declares no fields"},
		{"default_missing", "Ctrl { a: 1 = }", "expected integer"},
		{"two_commas", "Ctrl { a: 1,, }", "expected identifier"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parse(t, tt.src)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q missing %q", err, tt.wantErr)
			}
			var e *errors.Error
			if !stderrors.As(err, &e) || e.Kind != errors.KindGrammar {
				t.Errorf("error %v is not a grammar error", err)
			}
		})
	}
}

func TestParseErrorSpan(t *testing.T) {
	_, err := parse(t, "Ctrl {\n  a: 1,\n  b 2\n}")
	var e *errors.Error
	if !stderrors.As(err, &e) {
		t.Fatalf("error = %v", err)
	}
	if e.Span.Line != 3 || e.Span.Col != 5 || e.Span.Text != "2" || e.Span.File != "test.bf" {
		t.Errorf("span = %+v, want test.bf 3:5 \"2\"", e.Span)
	}
}

func TestParseBitSpec(t *testing.T) {
	spec, err := ParseBitSpec("m.yaml", "4..=7", 3, 11)
	if err != nil {
		t.Fatalf("ParseBitSpec failed: %v", err)
	}
	r, ok := spec.(ast.RangeSpec)
	if !ok || r.Start.Span.Line != 3 || r.Start.Span.Col != 11 || r.End.Span.Col != 15 {
		t.Errorf("spec = %+v", spec)
	}

	if _, err := ParseBitSpec("m.yaml", "4..=7 x", 1, 1); err == nil {
		t.Error("expected error for trailing tokens")
	}
}

func TestParseInt(t *testing.T) {
	tests := []struct {
		in   string
		want uint128.Uint128
	}{
		{"0", uint128.Zero},
		{"42", uint128.From64(42)},
		{"010", uint128.From64(10)},
		{"0x1F", uint128.From64(0x1f)},
		{"0b1_0", uint128.From64(2)},
		{"0o17", uint128.From64(15)},
		{"1_000", uint128.From64(1000)},
		{"0xFFFF_FFFF_FFFF_FFFF_FFFF_FFFF_FFFF_FFFF", uint128.Max},
		{"18446744073709551616", uint128.New(0, 1)},
	}
	for _, tt := range tests {
		got, err := ParseInt(tt.in)
		if err != nil {
			t.Errorf("ParseInt(%q) error: %v", tt.in, err)
			continue
		}
		if !got.Equals(tt.want) {
			t.Errorf("ParseInt(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	for _, bad := range []string{"", "0x", "_", "12ab", "0b102", "-1", "0x1_0000_0000_0000_0000_0000_0000_0000_0000"} {
		if _, err := ParseInt(bad); err == nil {
			t.Errorf("ParseInt(%q) should fail", bad)
		}
	}
}
