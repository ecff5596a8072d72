package doc

import (
	"strings"
	"testing"

	"github.com/wippyai/bitfield/compiler"
	"github.com/wippyai/bitfield/layout"
	"github.com/wippyai/bitfield/render"
)

const ctrl = `Ctrl { _size: 8, reserved: 4..=7, mode: 1..=2, enable: 0 = 1 }`

func TestMarkdown(t *testing.T) {
	l := compiler.MustCompile(ctrl)
	out, err := Markdown{}.Render([]*layout.Layout{l}, render.Options{Header: []string{"# Registers"}})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	md := string(out)
	for _, want := range []string{
		"# Registers",
		"## Ctrl",
		"8-bit word (`u8`), default `0x01`.",
		"| 0 | `enable` | bit | bool | `0x1` | `REnable` / `WEnable` |",
		"| 1..=2 | `mode` | range | u8 | - | `RMode` / `WMode` |",
		"| 4..=7 | `reserved` | range | u8 | - |",
		"Unassigned bits: `0x08`.",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q\n%s", want, md)
		}
	}
	if strings.Index(md, "`enable`") > strings.Index(md, "`reserved`") {
		t.Error("rows should be ordered by bit position")
	}
}

func TestMarkdownFullyAssigned(t *testing.T) {
	l := compiler.MustCompile(`R { _size: 16, lo: 0..8, hi: 8..16 }`)
	md := Text([]*layout.Layout{l}, render.Options{})
	if !strings.Contains(md, "All bits are assigned.") {
		t.Errorf("markdown = %s", md)
	}
	if !strings.Contains(md, "default `0x0000`") {
		t.Errorf("default should be padded to the word width: %s", md)
	}
}

func TestHTML(t *testing.T) {
	l := compiler.MustCompile(ctrl)
	out, err := HTML{}.Render([]*layout.Layout{l}, render.Options{})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	html := string(out)
	for _, want := range []string{"<h2", "Ctrl</h2>", "<table>", "<code>enable</code>"} {
		if !strings.Contains(html, want) {
			t.Errorf("html missing %q\n%s", want, html)
		}
	}
}

func TestHexWide(t *testing.T) {
	l := compiler.MustCompile(`W { _size: 128, top: 127 = 1 }`)
	if got := hex(l.Default, l.Width); got != "0x80000000000000000000000000000000" {
		t.Errorf("hex = %s", got)
	}
}
