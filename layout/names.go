package layout

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Ident converts a layout or field name into an exported Go identifier:
// "tx_enable" becomes "TxEnable". Leading underscores are dropped.
func Ident(name string) string {
	title := cases.Title(language.Und, cases.NoLower)
	var b strings.Builder
	for _, part := range strings.Split(name, "_") {
		if part == "" {
			continue
		}
		b.WriteString(title.String(part))
	}
	if b.Len() == 0 {
		return "X"
	}
	return b.String()
}

// ReaderName is the reader accessor identifier derived from a field name.
func ReaderName(field string) string {
	return "R" + Ident(field)
}

// WriterName is the writer accessor identifier derived from a field name.
func WriterName(field string) string {
	return "W" + Ident(field)
}

// Kebab converts snake_case and camelCase names to kebab-case, the spelling
// WIT uses: "txEnable" and "tx_enable" both become "tx-enable".
func Kebab(name string) string {
	var b strings.Builder
	prevLower := false
	for _, r := range name {
		switch {
		case r == '_' || r == '-':
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "-") {
				b.WriteByte('-')
			}
			prevLower = false
		case unicode.IsUpper(r):
			if prevLower {
				b.WriteByte('-')
			}
			b.WriteRune(unicode.ToLower(r))
			prevLower = false
		default:
			b.WriteRune(r)
			prevLower = unicode.IsLower(r) || unicode.IsDigit(r)
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// GoNames returns the top-level Go identifiers the Go target declares for l,
// each paired with the field it derives from ("" for the layout itself).
func GoNames(l *Layout) []DerivedName {
	ident := Ident(l.Name)
	out := []DerivedName{
		{Name: ident},
		{Name: "New" + ident},
		{Name: ident + "From"},
	}
	for _, f := range l.Fields {
		fi := ident + Ident(f.Name)
		out = append(out,
			DerivedName{Name: fi + "W", Field: f.Name},
			DerivedName{Name: fi + "R", Field: f.Name})
	}
	return out
}

// DerivedName is a generated identifier and the field it comes from.
type DerivedName struct {
	Name  string
	Field string
}
