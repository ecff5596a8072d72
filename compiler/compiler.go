package compiler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"lukechampine.com/uint128"

	"github.com/wippyai/bitfield/compiler/internal/ast"
	"github.com/wippyai/bitfield/compiler/internal/manifest"
	"github.com/wippyai/bitfield/compiler/internal/parser"
	"github.com/wippyai/bitfield/compiler/internal/token"
	"github.com/wippyai/bitfield/errors"
	"github.com/wippyai/bitfield/layout"
)

// Compile parses and validates a source holding exactly one bit-field.
func Compile(source string) (*layout.Layout, error) {
	layouts, err := CompileAll(source)
	if err != nil {
		return nil, err
	}
	if len(layouts) != 1 {
		return nil, errors.Grammar(layouts[1].Span, "expected one bit-field, found %d", len(layouts))
	}
	return layouts[0], nil
}

// CompileAll parses and validates every bit-field in source, in order.
func CompileAll(source string) ([]*layout.Layout, error) {
	return compileSource("", source)
}

// CompileYAML validates the bit-fields of a YAML manifest.
func CompileYAML(data []byte) ([]*layout.Layout, error) {
	return compileManifest("", data)
}

// CompileFile compiles a layout file. Files ending in .yaml or .yml are read
// as manifests, anything else as DSL source. Diagnostics carry the path.
func CompileFile(path string) ([]*layout.Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return compileManifest(path, data)
	default:
		return compileSource(path, string(data))
	}
}

// MustCompile is like Compile but panics on error. It is meant for layouts
// fixed at program start.
func MustCompile(source string) *layout.Layout {
	l, err := Compile(source)
	if err != nil {
		panic(err)
	}
	return l
}

func compileSource(file, source string) ([]*layout.Layout, error) {
	f, err := parser.New(file, token.Tokenize(source)).Parse()
	if err != nil {
		return nil, err
	}
	return build(f)
}

func compileManifest(file string, data []byte) ([]*layout.Layout, error) {
	f, err := manifest.Parse(file, data)
	if err != nil {
		return nil, err
	}
	return build(f)
}

func build(f *ast.File) ([]*layout.Layout, error) {
	seen := make(map[string]errors.Span, len(f.Decls))
	layouts := make([]*layout.Layout, 0, len(f.Decls))
	generated := make(generatedNames)
	for _, decl := range f.Decls {
		if first, dup := seen[decl.Name.Name]; dup {
			return nil, errors.New(errors.PhaseValidate, errors.KindDuplicateField).
				At(decl.Name.Span).
				Layout(decl.Name.Name).
				Detail("duplicate bit-field name").
				Note(first, "first declared here").
				Build()
		}
		seen[decl.Name.Name] = decl.Name.Span

		l, err := validate(decl)
		if err != nil {
			Logger().Debug("layout rejected",
				zap.String("file", f.Name),
				zap.String("layout", decl.Name.Name),
				zap.Error(err))
			return nil, err
		}
		if err := generated.claim(l); err != nil {
			return nil, err
		}
		Logger().Debug("layout compiled",
			zap.String("file", f.Name),
			zap.String("layout", l.Name),
			zap.Int("width", int(l.Width)),
			zap.Int("fields", len(l.Fields)),
			zap.String("default", l.Default.String()))
		layouts = append(layouts, l)
	}
	return layouts, nil
}

// generatedNames maps every identifier the render targets declare at file
// scope to the site that first claimed it. Distinct layout names can still
// render to the same Go type (ctrl and Ctrl) or WIT record (AB and ab).
type generatedNames map[string]errors.Span

func (g generatedNames) claim(l *layout.Layout) *errors.Error {
	type site struct {
		name  string
		field string
		span  errors.Span
	}
	var sites []site
	for _, d := range layout.GoNames(l) {
		span := l.Span
		if d.Field != "" {
			f, _ := l.Field(d.Field)
			span = f.Span
		}
		sites = append(sites, site{name: "go:" + d.Name, field: d.Field, span: span})
	}
	kebab := layout.Kebab(l.Name)
	sites = append(sites,
		site{name: "wit:" + kebab, span: l.Span},
		site{name: "wit:" + kebab + "-word", span: l.Span})

	for _, s := range sites {
		if first, dup := g[s.name]; dup {
			lang, name, _ := strings.Cut(s.name, ":")
			return errors.New(errors.PhaseValidate, errors.KindDuplicateField).
				At(s.span).
				Layout(l.Name).
				Field(s.field).
				Detail("generated %s name %s collides with an earlier declaration", lang, name).
				Note(first, "first declared here").
				Build()
		}
		g[s.name] = s.span
	}
	return nil
}

// ParseLiteral parses an integer literal in the DSL's syntax: decimal, 0x,
// 0o or 0b, with optional _ separators.
func ParseLiteral(text string) (uint128.Uint128, error) {
	v, err := parser.ParseInt(text)
	if err != nil {
		return uint128.Zero, errors.New(errors.PhaseParse, errors.KindGrammar).
			Value(text).
			Detail("invalid integer literal %q", text).
			Cause(err).
			Build()
	}
	return v, nil
}
