package bitfield

import (
	_ "embed"
	"strings"

	"github.com/wippyai/bitfield/accessor"
	"github.com/wippyai/bitfield/compiler"
)

//go:embed VERSION
var versionRaw string

// Version returns the embedded release version.
func Version() string {
	return strings.TrimSpace(versionRaw)
}

// Compile compiles a single-layout source and assembles its runtime type.
func Compile(source string) (*accessor.Type, error) {
	l, err := compiler.Compile(source)
	if err != nil {
		return nil, err
	}
	return accessor.New(l), nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(source string) *accessor.Type {
	return accessor.New(compiler.MustCompile(source))
}

// CompileFile compiles every layout in a DSL or YAML file.
func CompileFile(path string) ([]*accessor.Type, error) {
	layouts, err := compiler.CompileFile(path)
	if err != nil {
		return nil, err
	}
	types := make([]*accessor.Type, len(layouts))
	for i, l := range layouts {
		types[i] = accessor.New(l)
	}
	return types, nil
}
