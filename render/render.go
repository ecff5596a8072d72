// Package render turns validated layouts into output artifacts.
//
// Each output format is a Target. Targets live in subpackages and are
// collected into a Registry by the caller:
//
//	reg := render.NewRegistry(golang.Target{}, wit.Target{}, wasm.Target{})
//	out, err := reg.Render("go", layouts, render.Options{Package: "regs"})
package render

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/bitfield/errors"
	"github.com/wippyai/bitfield/layout"
)

// Options are shared by every target. Targets ignore what they do not use.
type Options struct {
	// Package is the Go package name (go) or WIT package/interface prefix (wit).
	Package string
	// Header is extra leading comment text, one line per entry.
	Header []string
	// Source names the file the layouts came from.
	Source string
}

// Target renders layouts into one output format.
type Target interface {
	// Name is the registry key, such as "go" or "wasm".
	Name() string
	// Ext is the conventional file extension including the dot.
	Ext() string
	Render(layouts []*layout.Layout, opts Options) ([]byte, error)
}

// Registry maps target names to targets.
type Registry struct {
	targets map[string]Target
}

func NewRegistry(targets ...Target) *Registry {
	r := &Registry{targets: make(map[string]Target, len(targets))}
	for _, t := range targets {
		r.Register(t)
	}
	return r
}

// Register adds t, replacing any target with the same name.
func (r *Registry) Register(t Target) {
	r.targets[t.Name()] = t
}

// Lookup returns the target registered under name.
func (r *Registry) Lookup(name string) (Target, error) {
	t, ok := r.targets[name]
	if !ok {
		return nil, errors.New(errors.PhaseRender, errors.KindNotFound).
			Value(name).
			Detail("unknown target %q (have %s)", name, strings.Join(r.Names(), ", ")).
			Build()
	}
	return t, nil
}

// Names returns the registered target names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.targets))
	for n := range r.targets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Render looks up a target and renders layouts with it.
func (r *Registry) Render(name string, layouts []*layout.Layout, opts Options) ([]byte, error) {
	t, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}
	if len(layouts) == 0 {
		return nil, errors.InvalidInput(errors.PhaseRender, "no layouts to render")
	}
	out, err := t.Render(layouts, opts)
	if err != nil {
		Logger().Debug("render failed", zap.String("target", name), zap.Error(err))
		return nil, err
	}
	Logger().Debug("rendered",
		zap.String("target", name),
		zap.Int("layouts", len(layouts)),
		zap.Int("bytes", len(out)))
	return out, nil
}
