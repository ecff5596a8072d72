package engine

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/bitfield/errors"
	"github.com/wippyai/bitfield/layout"
	"github.com/wippyai/bitfield/render/wasm"
)

// Engine hosts layout accessor modules on a wazero runtime.
type Engine struct {
	runtime wazero.Runtime
}

// Config holds configuration for engine creation
type Config struct {
	// MemoryLimitPages caps memory per instance in 64KB pages. 0 keeps the
	// wazero default. Accessor modules declare no memory, so this only
	// bounds modules loaded from elsewhere.
	MemoryLimitPages uint32
}

// New creates an engine. cfg may be nil.
func New(ctx context.Context, cfg *Config) *Engine {
	runtimeCfg := wazero.NewRuntimeConfig()
	if cfg != nil && cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}
	return &Engine{runtime: wazero.NewRuntimeWithConfig(ctx, runtimeCfg)}
}

// Close releases the runtime and every instance created from it.
func (e *Engine) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}

// Module is a compiled accessor module for one layout.
type Module struct {
	runtime  wazero.Runtime
	compiled wazero.CompiledModule
	layout   *layout.Layout
}

// Load renders the accessor module for l and compiles it.
func (e *Engine) Load(ctx context.Context, l *layout.Layout) (*Module, error) {
	bin, err := wasm.Module(l)
	if err != nil {
		return nil, err
	}
	return e.LoadBinary(ctx, l, bin)
}

// LoadBinary compiles a previously rendered accessor module for l.
func (e *Engine) LoadBinary(ctx context.Context, l *layout.Layout, bin []byte) (*Module, error) {
	compiled, err := e.runtime.CompileModule(ctx, bin)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseRuntime, errors.KindInvalidInput, err, "compile accessor module")
	}
	Logger().Debug("accessor module compiled",
		zap.String("layout", l.Name),
		zap.Int("bytes", len(bin)),
		zap.Int("exports", len(compiled.ExportedFunctions())))
	return &Module{runtime: e.runtime, compiled: compiled, layout: l}, nil
}

// Layout returns the layout the module was built for.
func (m *Module) Layout() *layout.Layout { return m.layout }

// Instantiate creates an anonymous instance and resolves every accessor
// export up front.
func (m *Module) Instantiate(ctx context.Context) (*Instance, error) {
	mod, err := m.runtime.InstantiateModule(ctx, m.compiled, wazero.NewModuleConfig().WithName(""))
	if err != nil {
		return nil, fmt.Errorf("instantiate failed: %w", err)
	}

	inst := &Instance{
		module: mod,
		layout: m.layout,
		funcs:  make(map[string]api.Function),
	}
	names := []string{wasm.ExportDefault, wasm.ExportWidth}
	for _, f := range m.layout.Fields {
		names = append(names, f.Name+wasm.SuffixGet, f.Name+wasm.SuffixSet)
		if f.IsSingle() {
			names = append(names, f.Name+wasm.SuffixSetBit, f.Name+wasm.SuffixClear, f.Name+wasm.SuffixIsSet)
		}
	}
	for _, name := range names {
		fn := mod.ExportedFunction(name)
		if fn == nil {
			_ = mod.Close(ctx)
			e := errors.NotFound(errors.PhaseRuntime, "export", name)
			e.Layout = m.layout.Name
			return nil, e
		}
		inst.funcs[name] = fn
	}

	Logger().Debug("accessor module instantiated",
		zap.String("layout", m.layout.Name),
		zap.Int("functions", len(inst.funcs)))
	return inst, nil
}

// Instance is a running accessor module. Calls on one instance must not
// run concurrently.
type Instance struct {
	module api.Module
	layout *layout.Layout
	funcs  map[string]api.Function
}

// Close releases the instance.
func (i *Instance) Close(ctx context.Context) error {
	return i.module.Close(ctx)
}

// Default returns the layout's default word.
func (i *Instance) Default(ctx context.Context) (uint64, error) {
	return i.call(ctx, "", wasm.ExportDefault)
}

// Width returns the backing width reported by the module.
func (i *Instance) Width(ctx context.Context) (int, error) {
	v, err := i.call(ctx, "", wasm.ExportWidth)
	return int(uint32(v)), err
}

// Get reads field from word.
func (i *Instance) Get(ctx context.Context, word uint64, field string) (uint64, error) {
	return i.call(ctx, field, field+wasm.SuffixGet, word)
}

// Set writes value into field, masked to the field width, and returns the
// new word.
func (i *Instance) Set(ctx context.Context, word uint64, field string, value uint64) (uint64, error) {
	return i.call(ctx, field, field+wasm.SuffixSet, word, value)
}

func (i *Instance) SetBit(ctx context.Context, word uint64, field string) (uint64, error) {
	return i.call(ctx, field, field+wasm.SuffixSetBit, word)
}

func (i *Instance) ClearBit(ctx context.Context, word uint64, field string) (uint64, error) {
	return i.call(ctx, field, field+wasm.SuffixClear, word)
}

// IsSet reports whether a single-bit field is set in word.
func (i *Instance) IsSet(ctx context.Context, word uint64, field string) (bool, error) {
	v, err := i.call(ctx, field, field+wasm.SuffixIsSet, word)
	return uint32(v) != 0, err
}

func (i *Instance) call(ctx context.Context, field, export string, args ...uint64) (uint64, error) {
	fn, ok := i.funcs[export]
	if !ok {
		return 0, i.missing(field, export)
	}
	res, err := fn.Call(ctx, args...)
	if err != nil {
		return 0, errors.Wrap(errors.PhaseRuntime, errors.KindInvalidInput, err, "call "+export)
	}
	if len(res) != 1 {
		return 0, errors.New(errors.PhaseRuntime, errors.KindTypeMismatch).
			Layout(i.layout.Name).
			Detail("%s returned %d results, want 1", export, len(res)).
			Build()
	}
	return res[0], nil
}

func (i *Instance) missing(field, export string) error {
	f, ok := i.layout.Field(field)
	if ok && !f.IsSingle() {
		e := errors.TypeMismatch(errors.PhaseRuntime, field, "a single bit", "a bit range")
		e.Layout = i.layout.Name
		return e
	}
	e := errors.NotFound(errors.PhaseRuntime, "export", export)
	e.Layout = i.layout.Name
	e.Field = field
	return e
}
