package config

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/wippyai/bitfield/errors"
)

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestDefault(t *testing.T) {
	cfg, err := Default()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Package != "bitfields" || cfg.OutputDir != "." || cfg.LogLevel != "info" {
		t.Errorf("defaults = %+v", cfg)
	}
	if len(cfg.Targets) != 1 || cfg.Targets[0] != "go" {
		t.Errorf("targets = %v", cfg.Targets)
	}
	if cfg.Wasm.MemoryLimitPages != 16 {
		t.Errorf("memory limit = %d", cfg.Wasm.MemoryLimitPages)
	}
}

func TestLoadTOML(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvNoColor, "")
	p := write(t, t.TempDir(), "bitfieldc.toml", `
package = "regs"
targets = ["go", "wit"]
header = ["vendor registers"]
log_level = "debug"

[wasm]
memory_limit_pages = 4
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Package != "regs" || len(cfg.Targets) != 2 || cfg.Targets[1] != "wit" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.OutputDir != "." {
		t.Errorf("output_dir default not applied: %q", cfg.OutputDir)
	}
	if cfg.Wasm.MemoryLimitPages != 4 {
		t.Errorf("memory limit = %d", cfg.Wasm.MemoryLimitPages)
	}
	if lvl, _ := cfg.Level(); lvl != zapcore.DebugLevel {
		t.Errorf("level = %v", lvl)
	}
	if len(cfg.Header) != 1 || cfg.Header[0] != "vendor registers" {
		t.Errorf("header = %v", cfg.Header)
	}
}

func TestLoadYAML(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvNoColor, "")
	p := write(t, t.TempDir(), "bitfieldc.yaml", "package: hw\noutput_dir: gen\nno_color: true\nwasm:\n  memory_limit_pages: 2\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Package != "hw" || cfg.OutputDir != "gen" || !cfg.NoColor || cfg.Wasm.MemoryLimitPages != 2 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvLogLevel, "WARN")
	t.Setenv(EnvNoColor, "1")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if lvl, _ := cfg.Level(); lvl != zapcore.WarnLevel {
		t.Errorf("level = %v", lvl)
	}
	if !cfg.NoColor {
		t.Error("no_color override not applied")
	}

	t.Setenv(EnvNoColor, "maybe")
	cfg, err = Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.NoColor {
		t.Error("unparseable bool should be ignored")
	}
}

func TestLoadErrors(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	dir := t.TempDir()
	tests := []struct {
		name string
		path string
		kind errors.Kind
	}{
		{"unknown key", write(t, dir, "a.toml", "pakage = \"x\"\n"), errors.KindInvalidInput},
		{"bad toml", write(t, dir, "b.toml", "package = \n"), errors.KindInvalidInput},
		{"bad yaml", write(t, dir, "c.yaml", "package: [\n"), errors.KindInvalidInput},
		{"bad level", write(t, dir, "d.toml", "log_level = \"loud\"\n"), errors.KindInvalidInput},
		{"format", write(t, dir, "e.json", "{}"), errors.KindUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path)
			kind, ok := errors.KindOf(err)
			if !ok || kind != tt.kind {
				t.Errorf("error = %v, want kind %v", err, tt.kind)
			}
		})
	}

	if _, err := Load(filepath.Join(dir, "missing.toml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestFind(t *testing.T) {
	dir := t.TempDir()
	if got := Find(dir); got != "" {
		t.Errorf("Find on empty dir = %q", got)
	}
	yml := write(t, dir, "bitfieldc.yml", "package: x\n")
	if got := Find(dir); got != yml {
		t.Errorf("Find = %q, want %q", got, yml)
	}
	toml := write(t, dir, "bitfieldc.toml", "package = \"x\"\n")
	if got := Find(dir); got != toml {
		t.Errorf("Find = %q, want toml first", got)
	}
}
