// Package config loads bitfieldc settings from bitfieldc.toml or
// bitfieldc.yaml, with defaults and environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/creasty/defaults"
	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/bitfield/errors"
)

const (
	EnvLogLevel = "BITFIELDC_LOG_LEVEL"
	EnvNoColor  = "BITFIELDC_NO_COLOR"
)

// Names are the file names Find looks for, in order.
var Names = []string{"bitfieldc.toml", "bitfieldc.yaml", "bitfieldc.yml"}

type Config struct {
	Package   string     `mapstructure:"package" default:"bitfields"`
	OutputDir string     `mapstructure:"output_dir" default:"."`
	Targets   []string   `mapstructure:"targets" default:"[\"go\"]"`
	LogLevel  string     `mapstructure:"log_level" default:"info"`
	Header    []string   `mapstructure:"header"`
	NoColor   bool       `mapstructure:"no_color"`
	Wasm      WasmConfig `mapstructure:"wasm"`
}

type WasmConfig struct {
	MemoryLimitPages uint32 `mapstructure:"memory_limit_pages" default:"16"`
}

// Default returns the configuration used when no file is present.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "apply defaults")
	}
	return cfg, nil
}

// Find returns the first config file in dir, or "" if there is none.
func Find(dir string) string {
	for _, name := range Names {
		p := filepath.Join(dir, name)
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p
		}
	}
	return ""
}

// Load reads path, applies defaults to unset keys and then environment
// overrides. An empty path yields the defaults with overrides applied.
func Load(path string) (*Config, error) {
	raw := map[string]any{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config load failed (%s): %w", path, err)
		}
		if raw, err = decodeRaw(path, data); err != nil {
			return nil, err
		}
	}

	cfg, err := Decode(raw)
	if err != nil {
		if e, ok := err.(*errors.Error); ok {
			e.Span = errors.Span{File: path}
		}
		return nil, err
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeRaw(path string, data []byte) (map[string]any, error) {
	raw := map[string]any{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), &raw); err != nil {
			return nil, errors.New(errors.PhaseConfig, errors.KindInvalidInput).
				At(errors.Span{File: path}).
				Detail("config parse failed").
				Cause(err).
				Build()
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, errors.New(errors.PhaseConfig, errors.KindInvalidInput).
				At(errors.Span{File: path}).
				Detail("config parse failed").
				Cause(err).
				Build()
		}
	default:
		return nil, errors.New(errors.PhaseConfig, errors.KindUnsupported).
			At(errors.Span{File: path}).
			Detail("unsupported config format %q", filepath.Ext(path)).
			Build()
	}
	return raw, nil
}

// Decode builds a Config from a generic map. Unknown keys are rejected.
func Decode(raw map[string]any) (*Config, error) {
	cfg := &Config{}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "build decoder")
	}
	if err := dec.Decode(raw); err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "config decode failed")
	}
	if err := defaults.Set(cfg); err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "apply defaults")
	}
	return cfg, nil
}

// Validate checks values that decoding cannot.
func (c *Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Package) == "" {
		return errors.InvalidInput(errors.PhaseConfig, "package must not be empty")
	}
	if len(c.Targets) == 0 {
		return errors.InvalidInput(errors.PhaseConfig, "targets must not be empty")
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (zapcore.Level, error) {
	lvl, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return zapcore.InfoLevel, errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Value(c.LogLevel).
			Detail("invalid log_level %q", c.LogLevel).
			Cause(err).
			Build()
	}
	return lvl, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v, ok := parseBool(os.Getenv(EnvNoColor)); ok {
		cfg.NoColor = v
	}
}

func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
