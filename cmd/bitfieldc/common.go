package main

import (
	stderrors "errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/wippyai/bitfield/compiler"
	"github.com/wippyai/bitfield/config"
	"github.com/wippyai/bitfield/engine"
	"github.com/wippyai/bitfield/errors"
	"github.com/wippyai/bitfield/layout"
	"github.com/wippyai/bitfield/render"
	"github.com/wippyai/bitfield/render/doc"
	"github.com/wippyai/bitfield/render/golang"
	"github.com/wippyai/bitfield/render/wasm"
	"github.com/wippyai/bitfield/render/wit"
)

var (
	errorLabel = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B"))
	noteLabel  = lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB"))
	caretStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B"))
)

// noColor is set once config is loaded; report consults it.
var noColor bool

func registry() *render.Registry {
	return render.NewRegistry(golang.Target{}, wit.Target{}, wasm.Target{}, doc.Markdown{}, doc.HTML{})
}

// common holds the flags every subcommand accepts.
type common struct {
	configPath string
	verbose    bool
}

func (c *common) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "", "config file (default: bitfieldc.toml or bitfieldc.yaml in the working directory)")
	fs.BoolVar(&c.verbose, "v", false, "debug logging")
}

// setup loads the config and installs the logger in every package.
func (c *common) setup(stderr io.Writer) (*config.Config, error) {
	path := c.configPath
	if path == "" {
		path = config.Find(".")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if c.verbose {
		cfg.LogLevel = "debug"
	}
	noColor = cfg.NoColor

	log, err := newLogger(cfg, stderr)
	if err != nil {
		return nil, err
	}
	compiler.SetLogger(log)
	render.SetLogger(log)
	engine.SetLogger(log)
	log.Debug("config loaded", zap.String("path", path), zap.String("package", cfg.Package))
	return cfg, nil
}

func newLogger(cfg *config.Config, stderr io.Writer) (*zap.Logger, error) {
	lvl, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	zcfg := zap.NewDevelopmentConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	zcfg.DisableStacktrace = true
	if colorEnabled(stderr) {
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	enc := zapcore.NewConsoleEncoder(zcfg.EncoderConfig)
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(stderr), zcfg.Level)), nil
}

func colorEnabled(w io.Writer) bool {
	if noColor {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// pick selects a layout by name, or the only layout when name is empty.
func pick(layouts []*layout.Layout, name string) (*layout.Layout, error) {
	if name == "" {
		if len(layouts) == 1 {
			return layouts[0], nil
		}
		names := make([]string, len(layouts))
		for i, l := range layouts {
			names[i] = l.Name
		}
		return nil, errors.InvalidInput(errors.PhaseRuntime,
			fmt.Sprintf("file declares %d layouts (%s), choose one with -layout", len(layouts), strings.Join(names, ", ")))
	}
	for _, l := range layouts {
		if l.Name == name {
			return l, nil
		}
	}
	return nil, errors.NotFound(errors.PhaseRuntime, "layout", name)
}

// report prints err. Compiler diagnostics also show each cited source line
// with a caret under the offending literal.
func report(w io.Writer, err error) {
	label := "error:"
	if colorEnabled(w) {
		label = errorLabel.Render(label)
	}
	fmt.Fprintln(w, label, err)

	var e *errors.Error
	if !stderrors.As(err, &e) {
		return
	}
	for i, span := range e.Spans() {
		if span.IsZero() || span.File == "" {
			continue
		}
		line, ok := sourceLine(span.File, span.Line)
		if !ok {
			continue
		}
		prefix := "  --> "
		if i > 0 {
			prefix = "  note: "
			if colorEnabled(w) {
				prefix = "  " + noteLabel.Render("note:") + " "
			}
		}
		fmt.Fprintf(w, "%s%s\n", prefix, span)
		fmt.Fprintf(w, "   | %s\n", line)
		fmt.Fprintf(w, "   | %s\n", caret(span, w))
	}
}

func caret(span errors.Span, w io.Writer) string {
	width := len(span.Text)
	if width == 0 {
		width = 1
	}
	marks := strings.Repeat(" ", max(span.Col-1, 0)) + strings.Repeat("^", width)
	if colorEnabled(w) {
		return caretStyle.Render(marks)
	}
	return marks
}

func sourceLine(path string, n int) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	lines := strings.Split(string(data), "\n")
	if n < 1 || n > len(lines) {
		return "", false
	}
	return strings.TrimRight(lines[n-1], "\r"), true
}

// writeOutput writes data to path, or to stdout when path is empty or "-".
func writeOutput(path string, data []byte, stdout io.Writer) error {
	if path == "" || path == "-" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func oneFile(fs *flag.FlagSet) (string, error) {
	if fs.NArg() != 1 {
		return "", fmt.Errorf("%s requires a single layout file", fs.Name())
	}
	return fs.Arg(0), nil
}
