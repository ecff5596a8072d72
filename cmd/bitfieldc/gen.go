package main

import (
	"bytes"
	stderrors "errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/wippyai/bitfield/compiler"
	"github.com/wippyai/bitfield/layout"
	"github.com/wippyai/bitfield/render"
)

// errDrift reports that gen -check found stale outputs; the diff has
// already been printed.
var errDrift = stderrors.New("generated files are out of date")

// output is one file gen writes.
type output struct {
	path string
	data []byte
}

func cmdGen(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("gen", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var c common
	c.register(fs)
	outDir := fs.String("o", "", "output directory (default: config output_dir)")
	targets := fs.String("targets", "", "comma-separated targets (default: config targets)")
	pkg := fs.String("package", "", "Go package name (default: config package)")
	check := fs.Bool("check", false, "compare with files on disk instead of writing; exit 1 on drift")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("gen requires at least one layout file")
	}

	cfg, err := c.setup(stderr)
	if err != nil {
		return err
	}
	if *outDir != "" {
		cfg.OutputDir = *outDir
	}
	if *targets != "" {
		cfg.Targets = strings.Split(*targets, ",")
	}
	if *pkg != "" {
		cfg.Package = *pkg
	}

	reg := registry()
	var outputs []output
	for _, path := range fs.Args() {
		layouts, err := compiler.CompileFile(path)
		if err != nil {
			return err
		}
		opts := render.Options{Package: cfg.Package, Header: cfg.Header, Source: filepath.Base(path)}
		outs, err := renderAll(reg, cfg.Targets, path, cfg.OutputDir, layouts, opts)
		if err != nil {
			return err
		}
		outputs = append(outputs, outs...)
	}

	if *check {
		return checkDrift(outputs, stdout)
	}
	for _, o := range outputs {
		if err := os.MkdirAll(filepath.Dir(o.path), 0o755); err != nil {
			return fmt.Errorf("create %s: %w", filepath.Dir(o.path), err)
		}
		if err := os.WriteFile(o.path, o.data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", o.path, err)
		}
		fmt.Fprintln(stdout, "wrote", o.path)
	}
	return nil
}

// renderAll renders every target for one input file. Output names derive
// from the input: regs.bf becomes regs.go, regs.wit and so on. The wasm
// target renders one module per layout, named after the layout.
func renderAll(reg *render.Registry, targets []string, input, dir string, layouts []*layout.Layout, opts render.Options) ([]output, error) {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	var outs []output
	for _, name := range targets {
		name = strings.TrimSpace(name)
		t, err := reg.Lookup(name)
		if err != nil {
			return nil, err
		}
		if name == "wasm" {
			for _, l := range layouts {
				data, err := reg.Render(name, []*layout.Layout{l}, opts)
				if err != nil {
					return nil, err
				}
				outs = append(outs, output{
					path: filepath.Join(dir, base+"_"+strings.ToLower(l.Name)+t.Ext()),
					data: data,
				})
			}
			continue
		}
		data, err := reg.Render(name, layouts, opts)
		if err != nil {
			return nil, err
		}
		outs = append(outs, output{path: filepath.Join(dir, base+t.Ext()), data: data})
	}
	return outs, nil
}

func checkDrift(outputs []output, stdout io.Writer) error {
	drift := false
	for _, o := range outputs {
		current, err := os.ReadFile(o.path)
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("read %s: %w", o.path, err)
		}
		if bytes.Equal(current, o.data) {
			continue
		}
		drift = true
		if filepath.Ext(o.path) == ".wasm" {
			fmt.Fprintf(stdout, "%s: binary differs\n", o.path)
			continue
		}
		diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(string(current)),
			B:        difflib.SplitLines(string(o.data)),
			FromFile: o.path,
			ToFile:   o.path + " (generated)",
			Context:  3,
		})
		if err != nil {
			return err
		}
		fmt.Fprint(stdout, diff)
	}
	if drift {
		return errDrift
	}
	return nil
}

func cmdCheck(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var c common
	c.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("check requires at least one layout file")
	}
	if _, err := c.setup(stderr); err != nil {
		return err
	}
	for _, path := range fs.Args() {
		layouts, err := compiler.CompileFile(path)
		if err != nil {
			return err
		}
		for _, l := range layouts {
			fmt.Fprintf(stdout, "%s: %s ok (%d-bit, %d fields, default %#x)\n", path, l.Name, l.Width, len(l.Fields), l.Default.Big())
		}
	}
	return nil
}
