package main

import (
	"flag"
	"fmt"
	"io"
	"path/filepath"

	"github.com/wippyai/bitfield/compiler"
	"github.com/wippyai/bitfield/layout"
	"github.com/wippyai/bitfield/render"
)

func cmdWIT(args []string, stdout, stderr io.Writer) error {
	return emit("wit", args, stdout, stderr)
}

func cmdDoc(args []string, stdout, stderr io.Writer) error {
	return emit("doc", args, stdout, stderr)
}

func cmdWasm(args []string, stdout, stderr io.Writer) error {
	return emit("wasm", args, stdout, stderr)
}

// emit renders one file with a single target and writes it to -o or stdout.
func emit(name string, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	var c common
	c.register(fs)
	out := fs.String("o", "", "output file (default: stdout)")
	var html *bool
	var layoutName *string
	switch name {
	case "doc":
		html = fs.Bool("html", false, "render HTML instead of Markdown")
	case "wasm":
		layoutName = fs.String("layout", "", "layout to compile (required when the file declares several)")
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	path, err := oneFile(fs)
	if err != nil {
		return err
	}
	if name == "wasm" && (*out == "" || *out == "-") {
		return fmt.Errorf("wasm writes a binary module; give an output file with -o")
	}

	cfg, err := c.setup(stderr)
	if err != nil {
		return err
	}
	layouts, err := compiler.CompileFile(path)
	if err != nil {
		return err
	}

	target := name
	switch name {
	case "doc":
		target = "md"
		if *html {
			target = "html"
		}
	case "wasm":
		l, err := pick(layouts, *layoutName)
		if err != nil {
			return err
		}
		layouts = []*layout.Layout{l}
	}

	data, err := registry().Render(target, layouts, render.Options{
		Package: cfg.Package,
		Header:  cfg.Header,
		Source:  filepath.Base(path),
	})
	if err != nil {
		return err
	}
	return writeOutput(*out, data, stdout)
}
