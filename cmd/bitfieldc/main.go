// Command bitfieldc compiles bit-field layout files into Go accessors, WIT
// records, wasm accessor modules and register maps.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/wippyai/bitfield"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type command struct {
	run   func(args []string, stdout, stderr io.Writer) error
	name  string
	usage string
}

var commands = []command{
	{name: "gen", run: cmdGen, usage: "gen [-config file] [-o dir] [-targets go,wit,...] [-check] <file>..."},
	{name: "check", run: cmdCheck, usage: "check <file>..."},
	{name: "wit", run: cmdWIT, usage: "wit [-o file] <file>"},
	{name: "wasm", run: cmdWasm, usage: "wasm [-layout name] -o <file.wasm> <file>"},
	{name: "doc", run: cmdDoc, usage: "doc [-html] [-o file] <file>"},
	{name: "eval", run: cmdEval, usage: "eval [-layout name] [-raw word] [-wasm] <file> [field=value | field | !field]..."},
	{name: "explore", run: cmdExplore, usage: "explore [-layout name] <file>"},
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		usage(stderr)
		return 2
	}

	switch args[0] {
	case "version":
		fmt.Fprintln(stdout, bitfield.Version())
		return 0
	case "help", "-h", "--help":
		usage(stdout)
		return 0
	}

	for _, c := range commands {
		if c.name != args[0] {
			continue
		}
		err := c.run(args[1:], stdout, stderr)
		switch {
		case err == nil:
			return 0
		case errors.Is(err, flag.ErrHelp):
			return 0
		case err != errDrift:
			report(stderr, err)
		}
		return 1
	}

	fmt.Fprintln(stderr, "unknown command:", args[0])
	usage(stderr)
	return 2
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "bitfieldc - bit-field layout compiler")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	for _, c := range commands {
		fmt.Fprintln(w, "  bitfieldc "+c.usage)
	}
	fmt.Fprintln(w, "  bitfieldc version")
}
