// Command catbf parses, compiles, and runs BF programs: by default it
// interprets the program against the packed serialized.Program
// representation; -j/-J additionally just-in-time compile it to x86_64
// machine code, and -o ahead-of-time compiles it to a native executable.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lcox74/catbf/internal/codegen/aot"
	"github.com/lcox74/catbf/internal/ir"
	"github.com/lcox74/catbf/internal/jit"
	"github.com/lcox74/catbf/internal/serialized"
	"github.com/lcox74/catbf/internal/source"
	"github.com/lcox74/catbf/internal/tape"
	"github.com/lcox74/catbf/internal/vm"
)

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func main() {
	fs := flag.NewFlagSet("catbf", flag.ContinueOnError)

	var printIR bool
	fs.BoolVar(&printIR, "p", false, "print the lowered IR instead of running it")
	fs.BoolVar(&printIR, "print-ir", false, "print the lowered IR instead of running it")

	var compileTo string
	fs.StringVar(&compileTo, "o", "", "ahead-of-time compile into `dir` instead of running")
	fs.StringVar(&compileTo, "compile-to", "", "ahead-of-time compile into `dir` instead of running")

	var useJIT bool
	fs.BoolVar(&useJIT, "j", false, "just-in-time compile and run, falling back to the interpreter if unsupported")
	fs.BoolVar(&useJIT, "jit", false, "just-in-time compile and run, falling back to the interpreter if unsupported")

	var forceJIT bool
	fs.BoolVar(&forceJIT, "J", false, "just-in-time compile and run, failing if unsupported")
	fs.BoolVar(&forceJIT, "force-jit", false, "just-in-time compile and run, failing if unsupported")

	var tapeSize int
	fs.IntVar(&tapeSize, "s", 65536, "use a fixed tape of `n` bytes instead of a growing one")
	fs.IntVar(&tapeSize, "tape-size", 65536, "use a fixed tape of `n` bytes instead of a growing one")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: catbf [options] <file>")
		fs.PrintDefaults()
	}
	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(1)
	}

	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(1)
	}
	if useJIT && forceJIT {
		fail("catbf: -j/--jit and -J/--force-jit are mutually exclusive")
	}

	var tapeSizeSet bool
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "s" || f.Name == "tape-size" {
			tapeSizeSet = true
		}
	})

	path := filepath.Clean(fs.Arg(0))
	src, err := os.ReadFile(path)
	if err != nil {
		fail("catbf: %v", err)
	}

	program, err := ir.Parse(source.NewCursor(bytes.NewReader(src)))
	if err != nil {
		fail("catbf: %v", err)
	}

	switch {
	case printIR:
		fmt.Print(ir.Dump(program))

	case compileTo != "":
		if err := aot.Compile(program, compileTo); err != nil {
			fail("catbf: %v", err)
		}

	case forceJIT && !jit.TargetSupported:
		fail("catbf: %v", jit.UnsupportedTargetError{})

	case (useJIT || forceJIT) && jit.TargetSupported:
		exe, err := jit.Compile(program)
		if err != nil {
			fail("catbf: %v", err)
		}
		defer exe.Close()
		if err := exe.Run(os.Stdin, os.Stdout); err != nil {
			fail("catbf: %v", err)
		}

	default:
		packed, err := serialized.Parse(source.NewCursor(bytes.NewReader(src)))
		if err != nil {
			fail("catbf: %v", err)
		}

		m := vm.New(
			vm.WithTape(newTape(tapeSize, tapeSizeSet)),
			vm.WithInput(os.Stdin),
			vm.WithOutput(os.Stdout),
		)
		if err := m.RunSerialized(packed); err != nil {
			fail("catbf: %v", err)
		}
	}
}

// newTape returns a growing tape unless -s/--tape-size was explicitly
// given on the command line with a positive size, in which case it returns
// a fixed tape of the requested size.
func newTape(size int, sizeSet bool) tape.Tape {
	if !sizeSet || size <= 0 {
		return tape.NewGrowingTape()
	}
	return tape.NewFixedTape(size)
}
