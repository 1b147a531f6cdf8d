// Package aot ahead-of-time compiles a lowered BF program into a native
// executable: it writes the embedded runtime.c and a generated prog.s into
// a target directory and shells out to a system C compiler to link them.
package aot

import (
	_ "embed"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/lcox74/catbf/internal/codegen/gas"
	"github.com/lcox74/catbf/internal/ir"
)

func init() {
	log.SetFlags(0)
}

//go:embed runtime.c
var runtimeSource []byte

// TargetSupported reports whether Compile can produce a runnable binary on
// this platform: the generated assembly is x86_64 Linux GAS syntax.
const TargetSupported = runtime.GOOS == "linux" && runtime.GOARCH == "amd64"

// UnsupportedTargetError is returned by Compile when TargetSupported is
// false.
type UnsupportedTargetError struct{}

func (UnsupportedTargetError) Error() string {
	return "aot: ahead-of-time compilation is unsupported on this platform"
}

// IOError wraps a failure touching one of the files Compile manages.
type IOError struct {
	Path  string
	Cause error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Cause)
}

func (e *IOError) Unwrap() error {
	return e.Cause
}

// Compile writes runtime.c and prog.s into dir (creating it if needed) and
// links them with the system "cc" into dir/prog.
func Compile(p ir.Program, dir string) error {
	if !TargetSupported {
		return UnsupportedTargetError{}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &IOError{Path: dir, Cause: err}
	}

	runtimePath := filepath.Join(dir, "runtime.c")
	if err := os.WriteFile(runtimePath, runtimeSource, 0o644); err != nil {
		return &IOError{Path: runtimePath, Cause: err}
	}

	log.Print("assembling...")
	progPath := filepath.Join(dir, "prog.s")
	asm := gas.NewGenerator(p).Generate()
	if err := os.WriteFile(progPath, []byte(asm), 0o644); err != nil {
		return &IOError{Path: progPath, Cause: err}
	}

	log.Print("linking...")
	outPath := filepath.Join(dir, "prog")
	cmd := exec.Command("cc", runtimePath, progPath, "-o", outPath)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return &IOError{Path: outPath, Cause: err}
	}

	return nil
}
