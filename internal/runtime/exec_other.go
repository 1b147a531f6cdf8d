//go:build !(linux && amd64)

package runtime

import (
	"errors"
	"io"
)

// TargetSupported reports whether this build can JIT-compile and run
// machine code directly. JIT compilation emits raw x86_64 System V ABI
// machine code and relies on mmap/mprotect, so it is only available on
// linux/amd64.
const TargetSupported = false

// Executable is a stand-in on platforms without JIT support. Every
// Executable is unreachable: NewExecutable always fails.
type Executable struct{}

var errUnsupportedTarget = errors.New("runtime: just-in-time compilation is unsupported on this platform")

// NewExecutable always fails on unsupported platforms.
func NewExecutable(code []byte) (*Executable, error) {
	return nil, errUnsupportedTarget
}

// Run always fails on unsupported platforms.
func (e *Executable) Run(input io.Reader, output io.Writer) error {
	return errUnsupportedTarget
}

// Close is a no-op on unsupported platforms.
func (e *Executable) Close() error {
	return nil
}

// FuncAddrs mirrors the linux/amd64 build's type so callers can build
// against this package on any platform. Its fields are meaningless here.
type FuncAddrs struct {
	CreateTape  uint64
	DestroyTape uint64
	GrowNext    uint64
	GrowPrev    uint64
	Get         uint64
	Put         uint64
}

// Addresses returns a zero FuncAddrs. Callers must check TargetSupported
// before relying on it.
func Addresses() FuncAddrs {
	return FuncAddrs{}
}
