//go:build linux && amd64

package runtime

import (
	"fmt"
	"io"
	"unsafe"

	"golang.org/x/sys/unix"
)

// TargetSupported reports whether this build can JIT-compile and run
// machine code directly, as opposed to only interpreting or AOT-compiling.
const TargetSupported = true

// Executable owns a page of mmap'd memory holding JITed x86_64 machine
// code, entered through callEntry as a SysV function of signature
// int8_t(uint64_t).
type Executable struct {
	page []byte
}

// NewExecutable copies code into a freshly mmap'd, page-aligned buffer and
// switches it from writable to executable. code must already have every
// relative displacement resolved.
func NewExecutable(code []byte) (*Executable, error) {
	page, err := unix.Mmap(-1, 0, len(code), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("runtime: allocating executable memory: %w", err)
	}
	copy(page, code)
	if err := unix.Mprotect(page, unix.PROT_READ|unix.PROT_EXEC); err != nil {
		_ = unix.Munmap(page)
		return nil, fmt.Errorf("runtime: marking memory executable: %w", err)
	}
	return &Executable{page: page}, nil
}

// Run invokes the compiled program against input and output, blocking
// until the program halts or a runtime call fails.
func (e *Executable) Run(input io.Reader, output io.Writer) error {
	iface := NewInterface(input, output)
	handle := Register(iface)
	defer Unregister(handle)

	status := callEntry(unsafe.Pointer(&e.page[0]), handle)
	if status < 0 {
		return fmt.Errorf("runtime: program exited after a failed tape allocation or I/O call")
	}
	return nil
}

// Close releases the executable page. The Executable must not be used
// afterward.
func (e *Executable) Close() error {
	if e.page == nil {
		return nil
	}
	err := unix.Munmap(e.page)
	e.page = nil
	return err
}
