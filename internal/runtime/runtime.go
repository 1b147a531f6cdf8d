//go:build linux && amd64

// Package runtime is the sysv64-callable bridge between JITed machine code
// and Go. The JIT emits raw absolute calls into six functions here, so each
// one must compile to a genuine C-ABI symbol -- something an ordinary Go
// function, compiled under Go's register-based ABIInternal, cannot
// guarantee. cgo's //export mechanism is the one place in the toolchain
// that produces such a symbol.
//
// Because a call from JITed code can only carry plain integer/pointer
// arguments, the *Interface a Run call works against is never passed to
// the generated code directly: a small integer handle stands in for it,
// and the real input/output pair lives in a process-wide registry keyed by
// that handle.
package runtime

/*
#include <stdlib.h>
#include <string.h>
#include <stdint.h>

// catbf_call_entry invokes a JITed code page as a genuine SysV function
// pointer, passing handle in rdi per the platform C calling convention.
// Entering through cgo this way -- rather than faking a Go func value --
// is what makes the JIT's "handle arrives in rdi" assumption true: Go's
// own ABIInternal passes the first argument in rax, not rdi.
static int8_t catbf_call_entry(void *entry, uint64_t handle) {
	int8_t (*fn)(uint64_t) = (int8_t (*)(uint64_t))entry;
	return fn(handle);
}
*/
import "C"

import (
	"io"
	"sync"
	"unsafe"
)

// Interface pairs the input and output streams a compiled program reads
// and writes through its Get/Put instructions.
type Interface struct {
	input  io.Reader
	output io.Writer
}

// NewInterface builds an Interface for a single Executable.Run call.
func NewInterface(input io.Reader, output io.Writer) *Interface {
	return &Interface{input: input, output: output}
}

var (
	registryMu sync.Mutex
	registry   = map[uint64]*Interface{}
	nextHandle uint64
)

// Register installs iface in the handle registry and returns the handle to
// pass into the JITed entry point's first argument register. The caller
// must call Unregister once the run completes.
func Register(iface *Interface) uint64 {
	registryMu.Lock()
	defer registryMu.Unlock()
	nextHandle++
	h := nextHandle
	registry[h] = iface
	return h
}

// Unregister removes a handle installed by Register.
func Unregister(handle uint64) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(registry, handle)
}

func lookup(handle uint64) *Interface {
	registryMu.Lock()
	defer registryMu.Unlock()
	return registry[handle]
}

// callEntry calls a JITed code page at entry as a C function taking one
// uint64 argument and returning an int8 status, using the platform's real
// calling convention rather than Go's.
func callEntry(entry unsafe.Pointer, handle uint64) int8 {
	return int8(C.catbf_call_entry(entry, C.uint64_t(handle)))
}

// catbfPut implements the "put" runtime call: write one byte to the
// interface's output. Returns 0 on success, -1 on any write error -- the
// JIT tests this with amd64.TestALWithAL / amd64.JsRel32.
//
//export catbfPut
func catbfPut(handle C.uint64_t, ch C.uint8_t) C.int8_t {
	iface := lookup(uint64(handle))
	if iface == nil {
		return -1
	}
	if _, err := iface.output.Write([]byte{byte(ch)}); err != nil {
		return -1
	}
	return 0
}

// catbfGet implements the "get" runtime call, using the two-state encoding
// the JIT expects in ax: (1<<8)|byte on a successful read, 0 at end of
// stream, -1 on any other read error.
//
//export catbfGet
func catbfGet(handle C.uint64_t) C.int16_t {
	iface := lookup(uint64(handle))
	if iface == nil {
		return -1
	}
	var buf [1]byte
	n, err := iface.input.Read(buf[:])
	if n == 0 {
		if err == io.EOF || err == nil {
			return 0
		}
		return -1
	}
	return C.int16_t((1 << 8) | int16(buf[0]))
}

// catbfCreateTape allocates the first zeroed tape chunk.
//
//export catbfCreateTape
func catbfCreateTape() unsafe.Pointer {
	return C.calloc(C.size_t(TapeChunkSize), 1)
}

// catbfDestroyTape releases a tape buffer allocated by catbfCreateTape or
// grown by catbfGrowNext/catbfGrowPrev.
//
//export catbfDestroyTape
func catbfDestroyTape(tapeStart unsafe.Pointer) {
	C.free(tapeStart)
}

// catbfGrowNext extends the tape by one chunk at the high end, zeroing the
// new chunk. Returns NULL on allocation failure.
//
//export catbfGrowNext
func catbfGrowNext(tapeStart unsafe.Pointer, tapeLen C.size_t) unsafe.Pointer {
	newLen := tapeLen + C.size_t(TapeChunkSize)
	newStart := C.realloc(tapeStart, newLen)
	if newStart == nil {
		return nil
	}
	dst := unsafe.Pointer(uintptr(newStart) + uintptr(tapeLen))
	C.memset(dst, 0, C.size_t(TapeChunkSize))
	return newStart
}

// catbfGrowPrev extends the tape by one chunk at the low end: it
// reallocates for the extra room, slides the existing bytes up by one
// chunk, then zeroes the freed low chunk. Returns NULL on allocation
// failure.
//
//export catbfGrowPrev
func catbfGrowPrev(tapeStart unsafe.Pointer, tapeLen C.size_t) unsafe.Pointer {
	newLen := tapeLen + C.size_t(TapeChunkSize)
	newStart := C.realloc(tapeStart, newLen)
	if newStart == nil {
		return nil
	}
	dst := unsafe.Pointer(uintptr(newStart) + uintptr(TapeChunkSize))
	C.memmove(dst, newStart, tapeLen)
	C.memset(newStart, 0, C.size_t(TapeChunkSize))
	return newStart
}
