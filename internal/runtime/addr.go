//go:build linux && amd64

package runtime

/*
#include "_cgo_export.h"

static void *catbf_create_tape_addr(void)  { return (void *) catbfCreateTape; }
static void *catbf_destroy_tape_addr(void) { return (void *) catbfDestroyTape; }
static void *catbf_grow_next_addr(void)    { return (void *) catbfGrowNext; }
static void *catbf_grow_prev_addr(void)    { return (void *) catbfGrowPrev; }
static void *catbf_get_addr(void)          { return (void *) catbfGet; }
static void *catbf_put_addr(void)          { return (void *) catbfPut; }
*/
import "C"

// FuncAddrs holds the runtime-image addresses of the six sysv64 bridge
// functions, ready to be embedded as movabs immediates in JITed code.
type FuncAddrs struct {
	CreateTape  uint64
	DestroyTape uint64
	GrowNext    uint64
	GrowPrev    uint64
	Get         uint64
	Put         uint64
}

// Addresses returns the current process's addresses for the six exported
// bridge functions. These never change for the lifetime of the process, so
// callers may cache the result.
func Addresses() FuncAddrs {
	return FuncAddrs{
		CreateTape:  uint64(uintptr(C.catbf_create_tape_addr())),
		DestroyTape: uint64(uintptr(C.catbf_destroy_tape_addr())),
		GrowNext:    uint64(uintptr(C.catbf_grow_next_addr())),
		GrowPrev:    uint64(uintptr(C.catbf_grow_prev_addr())),
		Get:         uint64(uintptr(C.catbf_get_addr())),
		Put:         uint64(uintptr(C.catbf_put_addr())),
	}
}
