// Package rawmem is the process's only escape hatch for reading memory at a
// fixed numeric address.
//
// The reads here are valid only when the binary is non-PIE and loaded at its
// link address. Go's default linux/amd64 executable links its first PT_LOAD
// segment, which covers the ELF header, at StartAddress. A PIE build, a
// different GOARCH, or a cgo/external link may place nothing there, in which
// case a read faults and the runtime terminates the process. That outcome is
// expected; nothing in this package recovers from it.
package rawmem

import (
	"reflect"
	"unsafe"
)

// StartAddress is where a non-PIE linux/amd64 image maps its ELF header.
const StartAddress uintptr = 0x400000

// Byte dereferences addr as a single byte.
func Byte(addr uintptr) byte {
	return *(*byte)(unsafe.Pointer(addr))
}

// Bytes returns the byte at base+off for each offset, in order.
func Bytes(base uintptr, offsets ...uintptr) []byte {
	out := make([]byte, len(offsets))
	for i, off := range offsets {
		out[i] = Byte(base + off)
	}
	return out
}

// FuncAddr returns the entry address of the function fn.
// It panics if fn is not a func.
func FuncAddr(fn any) uintptr {
	return reflect.ValueOf(fn).Pointer()
}
