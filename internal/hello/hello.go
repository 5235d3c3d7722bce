// Package hello is the memory-layout demonstration: it greets, reports where
// its entry procedure lives, and reads three bytes past the fixed start
// address of the process image.
package hello

import (
	"fmt"
	"io"

	"github.com/roach88/elfpeek/internal/rawmem"
)

// startOffsets are the offsets past the start address that Main prints.
// On a non-PIE ELF image they land on "ELF" in the header's magic.
var startOffsets = [3]uintptr{1, 2, 3}

// StartOffsets returns a copy of the offsets past the start address that
// Main reads, in print order.
func StartOffsets() []uintptr {
	return append([]uintptr(nil), startOffsets[:]...)
}

// Program holds what the entry procedure needs from its environment.
type Program struct {
	Out io.Writer

	// MainAddr is the code address of the entry procedure.
	MainAddr uintptr

	// Peek returns the byte at StartAddress+off. Nil means a raw read of
	// the running process via rawmem.
	Peek func(off uintptr) byte
}

// Foo writes the first greeter's token.
func (p *Program) Foo() {
	io.WriteString(p.Out, "foo")
}

// Bar writes the second greeter's token.
func (p *Program) Bar() {
	io.WriteString(p.Out, "bar")
}

// Main runs the demonstration and returns the process exit status. The
// start bytes are read only after everything before them has been written,
// so a fault leaves the earlier lines on the output.
func (p *Program) Main() int {
	io.WriteString(p.Out, "Hello World!\n")
	p.Foo()
	p.Bar()
	io.WriteString(p.Out, "\n")

	peek := p.Peek
	if peek == nil {
		peek = func(off uintptr) byte { return rawmem.Byte(rawmem.StartAddress + off) }
	}
	WriteLocation(p.Out, p.MainAddr, peek)

	return 0
}

// WriteLocation writes the "main is located at" line for mainAddr, then the
// "Start" line built from peek at each of StartOffsets. peek is not called
// until the address line has been written.
func WriteLocation(w io.Writer, mainAddr uintptr, peek func(off uintptr) byte) {
	// %#010x would count the prefix outside the width.
	fmt.Fprintf(w, "main is located at 0x%08x\n", mainAddr)

	start := []byte("Start ? ? ?\n")
	for i, off := range startOffsets {
		start[6+2*i] = peek(off)
	}
	w.Write(start)
}
