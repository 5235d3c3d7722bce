// Command hello prints a greeting, the address of its own main function,
// and three bytes read from the fixed address where a non-PIE image maps
// its ELF header.
//
// Build it as a default (non-PIE) linux/amd64 executable:
//
//	go build -buildmode=exe ./cmd/hello
package main

import (
	"os"

	"github.com/roach88/elfpeek/internal/hello"
	"github.com/roach88/elfpeek/internal/rawmem"
)

// Static storage, never touched after initialisation.
var (
	myGlobal  int
	myGlobal2 int
)

func main() {
	p := &hello.Program{
		Out:      os.Stdout,
		MainAddr: rawmem.FuncAddr(main),
	}
	os.Exit(p.Main())
}
