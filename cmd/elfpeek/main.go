// Command elfpeek inspects ELF64 little-endian objects.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/elfpeek/internal/cli"
)

func main() {
	root := cli.NewRootCommand(cli.WithMain(main))
	err := root.Execute()
	if err != nil && !cli.IsReported(err) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(cli.GetExitCode(err))
}
