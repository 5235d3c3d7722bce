package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/elfpeek/internal/hello"
	"github.com/roach88/elfpeek/internal/mapfile"
	"github.com/roach88/elfpeek/internal/policy"
	"github.com/roach88/elfpeek/internal/rawmem"
	"github.com/roach88/elfpeek/internal/report"
)

// LayoutResult is the structured output of the layout command.
type LayoutResult struct {
	Executable   string `json:"executable" yaml:"executable"`
	MainAddress  uint64 `json:"main_address" yaml:"main_address"`
	StartAddress uint64 `json:"start_address" yaml:"start_address"`
	StartBytes   string `json:"start_bytes" yaml:"start_bytes"`
	FileBytes    string `json:"file_bytes" yaml:"file_bytes"`
	Match        bool   `json:"match" yaml:"match"`
}

// NewLayoutCommand creates the layout command.
func NewLayoutCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "layout",
		Short: "Show where this process maps its own code and ELF header",
		Long: `Print the address of elfpeek's main function and the three bytes at
0x400000+1..3 of the running process.

The executable is first checked against the built-in nonpie policy, so the
fixed-address read only happens when the image is linked at 0x400000. On a
Go default linux/amd64 build the bytes are "E L F".`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLayout(rootOpts, cmd)
		},
	}
}

func runLayout(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	exe, err := executablePath()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, "failed to locate executable", err)
	}

	ins, cerr := inspect(exe, report.Sections{FileHeader: true, ProgramHeaders: true})
	if cerr != nil {
		return cerr.fail(formatter, ExitCommandError)
	}

	pol, err := policy.Builtin("nonpie")
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodePolicy, "failed to load policy", err)
	}
	if res := pol.Check(ins.Report); !res.Passed {
		slog.Debug("executable fails nonpie", "path", exe, "violations", len(res.Violations))
		return formatter.Fail(ExitFailure, ErrCodeNotMapped,
			fmt.Sprintf("%s is not linked at 0x%x", exe, rawmem.StartAddress), nil)
	}

	fileBytes, err := headerBytes(exe)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, "failed to read executable", err)
	}

	offsets := hello.StartOffsets()
	mainFn := opts.MainFunc
	if mainFn == nil {
		mainFn = runLayout
	}
	res := LayoutResult{
		Executable:   exe,
		MainAddress:  uint64(rawmem.FuncAddr(mainFn)),
		StartAddress: uint64(rawmem.StartAddress),
		StartBytes:   string(rawmem.Bytes(rawmem.StartAddress, offsets...)),
		FileBytes:    string(fileBytes),
	}
	res.Match = res.StartBytes == res.FileBytes
	formatter.VerboseLog("Executable: %s", exe)

	if formatter.Structured() {
		return formatter.Success(res)
	}

	hello.WriteLocation(cmd.OutOrStdout(), uintptr(res.MainAddress), peekRead(offsets, []byte(res.StartBytes)))
	return nil
}

// headerBytes returns the bytes of the executable file at the offsets the
// in-memory read uses.
func headerBytes(path string) ([]byte, error) {
	m, err := mapfile.Open(path)
	if err != nil {
		return nil, err
	}
	defer m.Close()

	b := m.Bytes()
	offsets := hello.StartOffsets()
	out := make([]byte, len(offsets))
	for i, off := range offsets {
		if int(off) >= len(b) {
			return nil, fmt.Errorf("%s: offset %d past end of file", path, off)
		}
		out[i] = b[off]
	}
	return out, nil
}

// peekRead serves bytes already read at offsets, matched by position.
func peekRead(offsets []uintptr, read []byte) func(off uintptr) byte {
	byOffset := make(map[uintptr]byte, len(offsets))
	for i, off := range offsets {
		byOffset[off] = read[i]
	}
	return func(off uintptr) byte { return byOffset[off] }
}
