package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// WriteText renders r in the elfinfo layout: one block per selected part,
// tab-indented, fixed-width hex columns, a blank line after each block.
func WriteText(w io.Writer, r *Report) error {
	bw := bufio.NewWriter(w)
	want := r.Selected.Expand()
	if !r.Selected.Any() {
		want.FileHeader = true
	}

	if want.FileHeader && r.Header != nil {
		h := r.Header
		fmt.Fprintln(bw, "ELF file header:")
		fmt.Fprintf(bw, "\tClass: %s\n", h.Class)
		fmt.Fprintf(bw, "\tMachine: 0x%02x\n", h.MachineID)
		fmt.Fprintf(bw, "\tData: %s\n", h.Data)
		fmt.Fprintf(bw, "\tType: %s\n", h.Type)
		fmt.Fprintf(bw, "\tEntrypoint: 0x%08x\n", h.Entry)
		fmt.Fprintln(bw)
	}

	if want.SectionHeaders {
		fmt.Fprintln(bw, "ELF section headers:")
		row(bw, "\t%-24s %-16s %-16s %-16s %s", "Name", "Type", "Offset", "Address", "Size")
		for _, s := range r.Sections {
			row(bw, "\t%-24s %016x %016x %016x %016x", s.Name, s.TypeID, s.Offset, s.Address, s.Size)
		}
		fmt.Fprintln(bw)
	}

	if want.ProgramHeaders {
		fmt.Fprintln(bw, "ELF program headers:")
		row(bw, "\t%-24s %-16s %-16s %-16s %-16s %s", "Type", "Offset", "Start", "Mem Size", "File Size", "Flags")
		for _, s := range r.Segments {
			label := fmt.Sprintf("%s (0x%02x)", s.Type, s.TypeID)
			row(bw, "\t%-24s 0x%014x 0x%014x 0x%014x 0x%014x [%s]",
				label, s.Offset, s.Vaddr, s.Memsz, s.Filesz, strings.Join(s.Flags, " "))
		}
		fmt.Fprintln(bw)
	}

	if want.Symbols {
		if r.Symbols == nil {
			fmt.Fprintln(bw, NoteNoSymbols)
		} else {
			fmt.Fprintf(bw, "Symbol table (%s):\n", r.Symbols.Section)
			row(bw, "\t%-4s %-32s %-10s %-6s %s", "Num", "Name", "Value", "Size", "Type")
			writeSymbols(bw, r.Symbols.Symbols)
		}
		fmt.Fprintln(bw)
	}

	if want.DynSyms {
		if r.DynSyms == nil {
			fmt.Fprintln(bw, NoteNoDynSyms)
		} else {
			fmt.Fprintf(bw, "Dynamic linking symbol table (%s):\n", r.DynSyms.Section)
			writeSymbols(bw, r.DynSyms.Symbols)
		}
		fmt.Fprintln(bw)
	}

	if want.Relocations {
		if len(r.Relocations) == 0 {
			fmt.Fprintln(bw, NoteNoRelocations)
			fmt.Fprintln(bw)
		}
		for _, rs := range r.Relocations {
			fmt.Fprintf(bw, "Relocation section (%s @ 0x%06x):\n", rs.Name, rs.Offset)
			row(bw, "\t%-16s %-16s %-16s %-24s %s", "Offset", "Info", "Addend", "Type", "Symbol Name")
			for _, e := range rs.Entries {
				// Negative addends print as their two's complement.
				row(bw, "\t%016x %016x %016x %-24s %s", e.Offset, e.Info, uint64(e.Addend), e.Type, e.SymbolName)
			}
			fmt.Fprintln(bw)
		}
	}

	if want.Dynamic {
		if r.Dynamic == nil {
			fmt.Fprintln(bw, NoteNoDynamic)
		} else {
			fmt.Fprintf(bw, "Dynamic linking information (%s):\n", r.Dynamic.Section)
			row(bw, "\t%-16s %s", "Tag", "Value")
			for _, d := range r.Dynamic.Entries {
				row(bw, "\t%-16s %016x", d.Tag, d.Value)
			}
		}
		fmt.Fprintln(bw)
	}

	if want.SectionMapping {
		fmt.Fprintln(bw, "Section-to-segment mapping:")
		fmt.Fprintln(bw, "\tSegment Sections")
		for _, m := range r.Mapping {
			row(bw, "\t %6d: %s", m.Segment, strings.Join(m.Sections, " "))
		}
		fmt.Fprintln(bw)
	}

	return bw.Flush()
}

func writeSymbols(w io.Writer, syms []Symbol) {
	for _, s := range syms {
		row(w, "\t%3d: %-32s 0x%08x %6d %s", s.Num, s.Name, s.Value, s.Size, s.Type)
	}
}

// row prints one table line without trailing padding.
func row(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, strings.TrimRight(fmt.Sprintf(format, args...), " "))
}
