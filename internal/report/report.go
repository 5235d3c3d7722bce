// Package report turns a parsed ELF object into a serialisable summary.
//
// Build selects the parts named by a Sections value and resolves every
// name it can (section names, symbol names, relocation targets). The
// result renders as text in the classic elfinfo layout, or as JSON or
// YAML for tooling. Parts that the object does not have produce a note
// rather than an error.
package report

import (
	"errors"
	"fmt"

	"github.com/roach88/elfpeek/internal/elf"
)

// Notes emitted for parts the object lacks.
const (
	NoteNoSymbols     = "There is no symbol table in this ELF object."
	NoteNoDynSyms     = "There is no dynamic symbol table in this ELF object."
	NoteNoRelocations = "There are no relocations in this ELF object."
	NoteNoDynamic     = "There is no dynamic section in this ELF object."
)

// Report is the inspection result for one object.
type Report struct {
	Selected    Sections            `json:"selected" yaml:"selected"`
	Header      *Header             `json:"header,omitempty" yaml:"header,omitempty"`
	Sections    []Section           `json:"sections,omitempty" yaml:"sections,omitempty"`
	Segments    []Segment           `json:"segments,omitempty" yaml:"segments,omitempty"`
	Symbols     *SymbolTable        `json:"symbols,omitempty" yaml:"symbols,omitempty"`
	DynSyms     *SymbolTable        `json:"dyn_syms,omitempty" yaml:"dyn_syms,omitempty"`
	Relocations []RelocationSection `json:"relocations,omitempty" yaml:"relocations,omitempty"`
	Dynamic     *DynamicSection     `json:"dynamic,omitempty" yaml:"dynamic,omitempty"`
	Mapping     []SegmentMapping    `json:"mapping,omitempty" yaml:"mapping,omitempty"`
	Notes       []string            `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Header summarises the file header.
type Header struct {
	Class     string `json:"class" yaml:"class"`
	Data      string `json:"data" yaml:"data"`
	Type      string `json:"type" yaml:"type"`
	Machine   string `json:"machine" yaml:"machine"`
	MachineID uint16 `json:"machine_id" yaml:"machine_id"`
	Entry     uint64 `json:"entry" yaml:"entry"`
}

// Section is one section header with its resolved name.
type Section struct {
	Name    string `json:"name" yaml:"name"`
	Type    string `json:"type" yaml:"type"`
	TypeID  uint32 `json:"type_id" yaml:"type_id"`
	Offset  uint64 `json:"offset" yaml:"offset"`
	Address uint64 `json:"address" yaml:"address"`
	Size    uint64 `json:"size" yaml:"size"`
}

// Segment is one program header.
type Segment struct {
	Type     string   `json:"type" yaml:"type"`
	TypeID   uint32   `json:"type_id" yaml:"type_id"`
	Offset   uint64   `json:"offset" yaml:"offset"`
	Vaddr    uint64   `json:"vaddr" yaml:"vaddr"`
	Memsz    uint64   `json:"memsz" yaml:"memsz"`
	Filesz   uint64   `json:"filesz" yaml:"filesz"`
	Flags    []string `json:"flags" yaml:"flags"`
	FlagBits uint32   `json:"flag_bits" yaml:"flag_bits"`
}

// SymbolTable is a decoded symbol table section.
type SymbolTable struct {
	Section string   `json:"section" yaml:"section"`
	Symbols []Symbol `json:"symbols" yaml:"symbols"`
}

// Symbol is one symbol table entry.
type Symbol struct {
	Num   int    `json:"num" yaml:"num"`
	Name  string `json:"name" yaml:"name"`
	Value uint64 `json:"value" yaml:"value"`
	Size  uint64 `json:"size" yaml:"size"`
	Type  string `json:"type" yaml:"type"`
	Bind  string `json:"bind" yaml:"bind"`
}

// RelocationSection is one SHT_RELA section.
type RelocationSection struct {
	Name    string       `json:"name" yaml:"name"`
	Offset  uint64       `json:"offset" yaml:"offset"`
	Entries []Relocation `json:"entries" yaml:"entries"`
}

// Relocation is one Elf64_Rela entry with its symbol resolved.
type Relocation struct {
	Offset     uint64 `json:"offset" yaml:"offset"`
	Info       uint64 `json:"info" yaml:"info"`
	Addend     int64  `json:"addend" yaml:"addend"`
	Type       string `json:"type" yaml:"type"`
	SymbolName string `json:"symbol_name" yaml:"symbol_name"`
}

// DynamicSection is the object's dynamic table.
type DynamicSection struct {
	Section string         `json:"section" yaml:"section"`
	Entries []DynamicEntry `json:"entries" yaml:"entries"`
}

// DynamicEntry is one dynamic table entry.
type DynamicEntry struct {
	Tag   string `json:"tag" yaml:"tag"`
	TagID uint64 `json:"tag_id" yaml:"tag_id"`
	Value uint64 `json:"value" yaml:"value"`
}

// SegmentMapping lists the sections whose address falls inside a segment.
type SegmentMapping struct {
	Segment  int      `json:"segment" yaml:"segment"`
	Sections []string `json:"sections" yaml:"sections"`
}

// Build inspects f and returns the parts selected by sel. With an empty
// selection only the file header is reported.
func Build(f *elf.File, sel Sections) (*Report, error) {
	if !sel.Any() {
		sel.FileHeader = true
	}
	want := sel.Expand()
	r := &Report{Selected: sel}

	// The header is validated even when not displayed, as every other part
	// depends on it describing an object this tool understands.
	hdr, err := f.Header()
	if err != nil {
		return nil, err
	}
	if want.FileHeader {
		r.Header = &Header{
			Class:     hdr.Class.String(),
			Data:      hdr.Data.String(),
			Type:      hdr.Type.String(),
			Machine:   hdr.Machine.String(),
			MachineID: uint16(hdr.Machine),
			Entry:     hdr.Entry,
		}
	}

	if want.SectionHeaders {
		r.Sections = buildSections(f)
	}
	if want.ProgramHeaders {
		r.Segments = buildSegments(f)
	}
	if want.Symbols {
		if r.Symbols, err = buildSymbols(f, elf.SectionSymtab); err != nil {
			return nil, fmt.Errorf("symbol table: %w", err)
		}
		if r.Symbols == nil {
			r.Notes = append(r.Notes, NoteNoSymbols)
		}
	}
	if want.DynSyms {
		if r.DynSyms, err = buildSymbols(f, elf.SectionDynsym); err != nil {
			return nil, fmt.Errorf("dynamic symbol table: %w", err)
		}
		if r.DynSyms == nil {
			r.Notes = append(r.Notes, NoteNoDynSyms)
		}
	}
	if want.Relocations {
		if r.Relocations, err = buildRelocations(f, hdr.Machine); err != nil {
			return nil, fmt.Errorf("relocations: %w", err)
		}
		if len(r.Relocations) == 0 {
			r.Notes = append(r.Notes, NoteNoRelocations)
		}
	}
	if want.Dynamic {
		if r.Dynamic, err = buildDynamic(f); err != nil {
			return nil, fmt.Errorf("dynamic section: %w", err)
		}
		if r.Dynamic == nil {
			r.Notes = append(r.Notes, NoteNoDynamic)
		}
	}
	if want.SectionMapping {
		r.Mapping = buildMapping(f)
	}
	return r, nil
}

func buildSections(f *elf.File) []Section {
	out := make([]Section, 0, len(f.Sections()))
	for i := range f.Sects {
		sh := &f.Sects[i]
		out = append(out, Section{
			Name:    f.SectionName(sh),
			Type:    sh.Type.String(),
			TypeID:  uint32(sh.Type),
			Offset:  sh.Offset,
			Address: sh.Addr,
			Size:    sh.Size,
		})
	}
	return out
}

func buildSegments(f *elf.File) []Segment {
	if len(f.Segments()) == 0 {
		return nil
	}
	out := make([]Segment, 0, len(f.Segments()))
	for _, ph := range f.Segments() {
		out = append(out, Segment{
			Type:     ph.Type.String(),
			TypeID:   uint32(ph.Type),
			Offset:   ph.Offset,
			Vaddr:    ph.Vaddr,
			Memsz:    ph.Memsz,
			Filesz:   ph.Filesz,
			Flags:    flagNames(ph.Flags),
			FlagBits: uint32(ph.Flags),
		})
	}
	return out
}

func flagNames(fl elf.SegmentFlags) []string {
	names := []string{}
	if fl&elf.FlagRead != 0 {
		names = append(names, "R")
	}
	if fl&elf.FlagWrite != 0 {
		names = append(names, "W")
	}
	if fl&elf.FlagExecute != 0 {
		names = append(names, "E")
	}
	return names
}

// buildSymbols decodes the first section of type t. A missing section
// yields nil with no error.
func buildSymbols(f *elf.File, t elf.SectionType) (*SymbolTable, error) {
	sh := f.FindSection(t)
	if sh == nil {
		return nil, nil
	}
	tab, err := f.SymbolTable(sh)
	if errors.Is(err, elf.ErrEmptyTable) {
		return &SymbolTable{Section: f.SectionName(sh), Symbols: []Symbol{}}, nil
	}
	if err != nil {
		return nil, err
	}

	out := &SymbolTable{Section: f.SectionName(sh), Symbols: make([]Symbol, 0, tab.Len())}
	for i, sym := range tab.Symbols() {
		out.Symbols = append(out.Symbols, Symbol{
			Num:   i,
			Name:  sym.Name,
			Value: sym.Value,
			Size:  sym.Size,
			Type:  sym.Type().String(),
			Bind:  sym.Bind().String(),
		})
	}
	return out, nil
}

func buildRelocations(f *elf.File, m elf.Machine) ([]RelocationSection, error) {
	var out []RelocationSection
	for _, sh := range f.SectionsOfType(elf.SectionRela) {
		name := f.SectionName(sh)
		tab, err := f.RelaTable(sh)
		if errors.Is(err, elf.ErrEmptyTable) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}

		// sh_link names the symbol table the entries index into; 0 means
		// the entries carry no symbols.
		var syms *elf.SymbolTable
		if sh.Link != 0 {
			link, err := f.SectionByIndex(int(sh.Link))
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			if syms, err = f.SymbolTable(link); err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
		}

		rs := RelocationSection{Name: name, Offset: sh.Offset, Entries: make([]Relocation, 0, tab.Len())}
		for _, rel := range tab.Entries() {
			var symName string
			if syms != nil {
				sym, err := syms.Symbol(int(rel.Symbol()))
				if err != nil {
					return nil, fmt.Errorf("%s: relocation at 0x%x: %w", name, rel.Offset, err)
				}
				symName = sym.Name
			}
			rs.Entries = append(rs.Entries, Relocation{
				Offset:     rel.Offset,
				Info:       rel.Info,
				Addend:     rel.Addend,
				Type:       rel.Type().Name(m),
				SymbolName: symName,
			})
		}
		out = append(out, rs)
	}
	return out, nil
}

func buildDynamic(f *elf.File) (*DynamicSection, error) {
	sh := f.FindSection(elf.SectionDynamic)
	if sh == nil {
		return nil, nil
	}
	tab, err := f.DynamicTable(sh)
	if err != nil {
		return nil, err
	}
	out := &DynamicSection{Section: f.SectionName(sh), Entries: make([]DynamicEntry, 0, len(tab.Entries()))}
	for _, d := range tab.Entries() {
		out.Entries = append(out.Entries, DynamicEntry{
			Tag:   d.Tag.String(),
			TagID: uint64(d.Tag),
			Value: d.Value,
		})
	}
	return out, nil
}

func buildMapping(f *elf.File) []SegmentMapping {
	out := make([]SegmentMapping, 0, len(f.Progs))
	for i := range f.Progs {
		m := SegmentMapping{Segment: i, Sections: []string{}}
		for _, sh := range f.SectionsInSegment(&f.Progs[i]) {
			m.Sections = append(m.Sections, f.SectionName(sh))
		}
		out = append(out, m)
	}
	return out
}

// FirstLoad returns the first PT_LOAD segment in the report, if program
// headers were selected and one exists.
func (r *Report) FirstLoad() (Segment, bool) {
	for _, s := range r.Segments {
		if s.TypeID == uint32(elf.SegmentLoad) {
			return s, true
		}
	}
	return Segment{}, false
}
