// Package elftest synthesises small ELF64 little-endian objects for tests.
package elftest

import (
	"bytes"
	"encoding/binary"
)

// Section describes one section to emit. Name and Data are laid out by the
// builder; Offset is assigned when the object is built.
type Section struct {
	Name    string
	Type    uint32
	Flags   uint64
	Addr    uint64
	Data    []byte
	Size    uint64 // overrides len(Data) when non-zero (SHT_NOBITS)
	Link    uint32
	Info    uint32
	Align   uint64
	Entsize uint64
}

// Segment describes one program header, emitted verbatim.
type Segment struct {
	Type   uint32
	Flags  uint32
	Offset uint64
	Vaddr  uint64
	Filesz uint64
	Memsz  uint64
	Align  uint64
}

// Builder accumulates headers and sections. Section 0 is always the null
// section and the section-name table is always the last section.
type Builder struct {
	Type    uint16
	Machine uint16
	Entry   uint64

	segments []Segment
	sections []Section
}

// New returns a builder for an x86-64 executable.
func New() *Builder {
	return &Builder{Type: 2, Machine: 0x3e}
}

// AddSection appends s and returns its section index.
func (b *Builder) AddSection(s Section) int {
	b.sections = append(b.sections, s)
	return len(b.sections)
}

// AddSegment appends a program header.
func (b *Builder) AddSegment(p Segment) {
	b.segments = append(b.segments, p)
}

// Layout reports where Bytes places each part of the object.
type Layout struct {
	Phoff          uint64
	SectionOffsets []uint64 // indexed like the section header table, [0] is the null section
	Shoff          uint64
	Shstrndx       int
}

func align8(n uint64) uint64 { return (n + 7) &^ 7 }

// build lays out the object: file header, program headers, section data in
// insertion order (8-byte aligned), .shstrtab, then the section headers.
func (b *Builder) build() ([]byte, Layout) {
	names, nameOff := StringTable(b.sectionNames()...)
	all := append([]Section{{}}, b.sections...)
	all = append(all, Section{Name: ".shstrtab", Type: 3, Data: names, Align: 1})

	lay := Layout{Phoff: 64, SectionOffsets: make([]uint64, len(all)), Shstrndx: len(all) - 1}
	if len(b.segments) == 0 {
		lay.Phoff = 0
	}
	cursor := uint64(64 + 56*len(b.segments))
	for i := 1; i < len(all); i++ {
		cursor = align8(cursor)
		lay.SectionOffsets[i] = cursor
		cursor += uint64(len(all[i].Data))
	}
	lay.Shoff = align8(cursor)

	buf := &bytes.Buffer{}
	le := binary.LittleEndian
	w := func(v any) { _ = binary.Write(buf, le, v) }

	buf.Write([]byte{0x7f, 'E', 'L', 'F', 2, 1, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0})
	w(b.Type)
	w(b.Machine)
	w(uint32(1))
	w(b.Entry)
	w(lay.Phoff)
	w(lay.Shoff)
	w(uint32(0))
	w(uint16(64))
	w(uint16(56))
	w(uint16(len(b.segments)))
	w(uint16(64))
	w(uint16(len(all)))
	w(uint16(lay.Shstrndx))

	for _, p := range b.segments {
		w(p.Type)
		w(p.Flags)
		w(p.Offset)
		w(p.Vaddr)
		w(p.Vaddr)
		w(p.Filesz)
		w(p.Memsz)
		w(p.Align)
	}

	for i := 1; i < len(all); i++ {
		pad(buf, lay.SectionOffsets[i])
		buf.Write(all[i].Data)
	}
	pad(buf, lay.Shoff)

	for i, s := range all {
		size := uint64(len(s.Data))
		if s.Size != 0 {
			size = s.Size
		}
		var nameIdx uint32
		if i > 0 {
			nameIdx = nameOff[s.Name]
		}
		w(nameIdx)
		w(s.Type)
		w(s.Flags)
		w(s.Addr)
		w(lay.SectionOffsets[i])
		w(size)
		w(s.Link)
		w(s.Info)
		w(s.Align)
		w(s.Entsize)
	}
	return buf.Bytes(), lay
}

// Bytes returns the encoded object.
func (b *Builder) Bytes() []byte {
	out, _ := b.build()
	return out
}

// Layout returns the offsets Bytes uses.
func (b *Builder) Layout() Layout {
	_, lay := b.build()
	return lay
}

func (b *Builder) sectionNames() []string {
	names := make([]string, 0, len(b.sections)+1)
	for _, s := range b.sections {
		names = append(names, s.Name)
	}
	return append(names, ".shstrtab")
}

func pad(buf *bytes.Buffer, to uint64) {
	for uint64(buf.Len()) < to {
		buf.WriteByte(0)
	}
}

// StringTable encodes strs as a string table with a leading NUL and returns
// the offset of each string. Duplicates share one entry.
func StringTable(strs ...string) ([]byte, map[string]uint32) {
	buf := []byte{0}
	offs := make(map[string]uint32, len(strs))
	for _, s := range strs {
		if _, ok := offs[s]; ok {
			continue
		}
		offs[s] = uint32(len(buf))
		buf = append(buf, s...)
		buf = append(buf, 0)
	}
	return buf, offs
}

// Symbol encodes one Elf64_Sym.
func Symbol(name uint32, info, other uint8, shndx uint16, value, size uint64) []byte {
	buf := &bytes.Buffer{}
	for _, v := range []any{name, info, other, shndx, value, size} {
		_ = binary.Write(buf, binary.LittleEndian, v)
	}
	return buf.Bytes()
}

// Rela encodes one Elf64_Rela.
func Rela(offset uint64, sym, typ uint32, addend int64) []byte {
	buf := &bytes.Buffer{}
	info := uint64(sym)<<32 | uint64(typ)
	for _, v := range []any{offset, info, addend} {
		_ = binary.Write(buf, binary.LittleEndian, v)
	}
	return buf.Bytes()
}

// Dyn encodes one Elf64_Dyn.
func Dyn(tag, value uint64) []byte {
	buf := &bytes.Buffer{}
	_ = binary.Write(buf, binary.LittleEndian, tag)
	_ = binary.Write(buf, binary.LittleEndian, value)
	return buf.Bytes()
}

func concat(parts ...[]byte) []byte {
	return bytes.Join(parts, nil)
}
