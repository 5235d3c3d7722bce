package elf

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/bits"
)

// Ident is the 16-byte e_ident block.
type Ident struct {
	Magic      [4]byte
	Class      Class
	Data       Data
	Version    uint8
	OSABI      uint8
	ABIVersion uint8
	_          [7]byte
}

// FileHeader is the raw ELF64 file header.
type FileHeader struct {
	Ident     Ident
	Type      Type
	Machine   Machine
	Version   uint32
	Entry     uint64
	Phoff     uint64
	Shoff     uint64
	Flags     uint32
	Ehsize    uint16
	Phentsize uint16
	Phnum     uint16
	Shentsize uint16
	Shnum     uint16
	Shstrndx  uint16
}

// ProgramHeader is a raw ELF64 program header.
type ProgramHeader struct {
	Type   SegmentType
	Flags  SegmentFlags
	Offset uint64
	Vaddr  uint64
	Paddr  uint64
	Filesz uint64
	Memsz  uint64
	Align  uint64
}

// Contains reports whether addr falls inside the segment's memory image.
func (p *ProgramHeader) Contains(addr uint64) bool {
	return addr >= p.Vaddr && addr-p.Vaddr < p.Memsz
}

// SectionHeader is a raw ELF64 section header.
type SectionHeader struct {
	Name      uint32
	Type      SectionType
	Flags     uint64
	Addr      uint64
	Offset    uint64
	Size      uint64
	Link      uint32
	Info      uint32
	Addralign uint64
	Entsize   uint64
}

// File is a decoded ELF64 little-endian object.
type File struct {
	FileHeader
	Progs []ProgramHeader
	Sects []SectionHeader

	names *StringTable
	buf   []byte
}

// Parse decodes the file header, program headers, section headers, and the
// section-name string table from buf. The returned File keeps a reference
// to buf for later table lookups; buf must not change while the File is in
// use.
func Parse(buf []byte) (*File, error) {
	if len(buf) < FileHeaderSize {
		return nil, fmt.Errorf("%w: file header needs %d bytes, have %d", ErrTruncated, FileHeaderSize, len(buf))
	}

	f := &File{buf: buf}
	if _, err := binary.Decode(buf[:FileHeaderSize], binary.LittleEndian, &f.FileHeader); err != nil {
		return nil, fmt.Errorf("decode file header: %w", err)
	}

	if f.Ident.Magic != Magic {
		return nil, ErrInvalidMagic
	}
	if f.Ident.Class != Class64 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidClass, f.Ident.Class)
	}
	if f.Ident.Data != DataLittle {
		return nil, fmt.Errorf("%w: %s", ErrInvalidEndianness, f.Ident.Data)
	}

	if err := f.parseProgramHeaders(); err != nil {
		return nil, err
	}
	if err := f.parseSectionHeaders(); err != nil {
		return nil, err
	}

	if idx := int(f.Shstrndx); idx != SHNUndef && idx < len(f.Sects) {
		names, err := f.StringTable(&f.Sects[idx])
		switch {
		case errors.Is(err, ErrWrongSectionType):
			// Not a name table; every section name resolves to "".
		case err != nil:
			return nil, fmt.Errorf("section names: %w", err)
		default:
			f.names = names
		}
	}

	return f, nil
}

func (f *File) parseProgramHeaders() error {
	if f.Phnum == 0 {
		return nil
	}
	if f.Phentsize < ProgramHeaderSize {
		return fmt.Errorf("%w: program header entry size %d", ErrTruncated, f.Phentsize)
	}

	f.Progs = make([]ProgramHeader, f.Phnum)
	for i := range f.Progs {
		off, ok := entryOffset(f.Phoff, i, f.Phentsize)
		if !ok {
			return fmt.Errorf("program header %d: %w: offset overflows", i, ErrTruncated)
		}
		raw, err := f.slice(off, ProgramHeaderSize)
		if err != nil {
			return fmt.Errorf("program header %d: %w", i, err)
		}
		if _, err := binary.Decode(raw, binary.LittleEndian, &f.Progs[i]); err != nil {
			return fmt.Errorf("program header %d: %w", i, err)
		}
	}
	return nil
}

func (f *File) parseSectionHeaders() error {
	if f.Shnum == 0 {
		return nil
	}
	if f.Shentsize < SectionHeaderSize {
		return fmt.Errorf("%w: section header entry size %d", ErrTruncated, f.Shentsize)
	}

	f.Sects = make([]SectionHeader, f.Shnum)
	for i := range f.Sects {
		off, ok := entryOffset(f.Shoff, i, f.Shentsize)
		if !ok {
			return fmt.Errorf("section header %d: %w: offset overflows", i, ErrTruncated)
		}
		raw, err := f.slice(off, SectionHeaderSize)
		if err != nil {
			return fmt.Errorf("section header %d: %w", i, err)
		}
		if _, err := binary.Decode(raw, binary.LittleEndian, &f.Sects[i]); err != nil {
			return fmt.Errorf("section header %d: %w", i, err)
		}
	}
	return nil
}

// entryOffset returns base+i*size, or false when the sum wraps.
func entryOffset(base uint64, i int, size uint16) (uint64, bool) {
	off, carry := bits.Add64(base, uint64(i)*uint64(size), 0)
	return off, carry == 0
}

// slice returns buf[off:off+size] after checking bounds and overflow.
func (f *File) slice(off, size uint64) ([]byte, error) {
	end := off + size
	if end < off || end > uint64(len(f.buf)) {
		return nil, fmt.Errorf("%w: range [0x%x, 0x%x) exceeds %d bytes", ErrTruncated, off, end, len(f.buf))
	}
	return f.buf[off:end], nil
}

// Segments returns the program headers.
func (f *File) Segments() []ProgramHeader { return f.Progs }

// Sections returns the section headers.
func (f *File) Sections() []SectionHeader { return f.Sects }

// SectionByIndex returns the section header at index i.
func (f *File) SectionByIndex(i int) (*SectionHeader, error) {
	if i < 0 || i >= len(f.Sects) {
		return nil, fmt.Errorf("%w: section %d of %d", ErrIndexOutOfRange, i, len(f.Sects))
	}
	return &f.Sects[i], nil
}

// FindSection returns the first section of type t, or nil.
func (f *File) FindSection(t SectionType) *SectionHeader {
	for i := range f.Sects {
		if f.Sects[i].Type == t {
			return &f.Sects[i]
		}
	}
	return nil
}

// SectionsOfType returns every section of type t in header order.
func (f *File) SectionsOfType(t SectionType) []*SectionHeader {
	var out []*SectionHeader
	for i := range f.Sects {
		if f.Sects[i].Type == t {
			out = append(out, &f.Sects[i])
		}
	}
	return out
}

// SectionName resolves sh's name through the section-name string table.
// Objects without one, and unresolvable offsets, yield "".
func (f *File) SectionName(sh *SectionHeader) string {
	if f.names == nil {
		return ""
	}
	name, err := f.names.String(sh.Name)
	if err != nil {
		return ""
	}
	return name
}

// SectionByName returns the first section called name, or nil.
func (f *File) SectionByName(name string) *SectionHeader {
	for i := range f.Sects {
		if f.SectionName(&f.Sects[i]) == name {
			return &f.Sects[i]
		}
	}
	return nil
}

// SectionData returns the bytes backing sh. SHT_NOBITS sections occupy no
// file space and return nil.
func (f *File) SectionData(sh *SectionHeader) ([]byte, error) {
	if sh.Type == SectionNobits {
		return nil, nil
	}
	data, err := f.slice(sh.Offset, sh.Size)
	if err != nil {
		return nil, fmt.Errorf("section data: %w", err)
	}
	return data, nil
}

// SectionsInSegment returns the sections whose address lies inside ph's
// memory image, in header order.
func (f *File) SectionsInSegment(ph *ProgramHeader) []*SectionHeader {
	var out []*SectionHeader
	for i := range f.Sects {
		if ph.Contains(f.Sects[i].Addr) {
			out = append(out, &f.Sects[i])
		}
	}
	return out
}
