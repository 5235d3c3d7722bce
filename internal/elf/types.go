package elf

import (
	"fmt"
	"strings"
)

// Magic is the ELF identification prefix.
var Magic = [4]byte{0x7f, 'E', 'L', 'F'}

// Sizes of the fixed-layout records.
const (
	FileHeaderSize    = 64
	IdentSize         = 16
	ProgramHeaderSize = 0x38
	SectionHeaderSize = 0x40
	SymbolSize        = 24
	RelaSize          = 24
	DynSize           = 16
)

// SHNUndef marks an undefined or missing section index.
const SHNUndef = 0

// Class is the e_ident[EI_CLASS] byte.
type Class uint8

const (
	ClassNone Class = 0
	Class32   Class = 1
	Class64   Class = 2
)

func (c Class) String() string {
	switch c {
	case Class32:
		return "Elf32"
	case Class64:
		return "Elf64"
	}
	return fmt.Sprintf("Class(0x%02x)", uint8(c))
}

func (c Class) known() bool { return c == Class32 || c == Class64 }

// Data is the e_ident[EI_DATA] byte.
type Data uint8

const (
	DataNone   Data = 0
	DataLittle Data = 1
	DataBig    Data = 2
)

func (d Data) String() string {
	switch d {
	case DataLittle:
		return "Little"
	case DataBig:
		return "Big"
	}
	return fmt.Sprintf("Data(0x%02x)", uint8(d))
}

func (d Data) known() bool { return d == DataLittle || d == DataBig }

// Type is the object file type (e_type).
type Type uint16

const (
	TypeNone Type = 0
	TypeRel  Type = 1
	TypeExec Type = 2
	TypeDyn  Type = 3
	TypeCore Type = 4

	TypeLoOS   Type = 0xfe00
	TypeHiOS   Type = 0xfeff
	TypeLoProc Type = 0xff00
	TypeHiProc Type = 0xffff
)

func (t Type) String() string {
	switch {
	case t == TypeNone:
		return "None"
	case t == TypeRel:
		return "Rel"
	case t == TypeExec:
		return "Exec"
	case t == TypeDyn:
		return "Dyn"
	case t == TypeCore:
		return "Core"
	case t >= TypeLoOS && t <= TypeHiOS:
		return fmt.Sprintf("Os(0x%04x)", uint16(t))
	case t >= TypeLoProc:
		return fmt.Sprintf("Proc(0x%04x)", uint16(t))
	}
	return fmt.Sprintf("Type(0x%04x)", uint16(t))
}

func (t Type) known() bool { return t <= TypeCore || t >= TypeLoOS }

// Machine is the target architecture (e_machine).
type Machine uint16

const (
	MachineNone    Machine = 0
	Machine386     Machine = 0x03
	MachineARM     Machine = 0x28
	MachineX86_64  Machine = 0x3e
	MachineAArch64 Machine = 0xb7
	MachineRISCV   Machine = 0xf3
)

var machineNames = map[Machine]string{
	MachineNone:    "None",
	Machine386:     "386",
	MachineARM:     "ARM",
	MachineX86_64:  "X86_64",
	MachineAArch64: "AArch64",
	MachineRISCV:   "RISCV",
}

func (m Machine) String() string {
	if n, ok := machineNames[m]; ok {
		return n
	}
	return fmt.Sprintf("Machine(0x%02x)", uint16(m))
}

// SegmentType is a program header's p_type.
type SegmentType uint32

const (
	SegmentNull        SegmentType = 0
	SegmentLoad        SegmentType = 1
	SegmentDynamic     SegmentType = 2
	SegmentInterp      SegmentType = 3
	SegmentNote        SegmentType = 4
	SegmentShlib       SegmentType = 5
	SegmentPhdr        SegmentType = 6
	SegmentTLS         SegmentType = 7
	SegmentGNUEHFrame  SegmentType = 0x6474e550
	SegmentGNUStack    SegmentType = 0x6474e551
	SegmentGNURelro    SegmentType = 0x6474e552
	SegmentGNUProperty SegmentType = 0x6474e553
)

var segmentTypeNames = map[SegmentType]string{
	SegmentNull:        "Null",
	SegmentLoad:        "Load",
	SegmentDynamic:     "Dynamic",
	SegmentInterp:      "Interp",
	SegmentNote:        "Note",
	SegmentShlib:       "Shlib",
	SegmentPhdr:        "Phdr",
	SegmentTLS:         "Tls",
	SegmentGNUEHFrame:  "GnuEhFrame",
	SegmentGNUStack:    "GnuStack",
	SegmentGNURelro:    "GnuRelro",
	SegmentGNUProperty: "GnuProperty",
}

func (t SegmentType) String() string {
	if n, ok := segmentTypeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("0x%x", uint32(t))
}

// SegmentFlags is a program header's p_flags.
type SegmentFlags uint32

const (
	FlagExecute SegmentFlags = 0x1
	FlagWrite   SegmentFlags = 0x2
	FlagRead    SegmentFlags = 0x4
)

// String renders the permission bits readelf-style, e.g. "[R E]".
func (f SegmentFlags) String() string {
	var parts []string
	if f&FlagRead != 0 {
		parts = append(parts, "R")
	}
	if f&FlagWrite != 0 {
		parts = append(parts, "W")
	}
	if f&FlagExecute != 0 {
		parts = append(parts, "E")
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// SectionType is a section header's sh_type.
type SectionType uint32

const (
	SectionNull         SectionType = 0x0
	SectionProgbits     SectionType = 0x1
	SectionSymtab       SectionType = 0x2
	SectionStrtab       SectionType = 0x3
	SectionRela         SectionType = 0x4
	SectionHash         SectionType = 0x5
	SectionDynamic      SectionType = 0x6
	SectionNote         SectionType = 0x7
	SectionNobits       SectionType = 0x8
	SectionRel          SectionType = 0x9
	SectionShlib        SectionType = 0xa
	SectionDynsym       SectionType = 0xb
	SectionInitArray    SectionType = 0xe
	SectionFiniArray    SectionType = 0xf
	SectionPreinitArray SectionType = 0x10
	SectionGroup        SectionType = 0x11
	SectionSymtabShndx  SectionType = 0x12
	SectionGNUHash      SectionType = 0x6ffffff6
	SectionGNUVerdef    SectionType = 0x6ffffffd
	SectionGNUVerneed   SectionType = 0x6ffffffe
	SectionGNUVersym    SectionType = 0x6fffffff
)

var sectionTypeNames = map[SectionType]string{
	SectionNull:         "Null",
	SectionProgbits:     "Progbits",
	SectionSymtab:       "Symtab",
	SectionStrtab:       "Strtab",
	SectionRela:         "Rela",
	SectionHash:         "Hash",
	SectionDynamic:      "Dynamic",
	SectionNote:         "Note",
	SectionNobits:       "Nobits",
	SectionRel:          "Rel",
	SectionShlib:        "Shlib",
	SectionDynsym:       "Dynsym",
	SectionInitArray:    "InitArray",
	SectionFiniArray:    "FiniArray",
	SectionPreinitArray: "PreinitArray",
	SectionGroup:        "Group",
	SectionSymtabShndx:  "SymtabShndx",
	SectionGNUHash:      "GnuHash",
	SectionGNUVerdef:    "GnuVerdef",
	SectionGNUVerneed:   "GnuVerneed",
	SectionGNUVersym:    "GnuVersym",
}

func (t SectionType) String() string {
	if n, ok := sectionTypeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("0x%x", uint32(t))
}

// SymbolType is the low nibble of st_info.
type SymbolType uint8

const (
	SymbolNoType  SymbolType = 0
	SymbolObject  SymbolType = 1
	SymbolFunc    SymbolType = 2
	SymbolSection SymbolType = 3
	SymbolFile    SymbolType = 4
	SymbolCommon  SymbolType = 5
	SymbolTLS     SymbolType = 6
	SymbolLoOS    SymbolType = 10
	SymbolHiOS    SymbolType = 12
	SymbolLoProc  SymbolType = 13
	SymbolHiProc  SymbolType = 15
)

var symbolTypeNames = map[SymbolType]string{
	SymbolNoType:  "NoType",
	SymbolObject:  "Object",
	SymbolFunc:    "Func",
	SymbolSection: "Section",
	SymbolFile:    "File",
	SymbolCommon:  "Common",
	SymbolTLS:     "Tls",
	SymbolLoOS:    "Loos",
	SymbolHiOS:    "Hios",
	SymbolLoProc:  "Loproc",
	SymbolHiProc:  "Hiproc",
}

func (t SymbolType) String() string {
	if n, ok := symbolTypeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("0x%x", uint8(t))
}

// SymbolBind is the high nibble of st_info.
type SymbolBind uint8

const (
	BindLocal  SymbolBind = 0
	BindGlobal SymbolBind = 1
	BindWeak   SymbolBind = 2
)

func (b SymbolBind) String() string {
	switch b {
	case BindLocal:
		return "Local"
	case BindGlobal:
		return "Global"
	case BindWeak:
		return "Weak"
	}
	return fmt.Sprintf("0x%x", uint8(b))
}

// DynamicTag is a dynamic entry's d_tag.
type DynamicTag uint64

const (
	DTNull        DynamicTag = 0
	DTNeeded      DynamicTag = 1
	DTPltRelSz    DynamicTag = 2
	DTPltGot      DynamicTag = 3
	DTHash        DynamicTag = 4
	DTStrTab      DynamicTag = 5
	DTSymTab      DynamicTag = 6
	DTRela        DynamicTag = 7
	DTRelaSz      DynamicTag = 8
	DTRelaEnt     DynamicTag = 9
	DTStrSz       DynamicTag = 10
	DTSymEnt      DynamicTag = 11
	DTInit        DynamicTag = 12
	DTFini        DynamicTag = 13
	DTSoName      DynamicTag = 14
	DTRPath       DynamicTag = 15
	DTSymbolic    DynamicTag = 16
	DTRel         DynamicTag = 17
	DTRelSz       DynamicTag = 18
	DTRelEnt      DynamicTag = 19
	DTPltRel      DynamicTag = 20
	DTDebug       DynamicTag = 21
	DTTextRel     DynamicTag = 22
	DTJmpRel      DynamicTag = 23
	DTBindNow     DynamicTag = 24
	DTInitArray   DynamicTag = 25
	DTFiniArray   DynamicTag = 26
	DTInitArraySz DynamicTag = 27
	DTFiniArraySz DynamicTag = 28
	DTRunPath     DynamicTag = 29
	DTFlags       DynamicTag = 30
	DTGNUHash     DynamicTag = 0x6ffffef5
	DTVerSym      DynamicTag = 0x6ffffff0
	DTRelaCount   DynamicTag = 0x6ffffff9
	DTFlags1      DynamicTag = 0x6ffffffb
	DTVerNeed     DynamicTag = 0x6ffffffe
	DTVerNeedNum  DynamicTag = 0x6fffffff
)

var dynamicTagNames = map[DynamicTag]string{
	DTNull:        "Null",
	DTNeeded:      "Needed",
	DTPltRelSz:    "PltRelSz",
	DTPltGot:      "PltGot",
	DTHash:        "Hash",
	DTStrTab:      "StrTab",
	DTSymTab:      "SymTab",
	DTRela:        "Rela",
	DTRelaSz:      "RelaSz",
	DTRelaEnt:     "RelaEnt",
	DTStrSz:       "StrSz",
	DTSymEnt:      "SymEnt",
	DTInit:        "Init",
	DTFini:        "Fini",
	DTSoName:      "SoName",
	DTRPath:       "RPath",
	DTSymbolic:    "Symbolic",
	DTRel:         "Rel",
	DTRelSz:       "RelSz",
	DTRelEnt:      "RelEnt",
	DTPltRel:      "PltRel",
	DTDebug:       "Debug",
	DTTextRel:     "TextRel",
	DTJmpRel:      "JmpRel",
	DTBindNow:     "BindNow",
	DTInitArray:   "InitArray",
	DTFiniArray:   "FiniArray",
	DTInitArraySz: "InitArraySz",
	DTFiniArraySz: "FiniArraySz",
	DTRunPath:     "RunPath",
	DTFlags:       "Flags",
	DTGNUHash:     "GnuHash",
	DTVerSym:      "VerSym",
	DTRelaCount:   "RelaCount",
	DTFlags1:      "Flags1",
	DTVerNeed:     "VerNeed",
	DTVerNeedNum:  "VerNeedNum",
}

// Known reports whether the tag has a name.
func (t DynamicTag) Known() bool {
	_, ok := dynamicTagNames[t]
	return ok
}

func (t DynamicTag) String() string {
	if n, ok := dynamicTagNames[t]; ok {
		return n
	}
	return fmt.Sprintf("%016x", uint64(t))
}

// RelocationType is the low 32 bits of r_info. Its meaning depends on the
// object's machine, so it has no String method; use Name.
type RelocationType uint32

var relocationNames = map[Machine]map[RelocationType]string{
	MachineX86_64: {
		0:  "X86_64None",
		1:  "X86_64_64",
		2:  "X86_64PC32",
		5:  "X86_64Copy",
		6:  "X86_64GlobDat",
		7:  "X86_64JumpSlot",
		8:  "X86_64Relative",
		16: "X86_64DTPMod64",
		17: "X86_64DTPOff64",
		18: "X86_64TPOff64",
		37: "X86_64IRelative",
	},
	MachineAArch64: {
		0:     "AArch64None",
		257:   "AArch64Abs64",
		1024:  "AArch64Copy",
		1025:  "AArch64GlobDat",
		1026:  "AArch64JumpSlot",
		0x403: "AArch64Relative",
		1032:  "AArch64IRelative",
	},
}

// Name returns the relocation's symbolic name for the given machine, or its
// hex value when the pair is not known.
func (r RelocationType) Name(m Machine) string {
	if names, ok := relocationNames[m]; ok {
		if n, ok := names[r]; ok {
			return n
		}
	}
	return fmt.Sprintf("0x%x", uint32(r))
}
