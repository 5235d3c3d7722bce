// Package elf decodes 64-bit little-endian ELF objects.
//
// The package works on a byte slice that holds the whole object, usually a
// read-only mapping from package mapfile. Headers and tables are decoded
// eagerly into plain Go values; nothing in a File aliases the input except
// the slices returned by SectionData.
//
// # Layers
//
// The raw layer mirrors the on-disk format field for field:
//
//	FileHeader     64 bytes at offset 0
//	ProgramHeader  0x38 bytes each, e_phnum entries at e_phoff
//	SectionHeader  0x40 bytes each, e_shnum entries at e_shoff
//	Symbol         24 bytes each (SHT_SYMTAB, SHT_DYNSYM)
//	Rela           24 bytes each (SHT_RELA)
//	Dyn            16 bytes each (SHT_DYNAMIC)
//
// Header is the validated view of FileHeader, with every enumerated field
// mapped to a known value.
//
// # Errors
//
// Every offset and size read from the object is bounds-checked against the
// input. Out-of-range reads return an error wrapping ErrTruncated; lookups by
// index return ErrIndexOutOfRange. Parsing never panics on malformed input.
package elf
