package elf

import (
	"encoding/binary"
	"fmt"
)

type rawSymbol struct {
	Name  uint32
	Info  uint8
	Other uint8
	Shndx uint16
	Value uint64
	Size  uint64
}

// Symbol is a symbol table entry with its name resolved.
type Symbol struct {
	Name      string
	NameIndex uint32
	Info      uint8
	Other     uint8
	Shndx     uint16
	Value     uint64
	Size      uint64
}

// Type returns the symbol type from st_info.
func (s Symbol) Type() SymbolType { return SymbolType(s.Info & 0xf) }

// Bind returns the symbol binding from st_info.
func (s Symbol) Bind() SymbolBind { return SymbolBind(s.Info >> 4) }

// SymbolTable is a decoded SHT_SYMTAB or SHT_DYNSYM section.
type SymbolTable struct {
	syms []Symbol
}

// SymbolTable decodes sh as a symbol table. Names are resolved through the
// string table named by sh.Link.
func (f *File) SymbolTable(sh *SectionHeader) (*SymbolTable, error) {
	if sh.Type != SectionSymtab && sh.Type != SectionDynsym {
		return nil, fmt.Errorf("%w: %s is not a symbol table", ErrWrongSectionType, sh.Type)
	}

	data, err := f.SectionData(sh)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("symbol table: %w", ErrEmptyTable)
	}

	strHdr, err := f.SectionByIndex(int(sh.Link))
	if err != nil {
		return nil, fmt.Errorf("symbol string table: %w", err)
	}
	strtab, err := f.StringTable(strHdr)
	if err != nil {
		return nil, fmt.Errorf("symbol string table: %w", err)
	}

	entsize := entrySize(sh.Entsize, SymbolSize)
	count := uint64(len(data)) / entsize
	syms := make([]Symbol, count)
	for i := range syms {
		var raw rawSymbol
		off := uint64(i) * entsize
		if _, err := binary.Decode(data[off:off+SymbolSize], binary.LittleEndian, &raw); err != nil {
			return nil, fmt.Errorf("symbol %d: %w", i, err)
		}

		var name string
		if raw.Name != 0 {
			name, err = strtab.String(raw.Name)
			if err != nil {
				return nil, fmt.Errorf("symbol %d name: %w", i, err)
			}
		}
		syms[i] = Symbol{
			Name:      name,
			NameIndex: raw.Name,
			Info:      raw.Info,
			Other:     raw.Other,
			Shndx:     raw.Shndx,
			Value:     raw.Value,
			Size:      raw.Size,
		}
	}
	return &SymbolTable{syms: syms}, nil
}

// Len returns the number of symbols.
func (t *SymbolTable) Len() int { return len(t.syms) }

// Symbol returns the symbol at index i.
func (t *SymbolTable) Symbol(i int) (Symbol, error) {
	if i < 0 || i >= len(t.syms) {
		return Symbol{}, fmt.Errorf("%w: symbol %d of %d", ErrIndexOutOfRange, i, len(t.syms))
	}
	return t.syms[i], nil
}

// Symbols returns all symbols in table order.
func (t *SymbolTable) Symbols() []Symbol { return t.syms }

// entrySize returns entsize, or def when entsize is zero or smaller than
// the record it must hold.
func entrySize(entsize, def uint64) uint64 {
	if entsize < def {
		return def
	}
	return entsize
}
