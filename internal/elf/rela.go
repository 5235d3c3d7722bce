package elf

import (
	"encoding/binary"
	"fmt"
)

// Rela is a relocation entry with an explicit addend.
type Rela struct {
	Offset uint64
	Info   uint64
	Addend int64
}

// Symbol returns the symbol table index from r_info.
func (r Rela) Symbol() uint32 { return uint32(r.Info >> 32) }

// Type returns the relocation type from r_info.
func (r Rela) Type() RelocationType { return RelocationType(r.Info & 0xffffffff) }

// RelaTable is a decoded SHT_RELA section.
type RelaTable struct {
	entries []Rela
}

// RelaTable decodes sh as a relocation table.
func (f *File) RelaTable(sh *SectionHeader) (*RelaTable, error) {
	if sh.Type != SectionRela {
		return nil, fmt.Errorf("%w: %s is not a relocation table", ErrWrongSectionType, sh.Type)
	}
	data, err := f.SectionData(sh)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("relocation table: %w", ErrEmptyTable)
	}

	entsize := entrySize(sh.Entsize, RelaSize)
	entries := make([]Rela, uint64(len(data))/entsize)
	for i := range entries {
		off := uint64(i) * entsize
		if _, err := binary.Decode(data[off:off+RelaSize], binary.LittleEndian, &entries[i]); err != nil {
			return nil, fmt.Errorf("relocation %d: %w", i, err)
		}
	}
	return &RelaTable{entries: entries}, nil
}

// Len returns the number of relocations.
func (t *RelaTable) Len() int { return len(t.entries) }

// Entry returns the relocation at index i.
func (t *RelaTable) Entry(i int) (Rela, error) {
	if i < 0 || i >= len(t.entries) {
		return Rela{}, fmt.Errorf("%w: relocation %d of %d", ErrIndexOutOfRange, i, len(t.entries))
	}
	return t.entries[i], nil
}

// Entries returns all relocations in table order.
func (t *RelaTable) Entries() []Rela { return t.entries }
