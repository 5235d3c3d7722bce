package elf

import (
	"encoding/binary"
	"fmt"
)

// Dyn is a dynamic section entry.
type Dyn struct {
	Tag   DynamicTag
	Value uint64
}

// DynamicTable is a decoded SHT_DYNAMIC section.
type DynamicTable struct {
	entries []Dyn
}

// DynamicTable decodes sh as a dynamic table. Entries after DT_NULL are
// kept; the table reflects the section exactly.
func (f *File) DynamicTable(sh *SectionHeader) (*DynamicTable, error) {
	if sh.Type != SectionDynamic {
		return nil, fmt.Errorf("%w: %s is not a dynamic table", ErrWrongSectionType, sh.Type)
	}
	data, err := f.SectionData(sh)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("dynamic table: %w", ErrEmptyTable)
	}

	entsize := entrySize(sh.Entsize, DynSize)
	entries := make([]Dyn, uint64(len(data))/entsize)
	for i := range entries {
		off := uint64(i) * entsize
		if _, err := binary.Decode(data[off:off+DynSize], binary.LittleEndian, &entries[i]); err != nil {
			return nil, fmt.Errorf("dynamic entry %d: %w", i, err)
		}
	}
	return &DynamicTable{entries: entries}, nil
}

// Entries returns all entries in table order.
func (t *DynamicTable) Entries() []Dyn { return t.entries }

// Find returns the first entry with the given tag.
func (t *DynamicTable) Find(tag DynamicTag) (Dyn, bool) {
	for _, d := range t.entries {
		if d.Tag == tag {
			return d, true
		}
	}
	return Dyn{}, false
}

// HasRelocations reports whether the table names a DT_RELA table.
func (t *DynamicTable) HasRelocations() bool {
	_, ok := t.Find(DTRela)
	return ok
}
