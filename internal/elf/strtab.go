package elf

import (
	"bytes"
	"fmt"
)

// StringTable is a SHT_STRTAB section: NUL-terminated strings addressed by
// byte offset.
type StringTable struct {
	data []byte
}

// StringTable decodes sh as a string table.
func (f *File) StringTable(sh *SectionHeader) (*StringTable, error) {
	if sh.Type != SectionStrtab {
		return nil, fmt.Errorf("%w: %s is not a string table", ErrWrongSectionType, sh.Type)
	}
	data, err := f.SectionData(sh)
	if err != nil {
		return nil, err
	}
	if len(data) > 0 && data[0] != 0 {
		return nil, fmt.Errorf("invalid string table: first byte is 0x%02x", data[0])
	}
	return &StringTable{data: data}, nil
}

// String returns the string starting at off. A string missing its
// terminator runs to the end of the table.
func (t *StringTable) String(off uint32) (string, error) {
	if int(off) >= len(t.data) {
		return "", fmt.Errorf("%w: string offset %d of %d", ErrIndexOutOfRange, off, len(t.data))
	}
	s := t.data[off:]
	if i := bytes.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}
	return string(s), nil
}

// All returns every NUL-terminated string in table order, starting with the
// empty string at offset 0.
func (t *StringTable) All() []string {
	var out []string
	start := 0
	for i, b := range t.data {
		if b == 0 {
			out = append(out, string(t.data[start:i]))
			start = i + 1
		}
	}
	return out
}

// Len returns the table size in bytes.
func (t *StringTable) Len() int { return len(t.data) }
