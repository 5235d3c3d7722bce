package elf_test

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/elfpeek/internal/elf"
	"github.com/roach88/elfpeek/internal/elf/elftest"
)

func parseSample(t *testing.T) *elf.File {
	t.Helper()
	f, err := elf.Parse(elftest.Sample())
	require.NoError(t, err)
	return f
}

func TestParse_Header(t *testing.T) {
	f := parseSample(t)

	assert.Equal(t, elf.Magic, f.Ident.Magic)
	assert.Equal(t, elf.Class64, f.Ident.Class)
	assert.Equal(t, elf.DataLittle, f.Ident.Data)
	assert.Equal(t, elf.TypeExec, f.Type)
	assert.Equal(t, elf.MachineX86_64, f.Machine)
	assert.Equal(t, uint64(0x401000), f.Entry)
	assert.Equal(t, uint16(5), f.Phnum)
	assert.Equal(t, uint16(11), f.Shnum)
	assert.Equal(t, uint16(elftest.SampleShstrtab), f.Shstrndx)

	hdr, err := f.Header()
	require.NoError(t, err)
	assert.Equal(t, elf.Header{
		Class:   elf.Class64,
		Data:    elf.DataLittle,
		Type:    elf.TypeExec,
		Machine: elf.MachineX86_64,
		Entry:   0x401000,
	}, hdr)
}

func TestParse_ProgramHeaders(t *testing.T) {
	f := parseSample(t)
	segs := f.Segments()
	require.Len(t, segs, 5)

	assert.Equal(t, elf.SegmentLoad, segs[0].Type)
	assert.Equal(t, uint64(0x400000), segs[0].Vaddr)
	assert.Equal(t, elf.FlagRead, segs[0].Flags)

	assert.Equal(t, elf.FlagRead|elf.FlagExecute, segs[1].Flags)
	assert.Equal(t, uint64(0x240), segs[2].Memsz)
	assert.Equal(t, elf.SegmentDynamic, segs[3].Type)
	assert.Equal(t, elf.SegmentGNUStack, segs[4].Type)
}

func TestParse_SectionNames(t *testing.T) {
	f := parseSample(t)

	var names []string
	for i := range f.Sections() {
		names = append(names, f.SectionName(&f.Sects[i]))
	}
	assert.Equal(t, []string{
		"", ".text", ".dynstr", ".dynsym", ".rela.dyn", ".dynamic",
		".data", ".bss", ".strtab", ".symtab", ".shstrtab",
	}, names)
}

func TestParse_Errors(t *testing.T) {
	valid := elftest.Sample()

	mutate := func(fn func(b []byte)) []byte {
		b := append([]byte(nil), valid...)
		fn(b)
		return b
	}

	tests := []struct {
		name string
		buf  []byte
		want error
	}{
		{"empty", nil, elf.ErrTruncated},
		{"short header", valid[:63], elf.ErrTruncated},
		{"bad magic", mutate(func(b []byte) { b[1] = 'X' }), elf.ErrInvalidMagic},
		{"32-bit", mutate(func(b []byte) { b[4] = 1 }), elf.ErrInvalidClass},
		{"big-endian", mutate(func(b []byte) { b[5] = 2 }), elf.ErrInvalidEndianness},
		{"program headers past end", mutate(func(b []byte) {
			binary.LittleEndian.PutUint64(b[32:], uint64(len(b)))
		}), elf.ErrTruncated},
		{"section headers past end", mutate(func(b []byte) {
			binary.LittleEndian.PutUint64(b[40:], uint64(len(b)-10))
		}), elf.ErrTruncated},
		{"short program header entries", mutate(func(b []byte) {
			binary.LittleEndian.PutUint16(b[54:], 8)
		}), elf.ErrTruncated},
		{"offset overflow", mutate(func(b []byte) {
			binary.LittleEndian.PutUint64(b[40:], ^uint64(0)-8)
		}), elf.ErrTruncated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := elf.Parse(tt.buf)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParse_NoSections(t *testing.T) {
	b := append([]byte(nil), elftest.Sample()...)
	binary.LittleEndian.PutUint16(b[60:], 0) // e_shnum
	binary.LittleEndian.PutUint16(b[62:], 0) // e_shstrndx

	f, err := elf.Parse(b)
	require.NoError(t, err)
	assert.Empty(t, f.Sections())
	assert.Len(t, f.Segments(), 5)
	assert.Nil(t, f.FindSection(elf.SectionSymtab))
}

func TestParse_UndefinedShstrndx(t *testing.T) {
	b := append([]byte(nil), elftest.Sample()...)
	binary.LittleEndian.PutUint16(b[62:], elf.SHNUndef)

	f, err := elf.Parse(b)
	require.NoError(t, err)
	assert.Equal(t, "", f.SectionName(&f.Sects[1]))
}

func TestParse_ShstrndxNotStrtab(t *testing.T) {
	b := append([]byte(nil), elftest.Sample()...)
	binary.LittleEndian.PutUint16(b[62:], elftest.SampleText)

	f, err := elf.Parse(b)
	require.NoError(t, err)
	require.Len(t, f.Sections(), 11)
	for i := range f.Sects {
		assert.Equal(t, "", f.SectionName(&f.Sects[i]))
	}
	assert.Nil(t, f.SectionByName(".text"))
}

func TestSectionByIndex(t *testing.T) {
	f := parseSample(t)

	sh, err := f.SectionByIndex(elftest.SampleText)
	require.NoError(t, err)
	assert.Equal(t, elf.SectionProgbits, sh.Type)
	assert.Equal(t, uint64(0x401000), sh.Addr)

	_, err = f.SectionByIndex(99)
	assert.ErrorIs(t, err, elf.ErrIndexOutOfRange)

	_, err = f.SectionByIndex(-1)
	assert.ErrorIs(t, err, elf.ErrIndexOutOfRange)
}

func TestFindSection(t *testing.T) {
	f := parseSample(t)

	sh := f.FindSection(elf.SectionDynsym)
	require.NotNil(t, sh)
	assert.Equal(t, ".dynsym", f.SectionName(sh))

	assert.Nil(t, f.FindSection(elf.SectionGroup))
	assert.Len(t, f.SectionsOfType(elf.SectionStrtab), 3)
	assert.Equal(t, ".data", f.SectionName(f.SectionByName(".data")))
	assert.Nil(t, f.SectionByName(".missing"))
}

func TestSectionData(t *testing.T) {
	f := parseSample(t)

	data, err := f.SectionData(f.SectionByName(".data"))
	require.NoError(t, err)
	assert.Equal(t, "Hello", string(data[:5]))

	bss, err := f.SectionData(f.SectionByName(".bss"))
	require.NoError(t, err)
	assert.Nil(t, bss)

	bad := *f.SectionByName(".data")
	bad.Size = 1 << 20
	_, err = f.SectionData(&bad)
	assert.ErrorIs(t, err, elf.ErrTruncated)
}

func TestSectionsInSegment(t *testing.T) {
	f := parseSample(t)

	names := func(seg int) []string {
		var out []string
		for _, sh := range f.SectionsInSegment(&f.Progs[seg]) {
			out = append(out, f.SectionName(sh))
		}
		return out
	}

	assert.Equal(t, []string{".dynstr", ".dynsym", ".rela.dyn"}, names(0))
	assert.Equal(t, []string{".text"}, names(1))
	assert.Equal(t, []string{".dynamic", ".data", ".bss"}, names(2))
	assert.Equal(t, []string{".dynamic"}, names(3))
	assert.Empty(t, names(4))
}
