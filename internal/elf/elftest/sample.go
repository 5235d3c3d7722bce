package elftest

// Sample section indices.
const (
	SampleText = iota + 1
	SampleDynstr
	SampleDynsym
	SampleRelaDyn
	SampleDynamic
	SampleData
	SampleBss
	SampleStrtab
	SampleSymtab
	SampleShstrtab
)

// SampleBuilder returns the builder behind Sample so tests can adjust it
// before encoding.
//
// The object models a small non-PIE x86-64 executable: a read-only LOAD at
// 0x400000 holding the dynamic linking tables, an executable LOAD at
// 0x401000, a writable LOAD at 0x402e00, a DYNAMIC segment, and GNU_STACK.
func SampleBuilder() *Builder {
	b := New()
	b.Entry = 0x401000

	dynstr, dynOff := StringTable("libc.so.6", "puts")
	strtab, symOff := StringTable("main.c", "start", "foo", "bar", "main")

	b.AddSection(Section{
		Name: ".text", Type: 1, Flags: 0x6, Addr: 0x401000, Align: 16,
		Data: []byte{
			0xe8, 0x07, 0x00, 0x00, 0x00, 0x31, 0xc0, 0xc3,
			0x31, 0xc0, 0xc3, 0x90, 0x31, 0xc0, 0xc3, 0x90,
		},
	})
	b.AddSection(Section{Name: ".dynstr", Type: 3, Flags: 0x2, Addr: 0x400300, Align: 1, Data: dynstr})
	b.AddSection(Section{
		Name: ".dynsym", Type: 11, Flags: 0x2, Addr: 0x400320, Link: SampleDynstr, Info: 1, Align: 8, Entsize: 24,
		Data: concat(
			Symbol(0, 0, 0, 0, 0, 0),
			Symbol(dynOff["puts"], 0x12, 0, 0, 0, 0),
		),
	})
	b.AddSection(Section{
		Name: ".rela.dyn", Type: 4, Flags: 0x2, Addr: 0x400350, Link: SampleDynsym, Align: 8, Entsize: 24,
		Data: Rela(0x403010, 1, 7, 0),
	})
	b.AddSection(Section{
		Name: ".dynamic", Type: 6, Flags: 0x3, Addr: 0x402e00, Link: SampleDynstr, Align: 8, Entsize: 16,
		Data: concat(
			Dyn(1, uint64(dynOff["libc.so.6"])),
			Dyn(5, 0x400300),
			Dyn(6, 0x400320),
			Dyn(7, 0x400350),
			Dyn(8, 24),
			Dyn(9, 24),
			Dyn(0, 0),
		),
	})
	b.AddSection(Section{
		Name: ".data", Type: 1, Flags: 0x3, Addr: 0x403000, Align: 8,
		Data: []byte{'H', 'e', 'l', 'l', 'o', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
	})
	b.AddSection(Section{Name: ".bss", Type: 8, Flags: 0x3, Addr: 0x403010, Align: 16, Size: 32})
	b.AddSection(Section{Name: ".strtab", Type: 3, Align: 1, Data: strtab})
	b.AddSection(Section{
		Name: ".symtab", Type: 2, Link: SampleStrtab, Info: 2, Align: 8, Entsize: 24,
		Data: concat(
			Symbol(0, 0, 0, 0, 0, 0),
			Symbol(symOff["main.c"], 0x04, 0, 0xfff1, 0, 0),
			Symbol(symOff["start"], 0x11, 0, SampleData, 0x403000, 8),
			Symbol(symOff["foo"], 0x12, 0, SampleText, 0x401008, 4),
			Symbol(symOff["bar"], 0x12, 0, SampleText, 0x40100c, 4),
			Symbol(symOff["main"], 0x12, 0, SampleText, 0x401000, 8),
		),
	})

	b.AddSegment(Segment{Type: 1, Flags: 4, Offset: 0, Vaddr: 0x400000, Filesz: 0x400, Memsz: 0x400, Align: 0x1000})
	b.AddSegment(Segment{Type: 1, Flags: 5, Offset: 0x158, Vaddr: 0x401000, Filesz: 0x10, Memsz: 0x10, Align: 0x1000})
	b.AddSegment(Segment{Type: 1, Flags: 6, Offset: 0x1c0, Vaddr: 0x402e00, Filesz: 0x80, Memsz: 0x240, Align: 0x1000})
	b.AddSegment(Segment{Type: 2, Flags: 6, Offset: 0x1c0, Vaddr: 0x402e00, Filesz: 0x70, Memsz: 0x70, Align: 8})
	b.AddSegment(Segment{Type: 0x6474e551, Flags: 6, Align: 16})

	return b
}

// Sample returns the encoded sample executable.
func Sample() []byte {
	return SampleBuilder().Bytes()
}
