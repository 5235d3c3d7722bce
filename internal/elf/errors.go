package elf

import "errors"

var (
	// ErrInvalidMagic is returned when the first four bytes are not 7f 'E' 'L' 'F'.
	ErrInvalidMagic = errors.New("invalid magic number")

	// ErrInvalidClass is returned for objects that are not ELFCLASS64.
	ErrInvalidClass = errors.New("invalid class")

	// ErrInvalidEndianness is returned for objects that are not little-endian.
	ErrInvalidEndianness = errors.New("invalid endianness")

	// ErrTruncated is returned when a header or table extends past the input.
	ErrTruncated = errors.New("truncated object")

	// ErrWrongSectionType is returned when a table is built from a section of the wrong type.
	ErrWrongSectionType = errors.New("wrong section type")

	// ErrIndexOutOfRange is returned for section, symbol, or string lookups past the end of a table.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrEmptyTable is returned when a symbol, relocation, or dynamic section holds no entries.
	ErrEmptyTable = errors.New("empty table")

	// ErrInvalidHeader is returned by Header when an enumerated field holds an unknown value.
	ErrInvalidHeader = errors.New("invalid elf header")
)
