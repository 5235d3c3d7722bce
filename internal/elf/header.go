package elf

import "fmt"

// Header is the validated subset of the file header that describes the
// object as a whole.
type Header struct {
	Class   Class
	Data    Data
	Type    Type
	Machine Machine
	Entry   uint64
}

// Header returns the validated header. It fails with ErrInvalidHeader if the
// class, data encoding, or object type is not a defined value.
func (f *File) Header() (Header, error) {
	id := f.Ident
	if !id.Class.known() {
		return Header{}, fmt.Errorf("%w: class %s", ErrInvalidHeader, id.Class)
	}
	if !id.Data.known() {
		return Header{}, fmt.Errorf("%w: data %s", ErrInvalidHeader, id.Data)
	}
	if !f.Type.known() {
		return Header{}, fmt.Errorf("%w: type %s", ErrInvalidHeader, f.Type)
	}
	return Header{
		Class:   id.Class,
		Data:    id.Data,
		Type:    f.Type,
		Machine: f.Machine,
		Entry:   f.Entry,
	}, nil
}
