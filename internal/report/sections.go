package report

import (
	"fmt"
	"strings"
)

// Sections selects which parts of an object a report covers.
type Sections struct {
	All            bool `json:"all,omitempty" yaml:"all,omitempty"`
	FileHeader     bool `json:"file_header,omitempty" yaml:"file_header,omitempty"`
	ProgramHeaders bool `json:"program_headers,omitempty" yaml:"program_headers,omitempty"`
	SectionHeaders bool `json:"section_headers,omitempty" yaml:"section_headers,omitempty"`
	Symbols        bool `json:"symbols,omitempty" yaml:"symbols,omitempty"`
	DynSyms        bool `json:"dyn_syms,omitempty" yaml:"dyn_syms,omitempty"`
	Relocations    bool `json:"relocations,omitempty" yaml:"relocations,omitempty"`
	Dynamic        bool `json:"dynamic,omitempty" yaml:"dynamic,omitempty"`
	SectionMapping bool `json:"section_mapping,omitempty" yaml:"section_mapping,omitempty"`
}

// SectionNames lists the names accepted by ParseSections, in report order.
var SectionNames = []string{
	"all",
	"file-header",
	"section-headers",
	"program-headers",
	"symbols",
	"dyn-syms",
	"relocations",
	"dynamic",
	"section-mapping",
}

// Any reports whether at least one part is selected.
func (s Sections) Any() bool {
	return s != Sections{}
}

// Expand resolves All into the individual parts.
func (s Sections) Expand() Sections {
	if !s.All {
		return s
	}
	return Sections{
		FileHeader:     true,
		ProgramHeaders: true,
		SectionHeaders: true,
		Symbols:        true,
		DynSyms:        true,
		Relocations:    true,
		Dynamic:        true,
		SectionMapping: true,
	}
}

// ParseSections builds a selection from names such as "file-header" or
// "dyn-syms". Underscores are accepted in place of dashes.
func ParseSections(names []string) (Sections, error) {
	var s Sections
	for _, raw := range names {
		switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "_", "-") {
		case "all":
			s.All = true
		case "file-header":
			s.FileHeader = true
		case "program-headers":
			s.ProgramHeaders = true
		case "section-headers":
			s.SectionHeaders = true
		case "symbols":
			s.Symbols = true
		case "dyn-syms":
			s.DynSyms = true
		case "relocations":
			s.Relocations = true
		case "dynamic":
			s.Dynamic = true
		case "section-mapping":
			s.SectionMapping = true
		default:
			return Sections{}, fmt.Errorf("unknown section %q (valid: %s)", raw, strings.Join(SectionNames, ", "))
		}
	}
	return s, nil
}
