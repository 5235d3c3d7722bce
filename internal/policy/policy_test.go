package policy_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/elfpeek/internal/elf"
	"github.com/roach88/elfpeek/internal/elf/elftest"
	"github.com/roach88/elfpeek/internal/policy"
	"github.com/roach88/elfpeek/internal/report"
)

func buildReport(t *testing.T, b *elftest.Builder) *report.Report {
	t.Helper()
	f, err := elf.Parse(b.Bytes())
	require.NoError(t, err)
	r, err := report.Build(f, report.Sections{All: true})
	require.NoError(t, err)
	return r
}

func violationText(res policy.Result) string {
	var parts []string
	for _, v := range res.Violations {
		parts = append(parts, v.String())
	}
	return strings.Join(parts, "\n")
}

func nonpie(t *testing.T) *policy.Policy {
	t.Helper()
	p, err := policy.Builtin("nonpie")
	require.NoError(t, err)
	return p
}

func TestBuiltin_Metadata(t *testing.T) {
	p := nonpie(t)
	assert.Equal(t, "nonpie", p.Name)
	assert.Contains(t, p.Description, "0x400000")
	assert.Contains(t, policy.Builtins(), "nonpie")
}

func TestBuiltin_AllCompile(t *testing.T) {
	for _, name := range policy.Builtins() {
		_, err := policy.Builtin(name)
		assert.NoError(t, err, name)
	}
}

func TestBuiltin_Unknown(t *testing.T) {
	_, err := policy.Builtin("pie")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nonpie")
}

func TestNonPIE_Passes(t *testing.T) {
	res := nonpie(t).Check(buildReport(t, elftest.SampleBuilder()))

	assert.True(t, res.Passed, violationText(res))
	assert.Empty(t, res.Violations)
	assert.Equal(t, "nonpie", res.Policy)
}

func TestNonPIE_SharedObject(t *testing.T) {
	b := elftest.SampleBuilder()
	b.Type = 3

	res := nonpie(t).Check(buildReport(t, b))
	assert.False(t, res.Passed)
	assert.Contains(t, violationText(res), "Exec")
}

func TestNonPIE_WrongBase(t *testing.T) {
	b := elftest.New()
	b.AddSection(elftest.Section{Name: ".text", Type: 1, Addr: 0x10000, Data: []byte{0xc3}})
	b.AddSegment(elftest.Segment{Type: 1, Flags: 5, Vaddr: 0x10000, Filesz: 0x100, Memsz: 0x100, Align: 0x1000})

	res := nonpie(t).Check(buildReport(t, b))
	assert.False(t, res.Passed)
	assert.Contains(t, violationText(res), "vaddr")
}

func TestNonPIE_NoLoadSegment(t *testing.T) {
	b := elftest.New()
	b.AddSegment(elftest.Segment{Type: 0x6474e551, Flags: 6})

	res := nonpie(t).Check(buildReport(t, b))
	assert.False(t, res.Passed)
	assert.Contains(t, violationText(res), "load_segments")
}

func TestNonPIE_NoSegments(t *testing.T) {
	res := nonpie(t).Check(buildReport(t, elftest.New()))
	assert.False(t, res.Passed)
	assert.Contains(t, violationText(res), "segments")
}

func TestLoad_GuardedIndexCompiles(t *testing.T) {
	// Constraints that index into report data must compile while the
	// report is still empty.
	src := []byte(`
report: sections!: [...]
_named: [for s in report.sections if s.name != "" {s}]
if len(_named) > 0 {
	first_named: _named[0] & {name: ".text"}
}
`)
	p, err := policy.Load(src, "first.cue")
	require.NoError(t, err)

	res := p.Check(buildReport(t, elftest.SampleBuilder()))
	assert.True(t, res.Passed, violationText(res))
}

func TestNonPIE_HeaderNotInReport(t *testing.T) {
	f, err := elf.Parse(elftest.Sample())
	require.NoError(t, err)
	r, err := report.Build(f, report.Sections{ProgramHeaders: true})
	require.NoError(t, err)

	res := nonpie(t).Check(r)
	assert.False(t, res.Passed)
}

func TestLoad_CustomPolicy(t *testing.T) {
	src := []byte(`
description: "entry point inside .text"
report: header!: entry: >=0x401000 & <0x401010
`)
	p, err := policy.Load(src, "entry.cue")
	require.NoError(t, err)
	assert.Equal(t, "entry", p.Name)

	res := p.Check(buildReport(t, elftest.SampleBuilder()))
	assert.True(t, res.Passed, violationText(res))

	b := elftest.SampleBuilder()
	b.Entry = 0x500000
	res = p.Check(buildReport(t, b))
	assert.False(t, res.Passed)
	require.Len(t, res.Violations, 1)
	assert.Contains(t, res.Violations[0].Path, "entry")
}

func TestLoad_SyntaxError(t *testing.T) {
	_, err := policy.Load([]byte(`report: {`), "broken.cue")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.cue")
}

func TestLoad_NonStringName(t *testing.T) {
	_, err := policy.Load([]byte(`name: 3`), "n.cue")
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "machine.cue")
	require.NoError(t, os.WriteFile(path, []byte(`name: "x86"
report: header!: machine: "X86_64"
`), 0o644))

	p, err := policy.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "x86", p.Name)
	assert.True(t, p.Check(buildReport(t, elftest.SampleBuilder())).Passed)

	_, err = policy.LoadFile(filepath.Join(t.TempDir(), "missing.cue"))
	assert.Error(t, err)
}
