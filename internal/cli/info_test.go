package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/elfpeek/internal/config"
	"github.com/roach88/elfpeek/internal/elf/elftest"
)

type infoEnvelope struct {
	Status string     `json:"status"`
	Data   InfoResult `json:"data"`
	Error  *CLIError  `json:"error"`
}

func decodeInfo(t *testing.T, out string) infoEnvelope {
	t.Helper()
	var env infoEnvelope
	require.NoError(t, json.Unmarshal([]byte(out), &env))
	return env
}

func TestInfo_AllMatchesReportGolden(t *testing.T) {
	want, err := os.ReadFile(filepath.Join("..", "report", "testdata", "golden", "sample_all.golden"))
	require.NoError(t, err)

	stdout, _, err := execute(t, nil, "info", "-a", writeSample(t))
	require.NoError(t, err)
	assert.Equal(t, string(want), stdout)
}

func TestInfo_DefaultsToConfigSections(t *testing.T) {
	path := writeSample(t)

	stdout, _, err := execute(t, nil, "info", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "ELF file header:")
	assert.Contains(t, stdout, "Entrypoint: 0x00401000")
	assert.NotContains(t, stdout, "ELF program headers:")

	cfg := config.DefaultConfig()
	cfg.Sections = []string{"program-headers"}
	stdout, _, err = execute(t, cfg, "info", path)
	require.NoError(t, err)
	assert.NotContains(t, stdout, "ELF file header:")
	assert.Contains(t, stdout, "ELF program headers:")

	// Flags replace the config selection.
	stdout, _, err = execute(t, cfg, "info", "--dyn-syms", path)
	require.NoError(t, err)
	assert.NotContains(t, stdout, "ELF program headers:")
	assert.Contains(t, stdout, "Dynamic linking symbol table (.dynsym):")
}

func TestInfo_MissingParts(t *testing.T) {
	b := elftest.New()
	b.Entry = 0x401000
	b.AddSegment(elftest.Segment{Type: 1, Flags: 5, Vaddr: 0x400000, Filesz: 0x40, Memsz: 0x40, Align: 0x1000})

	stdout, _, err := execute(t, nil, "info", "--symbols", "-r", "-d", writeObject(t, b.Bytes()))
	require.NoError(t, err)
	assert.Contains(t, stdout, "There is no symbol table in this ELF object.")
	assert.Contains(t, stdout, "There are no relocations in this ELF object.")
	assert.Contains(t, stdout, "There is no dynamic section in this ELF object.")
}

func TestInfo_JSON(t *testing.T) {
	path := writeSample(t)

	stdout, _, err := execute(t, nil, "--format", "json", "info", "-p", path)
	require.NoError(t, err)

	env := decodeInfo(t, stdout)
	assert.Equal(t, "ok", env.Status)
	assert.Equal(t, path, env.Data.Path)
	assert.Regexp(t, `^[0-9a-f]{64}$`, env.Data.Digest)
	assert.Nil(t, env.Data.Recorded)

	require.NotNil(t, env.Data.Report)
	assert.Nil(t, env.Data.Report.Header)
	require.Len(t, env.Data.Report.Segments, 5)
	assert.Equal(t, uint64(0x400000), env.Data.Report.Segments[0].Vaddr)
}

func TestInfo_DigestIgnoresPath(t *testing.T) {
	a, _, err := execute(t, nil, "--format", "json", "info", "-a", writeSample(t))
	require.NoError(t, err)
	b, _, err := execute(t, nil, "--format", "json", "info", "-a", writeSample(t))
	require.NoError(t, err)

	assert.Equal(t, decodeInfo(t, a).Data.Digest, decodeInfo(t, b).Data.Digest)
}

func TestInfo_RecordsOnce(t *testing.T) {
	path := writeSample(t)
	db := filepath.Join(t.TempDir(), "history.db")

	stdout, _, err := execute(t, nil, "--format", "json", "info", "--db", db, path)
	require.NoError(t, err)
	first := decodeInfo(t, stdout)
	require.NotNil(t, first.Data.Recorded)
	assert.True(t, first.Data.Recorded.Created)
	assert.NotEmpty(t, first.Data.Recorded.ID)

	stdout, _, err = execute(t, nil, "--format", "json", "info", "--db", db, path)
	require.NoError(t, err)
	second := decodeInfo(t, stdout)
	require.NotNil(t, second.Data.Recorded)
	assert.False(t, second.Data.Recorded.Created)
	assert.Equal(t, first.Data.Recorded.ID, second.Data.Recorded.ID)
}

func TestInfo_RecordsFullReportWhateverIsShown(t *testing.T) {
	path := writeSample(t)
	db := filepath.Join(t.TempDir(), "history.db")

	stdout, _, err := execute(t, nil, "--format", "json", "info", "-f", "--db", db, path)
	require.NoError(t, err)
	header := decodeInfo(t, stdout)
	require.NotNil(t, header.Data.Recorded)
	assert.True(t, header.Data.Recorded.Created)
	assert.NotEqual(t, header.Data.Digest, header.Data.Recorded.Digest)

	stdout, _, err = execute(t, nil, "--format", "json", "info", "-a", "--db", db, path)
	require.NoError(t, err)
	all := decodeInfo(t, stdout)
	require.NotNil(t, all.Data.Recorded)
	assert.False(t, all.Data.Recorded.Created)
	assert.Equal(t, header.Data.Recorded.ID, all.Data.Recorded.ID)
	assert.Equal(t, all.Data.Digest, all.Data.Recorded.Digest)

	stdout, _, err = execute(t, nil, "--format", "json", "history", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(stdout, `"id"`))
}

func TestInfo_ConfigDatabase(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DB = filepath.Join(t.TempDir(), "history.db")

	stdout, _, err := execute(t, cfg, "--format", "json", "info", writeSample(t))
	require.NoError(t, err)
	env := decodeInfo(t, stdout)
	require.NotNil(t, env.Data.Recorded)
	assert.True(t, env.Data.Recorded.Created)
}

func TestInfo_Errors(t *testing.T) {
	dir := t.TempDir()
	notELF := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(notELF, []byte("this is plain text, not an object file\n"), 0o644))

	badType := elftest.SampleBuilder()
	badType.Type = 0x0100

	tests := []struct {
		name string
		path string
		code string
	}{
		{"missing file", filepath.Join(dir, "missing"), ErrCodeNotFound},
		{"not elf", notELF, ErrCodeNotELF},
		{"invalid type", writeObject(t, badType.Bytes()), ErrCodeNotELF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := execute(t, nil, "--format", "json", "info", tt.path)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.True(t, IsReported(err))

			env := decodeInfo(t, stdout)
			assert.Equal(t, "error", env.Status)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
		})
	}
}

func TestInfo_BadDatabase(t *testing.T) {
	db := filepath.Join(t.TempDir(), "missing-dir", "history.db")

	stdout, _, err := execute(t, nil, "info", "--db", db, writeSample(t))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, "Error [E005]")
}

func TestInfo_RequiresOneArg(t *testing.T) {
	_, _, err := execute(t, nil, "info")
	require.Error(t, err)
}
