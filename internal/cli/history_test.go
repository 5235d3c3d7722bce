package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/elfpeek/internal/config"
	"github.com/roach88/elfpeek/internal/elf/elftest"
	"github.com/roach88/elfpeek/internal/store"
)

func TestHistory_NoDatabase(t *testing.T) {
	stdout, _, err := execute(t, nil, "history")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, "Error [E005]")
}

func TestHistory_Empty(t *testing.T) {
	db := filepath.Join(t.TempDir(), "history.db")

	stdout, _, err := execute(t, nil, "history", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "No inspections recorded.\n", stdout)
}

func TestHistory_ListsRecorded(t *testing.T) {
	db := filepath.Join(t.TempDir(), "history.db")
	path := writeSample(t)

	_, _, err := execute(t, nil, "info", "--db", db, path)
	require.NoError(t, err)

	stdout, _, err := execute(t, nil, "history", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Inspected")
	assert.Contains(t, stdout, "Exec")
	assert.Contains(t, stdout, "X86_64")
	assert.Contains(t, stdout, "0x0000000000401000")
	assert.Contains(t, stdout, path)
}

func TestHistory_JSONAndLimit(t *testing.T) {
	db := filepath.Join(t.TempDir(), "history.db")

	b := elftest.SampleBuilder()
	b.Entry = 0x401008
	paths := []string{writeSample(t), writeObject(t, b.Bytes())}
	for _, p := range paths {
		_, _, err := execute(t, nil, "info", "--db", db, p)
		require.NoError(t, err)
	}

	decode := func(out string) []store.Inspection {
		var env struct {
			Status string             `json:"status"`
			Data   []store.Inspection `json:"data"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &env))
		assert.Equal(t, "ok", env.Status)
		return env.Data
	}

	stdout, _, err := execute(t, nil, "--format", "json", "history", "--db", db)
	require.NoError(t, err)
	assert.Len(t, decode(stdout), 2)

	stdout, _, err = execute(t, nil, "--format", "json", "history", "--db", db, "-n", "1")
	require.NoError(t, err)
	assert.Len(t, decode(stdout), 1)
}

func TestHistory_Path(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DB = filepath.Join(t.TempDir(), "history.db")
	path := writeSample(t)

	_, _, err := execute(t, cfg, "info", path)
	require.NoError(t, err)

	stdout, _, err := execute(t, cfg, "--format", "json", "history", "--path", path)
	require.NoError(t, err)

	var env struct {
		Data []store.Inspection `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &env))
	require.Len(t, env.Data, 1)
	assert.Equal(t, path, env.Data[0].Path)
	assert.Equal(t, uint64(0x401000), env.Data[0].Entry)

	stdout, _, err = execute(t, cfg, "history", "--path", filepath.Join(t.TempDir(), "other"))
	require.NoError(t, err)
	assert.Equal(t, "No inspections recorded.\n", stdout)
}
