package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/elfpeek/internal/report"
)

func noEnv(string) string { return "" }

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFrom_Defaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadFrom(filepath.Join(dir, "none.yaml"), filepath.Join(dir, "none2.yaml"), noEnv)
	require.NoError(t, err)

	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, report.Sections{FileHeader: true}, cfg.SectionSelection())
}

func TestLoadFrom_ProjectOverridesUser(t *testing.T) {
	dir := t.TempDir()
	user := writeFile(t, dir, "user.yaml", "format: json\ndb: /var/lib/elfpeek.db\n")
	project := writeFile(t, dir, "project.yaml", "format: yaml\nsections: [symbols, dyn-syms]\n")

	cfg, err := LoadFrom(user, project, noEnv)
	require.NoError(t, err)

	assert.Equal(t, "yaml", cfg.Format)
	assert.Equal(t, "/var/lib/elfpeek.db", cfg.DB)
	assert.Equal(t, report.Sections{Symbols: true, DynSyms: true}, cfg.SectionSelection())
}

func TestLoadFrom_EnvWins(t *testing.T) {
	dir := t.TempDir()
	project := writeFile(t, dir, "project.yaml", "db: a.db\npolicy: a.cue\n")

	cfg, err := LoadFrom("", project, envMap(map[string]string{
		EnvDB:     "b.db",
		EnvFormat: "JSON",
		EnvPolicy: "b.cue",
	}))
	require.NoError(t, err)

	assert.Equal(t, "b.db", cfg.DB)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "b.cue", cfg.Policy)
}

func TestLoadFrom_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	project := writeFile(t, dir, "project.yaml", "")

	cfg, err := LoadFrom("", project, noEnv)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadFrom_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unknown field", "colour: red\n", "field colour not found"},
		{"bad format", "format: xml\n", "invalid format"},
		{"bad section", "sections: [notes]\n", "unknown section"},
		{"bad yaml", "format: [\n", "parsing config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "c.yaml", tt.content)
			_, err := LoadFrom("", path, noEnv)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestUserConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	path, err := UserConfigPath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/xdg/elfpeek/config.yaml", path)

	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", "/home/tester")
	path, err = UserConfigPath()
	require.NoError(t, err)
	assert.Equal(t, "/home/tester/.config/elfpeek/config.yaml", path)
}

func TestLoad_ReadsProjectFileInWorkingDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv(EnvDB, "")
	t.Setenv(EnvFormat, "")
	t.Setenv(EnvPolicy, "")
	writeFile(t, dir, ProjectFile, "policy: local.cue\n")
	t.Chdir(dir)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "local.cue", cfg.Policy)
}
