package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/roach88/elfpeek/internal/elf/elftest"
)

// WriteObject writes b to an executable file under t.TempDir and returns
// its path.
func WriteObject(t testing.TB, b []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "object")
	if err := os.WriteFile(path, b, 0o755); err != nil {
		t.Fatalf("write object: %v", err)
	}
	return path
}

// WriteSample writes the elftest sample executable and returns its path.
func WriteSample(t testing.TB) string {
	t.Helper()
	return WriteObject(t, elftest.Sample())
}
