package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/elfpeek/internal/testutil"
)

// createTestStore opens a fresh database under t.TempDir with a clock that
// advances one second per call, starting at base.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	s.now = testutil.NewClock(base, time.Second).Now
	return s
}

var base = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// createTestInspection creates an inspection with minimal required fields.
func createTestInspection(path, digest string) Inspection {
	return Inspection{
		Path:    path,
		Digest:  digest,
		Type:    "Exec",
		Machine: "X86_64",
		Entry:   0x401000,
		Report:  `{"selected":{"file_header":true}}`,
	}
}
