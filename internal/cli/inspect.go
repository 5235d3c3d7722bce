package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/roach88/elfpeek/internal/digest"
	"github.com/roach88/elfpeek/internal/elf"
	"github.com/roach88/elfpeek/internal/mapfile"
	"github.com/roach88/elfpeek/internal/report"
)

// inspection is a built report with the identity of the bytes behind it.
type inspection struct {
	Path   string
	Header elf.Header
	Report *report.Report
	Digest string
}

// inspect maps path, parses it, and builds the report for sel. Failures
// carry the error code to report.
func inspect(path string, sel report.Sections) (*inspection, *codedError) {
	slog.Debug("mapping file", "path", path)
	m, err := mapfile.Open(path)
	if err != nil {
		return nil, &codedError{ErrCodeNotFound, "failed to open file", err}
	}
	defer m.Close()

	f, err := elf.Parse(m.Bytes())
	if err != nil {
		return nil, &codedError{ErrCodeNotELF, "not a supported ELF object", err}
	}
	slog.Debug("parsed object", "path", path, "segments", len(f.Segments()), "sections", len(f.Sections()))

	r, err := report.Build(f, sel)
	if errors.Is(err, elf.ErrInvalidHeader) {
		return nil, &codedError{ErrCodeNotELF, "not a supported ELF object", err}
	}
	if err != nil {
		return nil, &codedError{ErrCodeReport, "failed to build report", err}
	}

	// Build has already validated the header.
	hdr, _ := f.Header()

	sum, err := digest.ReportDigest(r)
	if err != nil {
		return nil, &codedError{ErrCodeGeneric, "failed to digest report", err}
	}
	slog.Debug("report built", "path", path, "digest", sum, "notes", len(r.Notes))

	return &inspection{Path: path, Header: hdr, Report: r, Digest: sum}, nil
}

// codedError pairs an error with its CLI error code.
type codedError struct {
	Code    string
	Message string
	Err     error
}

func (e *codedError) Error() string {
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// fail reports e through f and returns the ExitError for it.
func (e *codedError) fail(f *OutputFormatter, exitCode int) error {
	return f.Fail(exitCode, e.Code, e.Message, e.Err)
}

// executablePath resolves the running binary.
func executablePath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locate executable: %w", err)
	}
	return exe, nil
}
