package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when no inspection matches a lookup.
var ErrNotFound = errors.New("inspection not found")

const inspectionColumns = `id, path, digest, elf_type, machine, entry, report, inspected_at`

// ListInspections returns up to limit inspections, newest first.
// A limit <= 0 returns every row.
//
// Returns an empty slice (not nil) when the history is empty.
func (s *Store) ListInspections(ctx context.Context, limit int) ([]Inspection, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+inspectionColumns+`
		FROM inspections
		ORDER BY inspected_at DESC, id COLLATE BINARY DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query inspections: %w", err)
	}
	defer rows.Close()

	out := []Inspection{}
	for rows.Next() {
		ins, err := scanInspection(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ins)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate inspections: %w", err)
	}
	return out, nil
}

// LatestByPath returns the most recent inspection of path, or ErrNotFound.
func (s *Store) LatestByPath(ctx context.Context, path string) (Inspection, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+inspectionColumns+`
		FROM inspections
		WHERE path = ?
		ORDER BY inspected_at DESC, id COLLATE BINARY DESC
		LIMIT 1
	`, path)
	ins, err := scanInspection(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Inspection{}, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return ins, err
}

func (s *Store) findByPathDigest(ctx context.Context, path, digest string) (Inspection, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+inspectionColumns+`
		FROM inspections
		WHERE path = ? AND digest = ?
	`, path, digest)
	ins, err := scanInspection(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Inspection{}, fmt.Errorf("%w: %s@%s", ErrNotFound, path, digest)
	}
	return ins, err
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanInspection(sc scanner) (Inspection, error) {
	var (
		ins   Inspection
		entry int64
		at    int64
	)
	if err := sc.Scan(&ins.ID, &ins.Path, &ins.Digest, &ins.Type, &ins.Machine, &entry, &ins.Report, &at); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Inspection{}, err
		}
		return Inspection{}, fmt.Errorf("scan inspection: %w", err)
	}
	ins.Entry = uint64(entry)
	ins.InspectedAt = time.Unix(0, at).UTC()
	return ins, nil
}
