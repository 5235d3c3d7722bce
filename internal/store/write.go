package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Inspection is one recorded inspection of an ELF file.
type Inspection struct {
	ID          string    `json:"id" yaml:"id"`
	Path        string    `json:"path" yaml:"path"`
	Digest      string    `json:"digest" yaml:"digest"`
	Type        string    `json:"type" yaml:"type"`
	Machine     string    `json:"machine" yaml:"machine"`
	Entry       uint64    `json:"entry" yaml:"entry"`
	Report      string    `json:"-" yaml:"-"`
	InspectedAt time.Time `json:"inspected_at" yaml:"inspected_at"`
}

// RecordInspection inserts ins and returns the stored row.
//
// ID and InspectedAt are assigned when empty. Uses ON CONFLICT DO NOTHING
// on (path, digest): recording an unchanged file again returns the
// existing row with created == false.
func (s *Store) RecordInspection(ctx context.Context, ins Inspection) (stored Inspection, created bool, err error) {
	if ins.Path == "" || ins.Digest == "" {
		return Inspection{}, false, errors.New("record inspection: path and digest are required")
	}
	if ins.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return Inspection{}, false, fmt.Errorf("record inspection: generate id: %w", err)
		}
		ins.ID = id.String()
	}
	if ins.InspectedAt.IsZero() {
		ins.InspectedAt = s.now()
	}
	ins.InspectedAt = ins.InspectedAt.UTC()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO inspections
		(id, path, digest, elf_type, machine, entry, report, inspected_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		ins.ID,
		ins.Path,
		ins.Digest,
		ins.Type,
		ins.Machine,
		int64(ins.Entry),
		ins.Report,
		ins.InspectedAt.UnixNano(),
	)
	if err != nil {
		return Inspection{}, false, fmt.Errorf("record inspection: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return Inspection{}, false, fmt.Errorf("record inspection: %w", err)
	}
	if n == 1 {
		return ins, true, nil
	}

	existing, err := s.findByPathDigest(ctx, ins.Path, ins.Digest)
	if err != nil {
		return Inspection{}, false, fmt.Errorf("record inspection: %w", err)
	}
	return existing, false, nil
}
