package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jakechorley/care-scheduler/pkg/db"
)

func scanShift(row rowScanner) (db.Shift, error) {
	var sh db.Shift
	var starts, ends string
	if err := row.Scan(&sh.ID, &sh.FamilyID, &starts, &ends, &sh.Zip, &sh.RequiredSkills); err != nil {
		return sh, err
	}
	var err error
	if sh.Starts, err = parseTime(starts); err != nil {
		return sh, err
	}
	if sh.Ends, err = parseTime(ends); err != nil {
		return sh, err
	}
	return sh, nil
}

// ListShifts retrieves all shifts ordered by start time
func (s *Store) ListShifts(ctx context.Context) ([]db.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, family_id, starts, ends, zip, required_skills
		FROM shift
		ORDER BY starts, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query shifts: %w", err)
	}
	defer rows.Close()

	var shifts []db.Shift
	for rows.Next() {
		sh, err := scanShift(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shift: %w", err)
		}
		shifts = append(shifts, sh)
	}
	return shifts, rows.Err()
}

// GetShift retrieves a single shift by id
func (s *Store) GetShift(ctx context.Context, id string) (*db.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sh, err := scanShift(s.db.QueryRowContext(ctx, `
		SELECT id, family_id, starts, ends, zip, required_skills
		FROM shift
		WHERE id = ?
	`, id))
	if err != nil {
		return nil, notFound(err, "shift", id)
	}
	return &sh, nil
}

// InsertShifts inserts shift records atomically
func (s *Store) InsertShifts(ctx context.Context, shifts []db.Shift) error {
	if len(shifts) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, sh := range shifts {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO shift (id, family_id, starts, ends, zip, required_skills)
				VALUES (?, ?, ?, ?, ?, ?)
			`, sh.ID, sh.FamilyID, formatTime(sh.Starts), formatTime(sh.Ends), sh.Zip, sh.RequiredSkills)
			if err != nil {
				return fmt.Errorf("failed to insert shift: %w", err)
			}
		}
		return nil
	})
}

// DeleteShift removes a shift. Its assignments go with it via ON DELETE CASCADE.
func (s *Store) DeleteShift(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, `DELETE FROM shift WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete shift: %w", err)
	}
	return expectOneRow(result, "shift", id)
}
