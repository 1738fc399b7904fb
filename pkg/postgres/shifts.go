package postgres

import (
	"context"
	"fmt"

	"github.com/jakechorley/care-scheduler/pkg/db"
)

// ListShifts retrieves all shifts ordered by start time
func (d *DB) ListShifts(ctx context.Context) ([]db.Shift, error) {
	rows, err := d.pool.Query(ctx, `
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
		var s db.Shift
		if err := rows.Scan(&s.ID, &s.FamilyID, &s.Starts, &s.Ends, &s.Zip, &s.RequiredSkills); err != nil {
			return nil, fmt.Errorf("failed to scan shift: %w", err)
		}
		s.Starts = s.Starts.UTC()
		s.Ends = s.Ends.UTC()
		shifts = append(shifts, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shifts: %w", err)
	}

	return shifts, nil
}

// GetShift retrieves a single shift by id
func (d *DB) GetShift(ctx context.Context, id string) (*db.Shift, error) {
	var s db.Shift
	err := d.pool.QueryRow(ctx, `
		SELECT id, family_id, starts, ends, zip, required_skills
		FROM shift
		WHERE id = $1
	`, id).Scan(&s.ID, &s.FamilyID, &s.Starts, &s.Ends, &s.Zip, &s.RequiredSkills)
	if err != nil {
		return nil, notFound(err, "shift", id)
	}
	s.Starts = s.Starts.UTC()
	s.Ends = s.Ends.UTC()
	return &s, nil
}

// InsertShifts inserts shift records in a single transaction
func (d *DB) InsertShifts(ctx context.Context, shifts []db.Shift) error {
	if len(shifts) == 0 {
		return nil
	}

	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, s := range shifts {
		_, err := tx.Exec(ctx, `
			INSERT INTO shift (id, family_id, starts, ends, zip, required_skills)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, s.ID, s.FamilyID, s.Starts.UTC(), s.Ends.UTC(), s.Zip, s.RequiredSkills)
		if err != nil {
			return fmt.Errorf("failed to insert shift: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// DeleteShift removes a shift. Its assignments go with it via ON DELETE CASCADE.
func (d *DB) DeleteShift(ctx context.Context, id string) error {
	tag, err := d.pool.Exec(ctx, `DELETE FROM shift WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete shift: %w", err)
	}
	return expectOneRow(tag, "shift", id)
}
