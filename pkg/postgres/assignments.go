package postgres

import (
	"context"
	"fmt"

	"github.com/jakechorley/care-scheduler/pkg/db"
)

// ListAssignments retrieves all assignments ordered by creation time
func (d *DB) ListAssignments(ctx context.Context) ([]db.Assignment, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, shift_id, provider_id, status, message, created_at
		FROM assignment
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments: %w", err)
	}
	defer rows.Close()

	var assignments []db.Assignment
	for rows.Next() {
		var a db.Assignment
		if err := rows.Scan(&a.ID, &a.ShiftID, &a.ProviderID, &a.Status, &a.Message, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		assignments = append(assignments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assignments: %w", err)
	}

	return assignments, nil
}

// InsertAssignment inserts an assignment record.
// A repeated (shift, provider) pair returns db.ErrDuplicateAssignment.
func (d *DB) InsertAssignment(ctx context.Context, assignment *db.Assignment) error {
	err := d.pool.QueryRow(ctx, `
		INSERT INTO assignment (id, shift_id, provider_id, status, message)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, assignment.ID, assignment.ShiftID, assignment.ProviderID, assignment.Status, assignment.Message).
		Scan(&assignment.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("shift %s provider %s: %w", assignment.ShiftID, assignment.ProviderID, db.ErrDuplicateAssignment)
		}
		return fmt.Errorf("failed to insert assignment: %w", err)
	}
	return nil
}

// ClaimShift inserts the assignment only when the shift has no assignment of any status
func (d *DB) ClaimShift(ctx context.Context, assignment *db.Assignment) error {
	rows, err := d.pool.Query(ctx, `
		INSERT INTO assignment (id, shift_id, provider_id, status, message)
		SELECT $1, $2, $3, $4, $5
		WHERE NOT EXISTS (SELECT 1 FROM assignment WHERE shift_id = $2)
		RETURNING created_at
	`, assignment.ID, assignment.ShiftID, assignment.ProviderID, assignment.Status, assignment.Message)
	if err != nil {
		return fmt.Errorf("failed to claim shift: %w", err)
	}
	defer rows.Close()

	claimed := false
	for rows.Next() {
		if err := rows.Scan(&assignment.CreatedAt); err != nil {
			return fmt.Errorf("failed to scan claimed assignment: %w", err)
		}
		claimed = true
	}
	if err := rows.Err(); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("shift %s: %w", assignment.ShiftID, db.ErrDuplicateAssignment)
		}
		return fmt.Errorf("failed to claim shift: %w", err)
	}

	if !claimed {
		return fmt.Errorf("shift %s: %w", assignment.ShiftID, db.ErrDuplicateAssignment)
	}
	return nil
}

// UpdateAssignmentStatus sets the status of an existing assignment
func (d *DB) UpdateAssignmentStatus(ctx context.Context, id string, status string) error {
	tag, err := d.pool.Exec(ctx, `UPDATE assignment SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("failed to update assignment: %w", err)
	}
	return expectOneRow(tag, "assignment", id)
}

// DeleteAssignment removes an assignment
func (d *DB) DeleteAssignment(ctx context.Context, id string) error {
	tag, err := d.pool.Exec(ctx, `DELETE FROM assignment WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete assignment: %w", err)
	}
	return expectOneRow(tag, "assignment", id)
}
