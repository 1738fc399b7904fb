package sqlite

import (
	"context"
	"fmt"

	"github.com/jakechorley/care-scheduler/pkg/db"
)

// ListAssignments retrieves all assignments ordered by creation time
func (s *Store) ListAssignments(ctx context.Context) ([]db.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
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
		var createdAt string
		if err := rows.Scan(&a.ID, &a.ShiftID, &a.ProviderID, &a.Status, &a.Message, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		if a.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// InsertAssignment inserts an assignment record.
// A repeated (shift, provider) pair returns db.ErrDuplicateAssignment.
func (s *Store) InsertAssignment(ctx context.Context, assignment *db.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := s.now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO assignment (id, shift_id, provider_id, status, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, assignment.ID, assignment.ShiftID, assignment.ProviderID, assignment.Status, assignment.Message, formatTime(createdAt))
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("shift %s provider %s: %w", assignment.ShiftID, assignment.ProviderID, db.ErrDuplicateAssignment)
		}
		return fmt.Errorf("failed to insert assignment: %w", err)
	}
	assignment.CreatedAt = createdAt
	return nil
}

// ClaimShift inserts the assignment only when the shift has no assignment of any status
func (s *Store) ClaimShift(ctx context.Context, assignment *db.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := s.now().UTC()
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO assignment (id, shift_id, provider_id, status, message, created_at)
		SELECT ?, ?, ?, ?, ?, ?
		WHERE NOT EXISTS (SELECT 1 FROM assignment WHERE shift_id = ?)
	`, assignment.ID, assignment.ShiftID, assignment.ProviderID, assignment.Status, assignment.Message,
		formatTime(createdAt), assignment.ShiftID)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("shift %s: %w", assignment.ShiftID, db.ErrDuplicateAssignment)
		}
		return fmt.Errorf("failed to claim shift: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("shift %s: %w", assignment.ShiftID, db.ErrDuplicateAssignment)
	}
	assignment.CreatedAt = createdAt
	return nil
}

// UpdateAssignmentStatus sets the status of an existing assignment
func (s *Store) UpdateAssignmentStatus(ctx context.Context, id string, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, `UPDATE assignment SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update assignment: %w", err)
	}
	return expectOneRow(result, "assignment", id)
}

// DeleteAssignment removes an assignment
func (s *Store) DeleteAssignment(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, `DELETE FROM assignment WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete assignment: %w", err)
	}
	return expectOneRow(result, "assignment", id)
}
