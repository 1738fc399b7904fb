package sqlite

import (
	"context"
	"fmt"

	"github.com/jakechorley/care-scheduler/pkg/db"
)

func scanFamily(row rowScanner) (db.Family, error) {
	var f db.Family
	var createdAt string
	if err := row.Scan(&f.ID, &f.Name, &f.Zip, &f.ContinuityPreference, &createdAt); err != nil {
		return f, err
	}
	t, err := parseTime(createdAt)
	if err != nil {
		return f, err
	}
	f.CreatedAt = t
	return f, nil
}

// ListFamilies retrieves all family records ordered by name
func (s *Store) ListFamilies(ctx context.Context) ([]db.Family, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, zip, continuity_preference, created_at
		FROM family
		ORDER BY name, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query families: %w", err)
	}
	defer rows.Close()

	var families []db.Family
	for rows.Next() {
		f, err := scanFamily(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan family: %w", err)
		}
		families = append(families, f)
	}
	return families, rows.Err()
}

// GetFamily retrieves a single family by id
func (s *Store) GetFamily(ctx context.Context, id string) (*db.Family, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, err := scanFamily(s.db.QueryRowContext(ctx, `
		SELECT id, name, zip, continuity_preference, created_at
		FROM family
		WHERE id = ?
	`, id))
	if err != nil {
		return nil, notFound(err, "family", id)
	}
	return &f, nil
}

// InsertFamily inserts a family record and stamps CreatedAt
func (s *Store) InsertFamily(ctx context.Context, family *db.Family) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := s.now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO family (id, name, zip, continuity_preference, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, family.ID, family.Name, family.Zip, family.ContinuityPreference, formatTime(createdAt))
	if err != nil {
		return fmt.Errorf("failed to insert family: %w", err)
	}
	family.CreatedAt = createdAt
	return nil
}
