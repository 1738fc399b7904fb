package postgres

import (
	"context"
	"fmt"

	"github.com/jakechorley/care-scheduler/pkg/db"
)

// ListFamilies retrieves all family records ordered by name
func (d *DB) ListFamilies(ctx context.Context) ([]db.Family, error) {
	rows, err := d.pool.Query(ctx, `
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
		var f db.Family
		if err := rows.Scan(&f.ID, &f.Name, &f.Zip, &f.ContinuityPreference, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan family: %w", err)
		}
		families = append(families, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating families: %w", err)
	}

	return families, nil
}

// GetFamily retrieves a single family by id
func (d *DB) GetFamily(ctx context.Context, id string) (*db.Family, error) {
	var f db.Family
	err := d.pool.QueryRow(ctx, `
		SELECT id, name, zip, continuity_preference, created_at
		FROM family
		WHERE id = $1
	`, id).Scan(&f.ID, &f.Name, &f.Zip, &f.ContinuityPreference, &f.CreatedAt)
	if err != nil {
		return nil, notFound(err, "family", id)
	}
	return &f, nil
}

// InsertFamily inserts a family record. CreatedAt is filled from the database.
func (d *DB) InsertFamily(ctx context.Context, family *db.Family) error {
	err := d.pool.QueryRow(ctx, `
		INSERT INTO family (id, name, zip, continuity_preference)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, family.ID, family.Name, family.Zip, family.ContinuityPreference).Scan(&family.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert family: %w", err)
	}
	return nil
}
