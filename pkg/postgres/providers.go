package postgres

import (
	"context"
	"fmt"

	"github.com/jakechorley/care-scheduler/pkg/db"
)

const providerColumns = `id, name, email, home_zip, max_hours, skills, active, created_at`

// ListProviders retrieves all provider records ordered by name
func (d *DB) ListProviders(ctx context.Context) ([]db.Provider, error) {
	rows, err := d.pool.Query(ctx, `SELECT `+providerColumns+` FROM provider ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query providers: %w", err)
	}
	defer rows.Close()

	var providers []db.Provider
	for rows.Next() {
		var p db.Provider
		if err := rows.Scan(&p.ID, &p.Name, &p.Email, &p.HomeZip, &p.MaxHours, &p.Skills, &p.Active, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan provider: %w", err)
		}
		providers = append(providers, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating providers: %w", err)
	}

	return providers, nil
}

// GetProvider retrieves a single provider by id
func (d *DB) GetProvider(ctx context.Context, id string) (*db.Provider, error) {
	var p db.Provider
	err := d.pool.QueryRow(ctx, `SELECT `+providerColumns+` FROM provider WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Email, &p.HomeZip, &p.MaxHours, &p.Skills, &p.Active, &p.CreatedAt)
	if err != nil {
		return nil, notFound(err, "provider", id)
	}
	return &p, nil
}

// InsertProvider inserts a provider record. CreatedAt is filled from the database.
func (d *DB) InsertProvider(ctx context.Context, provider *db.Provider) error {
	err := d.pool.QueryRow(ctx, `
		INSERT INTO provider (id, name, email, home_zip, max_hours, skills, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`, provider.ID, provider.Name, provider.Email, provider.HomeZip, provider.MaxHours, provider.Skills, provider.Active).
		Scan(&provider.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert provider: %w", err)
	}
	return nil
}

// SetProviderActive toggles whether a provider takes part in scheduling runs
func (d *DB) SetProviderActive(ctx context.Context, id string, active bool) error {
	tag, err := d.pool.Exec(ctx, `UPDATE provider SET active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("failed to update provider: %w", err)
	}
	return expectOneRow(tag, "provider", id)
}
