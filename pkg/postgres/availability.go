package postgres

import (
	"context"
	"fmt"

	"github.com/jakechorley/care-scheduler/pkg/db"
)

// TIME columns are read back as text so they keep the "HH:MM:SS" form used by db.ProviderAvailability
const availabilitySelect = `
	SELECT id, provider_id, weekday, start_time::text, end_time::text
	FROM provider_availability
`

// ListAvailability retrieves every availability window
func (d *DB) ListAvailability(ctx context.Context) ([]db.ProviderAvailability, error) {
	return d.queryAvailability(ctx, availabilitySelect+` ORDER BY provider_id, weekday, start_time`)
}

// ListProviderAvailability retrieves the availability windows of one provider
func (d *DB) ListProviderAvailability(ctx context.Context, providerID string) ([]db.ProviderAvailability, error) {
	return d.queryAvailability(ctx, availabilitySelect+` WHERE provider_id = $1 ORDER BY weekday, start_time`, providerID)
}

func (d *DB) queryAvailability(ctx context.Context, query string, args ...any) ([]db.ProviderAvailability, error) {
	rows, err := d.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query availability: %w", err)
	}
	defer rows.Close()

	var windows []db.ProviderAvailability
	for rows.Next() {
		var w db.ProviderAvailability
		if err := rows.Scan(&w.ID, &w.ProviderID, &w.Weekday, &w.Start, &w.End); err != nil {
			return nil, fmt.Errorf("failed to scan availability: %w", err)
		}
		windows = append(windows, w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating availability: %w", err)
	}

	return windows, nil
}

// InsertAvailability inserts availability windows in a single transaction
func (d *DB) InsertAvailability(ctx context.Context, windows []db.ProviderAvailability) error {
	if len(windows) == 0 {
		return nil
	}

	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, w := range windows {
		_, err := tx.Exec(ctx, `
			INSERT INTO provider_availability (id, provider_id, weekday, start_time, end_time)
			VALUES ($1, $2, $3, $4::time, $5::time)
		`, w.ID, w.ProviderID, w.Weekday, w.Start, w.End)
		if err != nil {
			return fmt.Errorf("failed to insert availability: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// DeleteAvailability removes one availability window
func (d *DB) DeleteAvailability(ctx context.Context, id string) error {
	tag, err := d.pool.Exec(ctx, `DELETE FROM provider_availability WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete availability: %w", err)
	}
	return expectOneRow(tag, "availability", id)
}
