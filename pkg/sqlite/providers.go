package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jakechorley/care-scheduler/pkg/db"
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProvider(row rowScanner) (db.Provider, error) {
	var p db.Provider
	var createdAt string
	if err := row.Scan(&p.ID, &p.Name, &p.Email, &p.HomeZip, &p.MaxHours, &p.Skills, &p.Active, &createdAt); err != nil {
		return p, err
	}
	t, err := parseTime(createdAt)
	if err != nil {
		return p, err
	}
	p.CreatedAt = t
	return p, nil
}

const providerColumns = `id, name, email, home_zip, max_hours, skills, active, created_at`

// ListProviders retrieves all provider records ordered by name
func (s *Store) ListProviders(ctx context.Context) ([]db.Provider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT `+providerColumns+` FROM provider ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query providers: %w", err)
	}
	defer rows.Close()

	var providers []db.Provider
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan provider: %w", err)
		}
		providers = append(providers, p)
	}
	return providers, rows.Err()
}

// GetProvider retrieves a single provider by id
func (s *Store) GetProvider(ctx context.Context, id string) (*db.Provider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, err := scanProvider(s.db.QueryRowContext(ctx, `SELECT `+providerColumns+` FROM provider WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err, "provider", id)
	}
	return &p, nil
}

// InsertProvider inserts a provider record and stamps CreatedAt
func (s *Store) InsertProvider(ctx context.Context, provider *db.Provider) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := s.now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO provider (id, name, email, home_zip, max_hours, skills, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, provider.ID, provider.Name, provider.Email, provider.HomeZip, provider.MaxHours, provider.Skills, provider.Active, formatTime(createdAt))
	if err != nil {
		return fmt.Errorf("failed to insert provider: %w", err)
	}
	provider.CreatedAt = createdAt
	return nil
}

// SetProviderActive toggles whether a provider takes part in scheduling runs
func (s *Store) SetProviderActive(ctx context.Context, id string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, `UPDATE provider SET active = ? WHERE id = ?`, active, id)
	if err != nil {
		return fmt.Errorf("failed to update provider: %w", err)
	}
	return expectOneRow(result, "provider", id)
}

// ListAvailability retrieves every availability window
func (s *Store) ListAvailability(ctx context.Context) ([]db.ProviderAvailability, error) {
	return s.queryAvailability(ctx, `
		SELECT id, provider_id, weekday, start_time, end_time
		FROM provider_availability
		ORDER BY provider_id, weekday, start_time
	`)
}

// ListProviderAvailability retrieves the availability windows of one provider
func (s *Store) ListProviderAvailability(ctx context.Context, providerID string) ([]db.ProviderAvailability, error) {
	return s.queryAvailability(ctx, `
		SELECT id, provider_id, weekday, start_time, end_time
		FROM provider_availability
		WHERE provider_id = ?
		ORDER BY weekday, start_time
	`, providerID)
}

func (s *Store) queryAvailability(ctx context.Context, query string, args ...any) ([]db.ProviderAvailability, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
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
	return windows, rows.Err()
}

// InsertAvailability inserts availability windows atomically
func (s *Store) InsertAvailability(ctx context.Context, windows []db.ProviderAvailability) error {
	if len(windows) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, w := range windows {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO provider_availability (id, provider_id, weekday, start_time, end_time)
				VALUES (?, ?, ?, ?, ?)
			`, w.ID, w.ProviderID, w.Weekday, w.Start, w.End)
			if err != nil {
				return fmt.Errorf("failed to insert availability: %w", err)
			}
		}
		return nil
	})
}

// DeleteAvailability removes one availability window
func (s *Store) DeleteAvailability(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, `DELETE FROM provider_availability WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete availability: %w", err)
	}
	return expectOneRow(result, "availability", id)
}

// inTx runs fn in a transaction. Callers hold s.mu.
func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
