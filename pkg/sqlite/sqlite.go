/*
Package sqlite provides a SQLite-backed implementation of db.Database.

It is the single-file store used for local development, demos and the
HTTP handler tests. Postgres remains the production store; the schema here
mirrors pkg/postgres/migrations with SQLite types:

	provider, provider_availability, family, shift, assignment

Timestamps are stored as fixed-width UTC text so that ORDER BY on the
column sorts chronologically. Availability times are "HH:MM:SS" text.

CONCURRENCY:
  Writes take the store mutex. Scheduling runs are serialized in-process
  with a separate mutex, since a SQLite file has a single writer anyway.

USAGE:
  store, err := sqlite.New("./data/care.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/jakechorley/care-scheduler/pkg/db"
)

// timeLayout is fixed width so text comparison matches time order
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store implements db.Database using SQLite.
type Store struct {
	db    *sql.DB
	mu    sync.RWMutex
	runMu sync.Mutex
	now   func() time.Time
}

var _ db.Database = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	conn, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Every connection to ":memory:" is its own database
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	store := &Store{db: conn, now: time.Now}
	if err := store.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS provider (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		home_zip TEXT NOT NULL,
		max_hours INTEGER NOT NULL DEFAULT 40,
		skills TEXT NOT NULL,
		active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS provider_availability (
		id TEXT PRIMARY KEY,
		provider_id TEXT NOT NULL REFERENCES provider(id) ON DELETE CASCADE,
		weekday INTEGER NOT NULL CHECK (weekday BETWEEN 0 AND 6),
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		CHECK (start_time < end_time)
	);

	CREATE INDEX IF NOT EXISTS ix_availability_weekday_provider
		ON provider_availability (weekday, provider_id);

	CREATE TABLE IF NOT EXISTS family (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		zip TEXT NOT NULL,
		continuity_preference TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS shift (
		id TEXT PRIMARY KEY,
		family_id TEXT NOT NULL REFERENCES family(id),
		starts TEXT NOT NULL,
		ends TEXT NOT NULL,
		zip TEXT NOT NULL,
		required_skills TEXT NOT NULL,
		CHECK (starts < ends)
	);

	CREATE INDEX IF NOT EXISTS ix_shift_starts ON shift (starts);
	CREATE INDEX IF NOT EXISTS ix_shift_ends ON shift (ends);

	CREATE TABLE IF NOT EXISTS assignment (
		id TEXT PRIMARY KEY,
		shift_id TEXT NOT NULL REFERENCES shift(id) ON DELETE CASCADE,
		provider_id TEXT NOT NULL REFERENCES provider(id),
		status TEXT NOT NULL DEFAULT 'requested' CHECK (status IN ('requested', 'confirmed', 'declined')),
		message TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		UNIQUE (shift_id, provider_id)
	);

	CREATE INDEX IF NOT EXISTS ix_assignment_provider ON assignment (provider_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// AcquireRunLock serializes scheduling runs within this process
func (s *Store) AcquireRunLock(_ context.Context) (func(), error) {
	if !s.runMu.TryLock() {
		return nil, db.ErrRunInProgress
	}
	return s.runMu.Unlock, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) (time.Time, error) {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stored timestamp %q: %w", value, err)
	}
	return t, nil
}

func isUniqueConstraintError(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) &&
		(sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique || sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey)
}

// expectOneRow maps a zero-row statement to db.ErrNotFound
func expectOneRow(result sql.Result, what, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", what, id, db.ErrNotFound)
	}
	return nil
}

// notFound maps sql.ErrNoRows to db.ErrNotFound
func notFound(err error, what, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", what, id, db.ErrNotFound)
	}
	return fmt.Errorf("failed to get %s: %w", what, err)
}
