package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/jakechorley/care-scheduler/pkg/db"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Advisory lock keys. Arbitrary but fixed so every process contends on the same lock.
const (
	runLockKey       int64 = 0x43415245_0001
	migrationLockKey int64 = 0x43415245_0002
)

// pgUniqueViolation is the SQLSTATE for unique_violation
const pgUniqueViolation = "23505"

const unlockTimeout = 5 * time.Second

// DB provides database operations using PostgreSQL
type DB struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

var _ db.Database = (*DB)(nil)

// NewDB creates a new PostgreSQL database connection
func NewDB(ctx context.Context, connString string, logger *zap.Logger) (*DB, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}
	return &DB{pool: pool, logger: logger}, nil
}

// Close closes the database connection pool
func (d *DB) Close() {
	d.pool.Close()
}

// RunMigrations executes all pending SQL migration files in order.
// It tracks which migrations have been applied in a schema_migrations table and
// holds an advisory lock so concurrent starts do not apply the same file twice.
// Returns the filenames applied by this call.
func (d *DB) RunMigrations(ctx context.Context) ([]string, error) {
	conn, err := d.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection for migrations: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `SELECT pg_advisory_lock($1)`, migrationLockKey); err != nil {
		return nil, fmt.Errorf("failed to take migration lock: %w", err)
	}
	defer conn.Exec(context.Background(), `SELECT pg_advisory_unlock($1)`, migrationLockKey)

	_, err = conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			filename TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	rows, err := conn.Query(ctx, `SELECT filename FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	applied, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to read applied migrations: %w", err)
	}
	appliedSet := make(map[string]bool, len(applied))
	for _, filename := range applied {
		appliedSet[filename] = true
	}

	pending, err := pendingMigrations(appliedSet)
	if err != nil {
		return nil, err
	}

	var ran []string
	for _, filename := range pending {
		content, err := fs.ReadFile(migrationsFS, "migrations/"+filename)
		if err != nil {
			return ran, fmt.Errorf("failed to read migration %s: %w", filename, err)
		}

		err = pgx.BeginFunc(ctx, conn, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, string(content)); err != nil {
				return fmt.Errorf("failed to execute migration %s: %w", filename, err)
			}
			if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (filename) VALUES ($1)`, filename); err != nil {
				return fmt.Errorf("failed to record migration %s: %w", filename, err)
			}
			return nil
		})
		if err != nil {
			return ran, err
		}
		ran = append(ran, filename)
	}

	return ran, nil
}

// pendingMigrations lists embedded .sql files not yet applied, in filename order
func pendingMigrations(applied map[string]bool) ([]string, error) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var pending []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		if !applied[entry.Name()] {
			pending = append(pending, entry.Name())
		}
	}
	sort.Strings(pending)
	return pending, nil
}

// AcquireRunLock takes a session-level advisory lock on a dedicated connection.
// The lock is released when the returned function is called.
func (d *DB) AcquireRunLock(ctx context.Context) (func(), error) {
	conn, err := d.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection for run lock: %w", err)
	}

	var locked bool
	if err := conn.QueryRow(ctx, `SELECT pg_try_advisory_lock($1)`, runLockKey).Scan(&locked); err != nil {
		conn.Release()
		return nil, fmt.Errorf("failed to take run lock: %w", err)
	}
	if !locked {
		conn.Release()
		return nil, db.ErrRunInProgress
	}

	return func() {
		releaseRunLock(pooledLockConn{conn: conn}, d.logger)
	}, nil
}

// runLockConn is the connection holding the session-level run lock
type runLockConn interface {
	Unlock(ctx context.Context) error
	Close(ctx context.Context) error
	Release()
}

type pooledLockConn struct {
	conn *pgxpool.Conn
}

func (c pooledLockConn) Unlock(ctx context.Context) error {
	var unlocked bool
	if err := c.conn.QueryRow(ctx, `SELECT pg_advisory_unlock($1)`, runLockKey).Scan(&unlocked); err != nil {
		return err
	}
	if !unlocked {
		return fmt.Errorf("run lock was not held by this session")
	}
	return nil
}

func (c pooledLockConn) Close(ctx context.Context) error {
	return c.conn.Conn().Close(ctx)
}

func (c pooledLockConn) Release() {
	c.conn.Release()
}

// releaseRunLock unlocks and hands the connection back to the pool.
// If the unlock fails the connection is closed first, which ends its session and
// the lock with it, so the pool never holds a locked session.
func releaseRunLock(conn runLockConn, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), unlockTimeout)
	defer cancel()

	if err := conn.Unlock(ctx); err != nil {
		logger.Warn("Failed to release run lock, closing connection", zap.Error(err))
		if err := conn.Close(ctx); err != nil {
			logger.Warn("Failed to close run lock connection", zap.Error(err))
		}
	}
	conn.Release()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// expectOneRow maps a zero-row command to db.ErrNotFound
func expectOneRow(tag pgconn.CommandTag, what, id string) error {
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %s: %w", what, id, db.ErrNotFound)
	}
	return nil
}

// notFound maps pgx.ErrNoRows to db.ErrNotFound
func notFound(err error, what, id string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", what, id, db.ErrNotFound)
	}
	return fmt.Errorf("failed to get %s: %w", what, err)
}
