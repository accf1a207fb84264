package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Migration pairs a sequential schema version with the statements that bring
// the database up to that version.
type Migration struct {
	Version     int
	Description string
	Statements  []string
}

// migrations is the ordered, append-only schema history. Versions must be
// contiguous starting at 1.
var migrations = []Migration{
	{
		Version:     1,
		Description: "create workers table",
		Statements: []string{
			`CREATE TABLE IF NOT EXISTS workers (
				id TEXT PRIMARY KEY,
				first_name TEXT NOT NULL,
				last_name TEXT NOT NULL,
				department TEXT NOT NULL DEFAULT '',
				active INTEGER NOT NULL DEFAULT 1,
				pin_hash TEXT NOT NULL,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
		},
	},
	{
		Version:     2,
		Description: "create time_registrations table",
		Statements: []string{
			`CREATE TABLE IF NOT EXISTS time_registrations (
				id TEXT PRIMARY KEY,
				worker_id TEXT NOT NULL REFERENCES workers(id),
				check_in TEXT NOT NULL,
				check_out TEXT,
				status TEXT NOT NULL CHECK (status IN ('in_progress', 'completed')),
				manual_intervention INTEGER NOT NULL DEFAULT 0,
				note TEXT,
				modified_by_admin_id TEXT,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			// One open interval per worker, enforced at the storage layer so
			// concurrent toggles cannot both insert a check-in.
			`CREATE UNIQUE INDEX IF NOT EXISTS ux_registrations_open_worker
				ON time_registrations(worker_id) WHERE status = 'in_progress'`,
			`CREATE INDEX IF NOT EXISTS ix_registrations_check_in
				ON time_registrations(check_in)`,
		},
	},
	{
		Version:     3,
		Description: "create admin_users and sessions tables",
		Statements: []string{
			`CREATE TABLE IF NOT EXISTS admin_users (
				id TEXT PRIMARY KEY,
				email TEXT NOT NULL UNIQUE,
				display_name TEXT NOT NULL,
				password_hash TEXT NOT NULL,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS sessions (
				id TEXT PRIMARY KEY,
				admin_id TEXT NOT NULL REFERENCES admin_users(id),
				token TEXT NOT NULL UNIQUE,
				expires_at TEXT NOT NULL,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL,
				revoked_at TEXT
			)`,
		},
	},
}

// Migrator applies the embedded schema history to a database.
type Migrator struct {
	pool *ConnectionPool
}

// NewMigrator creates a migrator bound to the provided pool.
func NewMigrator(pool *ConnectionPool) *Migrator {
	return &Migrator{pool: pool}
}

// Run executes all pending migrations in sequential order. Each migration is
// applied inside its own transaction and recorded in schema_migrations.
func (m *Migrator) Run(ctx context.Context) error {
	if err := m.initVersionTable(ctx); err != nil {
		return fmt.Errorf("failed to initialize version table: %w", err)
	}

	current, err := m.currentVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to read current schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= current {
			continue
		}
		if err := m.apply(ctx, migration); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", migration.Version, migration.Description, err)
		}
	}

	return nil
}

func (m *Migrator) initVersionTable(ctx context.Context) error {
	_, err := m.pool.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at TEXT NOT NULL
		)
	`)
	return err
}

func (m *Migrator) currentVersion(ctx context.Context) (int, error) {
	var version sql.NullInt64
	err := m.pool.db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_migrations`).Scan(&version)
	if err != nil {
		return 0, err
	}
	if !version.Valid {
		return 0, nil
	}
	return int(version.Int64), nil
}

func (m *Migrator) apply(ctx context.Context, migration Migration) error {
	return m.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		for _, stmt := range migration.Statements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return err
			}
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO schema_migrations (version, description, applied_at) VALUES (?, ?, ?)`,
			migration.Version,
			migration.Description,
			time.Now().UTC().Format(time.RFC3339),
		)
		return err
	})
}
