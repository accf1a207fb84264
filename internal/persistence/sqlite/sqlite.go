package sqlite

import (
	"context"

	"github.com/example/timetrack/internal/persistence"
)

// Storage bundles the SQLite-backed repositories behind a single handle.
type Storage struct {
	pool          *ConnectionPool
	workers       *WorkerRepository
	registrations *RegistrationRepository
	admins        *AdminRepository
	sessions      *SessionRepository
}

// Open connects to the SQLite database identified by dsn and prepares the
// repository set. Call Migrate before first use.
func Open(dsn string) (*Storage, error) {
	pool, err := NewConnectionPool(dsn)
	if err != nil {
		return nil, err
	}

	return &Storage{
		pool:          pool,
		workers:       NewWorkerRepository(pool),
		registrations: NewRegistrationRepository(pool),
		admins:        NewAdminRepository(pool),
		sessions:      NewSessionRepository(pool),
	}, nil
}

// Migrate applies all pending schema migrations.
func (s *Storage) Migrate(ctx context.Context) error {
	return NewMigrator(s.pool).Run(ctx)
}

// Close releases the underlying connection pool.
func (s *Storage) Close() error {
	return s.pool.Close()
}

// Workers returns the worker repository.
func (s *Storage) Workers() persistence.WorkerRepository {
	return s.workers
}

// Registrations returns the time registration repository.
func (s *Storage) Registrations() persistence.TimeRegistrationRepository {
	return s.registrations
}

// Admins returns the admin account repository.
func (s *Storage) Admins() persistence.AdminRepository {
	return s.admins
}

// Sessions returns the session repository.
func (s *Storage) Sessions() persistence.SessionRepository {
	return s.sessions
}
