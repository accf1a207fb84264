package persistence

import (
	"context"
	"time"
)

// Sort columns accepted by RegistrationFilter.
const (
	SortByCheckIn   = "check_in"
	SortByCheckOut  = "check_out"
	SortByCreatedAt = "created_at"
)

// Sort directions accepted by RegistrationFilter.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// WorkerRepository exposes CRUD operations for workers.
type WorkerRepository interface {
	CreateWorker(ctx context.Context, worker Worker) error
	UpdateWorker(ctx context.Context, worker Worker) error
	GetWorker(ctx context.Context, id string) (Worker, error)
	ListWorkers(ctx context.Context) ([]Worker, error)
}

// RegistrationFilter narrows time registration queries. A zero Limit disables
// pagination and returns the full matching set.
type RegistrationFilter struct {
	WorkerID           string
	Status             string
	ManualIntervention *bool
	CheckInFrom        *time.Time
	CheckInTo          *time.Time
	SortBy             string
	SortOrder          string
	Offset             int
	Limit              int
}

// TimeRegistrationRepository stores attendance intervals.
type TimeRegistrationRepository interface {
	CreateRegistration(ctx context.Context, registration TimeRegistration) error
	UpdateRegistration(ctx context.Context, registration TimeRegistration) error
	GetRegistration(ctx context.Context, id string) (TimeRegistration, error)
	DeleteRegistration(ctx context.Context, id string) error
	// FindOpenRegistration returns the worker's in-progress registration or
	// ErrNotFound when the worker is currently checked out.
	FindOpenRegistration(ctx context.Context, workerID string) (TimeRegistration, error)
	// ListRegistrations returns the matching page plus the total match count
	// before pagination.
	ListRegistrations(ctx context.Context, filter RegistrationFilter) ([]TimeRegistration, int, error)
}

// AdminRepository exposes lookup and bootstrap operations for admin accounts.
type AdminRepository interface {
	CreateAdmin(ctx context.Context, admin AdminUser) error
	GetAdmin(ctx context.Context, id string) (AdminUser, error)
	GetAdminByEmail(ctx context.Context, email string) (AdminUser, error)
	CountAdmins(ctx context.Context) (int, error)
}

// SessionRepository stores authentication session state.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) (Session, error)
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}
