package testfixtures

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/example/timetrack/internal/application"
)

// MemoryWorkerRepository is an in-memory application.WorkerRepository that
// preserves insertion order, which makes PIN scan outcomes deterministic.
type MemoryWorkerRepository struct {
	mu      sync.Mutex
	workers []application.Worker

	CreateErr error
	UpdateErr error
	ListErr   error
}

// NewMemoryWorkerRepository constructs a repository seeded with the supplied
// workers.
func NewMemoryWorkerRepository(workers ...application.Worker) *MemoryWorkerRepository {
	repo := &MemoryWorkerRepository{}
	repo.workers = append(repo.workers, workers...)
	return repo
}

func (r *MemoryWorkerRepository) CreateWorker(_ context.Context, worker application.Worker) (application.Worker, error) {
	if r.CreateErr != nil {
		return application.Worker{}, r.CreateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.workers {
		if existing.ID == worker.ID {
			return application.Worker{}, application.ErrConflict
		}
	}
	r.workers = append(r.workers, worker)
	return worker, nil
}

func (r *MemoryWorkerRepository) UpdateWorker(_ context.Context, worker application.Worker) (application.Worker, error) {
	if r.UpdateErr != nil {
		return application.Worker{}, r.UpdateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.workers {
		if existing.ID == worker.ID {
			r.workers[i] = worker
			return worker, nil
		}
	}
	return application.Worker{}, application.ErrNotFound
}

func (r *MemoryWorkerRepository) GetWorker(_ context.Context, id string) (application.Worker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.workers {
		if existing.ID == id {
			return existing, nil
		}
	}
	return application.Worker{}, application.ErrNotFound
}

func (r *MemoryWorkerRepository) ListWorkers(_ context.Context) ([]application.Worker, error) {
	if r.ListErr != nil {
		return nil, r.ListErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]application.Worker, len(r.workers))
	copy(out, r.workers)
	return out, nil
}

// MemoryRegistrationRepository is an in-memory
// application.RegistrationRepository with filtering, sorting, and pagination
// matching the SQLite implementation.
type MemoryRegistrationRepository struct {
	mu            sync.Mutex
	registrations []application.TimeRegistration

	CreateErr error
	UpdateErr error
	FindErr   error
}

// NewMemoryRegistrationRepository constructs a repository seeded with the
// supplied registrations.
func NewMemoryRegistrationRepository(registrations ...application.TimeRegistration) *MemoryRegistrationRepository {
	repo := &MemoryRegistrationRepository{}
	repo.registrations = append(repo.registrations, registrations...)
	return repo
}

func (r *MemoryRegistrationRepository) CreateRegistration(_ context.Context, registration application.TimeRegistration) (application.TimeRegistration, error) {
	if r.CreateErr != nil {
		return application.TimeRegistration{}, r.CreateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.registrations {
		if existing.ID == registration.ID {
			return application.TimeRegistration{}, application.ErrConflict
		}
		// Mirrors the storage-level partial unique index on open intervals.
		if registration.Status == application.StatusInProgress &&
			existing.WorkerID == registration.WorkerID &&
			existing.Status == application.StatusInProgress {
			return application.TimeRegistration{}, application.ErrConflict
		}
	}
	r.registrations = append(r.registrations, registration)
	return registration, nil
}

func (r *MemoryRegistrationRepository) UpdateRegistration(_ context.Context, registration application.TimeRegistration) (application.TimeRegistration, error) {
	if r.UpdateErr != nil {
		return application.TimeRegistration{}, r.UpdateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.registrations {
		if existing.ID == registration.ID {
			r.registrations[i] = registration
			return registration, nil
		}
	}
	return application.TimeRegistration{}, application.ErrNotFound
}

func (r *MemoryRegistrationRepository) GetRegistration(_ context.Context, id string) (application.TimeRegistration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.registrations {
		if existing.ID == id {
			return existing, nil
		}
	}
	return application.TimeRegistration{}, application.ErrNotFound
}

func (r *MemoryRegistrationRepository) DeleteRegistration(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.registrations {
		if existing.ID == id {
			r.registrations = append(r.registrations[:i], r.registrations[i+1:]...)
			return nil
		}
	}
	return application.ErrNotFound
}

func (r *MemoryRegistrationRepository) FindOpenRegistration(_ context.Context, workerID string) (application.TimeRegistration, error) {
	if r.FindErr != nil {
		return application.TimeRegistration{}, r.FindErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.registrations {
		if existing.WorkerID == workerID && existing.Status == application.StatusInProgress {
			return existing, nil
		}
	}
	return application.TimeRegistration{}, application.ErrNotFound
}

func (r *MemoryRegistrationRepository) ListRegistrations(_ context.Context, query application.RegistrationQuery) ([]application.TimeRegistration, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	filtered := make([]application.TimeRegistration, 0, len(r.registrations))
	for _, candidate := range r.registrations {
		if query.WorkerID != "" && candidate.WorkerID != query.WorkerID {
			continue
		}
		if query.Status != "" && candidate.Status != query.Status {
			continue
		}
		if query.ManualIntervention != nil && candidate.ManualIntervention != *query.ManualIntervention {
			continue
		}
		if query.CheckInFrom != nil && candidate.CheckIn.Before(*query.CheckInFrom) {
			continue
		}
		if query.CheckInTo != nil && candidate.CheckIn.After(*query.CheckInTo) {
			continue
		}
		filtered = append(filtered, candidate)
	}

	sortRegistrations(filtered, query.SortBy, query.SortOrder)
	total := len(filtered)

	if query.Offset > 0 {
		if query.Offset >= len(filtered) {
			filtered = nil
		} else {
			filtered = filtered[query.Offset:]
		}
	}
	if query.Limit > 0 && len(filtered) > query.Limit {
		filtered = filtered[:query.Limit]
	}

	out := make([]application.TimeRegistration, len(filtered))
	copy(out, filtered)
	return out, total, nil
}

func sortRegistrations(registrations []application.TimeRegistration, sortBy, sortOrder string) {
	key := func(r application.TimeRegistration) time.Time {
		switch sortBy {
		case application.SortByCheckOut:
			if r.CheckOut != nil {
				return *r.CheckOut
			}
			return time.Time{}
		case application.SortByCreatedAt:
			return r.CreatedAt
		default:
			return r.CheckIn
		}
	}
	descending := sortOrder != application.SortAsc

	sort.SliceStable(registrations, func(i, j int) bool {
		a, b := key(registrations[i]), key(registrations[j])
		if a.Equal(b) {
			return registrations[i].ID < registrations[j].ID
		}
		if descending {
			return a.After(b)
		}
		return a.Before(b)
	})
}

// MemoryAdminDirectory is an in-memory application.AdminDirectory.
type MemoryAdminDirectory struct {
	mu     sync.Mutex
	admins []application.AdminCredentials
}

// NewMemoryAdminDirectory constructs a directory seeded with the supplied
// credentials.
func NewMemoryAdminDirectory(admins ...application.AdminCredentials) *MemoryAdminDirectory {
	dir := &MemoryAdminDirectory{}
	dir.admins = append(dir.admins, admins...)
	return dir
}

func (d *MemoryAdminDirectory) GetAdminCredentialsByEmail(_ context.Context, email string) (application.AdminCredentials, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, existing := range d.admins {
		if strings.ToLower(existing.Admin.Email) == email {
			return existing, nil
		}
	}
	return application.AdminCredentials{}, application.ErrNotFound
}

func (d *MemoryAdminDirectory) GetAdmin(_ context.Context, id string) (application.AdminUser, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, existing := range d.admins {
		if existing.Admin.ID == id {
			return existing.Admin, nil
		}
	}
	return application.AdminUser{}, application.ErrNotFound
}

func (d *MemoryAdminDirectory) CountAdmins(_ context.Context) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.admins), nil
}

func (d *MemoryAdminDirectory) CreateAdmin(_ context.Context, admin application.AdminUser, passwordHash string) (application.AdminUser, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, existing := range d.admins {
		if strings.EqualFold(existing.Admin.Email, admin.Email) {
			return application.AdminUser{}, application.ErrConflict
		}
	}
	d.admins = append(d.admins, application.AdminCredentials{Admin: admin, PasswordHash: passwordHash})
	return admin, nil
}

// MemorySessionRepository is an in-memory application.SessionRepository.
type MemorySessionRepository struct {
	mu       sync.Mutex
	sessions []application.Session
}

// NewMemorySessionRepository constructs a repository seeded with the supplied
// sessions.
func NewMemorySessionRepository(sessions ...application.Session) *MemorySessionRepository {
	repo := &MemorySessionRepository{}
	repo.sessions = append(repo.sessions, sessions...)
	return repo
}

func (r *MemorySessionRepository) CreateSession(_ context.Context, session application.Session) (application.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.sessions {
		if existing.Token == session.Token {
			return application.Session{}, application.ErrConflict
		}
	}
	r.sessions = append(r.sessions, session)
	return session, nil
}

func (r *MemorySessionRepository) GetSession(_ context.Context, token string) (application.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.sessions {
		if existing.Token == token {
			return existing, nil
		}
	}
	return application.Session{}, application.ErrNotFound
}

func (r *MemorySessionRepository) RevokeSession(_ context.Context, token string, revokedAt time.Time) (application.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.sessions {
		if existing.Token == token {
			revoked := revokedAt
			existing.RevokedAt = &revoked
			existing.UpdatedAt = revokedAt
			r.sessions[i] = existing
			return existing, nil
		}
	}
	return application.Session{}, application.ErrNotFound
}

func (r *MemorySessionRepository) DeleteExpiredSessions(_ context.Context, reference time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.sessions[:0]
	for _, existing := range r.sessions {
		if existing.ExpiresAt.After(reference) {
			kept = append(kept, existing)
		}
	}
	r.sessions = kept
	return nil
}
