package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/timetrack/internal/application"
)

var (
	workerCounter       uint64
	registrationCounter uint64
	adminCounter        uint64
	sessionCounter      uint64
)

var referenceTime = time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// AdminPrincipal returns a principal with administrator rights.
func AdminPrincipal(id string) application.Principal {
	if id == "" {
		id = "admin-1"
	}
	return application.Principal{AdminID: id, IsAdmin: true}
}

// ---------------------------- Worker fixtures ----------------------------

// WorkerOption configures a generated worker fixture.
type WorkerOption func(*application.Worker)

// NewWorkerFixture returns a deterministic active worker with optional
// overrides. The PINHash defaults to a placeholder; tests that exercise PIN
// verification must supply a real bcrypt hash.
func NewWorkerFixture(opts ...WorkerOption) application.Worker {
	idx := atomic.AddUint64(&workerCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	worker := application.Worker{
		ID:         fmt.Sprintf("worker-%03d", idx),
		FirstName:  fmt.Sprintf("First%03d", idx),
		LastName:   fmt.Sprintf("Last%03d", idx),
		Department: "Warehouse",
		Active:     true,
		PINHash:    fmt.Sprintf("hash-%03d", idx),
		CreatedAt:  created,
		UpdatedAt:  created,
	}
	for _, opt := range opts {
		opt(&worker)
	}
	return worker
}

// WithWorkerID overrides the generated worker ID.
func WithWorkerID(id string) WorkerOption {
	return func(w *application.Worker) { w.ID = id }
}

// WithWorkerActive overrides the active flag.
func WithWorkerActive(active bool) WorkerOption {
	return func(w *application.Worker) { w.Active = active }
}

// WithWorkerPINHash overrides the stored PIN hash.
func WithWorkerPINHash(hash string) WorkerOption {
	return func(w *application.Worker) { w.PINHash = hash }
}

// WithWorkerDepartment overrides the department.
func WithWorkerDepartment(department string) WorkerOption {
	return func(w *application.Worker) { w.Department = department }
}

// ------------------------- Registration fixtures -------------------------

// RegistrationOption configures a generated registration fixture.
type RegistrationOption func(*application.TimeRegistration)

// NewRegistrationFixture returns a deterministic completed registration
// spanning eight hours, with optional overrides.
func NewRegistrationFixture(opts ...RegistrationOption) application.TimeRegistration {
	idx := atomic.AddUint64(&registrationCounter, 1)
	checkIn := referenceTime.Add(time.Duration(idx) * time.Hour)
	checkOut := checkIn.Add(8 * time.Hour)
	registration := application.TimeRegistration{
		ID:        fmt.Sprintf("registration-%03d", idx),
		WorkerID:  "worker-001",
		CheckIn:   checkIn,
		CheckOut:  &checkOut,
		Status:    application.StatusCompleted,
		CreatedAt: checkIn,
		UpdatedAt: checkOut,
	}
	for _, opt := range opts {
		opt(&registration)
	}
	return registration
}

// WithRegistrationID overrides the generated registration ID.
func WithRegistrationID(id string) RegistrationOption {
	return func(r *application.TimeRegistration) { r.ID = id }
}

// WithRegistrationWorker assigns the registration to a worker.
func WithRegistrationWorker(workerID string) RegistrationOption {
	return func(r *application.TimeRegistration) { r.WorkerID = workerID }
}

// WithRegistrationOpen clears the check-out and marks the interval in
// progress.
func WithRegistrationOpen() RegistrationOption {
	return func(r *application.TimeRegistration) {
		r.CheckOut = nil
		r.Status = application.StatusInProgress
		r.UpdatedAt = r.CheckIn
	}
}

// WithRegistrationWindow sets explicit check-in and check-out instants.
func WithRegistrationWindow(checkIn, checkOut time.Time) RegistrationOption {
	return func(r *application.TimeRegistration) {
		r.CheckIn = checkIn
		out := checkOut
		r.CheckOut = &out
		r.Status = application.StatusCompleted
		r.CreatedAt = checkIn
		r.UpdatedAt = checkOut
	}
}

// WithRegistrationManual flags the registration as administratively adjusted.
func WithRegistrationManual(adminID string) RegistrationOption {
	return func(r *application.TimeRegistration) {
		r.ManualIntervention = true
		r.ModifiedByAdminID = adminID
	}
}

// ---------------------------- Admin fixtures -----------------------------

// AdminOption configures a generated admin fixture.
type AdminOption func(*application.AdminUser)

// NewAdminFixture returns a deterministic admin account.
func NewAdminFixture(opts ...AdminOption) application.AdminUser {
	idx := atomic.AddUint64(&adminCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	admin := application.AdminUser{
		ID:          fmt.Sprintf("admin-%03d", idx),
		Email:       fmt.Sprintf("admin-%03d@example.com", idx),
		DisplayName: fmt.Sprintf("Admin %03d", idx),
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	for _, opt := range opts {
		opt(&admin)
	}
	return admin
}

// WithAdminEmail overrides the generated email address.
func WithAdminEmail(email string) AdminOption {
	return func(a *application.AdminUser) { a.Email = email }
}

// --------------------------- Session fixtures ----------------------------

// SessionOption configures a generated session fixture.
type SessionOption func(*application.Session)

// NewSessionFixture returns a deterministic session valid for 24 hours from
// the reference time.
func NewSessionFixture(opts ...SessionOption) application.Session {
	idx := atomic.AddUint64(&sessionCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	session := application.Session{
		ID:        fmt.Sprintf("session-%03d", idx),
		AdminID:   "admin-001",
		Token:     fmt.Sprintf("token-%03d", idx),
		ExpiresAt: created.Add(24 * time.Hour),
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&session)
	}
	return session
}

// WithSessionAdmin assigns the session to an admin.
func WithSessionAdmin(adminID string) SessionOption {
	return func(s *application.Session) { s.AdminID = adminID }
}

// WithSessionToken overrides the session token.
func WithSessionToken(token string) SessionOption {
	return func(s *application.Session) { s.Token = token }
}

// WithSessionExpiry overrides the expiry instant.
func WithSessionExpiry(expiresAt time.Time) SessionOption {
	return func(s *application.Session) { s.ExpiresAt = expiresAt }
}
