package application

import (
	"context"
	"sort"
	"strings"
	"time"
)

// fakeHashPIN and fakeVerifyPIN replace bcrypt in tests that do not exercise
// hashing itself, keeping the suite fast.
func fakeHashPIN(pin string) (string, error) {
	return "hash:" + pin, nil
}

func fakeVerifyPIN(pin, storedHash string) bool {
	return storedHash == "hash:"+pin
}

type workerRepoStub struct {
	workers []Worker

	createErr error
	updateErr error
	listErr   error

	updateCalls []Worker
}

func (s *workerRepoStub) CreateWorker(_ context.Context, worker Worker) (Worker, error) {
	if s.createErr != nil {
		return Worker{}, s.createErr
	}
	s.workers = append(s.workers, worker)
	return worker, nil
}

func (s *workerRepoStub) UpdateWorker(_ context.Context, worker Worker) (Worker, error) {
	if s.updateErr != nil {
		return Worker{}, s.updateErr
	}
	s.updateCalls = append(s.updateCalls, worker)
	for i, existing := range s.workers {
		if existing.ID == worker.ID {
			s.workers[i] = worker
			return worker, nil
		}
	}
	return Worker{}, ErrNotFound
}

func (s *workerRepoStub) GetWorker(_ context.Context, id string) (Worker, error) {
	for _, existing := range s.workers {
		if existing.ID == id {
			return existing, nil
		}
	}
	return Worker{}, ErrNotFound
}

func (s *workerRepoStub) ListWorkers(_ context.Context) ([]Worker, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]Worker, len(s.workers))
	copy(out, s.workers)
	return out, nil
}

type registrationRepoStub struct {
	registrations []TimeRegistration

	createErr error
	updateErr error
	findErr   error
	listErr   error
}

func (s *registrationRepoStub) CreateRegistration(_ context.Context, registration TimeRegistration) (TimeRegistration, error) {
	if s.createErr != nil {
		return TimeRegistration{}, s.createErr
	}
	if registration.Status == StatusInProgress {
		for _, existing := range s.registrations {
			if existing.WorkerID == registration.WorkerID && existing.Status == StatusInProgress {
				return TimeRegistration{}, ErrConflict
			}
		}
	}
	s.registrations = append(s.registrations, registration)
	return registration, nil
}

func (s *registrationRepoStub) UpdateRegistration(_ context.Context, registration TimeRegistration) (TimeRegistration, error) {
	if s.updateErr != nil {
		return TimeRegistration{}, s.updateErr
	}
	for i, existing := range s.registrations {
		if existing.ID == registration.ID {
			s.registrations[i] = registration
			return registration, nil
		}
	}
	return TimeRegistration{}, ErrNotFound
}

func (s *registrationRepoStub) GetRegistration(_ context.Context, id string) (TimeRegistration, error) {
	for _, existing := range s.registrations {
		if existing.ID == id {
			return existing, nil
		}
	}
	return TimeRegistration{}, ErrNotFound
}

func (s *registrationRepoStub) DeleteRegistration(_ context.Context, id string) error {
	for i, existing := range s.registrations {
		if existing.ID == id {
			s.registrations = append(s.registrations[:i], s.registrations[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (s *registrationRepoStub) FindOpenRegistration(_ context.Context, workerID string) (TimeRegistration, error) {
	if s.findErr != nil {
		return TimeRegistration{}, s.findErr
	}
	for _, existing := range s.registrations {
		if existing.WorkerID == workerID && existing.Status == StatusInProgress {
			return existing, nil
		}
	}
	return TimeRegistration{}, ErrNotFound
}

func (s *registrationRepoStub) ListRegistrations(_ context.Context, query RegistrationQuery) ([]TimeRegistration, int, error) {
	if s.listErr != nil {
		return nil, 0, s.listErr
	}

	filtered := make([]TimeRegistration, 0, len(s.registrations))
	for _, candidate := range s.registrations {
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

	ascending := query.SortOrder == SortAsc
	sort.SliceStable(filtered, func(i, j int) bool {
		if ascending {
			return filtered[i].CheckIn.Before(filtered[j].CheckIn)
		}
		return filtered[i].CheckIn.After(filtered[j].CheckIn)
	})

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
	return filtered, total, nil
}

type adminDirectoryStub struct {
	admins map[string]AdminCredentials

	countErr  error
	createErr error

	created []AdminUser
}

func (s *adminDirectoryStub) GetAdminCredentialsByEmail(_ context.Context, email string) (AdminCredentials, error) {
	creds, ok := s.admins[strings.ToLower(email)]
	if !ok {
		return AdminCredentials{}, ErrNotFound
	}
	return creds, nil
}

func (s *adminDirectoryStub) GetAdmin(_ context.Context, id string) (AdminUser, error) {
	for _, creds := range s.admins {
		if creds.Admin.ID == id {
			return creds.Admin, nil
		}
	}
	return AdminUser{}, ErrNotFound
}

func (s *adminDirectoryStub) CountAdmins(_ context.Context) (int, error) {
	if s.countErr != nil {
		return 0, s.countErr
	}
	return len(s.admins), nil
}

func (s *adminDirectoryStub) CreateAdmin(_ context.Context, admin AdminUser, passwordHash string) (AdminUser, error) {
	if s.createErr != nil {
		return AdminUser{}, s.createErr
	}
	if s.admins == nil {
		s.admins = map[string]AdminCredentials{}
	}
	s.admins[strings.ToLower(admin.Email)] = AdminCredentials{Admin: admin, PasswordHash: passwordHash}
	s.created = append(s.created, admin)
	return admin, nil
}

type sessionRepoStub struct {
	sessions map[string]Session

	createErr error
	deleteErr error

	deleteCalls []time.Time
}

func newSessionRepoStub() *sessionRepoStub {
	return &sessionRepoStub{sessions: map[string]Session{}}
}

func (s *sessionRepoStub) CreateSession(_ context.Context, session Session) (Session, error) {
	if s.createErr != nil {
		return Session{}, s.createErr
	}
	s.sessions[session.Token] = session
	return session, nil
}

func (s *sessionRepoStub) GetSession(_ context.Context, token string) (Session, error) {
	session, ok := s.sessions[token]
	if !ok {
		return Session{}, ErrNotFound
	}
	return session, nil
}

func (s *sessionRepoStub) RevokeSession(_ context.Context, token string, revokedAt time.Time) (Session, error) {
	session, ok := s.sessions[token]
	if !ok {
		return Session{}, ErrNotFound
	}
	revoked := revokedAt
	session.RevokedAt = &revoked
	session.UpdatedAt = revokedAt
	s.sessions[token] = session
	return session, nil
}

func (s *sessionRepoStub) DeleteExpiredSessions(_ context.Context, reference time.Time) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleteCalls = append(s.deleteCalls, reference)
	for token, session := range s.sessions {
		if !session.ExpiresAt.After(reference) {
			delete(s.sessions, token)
		}
	}
	return nil
}
