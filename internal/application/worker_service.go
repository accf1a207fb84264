package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// WorkerRepository captures the persistence operations needed by the worker
// service.
type WorkerRepository interface {
	CreateWorker(ctx context.Context, worker Worker) (Worker, error)
	UpdateWorker(ctx context.Context, worker Worker) (Worker, error)
	GetWorker(ctx context.Context, id string) (Worker, error)
	ListWorkers(ctx context.Context) ([]Worker, error)
}

// PINHasher produces a salted hash for a kiosk PIN.
type PINHasher func(pin string) (string, error)

// PINVerifier compares a candidate PIN against a stored hash.
type PINVerifier func(pin, storedHash string) bool

// WorkerService orchestrates validation, authorization, and persistence for
// workers, including the PIN uniqueness discipline.
type WorkerService struct {
	workers     WorkerRepository
	hashPIN     PINHasher
	verifyPIN   PINVerifier
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewWorkerService wires dependencies for the worker service.
func NewWorkerService(workers WorkerRepository, idGenerator func() string, now func() time.Time) *WorkerService {
	return NewWorkerServiceWithLogger(workers, idGenerator, now, nil)
}

// NewWorkerServiceWithLogger constructs a WorkerService with a specified logger.
func NewWorkerServiceWithLogger(workers WorkerRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *WorkerService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &WorkerService{
		workers:     workers,
		hashPIN:     HashPIN,
		verifyPIN:   VerifyPIN,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *WorkerService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "WorkerService", operation, attrs...)
}

// CreateWorker validates input, enforces PIN uniqueness, and persists a new
// worker for administrators.
func (s *WorkerService) CreateWorker(ctx context.Context, params CreateWorkerParams) (Worker, error) {
	if s == nil {
		return Worker{}, fmt.Errorf("WorkerService is nil")
	}
	if !params.Principal.IsAdmin {
		return Worker{}, ErrForbidden
	}
	if s.workers == nil {
		return Worker{}, fmt.Errorf("worker repository not configured")
	}

	logger := s.loggerWith(ctx, "CreateWorker", "principal_id", params.Principal.AdminID)

	normalized := normalizeWorkerInput(params.Input)
	vErr := validateWorkerInput(normalized)
	if vErr.HasErrors() {
		return Worker{}, vErr
	}

	if err := s.ensureUniquePIN(ctx, normalized.PIN, ""); err != nil {
		logger.ErrorContext(ctx, "worker creation rejected", "error", err, "error_kind", ErrorKind(err))
		return Worker{}, err
	}

	hash, err := s.hashPIN(normalized.PIN)
	if err != nil {
		return Worker{}, fmt.Errorf("failed to hash pin: %w", err)
	}

	now := s.now()
	worker := Worker{
		ID:         s.idGenerator(),
		FirstName:  normalized.FirstName,
		LastName:   normalized.LastName,
		Department: normalized.Department,
		Active:     true,
		PINHash:    hash,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	persisted, err := s.workers.CreateWorker(ctx, worker)
	if err != nil {
		logger.ErrorContext(ctx, "worker creation failed", "error", err, "error_kind", ErrorKind(err))
		return Worker{}, err
	}

	logger.With("worker_id", persisted.ID).InfoContext(ctx, "worker created")
	return persisted, nil
}

// GetWorker returns a single worker for administrators.
func (s *WorkerService) GetWorker(ctx context.Context, principal Principal, workerID string) (Worker, error) {
	if s == nil {
		return Worker{}, fmt.Errorf("WorkerService is nil")
	}
	if !principal.IsAdmin {
		return Worker{}, ErrForbidden
	}
	if s.workers == nil {
		return Worker{}, fmt.Errorf("worker repository not configured")
	}

	worker, err := s.workers.GetWorker(ctx, workerID)
	if err != nil {
		return Worker{}, err
	}
	return worker, nil
}

// ListWorkers returns all workers for administrators, inactive ones included
// only when requested.
func (s *WorkerService) ListWorkers(ctx context.Context, principal Principal, includeInactive bool) ([]Worker, error) {
	if s == nil {
		return nil, fmt.Errorf("WorkerService is nil")
	}
	if !principal.IsAdmin {
		return nil, ErrForbidden
	}
	if s.workers == nil {
		return nil, nil
	}

	workers, err := s.workers.ListWorkers(ctx)
	if err != nil {
		return nil, err
	}

	if includeInactive {
		return workers, nil
	}

	active := make([]Worker, 0, len(workers))
	for _, worker := range workers {
		if worker.Active {
			active = append(active, worker)
		}
	}
	if len(active) == 0 {
		return nil, nil
	}
	return active, nil
}

// UpdateWorker updates a worker's attributes for administrators. The PIN is
// rotated through RotatePIN, never here.
func (s *WorkerService) UpdateWorker(ctx context.Context, params UpdateWorkerParams) (Worker, error) {
	if s == nil {
		return Worker{}, fmt.Errorf("WorkerService is nil")
	}
	if !params.Principal.IsAdmin {
		return Worker{}, ErrForbidden
	}
	if s.workers == nil {
		return Worker{}, fmt.Errorf("worker repository not configured")
	}

	existing, err := s.workers.GetWorker(ctx, params.WorkerID)
	if err != nil {
		return Worker{}, err
	}

	normalized := WorkerUpdate{
		FirstName:  strings.TrimSpace(params.Input.FirstName),
		LastName:   strings.TrimSpace(params.Input.LastName),
		Department: strings.TrimSpace(params.Input.Department),
		Active:     params.Input.Active,
	}

	vErr := &ValidationError{}
	if normalized.FirstName == "" {
		vErr.add("first_name", "first name is required")
	}
	if normalized.LastName == "" {
		vErr.add("last_name", "last name is required")
	}
	if vErr.HasErrors() {
		return Worker{}, vErr
	}

	updated := existing
	updated.FirstName = normalized.FirstName
	updated.LastName = normalized.LastName
	updated.Department = normalized.Department
	if normalized.Active != nil {
		updated.Active = *normalized.Active
	}
	updated.UpdatedAt = s.now()

	persisted, err := s.workers.UpdateWorker(ctx, updated)
	if err != nil {
		return Worker{}, err
	}

	s.loggerWith(ctx, "UpdateWorker", "principal_id", params.Principal.AdminID, "worker_id", persisted.ID).
		InfoContext(ctx, "worker updated")
	return persisted, nil
}

// RotatePIN replaces a worker's PIN hash in place after re-checking
// uniqueness against every other worker.
func (s *WorkerService) RotatePIN(ctx context.Context, params RotatePINParams) (Worker, error) {
	if s == nil {
		return Worker{}, fmt.Errorf("WorkerService is nil")
	}
	if !params.Principal.IsAdmin {
		return Worker{}, ErrForbidden
	}
	if s.workers == nil {
		return Worker{}, fmt.Errorf("worker repository not configured")
	}

	logger := s.loggerWith(ctx, "RotatePIN", "principal_id", params.Principal.AdminID, "worker_id", params.WorkerID)

	pin := strings.TrimSpace(params.PIN)
	if !ValidPINFormat(pin) {
		vErr := &ValidationError{}
		vErr.add("pin", "pin must be 4 to 6 digits")
		return Worker{}, vErr
	}

	existing, err := s.workers.GetWorker(ctx, params.WorkerID)
	if err != nil {
		return Worker{}, err
	}

	if err := s.ensureUniquePIN(ctx, pin, existing.ID); err != nil {
		logger.ErrorContext(ctx, "pin rotation rejected", "error", err, "error_kind", ErrorKind(err))
		return Worker{}, err
	}

	hash, err := s.hashPIN(pin)
	if err != nil {
		return Worker{}, fmt.Errorf("failed to hash pin: %w", err)
	}

	existing.PINHash = hash
	existing.UpdatedAt = s.now()

	persisted, err := s.workers.UpdateWorker(ctx, existing)
	if err != nil {
		return Worker{}, err
	}

	logger.InfoContext(ctx, "pin rotated")
	return persisted, nil
}

// DeactivateWorker soft-deletes a worker by clearing the active flag. Worker
// rows are never hard-deleted so historical registrations keep their owner.
func (s *WorkerService) DeactivateWorker(ctx context.Context, principal Principal, workerID string) (Worker, error) {
	if s == nil {
		return Worker{}, fmt.Errorf("WorkerService is nil")
	}
	if !principal.IsAdmin {
		return Worker{}, ErrForbidden
	}
	if s.workers == nil {
		return Worker{}, fmt.Errorf("worker repository not configured")
	}

	existing, err := s.workers.GetWorker(ctx, workerID)
	if err != nil {
		return Worker{}, err
	}

	existing.Active = false
	existing.UpdatedAt = s.now()

	persisted, err := s.workers.UpdateWorker(ctx, existing)
	if err != nil {
		return Worker{}, err
	}

	s.loggerWith(ctx, "DeactivateWorker", "principal_id", principal.AdminID, "worker_id", workerID).
		InfoContext(ctx, "worker deactivated")
	return persisted, nil
}

// ensureUniquePIN verifies the candidate PIN against every other worker's
// hash. Salted hashes preclude an indexed lookup, so this is a deliberate
// O(n) scan accepted for small worker counts.
func (s *WorkerService) ensureUniquePIN(ctx context.Context, pin, excludeWorkerID string) error {
	workers, err := s.workers.ListWorkers(ctx)
	if err != nil {
		return err
	}
	for _, worker := range workers {
		if worker.ID == excludeWorkerID {
			continue
		}
		if s.verifyPIN(pin, worker.PINHash) {
			return ErrConflict
		}
	}
	return nil
}

func normalizeWorkerInput(input WorkerInput) WorkerInput {
	return WorkerInput{
		FirstName:  strings.TrimSpace(input.FirstName),
		LastName:   strings.TrimSpace(input.LastName),
		Department: strings.TrimSpace(input.Department),
		PIN:        strings.TrimSpace(input.PIN),
	}
}

func validateWorkerInput(input WorkerInput) *ValidationError {
	vErr := &ValidationError{}

	if input.FirstName == "" {
		vErr.add("first_name", "first name is required")
	}
	if input.LastName == "" {
		vErr.add("last_name", "last name is required")
	}
	if !ValidPINFormat(input.PIN) {
		vErr.add("pin", "pin must be 4 to 6 digits")
	}

	return vErr
}
