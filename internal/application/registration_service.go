package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// RegistrationQuery narrows registration listings. A zero Limit disables
// pagination.
type RegistrationQuery struct {
	WorkerID           string
	Status             RegistrationStatus
	ManualIntervention *bool
	CheckInFrom        *time.Time
	CheckInTo          *time.Time
	SortBy             string
	SortOrder          string
	Offset             int
	Limit              int
}

// RegistrationRepository captures the persistence operations needed by the
// registration service.
type RegistrationRepository interface {
	CreateRegistration(ctx context.Context, registration TimeRegistration) (TimeRegistration, error)
	UpdateRegistration(ctx context.Context, registration TimeRegistration) (TimeRegistration, error)
	GetRegistration(ctx context.Context, id string) (TimeRegistration, error)
	DeleteRegistration(ctx context.Context, id string) error
	FindOpenRegistration(ctx context.Context, workerID string) (TimeRegistration, error)
	ListRegistrations(ctx context.Context, query RegistrationQuery) ([]TimeRegistration, int, error)
}

// Sort columns accepted by ListRegistrations.
const (
	SortByCheckIn   = "check_in"
	SortByCheckOut  = "check_out"
	SortByCreatedAt = "created_at"
)

// Sort directions accepted by ListRegistrations.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// RegistrationService implements the time registration lifecycle: the kiosk
// toggle plus the administrative override operations.
type RegistrationService struct {
	registrations RegistrationRepository
	workers       WorkerRepository
	verifyPIN     PINVerifier
	idGenerator   func() string
	now           func() time.Time
	afterWrite    func()
	logger        *slog.Logger
}

// NewRegistrationService wires dependencies for the registration service.
func NewRegistrationService(registrations RegistrationRepository, workers WorkerRepository, idGenerator func() string, now func() time.Time) *RegistrationService {
	return NewRegistrationServiceWithLogger(registrations, workers, idGenerator, now, nil)
}

// NewRegistrationServiceWithLogger constructs a RegistrationService with a
// specified logger.
func NewRegistrationServiceWithLogger(registrations RegistrationRepository, workers WorkerRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *RegistrationService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &RegistrationService{
		registrations: registrations,
		workers:       workers,
		verifyPIN:     VerifyPIN,
		idGenerator:   idGenerator,
		now:           now,
		logger:        defaultLogger(logger),
	}
}

// SetAfterWrite registers a hook invoked after every successful mutation,
// used to drop cached report summaries.
func (s *RegistrationService) SetAfterWrite(hook func()) {
	if s != nil {
		s.afterWrite = hook
	}
}

func (s *RegistrationService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "RegistrationService", operation, attrs...)
}

func (s *RegistrationService) notifyWrite() {
	if s.afterWrite != nil {
		s.afterWrite()
	}
}

// Toggle resolves the PIN to a worker and flips that worker between checked-in
// and checked-out.
//
// The PIN is verified by a linear scan over every worker's salted hash in
// load order, first match wins. Multiple workers sharing a PIN is not
// prevented here; collisions resolve to the earliest-loaded worker. That
// mirrors the product's documented kiosk behavior and must not be replaced
// with an indexed lookup without revisiting the salting scheme.
func (s *RegistrationService) Toggle(ctx context.Context, pin string) (result ToggleResult, err error) {
	if s == nil {
		err = fmt.Errorf("RegistrationService is nil")
		return
	}
	if s.registrations == nil || s.workers == nil {
		err = fmt.Errorf("registration service not fully configured")
		return
	}

	logger := s.loggerWith(ctx, "Toggle")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "toggle failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With(
			"worker_id", result.Worker.ID,
			"registration_id", result.Registration.ID,
			"action", result.Action,
		).InfoContext(ctx, "toggle succeeded")
	}()

	pin = strings.TrimSpace(pin)
	if !ValidPINFormat(pin) {
		err = NewRuleError("pin must be 4 to 6 digits")
		return
	}

	var worker Worker
	worker, err = s.matchWorkerByPIN(ctx, pin)
	if err != nil {
		return
	}

	if !worker.Active {
		err = ErrNotFound
		return
	}

	now := s.now()

	open, findErr := s.registrations.FindOpenRegistration(ctx, worker.ID)
	switch {
	case findErr == nil:
		// Check-out: close the open interval.
		checkOut := now
		open.CheckOut = &checkOut
		open.Status = StatusCompleted
		open.UpdatedAt = now

		var persisted TimeRegistration
		persisted, err = s.registrations.UpdateRegistration(ctx, open)
		if err != nil {
			return
		}
		s.notifyWrite()
		result = ToggleResult{Action: ActionCheckOut, Registration: persisted, Worker: worker}
		return

	case errors.Is(findErr, ErrNotFound):
		// Check-in: open a new interval.
		registration := TimeRegistration{
			ID:                 s.idGenerator(),
			WorkerID:           worker.ID,
			CheckIn:            now,
			Status:             StatusInProgress,
			ManualIntervention: false,
			CreatedAt:          now,
			UpdatedAt:          now,
		}

		var persisted TimeRegistration
		persisted, err = s.registrations.CreateRegistration(ctx, registration)
		if err != nil {
			// A concurrent toggle may have inserted the open interval after
			// our read; the storage-level unique index reports it here.
			return
		}
		s.notifyWrite()
		result = ToggleResult{Action: ActionCheckIn, Registration: persisted, Worker: worker}
		return

	default:
		err = findErr
		return
	}
}

// matchWorkerByPIN scans all workers in load order and returns the first
// whose hash matches the candidate PIN.
func (s *RegistrationService) matchWorkerByPIN(ctx context.Context, pin string) (Worker, error) {
	workers, err := s.workers.ListWorkers(ctx)
	if err != nil {
		return Worker{}, err
	}
	for _, worker := range workers {
		if s.verifyPIN(pin, worker.PINHash) {
			return worker, nil
		}
	}
	return Worker{}, ErrInvalidCredentials
}

// CreateRegistration opens an interval manually on behalf of a worker. The
// result is always flagged as a manual intervention.
func (s *RegistrationService) CreateRegistration(ctx context.Context, params CreateRegistrationParams) (TimeRegistration, error) {
	if s == nil {
		return TimeRegistration{}, fmt.Errorf("RegistrationService is nil")
	}
	if !params.Principal.IsAdmin {
		return TimeRegistration{}, ErrForbidden
	}
	if s.registrations == nil || s.workers == nil {
		return TimeRegistration{}, fmt.Errorf("registration service not fully configured")
	}

	logger := s.loggerWith(ctx, "CreateRegistration",
		"principal_id", params.Principal.AdminID,
		"worker_id", params.WorkerID,
	)

	worker, err := s.workers.GetWorker(ctx, params.WorkerID)
	if err != nil {
		logger.ErrorContext(ctx, "manual registration failed", "error", err, "error_kind", ErrorKind(err))
		return TimeRegistration{}, err
	}
	if !worker.Active {
		err = NewRuleError("worker is inactive")
		logger.ErrorContext(ctx, "manual registration rejected", "error", err, "error_kind", ErrorKind(err))
		return TimeRegistration{}, err
	}

	now := s.now()
	if params.CheckIn.IsZero() {
		vErr := &ValidationError{}
		vErr.add("check_in", "check_in is required")
		return TimeRegistration{}, vErr
	}
	if params.CheckIn.After(now) {
		err = NewRuleError("check_in cannot be in the future")
		logger.ErrorContext(ctx, "manual registration rejected", "error", err, "error_kind", ErrorKind(err))
		return TimeRegistration{}, err
	}

	if _, findErr := s.registrations.FindOpenRegistration(ctx, worker.ID); findErr == nil {
		err = ErrConflict
		logger.ErrorContext(ctx, "manual registration rejected", "error", err, "error_kind", ErrorKind(err))
		return TimeRegistration{}, err
	} else if !errors.Is(findErr, ErrNotFound) {
		return TimeRegistration{}, findErr
	}

	registration := TimeRegistration{
		ID:                 s.idGenerator(),
		WorkerID:           worker.ID,
		CheckIn:            params.CheckIn,
		Status:             StatusInProgress,
		ManualIntervention: true,
		Note:               strings.TrimSpace(params.Note),
		ModifiedByAdminID:  params.Principal.AdminID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	persisted, err := s.registrations.CreateRegistration(ctx, registration)
	if err != nil {
		logger.ErrorContext(ctx, "manual registration failed", "error", err, "error_kind", ErrorKind(err))
		return TimeRegistration{}, err
	}

	s.notifyWrite()
	logger.With("registration_id", persisted.ID).InfoContext(ctx, "manual registration created")
	return persisted, nil
}

// UpdateRegistration applies an administrative patch to a registration. The
// effective check-in/check-out pair is validated regardless of which side the
// patch supplied, and supplying a check-out without a status completes the
// registration.
func (s *RegistrationService) UpdateRegistration(ctx context.Context, params UpdateRegistrationParams) (TimeRegistration, error) {
	if s == nil {
		return TimeRegistration{}, fmt.Errorf("RegistrationService is nil")
	}
	if !params.Principal.IsAdmin {
		return TimeRegistration{}, ErrForbidden
	}
	if s.registrations == nil {
		return TimeRegistration{}, fmt.Errorf("registration service not fully configured")
	}

	logger := s.loggerWith(ctx, "UpdateRegistration",
		"principal_id", params.Principal.AdminID,
		"registration_id", params.RegistrationID,
	)

	existing, err := s.registrations.GetRegistration(ctx, params.RegistrationID)
	if err != nil {
		logger.ErrorContext(ctx, "registration update failed", "error", err, "error_kind", ErrorKind(err))
		return TimeRegistration{}, err
	}

	patch := params.Patch
	if patch.Status != nil && !patch.Status.Valid() {
		vErr := &ValidationError{}
		vErr.add("status", "status must be in_progress or completed")
		return TimeRegistration{}, vErr
	}

	updated := existing
	if patch.CheckIn != nil {
		updated.CheckIn = *patch.CheckIn
	}
	if patch.CheckOut != nil {
		checkOut := *patch.CheckOut
		updated.CheckOut = &checkOut
	}
	if patch.Note != nil {
		updated.Note = strings.TrimSpace(*patch.Note)
	}

	if updated.CheckOut != nil && !updated.CheckOut.After(updated.CheckIn) {
		err = NewRuleError("check_out must be after check_in")
		logger.ErrorContext(ctx, "registration update rejected", "error", err, "error_kind", ErrorKind(err))
		return TimeRegistration{}, err
	}

	switch {
	case patch.Status != nil:
		updated.Status = *patch.Status
	case patch.CheckOut != nil:
		updated.Status = StatusCompleted
	}

	updated.ManualIntervention = true
	updated.ModifiedByAdminID = params.Principal.AdminID
	updated.UpdatedAt = s.now()

	persisted, err := s.registrations.UpdateRegistration(ctx, updated)
	if err != nil {
		logger.ErrorContext(ctx, "registration update failed", "error", err, "error_kind", ErrorKind(err))
		return TimeRegistration{}, err
	}

	s.notifyWrite()
	logger.InfoContext(ctx, "registration updated")
	return persisted, nil
}

// DeleteRegistration removes a registration permanently.
func (s *RegistrationService) DeleteRegistration(ctx context.Context, principal Principal, registrationID string) error {
	if s == nil {
		return fmt.Errorf("RegistrationService is nil")
	}
	if !principal.IsAdmin {
		return ErrForbidden
	}
	if s.registrations == nil {
		return fmt.Errorf("registration service not fully configured")
	}

	logger := s.loggerWith(ctx, "DeleteRegistration",
		"principal_id", principal.AdminID,
		"registration_id", registrationID,
	)

	if err := s.registrations.DeleteRegistration(ctx, registrationID); err != nil {
		logger.ErrorContext(ctx, "registration delete failed", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	s.notifyWrite()
	logger.InfoContext(ctx, "registration deleted")
	return nil
}

// ListRegistrations returns a filtered, sorted, paginated page of
// registrations for administrators.
func (s *RegistrationService) ListRegistrations(ctx context.Context, params ListRegistrationsParams) (RegistrationPage, error) {
	if s == nil {
		return RegistrationPage{}, fmt.Errorf("RegistrationService is nil")
	}
	if !params.Principal.IsAdmin {
		return RegistrationPage{}, ErrForbidden
	}
	if s.registrations == nil {
		return RegistrationPage{}, fmt.Errorf("registration service not fully configured")
	}

	vErr := &ValidationError{}
	if params.Status != "" && !params.Status.Valid() {
		vErr.add("status", "status must be in_progress or completed")
	}
	switch params.SortBy {
	case "", SortByCheckIn, SortByCheckOut, SortByCreatedAt:
	default:
		vErr.add("sort_by", "sort_by must be check_in, check_out, or created_at")
	}
	switch params.SortOrder {
	case "", SortAsc, SortDesc:
	default:
		vErr.add("sort_order", "sort_order must be asc or desc")
	}
	if vErr.HasErrors() {
		return RegistrationPage{}, vErr
	}

	page := params.Page
	if page < 1 {
		page = 1
	}
	limit := params.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	sortBy := params.SortBy
	if sortBy == "" {
		sortBy = SortByCheckIn
	}
	sortOrder := params.SortOrder
	if sortOrder == "" {
		sortOrder = SortDesc
	}

	query := RegistrationQuery{
		WorkerID:           params.WorkerID,
		Status:             params.Status,
		ManualIntervention: params.ManualIntervention,
		CheckInFrom:        params.DateFrom,
		CheckInTo:          params.DateTo,
		SortBy:             sortBy,
		SortOrder:          sortOrder,
		Offset:             (page - 1) * limit,
		Limit:              limit,
	}

	registrations, total, err := s.registrations.ListRegistrations(ctx, query)
	if err != nil {
		return RegistrationPage{}, err
	}

	totalPages := 0
	if total > 0 {
		totalPages = (total + limit - 1) / limit
	}

	return RegistrationPage{
		Registrations: registrations,
		Pagination: Pagination{
			Page:        page,
			Limit:       limit,
			TotalItems:  total,
			TotalPages:  totalPages,
			HasNext:     page < totalPages,
			HasPrevious: page > 1 && total > 0,
		},
	}, nil
}
