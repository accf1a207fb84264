package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/example/timetrack/internal/application"
	"github.com/example/timetrack/internal/config"
	httptransport "github.com/example/timetrack/internal/http"
	"github.com/example/timetrack/internal/persistence"
	"github.com/example/timetrack/internal/persistence/sqlite"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn("failed to load .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	storage, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := storage.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := storage.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	tokenGenerator := func() string { return randomHex(32) }
	now := time.Now

	workerRepo := newWorkerRepositoryAdapter(storage.Workers())
	registrationRepo := newRegistrationRepositoryAdapter(storage.Registrations())
	adminDirectory := newAdminDirectoryAdapter(storage.Admins())
	sessionRepo := newSessionRepositoryAdapter(storage.Sessions())

	workerService := application.NewWorkerServiceWithLogger(workerRepo, idGenerator, now, logger)
	registrationService := application.NewRegistrationServiceWithLogger(registrationRepo, workerRepo, idGenerator, now, logger)
	reportService := application.NewReportServiceWithLogger(registrationRepo, workerRepo, now, logger)
	authService := application.NewAuthServiceWithLogger(adminDirectory, sessionRepo, idGenerator, tokenGenerator, now, cfg.SessionTTL, logger)

	registrationService.SetAfterWrite(reportService.InvalidateCache)

	if cfg.AdminEmail != "" {
		if err := authService.EnsureBootstrapAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword, "Administrator"); err != nil {
			logger.Error("failed to seed bootstrap admin", "error", err)
			os.Exit(1)
		}
	}

	kioskHandler := httptransport.NewKioskHandler(registrationService, logger)
	authHandler := httptransport.NewAuthHandler(authService, logger)
	workerHandler := httptransport.NewWorkerHandler(workerService, logger)
	registrationHandler := httptransport.NewRegistrationHandler(registrationService, logger)
	reportHandler := httptransport.NewReportHandler(reportService, logger)

	handler := httptransport.NewRouter(httptransport.RouterConfig{
		Kiosk:         kioskHandler,
		Auth:          authHandler,
		Workers:       workerHandler,
		Registrations: registrationHandler,
		Reports:       reportHandler,
		Guard:         httptransport.RequireSession(authService, logger),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
		},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownPeriod)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("timetrack API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

func randomHex(bytes int) string {
	if bytes <= 0 {
		bytes = 16
	}
	buf := make([]byte, bytes)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}

// mapStorageError converts persistence sentinels into the application error
// taxonomy so handlers can classify failures uniformly.
func mapStorageError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, persistence.ErrNotFound):
		return application.ErrNotFound
	case errors.Is(err, persistence.ErrConflict),
		errors.Is(err, persistence.ErrConstraintViolation):
		return application.ErrConflict
	default:
		return err
	}
}

type workerRepositoryAdapter struct {
	repo persistence.WorkerRepository
}

func newWorkerRepositoryAdapter(repo persistence.WorkerRepository) *workerRepositoryAdapter {
	return &workerRepositoryAdapter{repo: repo}
}

func (a *workerRepositoryAdapter) CreateWorker(ctx context.Context, worker application.Worker) (application.Worker, error) {
	if err := a.repo.CreateWorker(ctx, toPersistenceWorker(worker)); err != nil {
		return application.Worker{}, mapStorageError(err)
	}
	stored, err := a.repo.GetWorker(ctx, worker.ID)
	if err != nil {
		return application.Worker{}, mapStorageError(err)
	}
	return toApplicationWorker(stored), nil
}

func (a *workerRepositoryAdapter) UpdateWorker(ctx context.Context, worker application.Worker) (application.Worker, error) {
	if err := a.repo.UpdateWorker(ctx, toPersistenceWorker(worker)); err != nil {
		return application.Worker{}, mapStorageError(err)
	}
	stored, err := a.repo.GetWorker(ctx, worker.ID)
	if err != nil {
		return application.Worker{}, mapStorageError(err)
	}
	return toApplicationWorker(stored), nil
}

func (a *workerRepositoryAdapter) GetWorker(ctx context.Context, id string) (application.Worker, error) {
	stored, err := a.repo.GetWorker(ctx, id)
	if err != nil {
		return application.Worker{}, mapStorageError(err)
	}
	return toApplicationWorker(stored), nil
}

func (a *workerRepositoryAdapter) ListWorkers(ctx context.Context) ([]application.Worker, error) {
	models, err := a.repo.ListWorkers(ctx)
	if err != nil {
		return nil, mapStorageError(err)
	}
	if len(models) == 0 {
		return nil, nil
	}
	workers := make([]application.Worker, 0, len(models))
	for _, model := range models {
		workers = append(workers, toApplicationWorker(model))
	}
	return workers, nil
}

type registrationRepositoryAdapter struct {
	repo persistence.TimeRegistrationRepository
}

func newRegistrationRepositoryAdapter(repo persistence.TimeRegistrationRepository) *registrationRepositoryAdapter {
	return &registrationRepositoryAdapter{repo: repo}
}

func (a *registrationRepositoryAdapter) CreateRegistration(ctx context.Context, registration application.TimeRegistration) (application.TimeRegistration, error) {
	if err := a.repo.CreateRegistration(ctx, toPersistenceRegistration(registration)); err != nil {
		return application.TimeRegistration{}, mapStorageError(err)
	}
	stored, err := a.repo.GetRegistration(ctx, registration.ID)
	if err != nil {
		return application.TimeRegistration{}, mapStorageError(err)
	}
	return toApplicationRegistration(stored), nil
}

func (a *registrationRepositoryAdapter) UpdateRegistration(ctx context.Context, registration application.TimeRegistration) (application.TimeRegistration, error) {
	if err := a.repo.UpdateRegistration(ctx, toPersistenceRegistration(registration)); err != nil {
		return application.TimeRegistration{}, mapStorageError(err)
	}
	stored, err := a.repo.GetRegistration(ctx, registration.ID)
	if err != nil {
		return application.TimeRegistration{}, mapStorageError(err)
	}
	return toApplicationRegistration(stored), nil
}

func (a *registrationRepositoryAdapter) GetRegistration(ctx context.Context, id string) (application.TimeRegistration, error) {
	stored, err := a.repo.GetRegistration(ctx, id)
	if err != nil {
		return application.TimeRegistration{}, mapStorageError(err)
	}
	return toApplicationRegistration(stored), nil
}

func (a *registrationRepositoryAdapter) DeleteRegistration(ctx context.Context, id string) error {
	return mapStorageError(a.repo.DeleteRegistration(ctx, id))
}

func (a *registrationRepositoryAdapter) FindOpenRegistration(ctx context.Context, workerID string) (application.TimeRegistration, error) {
	stored, err := a.repo.FindOpenRegistration(ctx, workerID)
	if err != nil {
		return application.TimeRegistration{}, mapStorageError(err)
	}
	return toApplicationRegistration(stored), nil
}

func (a *registrationRepositoryAdapter) ListRegistrations(ctx context.Context, query application.RegistrationQuery) ([]application.TimeRegistration, int, error) {
	filter := persistence.RegistrationFilter{
		WorkerID:           query.WorkerID,
		Status:             string(query.Status),
		ManualIntervention: query.ManualIntervention,
		CheckInFrom:        query.CheckInFrom,
		CheckInTo:          query.CheckInTo,
		SortBy:             query.SortBy,
		SortOrder:          query.SortOrder,
		Offset:             query.Offset,
		Limit:              query.Limit,
	}
	models, total, err := a.repo.ListRegistrations(ctx, filter)
	if err != nil {
		return nil, 0, mapStorageError(err)
	}
	registrations := make([]application.TimeRegistration, 0, len(models))
	for _, model := range models {
		registrations = append(registrations, toApplicationRegistration(model))
	}
	return registrations, total, nil
}

type adminDirectoryAdapter struct {
	repo persistence.AdminRepository
}

func newAdminDirectoryAdapter(repo persistence.AdminRepository) *adminDirectoryAdapter {
	return &adminDirectoryAdapter{repo: repo}
}

func (a *adminDirectoryAdapter) GetAdminCredentialsByEmail(ctx context.Context, email string) (application.AdminCredentials, error) {
	stored, err := a.repo.GetAdminByEmail(ctx, email)
	if err != nil {
		return application.AdminCredentials{}, mapStorageError(err)
	}
	return application.AdminCredentials{
		Admin:        toApplicationAdmin(stored),
		PasswordHash: stored.PasswordHash,
	}, nil
}

func (a *adminDirectoryAdapter) GetAdmin(ctx context.Context, id string) (application.AdminUser, error) {
	stored, err := a.repo.GetAdmin(ctx, id)
	if err != nil {
		return application.AdminUser{}, mapStorageError(err)
	}
	return toApplicationAdmin(stored), nil
}

func (a *adminDirectoryAdapter) CountAdmins(ctx context.Context) (int, error) {
	count, err := a.repo.CountAdmins(ctx)
	if err != nil {
		return 0, mapStorageError(err)
	}
	return count, nil
}

func (a *adminDirectoryAdapter) CreateAdmin(ctx context.Context, admin application.AdminUser, passwordHash string) (application.AdminUser, error) {
	model := persistence.AdminUser{
		ID:           admin.ID,
		Email:        admin.Email,
		DisplayName:  admin.DisplayName,
		PasswordHash: passwordHash,
		CreatedAt:    admin.CreatedAt,
		UpdatedAt:    admin.UpdatedAt,
	}
	if err := a.repo.CreateAdmin(ctx, model); err != nil {
		return application.AdminUser{}, mapStorageError(err)
	}
	return admin, nil
}

type sessionRepositoryAdapter struct {
	repo persistence.SessionRepository
}

func newSessionRepositoryAdapter(repo persistence.SessionRepository) *sessionRepositoryAdapter {
	return &sessionRepositoryAdapter{repo: repo}
}

func (a *sessionRepositoryAdapter) CreateSession(ctx context.Context, session application.Session) (application.Session, error) {
	stored, err := a.repo.CreateSession(ctx, toPersistenceSession(session))
	if err != nil {
		return application.Session{}, mapStorageError(err)
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) GetSession(ctx context.Context, token string) (application.Session, error) {
	stored, err := a.repo.GetSession(ctx, token)
	if err != nil {
		return application.Session{}, mapStorageError(err)
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (application.Session, error) {
	stored, err := a.repo.RevokeSession(ctx, token, revokedAt)
	if err != nil {
		return application.Session{}, mapStorageError(err)
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	return mapStorageError(a.repo.DeleteExpiredSessions(ctx, reference))
}

func toApplicationWorker(model persistence.Worker) application.Worker {
	return application.Worker{
		ID:         model.ID,
		FirstName:  model.FirstName,
		LastName:   model.LastName,
		Department: model.Department,
		Active:     model.Active,
		PINHash:    model.PINHash,
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	}
}

func toPersistenceWorker(worker application.Worker) persistence.Worker {
	return persistence.Worker{
		ID:         worker.ID,
		FirstName:  worker.FirstName,
		LastName:   worker.LastName,
		Department: worker.Department,
		Active:     worker.Active,
		PINHash:    worker.PINHash,
		CreatedAt:  worker.CreatedAt,
		UpdatedAt:  worker.UpdatedAt,
	}
}

func toApplicationRegistration(model persistence.TimeRegistration) application.TimeRegistration {
	note := ""
	if model.Note != nil {
		note = *model.Note
	}
	adminID := ""
	if model.ModifiedByAdminID != nil {
		adminID = *model.ModifiedByAdminID
	}
	return application.TimeRegistration{
		ID:                 model.ID,
		WorkerID:           model.WorkerID,
		CheckIn:            model.CheckIn,
		CheckOut:           cloneTime(model.CheckOut),
		Status:             application.RegistrationStatus(model.Status),
		ManualIntervention: model.ManualIntervention,
		Note:               note,
		ModifiedByAdminID:  adminID,
		CreatedAt:          model.CreatedAt,
		UpdatedAt:          model.UpdatedAt,
	}
}

func toPersistenceRegistration(registration application.TimeRegistration) persistence.TimeRegistration {
	var note *string
	if strings.TrimSpace(registration.Note) != "" {
		value := registration.Note
		note = &value
	}
	var adminID *string
	if registration.ModifiedByAdminID != "" {
		value := registration.ModifiedByAdminID
		adminID = &value
	}
	return persistence.TimeRegistration{
		ID:                 registration.ID,
		WorkerID:           registration.WorkerID,
		CheckIn:            registration.CheckIn,
		CheckOut:           cloneTime(registration.CheckOut),
		Status:             string(registration.Status),
		ManualIntervention: registration.ManualIntervention,
		Note:               note,
		ModifiedByAdminID:  adminID,
		CreatedAt:          registration.CreatedAt,
		UpdatedAt:          registration.UpdatedAt,
	}
}

func toApplicationAdmin(model persistence.AdminUser) application.AdminUser {
	return application.AdminUser{
		ID:          model.ID,
		Email:       model.Email,
		DisplayName: model.DisplayName,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

func toPersistenceSession(session application.Session) persistence.Session {
	return persistence.Session{
		ID:        session.ID,
		AdminID:   session.AdminID,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
		RevokedAt: cloneTime(session.RevokedAt),
	}
}

func toApplicationSession(model persistence.Session) application.Session {
	return application.Session{
		ID:        model.ID,
		AdminID:   model.AdminID,
		Token:     model.Token,
		ExpiresAt: model.ExpiresAt,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
		RevokedAt: cloneTime(model.RevokedAt),
	}
}

func cloneTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}
