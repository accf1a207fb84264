package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/timetrack/internal/application"
)

type workerService interface {
	CreateWorker(ctx context.Context, params application.CreateWorkerParams) (application.Worker, error)
	GetWorker(ctx context.Context, principal application.Principal, workerID string) (application.Worker, error)
	ListWorkers(ctx context.Context, principal application.Principal, includeInactive bool) ([]application.Worker, error)
	UpdateWorker(ctx context.Context, params application.UpdateWorkerParams) (application.Worker, error)
	RotatePIN(ctx context.Context, params application.RotatePINParams) (application.Worker, error)
	DeactivateWorker(ctx context.Context, principal application.Principal, workerID string) (application.Worker, error)
}

// WorkerHandler serves the administrator worker management endpoints.
type WorkerHandler struct {
	service   workerService
	responder responder
	logger    *slog.Logger
}

// NewWorkerHandler constructs a WorkerHandler.
func NewWorkerHandler(service workerService, logger *slog.Logger) *WorkerHandler {
	base := defaultLogger(logger)
	return &WorkerHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *WorkerHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "WorkerHandler", operation, attrs...)
}

type createWorkerRequest struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Department string `json:"department"`
	PIN        string `json:"pin"`
}

type updateWorkerRequest struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Department string `json:"department"`
	Active     *bool  `json:"active"`
}

type rotatePINRequest struct {
	PIN string `json:"pin"`
}

type workerResponse struct {
	Worker workerDTO `json:"worker"`
}

type listWorkersResponse struct {
	Workers []workerDTO `json:"workers"`
}

// Create registers a new worker.
func (h *WorkerHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req createWorkerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode worker request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, codeBadRequest, errBadRequestBody.Error(), nil)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.AdminID)

	worker, err := h.service.CreateWorker(r.Context(), application.CreateWorkerParams{
		Principal: principal,
		Input: application.WorkerInput{
			FirstName:  req.FirstName,
			LastName:   req.LastName,
			Department: req.Department,
			PIN:        req.PIN,
		},
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "worker creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("worker_id", worker.ID).InfoContext(r.Context(), "worker created")
	h.responder.writeData(r.Context(), w, http.StatusCreated, workerResponse{Worker: toWorkerDTO(worker)}, "")
}

// Get returns a single worker.
func (h *WorkerHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	workerID, ok := WorkerIDFromContext(r.Context())
	if !ok || strings.TrimSpace(workerID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, codeBadRequest, "A worker id is required.", nil)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	worker, err := h.service.GetWorker(r.Context(), principal, workerID)
	if err != nil {
		h.log(r.Context(), "Get", "worker_id", workerID).ErrorContext(r.Context(), "worker lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeData(r.Context(), w, http.StatusOK, workerResponse{Worker: toWorkerDTO(worker)}, "")
}

// List returns workers, including inactive ones when include_inactive=true.
func (h *WorkerHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	includeInactive := r.URL.Query().Get("include_inactive") == "true"

	logger := h.log(r.Context(), "List", "principal_id", principal.AdminID)

	workers, err := h.service.ListWorkers(r.Context(), principal, includeInactive)
	if err != nil {
		logger.ErrorContext(r.Context(), "worker list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(workers)).InfoContext(r.Context(), "workers listed")
	h.responder.writeData(r.Context(), w, http.StatusOK, listWorkersResponse{Workers: toWorkerDTOs(workers)}, "")
}

// Update modifies a worker's attributes.
func (h *WorkerHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	workerID, ok := WorkerIDFromContext(r.Context())
	if !ok || strings.TrimSpace(workerID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, codeBadRequest, "A worker id is required.", nil)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req updateWorkerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "worker_id", workerID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode worker update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, codeBadRequest, errBadRequestBody.Error(), nil)
		return
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.AdminID, "worker_id", workerID)

	worker, err := h.service.UpdateWorker(r.Context(), application.UpdateWorkerParams{
		Principal: principal,
		WorkerID:  workerID,
		Input: application.WorkerUpdate{
			FirstName:  req.FirstName,
			LastName:   req.LastName,
			Department: req.Department,
			Active:     req.Active,
		},
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "worker update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "worker updated")
	h.responder.writeData(r.Context(), w, http.StatusOK, workerResponse{Worker: toWorkerDTO(worker)}, "")
}

// RotatePIN replaces a worker's PIN.
func (h *WorkerHandler) RotatePIN(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	workerID, ok := WorkerIDFromContext(r.Context())
	if !ok || strings.TrimSpace(workerID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, codeBadRequest, "A worker id is required.", nil)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req rotatePINRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "RotatePIN", "worker_id", workerID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode pin rotation", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, codeBadRequest, errBadRequestBody.Error(), nil)
		return
	}

	logger := h.log(r.Context(), "RotatePIN", "principal_id", principal.AdminID, "worker_id", workerID)

	worker, err := h.service.RotatePIN(r.Context(), application.RotatePINParams{
		Principal: principal,
		WorkerID:  workerID,
		PIN:       req.PIN,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "pin rotation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "pin rotated")
	h.responder.writeData(r.Context(), w, http.StatusOK, workerResponse{Worker: toWorkerDTO(worker)}, "")
}

// Deactivate soft-deletes a worker.
func (h *WorkerHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	workerID, ok := WorkerIDFromContext(r.Context())
	if !ok || strings.TrimSpace(workerID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, codeBadRequest, "A worker id is required.", nil)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Deactivate", "principal_id", principal.AdminID, "worker_id", workerID)

	worker, err := h.service.DeactivateWorker(r.Context(), principal, workerID)
	if err != nil {
		logger.ErrorContext(r.Context(), "worker deactivation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "worker deactivated")
	h.responder.writeData(r.Context(), w, http.StatusOK, workerResponse{Worker: toWorkerDTO(worker)}, "")
}
