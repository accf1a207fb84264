package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/example/timetrack/internal/application"
)

type toggleService interface {
	Toggle(ctx context.Context, pin string) (application.ToggleResult, error)
}

// KioskHandler serves the unauthenticated check-in/check-out toggle.
type KioskHandler struct {
	service   toggleService
	responder responder
	logger    *slog.Logger
}

// NewKioskHandler constructs a KioskHandler.
func NewKioskHandler(service toggleService, logger *slog.Logger) *KioskHandler {
	base := defaultLogger(logger)
	return &KioskHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *KioskHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "KioskHandler", operation, attrs...)
}

type toggleRequest struct {
	PIN string `json:"pin"`
}

type toggleResponse struct {
	Action       string          `json:"action"`
	Registration registrationDTO `json:"registration"`
	Worker       workerDTO       `json:"worker"`
}

// Toggle flips the worker identified by the submitted PIN between checked-in
// and checked-out. The PIN never appears in logs.
func (h *KioskHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Toggle", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode toggle request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, codeBadRequest, errBadRequestBody.Error(), nil)
		return
	}

	logger := h.log(r.Context(), "Toggle")

	result, err := h.service.Toggle(r.Context(), req.PIN)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrInvalidCredentials):
			logger.ErrorContext(r.Context(), "toggle rejected", "error_kind", application.ErrorKind(err))
			h.responder.writeError(r.Context(), w, http.StatusUnauthorized, codeUnauthorized, "Invalid PIN", nil)
		case errors.Is(err, application.ErrNotFound):
			logger.ErrorContext(r.Context(), "toggle rejected", "error_kind", application.ErrorKind(err))
			h.responder.writeError(r.Context(), w, http.StatusNotFound, codeNotFound, "Worker not found or inactive", nil)
		default:
			logger.ErrorContext(r.Context(), "toggle failed", "error", err, "error_kind", application.ErrorKind(err))
			h.responder.handleServiceError(r.Context(), w, err)
		}
		return
	}

	status := http.StatusOK
	if result.Action == application.ActionCheckIn {
		status = http.StatusCreated
	}

	logger.With(
		"worker_id", result.Worker.ID,
		"action", result.Action,
	).InfoContext(r.Context(), "toggle completed")

	h.responder.writeData(r.Context(), w, status, toggleResponse{
		Action:       result.Action,
		Registration: toRegistrationDTO(result.Registration),
		Worker:       toWorkerDTO(result.Worker),
	}, "")
}
