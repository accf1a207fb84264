package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/example/timetrack/internal/application"
)

// Error codes surfaced in the failure envelope.
const (
	codeBadRequest    = "BAD_REQUEST"
	codeUnauthorized  = "UNAUTHORIZED"
	codeForbidden     = "FORBIDDEN"
	codeNotFound      = "NOT_FOUND"
	codeConflict      = "CONFLICT"
	codeValidation    = "VALIDATION_ERROR"
	codeInternalError = "INTERNAL_ERROR"
)

var errBadRequestBody = errors.New("request body is not valid JSON")

// envelope is the uniform response wrapper shared by every endpoint.
type envelope struct {
	Success bool           `json:"success"`
	Data    any            `json:"data,omitempty"`
	Message string         `json:"message,omitempty"`
	Error   *errorEnvelope `json:"error,omitempty"`
}

type errorEnvelope struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// writeData wraps the payload in a success envelope.
func (r responder) writeData(ctx context.Context, w http.ResponseWriter, status int, data any, message string) {
	r.writeJSON(ctx, w, status, envelope{Success: true, Data: data, Message: message})
}

// writeError wraps the failure in an error envelope.
func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, code, message string, details map[string]string) {
	r.writeJSON(ctx, w, status, envelope{
		Success: false,
		Error:   &errorEnvelope{Code: code, Message: message, Details: details},
	})
}

// handleServiceError maps application errors to the HTTP error taxonomy. The
// full error is logged server-side; unexpected errors leak no detail to the
// caller.
func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, codeInternalError, "An internal error occurred.", nil)
		return
	}

	switch {
	case errors.Is(err, application.ErrInvalidCredentials):
		r.writeError(ctx, w, http.StatusUnauthorized, codeUnauthorized, "Invalid credentials.", nil)
	case errors.Is(err, application.ErrUnauthorized),
		errors.Is(err, application.ErrSessionExpired),
		errors.Is(err, application.ErrSessionRevoked):
		r.writeError(ctx, w, http.StatusUnauthorized, codeUnauthorized, "Authentication required.", nil)
	case errors.Is(err, application.ErrForbidden):
		r.writeError(ctx, w, http.StatusForbidden, codeForbidden, "You do not have permission to perform this action.", nil)
	case errors.Is(err, application.ErrNotFound):
		r.writeError(ctx, w, http.StatusNotFound, codeNotFound, "The requested resource was not found.", nil)
	case errors.Is(err, application.ErrConflict):
		r.writeError(ctx, w, http.StatusConflict, codeConflict, "The request conflicts with the current state of the resource.", nil)
	default:
		var rErr *application.RuleError
		if errors.As(err, &rErr) {
			r.writeError(ctx, w, http.StatusBadRequest, codeBadRequest, rErr.Message, nil)
			return
		}

		var vErr *application.ValidationError
		if errors.As(err, &vErr) {
			r.writeError(ctx, w, http.StatusUnprocessableEntity, codeValidation, "The request contains invalid fields.", vErr.FieldErrors)
			return
		}

		r.loggerFor(ctx).ErrorContext(ctx, "unexpected service error", "error", err)
		r.writeError(ctx, w, http.StatusInternalServerError, codeInternalError, "An internal error occurred.", nil)
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}
